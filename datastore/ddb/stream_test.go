/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	terrors "github.com/suparena/typedmodel/errors"
	"github.com/suparena/typedmodel/storagemodels"
)

func seedBlocks(t *testing.T, store *Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		r := mustConstruct(t, store.reg, textBlock(id, "p1", "content "+id))
		if err := store.Put(context.Background(), r); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
}

func collect(ch <-chan storagemodels.StreamResult) (contents []string, errs []error) {
	for result := range ch {
		if result.Error != nil {
			errs = append(errs, result.Error)
			continue
		}
		contents = append(contents, result.Record.Serialize()["id"].(string))
	}
	return contents, errs
}

func TestStreamPages(t *testing.T) {
	store, client, _ := newTestStore(t)
	seedBlocks(t, store, "b1", "b2", "b3")

	var progress []storagemodels.StreamProgress
	results := store.QueryIndex("GSI1").
		WithPartition(map[string]any{"parent_id": "p1"}).
		Stream(context.Background(),
			storagemodels.WithPageSize(2),
			storagemodels.WithBufferSize(1),
			storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
				progress = append(progress, p)
			}),
		)

	ids, errs := collect(results)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if strings.Join(ids, ",") != "b1,b2,b3" {
		t.Errorf("ids = %v", ids)
	}
	if client.queryCalls != 2 {
		t.Errorf("query calls = %d, want 2", client.queryCalls)
	}
	if len(progress) != 2 {
		t.Fatalf("progress reports = %d, want 2", len(progress))
	}
	last := progress[len(progress)-1]
	if last.ItemsProcessed != 3 || last.PagesProcessed != 2 || last.LastKey != nil {
		t.Errorf("final progress = %+v", last)
	}
}

func TestStreamRetriesThrottling(t *testing.T) {
	store, client, _ := newTestStore(t)
	seedBlocks(t, store, "b1")
	client.queryErrs = []error{
		&types.ProvisionedThroughputExceededException{Message: aws.String("slow down")},
		&types.InternalServerError{Message: aws.String("oops")},
	}

	ids, errs := collect(store.Stream(context.Background(), storagemodels.PartitionQuery("BLOCK#b1"),
		storagemodels.WithRetryBackoff(time.Millisecond)))

	if len(errs) != 0 || len(ids) != 1 {
		t.Fatalf("ids = %v, errs = %v", ids, errs)
	}
	if client.queryCalls != 3 {
		t.Errorf("query calls = %d, want 3", client.queryCalls)
	}
}

func TestStreamStopsOnPermanentError(t *testing.T) {
	store, client, _ := newTestStore(t)
	seedBlocks(t, store, "b1")
	denied := errors.New("access denied")
	client.queryErrs = []error{denied}

	ids, errs := collect(store.Stream(context.Background(), storagemodels.PartitionQuery("BLOCK#b1"),
		storagemodels.WithRetryBackoff(time.Millisecond)))

	if len(ids) != 0 || len(errs) != 1 || !errors.Is(errs[0], denied) {
		t.Fatalf("ids = %v, errs = %v", ids, errs)
	}
	if client.queryCalls != 1 {
		t.Errorf("query calls = %d, want 1", client.queryCalls)
	}

	// An error handler that accepts the failure still sees the error result,
	// and the stream queries the failed page again.
	client.queryErrs = []error{denied, nil}
	client.queryCalls = 0
	var handled []error
	ids, errs = collect(store.Stream(context.Background(), storagemodels.PartitionQuery("BLOCK#b1"),
		storagemodels.WithErrorHandler(func(err error) bool {
			handled = append(handled, err)
			return true
		})))
	if strings.Join(ids, ",") != "b1" || len(errs) != 1 || !errors.Is(errs[0], denied) || len(handled) != 1 {
		t.Fatalf("ids = %v, errs = %v, handled = %v", ids, errs, handled)
	}
	if client.queryCalls != 2 {
		t.Errorf("query calls = %d, want 2", client.queryCalls)
	}

	// A handler that gives up ends the stream after the error result.
	client.queryErrs = []error{denied, denied}
	ids, errs = collect(store.Stream(context.Background(), storagemodels.PartitionQuery("BLOCK#b1"),
		storagemodels.WithErrorHandler(func(err error) bool { return false })))
	if len(ids) != 0 || len(errs) != 1 {
		t.Fatalf("ids = %v, errs = %v", ids, errs)
	}
	client.queryErrs = nil
}

func TestStreamItemErrors(t *testing.T) {
	store, client, _ := newTestStore(t)
	seedBlocks(t, store, "b1", "b2", "b3")

	// A payload that no longer validates and an unknown family
	client.items["BLOCK#b1|text"]["text"] = &types.AttributeValueMemberS{Value: "not a record"}
	client.items["BLOCK#b2|text"][EntityTypeAttribute] = &types.AttributeValueMemberS{Value: "Retired"}

	results := store.Stream(context.Background(), storagemodels.PartitionQuery("BLOCK#b1"))
	_, errs := collect(results)
	if len(errs) != 1 || !terrors.IsPayloadCoercionFailed(errs[0]) {
		t.Fatalf("errs = %v", errs)
	}

	var items []string
	var failures []error
	for result := range store.QueryIndex("GSI1").WithPartition(map[string]any{"parent_id": "p1"}).Stream(context.Background()) {
		if result.Error != nil {
			failures = append(failures, result.Error)
			if result.Raw == nil {
				t.Error("failed results should carry the raw item")
			}
			continue
		}
		items = append(items, result.Record.Serialize()["id"].(string))
	}
	if strings.Join(items, ",") != "b3" || len(failures) != 2 {
		t.Fatalf("items = %v, failures = %v", items, failures)
	}
	if !terrors.IsUnregisteredFamily(failures[1]) {
		t.Errorf("expected unregistered family, got %v", failures[1])
	}

	// Stop at the first bad item
	var stopped int
	results = store.QueryIndex("GSI1").WithPartition(map[string]any{"parent_id": "p1"}).Stream(context.Background(),
		storagemodels.WithErrorHandler(func(error) bool {
			stopped++
			return false
		}))
	ids, errs := collect(results)
	if len(ids) != 0 || len(errs) != 1 || stopped != 1 {
		t.Fatalf("ids = %v, errs = %v, stopped = %d", ids, errs, stopped)
	}
}

func TestStreamCancel(t *testing.T) {
	store, _, _ := newTestStore(t)
	seedBlocks(t, store, "b1", "b2", "b3")

	ctx, cancel := context.WithCancel(context.Background())
	results := store.QueryIndex("GSI1").WithPartition(map[string]any{"parent_id": "p1"}).
		Stream(ctx, storagemodels.WithBufferSize(0))

	first, ok := <-results
	if !ok || first.Error != nil {
		t.Fatalf("first result = %+v, %v", first, ok)
	}
	cancel()

	drained := 0
	for range results {
		drained++
	}
	if drained > 1 {
		t.Errorf("received %d results after cancel", drained)
	}
}
