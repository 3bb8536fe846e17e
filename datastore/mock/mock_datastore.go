/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory datastore.RecordStore for testing
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/suparena/typedmodel/datastore"
	"github.com/suparena/typedmodel/errors"
	"github.com/suparena/typedmodel/record"
	"github.com/suparena/typedmodel/storagemodels"
)

// DataStore is an in-memory datastore.RecordStore. Records are keyed by the
// values of the configured key fields, read from their serialized form.
type DataStore struct {
	mu          sync.RWMutex
	data        map[string]record.Record
	keyFields   []string
	queryFunc   func(ctx context.Context, params *storagemodels.QueryParams) ([]record.Record, error)
	putError    error
	deleteError error
	updateError error
}

var _ datastore.RecordStore = (*DataStore)(nil)

// New creates a mock store keyed by keyFields, "id" and "type" when none are given.
func New(keyFields ...string) *DataStore {
	if len(keyFields) == 0 {
		keyFields = []string{"id", record.DefaultLayout.DiscriminatorKey}
	}
	return &DataStore{
		data:      make(map[string]record.Record),
		keyFields: keyFields,
	}
}

// WithQueryFunc sets a custom query function for testing
func (m *DataStore) WithQueryFunc(f func(ctx context.Context, params *storagemodels.QueryParams) ([]record.Record, error)) *DataStore {
	m.queryFunc = f
	return m
}

// WithPutError makes Put operations return an error
func (m *DataStore) WithPutError(err error) *DataStore {
	m.putError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *DataStore) WithDeleteError(err error) *DataStore {
	m.deleteError = err
	return m
}

// WithUpdateError makes UpdateFields operations return an error
func (m *DataStore) WithUpdateError(err error) *DataStore {
	m.updateError = err
	return m
}

func (m *DataStore) key(values map[string]any) (string, error) {
	parts := make([]string, len(m.keyFields))
	for i, field := range m.keyFields {
		v, ok := values[field]
		if !ok || v == nil {
			return "", errors.NewValidationError(field, "missing key field")
		}
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "|"), nil
}

// Get retrieves a record by its key fields
func (m *DataStore) Get(ctx context.Context, key datastore.Key) (record.Record, error) {
	id, err := m.key(key)
	if err != nil {
		return record.Record{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, exists := m.data[id]; exists {
		return r, nil
	}
	return record.Record{}, errors.NewNotFoundError("record", id)
}

// Put stores a record
func (m *DataStore) Put(ctx context.Context, r record.Record) error {
	if m.putError != nil {
		return m.putError
	}

	id, err := m.key(r.Serialize())
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = r
	return nil
}

// UpdateFields sets ordinary fields on a stored record. Conditions are not evaluated;
// a missing record fails with a not found error.
func (m *DataStore) UpdateFields(ctx context.Context, key datastore.Key, fields map[string]any, condition string) error {
	if m.updateError != nil {
		return m.updateError
	}

	id, err := m.key(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, exists := m.data[id]
	if !exists {
		return errors.NewNotFoundError("record", id)
	}
	for name, value := range fields {
		if r, err = r.WithField(name, value); err != nil {
			return err
		}
	}
	m.data[id] = r
	return nil
}

// Query returns every stored record in key order unless a query function is set
func (m *DataStore) Query(ctx context.Context, params *storagemodels.QueryParams) ([]record.Record, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params)
	}
	return m.Records(), nil
}

// Stream sends the Query results one by one
func (m *DataStore) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult {
	options := storagemodels.ApplyStreamOptions(opts...)
	resultChan := make(chan storagemodels.StreamResult, options.BufferSize)

	go func() {
		defer close(resultChan)

		records, err := m.Query(ctx, params)
		if err != nil {
			select {
			case <-ctx.Done():
			case resultChan <- storagemodels.StreamResult{Error: err}:
			}
			return
		}

		for i, r := range records {
			select {
			case <-ctx.Done():
				return
			case resultChan <- storagemodels.StreamResult{
				Record: r,
				Meta: storagemodels.StreamMeta{
					Index:      int64(i),
					PageNumber: 1,
				},
			}:
			}
		}
		if options.ProgressHandler != nil {
			options.ProgressHandler(storagemodels.StreamProgress{ItemsProcessed: int64(len(records)), PagesProcessed: 1})
		}
	}()

	return resultChan
}

// Delete removes a record by its key fields
func (m *DataStore) Delete(ctx context.Context, key datastore.Key) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	id, err := m.key(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[id]; !exists {
		return errors.NewNotFoundError("record", id)
	}
	delete(m.data, id)
	return nil
}

// Helper methods for testing

// Records returns the stored records in key order
func (m *DataStore) Records() []record.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]record.Record, len(ids))
	for i, id := range ids {
		records[i] = m.data[id]
	}
	return records
}

// Count returns the number of stored records
func (m *DataStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes all data
func (m *DataStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]record.Record)
}
