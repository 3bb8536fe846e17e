/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeClient is an in-memory table keyed by PK and SK. It understands the
// expressions the store generates and nothing more.
type fakeClient struct {
	mu         sync.Mutex
	items      map[string]map[string]types.AttributeValue
	queryErrs  []error
	queryCalls int
	lastQuery  *sdk.QueryInput
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]types.AttributeValue)}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func itemID(item map[string]types.AttributeValue) string {
	return stringAttr(item, PartitionKey) + "|" + stringAttr(item, SortKey)
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (f *fakeClient) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID(in.Key)]
	if !ok {
		return &sdk.GetItemOutput{}, nil
	}
	return &sdk.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeClient) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[itemID(in.Item)] = copyItem(in.Item)
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, itemID(in.Key))
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeClient) UpdateItem(_ context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := itemID(in.Key)
	item, exists := f.items[id]
	if aws.ToString(in.ConditionExpression) == "attribute_exists(PK)" && !exists {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	if !exists {
		item = copyItem(in.Key)
	}

	clauses := strings.Split(strings.TrimPrefix(aws.ToString(in.UpdateExpression), "SET "), ", ")
	for _, clause := range clauses {
		name, value, _ := strings.Cut(clause, " = ")
		item[in.ExpressionAttributeNames[name]] = in.ExpressionAttributeValues[value]
	}
	f.items[id] = item
	return &sdk.UpdateItemOutput{}, nil
}

func (f *fakeClient) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queryCalls++
	f.lastQuery = in
	if len(f.queryErrs) > 0 {
		err := f.queryErrs[0]
		f.queryErrs = f.queryErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	keyAttr, _, _ := strings.Cut(aws.ToString(in.KeyConditionExpression), " = :pk")
	pk := stringAttr(in.ExpressionAttributeValues, ":pk")

	var families []string
	if filter := aws.ToString(in.FilterExpression); strings.HasPrefix(filter, EntityTypeAttribute+" IN") {
		for name, v := range in.ExpressionAttributeValues {
			if strings.HasPrefix(name, ":family") {
				families = append(families, v.(*types.AttributeValueMemberS).Value)
			}
		}
	}

	var matched []map[string]types.AttributeValue
	for _, item := range f.items {
		if stringAttr(item, keyAttr) != pk {
			continue
		}
		if families != nil && !slices.Contains(families, stringAttr(item, EntityTypeAttribute)) {
			continue
		}
		matched = append(matched, item)
	}
	sort.Slice(matched, func(i, j int) bool { return itemID(matched[i]) < itemID(matched[j]) })

	start := 0
	if in.ExclusiveStartKey != nil {
		after := itemID(in.ExclusiveStartKey)
		for start < len(matched) && itemID(matched[start]) <= after {
			start++
		}
	}
	matched = matched[start:]

	out := &sdk.QueryOutput{}
	limit := len(matched)
	if in.Limit != nil && int(*in.Limit) < limit {
		limit = int(*in.Limit)
		last := matched[limit-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			PartitionKey: last[PartitionKey],
			SortKey:      last[SortKey],
		}
	}
	for _, item := range matched[:limit] {
		out.Items = append(out.Items, copyItem(item))
	}
	out.Count = int32(len(out.Items))
	return out, nil
}
