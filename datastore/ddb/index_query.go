/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/typedmodel/datastore"
	"github.com/suparena/typedmodel/record"
	"github.com/suparena/typedmodel/registry"
	"github.com/suparena/typedmodel/storagemodels"
)

// IndexConfig names a secondary index and its key attributes.
type IndexConfig struct {
	// IndexName is the actual GSI name in DynamoDB (e.g., "GSI1")
	IndexName string
	// PartitionKeyName is the partition key attribute of the index (e.g., "PK1")
	PartitionKeyName string
	// SortKeyName is the sort key attribute of the index (e.g., "SK1"), optional
	SortKeyName string
}

// QueryBuilder provides a fluent interface for building key-condition queries
// against the table or one of its declared indexes.
type QueryBuilder struct {
	store      *Store
	index      *IndexConfig
	partition  datastore.Key
	skValue    string
	skValue2   string
	skOperator string // "=", "begins_with", ">", "<", "BETWEEN"
	families   []*registry.Family
	limit      *int32
	descending bool
	err        error
}

// QueryTable starts a query on the table's primary key.
func (s *Store) QueryTable() *QueryBuilder {
	return &QueryBuilder{
		store: s,
		index: &IndexConfig{PartitionKeyName: PartitionKey, SortKeyName: SortKey},
	}
}

// QueryIndex starts a query on a secondary index declared with WithIndex.
func (s *Store) QueryIndex(name string) *QueryBuilder {
	q := &QueryBuilder{store: s}
	index, ok := s.indexes[name]
	if !ok {
		q.err = fmt.Errorf("index %q is not declared", name)
		return q
	}
	q.index = &index
	return q
}

// WithPartition sets the fields the partition key template is expanded from.
func (q *QueryBuilder) WithPartition(key datastore.Key) *QueryBuilder {
	q.partition = key
	return q
}

// WithSortKey matches the sort key exactly.
func (q *QueryBuilder) WithSortKey(value string) *QueryBuilder {
	q.skValue, q.skOperator = value, "="
	return q
}

// WithSortKeyPrefix matches sort keys beginning with prefix.
func (q *QueryBuilder) WithSortKeyPrefix(prefix string) *QueryBuilder {
	q.skValue, q.skOperator = prefix, "begins_with"
	return q
}

// WithSortKeyGreaterThan matches sort keys after value.
func (q *QueryBuilder) WithSortKeyGreaterThan(value string) *QueryBuilder {
	q.skValue, q.skOperator = value, ">"
	return q
}

// WithSortKeyLessThan matches sort keys before value.
func (q *QueryBuilder) WithSortKeyLessThan(value string) *QueryBuilder {
	q.skValue, q.skOperator = value, "<"
	return q
}

// WithSortKeyBetween matches sort keys in [start, end].
func (q *QueryBuilder) WithSortKeyBetween(start, end string) *QueryBuilder {
	q.skValue, q.skValue2, q.skOperator = start, end, "BETWEEN"
	return q
}

// WithFamilies keeps only records whose discriminator belongs to one of families.
func (q *QueryBuilder) WithFamilies(families ...*registry.Family) *QueryBuilder {
	q.families = append(q.families, families...)
	return q
}

// WithLimit sets the page size.
func (q *QueryBuilder) WithLimit(limit int32) *QueryBuilder {
	q.limit = aws.Int32(limit)
	return q
}

// Descending reverses the sort key order.
func (q *QueryBuilder) Descending() *QueryBuilder {
	q.descending = true
	return q
}

// Build constructs the final query parameters
func (q *QueryBuilder) Build() (*storagemodels.QueryParams, error) {
	if q.err != nil {
		return nil, q.err
	}
	if len(q.partition) == 0 {
		return nil, fmt.Errorf("partition key fields are required")
	}

	expanded, err := expandMacros(q.store.keys, []string{q.index.PartitionKeyName}, q.partition)
	if err != nil {
		return nil, err
	}

	params := &storagemodels.QueryParams{
		TableName: q.store.tableName,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: expanded[q.index.PartitionKeyName]},
		},
		Limit: q.limit,
	}
	if q.index.IndexName != "" {
		params.IndexName = aws.String(q.index.IndexName)
	}
	if q.descending {
		params.ScanIndexForward = aws.Bool(false)
	}

	keyConditions := []string{q.index.PartitionKeyName + " = :pk"}
	if q.skOperator != "" {
		if q.index.SortKeyName == "" {
			return nil, fmt.Errorf("index %q has no sort key", q.index.IndexName)
		}
		sk := q.index.SortKeyName
		params.ExpressionAttributeValues[":sk"] = &types.AttributeValueMemberS{Value: q.skValue}
		switch q.skOperator {
		case "begins_with":
			keyConditions = append(keyConditions, fmt.Sprintf("begins_with(%s, :sk)", sk))
		case "BETWEEN":
			keyConditions = append(keyConditions, sk+" BETWEEN :sk AND :sk2")
			params.ExpressionAttributeValues[":sk2"] = &types.AttributeValueMemberS{Value: q.skValue2}
		default:
			keyConditions = append(keyConditions, fmt.Sprintf("%s %s :sk", sk, q.skOperator))
		}
	}
	params.KeyConditionExpression = strings.Join(keyConditions, " AND ")

	if len(q.families) > 0 {
		placeholders := make([]string, len(q.families))
		for i, f := range q.families {
			placeholders[i] = fmt.Sprintf(":family%d", i)
			params.ExpressionAttributeValues[placeholders[i]] = &types.AttributeValueMemberS{Value: f.Name()}
		}
		params.FilterExpression = aws.String(fmt.Sprintf("%s IN (%s)", EntityTypeAttribute, strings.Join(placeholders, ", ")))
	}

	return params, nil
}

// Execute runs the query and returns one page of records.
func (q *QueryBuilder) Execute(ctx context.Context) ([]record.Record, error) {
	params, err := q.Build()
	if err != nil {
		return nil, err
	}
	return q.store.Query(ctx, params)
}

// Stream executes the query as a stream
func (q *QueryBuilder) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult {
	params, err := q.Build()
	if err != nil {
		ch := make(chan storagemodels.StreamResult, 1)
		ch <- storagemodels.StreamResult{
			Error: fmt.Errorf("failed to build query: %w", err),
		}
		close(ch)
		return ch
	}
	return q.store.Stream(ctx, params, opts...)
}
