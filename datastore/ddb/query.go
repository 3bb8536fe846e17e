/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/suparena/typedmodel/record"
	"github.com/suparena/typedmodel/storagemodels"
)

func (s *Store) queryInput(params *storagemodels.QueryParams) *dynamodb.QueryInput {
	tableName := params.TableName
	if tableName == "" {
		tableName = s.tableName
	}
	return &dynamodb.QueryInput{
		TableName:                 &tableName,
		KeyConditionExpression:    &params.KeyConditionExpression,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     params.Limit,
		ExclusiveStartKey:         params.ExclusiveStartKey,
		ScanIndexForward:          params.ScanIndexForward,
	}
}

// Query returns the records of one query page. Each item is rebuilt through the
// registry using its EntityType attribute; the first item that fails fails the query.
// Use Stream to read every page.
func (s *Store) Query(ctx context.Context, params *storagemodels.QueryParams) ([]record.Record, error) {
	out, err := s.client.Query(ctx, s.queryInput(params))
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	results := make([]record.Record, 0, len(out.Items))
	for i, item := range out.Items {
		r, err := s.decodeItem(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		results = append(results, r)
	}
	return results, nil
}
