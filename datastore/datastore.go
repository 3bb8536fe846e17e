/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/typedmodel/record"
	"github.com/suparena/typedmodel/storagemodels"
)

// Key holds the record fields a store's key template is expanded from,
// for example {"id": "b1", "type": "text"}.
type Key map[string]any

// RecordStore persists records and reconstructs them through a registry on read.
type RecordStore interface {
	Get(ctx context.Context, key Key) (record.Record, error)

	Put(ctx context.Context, r record.Record) error

	// UpdateFields sets ordinary fields of a stored record. An empty condition is unconditional.
	UpdateFields(ctx context.Context, key Key, fields map[string]any, condition string) error

	Query(ctx context.Context, params *storagemodels.QueryParams) ([]record.Record, error)

	Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult

	Delete(ctx context.Context, key Key) error
}
