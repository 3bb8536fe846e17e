/*
Package datastore defines the persistence interface for typed records.

	type RecordStore interface {
	    Get(ctx context.Context, key Key) (record.Record, error)
	    Put(ctx context.Context, r record.Record) error
	    UpdateFields(ctx context.Context, key Key, fields map[string]any, condition string) error
	    Query(ctx context.Context, params *storagemodels.QueryParams) ([]record.Record, error)
	    Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult
	    Delete(ctx context.Context, key Key) error
	}

Stores write the serialized form of a record and rebuild it with record.Construct
on every read, so a stored record that no longer matches the registry surfaces
as a validation error rather than as a half-typed value.

Implementations:
  - ddb: DynamoDB single-table store with key templates
  - mock: In-memory store for testing
*/
package datastore
