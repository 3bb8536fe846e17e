/*
Package ddb provides a DynamoDB implementation of datastore.RecordStore.

The Store supports:
  - Single-table design with key templates
  - Automatic EntityType injection so records come back with their own family
  - Secondary index queries through QueryBuilder
  - Streaming with retry logic and progress reporting
  - Conditional updates of ordinary fields

Key Templates:
Key attributes are expanded from the top-level fields of a record's serialized form:

	keys := ddb.KeyTemplate{
	    "PK":  "BLOCK#{id}",   // Becomes "BLOCK#b1"
	    "SK":  "{type}",       // The discriminator tag
	    "PK1": "PARENT#{parent_id}",
	}
	store, err := ddb.New(client, "records", reg, keys,
	    ddb.WithIndex(ddb.IndexConfig{IndexName: "GSI1", PartitionKeyName: "PK1", SortKeyName: "SK"}),
	)

Reads strip the key attributes and rebuild each record with record.Construct, so
payloads are validated again on the way out.

Streaming:

	results := store.Stream(ctx, storagemodels.PartitionQuery("BLOCK#b1"),
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        slog.Info("Streaming.", "items", p.ItemsProcessed)
	    }),
	)
*/
package ddb
