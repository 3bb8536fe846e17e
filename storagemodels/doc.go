/*
Package storagemodels defines the query and streaming types shared by the record stores.

QueryParams:
Parameters for querying the datastore:

	params := &QueryParams{
	    KeyConditionExpression: "PK = :pk",
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":pk": &types.AttributeValueMemberS{Value: "BLOCK#b1"},
	    },
	    FilterExpression: aws.String("EntityType = :family"),
	    Limit:            aws.Int32(100),
	}

PartitionQuery builds the common single-partition form.

StreamResult:
Results from streaming operations with metadata:

	type StreamResult struct {
	    Record record.Record                   // The reconstructed record
	    Raw    map[string]types.AttributeValue // Raw DynamoDB attributes
	    Error  error                           // Item-specific error, if any
	    Meta   StreamMeta                      // Metadata about this item
	}

StreamOptions:
Configuration for streaming behavior:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
