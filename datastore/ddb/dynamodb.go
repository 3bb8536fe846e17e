/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	tmconfig "github.com/suparena/typedmodel/config"
	"github.com/suparena/typedmodel/datastore"
	terrors "github.com/suparena/typedmodel/errors"
	"github.com/suparena/typedmodel/record"
	"github.com/suparena/typedmodel/registry"
)

const (
	// PartitionKey and SortKey are the primary key attributes every key template must define.
	PartitionKey = "PK"
	SortKey      = "SK"

	// EntityTypeAttribute holds the name of the discriminator family of a stored record.
	EntityTypeAttribute = "EntityType"
)

// Client is the subset of the DynamoDB API the store uses. *dynamodb.Client satisfies it.
type Client interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// KeyTemplate maps key attribute names to templates expanded from a record's
// top-level fields, e.g. {"PK": "BLOCK#{id}", "SK": "{type}", "PK1": "PARENT#{parent_id}"}.
type KeyTemplate map[string]string

// Store implements datastore.RecordStore on a single DynamoDB table.
type Store struct {
	client    Client
	tableName string
	reg       *registry.Registry
	keys      KeyTemplate
	layout    record.Layout
	indexes   map[string]IndexConfig
	logger    *slog.Logger
}

var _ datastore.RecordStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLayout sets the record layout used to rebuild records on read.
func WithLayout(layout record.Layout) Option {
	return func(s *Store) {
		s.layout = layout
	}
}

// WithIndex declares a secondary index whose key attributes appear in the key template.
func WithIndex(index IndexConfig) Option {
	return func(s *Store) {
		s.indexes[index.IndexName] = index
	}
}

// New returns a store over an existing client.
func New(client Client, tableName string, reg *registry.Registry, keys KeyTemplate, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, terrors.NewValidationError("client", "must not be nil")
	}
	if reg == nil {
		return nil, terrors.NewValidationError("registry", "must not be nil")
	}
	if tableName == "" {
		return nil, terrors.NewValidationError("table", "must not be empty")
	}
	if keys[PartitionKey] == "" || keys[SortKey] == "" {
		return nil, fmt.Errorf("%w: templates for %s and %s are required", terrors.ErrNoKeyTemplate, PartitionKey, SortKey)
	}

	s := &Store{
		client:    client,
		tableName: tableName,
		reg:       reg,
		keys:      keys,
		layout:    record.DefaultLayout,
		indexes:   make(map[string]IndexConfig),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for name, index := range s.indexes {
		if keys[index.PartitionKeyName] == "" {
			return nil, fmt.Errorf("%w: index %s needs a template for %s", terrors.ErrNoKeyTemplate, name, index.PartitionKeyName)
		}
	}
	return s, nil
}

// NewDynamoDBClient initializes a DynamoDB client using static AWS credentials.
func NewDynamoDBClient(ctx context.Context, settings tmconfig.StoreSettings) (*sdk.Client, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store settings: %w", err)
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(settings.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.AccessKey, settings.SecretKey.Reveal(), ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(cfg), nil
}

// Open connects to the table named in settings.
func Open(ctx context.Context, settings tmconfig.StoreSettings, reg *registry.Registry, keys KeyTemplate, opts ...Option) (*Store, error) {
	client, err := NewDynamoDBClient(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	s, err := New(client, settings.Table, reg, keys, opts...)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("DynamoDB record store opened.", "table", settings.Table, "region", settings.Region)
	return s, nil
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandMacros expands the named templates from the top-level scalar values.
func expandMacros(templates KeyTemplate, names []string, values map[string]any) (map[string]string, error) {
	res := make(map[string]string, len(names))
	for _, name := range names {
		template, ok := templates[name]
		if !ok {
			return nil, fmt.Errorf("%w: no template for %s", terrors.ErrNoKeyTemplate, name)
		}
		var expandErr error
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			field := strings.Trim(macro, "{}")
			s, err := scalarString(field, values[field])
			if err != nil && expandErr == nil {
				expandErr = err
			}
			return s
		})
		if expandErr != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", name, expandErr)
		}
		res[name] = expanded
	}
	return res, nil
}

func scalarString(field string, v any) (string, error) {
	switch tv := v.(type) {
	case nil:
		return "", terrors.NewValidationError(field, "missing value for key template")
	case string:
		if tv == "" {
			return "", terrors.NewValidationError(field, "empty value for key template")
		}
		return tv, nil
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(tv), nil
	case int, int32, int64, uint, uint32, uint64, json.Number:
		return fmt.Sprint(tv), nil
	case fmt.Stringer:
		return tv.String(), nil
	default:
		return "", terrors.NewValidationError(field, fmt.Sprintf("%T cannot be used in a key template", v))
	}
}

func (s *Store) templateNames() []string {
	names := make([]string, 0, len(s.keys))
	for name := range s.keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// primaryKey expands PK and SK from key.
func (s *Store) primaryKey(key datastore.Key) (map[string]types.AttributeValue, string, error) {
	expanded, err := expandMacros(s.keys, []string{PartitionKey, SortKey}, key)
	if err != nil {
		return nil, "", err
	}
	return map[string]types.AttributeValue{
		PartitionKey: &types.AttributeValueMemberS{Value: expanded[PartitionKey]},
		SortKey:      &types.AttributeValueMemberS{Value: expanded[SortKey]},
	}, expanded[PartitionKey] + "|" + expanded[SortKey], nil
}

// Get retrieves one record by the fields its key template is built from.
func (s *Store) Get(ctx context.Context, key datastore.Key) (record.Record, error) {
	keyMap, id, err := s.primaryKey(key)
	if err != nil {
		return record.Record{}, fmt.Errorf("failed to build key: %w", err)
	}

	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.tableName,
		Key:       keyMap,
	})
	if err != nil {
		return record.Record{}, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return record.Record{}, terrors.NewNotFoundError("record", id)
	}

	return s.decodeItem(out.Item)
}

// Put stores the serialized form of r, its key attributes, and the name of its
// discriminator family under EntityType.
func (s *Store) Put(ctx context.Context, r record.Record) error {
	item, err := s.encodeRecord(r)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// Delete removes one record by the fields its key template is built from.
func (s *Store) Delete(ctx context.Context, key datastore.Key) error {
	keyMap, id, err := s.primaryKey(key)
	if err != nil {
		return fmt.Errorf("failed to build key for Delete: %w", err)
	}

	_, err = s.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &s.tableName,
		Key:       keyMap,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return fmt.Errorf("delete of %s: %w", id, terrors.NewConditionFailedError("delete", "item condition"))
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// UpdateFields sets ordinary fields on a stored record. Discriminator, payload, key and
// EntityType attributes cannot be updated this way; write a new record with Put instead.
func (s *Store) UpdateFields(ctx context.Context, key datastore.Key, fields map[string]any, condition string) error {
	keyMap, id, err := s.primaryKey(key)
	if err != nil {
		return fmt.Errorf("failed to build key: %w", err)
	}
	for name := range fields {
		if s.reserved(name) {
			return terrors.NewValidationError(name, "attribute cannot be updated in place")
		}
	}

	updateExpr, exprAttrNames, exprAttrValues, err := buildUpdateExpression(fields)
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	input := &sdk.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       keyMap,
		UpdateExpression:          &updateExpr,
		ExpressionAttributeNames:  exprAttrNames,
		ExpressionAttributeValues: exprAttrValues,
		ReturnValues:              types.ReturnValueNone,
	}
	if condition != "" {
		input.ConditionExpression = &condition
	}

	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return fmt.Errorf("update of %s: %w", id, terrors.NewConditionFailedError("update", condition))
		}
		return fmt.Errorf("UpdateFields failed: %w", err)
	}
	return nil
}

// reserved reports whether name is owned by the record layout or the table keys.
func (s *Store) reserved(name string) bool {
	if name == s.layout.DiscriminatorKey || name == s.layout.PayloadKey || name == EntityTypeAttribute {
		return true
	}
	if _, ok := s.keys[name]; ok {
		return true
	}
	for _, f := range s.reg.Families() {
		if f.Contains(name) {
			return true
		}
	}
	return false
}

// buildUpdateExpression transforms a map of field->value into:
//   - an "update expression" (e.g., "SET #f0 = :v0, #f1 = :v1")
//   - a corresponding map of expression attribute names
//   - a corresponding map of expression attribute values
func buildUpdateExpression(updates map[string]any) (string, map[string]string, map[string]types.AttributeValue, error) {
	if len(updates) == 0 {
		return "", nil, nil, errors.New("no updates provided")
	}

	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	setClauses := make([]string, 0, len(fields))
	exprAttrNames := make(map[string]string, len(fields))
	exprAttrValues := make(map[string]types.AttributeValue, len(fields))

	for i, field := range fields {
		placeholderName := fmt.Sprintf("#f%d", i)
		placeholderValue := fmt.Sprintf(":v%d", i)

		av, err := attributevalue.Marshal(updates[field])
		if err != nil {
			return "", nil, nil, fmt.Errorf("unhandled update value type for field '%s': %w", field, err)
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", placeholderName, placeholderValue))
		exprAttrNames[placeholderName] = field
		exprAttrValues[placeholderValue] = av
	}

	return "SET " + strings.Join(setClauses, ", "), exprAttrNames, exprAttrValues, nil
}
