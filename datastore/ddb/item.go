/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	terrors "github.com/suparena/typedmodel/errors"
	"github.com/suparena/typedmodel/record"
)

// wireForm returns the JSON form of r as generic values, so stored attributes use
// the payload's json field names and encodings.
func wireForm(r record.Record) (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return wire, nil
}

func (s *Store) encodeRecord(r record.Record) (map[string]types.AttributeValue, error) {
	wire, err := wireForm(r)
	if err != nil {
		return nil, err
	}
	for name := range wire {
		if _, clash := s.keys[name]; clash || name == EntityTypeAttribute {
			return nil, terrors.NewValidationError(name, "field collides with a table attribute")
		}
	}

	av, err := attributevalue.MarshalMap(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	expanded, err := expandMacros(s.keys, s.templateNames(), wire)
	if err != nil {
		return nil, err
	}
	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}

	if !r.IsNull() {
		av[EntityTypeAttribute] = &types.AttributeValueMemberS{Value: r.Discriminator().Family().Name()}
	}
	return av, nil
}

// decodeItem rebuilds a record from a stored item. When EntityType is present the
// discriminator is parsed by that family alone, so tags shared between families
// come back with the family they were written with.
func (s *Store) decodeItem(item map[string]types.AttributeValue) (record.Record, error) {
	attrs := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		if _, isKey := s.keys[k]; isKey || k == EntityTypeAttribute {
			continue
		}
		attrs[k] = v
	}

	var input map[string]any
	if err := attributevalue.UnmarshalMap(attrs, &input); err != nil {
		return record.Record{}, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	if attr, ok := item[EntityTypeAttribute]; ok {
		var familyName string
		if err := attributevalue.Unmarshal(attr, &familyName); err != nil {
			return record.Record{}, fmt.Errorf("failed to unmarshal EntityType: %w", err)
		}
		family, ok := s.reg.FamilyByName(familyName)
		if !ok {
			return record.Record{}, terrors.NewUnregisteredFamilyError(familyName)
		}
		if tag, ok := input[s.layout.DiscriminatorKey].(string); ok {
			v, err := family.Parse(tag)
			if err != nil {
				return record.Record{}, terrors.NewNoMatchingFamilyError(tag, err.Error())
			}
			input[s.layout.DiscriminatorKey] = v
		}
	}

	return record.Construct(s.reg, input, record.WithLayout(s.layout))
}
