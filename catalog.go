/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package typedmodel

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/typedmodel/datastore"
	"github.com/suparena/typedmodel/errors"
	"github.com/suparena/typedmodel/registry"
)

// Catalog is a thread-safe collection of named schemas. Each schema is a registry
// plus the record stores that persist records validated against it.
type Catalog struct {
	mu      sync.RWMutex
	schemas map[string]*schema
}

type schema struct {
	reg    *registry.Registry
	stores map[string]datastore.RecordStore
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		schemas: make(map[string]*schema),
	}
}

// RegisterRegistry adds a schema under name.
func (c *Catalog) RegisterRegistry(name string, reg *registry.Registry) error {
	if reg == nil {
		return errors.NewValidationError("registry", "must not be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.schemas[name]; exists {
		return fmt.Errorf("registry with key %q already registered", name)
	}
	c.schemas[name] = &schema{reg: reg, stores: make(map[string]datastore.RecordStore)}
	return nil
}

// Registry returns the registry of the named schema.
func (c *Catalog) Registry(name string) (*registry.Registry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, exists := c.schemas[name]
	if !exists {
		return nil, errors.NewNotFoundError("registry", name)
	}
	return s.reg, nil
}

// RegisterStore attaches a record store to the named schema.
func (c *Catalog) RegisterStore(schemaName, storeName string, store datastore.RecordStore) error {
	if store == nil {
		return errors.NewValidationError("store", "must not be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s, exists := c.schemas[schemaName]
	if !exists {
		return errors.NewNotFoundError("registry", schemaName)
	}
	if _, exists := s.stores[storeName]; exists {
		return fmt.Errorf("datastore with key %q already registered for %q", storeName, schemaName)
	}
	s.stores[storeName] = store
	return nil
}

// Store returns a record store of the named schema.
func (c *Catalog) Store(schemaName, storeName string) (datastore.RecordStore, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, exists := c.schemas[schemaName]
	if !exists {
		return nil, errors.NewNotFoundError("registry", schemaName)
	}
	store, exists := s.stores[storeName]
	if !exists {
		return nil, errors.NewNotFoundError("datastore", schemaName+"/"+storeName)
	}
	return store, nil
}

// Stores lists the store names of a schema in sorted order.
func (c *Catalog) Stores(schemaName string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, exists := c.schemas[schemaName]
	if !exists {
		return nil
	}
	names := make([]string, 0, len(s.stores))
	for name := range s.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove deletes a schema and its stores.
func (c *Catalog) Remove(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.schemas[name]; !exists {
		return errors.NewNotFoundError("registry", name)
	}
	delete(c.schemas, name)
	return nil
}

// List returns all schema names in sorted order.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.schemas))
	for name := range c.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
