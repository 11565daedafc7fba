// Package schema validates JSON documents against named JSON Schemas.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrUnknownSchema is returned when validating against a name that was never registered.
var ErrUnknownSchema = errors.New("unknown schema")

// Validator compiles registered schemas lazily and caches the result.
type Validator struct {
	mu          sync.RWMutex
	definitions map[string][]byte
	cache       map[string]*jsonschema.Schema
}

// NewValidator returns a validator with no registered schemas.
func NewValidator() *Validator {
	return &Validator{
		definitions: make(map[string][]byte),
		cache:       make(map[string]*jsonschema.Schema),
	}
}

// Register stores a schema definition under name, replacing any previous definition.
func (v *Validator) Register(name string, definition []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.definitions[name] = append([]byte(nil), definition...)
	delete(v.cache, name)
}

// Validate decodes payload and checks it against the named schema.
func (v *Validator) Validate(name string, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload is required for validation")
	}

	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	return v.ValidateValue(name, document)
}

// ValidateValue checks an already decoded JSON value (maps, slices, float64, ...).
func (v *Validator) ValidateValue(name string, document any) error {
	compiled, err := v.getOrCompile(name)
	if err != nil {
		return err
	}

	if err := compiled.Validate(document); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

func (v *Validator) getOrCompile(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	compiled, ok := v.cache[name]
	definition, known := v.definitions[name]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// another goroutine may have populated the cache while we were waiting
	if compiled, ok = v.cache[name]; ok {
		return compiled, nil
	}

	key := cacheKey(name)
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(key, bytes.NewReader(definition)); err != nil {
		return nil, fmt.Errorf("register schema %s: %w", name, err)
	}

	newCompiled, err := compiler.Compile(key)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	v.cache[name] = newCompiled
	return newCompiled, nil
}

func cacheKey(name string) string {
	return fmt.Sprintf("memory://schemas/%s.json", name)
}
