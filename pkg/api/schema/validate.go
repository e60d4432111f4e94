// Package schema validates the free-form JSON request bodies of the API
// against embedded JSON Schema documents.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// PowerRequest validates POST /power bodies.
var PowerRequest = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"command": {"type": "string", "enum": ["power_on", "standby"]}
	},
	"required": ["command"],
	"additionalProperties": false
}`)

// RegistrationRequest validates PUT /steamvr bodies.
var RegistrationRequest = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"enabled": {"type": "boolean"}
	},
	"required": ["enabled"],
	"additionalProperties": false
}`)

// SettingsPatch validates PATCH /settings bodies. All fields are optional;
// the ranges keep the orchestration tunables sane.
var SettingsPatch = json.RawMessage(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"api_host": {"type": "string", "minLength": 1},
		"api_port": {"type": "integer", "minimum": 1, "maximum": 65535},
		"scan_window_ms": {"type": "integer", "minimum": 1000, "maximum": 60000},
		"connect_timeout_ms": {"type": "integer", "minimum": 1000, "maximum": 60000},
		"connect_attempts": {"type": "integer", "minimum": 1, "maximum": 10},
		"backoff_base_ms": {"type": "integer", "minimum": 50, "maximum": 10000},
		"call_budget_ms": {"type": "integer", "minimum": 5000, "maximum": 600000},
		"theme": {"type": "string", "enum": ["dark", "light"]}
	},
	"additionalProperties": false
}`)

// Validator validates JSON payloads against JSON Schema documents.
// It caches compiled schemas keyed by their raw bytes.
type Validator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewValidator creates a new Validator with an empty cache.
func NewValidator() *Validator {
	return &Validator{
		cache: make(map[string]*jsonschema.Schema),
	}
}

// Validate validates payload against the given JSON Schema document.
// Returns nil if valid, or an error describing the validation failures.
func (v *Validator) Validate(schemaDoc json.RawMessage, payload map[string]any) error {
	compiled, err := v.compile(schemaDoc)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	return compiled.Validate(payload)
}

func (v *Validator) compile(schemaDoc json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schemaDoc)

	v.mu.RLock()
	if s, ok := v.cache[key]; ok {
		v.mu.RUnlock()
		return s, nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	// Double-check after acquiring write lock
	if s, ok := v.cache[key]; ok {
		return s, nil
	}

	var schemaMap any
	if err := json.Unmarshal(schemaDoc, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaMap); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile: %w", err)
	}

	v.cache[key] = compiled
	return compiled, nil
}
