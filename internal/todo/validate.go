package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/rustybrain/internal/utils"
)

//go:embed store.schema.json
var storeSchemaJSON string

const storeSchemaURL = "store.schema.json"

var compileStoreSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(storeSchemaURL, strings.NewReader(storeSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add store schema: %w", err)
	}
	schema, err := compiler.Compile(storeSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile store schema: %w", err)
	}
	return schema, nil
})

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dot path to the offending value, e.g. "[0].description"
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Decode parses and validates store contents. Blank input is an empty list.
// Tasks are normalized and tasks without an id receive one.
func Decode(data []byte) (List, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return List{}, nil
	}

	if err := Validate(data); err != nil {
		return nil, err
	}

	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse store: %w", err)
	}
	for i := range list {
		list[i].normalize()
	}
	list.assignMissingIDs()
	return list, nil
}

// Validate checks raw store contents against the embedded JSON Schema.
// Schema violations are joined *ValidationError values.
func Validate(data []byte) error {
	schema, err := compileStoreSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse store: %w", err)
	}
	if dec.More() {
		return errors.New("parse store: trailing data after JSON value")
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		return errors.Join(collectSchemaErrors(nil, ve)...)
	}
	return nil
}

func collectSchemaErrors(errs []error, err *jsonschema.ValidationError) []error {
	if len(err.Causes) == 0 {
		return append(errs, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
	}
	for _, cause := range err.Causes {
		errs = collectSchemaErrors(errs, cause)
	}
	return errs
}
