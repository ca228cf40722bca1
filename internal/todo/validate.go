package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/unicode/norm"

	"github.com/nibzard/todoapp-go/internal/utils"
)

//go:embed tasks.schema.json
var collectionSchemaJSON []byte

const collectionSchemaURL = "tasks.schema.json"

var (
	compileOnce      sync.Once
	collectionSchema *jsonschema.Schema
	compileErr       error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(collectionSchemaURL, bytes.NewReader(collectionSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		collectionSchema, compileErr = compiler.Compile(collectionSchemaURL)
	})
	return collectionSchema, compileErr
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
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

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid    bool
	Errors   []error
	Warnings []string
}

// Err joins the validation errors, or returns nil when the data is valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

// ValidateData checks raw persisted bytes against the collection schema.
// Schema violations make the result invalid; duplicate ids and blank texts
// are reported as warnings because the service can still operate on them, as
// are texts that are not in Unicode NFC (they display fine but compare unequal
// to their composed form).
func ValidateData(data []byte) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("parse: %w", err)})
		return result
	}

	schema, err := compiledSchema()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Errorf("compile schema: %w", err))
		return result
	}

	if err := schema.Validate(doc); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
		return result
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("decode tasks: %w", err)})
		return result
	}
	validateMinimal(tasks, result)
	return result
}

// validateMinimal records warnings for problems the schema cannot express.
func validateMinimal(tasks []Task, result *ValidationResult) {
	seen := make(map[string]int, len(tasks))
	for i, t := range tasks {
		path := fmt.Sprintf("[%d]", i)
		if first, dup := seen[t.ID]; dup {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s.id: duplicate of [%d] (%q)", path, first, t.ID))
		} else {
			seen[t.ID] = i
		}
		if TrimText(t.Text) == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s.text: blank", path))
		} else if !norm.NFC.IsNormalString(t.Text) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s.text: not NFC-normalized", path))
		}
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}
