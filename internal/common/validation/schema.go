package validation

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed request.schema.json
var requestSchemaJSON []byte

var (
	requestSchemaOnce sync.Once
	requestSchema     *gojsonschema.Schema
	requestSchemaErr  error
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (vr *ValidationResult) add(field, code, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message, Code: code})
	vr.Valid = false
}

func (vr *ValidationResult) GetErrorMessages() []string {
	msgs := make([]string, len(vr.Errors))
	for i, e := range vr.Errors {
		msgs[i] = e.Message
	}
	return msgs
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, e := range vr.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

func loadRequestSchema() (*gojsonschema.Schema, error) {
	requestSchemaOnce.Do(func() {
		requestSchema, requestSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(requestSchemaJSON))
	})
	return requestSchema, requestSchemaErr
}

// ValidateDocument checks a raw request body against the embedded schema.
// A body that is not JSON at all is reported as an error, not a result.
func ValidateDocument(raw []byte) (*ValidationResult, error) {
	schema, err := loadRequestSchema()
	if err != nil {
		return nil, fmt.Errorf("load request schema: %w", err)
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: true}
	if !res.Valid() {
		for _, desc := range res.Errors() {
			out.add(desc.Field(), "SCHEMA_"+strings.ToUpper(desc.Type()), desc.String())
		}
	}
	return out, nil
}
