package settings

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// RawInput is a submitted settings form. A missing key means the field was
// not submitted at all.
type RawInput map[string]string

// FromValues flattens form values, keeping the first value of each key.
func FromValues(values url.Values) RawInput {
	input := make(RawInput, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			input[key] = vals[0]
		}
	}
	return input
}

func (in RawInput) filled(key string) bool {
	value, ok := in[key]
	return ok && Filled(value)
}

// ValidationError is an advisory diagnostic for one field. It never blocks
// the record from being saved.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects the diagnostics for one submission.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "settings: no validation errors"
	}
	parts := make([]string, len(v))
	for i, err := range v {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

// Fields lists the field names that failed, in report order.
func (v ValidationErrors) Fields() []string {
	out := make([]string, len(v))
	for i, err := range v {
		out[i] = err.Field
	}
	return out
}

// Validate evaluates every schema field against input and returns the full
// replacement record along with any advisory errors.
func Validate(input RawInput) (Record, ValidationErrors) {
	values, errs := evaluate(Schema, input)

	var record Record
	if err := decodeRecord(values, &record); err != nil {
		// Schema and Record are declared together; a mismatch is a programming error.
		panic(fmt.Sprintf("settings: decode record: %v", err))
	}
	return record, errs
}

func evaluate(schema []Field, input RawInput) (map[string]any, ValidationErrors) {
	values := make(map[string]any, len(schema))
	var errs ValidationErrors

	for _, field := range schema {
		raw, present := input[field.Name]

		switch field.Kind {
		case KindFlag:
			if present && Filled(raw) {
				values[field.Name] = 1
			} else {
				values[field.Name] = 0
			}
			continue
		case KindURL:
			values[field.Name] = SanitizeURL(raw)
			continue
		case KindFreeText:
			values[field.Name] = SanitizeText(raw)
			continue
		}

		value := ""
		if present && Filled(raw) {
			value = SanitizeText(raw)
		}
		values[field.Name] = value

		if field.EnabledBy == "" || !input.filled(field.EnabledBy) {
			continue
		}
		switch {
		case field.Required && !Filled(value):
			errs = append(errs, field.failure())
		case field.Rule != nil && Filled(value) && !field.Rule(value):
			errs = append(errs, field.failure())
		}
	}

	return values, errs
}

func (f Field) failure() ValidationError {
	return ValidationError{Field: f.Name, Code: f.Code(), Message: f.Message}
}

func decodeRecord(values map[string]any, out *Record) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "mapstructure",
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}

// ToMap flattens a record into its option-name keyed form.
func (r Record) ToMap() (map[string]any, error) {
	out := make(map[string]any, len(Schema))
	if err := mapstructure.Decode(r, &out); err != nil {
		return nil, fmt.Errorf("settings: encode record: %w", err)
	}
	return out, nil
}
