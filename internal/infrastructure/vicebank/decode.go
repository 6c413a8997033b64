package vicebank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/pkg/validation"
)

// strictUnmarshal decodes exactly one JSON value into v, rejecting unknown
// object keys and trailing data.
func strictUnmarshal(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return describeDecodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func describeDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return fmt.Errorf("expected %s, got %s", typeErr.Type, typeErr.Value)
		}
		return fmt.Errorf("%s must be %s, got %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String()), typeErr.Value)
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.Is(err, io.EOF):
		return errors.New("empty response body")
	default:
		return err
	}
}

func jsonKind(goKind string) string {
	switch goKind {
	case "float64", "float32", "int", "int64", "int32":
		return "a number"
	case "string":
		return "a string"
	case "struct", "map", "ptr":
		return "an object"
	case "slice", "array":
		return "an array"
	default:
		return goKind
	}
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// envelope returns the value stored under key in a single-key response
// object such as {"users": [...]}.
func envelope(op string, raw []byte, key string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := strictUnmarshal(raw, &obj); err != nil {
		return nil, &domain.ValidationError{Op: op, Problems: []string{err.Error()}}
	}
	if obj == nil {
		return nil, &domain.ValidationError{Op: op, Problems: []string{"response must be an object"}}
	}
	value, ok := obj[key]
	if !ok {
		return nil, &domain.ValidationError{Op: op, Problems: []string{key + " is required"}}
	}
	if len(obj) > 1 {
		extra := make([]string, 0, len(obj)-1)
		for k := range obj {
			if k != key {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		return nil, &domain.ValidationError{Op: op, Problems: []string{"unexpected field(s): " + strings.Join(extra, ", ")}}
	}
	return value, nil
}

// decodeOne decodes and validates a single wire value.
func decodeOne[W any](c *Client, op string, raw []byte) (W, error) {
	var w W
	if isNull(raw) {
		return w, &domain.ValidationError{Op: op, Problems: []string{"value must be an object, got null"}}
	}
	if err := strictUnmarshal(raw, &w); err != nil {
		return w, &domain.ValidationError{Op: op, Problems: []string{err.Error()}}
	}
	if err := c.validate.Struct(&w); err != nil {
		return w, &domain.ValidationError{Op: op, Problems: validation.Messages(err)}
	}
	return w, nil
}

// decodeList decodes an array and validates every element. Problems are
// prefixed with the element index.
func decodeList[W any](c *Client, op string, raw []byte) ([]W, error) {
	if isNull(raw) {
		return nil, &domain.ValidationError{Op: op, Problems: []string{"value must be an array, got null"}}
	}
	var elems []json.RawMessage
	if err := strictUnmarshal(raw, &elems); err != nil {
		return nil, &domain.ValidationError{Op: op, Problems: []string{err.Error()}}
	}

	out := make([]W, 0, len(elems))
	var problems []string
	for i, elem := range elems {
		w, err := decodeOne[W](c, op, elem)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				for _, p := range ve.Problems {
					problems = append(problems, fmt.Sprintf("[%d] %s", i, p))
				}
				continue
			}
			return nil, err
		}
		out = append(out, w)
	}
	if len(problems) > 0 {
		return nil, &domain.ValidationError{Op: op, Problems: problems}
	}
	return out, nil
}
