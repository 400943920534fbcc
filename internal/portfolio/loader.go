// Package portfolio loads and validates the portfolio document.
package portfolio

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"portfolio-assistant/internal/domain"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// Getter is the parameter store lookup used to read the document from SSM.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// ValidationError lists schema violations found in a portfolio document.
type ValidationError struct {
	Errors []FieldError
}

type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("portfolio: validation failed:")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %d. %s: %s;", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Validate checks raw against the embedded portfolio schema.
func Validate(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("portfolio: validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// Parse validates and decodes a portfolio document. Every error wraps
// domain.ErrDataUnavailable.
func Parse(raw []byte) (*domain.Portfolio, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: document is empty", domain.ErrDataUnavailable)
	}
	if err := Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}
	var p domain.Portfolio
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: portfolio: decode: %w", domain.ErrDataUnavailable, err)
	}
	if isEmpty(&p) {
		return nil, fmt.Errorf("%w: document has no sections", domain.ErrDataUnavailable)
	}
	return &p, nil
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (*domain.Portfolio, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: no data path configured", domain.ErrDataUnavailable)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: portfolio: read %s: %w", domain.ErrDataUnavailable, path, err)
	}
	return Parse(raw)
}

// LoadParameter reads the document from a parameter store entry.
func LoadParameter(ctx context.Context, getter Getter, name string) (*domain.Portfolio, error) {
	if getter == nil {
		return nil, errors.New("portfolio: getter must not be nil")
	}
	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: portfolio: fetch %s: %w", domain.ErrDataUnavailable, name, err)
	}
	return Parse([]byte(raw))
}

func isEmpty(p *domain.Portfolio) bool {
	return p.Profile == nil && p.Skills == nil && p.Projects == nil &&
		p.Experience == nil && p.Contact == nil && p.Achievements == nil
}
