// Package icd10 parses and validates ICD-10-CM diagnosis codes supplied
// in patient input. It accepts dotted and undotted forms ("I50.9",
// "i509") plus the shorthand diagnosis keys the domain defines, and
// normalizes everything to the dotted uppercase representation used
// throughout the rest of the system.
package icd10

import (
	"fmt"
	"strings"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// Code represents a parsed ICD-10-CM code
type Code struct {
	Original  string `json:"original"`
	Code      string `json:"code"`      // normalized dotted form, e.g. I50.9
	Category  string `json:"category"`  // three-character stem, e.g. I50
	Extension string `json:"extension"` // characters after the decimal, e.g. 9
	Chapter   string `json:"chapter"`   // chapter description
}

// IsCardiovascular reports whether the code falls in the circulatory
// system chapter (I00-I99).
func (c *Code) IsCardiovascular() bool {
	return strings.HasPrefix(c.Category, "I")
}

// Matches reports whether the code falls under the given code or
// category prefix. Matches("I50") is true for I50.2 and I50.9.
func (c *Code) Matches(prefix string) bool {
	normalized := Normalize(prefix)
	return c.Code == normalized || strings.HasPrefix(c.Code, normalized+".") ||
		c.Category == normalized
}

// Parser parses ICD-10-CM codes and diagnosis shorthand
type Parser struct {
	validator *Validator
}

// NewParser creates a new ICD-10 parser
func NewParser() *Parser {
	return &Parser{
		validator: NewValidator(),
	}
}

// Normalize converts a raw code to dotted uppercase form. "i509"
// becomes "I50.9". Invalid input passes through unchanged so the
// validator can report it against the original.
func Normalize(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	code = strings.TrimSuffix(code, ".")

	if !strings.Contains(code, ".") && len(code) > 3 {
		code = code[:3] + "." + code[3:]
	}

	return code
}

// Parse validates a raw ICD-10 code and returns its parsed form
func (p *Parser) Parse(raw string) (*Code, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("parsing ICD-10 code: %w", ErrEmptyCode)
	}

	normalized := Normalize(raw)
	if err := p.validator.ValidateCode(normalized); err != nil {
		return nil, fmt.Errorf("parsing ICD-10 code %q: %w", raw, err)
	}

	code := &Code{
		Original: raw,
		Code:     normalized,
		Category: categoryOf(normalized),
	}

	if idx := strings.Index(normalized, "."); idx >= 0 {
		code.Extension = normalized[idx+1:]
	}

	if chapter, ok := chapterFor(code.Category); ok {
		code.Chapter = chapter
	}

	return code, nil
}

// ValidateCode validates raw ICD-10 code format after normalization
func (p *Parser) ValidateCode(raw string) error {
	return p.validator.ValidateCode(Normalize(raw))
}

// ParseDiagnosis resolves patient diagnosis input that may be either a
// shorthand key ("atrial_fibrillation") or an ICD-10 code ("I48.91")
// into a domain diagnosis. Shorthand keys carry their mapped code.
func (p *Parser) ParseDiagnosis(input string) (*domain.Diagnosis, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, fmt.Errorf("parsing diagnosis: %w", ErrEmptyCode)
	}

	key := strings.ToLower(strings.ReplaceAll(trimmed, " ", "_"))
	if mapped, ok := domain.CommonDiagnoses[key]; ok {
		return &domain.Diagnosis{
			Name:      key,
			ICD10Code: mapped,
			IsActive:  true,
		}, nil
	}

	code, err := p.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing diagnosis %q: not a known shorthand and %w", input, ErrInvalidCode)
	}

	return &domain.Diagnosis{
		Name:      code.Code,
		ICD10Code: code.Code,
		IsActive:  true,
	}, nil
}
