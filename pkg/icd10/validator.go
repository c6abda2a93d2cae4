package icd10

import (
	"fmt"
	"regexp"
	"strings"
)

// ICD-10-CM code patterns for validation
var (
	// Full code pattern: I50.9, I21.4, E11.9, M1A.0, U07.1
	codePattern = regexp.MustCompile(`^[A-Z][0-9][0-9A-Z](\.[0-9A-Z]{1,4})?$`)

	// Category pattern: the three-character stem before the decimal
	categoryPattern = regexp.MustCompile(`^[A-Z][0-9][0-9A-Z]$`)
)

// Sentinel errors for code validation
var (
	ErrEmptyCode   = fmt.Errorf("ICD-10 code cannot be empty")
	ErrInvalidCode = fmt.Errorf("invalid ICD-10 code format")
)

// chapterRange maps a category interval to its chapter description.
type chapterRange struct {
	from        string
	to          string
	description string
}

// ICD-10-CM chapter boundaries, ordered by category.
var chapters = []chapterRange{
	{"A00", "B99", "Certain infectious and parasitic diseases"},
	{"C00", "D49", "Neoplasms"},
	{"D50", "D89", "Diseases of the blood and blood-forming organs"},
	{"E00", "E89", "Endocrine, nutritional and metabolic diseases"},
	{"F01", "F99", "Mental, behavioral and neurodevelopmental disorders"},
	{"G00", "G99", "Diseases of the nervous system"},
	{"H00", "H59", "Diseases of the eye and adnexa"},
	{"H60", "H95", "Diseases of the ear and mastoid process"},
	{"I00", "I99", "Diseases of the circulatory system"},
	{"J00", "J99", "Diseases of the respiratory system"},
	{"K00", "K95", "Diseases of the digestive system"},
	{"L00", "L99", "Diseases of the skin and subcutaneous tissue"},
	{"M00", "M99", "Diseases of the musculoskeletal system and connective tissue"},
	{"N00", "N99", "Diseases of the genitourinary system"},
	{"O00", "O9A", "Pregnancy, childbirth and the puerperium"},
	{"P00", "P96", "Certain conditions originating in the perinatal period"},
	{"Q00", "Q99", "Congenital malformations, deformations and chromosomal abnormalities"},
	{"R00", "R99", "Symptoms, signs and abnormal clinical and laboratory findings"},
	{"S00", "T88", "Injury, poisoning and certain other consequences of external causes"},
	{"U00", "U85", "Codes for special purposes"},
	{"V00", "Y99", "External causes of morbidity"},
	{"Z00", "Z99", "Factors influencing health status and contact with health services"},
}

// Validator provides ICD-10-CM format validation
type Validator struct{}

// NewValidator creates a new ICD-10 validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCode validates normalized ICD-10-CM code format
func (v *Validator) ValidateCode(code string) error {
	if code == "" {
		return ErrEmptyCode
	}

	if !codePattern.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}

	if _, ok := chapterFor(categoryOf(code)); !ok {
		return fmt.Errorf("%w: %q is outside every ICD-10 chapter", ErrInvalidCode, code)
	}

	return nil
}

// ValidateCategory validates a three-character category stem
func (v *Validator) ValidateCategory(category string) error {
	if category == "" {
		return ErrEmptyCode
	}

	if !categoryPattern.MatchString(category) {
		return fmt.Errorf("%w: %q is not a valid category", ErrInvalidCode, category)
	}

	return nil
}

// categoryOf returns the three-character stem of a normalized code.
func categoryOf(code string) string {
	if idx := strings.Index(code, "."); idx >= 0 {
		return code[:idx]
	}
	if len(code) > 3 {
		return code[:3]
	}
	return code
}

// chapterFor resolves the chapter description for a category stem.
// Category strings compare lexicographically within chapter bounds.
func chapterFor(category string) (string, bool) {
	for _, ch := range chapters {
		if category >= ch.from && category <= ch.to {
			return ch.description, true
		}
	}
	return "", false
}
