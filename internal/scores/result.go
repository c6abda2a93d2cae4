// Package scores implements validated clinical scoring systems used in
// cardiology guidelines. Each calculator is a pure function over named
// clinical inputs returning a ScoreResult with the numeric score, risk
// interpretation, and the guideline citation backing it.
package scores

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// Component is one named contribution to a score. Components are kept in
// calculation order so callers can replay how a score was assembled.
type Component struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ScoreResult is the outcome of a clinical score calculation. Constructed
// once by a calculator and treated as immutable afterwards.
type ScoreResult struct {
	ScoreName  string   `json:"score_name"`
	ScoreValue float64  `json:"score_value"`
	MaxScore   *float64 `json:"max_score,omitempty"`

	RiskCategory   string   `json:"risk_category"`
	RiskPercentage *float64 `json:"risk_percentage,omitempty"`
	Interpretation string   `json:"interpretation"`

	Components []Component `json:"components"`

	Recommendation string           `json:"recommendation,omitempty"`
	Citation       *domain.Citation `json:"citation,omitempty"`
}

// ComponentSum returns the sum of all component values. For additive
// calculators this equals ScoreValue; stratified-average calculators
// (PAH risk) report the average instead and the sum will differ.
func (r *ScoreResult) ComponentSum() float64 {
	var sum float64
	for _, c := range r.Components {
		sum += c.Value
	}
	return sum
}

// Component returns the value of a named component and whether it was scored.
func (r ScoreResult) Component(name string) (float64, bool) {
	for _, c := range r.Components {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}

// FormatForDisplay renders the score for clinical display.
func (r *ScoreResult) FormatForDisplay() string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== %s ===\n", r.ScoreName)
	b.WriteString("Score: " + formatNumber(r.ScoreValue))
	if r.MaxScore != nil {
		b.WriteString(" / " + formatNumber(*r.MaxScore))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Risk: %s", strings.ToUpper(r.RiskCategory))

	if r.RiskPercentage != nil {
		fmt.Fprintf(&b, "\nAnnual risk: %.1f%%", *r.RiskPercentage)
	}

	b.WriteString("\n\n" + r.Interpretation)

	if len(r.Components) > 0 {
		b.WriteString("\n\nComponents:")
		for _, c := range r.Components {
			fmt.Fprintf(&b, "\n  - %s: %s", c.Name, formatNumber(c.Value))
		}
	}

	if r.Recommendation != "" {
		b.WriteString("\n\nRecommendation: " + r.Recommendation)
	}

	if r.Citation != nil {
		b.WriteString("\n\nSource: " + r.Citation.FormatShort())
	}

	return b.String()
}

// formatNumber renders 4 as "4" and 4.5 as "4.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatPtr(v float64) *float64 { return &v }
