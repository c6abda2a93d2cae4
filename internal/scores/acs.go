package scores

import (
	"fmt"
	"strings"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// GRACEInput carries the admission variables for the GRACE 2.0 risk score
// in acute coronary syndromes.
type GRACEInput struct {
	Age              int     `json:"age"`
	HeartRate        int     `json:"heart_rate"`
	SystolicBP       int     `json:"systolic_bp"`
	Creatinine       float64 `json:"creatinine"` // mg/dL
	KillipClass      int     `json:"killip_class"`
	CardiacArrest    bool    `json:"cardiac_arrest"`
	STDeviation      bool    `json:"st_deviation"`
	ElevatedTroponin bool    `json:"elevated_troponin"`
}

// GRACE calculates the GRACE 2.0 risk score for ACS per the ESC NSTE-ACS
// 2020 guidelines, which tie the score to timing of the invasive strategy:
// >140 early invasive (<24h), 109-140 invasive <72h, <109 selective.
func GRACE(in GRACEInput) ScoreResult {
	var components []Component
	var score float64

	add := func(name string, points float64) {
		score += points
		components = append(components, Component{name, points})
	}

	var agePoints float64
	switch {
	case in.Age < 30:
		agePoints = 0
	case in.Age < 40:
		agePoints = 8
	case in.Age < 50:
		agePoints = 25
	case in.Age < 60:
		agePoints = 41
	case in.Age < 70:
		agePoints = 58
	case in.Age < 80:
		agePoints = 75
	case in.Age < 90:
		agePoints = 91
	default:
		agePoints = 100
	}
	add("Age", agePoints)

	var hrPoints float64
	switch {
	case in.HeartRate < 50:
		hrPoints = 0
	case in.HeartRate < 70:
		hrPoints = 3
	case in.HeartRate < 90:
		hrPoints = 9
	case in.HeartRate < 110:
		hrPoints = 15
	case in.HeartRate < 150:
		hrPoints = 24
	case in.HeartRate < 200:
		hrPoints = 38
	default:
		hrPoints = 46
	}
	add("Heart rate", hrPoints)

	var sbpPoints float64
	switch {
	case in.SystolicBP < 80:
		sbpPoints = 58
	case in.SystolicBP < 100:
		sbpPoints = 53
	case in.SystolicBP < 120:
		sbpPoints = 43
	case in.SystolicBP < 140:
		sbpPoints = 34
	case in.SystolicBP < 160:
		sbpPoints = 24
	case in.SystolicBP < 200:
		sbpPoints = 10
	default:
		sbpPoints = 0
	}
	add("Systolic BP", sbpPoints)

	var crPoints float64
	switch {
	case in.Creatinine < 0.4:
		crPoints = 1
	case in.Creatinine < 0.8:
		crPoints = 4
	case in.Creatinine < 1.2:
		crPoints = 7
	case in.Creatinine < 1.6:
		crPoints = 10
	case in.Creatinine < 2.0:
		crPoints = 13
	case in.Creatinine < 4.0:
		crPoints = 21
	default:
		crPoints = 28
	}
	add("Creatinine", crPoints)

	killipPoints := map[int]float64{1: 0, 2: 20, 3: 39, 4: 59}[in.KillipClass]
	add("Killip class", killipPoints)

	if in.CardiacArrest {
		add("Cardiac arrest", 39)
	}
	if in.STDeviation {
		add("ST deviation", 28)
	}
	if in.ElevatedTroponin {
		add("Elevated troponin", 14)
	}

	var riskCategory, recommendation string
	var riskPct float64
	switch {
	case score > 140:
		riskCategory, riskPct = "high", 10.0
		recommendation = "HIGH RISK: Early invasive strategy recommended within 24 hours. " +
			"Consider immediate transfer to PCI-capable center."
	case score > 109:
		riskCategory, riskPct = "moderate", 5.0
		recommendation = "INTERMEDIATE RISK: Invasive strategy recommended within 72 hours."
	default:
		riskCategory, riskPct = "low", 2.0
		recommendation = "LOW RISK: Selective invasive strategy. Consider non-invasive stress testing. " +
			"Invasive evaluation if positive or high clinical suspicion."
	}

	interpretation := fmt.Sprintf(
		"GRACE score = %s: Estimated in-hospital mortality and 6-month mortality risk. Risk category: %s",
		formatNumber(score), strings.ToUpper(riskCategory))

	citation := domain.MustCitation("esc_acs_2020", domain.CLASS_I, domain.LEVEL_A,
		domain.WithSection("6.1", "Risk stratification"),
		domain.WithStudies("GRACE Registry", "ACUITY", "TIMACS"),
	)

	return ScoreResult{
		ScoreName:      "GRACE 2.0",
		ScoreValue:     score,
		MaxScore:       floatPtr(372),
		RiskCategory:   riskCategory,
		RiskPercentage: floatPtr(riskPct),
		Interpretation: interpretation,
		Components:     components,
		Recommendation: recommendation,
		Citation:       citation,
	}
}
