package scores

import (
	"fmt"
	"strings"
)

// PESIInput carries the clinical variables for the Pulmonary Embolism
// Severity Index, which predicts 30-day mortality in acute PE.
type PESIInput struct {
	Age                 int     `json:"age"`
	Male                bool    `json:"male"`
	Cancer              bool    `json:"cancer"`
	HeartFailure        bool    `json:"heart_failure"`
	ChronicLungDisease  bool    `json:"chronic_lung_disease"`
	PulseRate           int     `json:"pulse_rate"`
	SystolicBP          int     `json:"systolic_bp"`
	RespiratoryRate     int     `json:"respiratory_rate"`
	Temperature         float64 `json:"temperature"` // Celsius
	AlteredMentalStatus bool    `json:"altered_mental_status"`
	O2Saturation        float64 `json:"o2_saturation"` // %
}

// PESI calculates the Pulmonary Embolism Severity Index. The score is
// unbounded above because age contributes its raw value, so MaxScore is
// left unset.
func PESI(in PESIInput) ScoreResult {
	var components []Component
	score := float64(in.Age)
	components = append(components, Component{"age", float64(in.Age)})

	add := func(present bool, name string, points float64) {
		if present {
			score += points
			components = append(components, Component{name, points})
		}
	}

	add(in.Male, "male", 10)
	add(in.Cancer, "cancer", 30)
	add(in.HeartFailure, "heart_failure", 10)
	add(in.ChronicLungDisease, "chronic_lung_disease", 10)
	add(in.PulseRate >= 110, "tachycardia", 20)
	add(in.SystolicBP < 100, "hypotension", 30)
	add(in.RespiratoryRate >= 30, "tachypnea", 20)
	add(in.Temperature < 36.0, "hypothermia", 20)
	add(in.AlteredMentalStatus, "altered_mental_status", 60)
	add(in.O2Saturation < 90, "hypoxemia", 20)

	var riskClass, mortality, riskCategory string
	switch {
	case score <= 65:
		riskClass, mortality, riskCategory = "I", "0-1.6%", "very_low"
	case score <= 85:
		riskClass, mortality, riskCategory = "II", "1.7-3.5%", "low"
	case score <= 105:
		riskClass, mortality, riskCategory = "III", "3.2-7.1%", "intermediate"
	case score <= 125:
		riskClass, mortality, riskCategory = "IV", "4.0-11.4%", "high"
	default:
		riskClass, mortality, riskCategory = "V", "10.0-24.5%", "very_high"
	}

	var recommendation string
	switch riskClass {
	case "I", "II":
		recommendation = "Consider early discharge or outpatient treatment if appropriate clinical and social conditions"
	case "III":
		recommendation = "Hospital admission recommended; consider intermediate-risk management"
	default:
		recommendation = "Hospital admission required; consider ICU level care"
	}

	interpretation := fmt.Sprintf(
		"PESI = %s (Class %s): Estimated 30-day mortality %s", formatNumber(score), riskClass, mortality)

	return ScoreResult{
		ScoreName:      "PESI",
		ScoreValue:     score,
		RiskCategory:   riskCategory,
		Interpretation: interpretation,
		Components:     components,
		Recommendation: recommendation,
	}
}

// SPESIInput carries the six binary criteria of the simplified PESI.
type SPESIInput struct {
	AgeOver80                     bool `json:"age_over_80"`
	Cancer                        bool `json:"cancer"`
	ChronicCardiopulmonaryDisease bool `json:"chronic_cardiopulmonary_disease"`
	PulseOver110                  bool `json:"pulse_over_110"`
	SystolicBPUnder100            bool `json:"systolic_bp_under_100"`
	O2SaturationUnder90           bool `json:"o2_saturation_under_90"`
}

// SPESI calculates the simplified PESI for rapid PE risk stratification.
// A score of 0 is low risk; any positive criterion is not low risk.
func SPESI(in SPESIInput) ScoreResult {
	var components []Component
	score := 0

	add := func(present bool, name string) {
		if present {
			score++
			components = append(components, Component{name, 1})
		}
	}

	add(in.AgeOver80, "age_over_80")
	add(in.Cancer, "cancer")
	add(in.ChronicCardiopulmonaryDisease, "chronic_cardiopulmonary_disease")
	add(in.PulseOver110, "tachycardia")
	add(in.SystolicBPUnder100, "hypotension")
	add(in.O2SaturationUnder90, "hypoxemia")

	var riskCategory, mortality, recommendation, detail string
	if score == 0 {
		riskCategory = "low"
		mortality = "1.0% (95% CI 0.0-2.1%)"
		recommendation = "Consider early discharge or outpatient treatment"
		detail = "Low risk - may be suitable for outpatient treatment"
	} else {
		riskCategory = "high"
		mortality = "10.9% (95% CI 8.5-13.2%)"
		recommendation = "Hospital admission recommended"
		detail = "Not low risk - requires inpatient management"
	}

	interpretation := fmt.Sprintf("sPESI = %d: %s. Estimated 30-day mortality %s", score, detail, mortality)

	return ScoreResult{
		ScoreName:      "sPESI",
		ScoreValue:     float64(score),
		MaxScore:       floatPtr(6),
		RiskCategory:   riskCategory,
		Interpretation: interpretation,
		Components:     components,
		Recommendation: recommendation,
	}
}

// GenevaInput carries the clinical variables for the revised Geneva score
// for pre-test PE probability. Simplified selects the one-point-per-item
// version; otherwise the original weights apply.
type GenevaInput struct {
	PreviousPEDVT            bool `json:"previous_pe_dvt"`
	HeartRate                int  `json:"heart_rate"`
	SurgeryFracturePastMonth bool `json:"surgery_fracture_past_month"`
	Hemoptysis               bool `json:"hemoptysis"`
	ActiveCancer             bool `json:"active_cancer"`
	UnilateralLegPain        bool `json:"unilateral_leg_pain"`
	DVTSigns                 bool `json:"dvt_signs"` // pain on deep venous palpation AND unilateral edema
	AgeOver65                bool `json:"age_over_65"`
	Simplified               bool `json:"simplified"`
}

// Geneva calculates the revised Geneva score in either its simplified or
// original weighting. The interpretation reports both the three-level
// probability and the two-level PE-likely cut.
func Geneva(in GenevaInput) ScoreResult {
	var components []Component
	score := 0

	add := func(present bool, name string, points int) {
		if present {
			score += points
			components = append(components, Component{name, float64(points)})
		}
	}

	var hrMid, hrHigh, surgery, hemoptysis, cancer, legPain, dvtSigns, prior int
	var lowMax, intermediateMax, likelyAt int
	var maxScore float64
	if in.Simplified {
		prior, hrMid, hrHigh = 1, 1, 2
		surgery, hemoptysis, cancer, legPain, dvtSigns = 1, 1, 1, 1, 1
		lowMax, intermediateMax, likelyAt = 1, 4, 3
		maxScore = 9
	} else {
		prior, hrMid, hrHigh = 3, 3, 5
		surgery, hemoptysis, cancer, legPain, dvtSigns = 2, 2, 2, 3, 4
		lowMax, intermediateMax, likelyAt = 3, 10, 6
		maxScore = 22
	}

	add(in.PreviousPEDVT, "previous_pe_dvt", prior)
	switch {
	case in.HeartRate >= 95:
		add(true, "heart_rate_95_plus", hrHigh)
	case in.HeartRate >= 75:
		add(true, "heart_rate_75_94", hrMid)
	}
	add(in.SurgeryFracturePastMonth, "surgery_fracture", surgery)
	add(in.Hemoptysis, "hemoptysis", hemoptysis)
	add(in.ActiveCancer, "active_cancer", cancer)
	add(in.UnilateralLegPain, "unilateral_leg_pain", legPain)
	add(in.DVTSigns, "dvt_signs", dvtSigns)
	add(in.AgeOver65, "age_over_65", 1)

	var probability, prevalence string
	switch {
	case score <= lowMax:
		probability, prevalence = "low", "~8%"
	case score <= intermediateMax:
		probability, prevalence = "intermediate", "~28%"
	default:
		probability, prevalence = "high", "~74%"
	}

	peLikely := score >= likelyAt
	var nextStep string
	if peLikely {
		nextStep = "PE likely - CTPA recommended"
	} else {
		nextStep = "PE unlikely - D-dimer testing; if negative, PE excluded"
	}

	version := "Original"
	if in.Simplified {
		version = "Simplified"
	}
	interpretation := fmt.Sprintf(
		"%s Geneva score = %d: %s pre-test probability of PE (%s prevalence). %s",
		version, score, strings.ToUpper(probability), prevalence, nextStep)

	return ScoreResult{
		ScoreName:      "Revised Geneva Score",
		ScoreValue:     float64(score),
		MaxScore:       floatPtr(maxScore),
		RiskCategory:   probability,
		Interpretation: interpretation,
		Components:     components,
		Recommendation: nextStep,
	}
}

// WellsPEInput carries the seven Wells criteria for PE probability.
type WellsPEInput struct {
	ClinicalSignsDVT        bool `json:"clinical_signs_dvt"`
	PEMostLikelyDiagnosis   bool `json:"pe_most_likely_diagnosis"`
	HeartRateAbove100       bool `json:"heart_rate_above_100"`
	ImmobilizationOrSurgery bool `json:"immobilization_or_surgery"` // > 3 days or surgery in past 4 weeks
	PreviousPEDVT           bool `json:"previous_pe_dvt"`
	Hemoptysis              bool `json:"hemoptysis"`
	Malignancy              bool `json:"malignancy"` // treatment in past 6 months or palliative
}

// WellsPE calculates the Wells score for pulmonary embolism probability
// using the three-tier model.
func WellsPE(in WellsPEInput) ScoreResult {
	var components []Component
	var score float64

	add := func(present bool, name string, points float64) {
		if present {
			score += points
			components = append(components, Component{name, points})
		}
	}

	add(in.ClinicalSignsDVT, "Clinical signs of DVT", 3.0)
	add(in.PEMostLikelyDiagnosis, "PE most likely diagnosis", 3.0)
	add(in.HeartRateAbove100, "Heart rate > 100", 1.5)
	add(in.ImmobilizationOrSurgery, "Immobilization/recent surgery", 1.5)
	add(in.PreviousPEDVT, "Previous PE/DVT", 1.5)
	add(in.Hemoptysis, "Hemoptysis", 1.0)
	add(in.Malignancy, "Malignancy", 1.0)

	var riskCategory, recommendation string
	var riskPct float64
	switch {
	case score <= 1:
		riskCategory, riskPct = "low", 1.3
		recommendation = "LOW probability. D-dimer testing appropriate. " +
			"If D-dimer negative (age-adjusted), PE can be ruled out."
	case score <= 4:
		riskCategory, riskPct = "moderate", 16.2
		recommendation = "MODERATE probability. D-dimer testing appropriate. " +
			"If D-dimer positive, proceed to CTPA."
	default:
		riskCategory, riskPct = "high", 40.6
		recommendation = "HIGH probability. Proceed directly to CTPA. " +
			"Consider empiric anticoagulation while awaiting imaging."
	}

	interpretation := fmt.Sprintf(
		"Wells PE Score = %s: Pre-test probability of PE is %s (~%.0f%% PE prevalence in this category)",
		formatNumber(score), strings.ToUpper(riskCategory), riskPct)

	return ScoreResult{
		ScoreName:      "Wells Score (PE)",
		ScoreValue:     score,
		MaxScore:       floatPtr(12.5),
		RiskCategory:   riskCategory,
		RiskPercentage: floatPtr(riskPct),
		Interpretation: interpretation,
		Components:     components,
		Recommendation: recommendation,
	}
}

// DDimerCutoff is the age-adjusted D-dimer exclusion threshold for PE.
type DDimerCutoff struct {
	Age               int    `json:"age"`
	StandardCutoff    int    `json:"standard_cutoff"`
	AdjustedCutoff    int    `json:"adjusted_cutoff"`
	AdjustmentApplied bool   `json:"adjustment_applied"`
	Unit              string `json:"unit"`
	Interpretation    string `json:"interpretation"`
	Note              string `json:"note"`
}

// AgeAdjustedDDimer computes the age-adjusted D-dimer cutoff: for patients
// over 50, the cutoff is age x 10 µg/L; otherwise the baseline applies.
// Both values are always returned.
func AgeAdjustedDDimer(age, baselineCutoff int) DDimerCutoff {
	if baselineCutoff <= 0 {
		baselineCutoff = 500
	}

	adjusted := baselineCutoff
	applied := false
	if age > 50 {
		adjusted = age * 10
		applied = true
	}

	return DDimerCutoff{
		Age:               age,
		StandardCutoff:    baselineCutoff,
		AdjustedCutoff:    adjusted,
		AdjustmentApplied: applied,
		Unit:              "µg/L (FEU)",
		Interpretation: fmt.Sprintf(
			"D-dimer < %d µg/L can be used to exclude PE in patients with low/intermediate pre-test probability",
			adjusted),
		Note: "Age-adjusted D-dimer increases specificity in older patients without compromising sensitivity",
	}
}
