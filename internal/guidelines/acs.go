package guidelines

import (
	"fmt"
	"strings"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/scores"
)

// ACSRiskCategory is the NSTE-ACS risk band driving invasive timing.
type ACSRiskCategory string

const (
	ACS_RISK_VERY_HIGH    ACSRiskCategory = "very_high"
	ACS_RISK_HIGH         ACSRiskCategory = "high"
	ACS_RISK_INTERMEDIATE ACSRiskCategory = "intermediate"
	ACS_RISK_LOW          ACSRiskCategory = "low"
)

// CategorizeGRACE maps a GRACE score to the invasive-timing risk band per
// ESC NSTE-ACS 2020 section 4.2.
func CategorizeGRACE(score float64) (ACSRiskCategory, string) {
	switch {
	case score >= 140:
		return ACS_RISK_VERY_HIGH, "Immediate invasive strategy (< 2 hours)"
	case score >= 109:
		return ACS_RISK_HIGH, "Early invasive strategy (< 24 hours)"
	case score >= 85:
		return ACS_RISK_INTERMEDIATE, "Invasive strategy (< 72 hours)"
	default:
		return ACS_RISK_LOW, "Selective invasive strategy"
	}
}

// AssessACSRisk performs the NSTE-ACS risk stratification: GRACE scoring
// from the patient record plus screening for very-high-risk features that
// mandate immediate invasive management regardless of score.
func AssessACSRisk(p *domain.Patient) *domain.RecommendationSet {
	set := domain.NewRecommendationSet("NSTE-ACS Risk Assessment")
	set.PrimaryGuideline = "ESC NSTE-ACS 2020"

	if p.Age != nil && p.Vitals != nil {
		hr := 80
		if p.Vitals.HeartRate != nil {
			hr = *p.Vitals.HeartRate
		}
		sbp := 120
		if p.Vitals.SystolicBP != nil {
			sbp = *p.Vitals.SystolicBP
		}
		cr := 1.0
		if p.Labs != nil && p.Labs.Creatinine != nil {
			cr = *p.Labs.Creatinine
		}
		troponinElevated := p.Labs != nil &&
			((p.Labs.TroponinT != nil && *p.Labs.TroponinT > 14) ||
				(p.Labs.TroponinI != nil && *p.Labs.TroponinI > 26))

		grace := scores.GRACE(scores.GRACEInput{
			Age:              *p.Age,
			HeartRate:        hr,
			SystolicBP:       sbp,
			Creatinine:       cr,
			KillipClass:      1,
			STDeviation:      p.ECG != nil && p.ECG.STDeviation(),
			ElevatedTroponin: troponinElevated,
		})

		category, timing := CategorizeGRACE(grace.ScoreValue)
		set.Description = fmt.Sprintf("GRACE score: %d (%s)", int(grace.ScoreValue), category)

		for _, action := range []string{
			fmt.Sprintf("6-month mortality risk: %.1f%%", *grace.RiskPercentage),
			fmt.Sprintf("Risk category: %s", category),
			fmt.Sprintf("Invasive strategy: %s", timing),
		} {
			set.Add(domain.MustGuidelineRecommendation(action,
				"esc_acs_2020", domain.CLASS_I, domain.LEVEL_B,
				domain.CATEGORY_DIAGNOSTIC, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{Section: "4.2"}))
		}
	}

	if features := VeryHighRiskFeatures(p); len(features) > 0 {
		set.Add(domain.MustGuidelineRecommendation(
			fmt.Sprintf("VERY HIGH RISK: %s. Immediate invasive strategy RECOMMENDED (< 2 hours)",
				strings.Join(features, ", ")),
			"esc_acs_2020", domain.CLASS_I, domain.LEVEL_C,
			domain.CATEGORY_PROCEDURE, domain.URGENCY_EMERGENT,
			&domain.GuidelineRecOptions{Section: "4.3"}))
	}

	if p.Labs != nil && p.Labs.NTProBNP != nil && *p.Labs.NTProBNP > 1000 {
		set.Add(domain.MustGuidelineRecommendation(
			fmt.Sprintf("Elevated NT-proBNP (%.0f pg/mL) - high risk marker", *p.Labs.NTProBNP),
			"esc_acs_2020", domain.CLASS_IIA, domain.LEVEL_B,
			domain.CATEGORY_DIAGNOSTIC, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{Section: "4.2"}))
	}

	return set
}

// VeryHighRiskFeatures lists the features mandating immediate invasive
// management in NSTE-ACS.
func VeryHighRiskFeatures(p *domain.Patient) []string {
	var features []string

	if p.Vitals != nil && p.Vitals.SystolicBP != nil && *p.Vitals.SystolicBP < 90 {
		features = append(features, "Hypotension/SBP < 90 mmHg")
	}
	if p.NYHAClass != nil && *p.NYHAClass >= 3 {
		features = append(features, "Acute heart failure")
	}
	if lvef := p.LVEF(); lvef != nil && *lvef < 40 {
		features = append(features, "Severe LV dysfunction")
	}
	if p.HasDiagnosis("cardiogenic_shock") {
		features = append(features, "Cardiogenic shock")
	}
	return features
}

// InvasiveStrategy returns the invasive-timing recommendation for an
// NSTE-ACS patient per ESC 2020 section 4.3. Very-high-risk features
// short-circuit to immediate invasive management.
func InvasiveStrategy(p *domain.Patient, riskCategory ACSRiskCategory, veryHighRiskFeatures bool) *domain.RecommendationSet {
	set := domain.NewRecommendationSet("Invasive Strategy Indication")
	set.PrimaryGuideline = "ESC NSTE-ACS 2020"

	if veryHighRiskFeatures {
		set.Add(domain.MustGuidelineRecommendation(
			"IMMEDIATE invasive strategy (< 2 hours) RECOMMENDED for very high-risk NSTE-ACS",
			"esc_acs_2020", domain.CLASS_I, domain.LEVEL_C,
			domain.CATEGORY_PROCEDURE, domain.URGENCY_EMERGENT,
			&domain.GuidelineRecOptions{Section: "4.3"}))
		return set
	}

	switch riskCategory {
	case ACS_RISK_VERY_HIGH:
		set.Add(domain.MustGuidelineRecommendation(
			"IMMEDIATE invasive strategy (< 2 hours) RECOMMENDED for GRACE score >= 140",
			"esc_acs_2020", domain.CLASS_I, domain.LEVEL_B,
			domain.CATEGORY_PROCEDURE, domain.URGENCY_EMERGENT,
			&domain.GuidelineRecOptions{Section: "4.3"}))
	case ACS_RISK_HIGH:
		set.Add(domain.MustGuidelineRecommendation(
			"EARLY invasive strategy (< 24 hours) RECOMMENDED for high-risk NSTE-ACS",
			"esc_acs_2020", domain.CLASS_I, domain.LEVEL_B,
			domain.CATEGORY_PROCEDURE, domain.URGENCY_SOON,
			&domain.GuidelineRecOptions{Section: "4.3"}))
	case ACS_RISK_INTERMEDIATE:
		set.Add(domain.MustGuidelineRecommendation(
			"INVASIVE strategy (< 72 hours) RECOMMENDED for intermediate-risk NSTE-ACS",
			"esc_acs_2020", domain.CLASS_I, domain.LEVEL_B,
			domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{Section: "4.3"}))
	default:
		set.Add(domain.MustGuidelineRecommendation(
			"SELECTIVE invasive strategy. Consider non-invasive testing first. Invasive strategy if recurrent symptoms or positive stress test.",
			"esc_acs_2020", domain.CLASS_I, domain.LEVEL_B,
			domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{Section: "4.3"}))
	}

	set.Add(domain.MustGuidelineRecommendation(
		"Invasive strategy contraindicated if: severe comorbidities limiting life expectancy, patient refusal, or inability to undergo revascularization",
		"esc_acs_2020", domain.CLASS_III, domain.LEVEL_C,
		domain.CATEGORY_CONTRAINDICATION, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{Section: "4.3"}))

	return set
}

// CADExtent describes angiographic disease extent for revascularization
// planning.
type CADExtent string

const (
	CAD_UNKNOWN      CADExtent = "unknown"
	CAD_ONE_VESSEL   CADExtent = "one_vessel"
	CAD_TWO_VESSEL   CADExtent = "two_vessel"
	CAD_THREE_VESSEL CADExtent = "three_vessel"
	CAD_LEFT_MAIN    CADExtent = "left_main"
)

// RevascularizationApproach selects PCI versus CABG for an NSTE-ACS
// patient per ESC 2020 section 6. SYNTAX score is optional; nil means
// not calculated.
func RevascularizationApproach(p *domain.Patient, extent CADExtent, syntaxScore *int) *domain.RecommendationSet {
	set := domain.NewRecommendationSet("Revascularization Approach Selection")
	set.PrimaryGuideline = "ESC NSTE-ACS 2020"

	hasHFrEF := false
	if lvef := p.LVEF(); lvef != nil && *lvef <= 40 {
		hasHFrEF = true
	}

	if extent == CAD_THREE_VESSEL || extent == CAD_LEFT_MAIN ||
		(syntaxScore != nil && *syntaxScore > 22) {
		set.Add(domain.MustGuidelineRecommendation(
			"Heart Team discussion RECOMMENDED for complex CAD (3VD, left main, or high SYNTAX score)",
			"esc_acs_2020", domain.CLASS_I, domain.LEVEL_C,
			domain.CATEGORY_REFERRAL, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{Section: "6.1"}))
	}

	switch extent {
	case CAD_LEFT_MAIN:
		if syntaxScore != nil && *syntaxScore <= 32 {
			set.Add(domain.MustGuidelineRecommendation(
				"Left main disease with low-intermediate SYNTAX: PCI or CABG both acceptable. Consider patient factors and preference.",
				"esc_acs_2020", domain.CLASS_I, domain.LEVEL_A,
				domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{
					Section: "6.1",
					Studies: []string{"EXCEL", "NOBLE"},
				}))
		} else {
			set.Add(domain.MustGuidelineRecommendation(
				"Left main disease with high SYNTAX: CABG RECOMMENDED over PCI",
				"esc_acs_2020", domain.CLASS_I, domain.LEVEL_A,
				domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{Section: "6.1"}))
		}

	case CAD_THREE_VESSEL:
		switch {
		case p.HasDiabetes:
			set.Add(domain.MustGuidelineRecommendation(
				"Three-vessel disease with diabetes: CABG RECOMMENDED over PCI",
				"esc_acs_2020", domain.CLASS_I, domain.LEVEL_A,
				domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{
					Section: "6.1",
					Studies: []string{"FREEDOM"},
				}))
		case hasHFrEF:
			set.Add(domain.MustGuidelineRecommendation(
				"Three-vessel disease with LV dysfunction: CABG RECOMMENDED for survival benefit",
				"esc_acs_2020", domain.CLASS_I, domain.LEVEL_B,
				domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{Section: "6.1"}))
		default:
			set.Add(domain.MustGuidelineRecommendation(
				"Three-vessel disease: Individualize decision. CABG preferred for complex anatomy or diabetes.",
				"esc_acs_2020", domain.CLASS_I, domain.LEVEL_A,
				domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{Section: "6.1"}))
		}

	case CAD_ONE_VESSEL, CAD_TWO_VESSEL:
		set.Add(domain.MustGuidelineRecommendation(
			"One or two-vessel disease: PCI RECOMMENDED for culprit lesion. Consider complete revascularization if feasible.",
			"esc_acs_2020", domain.CLASS_I, domain.LEVEL_A,
			domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{Section: "6.1"}))
	}

	set.Add(domain.MustGuidelineRecommendation(
		"Complete revascularization SHOULD BE CONSIDERED when feasible to reduce recurrent MI and repeat revascularization",
		"esc_acs_2020", domain.CLASS_IIA, domain.LEVEL_B,
		domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{
			Section: "6.1",
			Studies: []string{"COMPLETE", "CULPRIT"},
		}))

	set.Add(domain.MustGuidelineRecommendation(
		"In hemodynamically unstable NSTE-ACS with multivessel disease: Culprit-only PCI RECOMMENDED initially. Consider staged complete revascularization.",
		"esc_acs_2020", domain.CLASS_I, domain.LEVEL_B,
		domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{
			Section: "6.1",
			Studies: []string{"CULPRIT"},
		}))

	return set
}
