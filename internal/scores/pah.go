package scores

import (
	"fmt"
	"math"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// PAHBaselineInput carries the multiparametric risk variables assessed at
// PAH diagnosis. Optional parameters that are nil are simply omitted from
// the average. String parameters left empty take their clinical defaults
// ("none" effusion, "stable" progression, "none" syncope).
type PAHBaselineInput struct {
	WHOFunctionalClass  int      `json:"who_functional_class"`            // I-IV as 1-4
	SixMinWalkDistance  *int     `json:"six_min_walk_distance,omitempty"` // meters
	BNP                 *float64 `json:"bnp,omitempty"`                   // ng/L
	NTProBNP            *float64 `json:"nt_probnp,omitempty"`             // ng/L
	RAArea              *float64 `json:"ra_area,omitempty"`               // cm2
	TAPSESPAPRatio      *float64 `json:"tapse_spap_ratio,omitempty"`      // mm/mmHg
	PericardialEffusion string   `json:"pericardial_effusion,omitempty"`  // none, minimal, moderate, large
	RAP                 *float64 `json:"rap,omitempty"`                   // mmHg
	CardiacIndex        *float64 `json:"cardiac_index,omitempty"`         // L/min/m2
	SVI                 *float64 `json:"svi,omitempty"`                   // mL/m2
	SvO2                *float64 `json:"svo2,omitempty"`                  // %
	RVFailureSigns      bool     `json:"rv_failure_signs"`
	SymptomProgression  string   `json:"symptom_progression,omitempty"` // stable, slow, rapid
	Syncope             string   `json:"syncope,omitempty"`             // none, occasional, repeated
}

// strata3 buckets a value into 1 (low), 2 (intermediate) or 3 (high) given
// the low and intermediate upper bounds, for parameters where lower is worse.
func strata3Low(v, lowMin, intermediateMin float64) float64 {
	switch {
	case v > lowMin:
		return 1
	case v >= intermediateMin:
		return 2
	default:
		return 3
	}
}

// PAHBaselineRisk calculates PAH risk at diagnosis with the ESC/ERS 2022
// 3-strata model. ScoreValue is the AVERAGE of the per-parameter strata
// points, not their sum: <1.5 low, <2.5 intermediate, otherwise high
// estimated 1-year mortality. With no assessable parameters the documented
// default of 2.0 (intermediate) is returned.
func PAHBaselineRisk(in PAHBaselineInput) ScoreResult {
	var components []Component

	add := func(name string, points float64) {
		components = append(components, Component{name, points})
	}

	switch in.WHOFunctionalClass {
	case 1, 2:
		add("who_fc", 1)
	case 3:
		add("who_fc", 2)
	case 4:
		add("who_fc", 3)
	}

	if in.SixMinWalkDistance != nil {
		add("6mwd", strata3Low(float64(*in.SixMinWalkDistance), 440, 165))
	}
	if in.BNP != nil {
		switch {
		case *in.BNP < 50:
			add("bnp", 1)
		case *in.BNP <= 800:
			add("bnp", 2)
		default:
			add("bnp", 3)
		}
	}
	if in.NTProBNP != nil {
		switch {
		case *in.NTProBNP < 300:
			add("nt_probnp", 1)
		case *in.NTProBNP <= 1100:
			add("nt_probnp", 2)
		default:
			add("nt_probnp", 3)
		}
	}
	if in.RAArea != nil {
		switch {
		case *in.RAArea < 18:
			add("ra_area", 1)
		case *in.RAArea <= 26:
			add("ra_area", 2)
		default:
			add("ra_area", 3)
		}
	}
	if in.TAPSESPAPRatio != nil {
		add("tapse_spap", strata3Low(*in.TAPSESPAPRatio, 0.32, 0.19))
	}

	switch in.PericardialEffusion {
	case "", "none":
		add("pericardial_effusion", 1)
	case "minimal":
		add("pericardial_effusion", 2)
	default:
		add("pericardial_effusion", 3)
	}

	if in.RAP != nil {
		switch {
		case *in.RAP < 8:
			add("rap", 1)
		case *in.RAP <= 14:
			add("rap", 2)
		default:
			add("rap", 3)
		}
	}
	if in.CardiacIndex != nil {
		switch {
		case *in.CardiacIndex >= 2.5:
			add("cardiac_index", 1)
		case *in.CardiacIndex >= 2.0:
			add("cardiac_index", 2)
		default:
			add("cardiac_index", 3)
		}
	}
	if in.SVI != nil {
		add("svi", strata3Low(*in.SVI, 38, 31))
	}
	if in.SvO2 != nil {
		add("svo2", strata3Low(*in.SvO2, 65, 60))
	}

	if in.RVFailureSigns {
		add("rv_failure_signs", 3)
	} else {
		add("rv_failure_signs", 1)
	}

	switch in.SymptomProgression {
	case "", "stable":
		add("symptom_progression", 1)
	case "slow":
		add("symptom_progression", 2)
	default:
		add("symptom_progression", 3)
	}

	switch in.Syncope {
	case "", "none":
		add("syncope", 1)
	case "occasional":
		add("syncope", 2)
	default:
		add("syncope", 3)
	}

	avg := 2.0 // intermediate by default when nothing can be assessed
	if len(components) > 0 {
		var sum float64
		for _, c := range components {
			sum += c.Value
		}
		avg = sum / float64(len(components))
	}

	var riskCategory, mortality, recommendation string
	switch {
	case avg < 1.5:
		riskCategory = "low"
		mortality = "<5%"
		recommendation = "Initial dual oral combination therapy (ERA + PDE5i)"
	case avg < 2.5:
		riskCategory = "intermediate"
		mortality = "5-20%"
		recommendation = "Initial dual oral combination therapy; consider triple therapy if high-intermediate"
	default:
		riskCategory = "high"
		mortality = ">20%"
		recommendation = "Consider initial triple combination therapy including IV/SC prostacyclin"
	}

	interpretation := fmt.Sprintf(
		"PAH baseline risk (3-strata model): average score %.2f across %d parameters. "+
			"Estimated 1-year mortality %s",
		avg, len(components), mortality)

	citation := domain.MustCitation("esc_ph_2022", domain.CLASS_I, domain.LEVEL_B,
		domain.WithSection("7.3.2", "Risk stratification at diagnosis"),
		domain.WithStudies("SPAHR", "COMPERA", "French PH Registry"),
	)

	return ScoreResult{
		ScoreName:      "PAH Risk (Baseline)",
		ScoreValue:     round2(avg),
		MaxScore:       floatPtr(3),
		RiskCategory:   riskCategory,
		Interpretation: interpretation,
		Components:     components,
		Recommendation: recommendation,
		Citation:       citation,
	}
}

// PAHFollowUpInput carries the simplified 4-strata follow-up variables:
// WHO-FC, 6MWD and natriuretic peptides.
type PAHFollowUpInput struct {
	WHOFunctionalClass int      `json:"who_functional_class"`
	SixMinWalkDistance *int     `json:"six_min_walk_distance,omitempty"`
	BNP                *float64 `json:"bnp,omitempty"`
	NTProBNP           *float64 `json:"nt_probnp,omitempty"`
}

// PAHFollowUpRisk calculates PAH risk at follow-up with the ESC/ERS 2022
// simplified 4-strata model. ScoreValue is the rounded average of the
// per-parameter points (1 low, 2 intermediate-low, 3 intermediate-high,
// 4 high); halves round up, and with no assessable parameters the default
// average of 2.5 rounds to stratum 3.
func PAHFollowUpRisk(in PAHFollowUpInput) ScoreResult {
	var components []Component

	add := func(name string, points float64) {
		components = append(components, Component{name, points})
	}

	switch in.WHOFunctionalClass {
	case 1, 2:
		add("who_fc", 1)
	case 3:
		add("who_fc", 3)
	case 4:
		add("who_fc", 4)
	}

	if in.SixMinWalkDistance != nil {
		d := *in.SixMinWalkDistance
		switch {
		case d > 440:
			add("6mwd", 1)
		case d >= 320:
			add("6mwd", 2)
		case d >= 165:
			add("6mwd", 3)
		default:
			add("6mwd", 4)
		}
	}
	if in.BNP != nil {
		switch {
		case *in.BNP < 50:
			add("bnp", 1)
		case *in.BNP < 200:
			add("bnp", 2)
		case *in.BNP <= 800:
			add("bnp", 3)
		default:
			add("bnp", 4)
		}
	}
	if in.NTProBNP != nil {
		switch {
		case *in.NTProBNP < 300:
			add("nt_probnp", 1)
		case *in.NTProBNP < 650:
			add("nt_probnp", 2)
		case *in.NTProBNP <= 1100:
			add("nt_probnp", 3)
		default:
			add("nt_probnp", 4)
		}
	}

	avg := 2.5
	if len(components) > 0 {
		var sum float64
		for _, c := range components {
			sum += c.Value
		}
		avg = sum / float64(len(components))
	}
	rounded := math.Round(avg)

	var riskStratum, mortality, recommendation string
	switch rounded {
	case 1:
		riskStratum = "low"
		mortality = "<5%"
		recommendation = "Continue current therapy; maintain low-risk status"
	case 2:
		riskStratum = "intermediate_low"
		mortality = "5-10%"
		recommendation = "Consider treatment escalation; add selexipag or switch PDE5i to riociguat"
	case 3:
		riskStratum = "intermediate_high"
		mortality = "10-20%"
		recommendation = "Escalate therapy; add IV/SC prostacyclin; refer for lung transplant evaluation"
	default:
		riskStratum = "high"
		mortality = ">20%"
		recommendation = "Urgent treatment escalation with IV/SC prostacyclin; expedite lung transplant evaluation"
	}

	interpretation := fmt.Sprintf(
		"PAH follow-up risk (4-strata model): average score %.2f across %d parameters, stratum %s. "+
			"Estimated 1-year mortality %s",
		avg, len(components), formatNumber(rounded), mortality)
	if rounded >= 3 {
		interpretation += ". Consider calculating REVEAL score for transplant listing decisions " +
			"(score >=7 = evaluate, >=10 = list)"
	}

	citation := domain.MustCitation("esc_ph_2022", domain.CLASS_I, domain.LEVEL_B,
		domain.WithSection("7.3.3", "Risk stratification at follow-up"),
		domain.WithStudies("COMPERA 2.0", "French PH Registry"),
	)

	return ScoreResult{
		ScoreName:      "PAH Risk (Follow-up)",
		ScoreValue:     rounded,
		MaxScore:       floatPtr(4),
		RiskCategory:   riskStratum,
		Interpretation: interpretation,
		Components:     components,
		Recommendation: recommendation,
		Citation:       citation,
	}
}

// PHHemodynamicsInput carries right heart catheterization measurements.
type PHHemodynamicsInput struct {
	MeanPAP       float64  `json:"mean_pap"`                 // mmHg
	PAWP          float64  `json:"pawp"`                     // mmHg
	PVR           float64  `json:"pvr"`                      // Wood units
	CardiacOutput *float64 `json:"cardiac_output,omitempty"` // L/min
}

// PHHemodynamicsResult classifies pulmonary hypertension by invasive
// hemodynamics per the ESC/ERS 2022 definitions.
type PHHemodynamicsResult struct {
	Classification         string           `json:"classification"`
	Description            string           `json:"description"`
	HasPH                  bool             `json:"has_ph"`
	SuggestedGroup         string           `json:"suggested_group,omitempty"`
	TranspulmonaryGradient float64          `json:"transpulmonary_gradient"`
	NextSteps              []string         `json:"next_steps"`
	Citation               *domain.Citation `json:"citation"`
}

// ClassifyPHHemodynamics applies the hemodynamic definitions: PH is
// mPAP > 20 mmHg; pre-capillary requires PAWP <= 15 and PVR > 2 WU;
// post-capillary requires PAWP > 15.
func ClassifyPHHemodynamics(in PHHemodynamicsInput) PHHemodynamicsResult {
	hasPH := in.MeanPAP > 20

	var classification, description, group string
	var nextSteps []string

	switch {
	case !hasPH:
		classification = "No PH"
		description = "Mean PAP <=20 mmHg - no pulmonary hypertension"
		nextSteps = []string{"No further PH workup indicated based on hemodynamics"}
	case in.PAWP <= 15 && in.PVR > 2:
		classification = "Pre-capillary PH"
		description = "Elevated mPAP with normal PAWP and elevated PVR"
		group = "Group 1 (PAH), Group 3 (Lung disease), Group 4 (CTEPH), or Group 5"
		nextSteps = []string{
			"V/Q scan to rule out CTEPH (Group 4)",
			"PFTs and CT chest to evaluate for lung disease (Group 3)",
			"Evaluate for PAH risk factors (CTD, HIV, portal HTN, drugs) for Group 1",
			"Vasoreactivity testing if idiopathic/heritable PAH suspected",
		}
	case in.PAWP > 15 && in.PVR <= 2:
		classification = "Isolated post-capillary PH (IpcPH)"
		description = "Elevated mPAP with elevated PAWP but normal PVR - consistent with left heart disease"
		group = "Group 2 (PH due to left heart disease)"
		nextSteps = []string{
			"Focus on treatment of underlying left heart disease",
			"Optimize volume status and LV filling pressures",
			"Consider further evaluation for HFpEF, valvular disease, or LV dysfunction",
		}
	case in.PAWP > 15 && in.PVR > 2:
		classification = "Combined post- and pre-capillary PH (CpcPH)"
		description = "Features of both left heart disease and pulmonary vascular disease"
		group = "Group 2 (with pulmonary vascular component)"
		nextSteps = []string{
			"Treat underlying left heart disease",
			"Optimize volume status",
			"PAH-specific therapy generally not recommended",
			"Consider referral to PH center for complex cases",
		}
	default:
		classification = "Indeterminate"
		description = "Hemodynamic pattern requires clinical correlation"
		group = "Requires further evaluation"
		nextSteps = []string{"Clinical correlation and additional workup needed"}
	}

	citation := domain.MustCitation("esc_ph_2022", domain.CLASS_I, domain.LEVEL_C,
		domain.WithSection("3.2", "Haemodynamic definitions"),
	)

	return PHHemodynamicsResult{
		Classification:         classification,
		Description:            description,
		HasPH:                  hasPH,
		SuggestedGroup:         group,
		TranspulmonaryGradient: in.MeanPAP - in.PAWP,
		NextSteps:              nextSteps,
		Citation:               citation,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
