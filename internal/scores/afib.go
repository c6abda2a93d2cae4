package scores

import (
	"fmt"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// CHA2DS2VAScInput carries the clinical variables for stroke risk scoring
// in atrial fibrillation.
type CHA2DS2VAScInput struct {
	Age                int        `json:"age"`
	Sex                domain.Sex `json:"sex"`
	HasCHF             bool       `json:"has_chf"`
	HasHypertension    bool       `json:"has_hypertension"`
	HasStrokeTIATE     bool       `json:"has_stroke_tia_te"`
	HasVascularDisease bool       `json:"has_vascular_disease"`
	HasDiabetes        bool       `json:"has_diabetes"`
}

// cha2ds2VAScRiskTable maps score to approximate annual stroke risk (%),
// per the Lip et al. Chest 2010 validation cohort.
var cha2ds2VAScRiskTable = map[int]float64{
	0: 0.2, 1: 0.6, 2: 2.2, 3: 3.2, 4: 4.8,
	5: 7.2, 6: 9.7, 7: 11.2, 8: 10.8, 9: 12.2,
}

// CHA2DS2VASc calculates the CHA2DS2-VASc score for stroke risk in atrial
// fibrillation per the ESC AF 2020 guidelines (section 11.2.1):
// adjusted score >= 2: oral anticoagulation recommended (Class I);
// adjusted score == 1: anticoagulation should be considered (Class IIa);
// the sex point is excluded when deciding treatment thresholds.
func CHA2DS2VASc(in CHA2DS2VAScInput) ScoreResult {
	var components []Component
	score := 0

	if in.HasCHF {
		score++
		components = append(components, Component{"CHF/LV dysfunction", 1})
	}
	if in.HasHypertension {
		score++
		components = append(components, Component{"Hypertension", 1})
	}
	if in.Age >= 75 {
		score += 2
		components = append(components, Component{"Age >= 75", 2})
	} else if in.Age >= 65 {
		score++
		components = append(components, Component{"Age 65-74", 1})
	}
	if in.HasDiabetes {
		score++
		components = append(components, Component{"Diabetes", 1})
	}
	if in.HasStrokeTIATE {
		score += 2
		components = append(components, Component{"Stroke/TIA/TE", 2})
	}
	if in.HasVascularDisease {
		score++
		components = append(components, Component{"Vascular disease", 1})
	}
	isFemale := in.Sex == domain.SEX_FEMALE
	if isFemale {
		score++
		components = append(components, Component{"Female sex", 1})
	}

	annualRisk := 15.0
	if r, ok := cha2ds2VAScRiskTable[min(score, 9)]; ok {
		annualRisk = r
	}

	// For women, the sex point does not count towards the treatment decision.
	adjusted := score
	if isFemale {
		adjusted = score - 1
	}

	var riskCategory, recommendation string
	var evidenceClass domain.EvidenceClass
	switch {
	case adjusted >= 2:
		riskCategory = "high"
		recommendation = "Oral anticoagulation is RECOMMENDED. DOACs preferred over warfarin."
		evidenceClass = domain.CLASS_I
	case adjusted == 1:
		riskCategory = "moderate"
		recommendation = "Oral anticoagulation SHOULD BE CONSIDERED, balancing stroke and bleeding risk."
		evidenceClass = domain.CLASS_IIA
	default:
		riskCategory = "low"
		recommendation = "No antithrombotic therapy recommended."
		evidenceClass = domain.CLASS_IIA
	}

	sexNote := ""
	if isFemale {
		sexNote = "Female patients have 1 point for sex. "
	}
	interpretation := fmt.Sprintf("CHA2DS2-VASc = %d: %sEstimated annual stroke risk: %.1f%%",
		score, sexNote, annualRisk)

	citation := domain.MustCitation("esc_af_2020", evidenceClass, domain.LEVEL_A,
		domain.WithSection("11.2.1", "Stroke and bleeding risk assessment"),
		domain.WithStudies("Lip GY et al. Chest 2010", "GARFIELD-AF", "PREFER in AF"),
	)

	return ScoreResult{
		ScoreName:      "CHA2DS2-VASc",
		ScoreValue:     float64(score),
		MaxScore:       floatPtr(9),
		RiskCategory:   riskCategory,
		RiskPercentage: floatPtr(annualRisk),
		Interpretation: interpretation,
		Components:     components,
		Recommendation: recommendation,
		Citation:       citation,
	}
}

// HASBLEDInput carries the nine HAS-BLED bleeding risk factors.
type HASBLEDInput struct {
	HasHypertension       bool `json:"has_hypertension"`        // uncontrolled, SBP > 160 mmHg
	AbnormalRenalFunction bool `json:"abnormal_renal_function"` // dialysis, transplant, Cr >= 2.26 mg/dL
	AbnormalLiverFunction bool `json:"abnormal_liver_function"` // cirrhosis or biochemical evidence
	HasStroke             bool `json:"has_stroke"`
	BleedingHistory       bool `json:"bleeding_history"`
	LabileINR             bool `json:"labile_inr"` // TTR < 60% if on warfarin
	AgeOver65             bool `json:"age_over_65"`
	DrugsPredisposing     bool `json:"drugs_predisposing"` // antiplatelets, NSAIDs
	AlcoholExcess         bool `json:"alcohol_excess"`     // >= 8 drinks/week
}

var hasBLEDBleedRiskTable = map[int]float64{
	0: 1.13, 1: 1.02, 2: 1.88, 3: 3.74, 4: 8.70, 5: 12.5,
}

// HASBLED calculates the HAS-BLED bleeding risk score per the ESC AF 2020
// guidelines. A score >= 3 flags high bleeding risk but is NOT a
// contraindication to anticoagulation; it directs attention to modifiable
// risk factors.
func HASBLED(in HASBLEDInput) ScoreResult {
	var components []Component
	score := 0

	add := func(present bool, name string) {
		if present {
			score++
			components = append(components, Component{name, 1})
		}
	}

	add(in.HasHypertension, "Hypertension (uncontrolled)")
	add(in.AbnormalRenalFunction, "Abnormal renal function")
	add(in.AbnormalLiverFunction, "Abnormal liver function")
	add(in.HasStroke, "Stroke")
	add(in.BleedingHistory, "Bleeding history")
	add(in.LabileINR, "Labile INR")
	add(in.AgeOver65, "Elderly (> 65)")
	add(in.DrugsPredisposing, "Drugs (antiplatelets/NSAIDs)")
	add(in.AlcoholExcess, "Alcohol excess")

	annualBleed := 15.0
	if r, ok := hasBLEDBleedRiskTable[min(score, 5)]; ok {
		annualBleed = r
	}

	var riskCategory, recommendation string
	if score >= 3 {
		riskCategory = "high"
		recommendation = "HIGH bleeding risk. This is NOT a contraindication to anticoagulation. " +
			"Focus on correcting MODIFIABLE risk factors: " +
			"control BP, avoid NSAIDs/antiplatelets if possible, treat alcohol excess, " +
			"optimize INR control if on warfarin."
	} else {
		if score <= 1 {
			riskCategory = "low"
		} else {
			riskCategory = "moderate"
		}
		recommendation = "Bleeding risk is acceptable. Proceed with anticoagulation if indicated by CHA2DS2-VASc."
	}

	interpretation := fmt.Sprintf(
		"HAS-BLED = %d: Estimated annual major bleeding risk on anticoagulation: %.1f%%",
		score, annualBleed)

	citation := domain.MustCitation("esc_af_2020", domain.CLASS_IIA, domain.LEVEL_B,
		domain.WithSection("11.2.1", "Bleeding risk assessment"),
		domain.WithStudies("Pisters R et al. Chest 2010", "AMADEUS"),
	)

	return ScoreResult{
		ScoreName:      "HAS-BLED",
		ScoreValue:     float64(score),
		MaxScore:       floatPtr(9),
		RiskCategory:   riskCategory,
		RiskPercentage: floatPtr(annualBleed),
		Interpretation: interpretation,
		Components:     components,
		Recommendation: recommendation,
		Citation:       citation,
	}
}
