package guidelines

import (
	"fmt"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/scores"
)

// AnticoagulationStrength grades how strongly anticoagulation is indicated.
type AnticoagulationStrength string

const (
	OAC_RECOMMENDED     AnticoagulationStrength = "recommended"
	OAC_SHOULD_CONSIDER AnticoagulationStrength = "should_consider"
	OAC_NOT_RECOMMENDED AnticoagulationStrength = "not_recommended"
)

// StrokeRiskAssessment is the combined CHA2DS2-VASc/HAS-BLED assessment
// for an AF patient, with the anticoagulation decision it drives.
type StrokeRiskAssessment struct {
	CHA2DS2VASc scores.ScoreResult `json:"cha2ds2_vasc"`
	HASBLED     scores.ScoreResult `json:"has_bled"`

	AnticoagulationIndicated bool                    `json:"anticoagulation_indicated"`
	AnticoagulationStrength  AnticoagulationStrength `json:"anticoagulation_strength"`

	Recommendations []domain.Recommendation `json:"recommendations"`
}

// AssessStrokeRisk performs the ESC AF 2020 section 11.2 stroke prevention
// assessment: CHA2DS2-VASc for stroke risk, HAS-BLED to surface modifiable
// bleeding factors (never to withhold anticoagulation), then the
// sex-adjusted anticoagulation decision.
func AssessStrokeRisk(p *domain.Patient) StrokeRiskAssessment {
	age := 65
	if p.Age != nil {
		age = *p.Age
	}

	hasCHF := p.HasDiagnosis("heart_failure")
	if lvef := p.LVEF(); lvef != nil && *lvef < 40 {
		hasCHF = true
	}

	chads := scores.CHA2DS2VASc(scores.CHA2DS2VAScInput{
		Age:                age,
		Sex:                p.Sex,
		HasCHF:             hasCHF,
		HasHypertension:    p.HasHypertension,
		HasStrokeTIATE:     p.HasPriorStrokeTIA,
		HasVascularDisease: p.HasVascularDisease || p.HasCAD,
		HasDiabetes:        p.HasDiabetes,
	})

	abnormalRenal := false
	if egfr := p.EGFR(); egfr != nil && *egfr < 50 {
		abnormalRenal = true
	}
	bled := scores.HASBLED(scores.HASBLEDInput{
		HasHypertension:       p.HasHypertension,
		AbnormalRenalFunction: abnormalRenal,
		AbnormalLiverFunction: p.HasLiverDisease,
		HasStroke:             p.HasPriorStrokeTIA,
		BleedingHistory:       p.HasPriorBleeding,
		AgeOver65:             age > 65,
		DrugsPredisposing:     p.IsOnMedication("aspirin") || p.IsOnMedication("nsaid"),
		AlcoholExcess:         p.AlcoholUse == "heavy",
	})

	isFemale := p.Sex == domain.SEX_FEMALE
	adjusted := int(chads.ScoreValue)
	if isFemale {
		adjusted--
	}

	var recs []domain.Recommendation
	var indicated bool
	var strength AnticoagulationStrength

	switch {
	case adjusted >= 2:
		indicated = true
		strength = OAC_RECOMMENDED
		recs = append(recs, domain.MustGuidelineRecommendation(
			"Oral anticoagulation is RECOMMENDED to prevent stroke",
			"esc_af_2020", domain.CLASS_I, domain.LEVEL_A,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section: "11.2.1",
				Studies: []string{"RE-LY", "ROCKET AF", "ARISTOTLE", "ENGAGE AF-TIMI 48"},
				Rationale: fmt.Sprintf("CHA2DS2-VASc %d indicates high stroke risk. Annual stroke risk ~%.1f%%",
					int(chads.ScoreValue), *chads.RiskPercentage),
			}))
	case adjusted == 1:
		indicated = true
		strength = OAC_SHOULD_CONSIDER
		recs = append(recs, domain.MustGuidelineRecommendation(
			"Oral anticoagulation SHOULD BE CONSIDERED, weighing stroke risk against bleeding risk",
			"esc_af_2020", domain.CLASS_IIA, domain.LEVEL_B,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section: "11.2.1",
				Rationale: fmt.Sprintf("CHA2DS2-VASc %d (intermediate risk). Shared decision-making with patient.",
					int(chads.ScoreValue)),
			}))
	default:
		strength = OAC_NOT_RECOMMENDED
		recs = append(recs, domain.MustGuidelineRecommendation(
			"Antithrombotic therapy NOT recommended (no stroke risk factors beyond sex)",
			"esc_af_2020", domain.CLASS_IIA, domain.LEVEL_B,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section:   "11.2.1",
				Rationale: "Low stroke risk. Reassess if risk factors develop.",
			}))
	}

	if bled.ScoreValue >= 3 {
		recs = append(recs, domain.MustGuidelineRecommendation(
			fmt.Sprintf("High HAS-BLED (%d): Address modifiable bleeding risk factors. This does NOT contraindicate anticoagulation.",
				int(bled.ScoreValue)),
			"esc_af_2020", domain.CLASS_IIA, domain.LEVEL_B,
			domain.CATEGORY_MONITORING, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section:   "11.2.2",
				Rationale: "Modifiable factors: uncontrolled HTN, labile INR, concomitant drugs, alcohol",
			}))
	}

	return StrokeRiskAssessment{
		CHA2DS2VASc:              chads,
		HASBLED:                  bled,
		AnticoagulationIndicated: indicated,
		AnticoagulationStrength:  strength,
		Recommendations:          recs,
	}
}

// AnticoagulationRecommendations returns the full AF anticoagulation
// recommendation set: the stroke-risk decision plus, when anticoagulation
// is indicated, agent selection.
func AnticoagulationRecommendations(p *domain.Patient) *domain.RecommendationSet {
	assessment := AssessStrokeRisk(p)

	set := domain.NewRecommendationSet("AF Anticoagulation Recommendations")
	set.Description = fmt.Sprintf("CHA2DS2-VASc: %d, HAS-BLED: %d",
		int(assessment.CHA2DS2VASc.ScoreValue), int(assessment.HASBLED.ScoreValue))
	set.PrimaryGuideline = "ESC AF 2020"

	set.AddAll(assessment.Recommendations)

	if assessment.AnticoagulationIndicated {
		set.AddAll(SelectAnticoagulant(p).Recommendations)
	}
	return set
}

// SelectAnticoagulant picks the anticoagulant class for an AF patient per
// ESC AF 2020 sections 11.2.3-11.2.4. DOACs are preferred over VKA except
// with a mechanical valve or moderate-severe mitral stenosis, which
// mandate warfarin.
func SelectAnticoagulant(p *domain.Patient) *domain.RecommendationSet {
	set := domain.NewRecommendationSet("Anticoagulant Selection")
	set.PrimaryGuideline = "ESC AF 2020"

	if p.HasDiagnosis("mechanical_valve") {
		set.Add(domain.MustGuidelineRecommendation(
			"WARFARIN is required for mechanical heart valve. DOACs are contraindicated.",
			"esc_af_2020", domain.CLASS_I, domain.LEVEL_B,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section:           "11.2.4",
				Studies:           []string{"RE-ALIGN (stopped early - harm with dabigatran)"},
				Monitoring:        "Target INR based on valve type and position",
				Contraindications: []string{"All DOACs contraindicated with mechanical valve"},
			}))
		return set
	}

	if p.Echo != nil && p.Echo.MitralValveArea != nil && *p.Echo.MitralValveArea < 1.5 {
		set.Add(domain.MustGuidelineRecommendation(
			"WARFARIN recommended for moderate-severe mitral stenosis (rheumatic). DOACs not well studied.",
			"esc_af_2020", domain.CLASS_I, domain.LEVEL_C,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{Section: "11.2.4"}))
		return set
	}

	set.Add(domain.MustGuidelineRecommendation(
		"DOAC (apixaban, rivaroxaban, edoxaban, or dabigatran) RECOMMENDED over warfarin",
		"esc_af_2020", domain.CLASS_I, domain.LEVEL_A,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{
			Section:   "11.2.3",
			Studies:   []string{"RE-LY", "ROCKET AF", "ARISTOTLE", "ENGAGE AF-TIMI 48"},
			Rationale: "DOACs have favorable risk-benefit vs warfarin: similar/better efficacy, less ICH",
		}))

	egfr := p.EGFR()
	switch {
	case egfr != nil && *egfr < 30:
		set.Add(domain.MustGuidelineRecommendation(
			"Severe CKD (eGFR 15-29): Apixaban 2.5mg BID or rivaroxaban 15mg daily may be used with caution. Avoid dabigatran.",
			"esc_af_2020", domain.CLASS_IIB, domain.LEVEL_C,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section:    "11.2.3",
				Monitoring: "Close monitoring of renal function required",
			}))
	case egfr != nil && *egfr < 50:
		set.Add(domain.MustGuidelineRecommendation(
			"Moderate CKD (eGFR 30-49): Consider dose reduction per DOAC labeling. Rivaroxaban 15mg, apixaban based on criteria, dabigatran 110mg BID.",
			"esc_af_2020", domain.CLASS_I, domain.LEVEL_B,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{Section: "11.2.3"}))
	}

	if p.Age != nil && *p.Age >= 80 {
		set.Add(domain.MustGuidelineRecommendation(
			"Age >= 80: Apixaban has best safety data. Consider reduced doses per labeling.",
			"esc_af_2020", domain.CLASS_IIA, domain.LEVEL_B,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section: "11.2.3",
				Studies: []string{"ARISTOTLE (elderly subgroup)", "ELDERCARE-AF"},
			}))
	}

	set.Add(domain.MustGuidelineRecommendation(
		"Standard doses: Apixaban 5mg BID, Rivaroxaban 20mg daily, Dabigatran 150mg BID, Edoxaban 60mg daily",
		"esc_af_2020", domain.CLASS_I, domain.LEVEL_A,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{
			Section:   "11.2.3",
			Rationale: "Use standard doses unless specific dose reduction criteria met. Under-dosing increases stroke risk.",
		}))

	return set
}

// ProcedureBleedRisk is the bleeding-risk class of a planned procedure.
type ProcedureBleedRisk string

const (
	BLEED_RISK_LOW  ProcedureBleedRisk = "low"
	BLEED_RISK_HIGH ProcedureBleedRisk = "high"
)

// PeriproceduralAnticoagulation advises on interrupting anticoagulation
// around procedures per ESC AF 2020 section 11.2.5.
func PeriproceduralAnticoagulation(p *domain.Patient, bleedRisk ProcedureBleedRisk, urgent bool) *domain.RecommendationSet {
	set := domain.NewRecommendationSet("Periprocedural Anticoagulation Management")
	set.PrimaryGuideline = "ESC AF 2020"

	if urgent {
		if p.IsOnMedication("doac") {
			set.Add(domain.MustGuidelineRecommendation(
				"Urgent procedure on DOAC: Check anti-Xa (apixaban/rivaroxaban/edoxaban) or dTT (dabigatran). Consider reversal agent if active bleeding.",
				"esc_af_2020", domain.CLASS_IIA, domain.LEVEL_C,
				domain.CATEGORY_PROCEDURE, domain.URGENCY_URGENT,
				&domain.GuidelineRecOptions{Section: "11.2.5"}))
		}
		return set
	}

	if bleedRisk == BLEED_RISK_LOW {
		set.Add(domain.MustGuidelineRecommendation(
			"Low bleeding risk procedure: May perform on uninterrupted anticoagulation or with brief omission (1-2 doses DOAC)",
			"esc_af_2020", domain.CLASS_IIA, domain.LEVEL_B,
			domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section: "11.2.5",
				Studies: []string{"BRUISE CONTROL", "COMPARE"},
			}))
	} else {
		set.Add(domain.MustGuidelineRecommendation(
			"High bleeding risk procedure: Stop DOAC 24-48h before (longer for dabigatran if CKD). Bridging generally NOT recommended.",
			"esc_af_2020", domain.CLASS_I, domain.LEVEL_B,
			domain.CATEGORY_PROCEDURE, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section: "11.2.5",
				Studies: []string{"BRIDGE (no benefit of bridging)", "PERIOP-2"},
			}))
	}

	return set
}
