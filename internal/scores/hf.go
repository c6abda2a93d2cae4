package scores

import (
	"fmt"
	"strings"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// NYHAInput describes the symptom burden used to assign the NYHA class.
type NYHAInput struct {
	SymptomsAtRest               bool `json:"symptoms_at_rest"`
	SymptomsWithMinimalActivity  bool `json:"symptoms_with_less_than_ordinary_activity"`
	SymptomsWithOrdinaryActivity bool `json:"symptoms_with_ordinary_activity"`
}

// NYHA assigns the NYHA functional class for heart failure symptom burden
// per the ESC HF 2021 guidelines.
func NYHA(in NYHAInput) ScoreResult {
	var (
		nyha           int
		riskCategory   string
		interpretation string
		recommendation string
	)

	switch {
	case in.SymptomsAtRest:
		nyha = 4
		riskCategory = "very_high"
		interpretation = "NYHA Class IV: Unable to carry out any physical activity without discomfort. " +
			"Symptoms at rest. Any physical activity increases discomfort."
		recommendation = "Consider advanced HF therapies. Optimize GDMT. " +
			"Evaluate for transplant/LVAD if appropriate. Close monitoring required."
	case in.SymptomsWithMinimalActivity:
		nyha = 3
		riskCategory = "high"
		interpretation = "NYHA Class III: Marked limitation of physical activity. Comfortable at rest. " +
			"Less than ordinary activity causes fatigue, palpitation, or dyspnea."
		recommendation = "Maximize GDMT including diuretic optimization. Consider device therapy (CRT/ICD) if indicated. " +
			"May benefit from cardiac rehabilitation."
	case in.SymptomsWithOrdinaryActivity:
		nyha = 2
		riskCategory = "moderate"
		interpretation = "NYHA Class II: Slight limitation of physical activity. Comfortable at rest. " +
			"Ordinary physical activity results in fatigue, palpitation, or dyspnea."
		recommendation = "Initiate and uptitrate GDMT. Focus on lifestyle modification. " +
			"Cardiac rehabilitation beneficial."
	default:
		nyha = 1
		riskCategory = "low"
		interpretation = "NYHA Class I: No limitation of physical activity. Ordinary physical activity " +
			"does not cause undue fatigue, palpitation, or dyspnea."
		recommendation = "Continue GDMT if indicated. Monitor for progression. " +
			"Encourage exercise and healthy lifestyle."
	}

	citation := domain.MustCitation("esc_hf_2021", domain.CLASS_I, domain.LEVEL_C,
		domain.WithSection("4", "Symptoms and signs of heart failure"),
	)

	return ScoreResult{
		ScoreName:      "NYHA Functional Class",
		ScoreValue:     float64(nyha),
		MaxScore:       floatPtr(4),
		RiskCategory:   riskCategory,
		Interpretation: interpretation,
		Components:     []Component{{"class", float64(nyha)}},
		Recommendation: recommendation,
		Citation:       citation,
	}
}

// MAGGICInput carries the variables for the MAGGIC chronic heart failure
// mortality score.
type MAGGICInput struct {
	Age                 int     `json:"age"`
	Male                bool    `json:"male"`
	LVEF                float64 `json:"lvef"`
	NYHAClass           int     `json:"nyha_class"`
	SystolicBP          int     `json:"systolic_bp"`
	BMI                 float64 `json:"bmi"`
	Creatinine          float64 `json:"creatinine"` // mg/dL
	CurrentSmoker       bool    `json:"current_smoker"`
	Diabetes            bool    `json:"diabetes"`
	COPD                bool    `json:"copd"`
	HFDiagnosed18Months bool    `json:"hf_diagnosis_18_months"` // HF diagnosed within last 18 months
	OnBetaBlocker       bool    `json:"on_beta_blocker"`
	OnACEIARB           bool    `json:"on_acei_arb"`
}

// maggicAgePoints returns the age contribution, which the MAGGIC model
// weights differently by ejection fraction band.
func maggicAgePoints(age int, lvef float64) float64 {
	type band struct {
		under  int
		points float64
	}
	var bands []band
	switch {
	case lvef < 30:
		bands = []band{{55, 0}, {60, 1}, {65, 2}, {70, 4}, {75, 6}, {80, 8}}
	case lvef < 40:
		bands = []band{{55, 0}, {60, 2}, {65, 4}, {70, 6}, {75, 8}, {80, 10}}
	default:
		bands = []band{{55, 0}, {60, 3}, {65, 5}, {70, 7}, {75, 9}, {80, 12}}
	}
	for _, b := range bands {
		if age < b.under {
			return b.points
		}
	}
	switch {
	case lvef < 30:
		return 10
	case lvef < 40:
		return 13
	default:
		return 15
	}
}

// MAGGIC calculates the MAGGIC (Meta-Analysis Global Group in Chronic
// Heart Failure) score, estimating 1- and 3-year mortality. Referenced in
// the ESC HF 2021 guidelines for prognostic assessment.
func MAGGIC(in MAGGICInput) ScoreResult {
	var components []Component
	var score float64

	add := func(name string, points float64) {
		score += points
		components = append(components, Component{name, points})
	}

	add("age", maggicAgePoints(in.Age, in.LVEF))

	var efPoints float64
	switch {
	case in.LVEF < 20:
		efPoints = 7
	case in.LVEF < 25:
		efPoints = 6
	case in.LVEF < 30:
		efPoints = 5
	case in.LVEF < 35:
		efPoints = 3
	case in.LVEF < 40:
		efPoints = 2
	}
	add("lvef", efPoints)

	var bpPoints float64
	switch {
	case in.SystolicBP < 110:
		bpPoints = 5
	case in.SystolicBP < 120:
		bpPoints = 4
	case in.SystolicBP < 130:
		bpPoints = 3
	case in.SystolicBP < 140:
		bpPoints = 2
	case in.SystolicBP < 150:
		bpPoints = 1
	}
	add("systolic_bp", bpPoints)

	var bmiPoints float64
	switch {
	case in.BMI < 15:
		bmiPoints = 6
	case in.BMI < 20:
		bmiPoints = 5
	case in.BMI < 25:
		bmiPoints = 3
	case in.BMI < 30:
		bmiPoints = 2
	}
	add("bmi", bmiPoints)

	var crPoints float64
	switch {
	case in.Creatinine < 0.9:
		crPoints = 0
	case in.Creatinine < 1.1:
		crPoints = 1
	case in.Creatinine < 1.3:
		crPoints = 2
	case in.Creatinine < 1.5:
		crPoints = 3
	case in.Creatinine < 1.7:
		crPoints = 4
	case in.Creatinine < 1.9:
		crPoints = 5
	case in.Creatinine < 2.1:
		crPoints = 6
	case in.Creatinine < 2.3:
		crPoints = 7
	case in.Creatinine < 2.5:
		crPoints = 8
	default:
		crPoints = 9
	}
	add("creatinine", crPoints)

	nyhaPoints := map[int]float64{1: 0, 2: 2, 3: 6, 4: 8}[in.NYHAClass]
	add("nyha_class", nyhaPoints)

	if in.Male {
		add("male", 1)
	}
	if in.CurrentSmoker {
		add("current_smoker", 1)
	}
	if in.Diabetes {
		add("diabetes", 3)
	}
	if in.COPD {
		add("copd", 2)
	}
	if !in.HFDiagnosed18Months {
		add("hf_duration_over_18mo", 2)
	}
	if !in.OnBetaBlocker {
		add("no_beta_blocker", 3)
	}
	if !in.OnACEIARB {
		add("no_acei_arb", 1)
	}

	var riskCategory, mortality1yr, mortality3yr string
	switch {
	case score <= 10:
		riskCategory, mortality1yr, mortality3yr = "low", "2-5%", "5-10%"
	case score <= 15:
		riskCategory, mortality1yr, mortality3yr = "low_intermediate", "5-10%", "15-25%"
	case score <= 20:
		riskCategory, mortality1yr, mortality3yr = "intermediate", "10-15%", "25-35%"
	case score <= 25:
		riskCategory, mortality1yr, mortality3yr = "intermediate_high", "15-25%", "35-50%"
	case score <= 30:
		riskCategory, mortality1yr, mortality3yr = "high", "25-35%", "50-65%"
	default:
		riskCategory, mortality1yr, mortality3yr = "very_high", ">35%", ">65%"
	}

	interpretation := fmt.Sprintf(
		"MAGGIC score %s indicates %s risk with estimated 1-year mortality of %s and 3-year mortality of %s",
		formatNumber(score), strings.ReplaceAll(riskCategory, "_", "-"), mortality1yr, mortality3yr)

	citation := domain.MustCitation("esc_hf_2021", domain.CLASS_IIA, domain.LEVEL_B,
		domain.WithSection("13", "Multidisciplinary team management and prognostic assessment"),
		domain.WithStudies("Pocock SJ et al. Eur Heart J 2013"),
	)

	return ScoreResult{
		ScoreName:      "MAGGIC",
		ScoreValue:     score,
		MaxScore:       floatPtr(50),
		RiskCategory:   riskCategory,
		Interpretation: interpretation,
		Components:     components,
		Recommendation: "Consider intensification of HF therapy and close follow-up for higher risk patients",
		Citation:       citation,
	}
}

// H2FPEFInput carries the echo and clinical variables for the H2FPEF
// diagnostic score for HFpEF.
type H2FPEFInput struct {
	BMI                float64 `json:"bmi"`
	Age                int     `json:"age"`
	EOverEPrime        float64 `json:"e_e_prime"` // E/e' ratio on echo
	PASP               float64 `json:"pasp"`      // pulmonary artery systolic pressure estimate
	AtrialFibrillation bool    `json:"atrial_fibrillation"`
}

// H2FPEF calculates the H2FPEF score, used to distinguish HFpEF from
// non-cardiac causes of dyspnea.
func H2FPEF(in H2FPEFInput) ScoreResult {
	var components []Component
	var score float64

	if in.BMI > 30 {
		score += 2
		components = append(components, Component{"Obesity (BMI > 30)", 2})
	}
	if in.AtrialFibrillation {
		score += 3
		components = append(components, Component{"Atrial fibrillation", 3})
	}
	if in.PASP > 35 {
		score++
		components = append(components, Component{"PASP > 35 mmHg", 1})
	}
	if in.EOverEPrime > 9 {
		score++
		components = append(components, Component{"E/e' > 9", 1})
	}

	agePoints := 0
	if in.Age > 60 {
		agePoints = (in.Age - 60) / 10
	}
	if agePoints > 2 {
		agePoints = 2
	}
	if agePoints > 0 {
		score += float64(agePoints)
		components = append(components, Component{"Age factor", float64(agePoints)})
	}

	var riskCategory, recommendation string
	var riskPct float64
	switch {
	case score <= 1:
		riskCategory, riskPct = "low", 10
		recommendation = "LOW probability of HFpEF. Consider alternative diagnoses for dyspnea. " +
			"If clinical suspicion remains, consider diastolic stress testing."
	case score <= 4:
		riskCategory, riskPct = "moderate", 50
		recommendation = "INTERMEDIATE probability. Consider exercise echocardiography or " +
			"invasive hemodynamic assessment if diagnosis uncertain."
	default:
		riskCategory, riskPct = "high", 90
		recommendation = "HIGH probability of HFpEF. Diagnosis likely. Initiate appropriate therapy: " +
			"diuretics for congestion, SGLT2i, treat comorbidities."
	}

	interpretation := fmt.Sprintf("H2FPEF Score = %s: Probability of HFpEF is approximately %.0f%%",
		formatNumber(score), riskPct)

	citation := domain.MustCitation("esc_hf_2021", domain.CLASS_IIA, domain.LEVEL_B,
		domain.WithSection("4.2", "Diagnosis of HFpEF"),
		domain.WithStudies("Reddy YNV et al. Circulation 2018"),
	)

	return ScoreResult{
		ScoreName:      "H2FPEF",
		ScoreValue:     score,
		MaxScore:       floatPtr(9),
		RiskCategory:   riskCategory,
		RiskPercentage: floatPtr(riskPct),
		Interpretation: interpretation,
		Components:     components,
		Recommendation: recommendation,
		Citation:       citation,
	}
}

// IronDeficiencyInput carries the iron studies used to assess iron
// deficiency in heart failure.
type IronDeficiencyInput struct {
	Ferritin              float64  `json:"ferritin"`               // µg/L
	TransferrinSaturation float64  `json:"transferrin_saturation"` // %
	Hemoglobin            *float64 `json:"hemoglobin,omitempty"`   // g/dL
	SymptomaticHF         bool     `json:"symptomatic_hf"`
	LVEF                  *float64 `json:"lvef,omitempty"`
}

// IronDeficiencyResult is the iron deficiency assessment for a heart
// failure patient per the ESC HF 2021 definition.
type IronDeficiencyResult struct {
	IronDeficient        bool             `json:"iron_deficient"`
	DeficiencyType       string           `json:"deficiency_type"`
	Anemic               *bool            `json:"anemic,omitempty"`
	IVIronRecommendation string           `json:"iv_iron_recommendation"`
	IVIronText           string           `json:"iv_iron_text"`
	HospitalizationNote  string           `json:"hospitalization_note,omitempty"`
	PreferredAgents      []string         `json:"preferred_agents"`
	Citation             *domain.Citation `json:"citation"`
}

// AssessIronDeficiency evaluates the ESC iron deficiency criteria in HF:
// ferritin < 100 µg/L (absolute), or ferritin < 300 µg/L with TSAT < 20%
// (functional).
func AssessIronDeficiency(in IronDeficiencyInput) IronDeficiencyResult {
	deficient := in.Ferritin < 100 || (in.Ferritin < 300 && in.TransferrinSaturation < 20)

	var deficiencyType string
	switch {
	case in.Ferritin < 100:
		deficiencyType = "Absolute iron deficiency"
	case in.Ferritin < 300 && in.TransferrinSaturation < 20:
		deficiencyType = "Functional iron deficiency"
	default:
		deficiencyType = "No iron deficiency by ESC criteria"
	}

	var anemic *bool
	if in.Hemoglobin != nil {
		v := *in.Hemoglobin < 13.0
		anemic = &v
	}

	var ivRec, ivText string
	if deficient && in.SymptomaticHF {
		ivRec = "Class IIa"
		if in.LVEF != nil && *in.LVEF < 50 {
			ivText = "IV iron (FCM or iron derisomaltose) should be considered to improve symptoms, exercise capacity, and quality of life"
		} else {
			ivText = "IV iron should be considered in symptomatic HF with iron deficiency"
		}
	} else {
		ivRec = "Not indicated"
		ivText = "Iron deficiency criteria not met or patient asymptomatic"
	}

	hospNote := ""
	if deficient {
		hospNote = "IV iron (FCM) should be considered in patients hospitalized for acute HF to reduce risk of HF hospitalization (Class IIa)"
	}

	citation := domain.MustCitation("esc_hf_2021", domain.CLASS_IIA, domain.LEVEL_A,
		domain.WithSection("12.4", "Iron deficiency and anaemia"),
		domain.WithStudies("FAIR-HF", "CONFIRM-HF", "AFFIRM-AHF"),
	)

	return IronDeficiencyResult{
		IronDeficient:        deficient,
		DeficiencyType:       deficiencyType,
		Anemic:               anemic,
		IVIronRecommendation: ivRec,
		IVIronText:           ivText,
		HospitalizationNote:  hospNote,
		PreferredAgents:      []string{"Ferric carboxymaltose (FCM)", "Iron derisomaltose (iron isomaltoside)"},
		Citation:             citation,
	}
}

// HFPhenotypeInput carries the variables for LVEF-based heart failure
// phenotype classification.
type HFPhenotypeInput struct {
	LVEF     float64  `json:"lvef"`
	BNP      *float64 `json:"bnp,omitempty"`       // pg/mL
	NTProBNP *float64 `json:"nt_probnp,omitempty"` // pg/mL
}

// HFPhenotypeResult classifies heart failure by ejection fraction band.
type HFPhenotypeResult struct {
	Phenotype                   domain.HFPhenotype `json:"phenotype"`
	FullName                    string             `json:"full_name"`
	LVEF                        float64            `json:"lvef"`
	NatriureticPeptidesElevated bool               `json:"natriuretic_peptides_elevated"`
	TreatmentPillars            []string           `json:"treatment_pillars"`
	DiagnosticNotes             []string           `json:"diagnostic_notes"`
	Citation                    *domain.Citation   `json:"citation"`
}

// ClassifyHFPhenotype classifies heart failure phenotype by LVEF per the
// ESC HF 2021 bands: HFrEF <=40%, HFmrEF 41-49%, HFpEF >=50%.
func ClassifyHFPhenotype(in HFPhenotypeInput) HFPhenotypeResult {
	var (
		phenotype domain.HFPhenotype
		fullName  string
		pillars   []string
		notes     []string
	)

	switch {
	case in.LVEF <= 40:
		phenotype = domain.HFREF
		fullName = "Heart Failure with Reduced Ejection Fraction"
		pillars = []string{
			"ACE-I/ARNI (Class I)",
			"Beta-blocker (Class I)",
			"MRA (Class I)",
			"SGLT2 inhibitor (Class I)",
			"Loop diuretics for congestion",
			"Consider ICD/CRT based on criteria",
		}
		notes = []string{
			"HFrEF diagnosis: symptoms/signs + LVEF <=40%",
			"Elevated natriuretic peptides support diagnosis but not required if clear structural abnormality",
		}
	case in.LVEF <= 49:
		phenotype = domain.HFMREF
		fullName = "Heart Failure with Mildly Reduced Ejection Fraction"
		pillars = []string{
			"SGLT2 inhibitor (Class IIa)",
			"ACE-I/ARB/ARNI (Class IIb)",
			"Beta-blocker (Class IIb)",
			"MRA (Class IIb)",
			"Diuretics for congestion",
			"Treat underlying etiology",
		}
		notes = []string{
			"HFmrEF diagnosis: symptoms/signs + LVEF 41-49%",
			"Elevated natriuretic peptides support diagnosis but not required if clear structural abnormality",
		}
	default:
		phenotype = domain.HFPEF
		fullName = "Heart Failure with Preserved Ejection Fraction"
		pillars = []string{
			"SGLT2 inhibitor (Class IIa)",
			"Diuretics for congestion (Class I)",
			"Treat underlying causes and comorbidities (Class I)",
			"Screen for specific etiologies (amyloidosis, HCM)",
			"Exercise rehabilitation",
		}
		notes = []string{
			"HFpEF diagnosis requires: symptoms/signs + LVEF >=50% + elevated NPs + objective evidence of cardiac dysfunction",
			"Consider H2FPEF or HFA-PEFF scores for diagnostic uncertainty",
			"Rule out non-cardiac causes of symptoms",
		}
	}

	npElevated := false
	if in.BNP != nil && *in.BNP > 35 {
		npElevated = true
	}
	if in.NTProBNP != nil && *in.NTProBNP > 125 {
		npElevated = true
	}

	citation := domain.MustCitation("esc_hf_2021", domain.CLASS_I, domain.LEVEL_C,
		domain.WithSection("3.1", "Definition of heart failure"),
	)

	return HFPhenotypeResult{
		Phenotype:                   phenotype,
		FullName:                    fullName,
		LVEF:                        in.LVEF,
		NatriureticPeptidesElevated: npElevated,
		TreatmentPillars:            pillars,
		DiagnosticNotes:             notes,
		Citation:                    citation,
	}
}
