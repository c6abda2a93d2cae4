package scores

import (
	"fmt"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// LMNAInput carries the risk factors for ventricular arrhythmia in LMNA
// mutation carriers.
type LMNAInput struct {
	LVEF              float64 `json:"lvef"`
	NSVT              bool    `json:"nsvt"`
	Male              bool    `json:"male"`
	AVConductionDelay bool    `json:"av_conduction_delay"` // PR > 200ms or QRS > 120ms
}

// LMNARiskResult is the 5-year ventricular arrhythmia risk estimate for an
// LMNA mutation carrier, with the ICD recommendation it implies.
type LMNARiskResult struct {
	Risk5YearPercent  float64          `json:"risk_5_year_percent"`
	RiskFactors       []string         `json:"risk_factors_present"`
	ICDRecommendation string           `json:"icd_recommendation"`
	ICDText           string           `json:"icd_text"`
	Threshold         string           `json:"threshold"`
	Note              string           `json:"note"`
	Citation          *domain.Citation `json:"citation"`
}

// LMNARisk estimates 5-year arrhythmic risk in LMNA cardiomyopathy from
// the four established risk factors, per the ESC 2022 VA/SCD guidelines.
// ICD should be considered (Class IIa) when the 5-year risk is >= 10%.
func LMNARisk(in LMNAInput) LMNARiskResult {
	var factors []string

	if in.LVEF < 50 {
		factors = append(factors, "LVEF < 50%")
	}
	if in.NSVT {
		factors = append(factors, "NSVT")
	}
	if in.Male {
		factors = append(factors, "Male sex")
	}
	if in.AVConductionDelay {
		factors = append(factors, "AV conduction delay")
	}

	var risk float64
	switch len(factors) {
	case 0:
		risk = 3.0
	case 1:
		risk = 7.0
	case 2:
		risk = 15.0
	case 3:
		risk = 25.0
	default:
		risk = 35.0
	}

	var icdRec, icdText string
	switch {
	case risk >= 10:
		icdRec = "Class IIa"
		icdText = "ICD should be considered (5-year VA risk >=10%)"
	case risk >= 5:
		icdRec = "Class IIb"
		icdText = "ICD may be considered; discuss with patient"
	default:
		icdRec = "Not routinely indicated"
		icdText = "ICD not indicated based on risk score alone; clinical judgment required"
	}

	citation := domain.MustCitation("esc_va_scd_2022", domain.CLASS_IIA, domain.LEVEL_B,
		domain.WithSection("8.4", "Dilated cardiomyopathy and hypokinetic non-dilated cardiomyopathy"),
		domain.WithStudies("Wahbi K et al. Circulation 2019"),
	)

	return LMNARiskResult{
		Risk5YearPercent:  risk,
		RiskFactors:       factors,
		ICDRecommendation: icdRec,
		ICDText:           icdText,
		Threshold:         "ICD indicated if 5-year risk >=10%",
		Note:              "LMNA mutation carriers have high arrhythmic risk even with preserved LVEF",
		Citation:          citation,
	}
}

// LQTSInput carries the variables for Long QT Syndrome risk stratification.
// Genotype is "LQT1", "LQT2", "LQT3" or "unknown".
type LQTSInput struct {
	QTc                int    `json:"qtc"` // ms
	Genotype           string `json:"genotype"`
	Male               bool   `json:"male"`
	Age                int    `json:"age"`
	PriorSyncope       bool   `json:"prior_syncope"`
	PriorCardiacArrest bool   `json:"prior_cardiac_arrest"`
}

// LQTSRiskResult is the arrhythmic risk stratification for Long QT Syndrome.
type LQTSRiskResult struct {
	RiskPoints             int              `json:"risk_points"`
	RiskCategory           string           `json:"risk_category"`
	RiskFactors            []string         `json:"risk_factors"`
	Management             []string         `json:"management"`
	GenotypeSpecificAdvice string           `json:"genotype_specific_advice"`
	Citation               *domain.Citation `json:"citation"`
}

var lqtsGenotypeTherapy = map[string]string{
	"LQT1":    "Beta-blockers most effective; avoid swimming without supervision",
	"LQT2":    "Beta-blockers + potassium supplementation; avoid sudden loud noises/alarm clocks",
	"LQT3":    "Beta-blockers less effective; consider mexiletine; avoid sleep deprivation",
	"unknown": "Beta-blockers recommended; genetic testing advised",
}

// LQTSRisk stratifies arrhythmic risk in Long QT Syndrome from QTc,
// genotype, demographics and prior events, per the ESC 2022 VA/SCD
// guidelines. Prior cardiac arrest always maps to secondary prevention.
func LQTSRisk(in LQTSInput) LQTSRiskResult {
	points := 0
	var factors []string

	switch {
	case in.QTc >= 500:
		points += 3
		factors = append(factors, fmt.Sprintf("QTc >=500 ms (%d ms)", in.QTc))
	case in.QTc >= 470:
		points += 2
		factors = append(factors, fmt.Sprintf("QTc 470-499 ms (%d ms)", in.QTc))
	case in.QTc >= 450:
		points++
		factors = append(factors, fmt.Sprintf("QTc 450-469 ms (%d ms)", in.QTc))
	}

	switch in.Genotype {
	case "LQT2":
		points++
		factors = append(factors, "LQT2 genotype (higher risk than LQT1)")
	case "LQT3":
		points += 2
		factors = append(factors, "LQT3 genotype (highest risk, events often lethal)")
	}

	if in.Male && in.Age < 15 {
		points++
		factors = append(factors, "Male child (<15 years)")
	} else if !in.Male && in.Age >= 15 {
		points++
		factors = append(factors, "Female adolescent/adult")
	}

	if in.PriorCardiacArrest {
		points += 5
		factors = append(factors, "Prior cardiac arrest (secondary prevention)")
	} else if in.PriorSyncope {
		points += 2
		factors = append(factors, "Prior syncope")
	}

	var category string
	var management []string
	switch {
	case in.PriorCardiacArrest:
		category = "very_high"
		management = []string{
			"ICD recommended (Class I)",
			"Beta-blocker therapy (Class I)",
			"Avoid QT-prolonging drugs",
			"Genotype-specific therapy",
		}
	case points >= 4:
		category = "high"
		management = []string{
			"ICD should be considered (Class IIa)",
			"Beta-blocker therapy (Class I)",
			"Left cardiac sympathetic denervation if recurrent events on beta-blocker",
			"Avoid QT-prolonging drugs",
		}
	case points >= 2:
		category = "intermediate"
		management = []string{
			"Beta-blocker therapy (Class I)",
			"Consider ICD on individual basis (Class IIb)",
			"Lifestyle modifications",
			"Avoid QT-prolonging drugs",
		}
	default:
		category = "lower"
		management = []string{
			"Beta-blocker therapy should be considered (Class IIa)",
			"Lifestyle modifications",
			"Avoid QT-prolonging drugs",
			"Family screening",
		}
	}

	advice, ok := lqtsGenotypeTherapy[in.Genotype]
	if !ok {
		advice = lqtsGenotypeTherapy["unknown"]
	}

	citation := domain.MustCitation("esc_va_scd_2022", domain.CLASS_I, domain.LEVEL_B,
		domain.WithSection("9.2", "Long QT syndrome"),
		domain.WithStudies("Mazzanti A et al. JACC 2018"),
	)

	return LQTSRiskResult{
		RiskPoints:             points,
		RiskCategory:           category,
		RiskFactors:            factors,
		Management:             management,
		GenotypeSpecificAdvice: advice,
		Citation:               citation,
	}
}

// BrugadaInput carries the variables for Brugada Syndrome risk
// stratification.
type BrugadaInput struct {
	SpontaneousType1           bool `json:"spontaneous_type1"`
	InducedType1Only           bool `json:"induced_type1_only"`
	PriorCardiacArrest         bool `json:"prior_cardiac_arrest"`
	DocumentedVTVF             bool `json:"documented_vt_vf"`
	SyncopeSuspectedArrhythmic bool `json:"syncope_suspected_arrhythmic"`
	FamilyHistorySCD           bool `json:"family_history_scd"`
	Male                       bool `json:"male"`
}

// BrugadaRiskResult is the risk stratification and ICD recommendation for
// Brugada Syndrome.
type BrugadaRiskResult struct {
	RiskCategory           string           `json:"risk_category"`
	RiskFactors            []string         `json:"risk_factors"`
	ICDRecommendationClass string           `json:"icd_recommendation_class"`
	ICDRecommendation      string           `json:"icd_recommendation"`
	Management             []string         `json:"management"`
	TriggersToAvoid        []string         `json:"triggers_to_avoid"`
	Citation               *domain.Citation `json:"citation"`
}

// BrugadaRisk stratifies sudden death risk in Brugada Syndrome per the
// ESC 2022 VA/SCD guidelines. Secondary prevention (prior arrest or
// documented VT/VF) carries a Class I ICD indication; a drug-induced
// pattern alone carries a Class III.
func BrugadaRisk(in BrugadaInput) BrugadaRiskResult {
	var (
		category   string
		factors    []string
		icdClass   string
		icdRec     string
		management []string
	)

	switch {
	case in.PriorCardiacArrest || in.DocumentedVTVF:
		category = "high_secondary_prevention"
		if in.PriorCardiacArrest {
			factors = append(factors, "Prior aborted cardiac arrest")
		}
		if in.DocumentedVTVF {
			factors = append(factors, "Documented spontaneous sustained VT/VF")
		}
		icdClass = "Class I"
		icdRec = "ICD is recommended"
		management = []string{
			"ICD implantation (Class I)",
			"Avoid drugs that unmask/worsen Brugada pattern",
			"Treat fever aggressively",
			"Consider quinidine for ICD shock reduction",
		}

	case in.SyncopeSuspectedArrhythmic && in.SpontaneousType1:
		category = "high_symptomatic"
		factors = append(factors, "Arrhythmic syncope with spontaneous Type 1 pattern")
		icdClass = "Class IIa"
		icdRec = "ICD should be considered"
		management = []string{
			"ICD should be considered (Class IIa)",
			"EP study may help risk stratification",
			"Avoid triggers",
			"Family screening",
		}

	case in.SpontaneousType1:
		if in.FamilyHistorySCD || in.Male {
			category = "intermediate"
			if in.FamilyHistorySCD {
				factors = append(factors, "Family history of SCD")
			}
			if in.Male {
				factors = append(factors, "Male sex")
			}
			factors = append(factors, "Spontaneous Type 1 pattern")
			icdClass = "Class IIb"
			icdRec = "ICD may be considered based on individual assessment"
			management = []string{
				"EP study may be considered for risk stratification (Class IIb)",
				"ICD may be considered if inducible VF at EP study",
				"Close follow-up",
				"Avoid triggers",
			}
		} else {
			category = "lower"
			factors = append(factors, "Spontaneous Type 1 pattern (asymptomatic)")
			icdClass = "Not routinely indicated"
			icdRec = "ICD not routinely recommended in asymptomatic patients"
			management = []string{
				"Close follow-up",
				"Avoid triggers (fever, drugs, alcohol excess)",
				"Family screening",
				"Patient education",
			}
		}

	case in.InducedType1Only:
		category = "lower"
		factors = append(factors, "Type 1 pattern only with drug provocation")
		icdClass = "Class III"
		icdRec = "ICD is NOT recommended for drug-induced pattern alone"
		management = []string{
			"No ICD for asymptomatic drug-induced pattern (Class III)",
			"Avoid triggering drugs",
			"Lifestyle advice",
			"Family screening recommended",
		}

	default:
		category = "indeterminate"
		icdClass = "N/A"
		icdRec = "Insufficient data for risk stratification"
		management = []string{"Further evaluation needed"}
	}

	citation := domain.MustCitation("esc_va_scd_2022", domain.CLASS_I, domain.LEVEL_C,
		domain.WithSection("9.4", "Brugada syndrome"),
	)

	return BrugadaRiskResult{
		RiskCategory:           category,
		RiskFactors:            factors,
		ICDRecommendationClass: icdClass,
		ICDRecommendation:      icdRec,
		Management:             management,
		TriggersToAvoid: []string{
			"Fever (treat aggressively with antipyretics)",
			"Class I antiarrhythmic drugs",
			"Excessive alcohol",
			"Cocaine",
			"Large meals",
			"See www.brugadadrugs.org for full drug list",
		},
		Citation: citation,
	}
}
