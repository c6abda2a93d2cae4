// Package guidelines encodes representative ESC guideline rule functions.
// Each rule function is a pure function from a patient record (plus
// optional context) to a RecommendationSet; it never mutates the patient
// and always returns a non-nil set, possibly empty when inapplicable.
package guidelines

import (
	"strings"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// Family is a guideline family tag used for relevance dispatch.
type Family string

const (
	FAMILY_HEART_FAILURE       Family = "heart_failure"
	FAMILY_ATRIAL_FIBRILLATION Family = "atrial_fibrillation"
	FAMILY_ACS                 Family = "acs"
	FAMILY_VHD                 Family = "vhd"
	FAMILY_PULMONARY_HTN       Family = "pulmonary_hypertension"
	FAMILY_ARRHYTHMIA          Family = "arrhythmia"
	FAMILY_CARDIO_ONCOLOGY     Family = "cardio_oncology"
)

// GuidelineKey returns the registry key of the family's primary document.
func (f Family) GuidelineKey() string {
	switch f {
	case FAMILY_HEART_FAILURE:
		return "esc_hf_2021"
	case FAMILY_ATRIAL_FIBRILLATION:
		return "esc_af_2020"
	case FAMILY_ACS:
		return "esc_acs_2020"
	case FAMILY_VHD:
		return "esc_vhd_2021"
	case FAMILY_PULMONARY_HTN:
		return "esc_ph_2022"
	case FAMILY_ARRHYTHMIA:
		return "esc_va_scd_2022"
	case FAMILY_CARDIO_ONCOLOGY:
		return "esc_cardio_onc_2022"
	}
	return ""
}

// familyKeywords maps each guideline family to the question keywords that
// select it. Matching is case-insensitive substring containment; keyword
// dispatch lives here and nowhere else.
var familyKeywords = map[Family][]string{
	FAMILY_HEART_FAILURE: {
		"heart failure", "hf", "lvef", "ef", "ejection fraction",
		"congestion", "diuretic", "gdmt",
	},
	FAMILY_ATRIAL_FIBRILLATION: {
		"atrial fibrillation", "af", "afib", "anticoagulation",
		"stroke prevention", "rate control", "rhythm control",
	},
	FAMILY_ACS: {
		"acs", "nstemi", "stemi", "acute coronary", "troponin", "chest pain",
		"unstable angina", "mi", "myocardial infarction",
	},
	FAMILY_VHD: {
		"valve", "valvular", "aortic stenosis", "mitral", "tricuspid",
		"regurgitation", "stenosis", "tavr", "tavi",
	},
	FAMILY_PULMONARY_HTN: {
		"pulmonary hypertension", "ph", "pah", "rvsp",
		"right heart", "pulmonary pressure",
	},
	FAMILY_ARRHYTHMIA: {
		"arrhythmia", "vt", "ventricular tachycardia", "scd",
		"sudden cardiac death", "icd", "pacemaker", "ablation",
	},
	FAMILY_CARDIO_ONCOLOGY: {
		"cardio-oncology", "cardiooncology", "chemotherapy",
		"cancer", "anthracycline", "cardiotoxicity",
	},
}

// Families returns every known guideline family.
func Families() []Family {
	return []Family{
		FAMILY_HEART_FAILURE,
		FAMILY_ATRIAL_FIBRILLATION,
		FAMILY_ACS,
		FAMILY_VHD,
		FAMILY_PULMONARY_HTN,
		FAMILY_ARRHYTHMIA,
		FAMILY_CARDIO_ONCOLOGY,
	}
}

// RelevantFamilies returns the guideline families matching the question
// text and the patient's recorded conditions, in the fixed family order.
// Keyword match is case-insensitive containment; patient flags (HF by
// diagnosis or LVEF < 50, AF by type or ECG) add their family even when
// the question never names it.
func RelevantFamilies(p *domain.Patient, question string) []Family {
	selected := make(map[Family]bool)

	q := strings.ToLower(question)
	for family, keywords := range familyKeywords {
		for _, kw := range keywords {
			if strings.Contains(q, kw) {
				selected[family] = true
				break
			}
		}
	}

	if p != nil {
		if p.HasDiagnosis("heart_failure") {
			selected[FAMILY_HEART_FAILURE] = true
		}
		if lvef := p.LVEF(); lvef != nil && *lvef < 50 {
			selected[FAMILY_HEART_FAILURE] = true
		}
		if p.AFType != "" || (p.ECG != nil && p.ECG.AFPresent) {
			selected[FAMILY_ATRIAL_FIBRILLATION] = true
		}
	}

	var out []Family
	for _, f := range Families() {
		if selected[f] {
			out = append(out, f)
		}
	}
	return out
}
