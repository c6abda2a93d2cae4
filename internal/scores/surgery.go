package scores

import (
	"fmt"
	"math"
	"strings"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// SurgeryUrgency is the EuroSCORE II urgency band for the planned operation.
type SurgeryUrgency string

const (
	SURGERY_ELECTIVE  SurgeryUrgency = "elective"
	SURGERY_URGENT    SurgeryUrgency = "urgent"
	SURGERY_EMERGENCY SurgeryUrgency = "emergency"
	SURGERY_SALVAGE   SurgeryUrgency = "salvage"
)

// EuroSCOREIIInput carries the preoperative variables for cardiac surgery
// risk estimation. PulmonaryHypertension is "none", "moderate"
// (sPAP 31-55 mmHg) or "severe" (sPAP > 55 mmHg).
type EuroSCOREIIInput struct {
	Age                      int            `json:"age"`
	Sex                      domain.Sex     `json:"sex"`
	EGFR                     float64        `json:"egfr"` // mL/min/1.73m2
	ExtracardiacArteriopathy bool           `json:"extracardiac_arteriopathy"`
	PoorMobility             bool           `json:"poor_mobility"`
	PreviousCardiacSurgery   bool           `json:"previous_cardiac_surgery"`
	ChronicLungDisease       bool           `json:"chronic_lung_disease"`
	ActiveEndocarditis       bool           `json:"active_endocarditis"`
	CriticalPreopState       bool           `json:"critical_preop_state"`
	DiabetesOnInsulin        bool           `json:"diabetes_on_insulin"`
	NYHAClass                int            `json:"nyha_class"`
	CCSClass4Angina          bool           `json:"ccs_class_4_angina"`
	LVEF                     float64        `json:"lvef"`
	RecentMI                 bool           `json:"recent_mi"` // < 90 days
	PulmonaryHypertension    string         `json:"pulmonary_hypertension"`
	SurgeryUrgency           SurgeryUrgency `json:"surgery_urgency"`
	ThoracicAortaSurgery     bool           `json:"thoracic_aorta_surgery"`
}

// EuroSCOREII estimates operative mortality for cardiac surgery with a
// logistic model. Risk bands follow the ESC VHD 2021 guidelines: low < 4%,
// intermediate 4-8%, high > 8%. ScoreValue is the predicted mortality
// percentage, so ComponentSum does not apply here; the components hold the
// log-odds contributions.
func EuroSCOREII(in EuroSCOREIIInput) ScoreResult {
	var components []Component

	add := func(name string, weight float64) {
		components = append(components, Component{name, weight})
	}

	const baseline = -5.324537 // model intercept in log-odds

	add("Age", round3(0.0285181*float64(in.Age)))

	if in.Sex == domain.SEX_FEMALE {
		add("Female sex", round3(0.2196434))
	}

	var renal float64
	switch {
	case in.EGFR < 30:
		renal = 1.0
	case in.EGFR < 60:
		renal = 0.5
	case in.EGFR < 85:
		renal = 0.2
	}
	if renal != 0 {
		add("Renal impairment", renal)
	}

	if in.ExtracardiacArteriopathy {
		add("Extracardiac arteriopathy", 0.5)
	}
	if in.PoorMobility {
		add("Poor mobility", 0.6)
	}
	if in.PreviousCardiacSurgery {
		add("Redo surgery", 0.8)
	}
	if in.ChronicLungDisease {
		add("Chronic lung disease", 0.3)
	}
	if in.ActiveEndocarditis {
		add("Active endocarditis", 0.6)
	}
	if in.CriticalPreopState {
		add("Critical state", 1.0)
	}
	if in.DiabetesOnInsulin {
		add("Insulin-dependent DM", 0.3)
	}
	if in.NYHAClass >= 3 {
		add("NYHA III-IV", 0.4)
	}
	if in.CCSClass4Angina {
		add("CCS 4 angina", 0.3)
	}

	switch {
	case in.LVEF < 21:
		add("LVEF < 21%", 0.9)
	case in.LVEF < 31:
		add("LVEF 21-30%", 0.6)
	case in.LVEF < 51:
		add("LVEF 31-50%", 0.3)
	}

	if in.RecentMI {
		add("Recent MI", 0.4)
	}

	switch in.PulmonaryHypertension {
	case "severe":
		add("Severe PAH", 0.5)
	case "moderate":
		add("Moderate PAH", 0.25)
	}

	if in.SurgeryUrgency != "" && in.SurgeryUrgency != SURGERY_ELECTIVE {
		weights := map[SurgeryUrgency]float64{
			SURGERY_URGENT:    0.3,
			SURGERY_EMERGENCY: 0.8,
			SURGERY_SALVAGE:   1.5,
		}
		add("Surgery urgency", weights[in.SurgeryUrgency])
	}

	if in.ThoracicAortaSurgery {
		add("Thoracic aorta surgery", 0.5)
	}

	logOdds := baseline
	for _, c := range components {
		logOdds += c.Value
	}
	riskPct := 100 / (1 + math.Exp(-logOdds))

	var riskCategory, recommendation string
	switch {
	case riskPct < 4:
		riskCategory = "low"
		recommendation = "Low surgical risk. Surgical approach generally preferred if indicated."
	case riskPct < 8:
		riskCategory = "intermediate"
		recommendation = "Intermediate surgical risk. Decision should be made by Heart Team. " +
			"Consider TAVI for AS if eligible."
	default:
		riskCategory = "high"
		recommendation = "High surgical risk. Strong consideration for transcatheter approach if anatomically suitable. " +
			"Heart Team discussion essential."
	}

	interpretation := fmt.Sprintf(
		"EuroSCORE II = %.1f%%: Predicted risk of operative mortality. Risk category: %s",
		riskPct, strings.ToUpper(riskCategory))

	citation := domain.MustCitation("esc_vhd_2021", domain.CLASS_I, domain.LEVEL_B,
		domain.WithSection("5", "Risk stratification and choice of intervention"),
		domain.WithStudies("Nashef SA et al. Eur J Cardiothorac Surg 2012"),
	)

	return ScoreResult{
		ScoreName:      "EuroSCORE II",
		ScoreValue:     round1(riskPct),
		RiskCategory:   riskCategory,
		RiskPercentage: floatPtr(riskPct),
		Interpretation: interpretation,
		Components:     components,
		Recommendation: recommendation,
		Citation:       citation,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
