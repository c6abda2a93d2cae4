package scores

import (
	"fmt"
	"math"
)

// ABIInput carries the systolic pressures for ankle-brachial index
// calculation. BrachialSystolic is the higher arm pressure.
type ABIInput struct {
	AnkleSystolicRight *int `json:"ankle_systolic_right,omitempty"` // mmHg
	AnkleSystolicLeft  *int `json:"ankle_systolic_left,omitempty"`  // mmHg
	BrachialSystolic   int  `json:"brachial_systolic"`              // mmHg
}

// ABIResult is the ankle-brachial index with its PAD interpretation.
// Interpretation uses the lower of the two sides.
type ABIResult struct {
	ABIRight        *float64 `json:"abi_right,omitempty"`
	ABILeft         *float64 `json:"abi_left,omitempty"`
	Interpretation  string   `json:"interpretation"`
	PADPresent      bool     `json:"pad_present"`
	Severity        string   `json:"severity,omitempty"`
	Recommendations []string `json:"recommendations"`
}

// CalculateABI computes the ankle-brachial index for each side and grades
// PAD severity: >1.40 non-compressible, >=1.00 normal, >=0.91 borderline,
// then mild-moderate, moderate-severe, severe, and critical below 0.40.
// A non-positive brachial pressure yields an invalid-measurement result
// rather than an error.
func CalculateABI(in ABIInput) ABIResult {
	if in.BrachialSystolic <= 0 {
		return ABIResult{
			Interpretation:  "Invalid brachial pressure",
			Recommendations: []string{"Repeat measurement with valid brachial pressure"},
		}
	}

	ratio := func(ankle *int) *float64 {
		if ankle == nil || *ankle == 0 {
			return nil
		}
		v := math.Round(float64(*ankle)/float64(in.BrachialSystolic)*100) / 100
		return &v
	}

	abiRight := ratio(in.AnkleSystolicRight)
	abiLeft := ratio(in.AnkleSystolicLeft)

	if abiRight == nil && abiLeft == nil {
		return ABIResult{
			Interpretation:  "No valid ABI calculated",
			Recommendations: []string{"Measure ankle systolic pressures"},
		}
	}

	minABI := math.Inf(1)
	for _, v := range []*float64{abiRight, abiLeft} {
		if v != nil && *v < minABI {
			minABI = *v
		}
	}

	var (
		interpretation  string
		severity        string
		padPresent      bool
		recommendations []string
	)

	switch {
	case minABI > 1.40:
		interpretation = fmt.Sprintf("ABI %s: Non-compressible arteries (medial calcification)", formatNumber(minABI))
		severity = "non_compressible"
		recommendations = []string{
			"ABI unreliable due to calcification",
			"Use toe-brachial index (TBI) or other modalities",
			"Consider TBI <0.70 as abnormal",
		}
	case minABI >= 1.00:
		interpretation = fmt.Sprintf("ABI %s: Normal", formatNumber(minABI))
		severity = "normal"
		recommendations = []string{
			"No PAD by ABI criteria",
			"If symptoms present, consider exercise ABI or other testing",
		}
	case minABI >= 0.91:
		interpretation = fmt.Sprintf("ABI %s: Borderline", formatNumber(minABI))
		severity = "borderline"
		recommendations = []string{
			"Borderline ABI - consider exercise ABI",
			"Assess CV risk factors",
		}
	case minABI >= 0.70:
		interpretation = fmt.Sprintf("ABI %s: Mild-moderate PAD", formatNumber(minABI))
		severity = "mild_moderate"
		padPresent = true
		recommendations = []string{
			"PAD confirmed",
			"Cardiovascular risk modification essential",
			"Supervised exercise therapy",
			"Antiplatelet therapy",
			"Statin therapy",
		}
	case minABI >= 0.50:
		interpretation = fmt.Sprintf("ABI %s: Moderate-severe PAD", formatNumber(minABI))
		severity = "moderate_severe"
		padPresent = true
		recommendations = []string{
			"Significant PAD",
			"Vascular specialist referral",
			"Aggressive risk factor modification",
			"Consider revascularization if symptomatic",
		}
	case minABI >= 0.40:
		interpretation = fmt.Sprintf("ABI %s: Severe PAD", formatNumber(minABI))
		severity = "severe"
		padPresent = true
		recommendations = []string{
			"Severe PAD - high risk of CLI",
			"Urgent vascular assessment",
			"Revascularization often required",
		}
	default:
		interpretation = fmt.Sprintf("ABI %s: Critical limb ischemia likely", formatNumber(minABI))
		severity = "critical"
		padPresent = true
		recommendations = []string{
			"Critical limb ischemia",
			"Emergency vascular referral",
			"Limb salvage intervention needed",
		}
	}

	return ABIResult{
		ABIRight:        abiRight,
		ABILeft:         abiLeft,
		Interpretation:  interpretation,
		PADPresent:      padPresent,
		Severity:        severity,
		Recommendations: recommendations,
	}
}
