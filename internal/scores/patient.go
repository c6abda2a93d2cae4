package scores

import (
	"github.com/cardiocode-mcp-server/internal/domain"
)

// ForPatient calculates every score for which the patient record carries
// sufficient data, keyed by score identifier. Missing data means the score
// is simply skipped, never an error.
func ForPatient(p *domain.Patient) map[string]ScoreResult {
	results := make(map[string]ScoreResult)

	afPresent := p.AFType != "" || (p.ECG != nil && p.ECG.AFPresent)

	if afPresent && p.Age != nil && p.Sex != "" {
		hasCHF := p.HasDiagnosis("heart_failure")
		if lvef := p.LVEF(); lvef != nil && *lvef < 40 {
			hasCHF = true
		}
		results["cha2ds2_vasc"] = CHA2DS2VASc(CHA2DS2VAScInput{
			Age:                *p.Age,
			Sex:                p.Sex,
			HasCHF:             hasCHF,
			HasHypertension:    p.HasHypertension,
			HasStrokeTIATE:     p.HasPriorStrokeTIA,
			HasVascularDisease: p.HasVascularDisease,
			HasDiabetes:        p.HasDiabetes,
		})

		abnormalRenal := false
		if egfr := p.EGFR(); egfr != nil && *egfr < 50 {
			abnormalRenal = true
		}
		results["has_bled"] = HASBLED(HASBLEDInput{
			HasHypertension:       p.HasHypertension,
			AbnormalRenalFunction: abnormalRenal,
			AbnormalLiverFunction: p.HasLiverDisease,
			HasStroke:             p.HasPriorStrokeTIA,
			BleedingHistory:       p.HasPriorBleeding,
			AgeOver65:             *p.Age > 65,
			DrugsPredisposing:     p.IsOnMedication("aspirin") || p.IsOnMedication("nsaid"),
			AlcoholExcess:         p.AlcoholUse == "heavy",
		})
	}

	if p.NYHAClass != nil {
		results["nyha"] = NYHA(NYHAInput{
			SymptomsAtRest:               *p.NYHAClass == 4,
			SymptomsWithMinimalActivity:  *p.NYHAClass == 3,
			SymptomsWithOrdinaryActivity: *p.NYHAClass == 2,
		})
	}

	if p.Echo != nil && p.Echo.EEPrimeRatio != nil && p.Echo.RVSP != nil &&
		p.Age != nil && p.BMI() != nil {
		results["h2fpef"] = H2FPEF(H2FPEFInput{
			BMI:                *p.BMI(),
			Age:                *p.Age,
			EOverEPrime:        *p.Echo.EEPrimeRatio,
			PASP:               *p.Echo.RVSP,
			AtrialFibrillation: afPresent,
		})
	}

	return results
}
