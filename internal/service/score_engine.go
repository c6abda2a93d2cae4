package service

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/cardiocode-mcp-server/internal/domain"
	"github.com/cardiocode-mcp-server/internal/scores"
)

// ScoreEngine resolves score names to their calculators. Calculators are
// pure functions; the engine adds the name registry, JSON parameter
// decoding, and logging around them.
type ScoreEngine struct {
	logger  *logrus.Logger
	names   []string
	entries map[string]scoreEntry
}

type scoreEntry struct {
	description string
	category    string
	run         func(json.RawMessage) (any, error)
}

// ScoreInfo describes one registered calculator for discovery listings.
type ScoreInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ScoreCalculation wraps a calculator result with the score it came from.
// Result is one of the scores package result types and marshals to JSON.
type ScoreCalculation struct {
	Score  string `json:"score"`
	Result any    `json:"result"`
}

type ddimerParams struct {
	Age            int `json:"age"`
	BaselineCutoff int `json:"baseline_cutoff"`
}

// NewScoreEngine creates a score engine with the full calculator roster
// registered.
func NewScoreEngine(logger *logrus.Logger) *ScoreEngine {
	e := &ScoreEngine{
		logger:  logger,
		entries: make(map[string]scoreEntry),
	}

	e.register("cha2ds2_vasc", "atrial_fibrillation",
		"CHA2DS2-VASc stroke risk in atrial fibrillation (sex-adjusted)",
		typed(scores.CHA2DS2VASc))
	e.register("has_bled", "atrial_fibrillation",
		"HAS-BLED major bleeding risk on anticoagulation",
		typed(scores.HASBLED))
	e.register("grace", "acute_coronary_syndromes",
		"GRACE 6-month mortality risk after ACS",
		typed(scores.GRACE))
	e.register("nyha", "heart_failure",
		"NYHA functional class from symptom burden",
		typed(scores.NYHA))
	e.register("maggic", "heart_failure",
		"MAGGIC integer score for mortality in chronic heart failure",
		typed(scores.MAGGIC))
	e.register("h2fpef", "heart_failure",
		"H2FPEF probability of HFpEF in unexplained dyspnea",
		typed(scores.H2FPEF))
	e.register("hf_phenotype", "heart_failure",
		"Heart failure phenotype classification by LVEF",
		typed(scores.ClassifyHFPhenotype))
	e.register("iron_deficiency", "heart_failure",
		"Iron deficiency assessment in heart failure (ferritin/TSAT criteria)",
		typed(scores.AssessIronDeficiency))
	e.register("euroscore_ii", "valvular_heart_disease",
		"EuroSCORE II predicted operative mortality for cardiac surgery",
		typed(scores.EuroSCOREII))
	e.register("pesi", "pulmonary_embolism",
		"PESI 30-day mortality class for acute pulmonary embolism",
		typed(scores.PESI))
	e.register("spesi", "pulmonary_embolism",
		"Simplified PESI for acute pulmonary embolism",
		typed(scores.SPESI))
	e.register("geneva", "pulmonary_embolism",
		"Revised Geneva pre-test probability of PE (original or simplified)",
		typed(scores.Geneva))
	e.register("wells_pe", "pulmonary_embolism",
		"Wells pre-test probability of PE",
		typed(scores.WellsPE))
	e.register("age_adjusted_ddimer", "pulmonary_embolism",
		"Age-adjusted D-dimer cutoff for patients over 50",
		func(raw json.RawMessage) (any, error) {
			var p ddimerParams
			if err := decodeParams(raw, &p); err != nil {
				return nil, err
			}
			return scores.AgeAdjustedDDimer(p.Age, p.BaselineCutoff), nil
		})
	e.register("pah_baseline_risk", "pulmonary_hypertension",
		"ESC/ERS three-strata PAH risk at baseline",
		typed(scores.PAHBaselineRisk))
	e.register("pah_followup_risk", "pulmonary_hypertension",
		"ESC/ERS four-strata PAH risk at follow-up",
		typed(scores.PAHFollowUpRisk))
	e.register("ph_hemodynamics", "pulmonary_hypertension",
		"Hemodynamic classification of pulmonary hypertension from RHC values",
		typed(scores.ClassifyPHHemodynamics))
	e.register("lmna_risk", "arrhythmias",
		"Five-year arrhythmic risk in LMNA cardiomyopathy",
		typed(scores.LMNARisk))
	e.register("lqts_risk", "arrhythmias",
		"Long QT syndrome risk stratification with genotype-specific advice",
		typed(scores.LQTSRisk))
	e.register("brugada_risk", "arrhythmias",
		"Sudden death risk stratification in Brugada syndrome",
		typed(scores.BrugadaRisk))
	e.register("abi", "vascular",
		"Ankle-brachial index with PAD severity grading",
		typed(scores.CalculateABI))

	return e
}

// typed adapts a calculator over input type I into the engine's raw-JSON
// calling convention.
func typed[I, R any](calc func(I) R) func(json.RawMessage) (any, error) {
	return func(raw json.RawMessage) (any, error) {
		var in I
		if err := decodeParams(raw, &in); err != nil {
			return nil, err
		}
		return calc(in), nil
	}
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid score parameters: %w", err)
	}
	return nil
}

func (e *ScoreEngine) register(name, category, description string, run func(json.RawMessage) (any, error)) {
	e.names = append(e.names, name)
	e.entries[name] = scoreEntry{description: description, category: category, run: run}
}

// ListScores returns the registered calculators in registration order.
func (e *ScoreEngine) ListScores() []ScoreInfo {
	infos := make([]ScoreInfo, 0, len(e.names))
	for _, name := range e.names {
		entry := e.entries[name]
		infos = append(infos, ScoreInfo{
			Name:        name,
			Description: entry.description,
			Category:    entry.category,
		})
	}
	return infos
}

// ScoreNames returns the registered score names sorted alphabetically,
// for error messages and discovery endpoints.
func (e *ScoreEngine) ScoreNames() []string {
	names := make([]string, len(e.names))
	copy(names, e.names)
	sort.Strings(names)
	return names
}

// Has reports whether a calculator is registered under name.
func (e *ScoreEngine) Has(name string) bool {
	_, ok := e.entries[name]
	return ok
}

// Calculate runs the named calculator against JSON-encoded parameters.
// Missing parameters take their zero values; calculators handle clinical
// defaults themselves. Unknown names return domain.ErrUnknownScore.
func (e *ScoreEngine) Calculate(name string, params json.RawMessage) (*ScoreCalculation, error) {
	entry, ok := e.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownScore, name)
	}

	result, err := entry.run(params)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"score": name,
			"error": err.Error(),
		}).Warn("Score calculation rejected parameters")
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"score":    name,
		"category": entry.category,
	}).Debug("Score calculated")

	return &ScoreCalculation{Score: name, Result: result}, nil
}

// CalculateForPatient derives every score computable from a patient
// record's structured fields.
func (e *ScoreEngine) CalculateForPatient(p *domain.Patient) map[string]scores.ScoreResult {
	results := scores.ForPatient(p)
	e.logger.WithFields(logrus.Fields{
		"patient_id": p.PatientID,
		"scores":     len(results),
	}).Debug("Calculated patient-derived scores")
	return results
}
