package guidelines

import (
	"fmt"

	"github.com/cardiocode-mcp-server/internal/domain"
)

// HFrEFTreatment builds the guideline-directed medical therapy plan for
// HFrEF (LVEF <= 40%) per ESC HF 2021 section 11.1: the four pillars
// (ACEi/ARNI, beta-blocker, MRA, SGLT2i) adjusted for what the patient
// already takes and tolerates, plus diuretics, ivabradine, and
// hydralazine/nitrate where indicated.
func HFrEFTreatment(p *domain.Patient) *domain.RecommendationSet {
	set := domain.NewRecommendationSet("HFrEF Treatment Recommendations")
	set.Description = "ESC 2021 Guideline-Directed Medical Therapy for HFrEF (LVEF <= 40%)"
	set.PrimaryGuideline = "ESC HF 2021"
	if lvef := p.LVEF(); lvef != nil {
		set.PatientContext = fmt.Sprintf("LVEF %.0f%%", *lvef)
	}

	// Pillar 1: ACEi or ARNI
	onACEi := p.IsOnMedication("acei")
	onARB := p.IsOnMedication("arb")
	onARNI := p.IsOnMedication("arni")
	aceiContra := p.Contraindication("acei")

	switch {
	case !onARNI && !onACEi && !onARB:
		if aceiContra == "" {
			set.Add(domain.MustGuidelineRecommendation(
				"Start ARNI (sacubitril/valsartan) as first-line if tolerable, otherwise ACEi",
				"esc_hf_2021", domain.CLASS_I, domain.LEVEL_B,
				domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{
					Page:              3033,
					Section:           "11.1.1",
					Studies:           []string{"PARADIGM-HF", "PIONEER-HF"},
					Rationale:         "ARNI reduces mortality and HF hospitalizations vs ACEi. Can be started de novo in hospitalized patients.",
					Monitoring:        "Monitor BP, K+, creatinine within 1-2 weeks of initiation",
					Conditions:        []string{"SBP >= 100 mmHg", "eGFR >= 30 mL/min", "K+ < 5.4 mEq/L"},
					Contraindications: []string{"History of angioedema", "Pregnancy", "Bilateral renal artery stenosis"},
				}))
		} else {
			set.Add(domain.MustGuidelineRecommendation(
				fmt.Sprintf("ACEi/ARNI contraindicated: %s. Start ARB (candesartan or valsartan).", aceiContra),
				"esc_hf_2021", domain.CLASS_I, domain.LEVEL_A,
				domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{
					Section: "11.1.1",
					Studies: []string{"CHARM-Alternative", "Val-HeFT"},
				}))
		}
	case onACEi && !onARNI:
		set.Add(domain.MustGuidelineRecommendation(
			"Consider switching from ACEi to ARNI (sacubitril/valsartan) for additional mortality benefit",
			"esc_hf_2021", domain.CLASS_I, domain.LEVEL_B,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section:    "11.1.1",
				Studies:    []string{"PARADIGM-HF"},
				Rationale:  "ARNI superior to ACEi in PARADIGM-HF. Requires 36h washout from ACEi.",
				Conditions: []string{"Patient tolerating ACEi", "No history of angioedema"},
			}))
	}

	// Pillar 2: beta-blocker
	onBB := p.IsOnMedication("beta_blocker")
	bbContra := p.Contraindication("beta_blocker")

	switch {
	case !onBB && bbContra == "":
		set.Add(domain.MustGuidelineRecommendation(
			"Start evidence-based beta-blocker: bisoprolol, carvedilol, metoprolol succinate, or nebivolol",
			"esc_hf_2021", domain.CLASS_I, domain.LEVEL_A,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Page:              3034,
				Section:           "11.1.2",
				Studies:           []string{"CIBIS-II", "COPERNICUS", "MERIT-HF", "SENIORS"},
				Rationale:         "Beta-blockers reduce mortality by ~30% in HFrEF",
				Monitoring:        "Monitor HR and BP. Uptitrate every 2-4 weeks to target or maximally tolerated dose.",
				Conditions:        []string{"Clinically stable", "Not in acute decompensation"},
				Contraindications: []string{"Second/third degree AV block without pacemaker", "Sick sinus syndrome", "HR < 50 bpm"},
			}))
	case !onBB:
		set.Add(domain.MustGuidelineRecommendation(
			fmt.Sprintf("Beta-blocker contraindicated: %s", bbContra),
			"esc_hf_2021", domain.CLASS_I, domain.LEVEL_A,
			domain.CATEGORY_CONTRAINDICATION, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{Section: "11.1.2"}))
	default:
		set.Add(domain.MustGuidelineRecommendation(
			"Ensure beta-blocker is uptitrated to target or maximally tolerated dose",
			"esc_hf_2021", domain.CLASS_I, domain.LEVEL_A,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section:   "11.1.2",
				Rationale: "Mortality benefit is dose-dependent. Target doses: bisoprolol 10mg, carvedilol 25mg BID, metoprolol succinate 200mg",
			}))
	}

	// Pillar 3: MRA
	if !p.IsOnMedication("mra") {
		if mraContra := p.Contraindication("mra"); mraContra == "" {
			set.Add(domain.MustGuidelineRecommendation(
				"Start MRA: spironolactone 25-50mg or eplerenone 25-50mg daily",
				"esc_hf_2021", domain.CLASS_I, domain.LEVEL_A,
				domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{
					Page:              3035,
					Section:           "11.1.3",
					Studies:           []string{"RALES", "EMPHASIS-HF"},
					Rationale:         "MRA reduces mortality and HF hospitalization in symptomatic HFrEF",
					Monitoring:        "Check K+ and creatinine within 1 week, then at 1, 2, 3 months, then every 4 months",
					Conditions:        []string{"eGFR >= 30 mL/min", "K+ < 5.0 mEq/L"},
					Contraindications: []string{"eGFR < 30 mL/min", "K+ > 5.0 mEq/L", "Severe hepatic impairment"},
				}))
		} else {
			set.Add(domain.MustGuidelineRecommendation(
				fmt.Sprintf("MRA relatively contraindicated: %s. Consider low-dose with close monitoring if benefit outweighs risk.", mraContra),
				"esc_hf_2021", domain.CLASS_I, domain.LEVEL_A,
				domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{Section: "11.1.3"}))
		}
	}

	// Pillar 4: SGLT2 inhibitor
	if !p.IsOnMedication("sglt2i") {
		if sglt2Contra := p.Contraindication("sglt2i"); sglt2Contra == "" {
			set.Add(domain.MustGuidelineRecommendation(
				"Start SGLT2 inhibitor: dapagliflozin 10mg or empagliflozin 10mg daily",
				"esc_hf_2021", domain.CLASS_I, domain.LEVEL_A,
				domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{
					Page:              3036,
					Section:           "11.1.4",
					Studies:           []string{"DAPA-HF", "EMPEROR-Reduced"},
					Rationale:         "SGLT2i reduce CV death and HF hospitalization regardless of diabetes status. NNT ~21 over 18 months.",
					Conditions:        []string{"eGFR >= 20 mL/min (check latest labeling)"},
					Contraindications: []string{"Type 1 diabetes", "History of DKA"},
				}))
		} else {
			set.Add(domain.MustGuidelineRecommendation(
				fmt.Sprintf("SGLT2i contraindicated: %s", sglt2Contra),
				"esc_hf_2021", domain.CLASS_I, domain.LEVEL_A,
				domain.CATEGORY_CONTRAINDICATION, domain.URGENCY_ROUTINE,
				&domain.GuidelineRecOptions{Section: "11.1.4"}))
		}
	}

	if p.NYHAClass != nil && *p.NYHAClass >= 2 {
		set.Add(domain.MustGuidelineRecommendation(
			"Loop diuretic (furosemide, bumetanide, or torsemide) for signs/symptoms of congestion",
			"esc_hf_2021", domain.CLASS_I, domain.LEVEL_C,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section:    "11.4",
				Rationale:  "Diuretics relieve congestion but should be used at lowest effective dose",
				Monitoring: "Monitor weight, symptoms, renal function, electrolytes",
			}))
	}

	if p.Vitals != nil && p.Vitals.HeartRate != nil && *p.Vitals.HeartRate >= 70 && onBB {
		set.Add(domain.MustGuidelineRecommendation(
			"Consider ivabradine if HR >= 70 bpm despite maximally tolerated beta-blocker dose",
			"esc_hf_2021", domain.CLASS_IIA, domain.LEVEL_B,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section:    "11.1.6",
				Studies:    []string{"SHIFT"},
				Conditions: []string{"Sinus rhythm", "Beta-blocker at max tolerated dose", "LVEF <= 35%"},
			}))
	}

	if aceiContra != "" {
		set.Add(domain.MustGuidelineRecommendation(
			"Consider hydralazine/isosorbide dinitrate combination if ACEi/ARB/ARNI not tolerated",
			"esc_hf_2021", domain.CLASS_IIB, domain.LEVEL_B,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{
				Section: "11.1.7",
				Studies: []string{"V-HeFT I", "V-HeFT II"},
			}))
	}

	return set
}

// HFmrEFTreatment builds the treatment plan for HFmrEF (LVEF 41-49%)
// per ESC HF 2021 section 11.2. Evidence is less robust than HFrEF;
// most recommendations are Class IIb extrapolations.
func HFmrEFTreatment(p *domain.Patient) *domain.RecommendationSet {
	set := domain.NewRecommendationSet("HFmrEF Treatment Recommendations")
	set.Description = "ESC 2021 Treatment for HFmrEF (LVEF 41-49%). Evidence less robust than HFrEF."
	set.PrimaryGuideline = "ESC HF 2021"
	if lvef := p.LVEF(); lvef != nil {
		set.PatientContext = fmt.Sprintf("LVEF %.0f%%", *lvef)
	}

	set.Add(domain.MustGuidelineRecommendation(
		"Diuretics for signs/symptoms of congestion",
		"esc_hf_2021", domain.CLASS_I, domain.LEVEL_C,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{Section: "11.2"}))

	set.Add(domain.MustGuidelineRecommendation(
		"ACEi, ARB, or ARNI may be considered to reduce HF hospitalization and death",
		"esc_hf_2021", domain.CLASS_IIB, domain.LEVEL_C,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{
			Section:   "11.2",
			Rationale: "Subgroup analyses suggest benefit, but no dedicated HFmrEF trials",
		}))

	set.Add(domain.MustGuidelineRecommendation(
		"Beta-blocker may be considered",
		"esc_hf_2021", domain.CLASS_IIB, domain.LEVEL_C,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{Section: "11.2"}))

	set.Add(domain.MustGuidelineRecommendation(
		"MRA may be considered",
		"esc_hf_2021", domain.CLASS_IIB, domain.LEVEL_C,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{
			Section: "11.2",
			Studies: []string{"TOPCAT (subgroup)"},
		}))

	set.Add(domain.MustGuidelineRecommendation(
		"SGLT2 inhibitor (dapagliflozin or empagliflozin) to reduce HF hospitalization and CV death",
		"esc_hf_2021", domain.CLASS_IIA, domain.LEVEL_B,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{
			Section:   "11.2",
			Studies:   []string{"EMPEROR-Preserved (subgroup)", "DELIVER (subgroup)"},
			Rationale: "SGLT2i showed benefit across EF spectrum including HFmrEF",
		}))

	return set
}

// HFpEFTreatment builds the treatment plan for HFpEF (LVEF >= 50%) per
// ESC HF 2021 section 11.3. Focus is on congestion relief, comorbidity
// management, and SGLT2 inhibition.
func HFpEFTreatment(p *domain.Patient) *domain.RecommendationSet {
	set := domain.NewRecommendationSet("HFpEF Treatment Recommendations")
	set.Description = "ESC 2021 Treatment for HFpEF (LVEF >= 50%). Focus on congestion, comorbidities, and underlying causes."
	set.PrimaryGuideline = "ESC HF 2021"
	if lvef := p.LVEF(); lvef != nil {
		set.PatientContext = fmt.Sprintf("LVEF %.0f%%", *lvef)
	}

	set.Add(domain.MustGuidelineRecommendation(
		"Diuretics to relieve signs/symptoms of congestion",
		"esc_hf_2021", domain.CLASS_I, domain.LEVEL_C,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{Section: "11.3"}))

	set.Add(domain.MustGuidelineRecommendation(
		"Screen for and treat underlying causes and comorbidities (HTN, CAD, AF, DM, obesity, etc.)",
		"esc_hf_2021", domain.CLASS_I, domain.LEVEL_C,
		domain.CATEGORY_MONITORING, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{Section: "11.3"}))

	set.Add(domain.MustGuidelineRecommendation(
		"SGLT2 inhibitor (empagliflozin or dapagliflozin) to reduce HF hospitalization",
		"esc_hf_2021", domain.CLASS_IIA, domain.LEVEL_B,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{
			Section:   "11.3",
			Studies:   []string{"EMPEROR-Preserved", "DELIVER"},
			Rationale: "SGLT2i reduce HF hospitalization in HFpEF. First therapy with proven benefit in this population.",
		}))

	if p.AFType != "" || (p.ECG != nil && p.ECG.AFPresent) {
		set.Add(domain.MustGuidelineRecommendation(
			"Anticoagulation for AF per stroke risk assessment. Rate/rhythm control per AF guidelines.",
			"esc_hf_2021", domain.CLASS_I, domain.LEVEL_A,
			domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
			&domain.GuidelineRecOptions{Section: "11.3"}))
	}

	return set
}

// DiureticRecommendations covers loop diuretic management for any HF
// phenotype per ESC HF 2021 section 11.4.
func DiureticRecommendations(p *domain.Patient) *domain.RecommendationSet {
	set := domain.NewRecommendationSet("Diuretic Therapy Recommendations")
	set.Description = "Loop diuretic management for HF"
	set.PrimaryGuideline = "ESC HF 2021"

	set.Add(domain.MustGuidelineRecommendation(
		"Loop diuretics are recommended for HF patients with signs/symptoms of congestion to improve symptoms and exercise capacity",
		"esc_hf_2021", domain.CLASS_I, domain.LEVEL_C,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{
			Section:    "11.4",
			Monitoring: "Daily weights, renal function, electrolytes",
		}))

	set.Add(domain.MustGuidelineRecommendation(
		"Use lowest diuretic dose needed to maintain euvolemia. Adjust based on clinical status.",
		"esc_hf_2021", domain.CLASS_I, domain.LEVEL_C,
		domain.CATEGORY_MONITORING, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{Section: "11.4"}))

	set.Add(domain.MustGuidelineRecommendation(
		"Consider adding thiazide (metolazone) for diuretic resistance. Monitor closely for hypokalemia and hyponatremia.",
		"esc_hf_2021", domain.CLASS_IIA, domain.LEVEL_B,
		domain.CATEGORY_PHARMACOTHERAPY, domain.URGENCY_ROUTINE,
		&domain.GuidelineRecOptions{
			Section:    "11.4",
			Conditions: []string{"Inadequate response to high-dose loop diuretic"},
		}))

	return set
}

// GDMTForPhenotype dispatches to the phenotype-specific treatment plan
// based on the patient's LVEF. Without an LVEF the only recommendation
// is to obtain one.
func GDMTForPhenotype(p *domain.Patient) *domain.RecommendationSet {
	phenotype, ok := p.HFPhenotypeFromLVEF()
	if !ok {
		set := domain.NewRecommendationSet("GDMT Optimization")
		set.Description = "Unable to provide specific recommendations without LVEF"
		set.Add(domain.MustGuidelineRecommendation(
			"Obtain echocardiogram to determine LVEF and HF phenotype",
			"esc_hf_2021", domain.CLASS_I, domain.LEVEL_C,
			domain.CATEGORY_DIAGNOSTIC, domain.URGENCY_SOON,
			&domain.GuidelineRecOptions{Section: "4.1"}))
		return set
	}

	var set *domain.RecommendationSet
	switch phenotype {
	case domain.HFREF:
		set = HFrEFTreatment(p)
	case domain.HFMREF:
		set = HFmrEFTreatment(p)
	default:
		set = HFpEFTreatment(p)
	}

	set.Title = fmt.Sprintf("GDMT Optimization for %s", phenotype)
	set.ClinicalQuestion = "How should we optimize guideline-directed medical therapy?"
	return set
}
