package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Sex is the patient's biological sex as recorded for risk scoring
type Sex string

const (
	SEX_MALE   Sex = "male"
	SEX_FEMALE Sex = "female"
)

// AFType represents the temporal pattern of atrial fibrillation
type AFType string

const (
	AF_PAROXYSMAL      AFType = "paroxysmal"
	AF_PERSISTENT      AFType = "persistent"
	AF_LONG_PERSISTENT AFType = "long_standing_persistent"
	AF_PERMANENT       AFType = "permanent"
)

// DrugClasses maps a drug-class key to the generic names belonging to it.
// Process-wide immutable reference data; shared read-only by all rule
// functions. Do not mutate.
var DrugClasses = map[string][]string{
	"acei":                     {"lisinopril", "enalapril", "ramipril", "perindopril", "captopril", "quinapril", "benazepril", "fosinopril", "trandolapril"},
	"arb":                      {"losartan", "valsartan", "candesartan", "irbesartan", "olmesartan", "telmisartan", "azilsartan"},
	"arni":                     {"sacubitril/valsartan", "entresto"},
	"beta_blocker":             {"metoprolol", "carvedilol", "bisoprolol", "nebivolol", "atenolol", "propranolol", "nadolol", "labetalol"},
	"mra":                      {"spironolactone", "eplerenone", "finerenone"},
	"sglt2i":                   {"empagliflozin", "dapagliflozin", "canagliflozin", "ertugliflozin", "sotagliflozin"},
	"loop_diuretic":            {"furosemide", "bumetanide", "torsemide", "ethacrynic acid"},
	"thiazide":                 {"hydrochlorothiazide", "chlorthalidone", "indapamide", "metolazone"},
	"ccb_dihydropyridine":      {"amlodipine", "nifedipine", "felodipine", "nicardipine", "clevidipine"},
	"ccb_non_dihydropyridine":  {"diltiazem", "verapamil"},
	"nitrate":                  {"isosorbide mononitrate", "isosorbide dinitrate", "nitroglycerin"},
	"anticoagulant_doac":       {"apixaban", "rivaroxaban", "edoxaban", "dabigatran"},
	"anticoagulant_vka":        {"warfarin", "acenocoumarol", "phenprocoumon"},
	"antiplatelet":             {"aspirin", "clopidogrel", "prasugrel", "ticagrelor", "cangrelor"},
	"statin":                   {"atorvastatin", "rosuvastatin", "simvastatin", "pravastatin", "pitavastatin", "fluvastatin"},
	"ezetimibe":                {"ezetimibe"},
	"pcsk9i":                   {"evolocumab", "alirocumab", "inclisiran"},
	"antiarrhythmic_class_i":   {"flecainide", "propafenone", "quinidine", "procainamide", "disopyramide", "mexiletine", "lidocaine"},
	"antiarrhythmic_class_iii": {"amiodarone", "sotalol", "dofetilide", "dronedarone", "ibutilide"},
	"digoxin":                  {"digoxin"},
	"ivabradine":               {"ivabradine"},
	"hydralazine":              {"hydralazine"},
	"inotrope":                 {"dobutamine", "dopamine", "milrinone", "levosimendan"},
	"vasopressor":              {"norepinephrine", "epinephrine", "vasopressin", "phenylephrine"},
}

// CommonDiagnoses maps shorthand diagnosis keys to ICD-10 codes.
// Immutable reference data.
var CommonDiagnoses = map[string]string{
	"heart_failure":           "I50.9",
	"hfref":                   "I50.2",
	"hfpef":                   "I50.3",
	"hfmref":                  "I50.4",
	"atrial_fibrillation":     "I48.91",
	"atrial_flutter":          "I48.92",
	"hypertension":            "I10",
	"coronary_artery_disease": "I25.10",
	"nstemi":                  "I21.4",
	"stemi":                   "I21.3",
	"unstable_angina":         "I20.0",
	"stable_angina":           "I20.9",
	"aortic_stenosis":         "I35.0",
	"aortic_regurgitation":    "I35.1",
	"mitral_regurgitation":    "I34.0",
	"mitral_stenosis":         "I34.2",
	"pulmonary_hypertension":  "I27.0",
	"ventricular_tachycardia": "I47.2",
	"type_2_diabetes":         "E11.9",
	"ckd_stage_3":             "N18.3",
	"ckd_stage_4":             "N18.4",
	"ckd_stage_5":             "N18.5",
	"stroke":                  "I63.9",
	"tia":                     "G45.9",
	"peripheral_artery_disease": "I73.9",
	"dyslipidemia":            "E78.5",
	"obesity":                 "E66.9",
}

// VitalSigns is a single-point-in-time vital signs measurement
type VitalSigns struct {
	HeartRate        *int       `json:"heart_rate,omitempty"`        // bpm
	SystolicBP       *int       `json:"systolic_bp,omitempty"`       // mmHg
	DiastolicBP      *int       `json:"diastolic_bp,omitempty"`      // mmHg
	RespiratoryRate  *int       `json:"respiratory_rate,omitempty"`  // breaths/min
	OxygenSaturation *float64   `json:"oxygen_saturation,omitempty"` // SpO2 %
	Temperature      *float64   `json:"temperature,omitempty"`       // Celsius
	Weight           *float64   `json:"weight,omitempty"`            // kg
	Height           *float64   `json:"height,omitempty"`            // cm
	MeasuredAt       *time.Time `json:"measured_at,omitempty"`
}

// BMI returns body mass index when height and weight are available
func (v *VitalSigns) BMI() *float64 {
	if v.Weight == nil || v.Height == nil || *v.Height <= 0 {
		return nil
	}
	hm := *v.Height / 100
	bmi := round1(*v.Weight / (hm * hm))
	return &bmi
}

// MeanArterialPressure returns MAP when both blood pressures are available
func (v *VitalSigns) MeanArterialPressure() *float64 {
	if v.SystolicBP == nil || v.DiastolicBP == nil {
		return nil
	}
	m := round1(float64(*v.DiastolicBP) + float64(*v.SystolicBP-*v.DiastolicBP)/3)
	return &m
}

// PulsePressure returns systolic minus diastolic pressure
func (v *VitalSigns) PulsePressure() *int {
	if v.SystolicBP == nil || v.DiastolicBP == nil {
		return nil
	}
	pp := *v.SystolicBP - *v.DiastolicBP
	return &pp
}

// LabValues holds laboratory values relevant to cardiology.
// Reference ranges vary by lab; units as annotated.
type LabValues struct {
	Creatinine       *float64   `json:"creatinine,omitempty"`        // mg/dL
	CreatinineUmol   *float64   `json:"creatinine_umol,omitempty"`   // umol/L
	EGFR             *float64   `json:"egfr,omitempty"`              // mL/min/1.73m2
	BUN              *float64   `json:"bun,omitempty"`               // mg/dL
	Potassium        *float64   `json:"potassium,omitempty"`         // mEq/L
	Sodium           *float64   `json:"sodium,omitempty"`            // mEq/L
	TroponinT        *float64   `json:"troponin_t,omitempty"`        // ng/L (hs)
	TroponinI        *float64   `json:"troponin_i,omitempty"`        // ng/L (hs)
	BNP              *float64   `json:"bnp,omitempty"`               // pg/mL
	NTProBNP         *float64   `json:"nt_pro_bnp,omitempty"`        // pg/mL
	TotalCholesterol *float64   `json:"total_cholesterol,omitempty"` // mg/dL
	LDL              *float64   `json:"ldl,omitempty"`               // mg/dL
	HDL              *float64   `json:"hdl,omitempty"`               // mg/dL
	INR              *float64   `json:"inr,omitempty"`
	DDimer           *float64   `json:"d_dimer,omitempty"`         // ng/mL
	Hemoglobin       *float64   `json:"hemoglobin,omitempty"`      // g/dL
	Platelets        *int       `json:"platelets,omitempty"`       // x10^9/L
	Glucose          *float64   `json:"glucose,omitempty"`         // mg/dL
	HbA1c            *float64   `json:"hba1c,omitempty"`           // %
	AST              *float64   `json:"ast,omitempty"`             // U/L
	ALT              *float64   `json:"alt,omitempty"`             // U/L
	Albumin          *float64   `json:"albumin,omitempty"`         // g/dL
	Bilirubin        *float64   `json:"bilirubin,omitempty"`       // mg/dL
	Ferritin         *float64   `json:"ferritin,omitempty"`        // ng/mL
	TransferrinSat   *float64   `json:"transferrin_sat,omitempty"` // %
	CRP              *float64   `json:"crp,omitempty"`             // mg/L
	MeasuredAt       *time.Time `json:"measured_at,omitempty"`
}

// CreatinineUmolPerL converts creatinine from mg/dL when only that unit
// is recorded.
func (l *LabValues) CreatinineUmolPerL() *float64 {
	if l.Creatinine != nil {
		v := round1(*l.Creatinine * 88.4)
		return &v
	}
	return l.CreatinineUmol
}

// EchoFindings holds echocardiography measurements per ASE/EACVI conventions
type EchoFindings struct {
	LVEF                *float64   `json:"lvef,omitempty"`                 // %
	TAPSE               *float64   `json:"tapse,omitempty"`                // mm
	RVSP                *float64   `json:"rvsp,omitempty"`                 // mmHg
	RAPressure          *int       `json:"ra_pressure,omitempty"`          // mmHg
	RAArea              *float64   `json:"ra_area,omitempty"`              // cm2
	AorticValveArea     *float64   `json:"aortic_valve_area,omitempty"`    // cm2
	AorticMeanGradient  *float64   `json:"aortic_mean_gradient,omitempty"` // mmHg
	MitralValveArea     *float64   `json:"mitral_valve_area,omitempty"`    // cm2
	EEPrimeRatio        *float64   `json:"e_e_prime_ratio,omitempty"`      // E/e'
	PericardialEffusion string     `json:"pericardial_effusion,omitempty"` // none/trivial/small/moderate/large
	LAVolumeIndex       *float64   `json:"la_volume_index,omitempty"`      // mL/m2
	PASP                *float64   `json:"pasp,omitempty"`                 // mmHg
	StudyDate           *time.Time `json:"study_date,omitempty"`
}

// LVDysfunctionCategory buckets LVEF per the ESC heart failure phenotypes
func (e *EchoFindings) LVDysfunctionCategory() string {
	if e.LVEF == nil {
		return ""
	}
	switch {
	case *e.LVEF >= 50:
		return "preserved"
	case *e.LVEF >= 41:
		return "mildly_reduced"
	default:
		return "reduced"
	}
}

// ECGFindings holds electrocardiogram findings
type ECGFindings struct {
	HeartRate       *int     `json:"heart_rate,omitempty"`   // bpm
	QRSDuration     *int     `json:"qrs_duration,omitempty"` // ms
	QTc             *int     `json:"qtc,omitempty"`          // ms
	LBBB            bool     `json:"lbbb,omitempty"`
	RBBB            bool     `json:"rbbb,omitempty"`
	ThirdDegreeAVB  bool     `json:"third_degree_avb,omitempty"`
	SecondDegreeAVB string   `json:"second_degree_avb,omitempty"` // mobitz_1/mobitz_2
	AFPresent       bool     `json:"af_present,omitempty"`
	AFlutterPresent bool     `json:"aflutter_present,omitempty"`
	STElevation     []string `json:"st_elevation,omitempty"`
	STDepression    []string `json:"st_depression,omitempty"`
	TWaveInversion  []string `json:"t_wave_inversion,omitempty"`
}

// STDeviation reports whether any ST-segment deviation is recorded
func (e *ECGFindings) STDeviation() bool {
	return len(e.STElevation) > 0 || len(e.STDepression) > 0
}

// Diagnosis is a clinical diagnosis with optional ICD-10 mapping
type Diagnosis struct {
	Name          string     `json:"name"`
	ICD10Code     string     `json:"icd10_code,omitempty"`
	DiagnosedDate *time.Time `json:"diagnosed_date,omitempty"`
	IsActive      bool       `json:"is_active"`
	Severity      string     `json:"severity,omitempty"`
}

// Medication is a prescribed medication with classification
type Medication struct {
	Name        string `json:"name"`
	GenericName string `json:"generic_name,omitempty"`
	DrugClass   string `json:"drug_class,omitempty"`
	Dose        string `json:"dose,omitempty"`
	Frequency   string `json:"frequency,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// ResolveDrugClass determines the drug class from the medication name,
// falling back to the explicitly recorded class.
func (m *Medication) ResolveDrugClass() string {
	nameLower := strings.ToLower(m.Name)
	for class, drugs := range DrugClasses {
		for _, drug := range drugs {
			if strings.Contains(nameLower, drug) {
				return class
			}
		}
	}
	return m.DrugClass
}

// Allergy records a drug or substance allergy
type Allergy struct {
	Allergen string `json:"allergen"`
	Reaction string `json:"reaction,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// Procedure records a cardiac procedure or intervention
type Procedure struct {
	Name          string     `json:"name"`
	ProcedureDate *time.Time `json:"procedure_date,omitempty"`
	Indication    string     `json:"indication,omitempty"`
}

// Device records an implanted cardiac device
type Device struct {
	DeviceType  string     `json:"device_type"` // pacemaker/icd/crt_p/crt_d/loop_recorder
	ImplantDate *time.Time `json:"implant_date,omitempty"`
}

// Patient is the immutable per-call snapshot that calculators and rule
// functions read. The engine never mutates it.
type Patient struct {
	PatientID string   `json:"patient_id,omitempty"`
	Age       *int     `json:"age,omitempty"`
	Sex       Sex      `json:"sex,omitempty"`
	WeightKg  *float64 `json:"weight_kg,omitempty"`
	HeightCm  *float64 `json:"height_cm,omitempty"`

	Vitals *VitalSigns   `json:"vitals,omitempty"`
	Labs   *LabValues    `json:"labs,omitempty"`
	ECG    *ECGFindings  `json:"ecg,omitempty"`
	Echo   *EchoFindings `json:"echo,omitempty"`

	Diagnoses   []Diagnosis  `json:"diagnoses,omitempty"`
	Medications []Medication `json:"medications,omitempty"`
	Procedures  []Procedure  `json:"procedures,omitempty"`
	Devices     []Device     `json:"devices,omitempty"`
	Allergies   []Allergy    `json:"allergies,omitempty"`

	NYHAClass *NYHAClass `json:"nyha_class,omitempty"`

	HasDiabetes        bool   `json:"has_diabetes,omitempty"`
	HasHypertension    bool   `json:"has_hypertension,omitempty"`
	HasCKD             bool   `json:"has_ckd,omitempty"`
	HasCAD             bool   `json:"has_cad,omitempty"`
	HasPriorStrokeTIA  bool   `json:"has_prior_stroke_tia,omitempty"`
	HasPriorBleeding   bool   `json:"has_prior_bleeding,omitempty"`
	HasVascularDisease bool   `json:"has_vascular_disease,omitempty"`
	HasLiverDisease    bool   `json:"has_liver_disease,omitempty"`
	Smoker             string `json:"smoker,omitempty"`      // current/former/never
	AlcoholUse         string `json:"alcohol_use,omitempty"` // none/moderate/heavy

	AFType            AFType `json:"af_type,omitempty"`
	OnAnticoagulation bool   `json:"on_anticoagulation,omitempty"`

	// Convenience accessor; falls back to echo when unset
	LVEFValue *float64 `json:"lvef,omitempty"`

	CancerType          string   `json:"cancer_type,omitempty"`
	CancerTreatment     []string `json:"cancer_treatment,omitempty"`
	PriorChestRadiation bool     `json:"prior_chest_radiation,omitempty"`
}

// LVEF returns the recorded ejection fraction, preferring the explicit
// value over the echo measurement.
func (p *Patient) LVEF() *float64 {
	if p.LVEFValue != nil {
		return p.LVEFValue
	}
	if p.Echo != nil {
		return p.Echo.LVEF
	}
	return nil
}

// BMI returns body mass index from the top-level weight/height, falling
// back to the vitals measurement.
func (p *Patient) BMI() *float64 {
	w, h := p.WeightKg, p.HeightCm
	if (w == nil || h == nil) && p.Vitals != nil {
		if w == nil {
			w = p.Vitals.Weight
		}
		if h == nil {
			h = p.Vitals.Height
		}
	}
	if w == nil || h == nil || *h <= 0 {
		return nil
	}
	hm := *h / 100
	bmi := round1(*w / (hm * hm))
	return &bmi
}

// EGFR returns estimated GFR from labs when recorded
func (p *Patient) EGFR() *float64 {
	if p.Labs == nil {
		return nil
	}
	return p.Labs.EGFR
}

// BSA returns body surface area by the Mosteller formula
func (p *Patient) BSA() *float64 {
	if p.WeightKg == nil || p.HeightCm == nil {
		return nil
	}
	bsa := math.Round(math.Sqrt(*p.WeightKg**p.HeightCm/3600)*100) / 100
	return &bsa
}

// HasDiagnosis reports whether the patient carries an active diagnosis
// matching the key by case-insensitive substring against the diagnosis
// name or ICD-10 code.
func (p *Patient) HasDiagnosis(key string) bool {
	keyLower := strings.ToLower(key)
	for _, dx := range p.Diagnoses {
		if !dx.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(dx.Name), keyLower) {
			return true
		}
		if dx.ICD10Code != "" && strings.Contains(strings.ToLower(dx.ICD10Code), keyLower) {
			return true
		}
	}
	return false
}

// IsOnMedication reports whether the patient takes an active medication
// matching the name, generic name, or resolved drug class by
// case-insensitive substring.
func (p *Patient) IsOnMedication(nameOrClass string) bool {
	search := strings.ToLower(nameOrClass)
	for _, med := range p.Medications {
		if !med.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(med.Name), search) {
			return true
		}
		if med.GenericName != "" && strings.Contains(strings.ToLower(med.GenericName), search) {
			return true
		}
		if class := med.ResolveDrugClass(); class != "" && strings.Contains(class, search) {
			return true
		}
	}
	return false
}

// HasAllergy reports a recorded allergy matching the allergen substring
func (p *Patient) HasAllergy(allergen string) bool {
	allergenLower := strings.ToLower(allergen)
	for _, a := range p.Allergies {
		if strings.Contains(strings.ToLower(a.Allergen), allergenLower) {
			return true
		}
	}
	return false
}

// Contraindication returns the reason a drug or drug class is
// contraindicated for this patient, or "" when none applies.
func (p *Patient) Contraindication(drugOrClass string) string {
	drug := strings.ToLower(drugOrClass)

	for _, a := range p.Allergies {
		if strings.Contains(strings.ToLower(a.Allergen), drug) {
			return "Allergy: " + a.Allergen + " (" + a.Reaction + ")"
		}
	}

	switch drug {
	case "acei", "arb", "arni":
		if p.HasAllergy("angioedema") {
			return "History of angioedema"
		}
		if p.Labs != nil && p.Labs.Potassium != nil && *p.Labs.Potassium > 5.5 {
			return "Hyperkalemia (K+ = " + formatFloat(*p.Labs.Potassium) + ")"
		}
	case "beta_blocker":
		if p.Vitals != nil && p.Vitals.HeartRate != nil && *p.Vitals.HeartRate < 50 {
			return "Bradycardia (HR = " + formatInt(*p.Vitals.HeartRate) + ")"
		}
		if p.ECG != nil && p.ECG.SecondDegreeAVB == "mobitz_2" {
			return "Mobitz II AV block"
		}
		if p.ECG != nil && p.ECG.ThirdDegreeAVB {
			return "Third degree AV block"
		}
	case "mra", "spironolactone", "eplerenone":
		if p.Labs != nil && p.Labs.Potassium != nil && *p.Labs.Potassium > 5.0 {
			return "Hyperkalemia risk (K+ = " + formatFloat(*p.Labs.Potassium) + ")"
		}
		if p.Labs != nil && p.Labs.EGFR != nil && *p.Labs.EGFR < 30 {
			return "Severe CKD (eGFR = " + formatFloat(*p.Labs.EGFR) + ")"
		}
	case "doac", "anticoagulant":
		if p.HasDiagnosis("mechanical_valve") {
			return "Mechanical heart valve (requires warfarin)"
		}
		if p.Labs != nil && p.Labs.EGFR != nil && *p.Labs.EGFR < 15 {
			return "ESRD (eGFR = " + formatFloat(*p.Labs.EGFR) + ")"
		}
	case "sglt2i":
		if p.HasDiagnosis("type_1_diabetes") {
			return "Type 1 diabetes (DKA risk)"
		}
	}
	return ""
}

// ActiveMedicationsByClass returns all active medications resolving to
// the given drug class.
func (p *Patient) ActiveMedicationsByClass(class string) []Medication {
	classLower := strings.ToLower(class)
	var result []Medication
	for _, med := range p.Medications {
		if med.IsActive && med.ResolveDrugClass() == classLower {
			result = append(result, med)
		}
	}
	return result
}

// HFPhenotypeFromLVEF buckets the ejection fraction per the ESC 2021 HF
// guideline: HFrEF <=40, HFmrEF 41-49, HFpEF >=50.
func (p *Patient) HFPhenotypeFromLVEF() (HFPhenotype, bool) {
	lvef := p.LVEF()
	if lvef == nil {
		return "", false
	}
	switch {
	case *lvef <= 40:
		return HFREF, true
	case *lvef <= 49:
		return HFMREF, true
	default:
		return HFPEF, true
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}
