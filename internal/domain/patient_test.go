package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestPatient_HasDiagnosis(t *testing.T) {
	p := &Patient{
		Diagnoses: []Diagnosis{
			{Name: "Chronic Heart Failure", ICD10Code: "I50.9", IsActive: true},
			{Name: "Atrial Fibrillation", ICD10Code: "I48.91", IsActive: true},
			{Name: "Pneumonia", ICD10Code: "J18.9", IsActive: false},
		},
	}

	assert.True(t, p.HasDiagnosis("heart failure"), "case-insensitive name substring")
	assert.True(t, p.HasDiagnosis("HEART FAILURE"))
	assert.True(t, p.HasDiagnosis("I48"), "ICD-10 prefix match")
	assert.False(t, p.HasDiagnosis("pneumonia"), "inactive diagnoses are ignored")
	assert.False(t, p.HasDiagnosis("diabetes"))
}

func TestPatient_IsOnMedication(t *testing.T) {
	p := &Patient{
		Medications: []Medication{
			{Name: "Apixaban 5mg", IsActive: true},
			{Name: "Entresto", GenericName: "sacubitril/valsartan", IsActive: true},
			{Name: "Metoprolol", IsActive: false},
		},
	}

	assert.True(t, p.IsOnMedication("apixaban"), "name substring")
	assert.True(t, p.IsOnMedication("anticoagulant_doac"), "drug class lookup")
	assert.True(t, p.IsOnMedication("sacubitril"), "generic name substring")
	assert.True(t, p.IsOnMedication("arni"), "class resolved from generic-bearing name")
	assert.False(t, p.IsOnMedication("beta_blocker"), "inactive medications are ignored")
	assert.False(t, p.IsOnMedication("statin"))
}

func TestMedication_ResolveDrugClass(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Warfarin 5mg daily", "anticoagulant_vka"},
		{"Empagliflozin", "sglt2i"},
		{"Carvedilol 25mg", "beta_blocker"},
		{"Unknown Drug", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Medication{Name: tt.name}
			assert.Equal(t, tt.expected, m.ResolveDrugClass())
		})
	}
}

func TestPatient_DerivedValues(t *testing.T) {
	p := &Patient{
		WeightKg: fptr(80),
		HeightCm: fptr(180),
	}

	bmi := p.BMI()
	require.NotNil(t, bmi)
	assert.InDelta(t, 24.7, *bmi, 0.01)

	bsa := p.BSA()
	require.NotNil(t, bsa)
	assert.InDelta(t, 2.0, *bsa, 0.01, "Mosteller BSA for 80kg/180cm")

	assert.Nil(t, (&Patient{}).BMI(), "missing anthropometrics yield nil, not zero")
}

func TestPatient_HFPhenotypeFromLVEF(t *testing.T) {
	tests := []struct {
		lvef     float64
		expected HFPhenotype
	}{
		{25, HFREF},
		{40, HFREF},
		{41, HFMREF},
		{49, HFMREF},
		{50, HFPEF},
		{65, HFPEF},
	}
	for _, tt := range tests {
		p := &Patient{LVEFValue: fptr(tt.lvef)}
		got, ok := p.HFPhenotypeFromLVEF()
		require.True(t, ok)
		assert.Equal(t, tt.expected, got, "LVEF %v", tt.lvef)
	}

	_, ok := (&Patient{}).HFPhenotypeFromLVEF()
	assert.False(t, ok, "no LVEF recorded")
}

func TestPatient_LVEFFallsBackToEcho(t *testing.T) {
	p := &Patient{Echo: &EchoFindings{LVEF: fptr(35)}}
	lvef := p.LVEF()
	require.NotNil(t, lvef)
	assert.Equal(t, 35.0, *lvef)
}

func TestPatient_Contraindication(t *testing.T) {
	t.Run("hyperkalemia blocks ACEI", func(t *testing.T) {
		p := &Patient{Labs: &LabValues{Potassium: fptr(5.8)}}
		assert.Contains(t, p.Contraindication("acei"), "Hyperkalemia")
	})

	t.Run("bradycardia blocks beta blocker", func(t *testing.T) {
		p := &Patient{Vitals: &VitalSigns{HeartRate: iptr(42)}}
		assert.Contains(t, p.Contraindication("beta_blocker"), "Bradycardia")
	})

	t.Run("mechanical valve blocks DOAC", func(t *testing.T) {
		p := &Patient{Diagnoses: []Diagnosis{{Name: "mechanical_valve replacement", IsActive: true}}}
		assert.Contains(t, p.Contraindication("doac"), "Mechanical heart valve")
	})

	t.Run("no contraindication", func(t *testing.T) {
		p := &Patient{}
		assert.Empty(t, p.Contraindication("statin"))
	})
}

func TestVitalSigns_Derived(t *testing.T) {
	v := &VitalSigns{SystolicBP: iptr(120), DiastolicBP: iptr(80)}

	m := v.MeanArterialPressure()
	require.NotNil(t, m)
	assert.InDelta(t, 93.3, *m, 0.05)

	pp := v.PulsePressure()
	require.NotNil(t, pp)
	assert.Equal(t, 40, *pp)
}

func TestEchoFindings_LVDysfunctionCategory(t *testing.T) {
	assert.Equal(t, "reduced", (&EchoFindings{LVEF: fptr(30)}).LVDysfunctionCategory())
	assert.Equal(t, "mildly_reduced", (&EchoFindings{LVEF: fptr(45)}).LVDysfunctionCategory())
	assert.Equal(t, "preserved", (&EchoFindings{LVEF: fptr(55)}).LVDysfunctionCategory())
	assert.Equal(t, "", (&EchoFindings{}).LVDysfunctionCategory())
}
