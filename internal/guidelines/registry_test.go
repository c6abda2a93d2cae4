package guidelines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardiocode-mcp-server/internal/domain"
)

func iptr(v int) *int         { return &v }
func fptr(v float64) *float64 { return &v }

func TestFamilyGuidelineKey(t *testing.T) {
	tests := []struct {
		family Family
		key    string
	}{
		{FAMILY_HEART_FAILURE, "esc_hf_2021"},
		{FAMILY_ATRIAL_FIBRILLATION, "esc_af_2020"},
		{FAMILY_ACS, "esc_acs_2020"},
		{FAMILY_VHD, "esc_vhd_2021"},
		{FAMILY_PULMONARY_HTN, "esc_ph_2022"},
		{FAMILY_ARRHYTHMIA, "esc_va_scd_2022"},
		{FAMILY_CARDIO_ONCOLOGY, "esc_cardio_onc_2022"},
		{Family("unknown"), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.key, tt.family.GuidelineKey())
	}
}

func TestFamilyKeysResolveInRegistry(t *testing.T) {
	for _, f := range Families() {
		_, err := domain.NewCitation(f.GuidelineKey(), domain.CLASS_I, domain.LEVEL_A)
		assert.NoError(t, err, "family %s", f)
	}
}

func TestRelevantFamiliesByKeyword(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []Family
	}{
		{
			name:     "anticoagulation question",
			question: "Should we start anticoagulation?",
			want:     []Family{FAMILY_ATRIAL_FIBRILLATION},
		},
		{
			name:     "nstemi question",
			question: "NSTEMI with rising troponin",
			want:     []Family{FAMILY_ACS},
		},
		{
			name:     "two families in fixed order",
			question: "heart failure and atrial fibrillation management",
			want:     []Family{FAMILY_HEART_FAILURE, FAMILY_ATRIAL_FIBRILLATION},
		},
		{
			name:     "device question",
			question: "Does this patient need an ICD?",
			want:     []Family{FAMILY_ARRHYTHMIA},
		},
		{
			name:     "valve question",
			question: "Severe aortic stenosis, candidate for TAVI?",
			want:     []Family{FAMILY_VHD},
		},
		{
			name:     "case insensitive",
			question: "CHEST PAIN workup",
			want:     []Family{FAMILY_ACS},
		},
		{
			name:     "no keyword match",
			question: "statin dosing question",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelevantFamilies(nil, tt.question)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelevantFamiliesPatientFlags(t *testing.T) {
	t.Run("reduced lvef adds heart failure", func(t *testing.T) {
		p := &domain.Patient{LVEFValue: fptr(35)}
		got := RelevantFamilies(p, "what next?")
		assert.Equal(t, []Family{FAMILY_HEART_FAILURE}, got)
	})

	t.Run("hf diagnosis adds heart failure", func(t *testing.T) {
		p := &domain.Patient{
			Diagnoses: []domain.Diagnosis{{Name: "heart_failure", IsActive: true}},
		}
		got := RelevantFamilies(p, "what next?")
		assert.Equal(t, []Family{FAMILY_HEART_FAILURE}, got)
	})

	t.Run("af type adds atrial fibrillation", func(t *testing.T) {
		p := &domain.Patient{AFType: domain.AF_PAROXYSMAL}
		got := RelevantFamilies(p, "what next?")
		assert.Equal(t, []Family{FAMILY_ATRIAL_FIBRILLATION}, got)
	})

	t.Run("af on ecg adds atrial fibrillation", func(t *testing.T) {
		p := &domain.Patient{ECG: &domain.ECGFindings{AFPresent: true}}
		got := RelevantFamilies(p, "what next?")
		assert.Equal(t, []Family{FAMILY_ATRIAL_FIBRILLATION}, got)
	})

	t.Run("flags merge with keywords in fixed order", func(t *testing.T) {
		p := &domain.Patient{LVEFValue: fptr(45)}
		got := RelevantFamilies(p, "anticoagulation choice")
		require.Len(t, got, 2)
		assert.Equal(t, FAMILY_HEART_FAILURE, got[0])
		assert.Equal(t, FAMILY_ATRIAL_FIBRILLATION, got[1])
	})

	t.Run("nil patient empty question", func(t *testing.T) {
		assert.Empty(t, RelevantFamilies(nil, ""))
	})
}
