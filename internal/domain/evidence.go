package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Study references a clinical trial or study supporting a recommendation
type Study struct {
	Name       string `json:"name"` // e.g. "PARADIGM-HF"
	FullTitle  string `json:"full_title,omitempty"`
	Journal    string `json:"journal,omitempty"`
	Year       int    `json:"year,omitempty"`
	PMID       string `json:"pmid,omitempty"`
	DOI        string `json:"doi,omitempty"`
	StudyType  string `json:"study_type,omitempty"` // RCT/meta-analysis/observational
	SampleSize int    `json:"sample_size,omitempty"`
	KeyFinding string `json:"key_finding,omitempty"`
}

// ShortRef returns the study name with year when known
func (s Study) ShortRef() string {
	if s.Year > 0 {
		return fmt.Sprintf("%s (%d)", s.Name, s.Year)
	}
	return s.Name
}

// Citation provides full traceability from a recommendation back to the
// guideline document that states it.
type Citation struct {
	GuidelineKey   string `json:"guideline_key"`
	GuidelineName  string `json:"guideline_name"`
	GuidelineShort string `json:"guideline_short"`
	Section        string `json:"section,omitempty"` // e.g. "11.2.3"
	SectionTitle   string `json:"section_title,omitempty"`
	Page           int    `json:"page,omitempty"`
	TableNumber    string `json:"table_number,omitempty"`
	FigureNumber   string `json:"figure_number,omitempty"`

	EvidenceClass EvidenceClass `json:"evidence_class"`
	EvidenceLevel EvidenceLevel `json:"evidence_level"`
	Studies       []string      `json:"studies,omitempty"`

	GuidelineDOI  string     `json:"guideline_doi,omitempty"`
	GuidelineYear int        `json:"guideline_year,omitempty"`
	LastVerified  *time.Time `json:"last_verified,omitempty"`
}

// FormatShort returns the inline citation form
func (c *Citation) FormatShort() string {
	return fmt.Sprintf("%s, Class %s, Level %s", c.GuidelineShort, c.EvidenceClass, c.EvidenceLevel)
}

// FormatFull returns the full multi-part citation string
func (c *Citation) FormatFull() string {
	parts := []string{c.GuidelineName}
	if c.Section != "" {
		parts = append(parts, "Section "+c.Section)
	}
	if c.SectionTitle != "" {
		parts = append(parts, c.SectionTitle)
	}
	if c.TableNumber != "" {
		parts = append(parts, c.TableNumber)
	}
	if c.Page > 0 {
		parts = append(parts, "p. "+strconv.Itoa(c.Page))
	}
	parts = append(parts, fmt.Sprintf("Class %s, Level %s", c.EvidenceClass, c.EvidenceLevel))
	if len(c.Studies) > 0 {
		parts = append(parts, "Studies: "+strings.Join(c.Studies, ", "))
	}
	return strings.Join(parts, "; ")
}

// Guideline is an entry in the guideline registry
type Guideline struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Short string `json:"short"`
	PDF   string `json:"pdf,omitempty"`
	DOI   string `json:"doi,omitempty"`
	Year  int    `json:"year"`
}

// AgeYears returns how many years old the guideline document is
func (g Guideline) AgeYears(now time.Time) int {
	if g.Year == 0 {
		return 0
	}
	age := now.Year() - g.Year
	if age < 0 {
		return 0
	}
	return age
}

// GuidelineRegistry holds the ESC guideline families known to the engine.
// Process-wide immutable reference data.
var GuidelineRegistry = map[string]Guideline{
	"esc_hf_2021": {
		Key:   "esc_hf_2021",
		Name:  "2021 ESC Guidelines for the diagnosis and treatment of acute and chronic heart failure",
		Short: "ESC HF 2021",
		PDF:   "ehab364.pdf",
		DOI:   "10.1093/eurheartj/ehab364",
		Year:  2021,
	},
	"esc_af_2020": {
		Key:   "esc_af_2020",
		Name:  "2020 ESC Guidelines for the diagnosis and management of atrial fibrillation",
		Short: "ESC AF 2020",
		PDF:   "ehaa612.pdf",
		DOI:   "10.1093/eurheartj/ehaa612",
		Year:  2020,
	},
	"esc_acs_2020": {
		Key:   "esc_acs_2020",
		Name:  "2020 ESC Guidelines for the management of acute coronary syndromes in patients presenting without persistent ST-segment elevation",
		Short: "ESC NSTE-ACS 2020",
		PDF:   "ehaa575.pdf",
		DOI:   "10.1093/eurheartj/ehaa575",
		Year:  2020,
	},
	"esc_vhd_2021": {
		Key:   "esc_vhd_2021",
		Name:  "2021 ESC/EACTS Guidelines for the management of valvular heart disease",
		Short: "ESC VHD 2021",
		PDF:   "ehab395.pdf",
		DOI:   "10.1093/eurheartj/ehab395",
		Year:  2021,
	},
	"esc_ph_2022": {
		Key:   "esc_ph_2022",
		Name:  "2022 ESC/ERS Guidelines for the diagnosis and treatment of pulmonary hypertension",
		Short: "ESC/ERS PH 2022",
		PDF:   "ehac237.pdf",
		DOI:   "10.1093/eurheartj/ehac237",
		Year:  2022,
	},
	"esc_va_scd_2022": {
		Key:   "esc_va_scd_2022",
		Name:  "2022 ESC Guidelines for the management of patients with ventricular arrhythmias and the prevention of sudden cardiac death",
		Short: "ESC VA/SCD 2022",
		PDF:   "ehac262.pdf",
		DOI:   "10.1093/eurheartj/ehac262",
		Year:  2022,
	},
	"esc_cardio_onc_2022": {
		Key:   "esc_cardio_onc_2022",
		Name:  "2022 ESC Guidelines on cardio-oncology",
		Short: "ESC Cardio-Oncology 2022",
		PDF:   "ehac244.pdf",
		DOI:   "10.1093/eurheartj/ehac244",
		Year:  2022,
	},
}

// CitationOption customizes an optional citation field
type CitationOption func(*Citation)

// WithSection sets the guideline section number and title
func WithSection(section, title string) CitationOption {
	return func(c *Citation) {
		c.Section = section
		c.SectionTitle = title
	}
}

// WithPage sets the PDF page number
func WithPage(page int) CitationOption {
	return func(c *Citation) { c.Page = page }
}

// WithTable sets the table reference
func WithTable(table string) CitationOption {
	return func(c *Citation) { c.TableNumber = table }
}

// WithStudies sets the supporting study names
func WithStudies(studies ...string) CitationOption {
	return func(c *Citation) { c.Studies = studies }
}

// NewCitation builds a Citation from a registry key plus ESC grading.
// Returns ErrUnknownGuideline for keys outside the registry.
func NewCitation(guidelineKey string, class EvidenceClass, level EvidenceLevel, opts ...CitationOption) (*Citation, error) {
	gl, ok := GuidelineRegistry[guidelineKey]
	if !ok {
		return nil, fmt.Errorf("citation for %q: %w", guidelineKey, ErrUnknownGuideline)
	}
	if err := ValidateGrading(class, level); err != nil {
		return nil, err
	}
	c := &Citation{
		GuidelineKey:   guidelineKey,
		GuidelineName:  gl.Name,
		GuidelineShort: gl.Short,
		EvidenceClass:  class,
		EvidenceLevel:  level,
		GuidelineDOI:   gl.DOI,
		GuidelineYear:  gl.Year,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MustCitation is NewCitation for statically known registry keys; it
// panics on a bad key so table definitions fail loudly at startup.
func MustCitation(guidelineKey string, class EvidenceClass, level EvidenceLevel, opts ...CitationOption) *Citation {
	c, err := NewCitation(guidelineKey, class, level, opts...)
	if err != nil {
		panic(err)
	}
	return c
}
