package domain

// PaletteFamily selects one of the fixed diverging color ramps.
type PaletteFamily string

const (
	PaletteRdBuReversed PaletteFamily = "RdBu_r" // blue → white → red
	PaletteBuRd         PaletteFamily = "BuRd"   // blue → white → red (old catalog alias)
	PaletteRdBu         PaletteFamily = "RdBu"   // red → white → blue
)

// PaletteApplication selects how a palette maps onto the numeric domain.
// Only the diverging mode is defined.
type PaletteApplication string

// PaletteDiverging applies the ramp symmetrically about zero.
const PaletteDiverging PaletteApplication = "diverging"

// IndexMetadata is the canonical, normalized description of one climate
// index. PaletteFamily and PaletteApplication jointly determine the color
// function; Direction alone determines label polarity. The two decisions are
// independent and must stay that way (see the package doc).
type IndexMetadata struct {
	Code               string             `json:"code"`
	Name               string             `json:"name"`
	Unit               string             `json:"unit"`
	PaletteFamily      PaletteFamily      `json:"palette_family"`
	PaletteApplication PaletteApplication `json:"palette_application"`
	Direction          string             `json:"direction"`

	// Display-only fields, passed through untouched.
	Interpretation           string `json:"interpretation,omitempty"`
	PlainLanguageDescription string `json:"plain_language_description,omitempty"`
	TechnicalDefinition      string `json:"technical_definition,omitempty"`
	Sector                   string `json:"sector,omitempty"`
}

// RawIndexMetadata is the wire form of a catalog row. It carries both
// historical field-naming schemes; a row populates one generation or the
// other, never both.
type RawIndexMetadata struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Unit string `json:"unit"`

	// Current schema.
	PaletteFamily      string `json:"palette_family"`
	PaletteApplication string `json:"palette_application"`
	AnomalyDirection   string `json:"anomaly_direction"`

	// Old schema.
	ColorScheme      string `json:"color_scheme"`
	ColorPaletteType string `json:"color_palette_type"`
	RiskDirection    string `json:"risk_direction"`

	Interpretation           string `json:"interpretation"`
	PlainLanguageDescription string `json:"plain_language_description"`
	TechnicalDefinition      string `json:"technical_definition"`
	Sector                   string `json:"sector"`
}

// NormalizeIndexMetadata reconciles both catalog schema generations into the
// canonical form. Current-schema fields win when a row carries both. Missing
// palette fields default to the most common catalog values so the engine's
// own fallbacks only have to cover truly unknown codes.
func NormalizeIndexMetadata(raw RawIndexMetadata) IndexMetadata {
	return IndexMetadata{
		Code:               raw.Code,
		Name:               raw.Name,
		Unit:               raw.Unit,
		PaletteFamily:      PaletteFamily(firstNonEmpty(raw.PaletteFamily, raw.ColorScheme)),
		PaletteApplication: PaletteApplication(firstNonEmpty(raw.PaletteApplication, raw.ColorPaletteType, string(PaletteDiverging))),
		Direction:          firstNonEmpty(raw.AnomalyDirection, raw.RiskDirection),

		Interpretation:           raw.Interpretation,
		PlainLanguageDescription: raw.PlainLanguageDescription,
		TechnicalDefinition:      raw.TechnicalDefinition,
		Sector:                   raw.Sector,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
