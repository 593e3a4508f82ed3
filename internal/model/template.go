package model

// FontFamily selects the typeface group a certificate is drawn with. The
// set is closed: unknown values are normalized to FontSerif at the template
// write boundary, never rejected at render time.
type FontFamily string

const (
	FontSerif     FontFamily = "serif"
	FontSansSerif FontFamily = "sans-serif"
	FontMonospace FontFamily = "monospace"
	FontCursive   FontFamily = "cursive"
)

// BorderStyle selects how the outer certificate frame is stroked.
type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDouble BorderStyle = "double"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

// LogoPosition selects where the award mark sits in the header band.
type LogoPosition string

const (
	LogoLeft   LogoPosition = "left"
	LogoCenter LogoPosition = "center"
	LogoRight  LogoPosition = "right"
)

// Watermark opacity bounds. Values outside the range are clamped, not
// rejected, so a stored template always renders.
const (
	MinWatermarkOpacity = 0.0
	MaxWatermarkOpacity = 0.5
)

// Template is a named bundle of visual styling parameters applied to a
// certificate. IDs are stable across renames.
type Template struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	BackgroundColor  string       `json:"backgroundColor"`
	BorderColor      string       `json:"borderColor"`
	TextColor        string       `json:"textColor"`
	FontFamily       FontFamily   `json:"fontFamily"`
	BorderStyle      BorderStyle  `json:"borderStyle"`
	WatermarkOpacity float64      `json:"watermarkOpacity"`
	LogoPosition     LogoPosition `json:"logoPosition"`
}

// DefaultTemplateID is the id of the seeded fallback template. Resolution
// of any dangling template reference lands here.
const DefaultTemplateID = "default"

// DefaultTemplate returns the seeded "Classic Template". The template
// collection is initialized with exactly this value before any other
// operation is observable.
func DefaultTemplate() Template {
	return Template{
		ID:               DefaultTemplateID,
		Name:             "Classic Template",
		BackgroundColor:  "#ffffff",
		BorderColor:      "#1a365d",
		TextColor:        "#1a365d",
		FontFamily:       FontSerif,
		BorderStyle:      BorderDouble,
		WatermarkOpacity: 0.1,
		LogoPosition:     LogoCenter,
	}
}

func NormalizeFontFamily(v FontFamily) FontFamily {
	switch v {
	case FontSerif, FontSansSerif, FontMonospace, FontCursive:
		return v
	}
	return FontSerif
}

func NormalizeBorderStyle(v BorderStyle) BorderStyle {
	switch v {
	case BorderSolid, BorderDouble, BorderDashed, BorderDotted:
		return v
	}
	return BorderSolid
}

func NormalizeLogoPosition(v LogoPosition) LogoPosition {
	switch v {
	case LogoLeft, LogoCenter, LogoRight:
		return v
	}
	return LogoCenter
}

func ClampWatermarkOpacity(v float64) float64 {
	if v < MinWatermarkOpacity {
		return MinWatermarkOpacity
	}
	if v > MaxWatermarkOpacity {
		return MaxWatermarkOpacity
	}
	return v
}

// Normalize rewrites every loosely-typed style field to a member of its
// closed set. Called at the TemplateStore write boundary so the renderer
// can handle the enums exhaustively.
func (t *Template) Normalize() {
	t.FontFamily = NormalizeFontFamily(t.FontFamily)
	t.BorderStyle = NormalizeBorderStyle(t.BorderStyle)
	t.LogoPosition = NormalizeLogoPosition(t.LogoPosition)
	t.WatermarkOpacity = ClampWatermarkOpacity(t.WatermarkOpacity)
}
