// Package render turns a certificate record and a template into a
// RenderedCertificate: an ordered, medium-independent description of what
// the certificate says and how it is styled. The same description feeds the
// on-screen preview and the export pipeline, so what a user previews is
// exactly what gets exported.
package render

import (
	"fmt"
	"time"

	"github.com/mahir/certhub/internal/model"
)

// LineKind classifies a text line so a drawing surface can pick size and
// weight without re-parsing the content.
type LineKind string

const (
	KindKicker    LineKind = "kicker"    // event type band above the title
	KindTitle     LineKind = "title"     // "Certificate of Participation"
	KindLead      LineKind = "lead"      // connective phrases
	KindName      LineKind = "name"      // the student's name
	KindDetail    LineKind = "detail"    // registration number, event date
	KindEvent     LineKind = "event"     // the event name
	KindBody      LineKind = "body"      // supporting paragraph
	KindSignature LineKind = "signature" // signatory titles in the footer
	KindSignRole  LineKind = "signRole"  // department below a signatory
	KindBadge     LineKind = "badge"     // the VERIFIED seal text
)

type Line struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

// Style carries every template visual parameter, already normalized.
type Style struct {
	BackgroundColor  string             `json:"backgroundColor"`
	BorderColor      string             `json:"borderColor"`
	TextColor        string             `json:"textColor"`
	FontFamily       model.FontFamily   `json:"fontFamily"`
	BorderStyle      model.BorderStyle  `json:"borderStyle"`
	WatermarkOpacity float64            `json:"watermarkOpacity"`
	LogoPosition     model.LogoPosition `json:"logoPosition"`
}

// RenderedCertificate is the ephemeral structured visual description of one
// certificate. It is derived on every view and never persisted.
type RenderedCertificate struct {
	Style Style  `json:"style"`
	Lines []Line `json:"lines"`
}

// Compose is pure and fully deterministic: identical inputs produce
// identical output, byte for byte once serialized. It incorporates every
// record display field and every template style parameter.
func Compose(record model.CertificateRecord, template model.Template) RenderedCertificate {
	template.Normalize()

	return RenderedCertificate{
		Style: Style{
			BackgroundColor:  template.BackgroundColor,
			BorderColor:      template.BorderColor,
			TextColor:        template.TextColor,
			FontFamily:       template.FontFamily,
			BorderStyle:      template.BorderStyle,
			WatermarkOpacity: template.WatermarkOpacity,
			LogoPosition:     template.LogoPosition,
		},
		Lines: []Line{
			{Kind: KindKicker, Text: record.EventType},
			{Kind: KindTitle, Text: "Certificate of Participation"},
			{Kind: KindLead, Text: "This is to certify that"},
			{Kind: KindName, Text: record.StudentName},
			{Kind: KindDetail, Text: fmt.Sprintf("Registration Number: %s", record.RegistrationNumber)},
			{Kind: KindLead, Text: "has actively participated in"},
			{Kind: KindEvent, Text: record.EventName},
			{Kind: KindBody, Text: "demonstrating keen interest and valuable contribution throughout the event"},
			{Kind: KindDetail, Text: fmt.Sprintf("Event Date: %s", FormatIssueDate(record.IssueDate))},
			{Kind: KindSignature, Text: "Event Organizer"},
			{Kind: KindSignRole, Text: "Technical Events Department"},
			{Kind: KindBadge, Text: "VERIFIED"},
			{Kind: KindSignature, Text: "Head of Department"},
			{Kind: KindSignRole, Text: "Event Authority"},
		},
	}
}

// FormatIssueDate renders a stored issue date in the long human-readable
// form, e.g. "January 10, 2024". Both plain ISO dates and full RFC 3339
// timestamps occur in stored records. An unparseable value passes through
// unchanged: still deterministic, just unformatted.
func FormatIssueDate(issueDate string) string {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if ts, err := time.Parse(layout, issueDate); err == nil {
			return ts.Format("January 2, 2006")
		}
	}
	return issueDate
}
