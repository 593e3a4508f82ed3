// Package share builds platform-specific social sharing URLs for issued
// certificates.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mahir/certhub/internal/apperror"
)

// Platform identifies a supported sharing destination.
type Platform string

const (
	PlatformWhatsApp Platform = "whatsapp"
	PlatformLinkedIn Platform = "linkedin"
)

// Caption is the fixed message attached to every share.
const Caption = "Check out my Professional Web Development Certificate from our program! 🎓"

// Builder derives public certificate and share URLs from a site base URL.
type Builder struct {
	baseURL string
}

func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// CertificateURL is the public page for a single certificate record.
func (b *Builder) CertificateURL(recordID string) string {
	return fmt.Sprintf("%s/certificates/%s", b.baseURL, recordID)
}

// Build returns the share URL for the given platform. WhatsApp carries the
// caption and certificate URL in its text parameter; LinkedIn takes the URL
// and caption as separate parameters. All parameter values are URL-encoded.
func (b *Builder) Build(platform Platform, recordID string) (string, error) {
	certURL := b.CertificateURL(recordID)

	switch platform {
	case PlatformWhatsApp:
		text := Caption + "\n" + certURL
		return "https://wa.me/?text=" + url.QueryEscape(text), nil
	case PlatformLinkedIn:
		return "https://www.linkedin.com/sharing/share-offsite/?url=" +
			url.QueryEscape(certURL) + "&title=" + url.QueryEscape(Caption), nil
	default:
		return "", apperror.UnsupportedPlatform(string(platform))
	}
}
