package share

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahir/certhub/internal/apperror"
)

func TestCertificateURL(t *testing.T) {
	b := NewBuilder("https://certhub.example.com")
	assert.Equal(t, "https://certhub.example.com/certificates/cert-42", b.CertificateURL("cert-42"))
}

func TestCertificateURLTrimsTrailingSlash(t *testing.T) {
	b := NewBuilder("https://certhub.example.com/")
	assert.Equal(t, "https://certhub.example.com/certificates/cert-42", b.CertificateURL("cert-42"))
}

func TestBuildWhatsApp(t *testing.T) {
	b := NewBuilder("https://certhub.example.com")

	got, err := b.Build(PlatformWhatsApp, "cert-42")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, "https://wa.me/?text="))

	u, err := url.Parse(got)
	require.NoError(t, err)
	text := u.Query().Get("text")
	assert.Equal(t, Caption+"\n"+"https://certhub.example.com/certificates/cert-42", text)
}

func TestBuildLinkedIn(t *testing.T) {
	b := NewBuilder("https://certhub.example.com")

	got, err := b.Build(PlatformLinkedIn, "cert-42")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got, "https://www.linkedin.com/sharing/share-offsite/?"))

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "https://certhub.example.com/certificates/cert-42", u.Query().Get("url"))
	assert.Equal(t, Caption, u.Query().Get("title"))
}

func TestBuildUnknownPlatform(t *testing.T) {
	b := NewBuilder("https://certhub.example.com")

	_, err := b.Build(Platform("myspace"), "cert-42")
	assert.ErrorIs(t, err, apperror.ErrUnsupportedPlatform)
	assert.ErrorContains(t, err, "myspace")
}
