package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahir/certhub/internal/apperror"
	"github.com/mahir/certhub/internal/model"
	"github.com/mahir/certhub/internal/render"
	"github.com/mahir/certhub/internal/service"
)

// mockStore is an in-memory CollectionStore for pipeline tests.
type mockStore struct {
	users     []model.User
	templates []model.Template
	records   []model.CertificateRecord
	saveUsers int
}

func (m *mockStore) Users(_ context.Context) ([]model.User, error) {
	return append([]model.User(nil), m.users...), nil
}

func (m *mockStore) SaveUsers(_ context.Context, users []model.User) error {
	m.saveUsers++
	m.users = append([]model.User(nil), users...)
	return nil
}

func (m *mockStore) Templates(_ context.Context) ([]model.Template, error) {
	return append([]model.Template(nil), m.templates...), nil
}

func (m *mockStore) SaveTemplates(_ context.Context, templates []model.Template) error {
	m.templates = append([]model.Template(nil), templates...)
	return nil
}

func (m *mockStore) Certificates(_ context.Context) ([]model.CertificateRecord, error) {
	return append([]model.CertificateRecord(nil), m.records...), nil
}

func (m *mockStore) SaveCertificates(_ context.Context, records []model.CertificateRecord) error {
	m.records = append([]model.CertificateRecord(nil), records...)
	return nil
}

// stubRasterizer returns a canned image of the given dimensions.
type stubRasterizer struct {
	width, height int
}

func (s *stubRasterizer) Rasterize(_ render.RenderedCertificate) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for x := 0; x < s.width; x++ {
		for y := 0; y < s.height; y++ {
			img.Set(x, y, color.White)
		}
	}
	return img, nil
}

// failingRasterizer simulates a tainted surface.
type failingRasterizer struct{}

func (failingRasterizer) Rasterize(_ render.RenderedCertificate) (image.Image, error) {
	return nil, errors.New("tainted cross-origin content")
}

// blockingRasterizer parks until released, so a test can hold an export in
// flight.
type blockingRasterizer struct {
	started chan struct{}
	release chan struct{}
	inner   stubRasterizer
}

func (b *blockingRasterizer) Rasterize(rc render.RenderedCertificate) (image.Image, error) {
	close(b.started)
	<-b.release
	return b.inner.Rasterize(rc)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestPipeline(t *testing.T, raster Rasterizer) (*Pipeline, *mockStore) {
	t.Helper()
	store := &mockStore{
		users: []model.User{
			{ID: 7, Name: "Jane Smith", RegNumber: "REG-007", JoinedDate: "2024-01-10"},
		},
	}
	templates := service.NewTemplateStore(store, testLogger())
	p := NewPipeline(store, templates, raster, testLogger())
	p.now = func() time.Time { return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC) }
	return p, store
}

func janeRecord() model.CertificateRecord {
	return model.CertificateRecord{
		ID:                 "cert-7",
		UserID:             7,
		TemplateID:         model.DefaultTemplateID,
		StudentName:        "Jane Smith",
		RegistrationNumber: "REG-007",
		CourseName:         "Web Development",
		EventName:          "Technical Workshop on Web Development",
		EventType:          "Technical Workshop",
		IssueDate:          "2024-01-10",
	}
}

func TestToDocument(t *testing.T) {
	p, store := newTestPipeline(t, &stubRasterizer{width: 1200, height: 850})

	doc, err := p.ToDocument(context.Background(), janeRecord())
	require.NoError(t, err)

	assert.Equal(t, "Jane_Smith_certificate_2024-03-15.pdf", doc.Filename)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")), "output is not a PDF")
	assert.NotEmpty(t, doc.Data)

	// Successful export marks the owner as having downloaded.
	assert.True(t, store.users[0].HasDownloadedCertificate)
}

func TestToDocumentRasterizationFailure(t *testing.T) {
	p, store := newTestPipeline(t, failingRasterizer{})

	_, err := p.ToDocument(context.Background(), janeRecord())
	assert.ErrorIs(t, err, apperror.ErrRasterization)

	// No state change on any export failure.
	assert.False(t, store.users[0].HasDownloadedCertificate)
	assert.Zero(t, store.saveUsers)
}

func TestToDocumentMissingSurface(t *testing.T) {
	p, store := newTestPipeline(t, nil)

	_, err := p.ToDocument(context.Background(), janeRecord())
	assert.ErrorIs(t, err, apperror.ErrRenderTargetMissing)
	assert.False(t, store.users[0].HasDownloadedCertificate)
}

func TestToDocumentDanglingTemplateID(t *testing.T) {
	p, _ := newTestPipeline(t, &stubRasterizer{width: 600, height: 400})

	rec := janeRecord()
	rec.TemplateID = "deleted-template"

	// Resolution falls back to the default template, so the export succeeds.
	doc, err := p.ToDocument(context.Background(), rec)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Data)
}

func TestToDocumentConcurrentRetriggerRejected(t *testing.T) {
	raster := &blockingRasterizer{
		started: make(chan struct{}),
		release: make(chan struct{}),
		inner:   stubRasterizer{width: 300, height: 200},
	}
	p, _ := newTestPipeline(t, raster)
	rec := janeRecord()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := p.ToDocument(context.Background(), rec)
		assert.NoError(t, err)
	}()

	<-raster.started
	_, err := p.ToDocument(context.Background(), rec)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	close(raster.release)
	wg.Wait()

	// Once the first export finishes the record can be exported again; the
	// guard is per in-flight call, not per lifetime.
	raster2 := &stubRasterizer{width: 300, height: 200}
	p.raster = raster2
	_, err = p.ToDocument(context.Background(), rec)
	assert.NoError(t, err)
}

func TestFitToPage(t *testing.T) {
	const tolerance = 1e-9

	tests := []struct {
		name   string
		iw, ih int
	}{
		{"wider than page", 3000, 1000},
		{"taller than page", 1000, 1500},
		{"exactly page ratio", 2970, 2100},
		{"square", 800, 800},
		{"certificate surface", 3600, 2550},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h := fitToPage(tt.iw, tt.ih)

			// Aspect ratio preserved.
			want := float64(tt.iw) / float64(tt.ih)
			assert.InDelta(t, want, w/h, 1e-6, "aspect ratio not preserved")

			// Fits entirely within the page.
			assert.LessOrEqual(t, w, PageWidth+tolerance)
			assert.LessOrEqual(t, h, PageHeight+tolerance)

			// One dimension is fully filled.
			filled := math.Abs(w-PageWidth) < tolerance || math.Abs(h-PageHeight) < tolerance
			assert.True(t, filled, "neither dimension fills the page (w=%v h=%v)", w, h)

			// Centered: equal margins on both axes.
			assert.InDelta(t, PageWidth-w-x, x, tolerance, "not horizontally centered")
			assert.InDelta(t, PageHeight-h-y, y, tolerance, "not vertically centered")
		})
	}
}

func TestFitToPageConstraintChoice(t *testing.T) {
	// Proportionally taller than the page: height-constrained.
	_, y, _, h := fitToPage(1000, 1000)
	assert.InDelta(t, PageHeight, h, 1e-9)
	assert.InDelta(t, 0.0, y, 1e-9)

	// Proportionally wider than the page: width-constrained.
	x, _, w, _ := fitToPage(4000, 1000)
	assert.InDelta(t, PageWidth, w, 1e-9)
	assert.InDelta(t, 0.0, x, 1e-9)
}

func TestCertificateFilename(t *testing.T) {
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		student string
		want    string
	}{
		{"simple", "Jane Smith", "Jane_Smith_certificate_2024-03-15.pdf"},
		{"extra whitespace", "  Jane   van  Smith ", "Jane_van_Smith_certificate_2024-03-15.pdf"},
		{"empty name", "", "certificate_certificate_2024-03-15.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, certificateFilename(tt.student, day))
		})
	}
}

func TestToDelimitedText(t *testing.T) {
	rows := [][]string{
		{"Certificate ID", "Student Name", "Issue Date", "Status"},
		{"CERT001", "John Doe", "2024-03-01", "Issued"},
	}

	got := ToDelimitedText(rows)
	want := "Certificate ID,Student Name,Issue Date,Status\nCERT001,John Doe,2024-03-01,Issued"
	assert.Equal(t, want, got)
}

func TestToDelimitedTextDoesNotEscape(t *testing.T) {
	// Embedded delimiters pass through verbatim, the documented limitation.
	got := ToDelimitedText([][]string{{`Smith, Jane`, "ok"}})
	assert.Equal(t, "Smith, Jane,ok", got)
}

func TestReportFilename(t *testing.T) {
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	r := Report{Name: "Monthly Certificates Report"}
	assert.Equal(t, "monthly_certificates_report_2024-03-15.csv", r.Filename(day))
}

func TestReportsCatalog(t *testing.T) {
	reports := Reports()
	require.Len(t, reports, 3)
	for _, r := range reports {
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Data, "report %q has no rows", r.Name)
		// Every row matches the header width.
		width := len(r.Data[0])
		for i, row := range r.Data {
			assert.Len(t, row, width, "report %q row %d", r.Name, i)
		}
	}
}
