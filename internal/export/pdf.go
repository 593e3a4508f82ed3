// Package export converts rendered certificates into downloadable
// artifacts: a single-page landscape PDF per certificate and
// comma-delimited text blobs for the report boundary.
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/mahir/certhub/internal/apperror"
	"github.com/mahir/certhub/internal/model"
	"github.com/mahir/certhub/internal/render"
	"github.com/mahir/certhub/internal/repository"
	"github.com/mahir/certhub/internal/service"
)

// Fixed page size in millimetres, landscape.
const (
	PageWidth  = 297.0
	PageHeight = 210.0
)

// Rasterizer produces the pixel image for a rendered certificate. The
// production implementation is *render.Surface; tests substitute failing or
// canned ones.
type Rasterizer interface {
	Rasterize(rc render.RenderedCertificate) (image.Image, error)
}

// Document is a finished export artifact, handed to the boundary for
// download and never persisted.
type Document struct {
	Filename string
	Data     []byte
}

// Pipeline turns certificate records into page-fixed-size PDF documents.
//
// ToDocument runs three ordered stages (acquire the visual surface,
// rasterize it, assemble the page), each with its own failure kind and no
// partial results in between. On success, and only on success, the owning
// user's hasDownloadedCertificate flag is persisted as true.
type Pipeline struct {
	store     repository.CollectionStore
	templates *service.TemplateStore
	raster    Rasterizer
	logger    *slog.Logger
	now       func() time.Time

	// One export per certificate at a time; a concurrent retrigger for the
	// same record is rejected instead of generating a duplicate file.
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewPipeline(store repository.CollectionStore, templates *service.TemplateStore, raster Rasterizer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		templates: templates,
		raster:    raster,
		logger:    logger,
		now:       time.Now,
		inflight:  make(map[string]struct{}),
	}
}

func (p *Pipeline) begin(recordID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inflight[recordID]; busy {
		return apperror.Conflict("certificate export", recordID)
	}
	p.inflight[recordID] = struct{}{}
	return nil
}

func (p *Pipeline) end(recordID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, recordID)
}

// ToDocument exports one certificate record as a single-page landscape PDF.
// The rasterized certificate is scaled to fit entirely within the page,
// aspect ratio preserved, and centered on both axes. Any stage failure
// leaves all persisted state unchanged.
func (p *Pipeline) ToDocument(ctx context.Context, record model.CertificateRecord) (*Document, error) {
	if err := p.begin(record.ID); err != nil {
		return nil, err
	}
	defer p.end(record.ID)

	// Stage 1: acquire the visual surface.
	if p.raster == nil {
		return nil, apperror.RenderTargetMissing(
			fmt.Sprintf("no rendering surface attached for certificate %s", record.ID))
	}
	template, err := p.templates.Resolve(ctx, record.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("resolving template for certificate %s: %w", record.ID, err)
	}
	rendered := render.Compose(record, template)

	// Stage 2: rasterize.
	img, err := p.raster.Rasterize(rendered)
	if err != nil {
		p.logger.Error("certificate rasterization failed",
			slog.String("recordId", record.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.RasterizationFailed(err)
	}

	// Stage 3: assemble the document.
	data, err := assemblePDF(img)
	if err != nil {
		p.logger.Error("certificate document assembly failed",
			slog.String("recordId", record.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.DocumentAssemblyFailed(err)
	}

	doc := &Document{
		Filename: certificateFilename(record.StudentName, p.now()),
		Data:     data,
	}

	// The download flag flips once the document bytes are ready; delivery
	// to the end user is the boundary's concern, not a condition here.
	if err := p.markDownloaded(ctx, record.UserID); err != nil {
		return nil, err
	}

	p.logger.Info("certificate exported",
		slog.String("recordId", record.ID),
		slog.String("filename", doc.Filename),
		slog.Int("bytes", len(doc.Data)),
	)
	return doc, nil
}

// fitToPage scales an iw×ih image to the largest size that fits inside the
// page with its aspect ratio preserved, centered on both axes. An image
// proportionally taller than the page is constrained by height, otherwise
// by width.
func fitToPage(iw, ih int) (x, y, w, h float64) {
	ratio := float64(iw) / float64(ih)

	w = PageWidth
	h = PageWidth / ratio
	if h > PageHeight {
		h = PageHeight
		w = PageHeight * ratio
	}

	x = (PageWidth - w) / 2
	y = (PageHeight - h) / 2
	return x, y, w, h
}

// assemblePDF embeds the raster into a single fixed-size landscape page.
func assemblePDF(img image.Image) ([]byte, error) {
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return nil, fmt.Errorf("encoding raster: %w", err)
	}

	bounds := img.Bounds()
	x, y, w, h := fitToPage(bounds.Dx(), bounds.Dy())

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: PageWidth, Ht: PageHeight},
	})
	doc.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("certificate", opts, &encoded)
	doc.ImageOptions("certificate", x, y, w, h, false, opts, 0, "")

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return out.Bytes(), nil
}

// certificateFilename derives the download name from the student name with
// whitespace runs collapsed to underscores, plus the export date.
func certificateFilename(studentName string, day time.Time) string {
	name := strings.Join(strings.Fields(studentName), "_")
	if name == "" {
		name = "certificate"
	}
	return fmt.Sprintf("%s_certificate_%s.pdf", name, day.Format("2006-01-02"))
}

// markDownloaded persists the owner's download flag. Already-true flags are
// left alone without a write.
func (p *Pipeline) markDownloaded(ctx context.Context, userID int) error {
	users, err := p.store.Users(ctx)
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}

	for i := range users {
		if users[i].ID != userID {
			continue
		}
		if users[i].HasDownloadedCertificate {
			return nil
		}
		users[i].HasDownloadedCertificate = true
		if err := p.store.SaveUsers(ctx, users); err != nil {
			return fmt.Errorf("saving download flag: %w", err)
		}
		return nil
	}

	return apperror.NotFound("user", strconv.Itoa(userID))
}
