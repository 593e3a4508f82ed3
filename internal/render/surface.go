package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/mahir/certhub/internal/model"
)

// Base drawing dimensions and the fixed oversampling factor. The surface is
// always rasterized at Oversample times the base size so the exported
// document stays sharp on high-density output.
const (
	BaseWidth  = 1200
	BaseHeight = 850
	Oversample = 3
)

// Surface rasterizes a RenderedCertificate onto an RGBA image. The zero
// value is not usable; construct with NewSurface.
type Surface struct {
	Width  int // base width in logical pixels
	Height int // base height in logical pixels
	Scale  int // oversampling factor
}

func NewSurface() *Surface {
	return &Surface{Width: BaseWidth, Height: BaseHeight, Scale: Oversample}
}

// Rasterize draws the certificate at Scale× oversampling and returns the
// resulting image. Drawing the same description twice produces identical
// pixels.
func (s *Surface) Rasterize(rc RenderedCertificate) (image.Image, error) {
	if s.Width <= 0 || s.Height <= 0 || s.Scale <= 0 {
		return nil, fmt.Errorf("invalid surface dimensions %dx%d scale %d", s.Width, s.Height, s.Scale)
	}

	k := float64(s.Scale)
	w := float64(s.Width) * k
	h := float64(s.Height) * k
	dc := gg.NewContext(int(w), int(h))

	dc.SetHexColor(colorOrDefault(rc.Style.BackgroundColor, "#ffffff"))
	dc.Clear()

	drawBorder(dc, rc.Style, w, h, k)
	drawCorners(dc, rc.Style, w, h, k)
	drawWatermark(dc, rc.Style, w, h, k)

	faces, err := newFaceSet(rc.Style.FontFamily)
	if err != nil {
		return nil, fmt.Errorf("loading %s typeface: %w", rc.Style.FontFamily, err)
	}
	drawLogo(dc, rc.Style, w, h, k)
	if err := drawLines(dc, rc, faces, w, h, k); err != nil {
		return nil, err
	}

	return dc.Image(), nil
}

func colorOrDefault(hex, fallback string) string {
	if strings.TrimSpace(hex) == "" {
		return fallback
	}
	return hex
}

// drawBorder strokes the outer frame in the template's border style. The
// frame sits a fixed inset inside the canvas edge; "double" adds a second,
// thinner rectangle inside the first.
func drawBorder(dc *gg.Context, style Style, w, h, k float64) {
	inset := 10 * k
	lw := 4 * k

	dc.SetHexColor(colorOrDefault(style.BorderColor, "#000000"))
	dc.SetLineWidth(lw)

	switch style.BorderStyle {
	case model.BorderDashed:
		dc.SetDash(18*k, 12*k)
	case model.BorderDotted:
		dc.SetLineCap(gg.LineCapRound)
		dc.SetDash(1*k, 10*k)
	}

	dc.DrawRectangle(inset, inset, w-2*inset, h-2*inset)
	dc.Stroke()
	dc.SetDash()
	dc.SetLineCap(gg.LineCapButt)

	if style.BorderStyle == model.BorderDouble {
		dc.SetLineWidth(1.5 * k)
		gap := inset + 3*lw
		dc.DrawRectangle(gap, gap, w-2*gap, h-2*gap)
		dc.Stroke()
	}
}

// drawCorners adds the L-shaped corner decorations inside the frame.
func drawCorners(dc *gg.Context, style Style, w, h, k float64) {
	arm := 90 * k
	lw := 4 * k
	inset := 26 * k

	dc.SetHexColor(colorOrDefault(style.BorderColor, "#000000"))
	dc.SetLineWidth(lw)

	corners := []struct{ x, y, dx, dy float64 }{
		{inset, inset, 1, 1},
		{w - inset, inset, -1, 1},
		{inset, h - inset, 1, -1},
		{w - inset, h - inset, -1, -1},
	}
	for _, c := range corners {
		dc.DrawLine(c.x, c.y, c.x+c.dx*arm, c.y)
		dc.DrawLine(c.x, c.y, c.x, c.y+c.dy*arm)
	}
	dc.Stroke()
}

// drawWatermark paints the rotated medal mark behind the text at the
// template's watermark opacity. Opacity zero skips the mark entirely.
func drawWatermark(dc *gg.Context, style Style, w, h, k float64) {
	if style.WatermarkOpacity <= 0 {
		return
	}

	r, g, b := parseHexColor(colorOrDefault(style.TextColor, "#000000"))
	cx, cy := w/2, h/2
	radius := 0.32 * h

	dc.Push()
	dc.RotateAbout(gg.Radians(12), cx, cy)
	dc.SetRGBA(r, g, b, style.WatermarkOpacity)
	dc.SetLineWidth(10 * k)
	dc.DrawCircle(cx, cy, radius)
	dc.Stroke()
	dc.DrawCircle(cx, cy, radius*0.72)
	dc.Stroke()
	// Ribbon tails below the medal disc.
	dc.SetLineWidth(16 * k)
	dc.DrawLine(cx-radius*0.35, cy+radius*0.8, cx-radius*0.55, cy+radius*1.25)
	dc.DrawLine(cx+radius*0.35, cy+radius*0.8, cx+radius*0.55, cy+radius*1.25)
	dc.Stroke()
	dc.Pop()
}

// drawLogo places the small award mark in the header band at the
// template's logo position.
func drawLogo(dc *gg.Context, style Style, w, h, k float64) {
	var cx float64
	switch style.LogoPosition {
	case model.LogoLeft:
		cx = 0.16 * w
	case model.LogoRight:
		cx = 0.84 * w
	default:
		cx = 0.5 * w
	}
	cy := 0.115 * h

	dc.SetHexColor(colorOrDefault(style.BorderColor, "#000000"))
	dc.SetLineWidth(3 * k)
	dc.DrawCircle(cx, cy, 22*k)
	dc.Stroke()
	dc.DrawCircle(cx, cy, 8*k)
	dc.Fill()
}

// parseHexColor decodes #rgb or #rrggbb into 0..1 channels; anything else
// reads as black.
func parseHexColor(hex string) (r, g, b float64) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	var ri, gi, bi int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &ri, &gi, &bi); err != nil {
		return 0, 0, 0
	}
	return float64(ri) / 255, float64(gi) / 255, float64(bi) / 255
}

// faceSet lazily builds font.Face values for one template font family. The
// two parsed fonts (regular and bold cuts) are shared by every size.
type faceSet struct {
	regular *opentype.Font
	bold    *opentype.Font
	cache   map[faceKey]font.Face
}

type faceKey struct {
	size float64
	bold bool
}

// fontSources maps the closed font-family set onto the embedded Go fonts.
func fontSources(family model.FontFamily) (regular, bold []byte) {
	switch family {
	case model.FontSansSerif:
		return gomedium.TTF, gobold.TTF
	case model.FontMonospace:
		return gomono.TTF, gomonobold.TTF
	case model.FontCursive:
		return goitalic.TTF, gobolditalic.TTF
	default: // model.FontSerif
		return goregular.TTF, gobold.TTF
	}
}

func newFaceSet(family model.FontFamily) (*faceSet, error) {
	regTTF, boldTTF := fontSources(family)
	regular, err := opentype.Parse(regTTF)
	if err != nil {
		return nil, fmt.Errorf("parsing regular font: %w", err)
	}
	bold, err := opentype.Parse(boldTTF)
	if err != nil {
		return nil, fmt.Errorf("parsing bold font: %w", err)
	}
	return &faceSet{
		regular: regular,
		bold:    bold,
		cache:   map[faceKey]font.Face{},
	}, nil
}

func (f *faceSet) face(size float64, bold bool) (font.Face, error) {
	key := faceKey{size: size, bold: bold}
	if face, ok := f.cache[key]; ok {
		return face, nil
	}
	src := f.regular
	if bold {
		src = f.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("building %gpt face: %w", size, err)
	}
	f.cache[key] = face
	return face, nil
}

// lineSpec positions one text line on the surface. Coordinates are
// fractions of the canvas; sizes are base pixels before oversampling.
type lineSpec struct {
	size      float64
	bold      bool
	x, y      float64
	wrapWidth float64 // fraction of canvas width; 0 means no wrapping
	upper     bool
	rule      bool // horizontal rule above the line (footer signatures)
}

// drawLines lays the text stack out top to bottom. Repeated kinds (lead,
// detail, signature, signRole) advance through fixed slots in document
// order, mirroring the certificate's visual structure.
func drawLines(dc *gg.Context, rc RenderedCertificate, faces *faceSet, w, h, k float64) error {
	leadY := []float64{0.345, 0.565}
	detailY := []float64{0.5, 0.77}
	signatureX := []float64{0.22, 0.78}

	var leads, details, signatures, roles int

	for _, ln := range rc.Lines {
		var spec lineSpec
		switch ln.Kind {
		case KindKicker:
			spec = lineSpec{size: 24, x: 0.5, y: 0.17, upper: true}
		case KindTitle:
			spec = lineSpec{size: 62, bold: true, x: 0.5, y: 0.265}
		case KindLead:
			spec = lineSpec{size: 26, x: 0.5, y: leadY[min(leads, len(leadY)-1)]}
			leads++
		case KindName:
			spec = lineSpec{size: 54, bold: true, x: 0.5, y: 0.43}
		case KindDetail:
			spec = lineSpec{size: 24, x: 0.5, y: detailY[min(details, len(detailY)-1)]}
			details++
		case KindEvent:
			spec = lineSpec{size: 38, bold: true, x: 0.5, y: 0.635, wrapWidth: 0.72}
		case KindBody:
			spec = lineSpec{size: 21, x: 0.5, y: 0.7, wrapWidth: 0.6}
		case KindSignature:
			spec = lineSpec{size: 22, bold: true, x: signatureX[min(signatures, len(signatureX)-1)], y: 0.885, rule: true}
			signatures++
		case KindSignRole:
			spec = lineSpec{size: 17, x: signatureX[min(roles, len(signatureX)-1)], y: 0.925}
			roles++
		case KindBadge:
			spec = lineSpec{size: 18, bold: true, x: 0.5, y: 0.9, upper: true}
		default:
			continue
		}

		face, err := faces.face(spec.size*k, spec.bold)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.SetHexColor(colorOrDefault(rc.Style.TextColor, "#000000"))

		text := ln.Text
		if spec.upper {
			text = strings.ToUpper(text)
		}

		if spec.rule {
			dc.SetHexColor(colorOrDefault(rc.Style.BorderColor, "#000000"))
			dc.SetLineWidth(2 * k)
			half := 0.09 * w
			dc.DrawLine(spec.x*w-half, spec.y*h-0.035*h, spec.x*w+half, spec.y*h-0.035*h)
			dc.Stroke()
			dc.SetHexColor(colorOrDefault(rc.Style.TextColor, "#000000"))
		}

		if spec.wrapWidth > 0 {
			dc.DrawStringWrapped(text, spec.x*w, spec.y*h, 0.5, 0.5, spec.wrapWidth*w, 1.4, gg.AlignCenter)
		} else {
			dc.DrawStringAnchored(text, spec.x*w, spec.y*h, 0.5, 0.5)
		}
	}

	return nil
}
