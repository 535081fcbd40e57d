// Package export assembles captured slide images into a one-page-per-slide PDF.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"strconv"

	"carouselcraft.io/carousel-studio/internal/store"
	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"
)

// PageSize is the default page edge, in pixels for captures and points for
// PDF pages.
const PageSize = 1080

var (
	ErrNoSlides        = errors.New("export: no slides to export")
	ErrNothingCaptured = errors.New("export: every slide was skipped")
)

// Surface is something that can be rasterized on demand, typically a
// rendered slide.
type Surface interface {
	Capture(ctx context.Context) (image.Image, error)
}

type Outcome int

const (
	Captured Outcome = iota
	Skipped
)

func (o Outcome) String() string {
	if o == Captured {
		return "captured"
	}
	return "skipped"
}

type SlideResult struct {
	SlideNumber int
	Outcome     Outcome
	Reason      string // set when Outcome is Skipped
}

type Result struct {
	Document []byte
	Pages    int
	Slides   []SlideResult
}

// Skipped returns the numbers of the slides left out of the document.
func (r *Result) Skipped() []int {
	var out []int
	for _, s := range r.Slides {
		if s.Outcome == Skipped {
			out = append(out, s.SlideNumber)
		}
	}
	return out
}

type Exporter struct {
	Background color.Color
	Size       int
}

func NewExporter() *Exporter {
	return &Exporter{Background: color.White, Size: PageSize}
}

func (e *Exporter) size() int {
	if e.Size <= 0 {
		return PageSize
	}
	return e.Size
}

// Export captures surfaces[i] for slides[i], one at a time and in order. A
// missing surface or a failed capture skips that slide only.
func (e *Exporter) Export(ctx context.Context, slides []store.Slide, surfaces []Surface) (*Result, error) {
	if len(slides) == 0 {
		return nil, ErrNoSlides
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(e.size()), Ht: float64(e.size())},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	result := &Result{Slides: make([]SlideResult, 0, len(slides))}
	for i, slide := range slides {
		sr := SlideResult{SlideNumber: slide.SlideNumber, Outcome: Captured}

		var surface Surface
		if i < len(surfaces) {
			surface = surfaces[i]
		}
		if surface == nil {
			sr.Outcome, sr.Reason = Skipped, "surface missing"
			log.Printf("Export: skipping slide %d: surface missing", slide.SlideNumber)
			result.Slides = append(result.Slides, sr)
			continue
		}

		img, err := capture(ctx, surface)
		if err != nil {
			sr.Outcome, sr.Reason = Skipped, "capture failed: "+err.Error()
			log.Printf("Export: skipping slide %d: %v", slide.SlideNumber, err)
			result.Slides = append(result.Slides, sr)
			continue
		}

		if err := e.addPage(pdf, result.Pages, img); err != nil {
			return nil, err
		}
		result.Pages++
		result.Slides = append(result.Slides, sr)
	}

	if result.Pages == 0 {
		return nil, ErrNothingCaptured
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to output PDF: %w", err)
	}
	result.Document = buf.Bytes()
	return result, nil
}

// capture turns a panicking or empty capture into an error so one bad
// surface cannot abort the whole export.
func capture(ctx context.Context, s Surface) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("capture panicked: %v", p)
		}
	}()
	img, err = s.Capture(ctx)
	if err == nil && img == nil {
		err = errors.New("capture returned no image")
	}
	return img, err
}

func (e *Exporter) addPage(pdf *gofpdf.Fpdf, index int, img image.Image) error {
	flat := e.flatten(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return fmt.Errorf("failed to encode page %d: %w", index+1, err)
	}

	name := "page-" + strconv.Itoa(index+1)
	side := float64(e.size())
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: side, Ht: side})
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	pdf.ImageOptions(name, 0, 0, side, side, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("PDF generation error on page %d: %w", index+1, err)
	}
	return nil
}

// flatten composites img over the background on a square page so transparent
// regions come out in the background colour.
func (e *Exporter) flatten(img image.Image) *image.RGBA {
	bg := e.Background
	if bg == nil {
		bg = color.White
	}
	side := e.size()
	out := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if b := img.Bounds(); b.Dx() == side && b.Dy() == side {
		draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	} else {
		xdraw.CatmullRom.Scale(out, out.Bounds(), img, b, xdraw.Over, nil)
	}
	return out
}
