// Package export turns the current invoice into a single-page PDF: fresh
// render, rasterize, fit onto an A4 portrait page, name the file after the
// invoice number.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"

	"github.com/jung-kurt/gofpdf"

	"github.com/billforge/billforge/internal/models"
	"github.com/billforge/billforge/internal/preview"
	"github.com/billforge/billforge/internal/raster"
)

// ErrInFlight is returned when an export is triggered while another one is
// still running. Exports are mutually exclusive; the caller retries once
// the first finishes.
var ErrInFlight = errors.New("export: another export is in flight")

// Rasterizer is the external collaborator converting rendered markup into
// a bitmap. *raster.Capturer satisfies it; tests substitute a fake.
type Rasterizer interface {
	Capture(ctx context.Context, html string) (*raster.Image, error)
}

// topMarginMM is the fixed vertical offset of the image on the page.
const topMarginMM = 10.0

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

type Exporter struct {
	ras  Rasterizer
	busy atomic.Bool
}

func New(ras Rasterizer) *Exporter {
	return &Exporter{ras: ras}
}

// Busy reports whether an export is currently running.
func (e *Exporter) Busy() bool { return e.busy.Load() }

// Export produces the PDF bytes and download filename for a snapshot.
// The snapshot is rendered fresh here rather than reusing any cached
// preview, so the export never captures stale markup. Only one export runs
// at a time; concurrent triggers get ErrInFlight.
func (e *Exporter) Export(ctx context.Context, snap models.InvoiceSnapshot) (data []byte, filename string, err error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, "", ErrInFlight
	}
	defer e.busy.Store(false)

	doc, err := preview.Document(snap)
	if err != nil {
		return nil, "", err
	}
	img, err := e.ras.Capture(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("export: rasterize: %w", err)
	}
	data, err = buildPDF(img)
	if err != nil {
		return nil, "", err
	}
	return data, Filename(snap.RawNumber), nil
}

// Filename derives the download name from the invoice number: every
// non-alphanumeric character becomes an underscore. A blank number falls
// back to invoice.pdf.
func Filename(number string) string {
	if number == "" {
		return "invoice.pdf"
	}
	return nonAlnum.ReplaceAllString(number, "_") + ".pdf"
}

// fit computes the uniform scale placing an image of the given pixel size
// on a pageW x pageH page: aspect ratio preserved, centered horizontally,
// fixed top margin.
func fit(pageW, pageH float64, imgW, imgH int64) (x, y, w, h float64) {
	fw, fh := float64(imgW), float64(imgH)
	ratio := pageW / fw
	if r := pageH / fh; r < ratio {
		ratio = r
	}
	w = fw * ratio
	h = fh * ratio
	x = (pageW - w) / 2
	y = topMarginMM
	return
}

func buildPDF(img *raster.Image) ([]byte, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, errors.New("export: empty raster image")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	x, y, w, h := fit(pageW, pageH, img.Width, img.Height)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("invoice", opts, bytes.NewReader(img.PNG))
	pdf.ImageOptions("invoice", x, y, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: assembling pdf: %w", err)
	}
	return buf.Bytes(), nil
}
