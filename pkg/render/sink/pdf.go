package sink

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/matzehuels/cardsheet/pkg/compose"
	apperr "github.com/matzehuels/cardsheet/pkg/errors"
)

// CropMarkWidth is the stroke width of crop marks in millimeters.
const CropMarkWidth = 0.1

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	title    string
	creator  string
	created  time.Time
	compress bool
}

// WithTitle sets the document title.
func WithTitle(s string) PDFOption { return func(r *pdfRenderer) { r.title = s } }

// WithCreator sets the creator recorded in the document metadata.
func WithCreator(s string) PDFOption { return func(r *pdfRenderer) { r.creator = s } }

// WithCreationDate fixes the creation date. Without it the current time is
// used, which makes output differ between runs.
func WithCreationDate(t time.Time) PDFOption { return func(r *pdfRenderer) { r.created = t } }

// WithoutCompression writes uncompressed content streams.
func WithoutCompression() PDFOption { return func(r *pdfRenderer) { r.compress = false } }

// RenderPDF writes pages as a PDF document and returns its bytes.
func RenderPDF(pages []compose.Page, opts ...PDFOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, pages, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePDF writes pages as a PDF document to w.
func WritePDF(w io.Writer, pages []compose.Page, opts ...PDFOption) error {
	if len(pages) == 0 {
		return apperr.New(apperr.ErrCodeEmptyInput, "no pages to write")
	}
	r := pdfRenderer{creator: "cardsheet", compress: true}
	for _, opt := range opts {
		opt(&r)
	}

	first := pages[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreator(r.creator, true)
	if r.title != "" {
		pdf.SetTitle(r.title, true)
	}
	if !r.created.IsZero() {
		pdf.SetCreationDate(r.created)
	}

	for _, page := range pages {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for i, placed := range page.Images {
			if err := placeImage(pdf, page.Number, i, placed); err != nil {
				return err
			}
		}
		if len(page.CropMarks) > 0 {
			pdf.SetDrawColor(0, 0, 0)
			pdf.SetLineWidth(CropMarkWidth)
			for _, m := range page.CropMarks {
				pdf.Line(m.X1, m.Y1, m.X2, m.Y2)
			}
		}
		if pdf.Err() {
			return fmt.Errorf("page %d: %w", page.Number, pdf.Error())
		}
	}
	return pdf.Output(w)
}

func placeImage(pdf *gofpdf.Fpdf, pageNum, index int, p compose.PlacedImage) error {
	if p.Source.Image == nil {
		return apperr.New(apperr.ErrCodeInvalidInput, "card %q on page %d has no image", p.Source.ID, pageNum)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, p.Source.Image); err != nil {
		return fmt.Errorf("encode card %q: %w", p.Source.ID, err)
	}

	name := fmt.Sprintf("card-%d-%d", pageNum, index)
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opt, &buf)
	pdf.ImageOptions(name, p.X, p.Y, p.Width, p.Height, false, opt, 0, "")
	if pdf.Err() {
		return fmt.Errorf("place card %q: %w", p.Source.ID, pdf.Error())
	}
	return nil
}
