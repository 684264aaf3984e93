package export

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/jung-kurt/gofpdf"
)

// SummaryRowPattern matches the first column of total/summary rows, which are
// rendered bold on a highlight fill instead of the zebra striping.
var SummaryRowPattern = regexp.MustCompile(`(?i)^(total|average|summary)\b`)

// TablePDF renders a letter-size landscape table: styled header row, zebra
// body rows, and highlighted rows wherever highlight matches the first
// column. A nil highlight disables highlighting.
func TablePDF(title string, header []string, rows [][]string, highlight *regexp.Regexp) ([]byte, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("table pdf requires at least one column")
	}

	pdf := gofpdf.New("L", "pt", "Letter", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(header))
	const rowH = 20.0

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 28, title, "", 1, "L", false, 0, "")

	// Header row.
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(33, 37, 41)
	pdf.SetTextColor(255, 255, 255)
	for _, h := range header {
		pdf.CellFormat(colW, rowH, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	for i, row := range rows {
		summary := highlight != nil && len(row) > 0 && highlight.MatchString(row[0])
		switch {
		case summary:
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetFillColor(255, 243, 205)
		case i%2 == 1:
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetFillColor(245, 245, 245)
		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetFillColor(255, 255, 255)
		}
		for c := 0; c < len(header); c++ {
			cell := ""
			if c < len(row) {
				cell = row[c]
			}
			pdf.CellFormat(colW, rowH, cell, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render table pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ImagePDF embeds a PNG raster into a letter-size page, scaled to fit inside
// the margins with its aspect ratio preserved and centered both ways.
func ImagePDF(png []byte) ([]byte, error) {
	if len(png) == 0 {
		return nil, fmt.Errorf("image pdf requires a non-empty raster")
	}

	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	info := pdf.RegisterImageOptionsReader("capture", opts, bytes.NewReader(png))
	if pdf.Err() {
		return nil, fmt.Errorf("failed to decode capture image: %s", pdf.Error())
	}

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	maxW := pageW - left - right
	maxH := pageH - top - bottom

	scale := maxW / info.Width()
	if h := info.Height() * scale; h > maxH {
		scale = maxH / info.Height()
	}
	w := info.Width() * scale
	h := info.Height() * scale
	x := left + (maxW-w)/2
	y := top + (maxH-h)/2

	pdf.ImageOptions("capture", x, y, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render image pdf: %w", err)
	}
	return buf.Bytes(), nil
}
