package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// IDCard is the printable face of one approved participant.
type IDCard struct {
	ParticipantID string
	Name          string
	Church        string
	Grade         string
	Location      string
}

// Card sheet geometry in millimetres (A4, 2 x 4 cards).
const (
	cardWidth   = 90.0
	cardHeight  = 60.0
	cardColumns = 2
	cardRows    = 4
	marginX     = 12.0
	marginY     = 16.0
	gutter      = 6.0
	qrSize      = 28.0
)

// IDCardRenderer lays out participant cards with a QR code of the participant id.
type IDCardRenderer struct {
	Title string
}

func NewIDCardRenderer(title string) *IDCardRenderer {
	return &IDCardRenderer{Title: title}
}

// Render produces a PDF with one card per entry.
func (r *IDCardRenderer) Render(cards []IDCard) ([]byte, error) {
	if len(cards) == 0 {
		return nil, errors.New("no cards to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	perPage := cardColumns * cardRows
	for i, card := range cards {
		slot := i % perPage
		if slot == 0 {
			pdf.AddPage()
		}
		x := marginX + float64(slot%cardColumns)*(cardWidth+gutter)
		y := marginY + float64(slot/cardColumns)*(cardHeight+gutter)

		if err := r.drawCard(pdf, tr, card, i, x, y); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render id cards: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *IDCardRenderer) drawCard(pdf *gofpdf.Fpdf, tr func(string) string, card IDCard, idx int, x, y float64) error {
	pdf.SetDrawColor(40, 70, 140)
	pdf.SetLineWidth(0.4)
	pdf.Rect(x, y, cardWidth, cardHeight, "D")

	pdf.SetFillColor(40, 70, 140)
	pdf.Rect(x, y, cardWidth, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetXY(x, y+2)
	pdf.CellFormat(cardWidth, 6, tr(r.Title), "", 0, "C", false, 0, "")

	png, err := qrcode.Encode(card.ParticipantID, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode qr for %s: %w", card.ParticipantID, err)
	}
	imgName := fmt.Sprintf("qr-%d", idx)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x+cardWidth-qrSize-3, y+14, qrSize, qrSize, false, opts, 0, "")

	pdf.SetTextColor(20, 20, 20)
	textWidth := cardWidth - qrSize - 8
	pdf.SetFont("Arial", "B", 12)
	pdf.SetXY(x+3, y+14)
	pdf.CellFormat(textWidth, 7, tr(card.Name), "", 2, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, line := range []string{card.Church, gradeLabel(card.Grade), card.Location} {
		if line == "" {
			continue
		}
		pdf.CellFormat(textWidth, 5, tr(line), "", 2, "L", false, 0, "")
	}

	pdf.SetFont("Courier", "B", 11)
	pdf.SetXY(x+3, y+cardHeight-10)
	pdf.CellFormat(cardWidth-6, 6, card.ParticipantID, "", 0, "L", false, 0, "")

	return pdf.Error()
}

// gradeLabel turns "grade-9" into "Grade 9".
func gradeLabel(grade string) string {
	var n int
	if _, err := fmt.Sscanf(grade, "grade-%d", &n); err == nil {
		return fmt.Sprintf("Grade %d", n)
	}
	return grade
}
