package application

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"
)

// amountPrinter groups thousands in receipt amounts.
var amountPrinter = message.NewPrinter(language.English)

// Receipt is a rendered booking receipt.
type Receipt struct {
	Filename string
	Content  []byte
}

// ReceiptService renders one-page PDF receipts for bookings.
type ReceiptService struct {
	bookings *BookingService
	logger   *zap.Logger
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(bookings *BookingService, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{bookings: bookings, logger: logger}
}

// Render builds the receipt for a booking visible to actor.
func (s *ReceiptService) Render(ctx context.Context, bookingID uuid.UUID, actor Actor) (*Receipt, error) {
	bk, err := s.bookings.GetBooking(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}

	content, err := renderReceiptPDF(bk)
	if err != nil {
		s.logger.Error("failed to render receipt", zap.String("booking_id", bookingID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return &Receipt{
		Filename: fmt.Sprintf("receipt-%s.pdf", bk.Reference),
		Content:  content,
	}, nil
}

func renderReceiptPDF(bk *BookingDTO) ([]byte, error) {
	pdf, err := buildReceipt(bk)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildReceipt(bk *BookingDTO) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(15, 285, 195, 285)
		pdf.SetY(288)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "Thank you for booking with us.", "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// --- Header ---
	pdf.SetFont("Helvetica", "B", 22)
	pdf.Cell(0, 15, "BOOKING RECEIPT")
	pdf.Ln(18)
	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(8)

	// --- Summary + QR ---
	yStart := pdf.GetY()
	pdf.SetFillColor(245, 245, 245)
	pdf.Rect(15, yStart, 120, 45, "F")

	pdf.SetXY(20, yStart+7)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "SUMMARY")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	writeLine(pdf, "Reference", bk.Reference)
	writeLine(pdf, "Status", strings.ToUpper(bk.Status))
	writeLine(pdf, "Booked on", bk.CreatedAt.Format("2 Jan 2006"))

	qr, err := qrcode.Encode(bk.Reference, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 145, yStart, 45, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")

	pdf.SetY(yStart + 55)

	// --- Parties ---
	drawSectionTitle(pdf, "PARTIES")
	pdf.SetFont("Helvetica", "", 12)
	writeLine(pdf, "Client", bk.ClientName)
	writeLine(pdf, "Celebrity", bk.CelebrityName)
	pdf.Ln(4)

	// --- Engagement ---
	drawSectionTitle(pdf, "ENGAGEMENT")
	pdf.SetFont("Helvetica", "", 12)
	writeLine(pdf, "Package", bk.Package.Title)
	if bk.Package.Duration != "" {
		writeLine(pdf, "Duration", bk.Package.Duration)
	}
	writeLine(pdf, "Date", bk.Date)
	writeLine(pdf, "Time", bk.Time)
	writeLine(pdf, "Location", bk.Location)
	pdf.MultiCell(0, 7, pdfText("Event: "+bk.EventDescription), "", "", false)
	pdf.Ln(4)

	// --- Payment ---
	drawSectionTitle(pdf, "PAYMENT")
	pdf.SetFont("Helvetica", "", 12)
	writeLine(pdf, "Package price", formatMinor(bk.Package.PriceMinor, bk.Currency))
	writeLine(pdf, "Service fee", formatMinor(bk.FeeMinor, bk.Currency))
	pdf.SetFont("Helvetica", "B", 12)
	writeLine(pdf, "Total", formatMinor(bk.TotalMinor, bk.Currency))
	pdf.SetFont("Helvetica", "", 12)
	if bk.PaymentReference != "" {
		writeLine(pdf, "Payment reference", bk.PaymentReference)
	}
	if bk.RefundedAmountMinor > 0 {
		writeLine(pdf, "Refunded", formatMinor(bk.RefundedAmountMinor, bk.Currency))
	}

	return pdf, pdf.Error()
}

func drawSectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
}

func writeLine(pdf *gofpdf.Fpdf, label, value string) {
	pdf.Cell(0, 7, pdfText(fmt.Sprintf("%s: %s", label, value)))
	pdf.Ln(6)
}

// pdfText converts s to the cp1252 bytes the core PDF fonts expect. Letters
// the code page lacks, such as the Yoruba Ọ, keep their base letter and drop
// the mark.
func pdfText(s string) string {
	enc := charmap.Windows1252.NewEncoder()
	var b strings.Builder
	for _, r := range norm.NFC.String(s) {
		if out, err := enc.String(string(r)); err == nil {
			b.WriteString(out)
			continue
		}
		for _, d := range norm.NFD.String(string(r)) {
			if unicode.Is(unicode.Mn, d) {
				continue
			}
			if out, err := enc.String(string(d)); err == nil {
				b.WriteString(out)
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}

// formatMinor renders minor units as "NGN 12,345.67".
func formatMinor(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s %s%s.%02d", currency, sign, amountPrinter.Sprintf("%d", amount/100), amount%100)
}
