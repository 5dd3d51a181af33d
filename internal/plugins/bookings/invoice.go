package bookings

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

// invoiceNow is swapped in tests.
var invoiceNow = time.Now

// renderInvoice lays out a one-page A4 invoice for a quoted booking.
func renderInvoice(b *Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+InvoiceNumber(b), false)
	pdf.SetCreator("Plus Vans admin", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Invoice no: "+InvoiceNumber(b))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+invoiceNow().Format("02 Jan 2006"))
	pdf.Ln(6)
	if b.CollectionTime != nil {
		pdf.Cell(0, 6, "Collection: "+b.CollectionTime.Format("02 Jan 2006 15:04"))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fallback(b.CustomerName, "Customer")))
	pdf.Ln(6)
	if b.CustomerEmail != "" {
		pdf.Cell(0, 6, tr(b.CustomerEmail))
		pdf.Ln(6)
	}
	pdf.MultiCell(0, 6, tr(strings.TrimSpace(b.Address+"\n"+b.Postcode)), "", "", false)
	pdf.Ln(6)

	pc := b.Quote.Breakdown.PriceComponents
	lines := []struct {
		label  string
		amount float64
	}{
		{"Base rate", pc.BaseRate},
		{"Hazard surcharge", pc.HazardSurcharge},
		{"Access fee", pc.AccessFee},
		{"Dismantling fee", pc.DismantlingFee},
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range lines {
		if l.amount == 0 {
			continue
		}
		pdf.CellFormat(130, 7, l.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, tr(formatGBP(l.amount)), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(130, 9, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, tr(formatGBP(pc.Total)), "T", 1, "R", false, 0, "")

	if vol := b.Quote.Breakdown.Volume; vol != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "Estimated volume: "+vol)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering invoice: %w", err)
	}
	return buf.Bytes(), nil
}

// InvoiceNumber derives a stable invoice number from the booking ID. Stored
// invoices reuse it so the list and the PDF agree.
func InvoiceNumber(b *Booking) string {
	id := strings.ReplaceAll(b.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "INV-" + b.CreatedAt.Format("200601") + "-" + strings.ToUpper(id)
}

func invoiceFilename(b *Booking) string {
	return strings.ToLower(InvoiceNumber(b)) + ".pdf"
}

func formatGBP(v float64) string {
	return fmt.Sprintf("£%.2f", v)
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
