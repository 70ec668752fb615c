package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"studiocrm-backend/models"
	"studiocrm-backend/utils"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

type DocumentType string

const (
	DocumentInvoice   DocumentType = "invoice"
	DocumentBill      DocumentType = "bill"
	DocumentQuotation DocumentType = "quotation"
)

const (
	invoicePaymentTerm  = 30 * 24 * time.Hour
	defaultFooterNote   = "Thank you for your business!"
	currencyPrefix      = "Rs. "
	pageMarginMM        = 15.0
	tableRowHeightMM    = 8.0
	bottomMarginMM      = 20.0
	invoiceDateLayout   = "02 Jan 2006"
	lineItemDateLayout  = "02/01/2006"
	documentFontFamily  = "Helvetica"
	headerFillGrayLevel = 235
)

// ParseDocumentType defaults to invoice when raw is empty.
func ParseDocumentType(raw string) (DocumentType, error) {
	switch DocumentType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DocumentInvoice:
		return DocumentInvoice, nil
	case DocumentBill:
		return DocumentBill, nil
	case DocumentQuotation:
		return DocumentQuotation, nil
	}
	return "", ErrInvalidDocumentType
}

func (d DocumentType) Title() string {
	switch d {
	case DocumentBill:
		return "BILL"
	case DocumentQuotation:
		return "QUOTATION"
	}
	return "INVOICE"
}

func DocumentFilename(d DocumentType, invoiceNumber string) string {
	return fmt.Sprintf("%s-%s.pdf", d, invoiceNumber)
}

// RenderInvoice draws the order as a PDF. Output depends only on its inputs:
// document dates come from the order, so identical input gives identical bytes.
// The bill-to block always uses the order's customer snapshot.
func RenderInvoice(order *models.Order, studio *models.User, docType DocumentType) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(order.CreatedAt)
	pdf.SetModificationDate(order.CreatedAt)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(true, bottomMarginMM)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	studioName := studio.StudioName
	if studioName == "" {
		studioName = studio.Name
	}
	pdf.SetTitle(docType.Title()+" "+order.InvoiceNumber, true)
	pdf.SetAuthor(studioName, true)
	pdf.SetCreator("studiocrm", false)

	footer := studio.InvoiceFooterNote
	if footer == "" {
		footer = defaultFooterNote
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(documentFontFamily, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, tr(footer), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pageMarginMM

	// Studio header
	pdf.SetFont(documentFontFamily, "B", 18)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(contentW/2, 9, tr(studioName), "", 0, "L", false, 0, "")
	pdf.SetFont(documentFontFamily, "B", 20)
	pdf.CellFormat(contentW/2, 9, docType.Title(), "", 1, "R", false, 0, "")

	pdf.SetFont(documentFontFamily, "", 9)
	pdf.SetTextColor(80, 80, 80)
	for _, line := range nonEmpty(studio.StudioLocation, studio.Address, studio.Mobile, studio.Email) {
		pdf.CellFormat(contentW, 4.5, tr(line), "", 1, "L", false, 0, "")
	}
	if studio.GSTNumber != "" {
		pdf.CellFormat(contentW, 4.5, tr("GSTIN: "+studio.GSTNumber), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pageMarginMM, pdf.GetY(), pageW-pageMarginMM, pdf.GetY())
	pdf.Ln(4)

	// Document meta on the right, bill-to on the left
	top := pdf.GetY()
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont(documentFontFamily, "B", 10)
	pdf.CellFormat(contentW/2, 6, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont(documentFontFamily, "", 9)
	snap := order.CustomerSnapshot
	for _, line := range nonEmpty(snap.Name, snap.Mobile, snap.Email, joinNonEmpty(", ", snap.Address, snap.City)) {
		pdf.CellFormat(contentW/2, 4.5, tr(line), "", 1, "L", false, 0, "")
	}
	leftBottom := pdf.GetY()

	pdf.SetXY(pageMarginMM+contentW/2, top)
	meta := [][2]string{
		{"Number", order.InvoiceNumber},
		{"Date", order.CreatedAt.Format(invoiceDateLayout)},
	}
	if docType == DocumentInvoice {
		meta = append(meta, [2]string{"Due Date", order.CreatedAt.Add(invoicePaymentTerm).Format(invoiceDateLayout)})
	}
	if order.EventDate != nil {
		meta = append(meta, [2]string{"Event Date", order.EventDate.Format(invoiceDateLayout)})
	}
	if order.Venue != "" {
		meta = append(meta, [2]string{"Venue", order.Venue})
	}
	meta = append(meta, [2]string{"Status", strings.ToUpper(order.Status)})
	for _, kv := range meta {
		pdf.SetX(pageMarginMM + contentW/2)
		pdf.SetFont(documentFontFamily, "B", 9)
		pdf.CellFormat(contentW/4, 5, kv[0], "", 0, "R", false, 0, "")
		pdf.SetFont(documentFontFamily, "", 9)
		pdf.CellFormat(contentW/4, 5, tr(kv[1]), "", 1, "R", false, 0, "")
	}
	if pdf.GetY() < leftBottom {
		pdf.SetY(leftBottom)
	}
	pdf.Ln(6)

	// Line items
	cols := []struct {
		title string
		width float64
		align string
	}{
		{"#", 0.06, "C"},
		{"Service", 0.36, "L"},
		{"Date", 0.14, "C"},
		{"Qty", 0.08, "R"},
		{"Days", 0.08, "R"},
		{"Rate", 0.14, "R"},
		{"Total", 0.14, "R"},
	}
	tableHeader := func() {
		pdf.SetFont(documentFontFamily, "B", 9)
		pdf.SetFillColor(headerFillGrayLevel, headerFillGrayLevel, headerFillGrayLevel)
		for _, col := range cols {
			pdf.CellFormat(contentW*col.width, tableRowHeightMM, col.title, "1", 0, col.align, true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(documentFontFamily, "", 9)
	}
	tableHeader()

	for i, item := range order.Items {
		if pdf.GetY()+tableRowHeightMM > pageH-bottomMarginMM {
			pdf.AddPage()
			tableHeader()
		}
		date := ""
		if item.Date != nil {
			date = item.Date.Format(lineItemDateLayout)
		}
		name := item.ServiceName
		if name == "" {
			name = "Service"
		}
		values := []string{
			fmt.Sprintf("%d", i+1),
			name,
			date,
			formatQuantity(item.Qty),
			formatQuantity(item.Days),
			formatMoney(item.SalePrice),
			formatMoney(item.Total),
		}
		for j, col := range cols {
			pdf.CellFormat(contentW*col.width, tableRowHeightMM, fitText(pdf, tr(values[j]), contentW*col.width-2), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// Summary
	totals := Calculate(lineTotals(order.Items), order.Tax, order.Discount, order.AdvanceAmount)
	summary := [][2]string{
		{"Subtotal", formatMoney(totals.Subtotal)},
		{fmt.Sprintf("Tax (%s%%)", formatQuantity(order.Tax)), formatMoney(totals.TaxAmount)},
		{"Discount", "- " + formatMoney(order.Discount)},
		{"Total", formatMoney(order.FinalTotal)},
		{"Advance Paid", formatMoney(order.AdvanceAmount)},
		{"Balance Due", formatMoney(order.DueAmount)},
	}
	labelW, valueW := contentW*0.2, contentW*0.2
	if pdf.GetY()+float64(len(summary))*6 > pageH-bottomMarginMM {
		pdf.AddPage()
	}
	for i, row := range summary {
		style := ""
		if i == 3 || i == len(summary)-1 {
			style = "B"
		}
		pdf.SetX(pageW - pageMarginMM - labelW - valueW)
		pdf.SetFont(documentFontFamily, style, 10)
		pdf.CellFormat(labelW, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, tr(row[1]), "", 1, "R", false, 0, "")
	}

	if docType == DocumentQuotation {
		pdf.Ln(6)
		pdf.SetFont(documentFontFamily, "I", 9)
		pdf.MultiCell(contentW, 5, "This quotation is an estimate and is not a demand for payment.", "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", docType, err)
	}
	return buf.Bytes(), nil
}

func formatMoney(v float64) string {
	d := decimal.NewFromFloat(utils.Finite(v)).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-3:]
	return sign + currencyPrefix + groupThousands(intPart) + frac
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func formatQuantity(v float64) string {
	return decimal.NewFromFloat(utils.Finite(v)).String()
}

// fitText trims s with an ellipsis until it fits in width. s must already be
// translated to the font's single-byte encoding.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	b := []byte(s)
	for len(b) > 0 && pdf.GetStringWidth(string(b)+"...") > width {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinNonEmpty(sep string, values ...string) string {
	return strings.Join(nonEmpty(values...), sep)
}
