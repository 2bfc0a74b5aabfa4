// Package export renders hospital records as Excel workbooks.
package export

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"github.com/hms/hms/internal/domain/hospital"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const timestampLayout = "2006-01-02 03:04:05 PM"

// Sheet is one worksheet: a bold header row followed by data rows.
type Sheet struct {
	Name   string
	Header []string
	Widths []float64
	Rows   [][]interface{}
}

// Workbook writes the sheets, in order, into a new xlsx file. The first sheet
// is active.
func Workbook(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook needs at least one sheet")
	}
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, sh := range sheets {
		idx, err := f.NewSheet(sh.Name)
		if err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sh.Name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeSheet(f, sh, headerStyle); err != nil {
			return nil, err
		}
	}
	if sheets[0].Name != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("delete default sheet: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sh Sheet, headerStyle int) error {
	header := make([]interface{}, len(sh.Header))
	for i, h := range sh.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sh.Name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sh.Name, err)
	}
	if len(sh.Header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(sh.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sh.Name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style header of %q: %w", sh.Name, err)
		}
	}
	for i, w := range sh.Widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sh.Name, col, col, w); err != nil {
			return fmt.Errorf("set width of %s in %q: %w", col, sh.Name, err)
		}
	}
	for r, row := range sh.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sh.Name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %q: %w", r+2, sh.Name, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampLayout)
}

// AuditLogs renders the audit trail in the order given.
func AuditLogs(logs []hospital.AuditLog) ([]byte, error) {
	sh := Sheet{
		Name:   "Audit Logs",
		Header: []string{"ID", "Timestamp", "Staff ID", "Staff Name", "Role", "Username", "Action"},
		Widths: []float64{12, 24, 10, 22, 14, 16, 60},
	}
	for _, l := range logs {
		sh.Rows = append(sh.Rows, []interface{}{
			l.ID, formatTime(l.Timestamp), l.StaffID, l.StaffName, string(l.StaffRole), l.Username, l.Action,
		})
	}
	return Workbook(sh)
}

// Bills renders one summary row per bill and a second sheet with every line.
func Bills(bills []hospital.Bill) ([]byte, error) {
	summary := Sheet{
		Name:   "Bills",
		Header: []string{"Bill ID", "Timestamp", "Patient ID", "Patient Name", "Payment Method", "Items", "Total"},
		Widths: []float64{16, 24, 12, 22, 16, 8, 12},
	}
	lines := Sheet{
		Name:   "Bill Lines",
		Header: []string{"Bill ID", "Medicine ID", "Medicine", "Quantity", "Unit Price", "Line Total"},
		Widths: []float64{16, 12, 24, 10, 12, 12},
	}
	for _, b := range bills {
		summary.Rows = append(summary.Rows, []interface{}{
			b.ID, formatTime(b.Timestamp), b.PatientID, b.PatientName, string(b.PaymentMethod), len(b.Medicines), b.TotalAmount,
		})
		for _, m := range b.Medicines {
			lines.Rows = append(lines.Rows, []interface{}{
				b.ID, m.ID, m.Name, m.Quantity, m.SellPrice, float64(m.Quantity) * m.SellPrice,
			})
		}
	}
	return Workbook(summary, lines)
}

// Attachment sends data as a downloadable xlsx file.
func Attachment(c echo.Context, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, ContentTypeXLSX, data)
}
