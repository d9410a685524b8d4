// Package export builds the Excel workbook users download with /export or
// from the dashboard: per-day totals, styled header and an embedded line
// chart of the period.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cirodil/tenhens/internal/service"
)

const sheetName = "Яйценоскость"

// Excel renders per-day stats into an xlsx workbook and returns its bytes.
// Returns nil bytes when there is nothing to export.
func Excel(stats []service.DayStat) ([]byte, error) {
	if len(stats) == 0 {
		return nil, nil
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", sheetName)
	f.SetCellValue(sheetName, "A1", "Дата")
	f.SetCellValue(sheetName, "B1", "Количество яиц")
	f.SetCellValue(sheetName, "C1", "ID записей")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "C1", headerStyle); err != nil {
		return nil, err
	}

	idWidth := len("ID записей")
	for i, day := range stats {
		row := i + 2
		ids := joinIDs(day.IDs)
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), day.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), day.Total)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), ids)
		if len(ids) > idWidth {
			idWidth = len(ids)
		}
	}

	rightAlign, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, err
	}
	lastRow := len(stats) + 1
	if err := f.SetCellStyle(sheetName, "C2", fmt.Sprintf("C%d", lastRow), rightAlign); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 18)
	_ = f.SetColWidth(sheetName, "C", "C", float64(idWidth)+2)

	if err := addChart(f, lastRow); err != nil {
		return nil, fmt.Errorf("add chart: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// addChart embeds a line chart of column B against the dates in column A.
func addChart(f *excelize.File, lastRow int) error {
	return f.AddChart(sheetName, "E2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", sheetName),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetName, lastRow),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheetName, lastRow),
		}},
		Title: []excelize.RichTextRun{{Text: "Яйценоскость"}},
		XAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Дата"}}},
		YAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Количество яиц"}}},
	})
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

// Filename builds the attachment name for a date range.
func Filename(userID int64, from, to string) string {
	return fmt.Sprintf("egg_stats_%d_%s_to_%s.xlsx", userID, from, to)
}
