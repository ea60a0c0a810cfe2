package util

import (
	"fmt"
	"time"

	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Tasks"

var exportHeaders = []string{"ID", "Task", "Done", "Due", "Due type", "Jira key", "Jira summary", "Jira URL", "Created"}

// ExportXLSX writes tasks to a workbook in list order.
func ExportXLSX(tasks []model.Task, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("❌ Failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("❌ Failed to create header style: %w", err)
	}

	for col, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(exportSheet, cell, h)
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for i, t := range tasks {
		row := i + 2
		values := []interface{}{t.ID, t.Text, t.Done, "", "", "", "", "", time.UnixMilli(t.CreatedAt).Format("2006-01-02 15:04")}
		if t.HasDueDate() {
			values[3] = t.DueDate.String()
			values[4] = string(t.DueDateType)
		}
		if t.HasJira() {
			values[5] = t.JiraKey
			values[6] = t.JiraSummary
			values[7] = t.JiraURL
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	f.SetColWidth(exportSheet, "A", "A", 16)
	f.SetColWidth(exportSheet, "B", "B", 48)
	f.SetColWidth(exportSheet, "D", "F", 12)
	f.SetColWidth(exportSheet, "G", "H", 40)
	f.SetColWidth(exportSheet, "I", "I", 18)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("❌ Failed to save %s: %w", path, err)
	}
	return nil
}
