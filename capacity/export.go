package capacity

import (
	"fmt"
	"time"

	"teamcap/models"

	"github.com/xuri/excelize/v2"
)

// WeekSummary holds per-week aggregate statistics for the historical export.
type WeekSummary struct {
	UniqueUsers         int     `json:"unique_users"`
	TotalAllocatedHours float64 `json:"total_allocated_hours"`
	TotalAvailableHours float64 `json:"total_available_hours"`
	AverageUtilization  float64 `json:"average_utilization"`
}

// ExportWeek groups one week's per-user capacity rows with their summary.
type ExportWeek struct {
	WeekStart string         `json:"week_start"`
	Users     []UserCapacity `json:"users"`
	Summary   WeekSummary    `json:"summary"`
}

// ExportResult is the JSON shape of the historical aggregation.
type ExportResult struct {
	StartWeek   string       `json:"start_week"`
	EndWeek     string       `json:"end_week"`
	GeneratedAt time.Time    `json:"generated_at"`
	Weeks       []ExportWeek `json:"weeks"`
	Summary     WeekSummary  `json:"summary"`
}

func summarize(rows []UserCapacity) WeekSummary {
	summary := WeekSummary{}
	seen := make(map[uint]bool)
	var utilizationSum float64
	var utilizationCount int

	for _, row := range rows {
		if !seen[row.UserID] {
			seen[row.UserID] = true
			summary.UniqueUsers++
		}
		summary.TotalAllocatedHours += row.AllocatedHours
		summary.TotalAvailableHours += row.AvailableHours
		if row.MaxHours > 0 {
			utilizationSum += row.AllocatedHours / row.MaxHours
			utilizationCount++
		}
	}
	if utilizationCount > 0 {
		summary.AverageUtilization = utilizationSum / float64(utilizationCount)
	}
	return summary
}

// BuildExport aggregates per-week capacity rows into the export structure.
// weekRows must be ordered by week.
func BuildExport(startWeek, endWeek time.Time, weekStarts []time.Time, weekRows [][]UserCapacity) *ExportResult {
	result := &ExportResult{
		StartWeek:   startWeek.Format("2006-01-02"),
		EndWeek:     endWeek.Format("2006-01-02"),
		GeneratedAt: time.Now().UTC(),
	}

	var all []UserCapacity
	for i, rows := range weekRows {
		result.Weeks = append(result.Weeks, ExportWeek{
			WeekStart: weekStarts[i].Format("2006-01-02"),
			Users:     rows,
			Summary:   summarize(rows),
		})
		all = append(all, rows...)
	}
	result.Summary = summarize(all)
	return result
}

// ExportFilename returns the download filename for the given week range.
func ExportFilename(startWeek, endWeek time.Time) string {
	return fmt.Sprintf("team-capacity-export-%s-to-%s.xlsx",
		startWeek.Format("2006-01-02"), endWeek.Format("2006-01-02"))
}

const (
	sheetSummary  = "Summary"
	sheetDetailed = "Detailed Allocations"
)

// BuildWorkbook renders the export as a two-sheet spreadsheet. The detailed
// sheet holds one row per user per week; the priority column is included only
// when includeNotes is set.
func BuildWorkbook(result *ExportResult, includeNotes bool) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetDetailed); err != nil {
		return nil, err
	}

	summaryRows := [][]interface{}{
		{"Team Capacity Export"},
		{},
		{"Generated At", result.GeneratedAt.Format(time.RFC3339)},
		{"Start Week", result.StartWeek},
		{"End Week", result.EndWeek},
		{"Weeks", len(result.Weeks)},
		{},
		{"Unique Users", result.Summary.UniqueUsers},
		{"Total Allocated Hours", result.Summary.TotalAllocatedHours},
		{"Total Available Hours", result.Summary.TotalAvailableHours},
		{"Average Utilization", result.Summary.AverageUtilization},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return nil, err
		}
	}

	header := []interface{}{
		"Week", "Username", "Full Name", "Role", "Working Days",
		"Max Hours", "Total Allocation %", "Allocated Hours",
	}
	for _, name := range models.AllocationCategories {
		header = append(header, name+" %")
	}
	if includeNotes {
		header = append(header, "Weekly Priority")
	}
	if err := f.SetSheetRow(sheetDetailed, "A1", &header); err != nil {
		return nil, err
	}

	rowIdx := 2
	for _, week := range result.Weeks {
		for _, uc := range week.Users {
			row := []interface{}{
				week.WeekStart, uc.Username, uc.FullName, string(uc.Role),
				uc.WorkingDays, uc.MaxHours, uc.TotalPercent, uc.AllocatedHours,
			}
			if uc.Allocation != nil {
				for _, pct := range uc.Allocation.CategoryValues() {
					row = append(row, pct)
				}
			} else {
				for range models.AllocationCategories {
					row = append(row, 0.0)
				}
			}
			if includeNotes {
				priority := ""
				if uc.Allocation != nil {
					priority = uc.Allocation.Priority
				}
				row = append(row, priority)
			}

			cell, err := excelize.CoordinatesToCellName(1, rowIdx)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheetDetailed, cell, &row); err != nil {
				return nil, err
			}
			rowIdx++
		}
	}

	return f, nil
}
