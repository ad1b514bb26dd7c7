package capacity

import (
	"testing"
	"time"

	"teamcap/models"
)

// TestBuildExportSummary checks per-week and overall summary statistics.
func TestBuildExportSummary(t *testing.T) {
	dev := &models.User{ID: 1, Username: "dev", Role: models.RoleDeveloper}
	tester := &models.User{ID: 2, Username: "tester", Role: models.RoleTester}
	week2 := monday.AddDate(0, 0, 7)

	devAlloc := &models.Allocation{UserID: 1, WeekStart: monday, Backend: 50}
	weekRows := [][]UserCapacity{
		{
			ComputeUserCapacity(dev, monday, 5, devAlloc, testSettings),
			ComputeUserCapacity(tester, monday, 5, nil, testSettings),
		},
		{
			ComputeUserCapacity(dev, week2, 5, nil, testSettings),
		},
	}

	result := BuildExport(monday, week2, []time.Time{monday, week2}, weekRows)

	if len(result.Weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(result.Weeks))
	}
	if result.Weeks[0].Summary.UniqueUsers != 2 {
		t.Fatalf("expected 2 unique users in week 1, got %d", result.Weeks[0].Summary.UniqueUsers)
	}
	if result.Summary.UniqueUsers != 2 {
		t.Fatalf("expected 2 unique users overall, got %d", result.Summary.UniqueUsers)
	}
	// 32 max hours, 50% allocated in week 1 only
	if !almostEqual(result.Weeks[0].Summary.TotalAllocatedHours, 16) {
		t.Fatalf("expected 16 allocated hours in week 1, got %v", result.Weeks[0].Summary.TotalAllocatedHours)
	}
	// utilization rows: 0.5, 0, 0
	if !almostEqual(result.Summary.AverageUtilization, 0.5/3) {
		t.Fatalf("expected average utilization %v, got %v", 0.5/3, result.Summary.AverageUtilization)
	}
	if result.StartWeek != "2026-01-05" || result.EndWeek != "2026-01-12" {
		t.Fatalf("unexpected week range %s to %s", result.StartWeek, result.EndWeek)
	}
}

// TestExportFilename checks the download filename format.
func TestExportFilename(t *testing.T) {
	got := ExportFilename(monday, monday.AddDate(0, 0, 7))
	want := "team-capacity-export-2026-01-05-to-2026-01-12.xlsx"
	if got != want {
		t.Fatalf("expected filename %q, got %q", want, got)
	}
}

// TestBuildWorkbook ensures the workbook has exactly the two expected sheets
// and one detailed row per user-week under the header.
func TestBuildWorkbook(t *testing.T) {
	dev := &models.User{ID: 1, Username: "dev", FullName: "Dev One", Role: models.RoleDeveloper}
	devAlloc := &models.Allocation{UserID: 1, WeekStart: monday, Backend: 50, Priority: "api work"}
	weekRows := [][]UserCapacity{
		{ComputeUserCapacity(dev, monday, 5, devAlloc, testSettings)},
	}
	result := BuildExport(monday, monday.AddDate(0, 0, 7), []time.Time{monday}, weekRows)

	f, err := BuildWorkbook(result, true)
	if err != nil {
		t.Fatalf("BuildWorkbook returned error: %v", err)
	}

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Detailed Allocations" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	rows, err := f.GetRows("Detailed Allocations")
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 data row, got %d rows", len(rows))
	}

	header := rows[0]
	if header[0] != "Week" || header[len(header)-1] != "Weekly Priority" {
		t.Fatalf("unexpected header: %v", header)
	}
	if rows[1][1] != "dev" {
		t.Fatalf("expected username dev in data row, got %v", rows[1])
	}
	if rows[1][len(rows[1])-1] != "api work" {
		t.Fatalf("expected priority in last column, got %v", rows[1])
	}
}

// TestBuildWorkbookWithoutNotes ensures the priority column is omitted when
// notes are excluded.
func TestBuildWorkbookWithoutNotes(t *testing.T) {
	dev := &models.User{ID: 1, Username: "dev", Role: models.RoleDeveloper}
	weekRows := [][]UserCapacity{
		{ComputeUserCapacity(dev, monday, 5, nil, testSettings)},
	}
	result := BuildExport(monday, monday.AddDate(0, 0, 7), []time.Time{monday}, weekRows)

	f, err := BuildWorkbook(result, false)
	if err != nil {
		t.Fatalf("BuildWorkbook returned error: %v", err)
	}

	rows, err := f.GetRows("Detailed Allocations")
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}
	header := rows[0]
	for _, col := range header {
		if col == "Weekly Priority" {
			t.Fatal("expected priority column to be omitted")
		}
	}
	// 8 fixed columns plus one per category
	want := 8 + len(models.AllocationCategories)
	if len(header) != want {
		t.Fatalf("expected %d header columns, got %d", want, len(header))
	}
}
