package attendance

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

const (
	recordsSheet = "Attendance"
	summarySheet = "Summary"
)

var (
	recordHeaders  = []string{"Employee ID", "Date", "Status", "Check In", "Check Out", "Working Hours", "Total Hours"}
	summaryHeaders = []string{"Employee ID", "Days", "Present", "Late", "Absent", "Leave", "Working Hours", "Attendance Rate (%)"}
)

// Export writes an xlsx workbook with one row per record and one summary row per
// employee, employees in the given order. No employees means the whole roster.
func (a *AttendanceServiceImpl) Export(ctx context.Context, w io.Writer, employeeIDs []string, dates attendance.DateRange) error {
	if len(employeeIDs) == 0 {
		var err error
		employeeIDs, err = a.roster.ListEmployeeIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", recordsSheet)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeRow(f, recordsSheet, 1, toCells(recordHeaders)); err != nil {
		return err
	}
	if err := writeRow(f, summarySheet, 1, toCells(summaryHeaders)); err != nil {
		return err
	}

	row := 2
	for i, employeeID := range employeeIDs {
		records, err := collect(a.ListForEmployee(ctx, employeeID, dates))
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := writeRow(f, recordsSheet, row, recordCells(rec)); err != nil {
				return err
			}
			row++
		}
		if err := writeRow(f, summarySheet, i+2, summaryCells(employeeID, records)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(headers []string) []interface{} {
	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return cells
}

func recordCells(rec attendance.Record) []interface{} {
	checkIn, checkOut, hours, total := "", "", "", 0.0
	if rec.CheckIn != nil {
		checkIn = rec.CheckIn.String()
	}
	if rec.CheckOut != nil {
		checkOut = rec.CheckOut.String()
	}
	if d, ok := rec.WorkingHours(); ok {
		hours, total = d.Formatted, d.TotalHours
	}
	return []interface{}{
		rec.EmployeeID,
		rec.Date.Format(timemath.DateLayout),
		string(rec.Status),
		checkIn,
		checkOut,
		hours,
		total,
	}
}

func summaryCells(employeeID string, records []attendance.Record) []interface{} {
	var present, late, absent, onLeave int
	for _, r := range records {
		switch r.Status {
		case attendance.StatusPresent:
			present++
		case attendance.StatusLate:
			late++
		case attendance.StatusAbsent:
			absent++
		case attendance.StatusLeave:
			onLeave++
		}
	}
	return []interface{}{
		employeeID,
		len(records),
		present,
		late,
		absent,
		onLeave,
		attendance.AggregateWorkingHours(records).Formatted,
		attendance.AttendanceRate(records),
	}
}
