package attendance

import (
	"context"
)

// DayAttendance is one day of a student's dense range view. Attend is the
// stored six-slot vector, or empty when the day was never marked.
type DayAttendance struct {
	Date   string `json:"date"`
	Attend []int  `json:"attend"`
}

// ReportRow is one roster line of a period report.
type ReportRow struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Status    string `json:"attendanceStatus"`
}

// Report statuses. "Not Marked" covers both an absent date key and a
// stored day that decodes to the wrong shape.
const (
	StatusPresent   = "Present"
	StatusAbsent    = "Absent"
	StatusNotMarked = "Not Marked"
)

// PresentInPeriod returns the ids of enrolled students whose ledger has
// the given period marked present on date. Students with no ledger or no
// entry for the date are never present.
func (s *Service) PresentInPeriod(ctx context.Context, batchID, date string, period int) ([]string, error) {
	if batchID == "" || date == "" {
		return nil, validationf("Invalid or incomplete request payload.")
	}
	if _, err := ParseDate(date); err != nil {
		return nil, validationf("Invalid date format.")
	}
	if !ValidPeriod(period) {
		return nil, validationf("Invalid period number.")
	}

	batch, err := s.roster.Batch(ctx, batchID)
	if err != nil {
		return nil, internal("load batch", err)
	}
	if batch == nil {
		return nil, notFound("Batch not found.")
	}

	ledgers, err := s.store.ForBatch(ctx, batchID)
	if err != nil {
		return nil, internal("load ledgers", err)
	}

	enrolled := make(map[string]bool, len(batch.StudentIDs))
	for _, sid := range batch.StudentIDs {
		enrolled[sid] = true
	}

	periodIndex := period - 1
	present := make([]string, 0)
	for i := range ledgers {
		ledger := &ledgers[i]
		if !enrolled[ledger.StudentID] {
			continue
		}
		if day, ok := ledger.Day(date); ok && day[periodIndex] == 1 {
			present = append(present, ledger.StudentID)
		}
	}
	return present, nil
}

// RangeForStudent returns one entry per calendar day from start to end
// inclusive, in ascending order, gap-filling days the sparse ledger never
// stored. The student is looked up by institution code.
func (s *Service) RangeForStudent(ctx context.Context, studentCode, startDate, endDate string) ([]DayAttendance, error) {
	student, err := s.roster.StudentByCode(ctx, studentCode)
	if err != nil {
		return nil, internal("load student", err)
	}
	if student == nil {
		return nil, notFound("Student not found.")
	}

	start, err := ParseDate(startDate)
	if err != nil {
		return nil, validationf("Invalid date format.")
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, validationf("Invalid date format.")
	}
	if start.After(end) {
		return nil, validationf("Start date must be before end date.")
	}

	ledger, err := s.store.FindByStudent(ctx, student.ID.Hex())
	if err != nil && err != ErrLedgerNotFound {
		return nil, internal("load ledger", err)
	}

	dates := DatesBetween(start, end)
	result := make([]DayAttendance, 0, len(dates))
	for _, date := range dates {
		day, ok := ledger.Day(date)
		if !ok {
			day = []int{}
		}
		result = append(result, DayAttendance{Date: date, Attend: day})
	}
	return result, nil
}

// StudentReport returns a Present/Absent/Not Marked row for every student
// enrolled in the batch, for one date and period, in roster order.
func (s *Service) StudentReport(ctx context.Context, batchID, date string, period int) ([]ReportRow, error) {
	if batchID == "" || date == "" {
		return nil, validationf("Invalid or incomplete request payload.")
	}
	if _, err := ParseDate(date); err != nil {
		return nil, validationf("Invalid date format.")
	}
	if !ValidPeriod(period) {
		return nil, validationf("Invalid period number.")
	}

	batch, err := s.roster.Batch(ctx, batchID)
	if err != nil {
		return nil, internal("load batch", err)
	}
	if batch == nil {
		return nil, notFound("Batch not found.")
	}

	students, err := s.roster.Students(ctx, batch.StudentIDs)
	if err != nil {
		return nil, internal("load students", err)
	}

	ledgers, err := s.store.ForBatch(ctx, batchID)
	if err != nil {
		return nil, internal("load ledgers", err)
	}
	byStudent := ledgersByStudent(ledgers)

	periodIndex := period - 1
	report := make([]ReportRow, 0, len(students))
	for i := range students {
		student := &students[i]
		row := ReportRow{StudentID: student.StudentCode, Name: student.Name, Status: StatusNotMarked}
		if day, ok := byStudent[student.ID.Hex()].Day(date); ok {
			if day[periodIndex] == 1 {
				row.Status = StatusPresent
			} else {
				row.Status = StatusAbsent
			}
		}
		report = append(report, row)
	}
	return report, nil
}
