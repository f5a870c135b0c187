package attendance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/naveen-b26/ams-back/internal/models"
)

// BatchWeekly holds one batch's averaged week-by-week attendance rates
// for a month, formatted to two decimal places.
type BatchWeekly struct {
	BatchID           string   `json:"batchId"`
	WeeklyPercentages []string `json:"weeklyPercentages"`
}

// BatchDaily is one batch's presence summary for a single date. A student
// counts as present when any period of the day is marked 1.
type BatchDaily struct {
	BatchID           string `json:"batchId"`
	Name              string `json:"name"`
	Present           int    `json:"present"`
	Absent            int    `json:"absent"`
	PercentagePresent string `json:"percentagePresent"`
	PercentageAbsent  string `json:"percentageAbsent"`
}

// StudentPercentage is a recomputed attendance rate for one student,
// also persisted to the ledger's cached percentage field.
type StudentPercentage struct {
	ID         string `json:"Id"`
	StudentID  string `json:"studentId"`
	Name       string `json:"name"`
	Percentage string `json:"percentage"`
}

func ledgersByStudent(ledgers []models.Ledger) map[string]*models.Ledger {
	m := make(map[string]*models.Ledger, len(ledgers))
	for i := range ledgers {
		m[ledgers[i].StudentID] = &ledgers[i]
	}
	return m
}

// presentDaysIn counts the dates in the window with at least one period
// marked present. A nil ledger counts zero days.
func presentDaysIn(ledger *models.Ledger, dates []string) int {
	if ledger == nil {
		return 0
	}
	present := 0
	for _, date := range dates {
		if ledger.PresentAny(date) {
			present++
		}
	}
	return present
}

// WeeklyPercentages splits the month into consecutive 7-day windows (the
// last may be short) and, per batch and window, averages each enrolled
// student's day-presence rate. Unknown batch ids are skipped.
func (s *Service) WeeklyPercentages(ctx context.Context, batchIDs []string, month, year int) ([]BatchWeekly, error) {
	if len(batchIDs) == 0 {
		return nil, validationf("Please provide a valid array of batch IDs.")
	}
	if month < 1 || month > 12 || year < 1 {
		return nil, validationf("Invalid month or year.")
	}

	weeks := SplitWeeks(MonthDates(time.Month(month), year))

	results := make([]BatchWeekly, 0, len(batchIDs))
	for _, batchID := range batchIDs {
		batch, err := s.roster.Batch(ctx, batchID)
		if err != nil {
			return nil, internal("load batch", err)
		}
		if batch == nil {
			s.log.Warn("monthly analysis: unknown batch", zap.String("batch_id", batchID))
			continue
		}

		ledgers, err := s.store.ForBatch(ctx, batchID)
		if err != nil {
			return nil, internal("load ledgers", err)
		}
		byStudent := ledgersByStudent(ledgers)

		weekly := make([]string, 0, len(weeks))
		for _, week := range weeks {
			total := 0.0
			for _, sid := range batch.StudentIDs {
				days := presentDaysIn(byStudent[sid], week)
				total += float64(days) / float64(len(week)) * 100
			}
			avg := 0.0
			if len(batch.StudentIDs) > 0 {
				avg = total / float64(len(batch.StudentIDs))
			}
			weekly = append(weekly, fmt.Sprintf("%.2f", avg))
		}
		results = append(results, BatchWeekly{BatchID: batchID, WeeklyPercentages: weekly})
	}
	return results, nil
}

// DailyAnalysis computes present/absent head counts and rates for each
// batch on one date. An empty batch yields zero counts and "0.00%" rates
// rather than a division by zero.
func (s *Service) DailyAnalysis(ctx context.Context, date string, batchIDs []string) ([]BatchDaily, error) {
	if len(batchIDs) == 0 {
		return nil, validationf("Please provide a valid array of batch IDs.")
	}
	if _, err := ParseDate(date); err != nil {
		return nil, validationf("Invalid date format.")
	}

	results := make([]BatchDaily, 0, len(batchIDs))
	for _, batchID := range batchIDs {
		batch, err := s.roster.Batch(ctx, batchID)
		if err != nil {
			return nil, internal("load batch", err)
		}
		if batch == nil {
			s.log.Warn("daily analysis: unknown batch", zap.String("batch_id", batchID))
			continue
		}

		ledgers, err := s.store.ForBatch(ctx, batchID)
		if err != nil {
			return nil, internal("load ledgers", err)
		}
		byStudent := ledgersByStudent(ledgers)

		present, absent := 0, 0
		for _, sid := range batch.StudentIDs {
			if ledger := byStudent[sid]; ledger != nil && ledger.PresentAny(date) {
				present++
			} else {
				absent++
			}
		}

		pctPresent, pctAbsent := 0.0, 0.0
		if total := present + absent; total > 0 {
			pctPresent = float64(present) / float64(total) * 100
			pctAbsent = float64(absent) / float64(total) * 100
		}

		results = append(results, BatchDaily{
			BatchID:           batchID,
			Name:              batch.Name,
			Present:           present,
			Absent:            absent,
			PercentagePresent: fmt.Sprintf("%.2f%%", pctPresent),
			PercentageAbsent:  fmt.Sprintf("%.2f%%", pctAbsent),
		})
	}
	return results, nil
}

// RecomputePercentages recalculates each enrolled student's attendance
// rate over the inclusive date range and persists it as the ledger's
// cached percentage. Students with no ledger are skipped with a warning
// and omitted from the result; one student's failure never aborts the
// rest.
func (s *Service) RecomputePercentages(ctx context.Context, batchID, startDate, endDate string) ([]StudentPercentage, error) {
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

	dates := DatesBetween(start, end)

	results := make([]StudentPercentage, 0, len(students))
	for i := range students {
		student := &students[i]
		studentID := student.ID.Hex()

		ledger, err := s.store.Find(ctx, studentID, batchID)
		if err != nil {
			if err == ErrLedgerNotFound {
				s.log.Warn("recompute percentage: no ledger for student",
					zap.String("student_id", studentID), zap.String("batch_id", batchID))
			} else {
				s.log.Error("recompute percentage: load ledger failed",
					zap.String("student_id", studentID), zap.Error(err))
			}
			continue
		}

		percentage := "0%"
		if len(dates) > 0 {
			rate := float64(presentDaysIn(ledger, dates)) / float64(len(dates)) * 100
			percentage = fmt.Sprintf("%.1f%%", rate)
		}

		if err := s.store.SetPercentage(ctx, studentID, batchID, percentage); err != nil {
			s.log.Error("recompute percentage: persist failed",
				zap.String("student_id", studentID), zap.Error(err))
			continue
		}

		results = append(results, StudentPercentage{
			ID:         studentID,
			StudentID:  student.StudentCode,
			Name:       student.Name,
			Percentage: percentage,
		})
	}
	return results, nil
}
