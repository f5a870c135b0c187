package attendance

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FeedEventManual is published once per applied manual roster.
const FeedEventManual = "MANUAL_ATTENDANCE"

// ManualEntry is one row of a faculty-submitted roster. Status is a
// pointer so a missing field is distinguishable from an explicit false.
type ManualEntry struct {
	StudentID string `json:"student_id"`
	Status    *bool  `json:"status"`
}

// ManualOutcome reports the result for one input entry, in input order.
type ManualOutcome struct {
	StudentID string `json:"student_id"`
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
}

// ApplyManual applies a bulk roster of present/absent marks for one
// batch+period on one date (today when date is empty). Entries are
// processed independently: a bad row records a failure outcome and the
// rest still commit. Unlike check-in, manual entry overwrites, so a
// present mark can be flipped back to absent.
func (s *Service) ApplyManual(ctx context.Context, batchID, date string, period int, entries []ManualEntry) ([]ManualOutcome, error) {
	if batchID == "" || len(entries) == 0 {
		return nil, validationf("Invalid or incomplete request payload.")
	}
	if !ValidPeriod(period) {
		return nil, validationf("Invalid period number.")
	}

	if date == "" {
		date = FormatDate(s.clock.Now())
	} else if _, err := ParseDate(date); err != nil {
		return nil, validationf("Invalid date format.")
	}

	batch, err := s.roster.Batch(ctx, batchID)
	if err != nil {
		return nil, internal("load batch", err)
	}
	if batch == nil {
		return nil, notFound("Batch not found.")
	}

	periodIndex := period - 1
	outcomes := make([]ManualOutcome, 0, len(entries))
	applied := 0

	for _, entry := range entries {
		if entry.StudentID == "" || entry.Status == nil {
			outcomes = append(outcomes, ManualOutcome{
				StudentID: entry.StudentID,
				Message:   "Invalid student data.",
			})
			continue
		}

		if _, err := s.store.GetOrCreate(ctx, entry.StudentID, batchID); err != nil {
			s.log.Error("manual entry: get or create ledger failed",
				zap.String("student_id", entry.StudentID), zap.Error(err))
			outcomes = append(outcomes, ManualOutcome{
				StudentID: entry.StudentID,
				Message:   "Failed to update attendance.",
			})
			continue
		}

		if _, err := s.store.MarkPeriod(ctx, entry.StudentID, batchID, date, periodIndex, *entry.Status); err != nil {
			s.log.Error("manual entry: mark period failed",
				zap.String("student_id", entry.StudentID), zap.Error(err))
			outcomes = append(outcomes, ManualOutcome{
				StudentID: entry.StudentID,
				Message:   "Failed to update attendance.",
			})
			continue
		}

		applied++
		outcomes = append(outcomes, ManualOutcome{
			StudentID: entry.StudentID,
			OK:        true,
			Message:   fmt.Sprintf("Attendance marked successfully for period %d.", period),
		})
	}

	if applied > 0 {
		s.publish(FeedEventManual, map[string]interface{}{
			"batchId": batchID,
			"date":    date,
			"period":  period,
			"applied": applied,
		})
	}
	return outcomes, nil
}
