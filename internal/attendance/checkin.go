package attendance

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/naveen-b26/ams-back/internal/token"
)

// Check-in outcome messages. Duplicate scans from flaky client networks
// are expected; "already marked" is a success, never an error, so clients
// can retry blindly.
const (
	MsgMarked        = "Attendance marked successfully."
	MsgAlreadyMarked = "Attendance already marked."
)

// FeedEventCheckIn is published on every new check-in mark.
const FeedEventCheckIn = "CHECK_IN"

// ProcessCheckIn validates a scanned check-in token and marks the token's
// period present for studentID on today's date. Today is taken from the
// injected clock, not from anything inside the token, so a token minted
// just before midnight marks the date the scan lands on.
func (s *Service) ProcessCheckIn(ctx context.Context, rawToken, studentID string) (string, error) {
	if studentID == "" {
		return "", validationf("Student ID is required.")
	}

	claims, err := s.tokens.Verify(rawToken, s.clock.Now())
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return "", authErr("Token expired.", err)
		}
		return "", authErr("Invalid token.", err)
	}

	batch, err := s.roster.Batch(ctx, claims.BatchID)
	if err != nil {
		return "", internal("load batch", err)
	}
	if batch == nil || !batch.HasStudent(studentID) {
		return "", notFound("Batch not found or student is not enrolled.")
	}

	if !ValidPeriod(claims.Period) {
		return "", validationf("Invalid period number.")
	}
	periodIndex := claims.Period - 1

	if _, err := s.store.GetOrCreate(ctx, studentID, claims.BatchID); err != nil {
		return "", internal("get or create ledger", err)
	}

	today := FormatDate(s.clock.Now())
	res, err := s.store.MarkPeriod(ctx, studentID, claims.BatchID, today, periodIndex, true)
	if err != nil {
		return "", internal("mark period", err)
	}

	// A concurrent duplicate scan loses the pre-image race and lands here;
	// the stored state is identical either way.
	if !res.Changed && res.Previous == 1 {
		return MsgAlreadyMarked, nil
	}

	s.log.Info("check-in marked",
		zap.String("student_id", studentID),
		zap.String("batch_id", claims.BatchID),
		zap.String("date", today),
		zap.Int("period", claims.Period),
	)
	s.publish(FeedEventCheckIn, map[string]interface{}{
		"studentId": studentID,
		"batchId":   claims.BatchID,
		"subjectId": claims.SubjectID,
		"date":      today,
		"period":    claims.Period,
	})
	return MsgMarked, nil
}
