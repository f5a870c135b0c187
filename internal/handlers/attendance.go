package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/naveen-b26/ams-back/internal/attendance"
	"github.com/naveen-b26/ams-back/internal/token"
	"github.com/naveen-b26/ams-back/internal/utils"
)

const requestTimeout = 5 * time.Second

// AttendanceHandler exposes the attendance core over HTTP.
type AttendanceHandler struct {
	svc    *attendance.Service
	tokens *token.Service
	clock  attendance.Clock
	log    *zap.Logger
}

func NewAttendanceHandler(svc *attendance.Service, tokens *token.Service, clock attendance.Clock, log *zap.Logger) *AttendanceHandler {
	if clock == nil {
		clock = attendance.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AttendanceHandler{svc: svc, tokens: tokens, clock: clock, log: log}
}

func (h *AttendanceHandler) respondErr(c *gin.Context, err error) {
	status := 500
	switch attendance.KindOf(err) {
	case attendance.KindValidation:
		status = 400
	case attendance.KindAuth:
		status = 401
	case attendance.KindForbidden:
		status = 403
	case attendance.KindNotFound:
		status = 404
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	utils.ErrorResponse(c, status, attendance.Message(err))
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

type checkInRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// CheckIn handles a QR scan: the check-in token rides the Authorization
// header, the scanning student's id rides the body.
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		utils.MessageResponse(c, 401, "Authorization token missing.")
		return
	}
	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.MessageResponse(c, 400, "Student ID is required.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.svc.ProcessCheckIn(ctx, rawToken, req.StudentID)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	utils.MessageResponse(c, 200, msg)
}

type manualRequest struct {
	BatchID  string                   `json:"batch_id" binding:"required"`
	Date     string                   `json:"date"`
	Period   int                      `json:"period" binding:"required"`
	Students []attendance.ManualEntry `json:"students" binding:"required"`
}

func (h *AttendanceHandler) ManualAttendance(c *gin.Context) {
	var req manualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid or incomplete request payload.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	results, err := h.svc.ApplyManual(ctx, req.BatchID, req.Date, req.Period, req.Students)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(200, gin.H{
		"message": "Bulk attendance update completed.",
		"results": results,
	})
}

type periodQueryRequest struct {
	Date    string `json:"date" binding:"required"`
	BatchID string `json:"batch_id" binding:"required"`
	Period  int    `json:"period" binding:"required"`
}

func (h *AttendanceHandler) AttendanceByPeriod(c *gin.Context) {
	var req periodQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid or incomplete request payload.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	present, err := h.svc.PresentInPeriod(ctx, req.BatchID, req.Date, req.Period)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(200, gin.H{"presentStudents": present})
}

func (h *AttendanceHandler) StudentReport(c *gin.Context) {
	var req periodQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid or incomplete request payload")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := h.svc.StudentReport(ctx, req.BatchID, req.Date, req.Period)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(200, gin.H{"report": report})
}

type dailyAnalysisRequest struct {
	Date     string   `json:"date" binding:"required"`
	BatchIDs []string `json:"batchIds" binding:"required"`
}

func (h *AttendanceHandler) TodayAnalysis(c *gin.Context) {
	var req dailyAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Please provide a valid array of batch IDs")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	analysis, err := h.svc.DailyAnalysis(ctx, req.Date, req.BatchIDs)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(200, analysis)
}

type monthlyAnalysisRequest struct {
	BatchIDs []string `json:"batchIds" binding:"required"`
	Month    int      `json:"month" binding:"required"`
	Year     int      `json:"year" binding:"required"`
}

func (h *AttendanceHandler) MonthlyAnalysis(c *gin.Context) {
	var req monthlyAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid or incomplete request payload.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	batches, err := h.svc.WeeklyPercentages(ctx, req.BatchIDs, req.Month, req.Year)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(200, gin.H{"batches": batches})
}

type rangeRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

func (h *AttendanceHandler) StudentRange(c *gin.Context) {
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid or incomplete request payload.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	days, err := h.svc.RangeForStudent(ctx, req.StudentID, req.StartDate, req.EndDate)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(200, days)
}

type recomputeRequest struct {
	BatchID   string `json:"batchId" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

func (h *AttendanceHandler) CalculateAttendance(c *gin.Context) {
	var req recomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid or incomplete request payload.")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	results, err := h.svc.RecomputePercentages(ctx, req.BatchID, req.StartDate, req.EndDate)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(200, results)
}

type mintTokenRequest struct {
	BatchID   string `json:"batchId" binding:"required"`
	SubjectID string `json:"subjectId" binding:"required"`
	Period    int    `json:"period" binding:"required"`
}

// MintToken issues a short-lived check-in token for the calling faculty's
// class, to be rendered as a QR code.
func (h *AttendanceHandler) MintToken(c *gin.Context) {
	var req mintTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, 400, "Invalid or incomplete request payload.")
		return
	}
	if !attendance.ValidPeriod(req.Period) {
		utils.ErrorResponse(c, 400, "Invalid period number.")
		return
	}

	facultyID := c.GetString("userId")
	signed, expiresAt, err := h.tokens.Mint(req.BatchID, req.SubjectID, facultyID, req.Period, h.clock.Now())
	if err != nil {
		h.log.Error("mint check-in token failed", zap.Error(err))
		utils.ErrorResponse(c, 500, "Internal server error.")
		return
	}
	c.JSON(200, gin.H{
		"token":     signed,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}
