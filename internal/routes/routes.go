package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/naveen-b26/ams-back/internal/handlers"
	"github.com/naveen-b26/ams-back/internal/middleware"
	"github.com/naveen-b26/ams-back/internal/ws"
)

// Register wires the attendance HTTP surface. Check-in authenticates via
// its own signed token; everything else requires a staff bearer token.
func Register(r *gin.Engine, h *handlers.AttendanceHandler, hub *ws.Hub, auth *middleware.StaffVerifier) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"success": true,
			"data":    gin.H{"status": "Server is running"},
		})
	})

	grp := r.Group("/attendance")

	grp.POST("/confirm", h.CheckIn)

	authed := grp.Group("", auth.Middleware())
	authed.POST("/StudentRangeData", h.StudentRange)

	staff := authed.Group("", middleware.RequireRoles("faculty", "admin", "deo"))
	staff.POST("/manual/attendance", h.ManualAttendance)
	staff.POST("/getAttendanceByPeriod", h.AttendanceByPeriod)
	staff.POST("/report", h.StudentReport)
	staff.POST("/today", h.TodayAnalysis)
	staff.POST("/monthlyAnalysis", h.MonthlyAnalysis)
	staff.POST("/calculateAttendance", h.CalculateAttendance)

	faculty := authed.Group("", middleware.RequireRoles("faculty"))
	faculty.POST("/token", h.MintToken)

	grp.GET("/feed", hub.Handler(auth))
}
