package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gymgate/internal/checkin"
	"gymgate/internal/httpapi"
	"gymgate/internal/models"
)

type CheckInHandler struct {
	db       *gorm.DB
	checkins *checkin.Service
}

func NewCheckInHandler(db *gorm.DB, checkins *checkin.Service) *CheckInHandler {
	return &CheckInHandler{db: db, checkins: checkins}
}

type scanInput struct {
	MemberID string `json:"memberId" binding:"required"`
	DeviceID string `json:"deviceId"`
}

// CheckIn handles a kiosk scan. The decision itself is a business outcome,
// so denied scans still answer 200 with status DENIED and the reason; only
// transport-level problems produce error envelopes.
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	h.scan(c, h.checkins.CheckIn)
}

func (h *CheckInHandler) CheckOut(c *gin.Context) {
	h.scan(c, h.checkins.CheckOut)
}

func (h *CheckInHandler) scan(c *gin.Context, record func(code, deviceID string) (*checkin.Result, error)) {
	var input scanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		httpapi.Error(c, http.StatusBadRequest, "memberId is required")
		return
	}

	result, err := record(input.MemberID, input.DeviceID)
	if err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to record attempt")
		return
	}

	payload := gin.H{
		"success":   result.Allowed(),
		"status":    result.Decision.Status,
		"direction": result.Direction,
	}
	if result.Decision.Reason != "" {
		payload["reason"] = result.Decision.Reason
	}
	if result.Member != nil {
		payload["member"] = gin.H{
			"id":               result.Member.ID,
			"memberId":         result.Member.MemberCode,
			"name":             result.Member.Name,
			"email":            result.Member.Email,
			"phone":            result.Member.Phone,
			"membershipStatus": result.Member.EffectiveStatus(time.Now()),
			"startDate":        result.Member.StartDate,
			"endDate":          result.Member.EndDate,
		}
	}

	httpapi.Data(c, http.StatusOK, payload)
}

// GetLogs lists check-in attempts for the admin log table, filtered by
// member, status and date range.
func (h *CheckInHandler) GetLogs(c *gin.Context) {
	page, limit := pagination(c)

	query := h.db.Model(&models.CheckInLog{}).Preload("Member")

	if memberCode := c.Query("memberId"); memberCode != "" {
		query = query.Joins("JOIN members ON members.id = check_in_logs.member_id").
			Where("members.member_code = ?", memberCode)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("check_in_logs.status = ?", status)
	}

	if startDate := c.Query("startDate"); startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			query = query.Where("check_in_time >= ?", t)
		}
	}
	if endDate := c.Query("endDate"); endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			query = query.Where("check_in_time < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to count check-in logs")
		return
	}

	var logs []models.CheckInLog
	if err := query.Order("check_in_time DESC").Offset((page - 1) * limit).Limit(limit).Find(&logs).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to load check-in logs")
		return
	}

	httpapi.Data(c, http.StatusOK, httpapi.NewPaginatedList(logs, total, page, limit))
}

func (h *CheckInHandler) GetLog(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpapi.Error(c, http.StatusBadRequest, "invalid log id")
		return
	}

	var entry models.CheckInLog
	if err := h.db.Preload("Member").First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpapi.Error(c, http.StatusNotFound, "check-in log not found")
		} else {
			httpapi.Error(c, http.StatusInternalServerError, "failed to load check-in log")
		}
		return
	}

	httpapi.Data(c, http.StatusOK, entry)
}

type dailyStat struct {
	Day     string `json:"day"`
	Allowed int64  `json:"allowed"`
	Denied  int64  `json:"denied"`
}

// GetDailyStats returns an allowed/denied time series for the admin
// dashboard, one row per calendar day of the requested window.
func (h *CheckInHandler) GetDailyStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var stats []dailyStat
	err := h.db.Raw(`
		SELECT DATE(check_in_time) AS day,
		       SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS allowed,
		       SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS denied
		FROM check_in_logs
		WHERE check_in_time >= ?
		GROUP BY DATE(check_in_time)
		ORDER BY day ASC
	`, models.CheckInAllowed, models.CheckInDenied, since).Scan(&stats).Error
	if err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	httpapi.Data(c, http.StatusOK, stats)
}

// GetSummary reports attempt totals and how many members are currently
// inside (their latest ALLOWED row is an IN).
func (h *CheckInHandler) GetSummary(c *gin.Context) {
	var allowed, denied, inside int64

	if err := h.db.Model(&models.CheckInLog{}).Where("status = ?", models.CheckInAllowed).Count(&allowed).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	if err := h.db.Model(&models.CheckInLog{}).Where("status = ?", models.CheckInDenied).Count(&denied).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	err := h.db.Raw(`
		SELECT COUNT(*) FROM (
			SELECT member_id,
			       FIRST_VALUE(direction) OVER (PARTITION BY member_id ORDER BY check_in_time DESC, id DESC) AS last_direction
			FROM check_in_logs
			WHERE status = ? AND member_id IS NOT NULL
			GROUP BY member_id
		) latest WHERE latest.last_direction = ?
	`, models.CheckInAllowed, models.DirectionIn).Scan(&inside).Error
	if err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	httpapi.Data(c, http.StatusOK, gin.H{
		"allowedTotal":    allowed,
		"deniedTotal":     denied,
		"currentlyInside": inside,
	})
}
