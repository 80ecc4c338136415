package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gymgate/internal/httpapi"
	"gymgate/internal/lifecycle"
	"gymgate/internal/models"
)

// SimulationHandler lets admins dry-run the admission rules for a member
// without producing a log entry or notification.
type SimulationHandler struct {
	db *gorm.DB
}

func NewSimulationHandler(db *gorm.DB) *SimulationHandler {
	return &SimulationHandler{db: db}
}

func (h *SimulationHandler) SimulateCheckIn(c *gin.Context) {
	var input struct {
		MemberID string     `json:"memberId" binding:"required"`
		At       *time.Time `json:"at"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		httpapi.Error(c, http.StatusBadRequest, "memberId is required")
		return
	}

	at := time.Now()
	if input.At != nil {
		at = *input.At
	}

	var member models.Member
	err := h.db.First(&member, "member_code = ?", input.MemberID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		httpapi.Error(c, http.StatusInternalServerError, "failed to load member")
		return
	}

	var decision lifecycle.Decision
	if errors.Is(err, gorm.ErrRecordNotFound) {
		decision = lifecycle.Denied(models.DenialReasonMemberNotFound)
	} else {
		decision = lifecycle.EvaluateAdmission(&member, at)
	}

	payload := gin.H{
		"status":    decision.Status,
		"simulated": true,
		"at":        at,
	}
	if decision.Reason != "" {
		payload["reason"] = decision.Reason
	}

	httpapi.Data(c, http.StatusOK, payload)
}
