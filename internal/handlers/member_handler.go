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
	"gymgate/internal/lifecycle"
	"gymgate/internal/metrics"
	"gymgate/internal/models"
	"gymgate/internal/websocket"
)

type MemberHandler struct {
	db       *gorm.DB
	checkins *checkin.Service
	hub      *websocket.Hub
}

func NewMemberHandler(db *gorm.DB, checkins *checkin.Service) *MemberHandler {
	return &MemberHandler{db: db, checkins: checkins}
}

func (h *MemberHandler) SetHub(hub *websocket.Hub) {
	h.hub = hub
}

type paymentScreenshotInput struct {
	ImageURL    string `json:"imageUrl" binding:"required"`
	Description string `json:"description"`
}

// Register creates a PENDING member and notifies the admin audience.
func (h *MemberHandler) Register(c *gin.Context) {
	var input struct {
		Name                string                   `json:"name" binding:"required"`
		Email               string                   `json:"email" binding:"omitempty,email"`
		Phone               string                   `json:"phone"`
		ProfilePhoto        string                   `json:"profilePhoto"`
		MembershipPackageID uint                     `json:"membershipPackageId" binding:"required"`
		PaymentScreenshots  []paymentScreenshotInput `json:"paymentScreenshots"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		httpapi.Error(c, http.StatusBadRequest, "invalid registration data: "+err.Error())
		return
	}

	var pkg models.MembershipPackage
	if err := h.db.First(&pkg, input.MembershipPackageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpapi.Error(c, http.StatusBadRequest, "membership package not found")
		} else {
			httpapi.Error(c, http.StatusInternalServerError, "failed to load membership package")
		}
		return
	}
	if !pkg.IsActive {
		httpapi.Error(c, http.StatusBadRequest, "membership package is not available")
		return
	}

	member := models.Member{
		MemberCode:          models.NewMemberCode(time.Now()),
		Name:                input.Name,
		Email:               input.Email,
		Phone:               input.Phone,
		ProfilePhoto:        input.ProfilePhoto,
		MembershipStatus:    models.MembershipStatusPending,
		MembershipPackageID: &pkg.ID,
	}
	if len(input.PaymentScreenshots) > 0 {
		member.PaymentScreenshot = input.PaymentScreenshots[0].ImageURL
	}

	if err := h.db.Create(&member).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to create member")
		return
	}

	metrics.RecordRegistration()

	if h.hub != nil {
		h.hub.PublishMemberRegistered(&member)
	}

	httpapi.Data(c, http.StatusCreated, gin.H{
		"id":       member.ID,
		"memberId": member.MemberCode,
		"member":   member,
	})
}

// CheckStatus looks a member up by memberId or email and reports the
// effective membership status plus the server-authoritative check-in state.
// A missing record is a 404, which clients treat as "not registered yet".
func (h *MemberHandler) CheckStatus(c *gin.Context) {
	memberCode := c.Query("memberId")
	email := c.Query("email")

	if memberCode == "" && email == "" {
		httpapi.Error(c, http.StatusBadRequest, "memberId or email query parameter required")
		return
	}

	query := h.db.Preload("MembershipPackage")
	var member models.Member
	var err error
	if memberCode != "" {
		err = query.First(&member, "member_code = ?", memberCode).Error
	} else {
		err = query.First(&member, "email = ?", email).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpapi.Error(c, http.StatusNotFound, "member not found")
		} else {
			httpapi.Error(c, http.StatusInternalServerError, "failed to load member")
		}
		return
	}

	payload := gin.H{
		"registered": true,
		"member":     member,
		"status":     member.EffectiveStatus(time.Now()),
	}

	status, current, err := h.checkins.CurrentStatus(member.ID)
	if err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to load check-in status")
		return
	}
	payload["currentCheckInStatus"] = status
	if current != nil {
		payload["currentCheckIn"] = current
	}

	httpapi.Data(c, http.StatusOK, payload)
}

// GetMembers lists members for the admin table: status/active filters,
// search over name, email and member code, page/limit pagination.
func (h *MemberHandler) GetMembers(c *gin.Context) {
	page, limit := pagination(c)

	query := h.db.Model(&models.Member{}).Preload("MembershipPackage")

	if status := c.Query("status"); status != "" {
		query = query.Where("membership_status = ?", status)
	}

	now := time.Now()
	switch c.Query("active") {
	case "ACTIVE":
		query = query.
			Where("membership_status IN ?", []models.MembershipStatus{models.MembershipStatusApproved, models.MembershipStatusActive}).
			Where("end_date >= ?", now)
	case "EXPIRED":
		query = query.
			Where("membership_status IN ?", []models.MembershipStatus{models.MembershipStatusApproved, models.MembershipStatusActive}).
			Where("end_date < ?", now)
	}

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR member_code LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to count members")
		return
	}

	var members []models.Member
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&members).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to load members")
		return
	}

	httpapi.Data(c, http.StatusOK, httpapi.NewPaginatedList(members, total, page, limit))
}

func (h *MemberHandler) GetMember(c *gin.Context) {
	member, ok := h.loadMember(c)
	if !ok {
		return
	}
	httpapi.Data(c, http.StatusOK, member)
}

// Approve transitions a PENDING member into APPROVED, stamps the
// membership window from the chosen package, and publishes the approval to
// both the admin audience and the member's private channel.
func (h *MemberHandler) Approve(c *gin.Context) {
	member, ok := h.loadMember(c)
	if !ok {
		return
	}

	if member.MembershipPackageID == nil {
		httpapi.Error(c, http.StatusUnprocessableEntity, "member has no membership package selected")
		return
	}

	var pkg models.MembershipPackage
	err := h.db.Unscoped().First(&pkg, *member.MembershipPackageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpapi.Error(c, http.StatusUnprocessableEntity, "membership package not found")
		} else {
			httpapi.Error(c, http.StatusInternalServerError, "failed to load membership package")
		}
		return
	}

	if err := lifecycle.Approve(member, &pkg, time.Now()); err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrAlreadyReviewed):
			httpapi.Error(c, http.StatusConflict, "member has already been reviewed")
		case errors.Is(err, lifecycle.ErrPackageInactive):
			httpapi.Error(c, http.StatusUnprocessableEntity, "membership package is inactive")
		case errors.Is(err, lifecycle.ErrPackageDeleted):
			httpapi.Error(c, http.StatusUnprocessableEntity, "membership package is deleted")
		default:
			httpapi.Error(c, http.StatusInternalServerError, "failed to approve member")
		}
		return
	}

	if err := h.db.Save(member).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to save member")
		return
	}

	metrics.RecordReview("approved")

	if h.hub != nil {
		h.hub.PublishMemberApproved(member)
	}

	httpapi.Data(c, http.StatusOK, member)
}

// Reject marks a member rejected and publishes the decision. Rejecting an
// already rejected member is a no-op success.
func (h *MemberHandler) Reject(c *gin.Context) {
	member, ok := h.loadMember(c)
	if !ok {
		return
	}

	if member.MembershipStatus == models.MembershipStatusRejected {
		httpapi.Data(c, http.StatusOK, member)
		return
	}

	if member.MembershipStatus != models.MembershipStatusPending {
		httpapi.Error(c, http.StatusConflict, "member has already been reviewed")
		return
	}

	lifecycle.Reject(member)

	if err := h.db.Save(member).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to save member")
		return
	}

	metrics.RecordReview("rejected")

	if h.hub != nil {
		h.hub.PublishMemberRejected(member)
	}

	httpapi.Data(c, http.StatusOK, member)
}

func (h *MemberHandler) DeleteMember(c *gin.Context) {
	member, ok := h.loadMember(c)
	if !ok {
		return
	}

	if err := h.db.Delete(member).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to delete member")
		return
	}

	httpapi.Data(c, http.StatusOK, gin.H{"message": "member deleted"})
}

func (h *MemberHandler) RestoreMember(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpapi.Error(c, http.StatusBadRequest, "invalid member id")
		return
	}

	var member models.Member
	if err := h.db.Unscoped().First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpapi.Error(c, http.StatusNotFound, "member not found")
		} else {
			httpapi.Error(c, http.StatusInternalServerError, "failed to load member")
		}
		return
	}

	if err := h.db.Unscoped().Model(&member).Update("deleted_at", nil).Error; err != nil {
		httpapi.Error(c, http.StatusInternalServerError, "failed to restore member")
		return
	}

	member.DeletedAt = gorm.DeletedAt{}
	httpapi.Data(c, http.StatusOK, member)
}

func (h *MemberHandler) loadMember(c *gin.Context) (*models.Member, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpapi.Error(c, http.StatusBadRequest, "invalid member id")
		return nil, false
	}

	var member models.Member
	if err := h.db.Preload("MembershipPackage").First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpapi.Error(c, http.StatusNotFound, "member not found")
		} else {
			httpapi.Error(c, http.StatusInternalServerError, "failed to load member")
		}
		return nil, false
	}

	return &member, true
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
