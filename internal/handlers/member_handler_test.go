package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gymgate/internal/checkin"
	"gymgate/internal/models"
)

func setupMemberRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Member{}, &models.MembershipPackage{}, &models.CheckInLog{}))

	checkins := checkin.NewService(db)
	handler := NewMemberHandler(db, checkins)
	checkinHandler := NewCheckInHandler(db, checkins)

	router := gin.New()
	router.POST("/members/register", handler.Register)
	router.GET("/members/check-status", handler.CheckStatus)
	router.GET("/members", handler.GetMembers)
	router.PATCH("/members/:id/approve", handler.Approve)
	router.PATCH("/members/:id/reject", handler.Reject)
	router.DELETE("/members/:id", handler.DeleteMember)
	router.PATCH("/members/:id/restore", handler.RestoreMember)
	router.POST("/checkin", checkinHandler.CheckIn)
	router.POST("/checkout", checkinHandler.CheckOut)

	return router, db
}

func seedPackage(t *testing.T, db *gorm.DB, active bool) models.MembershipPackage {
	t.Helper()
	pkg := models.MembershipPackage{Title: "Monthly", Price: 49, DurationDays: 30, IsActive: active}
	require.NoError(t, db.Create(&pkg).Error)
	return pkg
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func unwrapData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var envelope struct {
		Data struct {
			Data map[string]interface{} `json:"data"`
		} `json:"_data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data.Data
}

func errorCause(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Cause string `json:"cause"`
		} `json:"_error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Error.Cause
}

func TestRegisterCreatesPendingMember(t *testing.T) {
	router, db := setupMemberRouter(t)
	pkg := seedPackage(t, db, true)

	w := doJSON(router, http.MethodPost, "/members/register", gin.H{
		"name":                "Ada Diallo",
		"email":               "ada@example.com",
		"membershipPackageId": pkg.ID,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	data := unwrapData(t, w)
	assert.Regexp(t, `^MEM-\d{8}-[A-Z0-9]{5}$`, data["memberId"])

	var member models.Member
	require.NoError(t, db.First(&member).Error)
	assert.Equal(t, models.MembershipStatusPending, member.MembershipStatus)
	assert.Nil(t, member.StartDate)
	assert.Nil(t, member.EndDate)
}

func TestRegisterRejectsInactivePackage(t *testing.T) {
	router, db := setupMemberRouter(t)
	pkg := seedPackage(t, db, false)

	w := doJSON(router, http.MethodPost, "/members/register", gin.H{
		"name":                "Ada Diallo",
		"membershipPackageId": pkg.ID,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "membership package is not available", errorCause(t, w))
}

func TestApproveStampsMembershipWindow(t *testing.T) {
	router, db := setupMemberRouter(t)
	pkg := seedPackage(t, db, true)

	member := models.Member{
		MemberCode:          models.NewMemberCode(time.Now()),
		Name:                "Ada Diallo",
		MembershipStatus:    models.MembershipStatusPending,
		MembershipPackageID: &pkg.ID,
	}
	require.NoError(t, db.Create(&member).Error)

	w := doJSON(router, http.MethodPatch, fmt.Sprintf("/members/%d/approve", member.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Member
	require.NoError(t, db.First(&updated, member.ID).Error)
	assert.Equal(t, models.MembershipStatusApproved, updated.MembershipStatus)
	require.NotNil(t, updated.StartDate)
	require.NotNil(t, updated.EndDate)
	assert.WithinDuration(t, updated.StartDate.AddDate(0, 0, 30), *updated.EndDate, time.Second)

	// A second approve is a conflict: the member is already reviewed.
	w = doJSON(router, http.MethodPatch, fmt.Sprintf("/members/%d/approve", member.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRejectIsIdempotent(t *testing.T) {
	router, db := setupMemberRouter(t)
	pkg := seedPackage(t, db, true)

	member := models.Member{
		MemberCode:          models.NewMemberCode(time.Now()),
		Name:                "Ada Diallo",
		MembershipStatus:    models.MembershipStatusPending,
		MembershipPackageID: &pkg.ID,
	}
	require.NoError(t, db.Create(&member).Error)

	w := doJSON(router, http.MethodPatch, fmt.Sprintf("/members/%d/reject", member.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPatch, fmt.Sprintf("/members/%d/reject", member.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Member
	require.NoError(t, db.First(&updated, member.ID).Error)
	assert.Equal(t, models.MembershipStatusRejected, updated.MembershipStatus)
	assert.Nil(t, updated.StartDate)
	assert.Nil(t, updated.EndDate)
}

func TestCheckStatusUnknownMemberIs404(t *testing.T) {
	router, _ := setupMemberRouter(t)

	w := doJSON(router, http.MethodGet, "/members/check-status?memberId=MEM-19990101-XXXXX", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "member not found", errorCause(t, w))
}

func TestCheckStatusReportsServerCheckInState(t *testing.T) {
	router, db := setupMemberRouter(t)
	pkg := seedPackage(t, db, true)

	start := time.Now()
	end := start.AddDate(0, 0, 30)
	member := models.Member{
		MemberCode:          models.NewMemberCode(start),
		Name:                "Ada Diallo",
		MembershipStatus:    models.MembershipStatusApproved,
		MembershipPackageID: &pkg.ID,
		StartDate:           &start,
		EndDate:             &end,
	}
	require.NoError(t, db.Create(&member).Error)

	w := doJSON(router, http.MethodGet, "/members/check-status?memberId="+member.MemberCode, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := unwrapData(t, w)
	assert.Equal(t, "ACTIVE", data["status"])
	assert.Equal(t, checkin.StatusCheckedOut, data["currentCheckInStatus"])

	// After an allowed check-in the server reports checked_in.
	w = doJSON(router, http.MethodPost, "/checkin", gin.H{"memberId": member.MemberCode})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/members/check-status?memberId="+member.MemberCode, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = unwrapData(t, w)
	assert.Equal(t, checkin.StatusCheckedIn, data["currentCheckInStatus"])
}

func TestDeniedCheckInStillAnswers200WithReason(t *testing.T) {
	router, db := setupMemberRouter(t)
	pkg := seedPackage(t, db, true)

	member := models.Member{
		MemberCode:          models.NewMemberCode(time.Now()),
		Name:                "Ada Diallo",
		MembershipStatus:    models.MembershipStatusPending,
		MembershipPackageID: &pkg.ID,
	}
	require.NoError(t, db.Create(&member).Error)

	w := doJSON(router, http.MethodPost, "/checkin", gin.H{"memberId": member.MemberCode})
	require.Equal(t, http.StatusOK, w.Code)

	data := unwrapData(t, w)
	assert.Equal(t, false, data["success"])
	assert.Equal(t, "DENIED", data["status"])
	assert.Equal(t, "NOT_APPROVED", data["reason"])

	// The denied attempt is logged server-side.
	var count int64
	require.NoError(t, db.Model(&models.CheckInLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteAndRestoreMember(t *testing.T) {
	router, db := setupMemberRouter(t)
	pkg := seedPackage(t, db, true)

	member := models.Member{
		MemberCode:          models.NewMemberCode(time.Now()),
		Name:                "Ada Diallo",
		MembershipStatus:    models.MembershipStatusPending,
		MembershipPackageID: &pkg.ID,
	}
	require.NoError(t, db.Create(&member).Error)

	w := doJSON(router, http.MethodDelete, fmt.Sprintf("/members/%d", member.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Soft-deleted members disappear from the default scope.
	var count int64
	require.NoError(t, db.Model(&models.Member{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	w = doJSON(router, http.MethodPatch, fmt.Sprintf("/members/%d/restore", member.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Model(&models.Member{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetMembersFiltersByStatus(t *testing.T) {
	router, db := setupMemberRouter(t)
	pkg := seedPackage(t, db, true)

	for i, status := range []models.MembershipStatus{
		models.MembershipStatusPending,
		models.MembershipStatusPending,
		models.MembershipStatusRejected,
	} {
		member := models.Member{
			MemberCode:          models.NewMemberCode(time.Now().AddDate(0, 0, -i)),
			Name:                fmt.Sprintf("Member %d", i),
			MembershipStatus:    status,
			MembershipPackageID: &pkg.ID,
		}
		require.NoError(t, db.Create(&member).Error)
	}

	w := doJSON(router, http.MethodGet, "/members?status=PENDING", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := unwrapData(t, w)
	assert.Equal(t, float64(2), data["total"])
}
