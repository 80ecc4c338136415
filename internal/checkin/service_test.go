package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gymgate/internal/lifecycle"
	"gymgate/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Member{}, &models.MembershipPackage{}, &models.CheckInLog{}))
	return db
}

func seedApprovedMember(t *testing.T, db *gorm.DB) *models.Member {
	t.Helper()

	pkg := models.MembershipPackage{Title: "Monthly", Price: 49, DurationDays: 30, IsActive: true}
	require.NoError(t, db.Create(&pkg).Error)

	member := models.Member{
		MemberCode:       models.NewMemberCode(time.Now()),
		Name:             "Jamie Cruz",
		MembershipStatus: models.MembershipStatusPending,
	}
	require.NoError(t, lifecycle.Approve(&member, &pkg, time.Now()))
	require.NoError(t, db.Create(&member).Error)
	return &member
}

func countLogs(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.CheckInLog{}).Count(&n).Error)
	return n
}

func TestCheckInAllowed(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	member := seedApprovedMember(t, db)

	result, err := svc.CheckIn(member.MemberCode, "kiosk-1")
	require.NoError(t, err)

	assert.True(t, result.Allowed())
	assert.Equal(t, models.DirectionIn, result.Direction)
	require.NotNil(t, result.Member)
	assert.Equal(t, member.ID, result.Member.ID)
	assert.Equal(t, int64(1), countLogs(t, db))
	assert.Equal(t, "kiosk-1", result.Log.DeviceID)
}

func TestCheckInPendingMemberDeniedAndLogged(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	member := models.Member{
		MemberCode:       models.NewMemberCode(time.Now()),
		Name:             "Sam Lee",
		MembershipStatus: models.MembershipStatusPending,
	}
	require.NoError(t, db.Create(&member).Error)

	result, err := svc.CheckIn(member.MemberCode, "")
	require.NoError(t, err)

	assert.False(t, result.Allowed())
	assert.Equal(t, models.DenialReasonNotApproved, result.Decision.Reason)

	// The denied attempt still produced exactly one log row.
	var entry models.CheckInLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, models.CheckInDenied, entry.Status)
	assert.Equal(t, models.DenialReasonNotApproved, entry.Reason)
	assert.Equal(t, int64(1), countLogs(t, db))
}

func TestCheckInUnknownCode(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	result, err := svc.CheckIn("MEM-19990101-ZZZZZ", "")
	require.NoError(t, err)

	assert.False(t, result.Allowed())
	assert.Equal(t, models.DenialReasonMemberNotFound, result.Decision.Reason)
	assert.Nil(t, result.Member)

	var entry models.CheckInLog
	require.NoError(t, db.First(&entry).Error)
	assert.Nil(t, entry.MemberID)
	assert.Equal(t, "MEM-19990101-ZZZZZ", entry.ScannedCode)
}

func TestCheckInExpiredMember(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)

	start := time.Now().AddDate(0, 0, -40)
	end := start.AddDate(0, 0, 30)
	member := models.Member{
		MemberCode:       models.NewMemberCode(time.Now()),
		Name:             "Dana Wolfe",
		MembershipStatus: models.MembershipStatusApproved,
		StartDate:        &start,
		EndDate:          &end,
	}
	require.NoError(t, db.Create(&member).Error)

	result, err := svc.CheckIn(member.MemberCode, "")
	require.NoError(t, err)

	assert.False(t, result.Allowed())
	assert.Equal(t, models.DenialReasonExpired, result.Decision.Reason)
}

func TestCurrentStatusFollowsAllowedLogs(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	member := seedApprovedMember(t, db)

	status, entry, err := svc.CurrentStatus(member.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, status)
	assert.Nil(t, entry)

	_, err = svc.CheckIn(member.MemberCode, "")
	require.NoError(t, err)

	status, entry, err = svc.CurrentStatus(member.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, status)
	require.NotNil(t, entry)
	assert.Equal(t, models.DirectionIn, entry.Direction)

	_, err = svc.CheckOut(member.MemberCode, "")
	require.NoError(t, err)

	status, _, err = svc.CurrentStatus(member.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, status)
}

func TestCurrentStatusIgnoresDeniedLogs(t *testing.T) {
	db := testDB(t)
	svc := NewService(db)
	member := seedApprovedMember(t, db)

	_, err := svc.CheckIn(member.MemberCode, "")
	require.NoError(t, err)

	// Force the window to lapse, then a denied attempt lands in the log.
	past := time.Now().AddDate(0, 0, -1)
	require.NoError(t, db.Model(member).Update("end_date", past).Error)

	result, err := svc.CheckOut(member.MemberCode, "")
	require.NoError(t, err)
	assert.False(t, result.Allowed())

	status, entry, err := svc.CurrentStatus(member.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, status)
	require.NotNil(t, entry)
	assert.Equal(t, models.CheckInAllowed, entry.Status)
}
