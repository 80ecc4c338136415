// Package checkin turns a scanned member identifier into an admission
// decision and an append-only log entry.
package checkin

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"gymgate/internal/lifecycle"
	"gymgate/internal/metrics"
	"gymgate/internal/models"
	"gymgate/internal/websocket"
)

type Service struct {
	db  *gorm.DB
	hub *websocket.Hub
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SetHub enables real-time notification of recorded attempts. The service
// works without one.
func (s *Service) SetHub(hub *websocket.Hub) {
	s.hub = hub
}

// Result carries a single scan attempt's outcome.
type Result struct {
	Decision  lifecycle.Decision
	Direction models.CheckInDirection
	Member    *models.Member
	Log       models.CheckInLog
}

func (r *Result) Allowed() bool {
	return r.Decision.Status == models.CheckInAllowed
}

// CheckIn records an entry attempt for the scanned code. Expiry is always
// evaluated against this process's clock, never a device clock.
func (s *Service) CheckIn(code, deviceID string) (*Result, error) {
	return s.record(code, deviceID, models.DirectionIn)
}

// CheckOut records an exit attempt. It mirrors CheckIn: the same admission
// rules apply, and denied attempts are logged all the same.
func (s *Service) CheckOut(code, deviceID string) (*Result, error) {
	return s.record(code, deviceID, models.DirectionOut)
}

func (s *Service) record(code, deviceID string, direction models.CheckInDirection) (*Result, error) {
	now := time.Now()

	member, err := s.findMember(code)
	if err != nil {
		return nil, err
	}

	decision := lifecycle.EvaluateAdmission(member, now)

	entry := models.CheckInLog{
		CheckInTime: now,
		Direction:   direction,
		Status:      decision.Status,
		Reason:      decision.Reason,
		DeviceID:    deviceID,
	}
	if member != nil {
		entry.MemberID = &member.ID
	} else {
		entry.ScannedCode = code
	}

	// Every attempt gets exactly one row, denied ones included.
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}

	metrics.RecordCheckIn(string(direction), string(decision.Status))

	if s.hub != nil {
		s.hub.PublishCheckInRecorded(&entry, member)
	}

	if decision.Status == models.CheckInDenied {
		log.Printf("check-%s denied for %q: %s", directionWord(direction), code, decision.Reason)
	}

	return &Result{
		Decision:  decision,
		Direction: direction,
		Member:    member,
		Log:       entry,
	}, nil
}

func (s *Service) findMember(code string) (*models.Member, error) {
	var member models.Member
	err := s.db.Preload("MembershipPackage").First(&member, "member_code = ?", code).Error
	if err == nil {
		return &member, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// CurrentStatus derives whether a member is presently inside the gym from
// the most recent ALLOWED log entry. The server is the authority here;
// clients hold at best a cached copy.
func (s *Service) CurrentStatus(memberID uint) (string, *models.CheckInLog, error) {
	var entry models.CheckInLog
	err := s.db.
		Where("member_id = ? AND status = ?", memberID, models.CheckInAllowed).
		Order("check_in_time DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return StatusCheckedOut, nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	if entry.Direction == models.DirectionIn {
		return StatusCheckedIn, &entry, nil
	}
	return StatusCheckedOut, &entry, nil
}

const (
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
)

func directionWord(d models.CheckInDirection) string {
	if d == models.DirectionOut {
		return "out"
	}
	return "in"
}
