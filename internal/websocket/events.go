package websocket

import (
	"time"

	"gymgate/internal/models"
)

const (
	EventMemberRegistered = "member:registered"
	EventMemberApproved   = "member:approved"
	EventMemberRejected   = "member:rejected"
	EventCheckInRecorded  = "checkin:recorded"
)

// Event is the wire shape of every push notification.
type Event struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

func newEvent(name string, data interface{}) Event {
	return Event{
		Event:     name,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

type memberEventData struct {
	ID         uint                    `json:"id"`
	MemberID   string                  `json:"memberId"`
	Name       string                  `json:"name"`
	Email      string                  `json:"email,omitempty"`
	Phone      string                  `json:"phone,omitempty"`
	Status     models.MembershipStatus `json:"status"`
	StartDate  *time.Time              `json:"startDate,omitempty"`
	EndDate    *time.Time              `json:"endDate,omitempty"`
	PackageID  *uint                   `json:"membershipPackageId,omitempty"`
	OccurredAt string                  `json:"occurredAt"`
}

func memberData(m *models.Member) memberEventData {
	return memberEventData{
		ID:         m.ID,
		MemberID:   m.MemberCode,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Status:     m.MembershipStatus,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		PackageID:  m.MembershipPackageID,
		OccurredAt: time.Now().Format(time.RFC3339),
	}
}

// PublishMemberRegistered notifies the admin audience of a new PENDING
// registration. The member's own channel is not notified: the registering
// client already knows.
func (h *Hub) PublishMemberRegistered(m *models.Member) {
	h.broadcastToAdmins(newEvent(EventMemberRegistered, memberData(m)))
}

// PublishMemberApproved notifies the admin audience and the member's
// private channel in one publish call.
func (h *Hub) PublishMemberApproved(m *models.Member) {
	event := newEvent(EventMemberApproved, memberData(m))
	h.broadcastToAdmins(event)
	h.broadcastToMember(m.MemberCode, event)
}

// PublishMemberRejected notifies the admin audience and the member's
// private channel in one publish call.
func (h *Hub) PublishMemberRejected(m *models.Member) {
	event := newEvent(EventMemberRejected, memberData(m))
	h.broadcastToAdmins(event)
	h.broadcastToMember(m.MemberCode, event)
}

type checkInEventData struct {
	LogID       uint                    `json:"logId"`
	MemberID    string                  `json:"memberId,omitempty"`
	Name        string                  `json:"name,omitempty"`
	Direction   models.CheckInDirection `json:"direction"`
	Status      models.CheckInStatus    `json:"status"`
	Reason      models.DenialReason     `json:"reason,omitempty"`
	CheckInTime time.Time               `json:"checkInTime"`
}

// PublishCheckInRecorded feeds the admin live check-in log view.
func (h *Hub) PublishCheckInRecorded(entry *models.CheckInLog, m *models.Member) {
	data := checkInEventData{
		LogID:       entry.ID,
		Direction:   entry.Direction,
		Status:      entry.Status,
		Reason:      entry.Reason,
		CheckInTime: entry.CheckInTime,
	}
	if m != nil {
		data.MemberID = m.MemberCode
		data.Name = m.Name
	}
	h.broadcastToAdmins(newEvent(EventCheckInRecorded, data))
}
