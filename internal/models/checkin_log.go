package models

import (
	"time"
)

type CheckInStatus string

const (
	CheckInAllowed CheckInStatus = "ALLOWED"
	CheckInDenied  CheckInStatus = "DENIED"
)

type CheckInDirection string

const (
	DirectionIn  CheckInDirection = "IN"
	DirectionOut CheckInDirection = "OUT"
)

type DenialReason string

const (
	DenialReasonNotApproved    DenialReason = "NOT_APPROVED"
	DenialReasonExpired        DenialReason = "EXPIRED"
	DenialReasonRejected       DenialReason = "REJECTED"
	DenialReasonMemberNotFound DenialReason = "MEMBER_NOT_FOUND"
)

// CheckInLog is append-only: one row per scan attempt, allowed or denied,
// never updated or deleted. MemberID is null when the scanned code matched
// no member; ScannedCode keeps the raw input for those rows.
type CheckInLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	MemberID *uint   `gorm:"index" json:"memberId,omitempty"`
	Member   *Member `json:"member,omitempty"`

	ScannedCode string `json:"scannedCode,omitempty"`

	CheckInTime time.Time        `gorm:"not null;index" json:"checkInTime"`
	Direction   CheckInDirection `gorm:"not null" json:"direction"`
	Status      CheckInStatus    `gorm:"not null" json:"status"`
	Reason      DenialReason     `json:"reason,omitempty"`
	DeviceID    string           `json:"deviceId,omitempty"`
}
