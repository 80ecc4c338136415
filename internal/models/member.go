package models

import (
	"crypto/rand"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "PENDING"
	MembershipStatusApproved MembershipStatus = "APPROVED"
	MembershipStatusRejected MembershipStatus = "REJECTED"
	MembershipStatusActive   MembershipStatus = "ACTIVE"
	MembershipStatusExpired  MembershipStatus = "EXPIRED"
)

type Member struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	MemberCode string `gorm:"uniqueIndex;not null" json:"memberId"`
	Name       string `gorm:"not null" json:"name"`
	Email      string `gorm:"index" json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`

	ProfilePhoto      string `json:"profilePhoto,omitempty"`
	PaymentScreenshot string `json:"paymentScreenshot,omitempty"`

	MembershipStatus    MembershipStatus   `gorm:"not null;default:'PENDING'" json:"membershipStatus"`
	MembershipPackageID *uint              `json:"membershipPackageId,omitempty"`
	MembershipPackage   *MembershipPackage `json:"membershipPackage,omitempty"`

	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`

	CheckInLogs []CheckInLog `json:"checkInLogs,omitempty"`
}

// EffectiveStatus derives the status as of now. EXPIRED is never stored:
// an approved member whose window has passed reads as EXPIRED, an approved
// member inside the window reads as ACTIVE.
func (m *Member) EffectiveStatus(now time.Time) MembershipStatus {
	switch m.MembershipStatus {
	case MembershipStatusApproved, MembershipStatusActive:
		if m.EndDate != nil && now.After(*m.EndDate) {
			return MembershipStatusExpired
		}
		return MembershipStatusActive
	default:
		return m.MembershipStatus
	}
}

func (m *Member) WithinValidWindow(now time.Time) bool {
	if m.MembershipStatus != MembershipStatusApproved && m.MembershipStatus != MembershipStatusActive {
		return false
	}
	return m.EndDate != nil && !now.After(*m.EndDate)
}

func (m *Member) IsTerminal() bool {
	switch m.MembershipStatus {
	case MembershipStatusApproved, MembershipStatusActive, MembershipStatusRejected:
		return true
	}
	return false
}

const memberCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewMemberCode returns a human-readable identifier of the form
// MEM-YYYYMMDD-XXXXX, where the suffix is 5 random upper-alphanumerics.
func NewMemberCode(now time.Time) string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = memberCodeAlphabet[int(b)%len(memberCodeAlphabet)]
	}
	return fmt.Sprintf("MEM-%s-%s", now.Format("20060102"), string(buf))
}
