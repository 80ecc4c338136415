// Package lifecycle holds the membership state machine: the single source
// of truth for whether a member may check in right now, and the approve /
// reject transitions. Everything here is pure so the same rules evaluate
// identically on the server and anywhere else they are embedded.
package lifecycle

import (
	"errors"
	"time"

	"gymgate/internal/models"
)

var (
	ErrPackageInactive = errors.New("membership package is inactive")
	ErrPackageDeleted  = errors.New("membership package is deleted")
	ErrAlreadyReviewed = errors.New("member has already been reviewed")
)

type Decision struct {
	Status models.CheckInStatus
	Reason models.DenialReason
}

func Allowed() Decision {
	return Decision{Status: models.CheckInAllowed}
}

func Denied(reason models.DenialReason) Decision {
	return Decision{Status: models.CheckInDenied, Reason: reason}
}

// EvaluateAdmission decides whether a member may pass the gate at the given
// instant. The caller supplies the clock; in the server path that is always
// the server clock, never a device clock.
//
// An elapsed window wins over whatever status is stored, so a row still
// reading APPROVED after its end date denies with EXPIRED.
func EvaluateAdmission(m *models.Member, now time.Time) Decision {
	if m == nil {
		return Denied(models.DenialReasonMemberNotFound)
	}

	if m.EndDate != nil && now.After(*m.EndDate) {
		return Denied(models.DenialReasonExpired)
	}

	switch m.MembershipStatus {
	case models.MembershipStatusRejected:
		return Denied(models.DenialReasonRejected)
	case models.MembershipStatusApproved, models.MembershipStatusActive:
		if m.EndDate == nil {
			return Denied(models.DenialReasonNotApproved)
		}
		return Allowed()
	default:
		return Denied(models.DenialReasonNotApproved)
	}
}

// Approve transitions a PENDING member into the approved state and stamps
// the membership window: end = start + the package's duration in days. The
// dates are set here and nowhere else.
func Approve(m *models.Member, pkg *models.MembershipPackage, start time.Time) error {
	if m.MembershipStatus != models.MembershipStatusPending {
		return ErrAlreadyReviewed
	}
	if pkg == nil || pkg.DeletedAt.Valid {
		return ErrPackageDeleted
	}
	if !pkg.IsActive {
		return ErrPackageInactive
	}

	end := pkg.Expiry(start)
	m.MembershipStatus = models.MembershipStatusApproved
	m.MembershipPackageID = &pkg.ID
	m.StartDate = &start
	m.EndDate = &end
	return nil
}

// Reject marks a member rejected. Rejecting an already rejected member is a
// no-op; the member keeps no membership window.
func Reject(m *models.Member) {
	m.MembershipStatus = models.MembershipStatusRejected
	m.StartDate = nil
	m.EndDate = nil
}
