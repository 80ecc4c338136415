package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemberCodeFormat(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)

	pattern := regexp.MustCompile(`^MEM-20240307-[A-Z0-9]{5}$`)
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code := NewMemberCode(now)
		require.Regexp(t, pattern, code)
		seen[code] = true
	}

	// Codes are random; 50 draws colliding down to a handful would mean
	// the suffix is broken.
	assert.Greater(t, len(seen), 40)
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Now()
	future := now.AddDate(0, 0, 10)
	past := now.AddDate(0, 0, -10)

	tests := []struct {
		name   string
		member Member
		want   MembershipStatus
	}{
		{"pending stays pending", Member{MembershipStatus: MembershipStatusPending}, MembershipStatusPending},
		{"rejected stays rejected", Member{MembershipStatus: MembershipStatusRejected}, MembershipStatusRejected},
		{"approved in window reads active", Member{MembershipStatus: MembershipStatusApproved, EndDate: &future}, MembershipStatusActive},
		{"approved past window reads expired", Member{MembershipStatus: MembershipStatusApproved, EndDate: &past}, MembershipStatusExpired},
		{"active past window reads expired", Member{MembershipStatus: MembershipStatusActive, EndDate: &past}, MembershipStatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.member.EffectiveStatus(now))
		})
	}
}

func TestWithinValidWindow(t *testing.T) {
	now := time.Now()
	future := now.AddDate(0, 0, 5)
	past := now.AddDate(0, 0, -5)

	assert.True(t, (&Member{MembershipStatus: MembershipStatusApproved, EndDate: &future}).WithinValidWindow(now))
	assert.True(t, (&Member{MembershipStatus: MembershipStatusActive, EndDate: &now}).WithinValidWindow(now))
	assert.False(t, (&Member{MembershipStatus: MembershipStatusApproved, EndDate: &past}).WithinValidWindow(now))
	assert.False(t, (&Member{MembershipStatus: MembershipStatusPending, EndDate: &future}).WithinValidWindow(now))
	assert.False(t, (&Member{MembershipStatus: MembershipStatusApproved}).WithinValidWindow(now))
}
