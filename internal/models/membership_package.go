package models

import (
	"time"

	"gorm.io/gorm"
)

type MembershipPackage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title        string  `gorm:"not null" json:"title"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `gorm:"not null" json:"price"`
	DurationDays int     `gorm:"not null" json:"durationDays"`
	IsActive     bool    `gorm:"not null;default:true" json:"isActive"`
	SortOrder    int     `gorm:"not null;default:0" json:"sortOrder"`
}

func (p *MembershipPackage) Validate() error {
	if p.Title == "" {
		return gorm.ErrInvalidData
	}
	if p.Price < 0 {
		return gorm.ErrInvalidData
	}
	if p.DurationDays < 1 {
		return gorm.ErrInvalidData
	}
	return nil
}

// Expiry returns the end of a membership window starting at start.
func (p *MembershipPackage) Expiry(start time.Time) time.Time {
	return start.AddDate(0, 0, p.DurationDays)
}
