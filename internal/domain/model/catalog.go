package model

import (
	"time"

	"inet-marketplace/internal/domain"
)

// DurationDaysFor maps a plan duration type to whole days. Unknown types
// fall back to monthly.
func DurationDaysFor(durationType string) int {
	switch durationType {
	case "weekly":
		return 7
	case "yearly":
		return 365
	default:
		return 30
	}
}

// ChannelPlan is a purchasable video-channel subscription bundle.
type ChannelPlan struct {
	ID           string
	Name         string
	Description  string
	DurationType string // weekly | monthly | yearly
	DurationDays int
	Price        int64 // TZS
	IsActive     bool
	SortOrder    int
	CreatedAt    time.Time
}

func (p *ChannelPlan) IsZero() bool { return p == nil || p.ID == "" }

// NewChannelPlan validates and constructs a plan. DurationDays is derived
// from the duration type.
func NewChannelPlan(id, name, durationType string, price int64) (*ChannelPlan, error) {
	if id == "" || name == "" || price < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &ChannelPlan{
		ID:           id,
		Name:         name,
		DurationType: durationType,
		DurationDays: DurationDaysFor(durationType),
		Price:        price,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}, nil
}

// Service is a marketplace listing fulfilled manually by an admin
// (streaming accounts, bundles and the like).
type Service struct {
	ID        string
	Name      string
	Category  string
	Price     int64 // TZS
	Currency  string
	Duration  string // display text, e.g. "1 month"
	IconType  string
	IconImage string
	Color     string
	IsActive  bool
	CreatedAt time.Time
}

// Video is a pay-per-view item. Price zero means free to watch.
type Video struct {
	ID        string
	Title     string
	Category  string
	Price     int64 // TZS; 0 = free
	VideoURL  string
	Thumbnail string
	Duration  string
	SortOrder int
	Views     int64
	IsActive  bool
	CreatedAt time.Time
}

// IsPaid reports whether the video requires an unlock purchase.
func (v *Video) IsPaid() bool { return v.Price > 0 }
