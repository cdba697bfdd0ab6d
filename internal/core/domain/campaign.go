package domain

import "time"

// Status is the lifecycle state of a campaign. Every status other than
// StatusActive is final.
type Status string

const (
	StatusActive     Status = "active"
	StatusSuccessful Status = "successful"
	StatusRefunded   Status = "refunded"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuccessful, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// PlatformConfig routes a share of a successful withdrawal to the
// platform. FeeBps is expressed in basis points (10000 = 100%).
type PlatformConfig struct {
	Address Address `json:"address"`
	FeeBps  uint32  `json:"fee_bps"`
}

// Metadata is the descriptive part of a campaign.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	SocialLinks string   `json:"social_links"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// RewardTier is a named contribution threshold.
type RewardTier struct {
	Name      string `json:"name"`
	MinAmount Amount `json:"min_amount"`
}

// RoadmapItem is a dated promise published by the creator.
type RoadmapItem struct {
	Date        int64  `json:"date"`
	Description string `json:"description"`
}

// Campaign holds the scalar state of one escrow ledger. Amounts are in the
// smallest unit of Token; Deadline is unix seconds. HardCap of zero means
// the raise is unbounded.
type Campaign struct {
	ID              string
	Creator         Address
	Admin           Address
	Token           Address
	Goal            Amount
	HardCap         Amount
	Deadline        int64
	MinContribution Amount
	Status          Status
	TotalRaised     Amount
	TotalPledged    Amount
	Paused          bool
	Platform        *PlatformConfig
	Metadata        Metadata
	CodeHash        string
	Version         uint32
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
