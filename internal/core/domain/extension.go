package domain

import (
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
)

// AddRewardTier appends a named threshold. Tiers keep insertion order.
func (l *Ledger) AddRewardTier(name string, minAmount Amount) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return Newf(CodeInvalidArgument, "tier name cannot be empty")
	}
	if minAmount <= 0 {
		return Newf(CodeInvalidAmount, "min_amount must be greater than 0")
	}
	l.RewardTiers = append(l.RewardTiers, RewardTier{Name: name, MinAmount: minAmount})
	l.emit(EventRewardTierAdded, l.Campaign.Creator, minAmount, map[string]string{"name": name})
	return nil
}

// UserTier returns the highest tier whose minimum the address's
// contribution reaches. Ties on min_amount go to the tier added first.
func (l *Ledger) UserTier(a Address) (RewardTier, bool) {
	contribution := l.ContributionOf(a)
	if contribution <= 0 {
		return RewardTier{}, false
	}
	var (
		best  RewardTier
		found bool
	)
	for _, t := range l.RewardTiers {
		if contribution >= t.MinAmount && (!found || t.MinAmount > best.MinAmount) {
			best, found = t, true
		}
	}
	return best, found
}

// AddStretchGoal adds a milestone above the goal. Milestones are kept
// sorted ascending and must be unique.
func (l *Ledger) AddStretchGoal(milestone Amount) error {
	if milestone <= l.Campaign.Goal {
		return Newf(CodeInvalidArgument, "stretch goal must be greater than the goal")
	}
	i, found := slices.BinarySearch(l.StretchGoals, milestone)
	if found {
		return Newf(CodeInvalidArgument, "stretch goal %d already exists", milestone)
	}
	l.StretchGoals = slices.Insert(l.StretchGoals, i, milestone)
	l.emit(EventStretchGoalAdded, l.Campaign.Creator, milestone, nil)
	return nil
}

// CurrentMilestone is the smallest stretch goal not yet reached, or zero.
func (l *Ledger) CurrentMilestone() Amount {
	for _, m := range l.StretchGoals {
		if m > l.Campaign.TotalRaised {
			return m
		}
	}
	return 0
}

// AddRoadmapItem publishes a dated promise. The date must be strictly in
// the future.
func (l *Ledger) AddRoadmapItem(now, date int64, description string) error {
	if date <= now {
		return Newf(CodeInvalidArgument, "date must be in the future")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return Newf(CodeInvalidArgument, "description cannot be empty")
	}
	l.Roadmap = append(l.Roadmap, RoadmapItem{Date: date, Description: description})
	l.emit(EventRoadmapItemAdded, l.Campaign.Creator, 0, map[string]string{"date": strconv.FormatInt(date, 10)})
	return nil
}

// MetadataUpdate is a partial metadata change; nil fields are kept.
type MetadataUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	SocialLinks *string  `json:"social_links,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateMetadata applies u to an Active campaign.
func (l *Ledger) UpdateMetadata(u MetadataUpdate) error {
	if err := l.requireActive(); err != nil {
		return err
	}
	m := &l.Campaign.Metadata
	var changed []string
	if u.Title != nil {
		m.Title = *u.Title
		changed = append(changed, "title")
	}
	if u.Description != nil {
		m.Description = *u.Description
		changed = append(changed, "description")
	}
	if u.SocialLinks != nil {
		m.SocialLinks = *u.SocialLinks
		changed = append(changed, "social_links")
	}
	if u.Category != nil {
		m.Category = *u.Category
		changed = append(changed, "category")
	}
	if u.Tags != nil {
		m.Tags = slices.Clone(u.Tags)
		changed = append(changed, "tags")
	}
	l.emit(EventMetadataUpdated, l.Campaign.Creator, 0, map[string]string{"fields": strings.Join(changed, ",")})
	return nil
}

// UpdateDeadline moves the deadline strictly later.
func (l *Ledger) UpdateDeadline(deadline int64) error {
	if err := l.requireActive(); err != nil {
		return err
	}
	if deadline <= l.Campaign.Deadline {
		return Newf(CodeInvalidArgument, "new deadline must be after current deadline")
	}
	prev := l.Campaign.Deadline
	l.Campaign.Deadline = deadline
	l.emit(EventDeadlineUpdated, l.Campaign.Creator, 0, map[string]string{
		"from": strconv.FormatInt(prev, 10),
		"to":   strconv.FormatInt(deadline, 10),
	})
	return nil
}

// SetPaused toggles the pause switch.
func (l *Ledger) SetPaused(paused bool) {
	l.Campaign.Paused = paused
	l.emit(EventPauseChanged, l.Campaign.Creator, 0, map[string]string{"paused": strconv.FormatBool(paused)})
}

// AddToWhitelist adds a batch of addresses and returns the ones that were
// new. Once the whitelist is non-empty only members may contribute.
func (l *Ledger) AddToWhitelist(addrs []Address) ([]Address, error) {
	if len(addrs) == 0 || len(addrs) > MaxWhitelistBatch {
		return nil, Newf(CodeInvalidLimit, "whitelist batch must hold 1 to %d addresses", MaxWhitelistBatch)
	}
	for _, a := range addrs {
		if a.IsZero() {
			return nil, Newf(CodeInvalidArgument, "whitelist address cannot be empty")
		}
	}
	var added []Address
	for _, a := range addrs {
		if l.Whitelist.Add(a) {
			added = append(added, a)
		}
	}
	if len(added) > 0 {
		l.emit(EventWhitelistUpdated, l.Campaign.Creator, 0, map[string]string{"added": strconv.Itoa(len(added))})
	}
	return added, nil
}

// Upgrade records a new code hash and bumps the version. State is kept
// as is.
func (l *Ledger) Upgrade(codeHash string) error {
	codeHash = strings.ToLower(strings.TrimSpace(codeHash))
	raw, err := hex.DecodeString(codeHash)
	if err != nil || len(raw) != 32 {
		return Newf(CodeInvalidArgument, "code hash must be 32 bytes of hex")
	}
	l.Campaign.CodeHash = codeHash
	l.Campaign.Version++
	l.emit(EventUpgraded, l.Campaign.Admin, 0, map[string]string{
		"code_hash": codeHash,
		"version":   strconv.FormatUint(uint64(l.Campaign.Version), 10),
	})
	return nil
}
