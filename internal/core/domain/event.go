package domain

// EventKind names a state change published after an operation commits.
type EventKind string

const (
	EventInitialized           EventKind = "initialized"
	EventContributed           EventKind = "contributed"
	EventHardCapReached        EventKind = "hard_cap_reached"
	EventReferralCredited      EventKind = "referral_credited"
	EventPledged               EventKind = "pledged"
	EventPledgeCollected       EventKind = "pledge_collected"
	EventPledgeCollectFailed   EventKind = "pledge_collect_failed"
	EventContributionWithdrawn EventKind = "contribution_withdrawn"
	EventWithdrawn             EventKind = "withdrawn"
	EventFeeTransferred        EventKind = "fee_transferred"
	EventRefunded              EventKind = "refunded"
	EventContributorRefunded   EventKind = "contributor_refunded"
	EventCancelled             EventKind = "cancelled"
	EventPauseChanged          EventKind = "pause_changed"
	EventWhitelistUpdated      EventKind = "whitelist_updated"
	EventRewardTierAdded       EventKind = "reward_tier_added"
	EventStretchGoalAdded      EventKind = "stretch_goal_added"
	EventRoadmapItemAdded      EventKind = "roadmap_item_added"
	EventMetadataUpdated       EventKind = "metadata_updated"
	EventDeadlineUpdated       EventKind = "deadline_updated"
	EventUpgraded              EventKind = "upgraded"
)

// AllEventKinds lists every kind, for subscribers that want all of them.
var AllEventKinds = []EventKind{
	EventInitialized, EventContributed, EventHardCapReached, EventReferralCredited,
	EventPledged, EventPledgeCollected, EventPledgeCollectFailed,
	EventContributionWithdrawn, EventWithdrawn, EventFeeTransferred, EventRefunded,
	EventContributorRefunded, EventCancelled, EventPauseChanged, EventWhitelistUpdated,
	EventRewardTierAdded, EventStretchGoalAdded, EventRoadmapItemAdded,
	EventMetadataUpdated, EventDeadlineUpdated, EventUpgraded,
}

// Event is a domain fact emitted by a ledger operation. Address is the
// principal the event concerns (contributor, creator, platform), Amount
// is zero when not applicable. ID and At are assigned when the event is
// published.
type Event struct {
	ID         string            `json:"id,omitempty"`
	Kind       EventKind         `json:"kind"`
	CampaignID string            `json:"campaign_id"`
	Address    Address           `json:"address,omitempty"`
	Amount     Amount            `json:"amount,omitempty"`
	At         int64             `json:"at"`
	Attrs      map[string]string `json:"attrs,omitempty"`
}
