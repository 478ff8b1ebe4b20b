package model

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

type Vote string

const (
	VoteApprove Vote = "approve"
	VoteReject  Vote = "reject"
)

// ReviewEntry is a proposed inventory addition awaiting confirmation.
// Entries are never deleted; status only moves from pending to a
// terminal state.
type ReviewEntry struct {
	ID            int64        `json:"id"`
	ProposerID    int64        `json:"proposer_id"`
	OwnerID       int64        `json:"owner_id"`
	Name          string       `json:"name"`
	CanonicalName string       `json:"canonical_name"`
	Category      Category     `json:"category"`
	Quantity      string       `json:"quantity"`
	Unit          string       `json:"unit"`
	ImageURL      string       `json:"image_url,omitempty"`
	Status        ReviewStatus `json:"status"`
	SourceItemID  *int64       `json:"source_item_id"`
	ReviewedBy    *int64       `json:"reviewed_by"`
	ReviewedAt    *time.Time   `json:"reviewed_at"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type ReviewVote struct {
	ID        int64     `json:"id"`
	EntryID   int64     `json:"entry_id"`
	VoterID   int64     `json:"voter_id"`
	Vote      Vote      `json:"vote"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
