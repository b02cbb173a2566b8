package model

import "time"

// Claim is a user's assertion that a found item belongs to them.
// Status moves from pending to exactly one terminal state.
type Claim struct {
	ID          int64     `json:"id"`
	FoundItemID int64     `json:"found_item_id"`
	ClaimerID   int64     `json:"claimer_id"`
	Message     string    `json:"message,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	// Joined details, populated on enriched reads.
	ItemName       string `json:"item_name,omitempty"`
	ItemOwnerID    int64  `json:"item_owner_id,omitempty"`
	PickupLocation string `json:"pickup_location,omitempty"`
	ClaimerName    string `json:"claimer_name,omitempty"`
	ClaimerEmail   string `json:"claimer_email,omitempty"`
}

// Claim statuses.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// ClaimStatusTerminal reports whether a claim status permits no further transitions.
func ClaimStatusTerminal(status string) bool {
	return status == ClaimStatusApproved || status == ClaimStatusRejected
}
