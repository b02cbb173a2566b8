package model

import "time"

// FoundReport is a third party's assertion that they located another user's
// lost item. Status moves from pending to returned and stops there.
type FoundReport struct {
	ID             int64     `json:"id"`
	LostItemID     int64     `json:"lost_item_id"`
	FinderID       int64     `json:"finder_id"`
	Message        string    `json:"message,omitempty"`
	PickupLocation string    `json:"pickup_location"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`

	// Joined details, populated on enriched reads.
	ItemName    string `json:"item_name,omitempty"`
	ItemOwnerID int64  `json:"item_owner_id,omitempty"`
	OwnerName   string `json:"owner_name,omitempty"`
	OwnerEmail  string `json:"owner_email,omitempty"`
	FinderName  string `json:"finder_name,omitempty"`
	FinderEmail string `json:"finder_email,omitempty"`
}

// Found-report statuses.
const (
	ReportStatusPending  = "pending"
	ReportStatusReturned = "returned"
)
