package model

import "time"

// LostItem is a reported-lost record owned by the posting user.
type LostItem struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	LostLocation string     `json:"lost_location"`
	LostDate     *time.Time `json:"lost_date,omitempty"`
	PhotoMime    string     `json:"photo_mime,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Poster details, populated on joined reads.
	PosterName  string `json:"poster_name,omitempty"`
	PosterEmail string `json:"poster_email,omitempty"`
}

// FoundItem is a reported-found record owned by the finding user.
// The security answer is only ever compared server-side, never serialized.
type FoundItem struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	FoundLocation    string     `json:"found_location"`
	FoundDate        *time.Time `json:"found_date,omitempty"`
	PickupLocation   string     `json:"pickup_location"`
	SecurityQuestion string     `json:"security_question,omitempty"`
	SecurityAnswer   string     `json:"-"`
	PhotoMime        string     `json:"photo_mime,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	PosterName  string `json:"poster_name,omitempty"`
	PosterEmail string `json:"poster_email,omitempty"`
}
