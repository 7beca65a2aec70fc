package entity

import "time"

// Product describes the donated item embedded in an announcement. It has no
// identity of its own and is immutable except through a product update on the
// owning announcement.
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PhotoURL    string `json:"photo_url"`
	Category    string `json:"category"`
}

// Announcement offers a product for donation. Donor and donee are stored as
// 24-hex id references only; an empty DoneeID means the announcement is
// unclaimed. DonorID and CreatedAt are set at creation and never change.
type Announcement struct {
	ID        string    `json:"-"`
	Product   Product   `json:"product"`
	DonorID   string    `json:"donor_id"`
	DoneeID   string    `json:"donee_id,omitempty"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// IsClaimed is derived from DoneeID; the claim flag is never persisted
// separately, so it cannot drift out of sync.
func (a *Announcement) IsClaimed() bool {
	return a.DoneeID != ""
}
