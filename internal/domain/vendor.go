package domain

import "time"

// Vendor is a reference entity used for assignment; tickets reference vendors
// by email and auto-selection matches on the vendor name.
type Vendor struct {
	ID            string
	Name          string
	Email         string
	ContactPerson string
	Phone         string
	CreatedAt     time.Time
}
