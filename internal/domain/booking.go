package domain

import "time"

type Booking struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	UserEmail string    `json:"client_email"`
	UserName  string    `json:"client_name"`
	CreatedAt time.Time `json:"booking_time"`
}

// BookingDetails is a ledger record joined with the class it references.
type BookingDetails struct {
	Booking
	ClassName      string    `json:"class_name"`
	ClassStartTime time.Time `json:"class_datetime"`
}
