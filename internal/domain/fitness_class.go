package domain

import "time"

const MaxClassSlots = 100

type FitnessClass struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Instructor     string    `json:"instructor"`
	StartTime      time.Time `json:"dateTime"`
	TotalSlots     int       `json:"totalSlots"`
	RemainingSlots int       `json:"availableSlots"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasStarted reports whether the class start is at or before now.
func (c *FitnessClass) HasStarted(now time.Time) bool {
	return !c.StartTime.After(now)
}
