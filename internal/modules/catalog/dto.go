package catalog

import (
	"fitnessbooking/internal/domain"
	"fitnessbooking/internal/pkg/tz"
)

type CreateClassRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Instructor     string `json:"instructor" validate:"required,max=100"`
	DateTime       string `json:"dateTime" validate:"required"`
	AvailableSlots int    `json:"availableSlots" validate:"gt=0,lte=100"`
	// Timezone is applied when DateTime carries no offset.
	Timezone string `json:"timezone,omitempty"`
}

type ListClassesQuery struct {
	Timezone string `form:"timezone"`
	Upcoming bool   `form:"upcoming"`
}

type ClassResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Instructor     string `json:"instructor"`
	DateTime       string `json:"dateTime"`
	AvailableSlots int    `json:"availableSlots"`
	TotalSlots     int    `json:"totalSlots"`
}

func toClassResponse(c *domain.FitnessClass, zone string) (ClassResponse, error) {
	when, err := tz.Render(c.StartTime, zone)
	if err != nil {
		return ClassResponse{}, err
	}
	return ClassResponse{
		ID:             c.ID,
		Name:           c.Name,
		Instructor:     c.Instructor,
		DateTime:       when,
		AvailableSlots: c.RemainingSlots,
		TotalSlots:     c.TotalSlots,
	}, nil
}
