package booking

import (
	"fitnessbooking/internal/domain"
	"fitnessbooking/internal/pkg/tz"
)

type CreateBookingRequest struct {
	ClassID   string `json:"class_id" validate:"required,max=64"`
	UserName  string `json:"client_name" validate:"required,max=100"`
	UserEmail string `json:"client_email" validate:"required,email,max=254"`
}

type ListBookingsQuery struct {
	Email    string `form:"email"`
	Timezone string `form:"timezone"`
}

type BookingResponse struct {
	ID            string `json:"id"`
	ClassID       string `json:"class_id"`
	ClassName     string `json:"class_name"`
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	BookingTime   string `json:"booking_time"`
	ClassDateTime string `json:"class_datetime"`
}

func toBookingResponse(b *domain.BookingDetails, zone string) (BookingResponse, error) {
	bookedAt, err := tz.Render(b.CreatedAt, "")
	if err != nil {
		return BookingResponse{}, err
	}

	var classAt string
	if !b.ClassStartTime.IsZero() {
		classAt, err = tz.Render(b.ClassStartTime, zone)
		if err != nil {
			return BookingResponse{}, err
		}
	}

	return BookingResponse{
		ID:            b.ID,
		ClassID:       b.ClassID,
		ClassName:     b.ClassName,
		ClientName:    b.UserName,
		ClientEmail:   b.UserEmail,
		BookingTime:   bookedAt,
		ClassDateTime: classAt,
	}, nil
}
