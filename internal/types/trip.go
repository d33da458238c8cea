package types

import (
	"time"

	"github.com/google/uuid"
)

// DayTrip is a saved single-day plan: a center point (usually the hotel),
// a travel mode, and ordered slot entries for the day.
type DayTrip struct {
	ID         uuid.UUID   `json:"id"`
	UserID     uuid.UUID   `json:"user_id"`
	Title      string      `json:"title"`
	TripDate   *time.Time  `json:"trip_date,omitempty"`
	Center     *Coordinate `json:"center,omitempty"`
	TravelMode TravelMode  `json:"travel_mode"`
	Slots      []TripSlot  `json:"slots"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// TripSlot is one entry of a day plan (breakfast, activity, lunch, coffee,
// dinner, ...). Position fixes the user's chosen visiting order.
type TripSlot struct {
	ID       uuid.UUID `json:"id"`
	SlotKind string    `json:"slot_kind"`
	Position int       `json:"position"`
	Venue    Venue     `json:"venue"`
}

type CreateDayTripRequest struct {
	Title      string          `json:"title"`
	TripDate   *time.Time      `json:"trip_date,omitempty"`
	Center     *Coordinate     `json:"center,omitempty"`
	TravelMode string          `json:"travel_mode,omitempty"`
	Slots      []TripSlotInput `json:"slots,omitempty"`
}

type TripSlotInput struct {
	SlotKind string `json:"slot_kind"`
	Venue    Venue  `json:"venue"`
}

type UpdateDayTripRequest struct {
	Title      *string          `json:"title,omitempty"`
	TripDate   *time.Time       `json:"trip_date,omitempty"`
	Center     *Coordinate      `json:"center,omitempty"`
	TravelMode *string          `json:"travel_mode,omitempty"`
	Slots      *[]TripSlotInput `json:"slots,omitempty"`
}

type PaginatedDayTripsResponse struct {
	Trips        []DayTrip `json:"trips"`
	TotalRecords int       `json:"total_records"`
	Page         int       `json:"page"`
	PageSize     int       `json:"page_size"`
}
