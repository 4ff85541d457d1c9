package domain

import "time"

type BookingStatus string

const (
	// BookingStatusPending is declared for compatibility; no operation enters it.
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// MaxPassengers bounds the passenger list of a single booking.
const MaxPassengers = 6

type Passenger struct {
	Name               string `json:"name" bson:"name"`
	Age                int    `json:"age" bson:"age"`
	Gender             string `json:"gender" bson:"gender"`
	SeatNumber         string `json:"seatNumber,omitempty" bson:"seatNumber,omitempty"`
	IsDiscountEligible bool   `json:"isDiscountEligible" bson:"isDiscountEligible"`
}

type ContactInfo struct {
	Email   string `json:"email,omitempty" bson:"email,omitempty"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
}

type Booking struct {
	ID          string        `json:"id"`
	PNR         string        `json:"pnr"`
	TrainID     string        `json:"trainId"`
	Train       *Train        `json:"train,omitempty"`
	CustomerID  string        `json:"customerId,omitempty"`
	Passengers  []Passenger   `json:"passengers"`
	ContactInfo ContactInfo   `json:"contactInfo"`
	BookingDate time.Time     `json:"bookingDate"`
	Status      BookingStatus `json:"status"`
	TotalFare   float64       `json:"totalFare"`
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// BookingFilter scopes a booking listing. An empty CustomerID lists all bookings.
type BookingFilter struct {
	CustomerID string
}
