package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Domenick1991/trainbooking/internal/authz"
	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/Domenick1991/trainbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const bookingNotFound = "Booking not found"

type BookingHandler struct {
	service booking.BookingUseCase
	log     *zap.Logger
}

type passengerRequest struct {
	Name               string `json:"name"`
	Age                number `json:"age"`
	Gender             string `json:"gender"`
	SeatNumber         string `json:"seatNumber"`
	IsDiscountEligible flag   `json:"isDiscountEligible"`
}

type createBookingRequest struct {
	TrainID     string             `json:"trainId"`
	Passengers  []passengerRequest `json:"passengers"`
	ContactInfo domain.ContactInfo `json:"contactInfo"`
	TotalFare   number             `json:"totalFare"`
}

type quoteRequest struct {
	TrainID    string             `json:"trainId"`
	Passengers []passengerRequest `json:"passengers"`
}

type cancelResponse struct {
	Message string          `json:"message"`
	Booking *domain.Booking `json:"booking"`
}

func NewBookingHandler(service booking.BookingUseCase, log *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, log: log}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.POST("/quote", h.quote)
	router.GET("", h.list)
	router.PUT("/:id/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	passengers, err := toPassengers(req.Passengers)
	if err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}

	input := booking.CreateBookingInput{
		TrainID:     strings.TrimSpace(req.TrainID),
		Passengers:  passengers,
		ContactInfo: req.ContactInfo,
	}
	if v, ok := req.TotalFare.float(); ok {
		input.ClientTotalFare = &v
	}
	if id := identityFrom(c); id != nil {
		input.CustomerID = id.Subject
	}

	created, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	passengers, err := toPassengers(req.Passengers)
	if err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}

	q, err := h.service.QuoteFare(c.Request.Context(), booking.QuoteInput{
		TrainID:    strings.TrimSpace(req.TrainID),
		Passengers: passengers,
	})
	if err != nil {
		respondError(c, h.log, err, trainNotFound)
		return
	}
	c.JSON(http.StatusOK, q)
}

// list returns every booking, or only the caller's when a non-admin bearer identity is present.
func (h *BookingHandler) list(c *gin.Context) {
	var filter domain.BookingFilter
	if id := identityFrom(c); id != nil && id.Role != authz.RoleAdmin {
		filter.CustomerID = id.Subject
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err, bookingNotFound)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	cancelled, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err, bookingNotFound)
		return
	}
	c.JSON(http.StatusOK, cancelResponse{Message: "Booking cancelled successfully", Booking: cancelled})
}

func toPassengers(reqs []passengerRequest) ([]domain.Passenger, error) {
	verr := &domain.ValidationError{}
	out := make([]domain.Passenger, 0, len(reqs))
	for i, r := range reqs {
		age, ok := r.Age.integer()
		if !ok || age < 0 {
			verr.Add(fmt.Sprintf("passengers[%d].age", i), "Age must be a non-negative integer")
		}
		out = append(out, domain.Passenger{
			Name:               strings.TrimSpace(r.Name),
			Age:                age,
			Gender:             strings.TrimSpace(r.Gender),
			SeatNumber:         strings.TrimSpace(r.SeatNumber),
			IsDiscountEligible: bool(r.IsDiscountEligible),
		})
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}
