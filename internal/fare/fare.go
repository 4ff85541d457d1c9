// Package fare prices a booking from a train's base price and its passenger list.
package fare

import (
	"fmt"
	"math"

	"github.com/Domenick1991/trainbooking/internal/domain"
)

const (
	// DiscountEligibleRate applies to passengers declared discount-eligible.
	DiscountEligibleRate = 0.8
	// ChildRate applies to passengers younger than ChildAgeLimit.
	ChildRate     = 0.5
	ChildAgeLimit = 12
)

// Quote is a per-passenger breakdown in input order.
type Quote struct {
	BasePrice float64   `json:"basePrice"`
	Fares     []float64 `json:"fares"`
	Total     float64   `json:"totalFare"`
}

// PassengerFare prices one passenger. Both discounts compose multiplicatively.
func PassengerFare(basePrice float64, p domain.Passenger) float64 {
	f := basePrice
	if p.IsDiscountEligible {
		f *= DiscountEligibleRate
	}
	if p.Age < ChildAgeLimit {
		f *= ChildRate
	}
	return f
}

// Calculate prices every passenger and sums the fares without rounding.
func Calculate(basePrice float64, passengers []domain.Passenger) (*Quote, error) {
	if math.IsNaN(basePrice) || math.IsInf(basePrice, 0) || basePrice <= 0 {
		return nil, fmt.Errorf("%w: base price must be a positive number", domain.ErrInvalidInput)
	}
	if len(passengers) == 0 {
		return nil, fmt.Errorf("%w: at least one passenger is required", domain.ErrInvalidInput)
	}
	if len(passengers) > domain.MaxPassengers {
		return nil, fmt.Errorf("%w: at most %d passengers per booking", domain.ErrInvalidInput, domain.MaxPassengers)
	}

	q := &Quote{BasePrice: basePrice, Fares: make([]float64, 0, len(passengers))}
	for i, p := range passengers {
		if p.Age < 0 {
			return nil, fmt.Errorf("%w: passenger %d: age must be a non-negative integer", domain.ErrInvalidInput, i+1)
		}
		f := PassengerFare(basePrice, p)
		q.Fares = append(q.Fares, f)
		q.Total += f
	}
	return q, nil
}

// Total is Calculate without the breakdown.
func Total(basePrice float64, passengers []domain.Passenger) (float64, error) {
	q, err := Calculate(basePrice, passengers)
	if err != nil {
		return 0, err
	}
	return q.Total, nil
}
