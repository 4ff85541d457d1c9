package fare

import (
	"math"
	"testing"

	"github.com/Domenick1991/trainbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassengerFare(t *testing.T) {
	testCases := []struct {
		name      string
		passenger domain.Passenger
		expected  float64
	}{
		{name: "adult full price", passenger: domain.Passenger{Age: 30}, expected: 1000},
		{name: "adult at child limit", passenger: domain.Passenger{Age: 12}, expected: 1000},
		{name: "adult eligible", passenger: domain.Passenger{Age: 40, IsDiscountEligible: true}, expected: 800},
		{name: "child", passenger: domain.Passenger{Age: 5}, expected: 500},
		{name: "infant", passenger: domain.Passenger{Age: 0}, expected: 500},
		{name: "child eligible stacks", passenger: domain.Passenger{Age: 8, IsDiscountEligible: true}, expected: 400},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, PassengerFare(1000, tc.passenger), 1e-9)
		})
	}
}

func TestPassengerFare_FullPriceIsExact(t *testing.T) {
	for _, base := range []float64{1, 99.99, 1000, 1234.5678} {
		assert.Equal(t, base, PassengerFare(base, domain.Passenger{Age: 12}))
		assert.Equal(t, base, PassengerFare(base, domain.Passenger{Age: 65}))
	}
}

func TestCalculate_Scenarios(t *testing.T) {
	adult := domain.Passenger{Name: "A", Age: 35}
	eligibleAdult := domain.Passenger{Name: "B", Age: 60, IsDiscountEligible: true}
	child := domain.Passenger{Name: "C", Age: 5}
	eligibleChild := domain.Passenger{Name: "D", Age: 8, IsDiscountEligible: true}

	total, err := Total(1000, []domain.Passenger{adult})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, total)

	total, err = Total(1000, []domain.Passenger{eligibleChild})
	require.NoError(t, err)
	assert.InDelta(t, 400.0, total, 1e-9)

	q, err := Calculate(1000, []domain.Passenger{adult, eligibleAdult, child})
	require.NoError(t, err)
	assert.InDelta(t, 2300.0, q.Total, 1e-9)
	require.Len(t, q.Fares, 3)
	assert.InDelta(t, 1000.0, q.Fares[0], 1e-9)
	assert.InDelta(t, 800.0, q.Fares[1], 1e-9)
	assert.InDelta(t, 500.0, q.Fares[2], 1e-9)
}

func TestCalculate_OrderDoesNotChangeTotal(t *testing.T) {
	passengers := []domain.Passenger{
		{Age: 35},
		{Age: 60, IsDiscountEligible: true},
		{Age: 5},
		{Age: 9, IsDiscountEligible: true},
	}
	reversed := make([]domain.Passenger, len(passengers))
	for i, p := range passengers {
		reversed[len(passengers)-1-i] = p
	}

	a, err := Total(733.33, passengers)
	require.NoError(t, err)
	b, err := Total(733.33, reversed)
	require.NoError(t, err)
	assert.InDelta(t, a, b, 1e-9)
}

func TestCalculate_Fractional(t *testing.T) {
	total, err := Total(99.99, []domain.Passenger{{Age: 30, IsDiscountEligible: true}})
	require.NoError(t, err)
	assert.InDelta(t, 79.992, total, 1e-9)
}

func TestCalculate_InvalidInput(t *testing.T) {
	seven := make([]domain.Passenger, 7)
	for i := range seven {
		seven[i] = domain.Passenger{Age: 30}
	}

	testCases := []struct {
		name       string
		basePrice  float64
		passengers []domain.Passenger
	}{
		{name: "zero base price", basePrice: 0, passengers: []domain.Passenger{{Age: 30}}},
		{name: "negative base price", basePrice: -10, passengers: []domain.Passenger{{Age: 30}}},
		{name: "NaN base price", basePrice: math.NaN(), passengers: []domain.Passenger{{Age: 30}}},
		{name: "no passengers", basePrice: 1000, passengers: nil},
		{name: "too many passengers", basePrice: 1000, passengers: seven},
		{name: "negative age", basePrice: 1000, passengers: []domain.Passenger{{Age: -1}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := Calculate(tc.basePrice, tc.passengers)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Nil(t, q)
		})
	}
}

func TestCalculate_SixPassengersAllowed(t *testing.T) {
	six := make([]domain.Passenger, domain.MaxPassengers)
	for i := range six {
		six[i] = domain.Passenger{Age: 30}
	}
	total, err := Total(100, six)
	require.NoError(t, err)
	assert.Equal(t, 600.0, total)
}
