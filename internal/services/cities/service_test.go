package cities

import (
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteForCity(t *testing.T) {
	city := &models.City{
		ID:            7,
		Name:          "Casablanca",
		DeliveryFee:   35,
		PickupEnabled: true,
		PickupFee:     10,
		IsActive:      true,
	}

	t.Run("delivery only", func(t *testing.T) {
		quote, err := QuoteForCity(city, false)
		require.NoError(t, err)
		assert.Equal(t, uint(7), quote.CityID)
		assert.Equal(t, 35.0, quote.DeliveryFee)
		assert.Zero(t, quote.PickupFee)
		assert.Equal(t, 35.0, quote.Total)
	})

	t.Run("with pickup", func(t *testing.T) {
		quote, err := QuoteForCity(city, true)
		require.NoError(t, err)
		assert.Equal(t, 10.0, quote.PickupFee)
		assert.Equal(t, 45.0, quote.Total)
	})

	t.Run("pickup disabled", func(t *testing.T) {
		noPickup := *city
		noPickup.PickupEnabled = false
		_, err := QuoteForCity(&noPickup, true)
		assert.ErrorIs(t, err, ErrNoPickup)
	})

	t.Run("inactive city", func(t *testing.T) {
		inactive := *city
		inactive.IsActive = false
		_, err := QuoteForCity(&inactive, false)
		assert.ErrorIs(t, err, ErrCityInactive)
	})
}
