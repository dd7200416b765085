package stock

import (
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestProductAvailable(t *testing.T) {
	tests := []struct {
		name      string
		onHand    int
		reserved  int
		available int
	}{
		{"no reservations", 10, 0, 10},
		{"partially reserved", 10, 4, 6},
		{"fully reserved", 10, 10, 0},
		{"empty", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.Product{OnHand: tt.onHand, Reserved: tt.reserved}
			assert.Equal(t, tt.available, p.Available())
		})
	}
}
