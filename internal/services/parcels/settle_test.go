package parcels

import (
	"context"
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
)

type fakeWarehouse struct {
	reserved  int
	released  int
	committed int
}

func (f *fakeWarehouse) Reserve(ctx context.Context, productID uint, quantity int, parcelID *uint, actorID uint) (*models.Product, error) {
	f.reserved += quantity
	return &models.Product{ID: productID}, nil
}

func (f *fakeWarehouse) Release(ctx context.Context, productID uint, quantity int, parcelID *uint, actorID uint) (*models.Product, error) {
	f.released += quantity
	return &models.Product{ID: productID}, nil
}

func (f *fakeWarehouse) Commit(ctx context.Context, productID uint, quantity int, parcelID *uint, actorID uint) (*models.Product, error) {
	f.committed += quantity
	return &models.Product{ID: productID}, nil
}

func TestSettleStock(t *testing.T) {
	productID := uint(7)

	tests := []struct {
		name      string
		productID *uint
		status    models.ParcelStatus
		reserved  int
		released  int
		committed int
	}{
		{"delivered commits", &productID, models.ParcelStatusDelivered, 0, 0, 3},
		{"cancelled releases", &productID, models.ParcelStatusCancelled, 0, 3, 0},
		{"returned releases", &productID, models.ParcelStatusReturned, 0, 3, 0},
		{"in transit does nothing", &productID, models.ParcelStatusInTransit, 0, 0, 0},
		{"no product does nothing", nil, models.ParcelStatusDelivered, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warehouse := &fakeWarehouse{}
			svc := &Service{warehouse: warehouse}
			parcel := &models.Parcel{
				ID:        1,
				SellerID:  2,
				ProductID: tt.productID,
				Quantity:  3,
			}

			svc.settleStock(context.Background(), parcel, tt.status)

			assert.Equal(t, tt.reserved, warehouse.reserved)
			assert.Equal(t, tt.released, warehouse.released)
			assert.Equal(t, tt.committed, warehouse.committed)
		})
	}
}

func TestSettleStockWithoutWarehouse(t *testing.T) {
	productID := uint(7)
	svc := &Service{}
	parcel := &models.Parcel{ID: 1, ProductID: &productID, Quantity: 1}

	// Must not panic when no warehouse is wired.
	svc.settleStock(context.Background(), parcel, models.ParcelStatusDelivered)
}
