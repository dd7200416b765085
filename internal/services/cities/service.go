package cities

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"gorm.io/gorm"
)

var (
	ErrCityNotFound  = errors.New("city not found")
	ErrCityInactive  = errors.New("city is not active")
	ErrDuplicateCity = errors.New("city with this name or code already exists")
	ErrNoPickup      = errors.New("pickup is not available in this city")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) CreateCity(ctx context.Context, req *models.CityCreateRequest) (*models.City, error) {
	city := &models.City{
		Name:          req.Name,
		Code:          req.Code,
		Zone:          req.Zone,
		DeliveryFee:   req.DeliveryFee,
		ReturnFee:     req.ReturnFee,
		RefusalFee:    req.RefusalFee,
		PickupEnabled: req.PickupEnabled,
		PickupFee:     req.PickupFee,
		IsActive:      true,
	}

	if err := s.db.WithContext(ctx).Create(city).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCity
		}
		return nil, fmt.Errorf("failed to create city: %w", err)
	}
	return city, nil
}

func (s *Service) GetCity(ctx context.Context, id uint) (*models.City, error) {
	var city models.City
	err := s.db.WithContext(ctx).First(&city, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("failed to fetch city: %w", err)
	}
	return &city, nil
}

func (s *Service) ListCities(ctx context.Context, activeOnly bool) ([]models.City, error) {
	query := s.db.WithContext(ctx).Model(&models.City{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var cities []models.City
	if err := query.Order("name ASC").Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

func (s *Service) UpdateCity(ctx context.Context, id uint, req *models.CityUpdateRequest) (*models.City, error) {
	city, err := s.GetCity(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Zone != nil {
		updates["zone"] = *req.Zone
	}
	if req.DeliveryFee != nil {
		updates["delivery_fee"] = *req.DeliveryFee
	}
	if req.ReturnFee != nil {
		updates["return_fee"] = *req.ReturnFee
	}
	if req.RefusalFee != nil {
		updates["refusal_fee"] = *req.RefusalFee
	}
	if req.PickupEnabled != nil {
		updates["pickup_enabled"] = *req.PickupEnabled
	}
	if req.PickupFee != nil {
		updates["pickup_fee"] = *req.PickupFee
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(city).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update city: %w", err)
		}
	}
	return s.GetCity(ctx, id)
}

// Quote prices a single parcel for a destination city. The quoted fee is
// snapshotted onto the parcel at creation, so later tariff edits never touch
// parcels already in flight.
func (s *Service) Quote(ctx context.Context, cityID uint, withPickup bool) (*models.TariffQuote, error) {
	city, err := s.GetCity(ctx, cityID)
	if err != nil {
		return nil, err
	}
	return QuoteForCity(city, withPickup)
}

func QuoteForCity(city *models.City, withPickup bool) (*models.TariffQuote, error) {
	if !city.IsActive {
		return nil, ErrCityInactive
	}
	if withPickup && !city.PickupEnabled {
		return nil, ErrNoPickup
	}

	quote := &models.TariffQuote{
		CityID:      city.ID,
		DeliveryFee: city.DeliveryFee,
		Total:       city.DeliveryFee,
	}
	if withPickup {
		quote.PickupFee = city.PickupFee
		quote.Total += city.PickupFee
	}
	return quote, nil
}
