package parcels

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/cities"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

var (
	ErrParcelNotFound    = errors.New("parcel not found")
	ErrInvalidStatus     = errors.New("invalid parcel status")
	ErrInvalidTransition = errors.New("parcel status transition not allowed")
	ErrParcelLocked      = errors.New("parcel can no longer be edited")
	ErrNotOwner          = errors.New("parcel belongs to another seller")
)

// EventRecorder receives one event per status change. Implementations must
// not block the request path for long; failures are logged, not surfaced.
type EventRecorder interface {
	RecordParcelEvent(ctx context.Context, event *models.ParcelEvent) error
}

// Notifier is invoked after a successful status change so seller-configured
// SMS notifications can fire.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, parcel *models.Parcel, status models.ParcelStatus)
}

// Warehouse settles product stock for warehouse-fulfilled parcels: reserved
// at creation, committed on delivery, released when the parcel comes back.
type Warehouse interface {
	Reserve(ctx context.Context, productID uint, quantity int, parcelID *uint, actorID uint) (*models.Product, error)
	Release(ctx context.Context, productID uint, quantity int, parcelID *uint, actorID uint) (*models.Product, error)
	Commit(ctx context.Context, productID uint, quantity int, parcelID *uint, actorID uint) (*models.Product, error)
}

type Service struct {
	db        *gorm.DB
	cities    *cities.Service
	events    EventRecorder
	notifier  Notifier
	warehouse Warehouse
}

func NewService(db *gorm.DB, cityService *cities.Service, events EventRecorder, notifier Notifier, warehouse Warehouse) *Service {
	return &Service{db: db, cities: cityService, events: events, notifier: notifier, warehouse: warehouse}
}

// CreateParcel registers a parcel and snapshots the destination city's
// current delivery fee onto it.
func (s *Service) CreateParcel(ctx context.Context, sellerID uint, req *models.ParcelCreateRequest) (*models.Parcel, error) {
	quote, err := s.cities.Quote(ctx, req.CityID, false)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	parcel := &models.Parcel{
		Code:           generateParcelCode(),
		SellerID:       sellerID,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		CityID:         req.CityID,
		Address:        req.Address,
		ProductID:      req.ProductID,
		Quantity:       quantity,
		Price:          req.Price,
		DeliveryFee:    quote.Total,
		Status:         models.ParcelStatusPending,
		Note:           req.Note,
		OpenParcel:     req.OpenParcel,
	}

	if err := s.db.WithContext(ctx).Create(parcel).Error; err != nil {
		return nil, fmt.Errorf("failed to create parcel: %w", err)
	}

	if parcel.ProductID != nil && s.warehouse != nil {
		if _, err := s.warehouse.Reserve(ctx, *parcel.ProductID, parcel.Quantity, &parcel.ID, sellerID); err != nil {
			if delErr := s.db.WithContext(ctx).Delete(parcel).Error; delErr != nil {
				log.Errorf("Failed to remove parcel %s after reservation failure: %v", parcel.Code, delErr)
			}
			return nil, err
		}
	}

	s.recordEvent(ctx, parcel, "", models.ParcelStatusPending, "", "parcel created")
	return parcel, nil
}

func (s *Service) GetParcel(ctx context.Context, id uint) (*models.Parcel, error) {
	var parcel models.Parcel
	err := s.db.WithContext(ctx).Preload("City").First(&parcel, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParcelNotFound
		}
		return nil, fmt.Errorf("failed to fetch parcel: %w", err)
	}
	return &parcel, nil
}

func (s *Service) GetParcelByCode(ctx context.Context, code string) (*models.Parcel, error) {
	var parcel models.Parcel
	err := s.db.WithContext(ctx).Preload("City").Where("code = ?", code).First(&parcel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParcelNotFound
		}
		return nil, fmt.Errorf("failed to fetch parcel: %w", err)
	}
	return &parcel, nil
}

func (s *Service) ListParcels(ctx context.Context, filter *models.ParcelFilter) (*models.ParcelPage, error) {
	filter.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Parcel{})
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.CityID != nil {
		query = query.Where("city_id = ?", *filter.CityID)
	}
	if filter.Status != "" {
		if !models.ValidParcelStatus(filter.Status) {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR recipient_name LIKE ? OR recipient_phone LIKE ?", like, like, like)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count parcels: %w", err)
	}

	var items []models.Parcel
	err := query.Preload("City").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list parcels: %w", err)
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	return &models.ParcelPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateParcel edits recipient details. Only PENDING parcels are editable;
// once the warehouse receives a parcel its data is frozen.
func (s *Service) UpdateParcel(ctx context.Context, id uint, sellerID uint, req *models.ParcelUpdateRequest) (*models.Parcel, error) {
	parcel, err := s.GetParcel(ctx, id)
	if err != nil {
		return nil, err
	}
	if parcel.SellerID != sellerID {
		return nil, ErrNotOwner
	}
	if parcel.Status != models.ParcelStatusPending {
		return nil, ErrParcelLocked
	}

	updates := make(map[string]any)
	if req.RecipientName != nil {
		updates["recipient_name"] = *req.RecipientName
	}
	if req.RecipientPhone != nil {
		updates["recipient_phone"] = *req.RecipientPhone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(parcel).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update parcel: %w", err)
		}
	}
	return s.GetParcel(ctx, id)
}

// ChangeStatus applies one transition of the parcel status machine.
func (s *Service) ChangeStatus(ctx context.Context, id uint, actorID string, req *models.ParcelStatusChangeRequest) (*models.Parcel, error) {
	if !models.ValidParcelStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	var parcel models.Parcel
	var prev models.ParcelStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&parcel, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrParcelNotFound
			}
			return fmt.Errorf("failed to fetch parcel: %w", err)
		}
		prev = parcel.Status
		return applyTransition(tx, &parcel, req.Status)
	})
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, &parcel, prev, req.Status, actorID, req.Comment)
	s.settleStock(ctx, &parcel, req.Status)
	s.notify(ctx, &parcel, req.Status)
	return &parcel, nil
}

// settleStock commits or releases the reservation a warehouse parcel holds.
// Settlement failures are logged and reconciled through stock adjustments;
// they never undo an applied status change.
func (s *Service) settleStock(ctx context.Context, parcel *models.Parcel, status models.ParcelStatus) {
	if parcel.ProductID == nil || s.warehouse == nil {
		return
	}

	var err error
	switch status {
	case models.ParcelStatusDelivered:
		_, err = s.warehouse.Commit(ctx, *parcel.ProductID, parcel.Quantity, &parcel.ID, parcel.SellerID)
	case models.ParcelStatusCancelled, models.ParcelStatusReturned:
		_, err = s.warehouse.Release(ctx, *parcel.ProductID, parcel.Quantity, &parcel.ID, parcel.SellerID)
	default:
		return
	}
	if err != nil {
		log.Errorf("Failed to settle stock for parcel %s (%s): %v", parcel.Code, status, err)
	}
}

// BulkChangeStatus applies the same transition to many parcels. Each parcel
// succeeds or fails on its own; one invalid parcel never rolls back the rest.
func (s *Service) BulkChangeStatus(ctx context.Context, actorID string, req *models.ParcelBulkStatusRequest) (*models.BulkStatusResult, error) {
	if !models.ValidParcelStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	result := &models.BulkStatusResult{
		Updated: make([]uint, 0, len(req.ParcelIDs)),
		Failed:  make(map[uint]string),
	}

	for _, id := range req.ParcelIDs {
		parcel, err := s.ChangeStatus(ctx, id, actorID, &models.ParcelStatusChangeRequest{
			Status:  req.Status,
			Comment: req.Comment,
		})
		if err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Updated = append(result.Updated, parcel.ID)
	}

	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result, nil
}

func applyTransition(tx *gorm.DB, parcel *models.Parcel, next models.ParcelStatus) error {
	if !parcel.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, parcel.Status, next)
	}

	updates := map[string]any{"status": next}
	if next == models.ParcelStatusDelivered {
		now := time.Now().UTC()
		updates["delivered_at"] = &now
	}
	if err := tx.Model(parcel).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to change parcel status: %w", err)
	}
	return nil
}

func (s *Service) recordEvent(ctx context.Context, parcel *models.Parcel, from, to models.ParcelStatus, actorID, comment string) {
	if s.events == nil {
		return
	}
	event := &models.ParcelEvent{
		ID:         newEventID(),
		ParcelID:   parcel.ID,
		ParcelCode: parcel.Code,
		SellerID:   parcel.SellerID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		Comment:    comment,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.RecordParcelEvent(ctx, event); err != nil {
		log.Errorf("Failed to record parcel event for %s: %v", parcel.Code, err)
	}
}

func (s *Service) notify(ctx context.Context, parcel *models.Parcel, status models.ParcelStatus) {
	if s.notifier != nil {
		s.notifier.NotifyStatusChange(ctx, parcel, status)
	}
}

// generateParcelCode produces the public tracking code printed on labels.
func generateParcelCode() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("DLV-%d", time.Now().UnixNano())
	}
	return "DLV-" + strings.ToUpper(hex.EncodeToString(buf))
}

func newEventID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
