package deliveryslips

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/utils"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

var (
	ErrSlipNotFound      = errors.New("delivery slip not found")
	ErrSlipNotOpen       = errors.New("delivery slip is not open")
	ErrInvalidTransition = errors.New("slip status transition not allowed")
	ErrParcelNotFound    = errors.New("parcel not found")
	ErrParcelAssigned    = errors.New("parcel is already on another slip")
	ErrParcelNotScannable = errors.New("parcel status does not allow scanning onto this slip")
)

// scannableStatuses maps slip type to the parcel statuses a scanner will
// accept. A delivery slip collects received parcels; a return slip collects
// refused ones.
var scannableStatuses = map[models.SlipType][]models.ParcelStatus{
	models.SlipTypeDelivery: {models.ParcelStatusReceived},
	models.SlipTypePickup:   {models.ParcelStatusPending},
	models.SlipTypeReturn:   {models.ParcelStatusRefused},
}

// ParcelMover applies one parcel status transition. Slip side effects go
// through it rather than raw updates so every hop lands in the event trail
// and can notify the recipient.
type ParcelMover interface {
	ChangeStatus(ctx context.Context, id uint, actorID string, req *models.ParcelStatusChangeRequest) (*models.Parcel, error)
}

type Service struct {
	db      *gorm.DB
	parcels ParcelMover
}

func NewService(db *gorm.DB, parcels ParcelMover) *Service {
	return &Service{db: db, parcels: parcels}
}

func (s *Service) CreateSlip(ctx context.Context, createdBy uint, req *models.SlipCreateRequest) (*models.DeliverySlip, error) {
	slipType := req.Type
	if slipType == "" {
		slipType = models.SlipTypeDelivery
	}

	slip := &models.DeliverySlip{
		Code:      generateSlipCode(slipType),
		Type:      slipType,
		Status:    models.SlipStatusOpen,
		CityID:    req.CityID,
		CourierID: req.CourierID,
		CreatedBy: createdBy,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(slip).Error; err != nil {
			return fmt.Errorf("failed to create slip: %w", err)
		}
		for _, parcelID := range req.ParcelIDs {
			var parcel models.Parcel
			if err := tx.First(&parcel, parcelID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: id %d", ErrParcelNotFound, parcelID)
				}
				return fmt.Errorf("failed to fetch parcel %d: %w", parcelID, err)
			}
			if err := attachParcel(tx, slip, &parcel); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetSlip(ctx, slip.ID)
}

func (s *Service) GetSlip(ctx context.Context, id uint) (*models.DeliverySlip, error) {
	var slip models.DeliverySlip
	err := s.db.WithContext(ctx).Preload("Parcels").Preload("Parcels.City").First(&slip, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlipNotFound
		}
		return nil, fmt.Errorf("failed to fetch slip: %w", err)
	}
	return &slip, nil
}

func (s *Service) ListSlips(ctx context.Context, filter *models.SlipFilter) (*models.SlipPage, error) {
	filter.Normalize()

	query := s.db.WithContext(ctx).Model(&models.DeliverySlip{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CityID != nil {
		query = query.Where("city_id = ?", *filter.CityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count slips: %w", err)
	}

	var items []models.DeliverySlip
	err := query.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list slips: %w", err)
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	return &models.SlipPage{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ScanParcel attaches one parcel to an open slip by its tracking code. This
// backs the warehouse barcode-scanner flow.
func (s *Service) ScanParcel(ctx context.Context, slipID uint, req *models.SlipScanRequest) (*models.Parcel, error) {
	var scanned models.Parcel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slip models.DeliverySlip
		if err := tx.First(&slip, slipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlipNotFound
			}
			return fmt.Errorf("failed to fetch slip: %w", err)
		}
		if slip.Status != models.SlipStatusOpen {
			return ErrSlipNotOpen
		}

		if err := tx.Where("code = ?", req.ParcelCode).First(&scanned).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: code %s", ErrParcelNotFound, req.ParcelCode)
			}
			return fmt.Errorf("failed to fetch parcel: %w", err)
		}
		return attachParcel(tx, &slip, &scanned)
	})
	if err != nil {
		return nil, err
	}
	return &scanned, nil
}

func (s *Service) RemoveParcel(ctx context.Context, slipID, parcelID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slip models.DeliverySlip
		if err := tx.First(&slip, slipID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlipNotFound
			}
			return fmt.Errorf("failed to fetch slip: %w", err)
		}
		if slip.Status != models.SlipStatusOpen {
			return ErrSlipNotOpen
		}

		result := tx.Model(&models.Parcel{}).
			Where("id = ? AND delivery_slip_id = ?", parcelID, slipID).
			Update("delivery_slip_id", nil)
		if result.Error != nil {
			return fmt.Errorf("failed to detach parcel: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: id %d", ErrParcelNotFound, parcelID)
		}
		return nil
	})
}

// ChangeStatus moves the slip along its lifecycle. Dispatching a delivery
// slip then runs every attached parcel through the parcel status machine to
// IN_TRANSIT, so each hop records an event and fires notifications.
func (s *Service) ChangeStatus(ctx context.Context, id uint, actorID string, req *models.SlipStatusChangeRequest) (*models.DeliverySlip, error) {
	var slipCode string
	var dispatchIDs []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slip models.DeliverySlip
		if err := tx.First(&slip, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlipNotFound
			}
			return fmt.Errorf("failed to fetch slip: %w", err)
		}
		if !slip.Status.CanTransitionTo(req.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, slip.Status, req.Status)
		}

		updates := map[string]any{"status": req.Status}
		if req.Status == models.SlipStatusClosed {
			now := time.Now().UTC()
			updates["closed_at"] = &now
		}
		if err := tx.Model(&slip).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to change slip status: %w", err)
		}

		if req.Status == models.SlipStatusDispatched && slip.Type == models.SlipTypeDelivery {
			slipCode = slip.Code
			err := tx.Model(&models.Parcel{}).
				Where("delivery_slip_id = ? AND status = ?", slip.ID, models.ParcelStatusReceived).
				Pluck("id", &dispatchIDs).Error
			if err != nil {
				return fmt.Errorf("failed to collect slip parcels: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchParcels(ctx, slipCode, actorID, dispatchIDs)
	return s.GetSlip(ctx, id)
}

// dispatchParcels walks attached parcels RECEIVED -> DISPATCHED -> IN_TRANSIT.
// A parcel that fails a hop keeps its current status and is logged; the slip
// stays dispatched either way.
func (s *Service) dispatchParcels(ctx context.Context, slipCode, actorID string, parcelIDs []uint) {
	if s.parcels == nil || len(parcelIDs) == 0 {
		return
	}

	comment := "dispatched on slip " + slipCode
	for _, parcelID := range parcelIDs {
		for _, next := range []models.ParcelStatus{models.ParcelStatusDispatched, models.ParcelStatusInTransit} {
			_, err := s.parcels.ChangeStatus(ctx, parcelID, actorID, &models.ParcelStatusChangeRequest{
				Status:  next,
				Comment: comment,
			})
			if err != nil {
				log.Errorf("Failed to move parcel %d to %s for slip %s: %v", parcelID, next, slipCode, err)
				break
			}
		}
	}
}

// ExportCSV renders the slip manifest for printing or import into a courier
// system.
func (s *Service) ExportCSV(ctx context.Context, id uint) ([]byte, error) {
	slip, err := s.GetSlip(ctx, id)
	if err != nil {
		return nil, err
	}

	buf := utils.GetBuffer()
	defer utils.PutBuffer(buf)

	w := csv.NewWriter(buf)
	header := []string{"code", "recipient", "phone", "city", "address", "price", "delivery_fee", "status"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, p := range slip.Parcels {
		cityName := ""
		if p.City != nil {
			cityName = p.City.Name
		}
		record := []string{
			p.Code,
			p.RecipientName,
			p.RecipientPhone,
			cityName,
			p.Address,
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			strconv.FormatFloat(p.DeliveryFee, 'f', 2, 64),
			string(p.Status),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func attachParcel(tx *gorm.DB, slip *models.DeliverySlip, parcel *models.Parcel) error {
	if parcel.DeliverySlipID != nil && *parcel.DeliverySlipID != slip.ID {
		return fmt.Errorf("%w: %s", ErrParcelAssigned, parcel.Code)
	}
	if !statusScannable(slip.Type, parcel.Status) {
		return fmt.Errorf("%w: %s is %s", ErrParcelNotScannable, parcel.Code, parcel.Status)
	}
	if err := tx.Model(parcel).Update("delivery_slip_id", slip.ID).Error; err != nil {
		return fmt.Errorf("failed to attach parcel: %w", err)
	}
	return nil
}

func statusScannable(slipType models.SlipType, status models.ParcelStatus) bool {
	for _, allowed := range scannableStatuses[slipType] {
		if allowed == status {
			return true
		}
	}
	return false
}

func generateSlipCode(slipType models.SlipType) string {
	prefix := "DS"
	switch slipType {
	case models.SlipTypePickup:
		prefix = "PS"
	case models.SlipTypeReturn:
		prefix = "RS"
	}
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return prefix + "-" + strings.ToUpper(hex.EncodeToString(buf))
}
