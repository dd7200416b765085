package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateSKU      = errors.New("product with this SKU already exists")
	ErrInsufficientStock = errors.New("insufficient available stock")
	ErrNothingReserved   = errors.New("release exceeds reserved quantity")
	ErrNegativeQuantity  = errors.New("quantity must be positive")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) CreateProduct(ctx context.Context, sellerID uint, req *models.ProductCreateRequest) (*models.Product, error) {
	product := &models.Product{
		SellerID: sellerID,
		SKU:      req.SKU,
		Name:     req.Name,
		Description: req.Description,
		Price:    req.Price,
		OnHand:   req.OnHand,
		IsActive: true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateSKU
			}
			return fmt.Errorf("failed to create product: %w", err)
		}
		if req.OnHand > 0 {
			return recordMovement(tx, product.ID, models.MovementTypeIn, req.OnHand, nil, "initial stock", sellerID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return &product, nil
}

func (s *Service) ListProducts(ctx context.Context, sellerID uint, activeOnly bool) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Where("seller_id = ?", sellerID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var products []models.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id uint, req *models.ProductUpdateRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}
	return product, nil
}

// Receive adds units to on-hand stock.
func (s *Service) Receive(ctx context.Context, productID uint, quantity int, actorID uint, reason string) (*models.Product, error) {
	if quantity <= 0 {
		return nil, ErrNegativeQuantity
	}
	return s.mutate(ctx, productID, func(tx *gorm.DB, product *models.Product) error {
		if err := tx.Model(product).Update("on_hand", gorm.Expr("on_hand + ?", quantity)).Error; err != nil {
			return fmt.Errorf("failed to receive stock: %w", err)
		}
		return recordMovement(tx, product.ID, models.MovementTypeIn, quantity, nil, reason, actorID)
	})
}

// Reserve promises units to a parcel. Reserved units stay on hand but are no
// longer available to new parcels.
func (s *Service) Reserve(ctx context.Context, productID uint, quantity int, parcelID *uint, actorID uint) (*models.Product, error) {
	if quantity <= 0 {
		return nil, ErrNegativeQuantity
	}
	return s.mutate(ctx, productID, func(tx *gorm.DB, product *models.Product) error {
		if product.Available() < quantity {
			return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, product.Available(), quantity)
		}
		if err := tx.Model(product).Update("reserved", gorm.Expr("reserved + ?", quantity)).Error; err != nil {
			return fmt.Errorf("failed to reserve stock: %w", err)
		}
		return recordMovement(tx, product.ID, models.MovementTypeReserve, quantity, parcelID, "", actorID)
	})
}

// Release returns reserved units to the available pool, e.g. when a parcel
// is cancelled.
func (s *Service) Release(ctx context.Context, productID uint, quantity int, parcelID *uint, actorID uint) (*models.Product, error) {
	if quantity <= 0 {
		return nil, ErrNegativeQuantity
	}
	return s.mutate(ctx, productID, func(tx *gorm.DB, product *models.Product) error {
		if product.Reserved < quantity {
			return fmt.Errorf("%w: reserved %d, requested %d", ErrNothingReserved, product.Reserved, quantity)
		}
		if err := tx.Model(product).Update("reserved", gorm.Expr("reserved - ?", quantity)).Error; err != nil {
			return fmt.Errorf("failed to release stock: %w", err)
		}
		return recordMovement(tx, product.ID, models.MovementTypeRelease, quantity, parcelID, "", actorID)
	})
}

// Commit consumes reserved units once the parcel is delivered: both the
// reservation and the on-hand count drop.
func (s *Service) Commit(ctx context.Context, productID uint, quantity int, parcelID *uint, actorID uint) (*models.Product, error) {
	if quantity <= 0 {
		return nil, ErrNegativeQuantity
	}
	return s.mutate(ctx, productID, func(tx *gorm.DB, product *models.Product) error {
		if product.Reserved < quantity {
			return fmt.Errorf("%w: reserved %d, requested %d", ErrNothingReserved, product.Reserved, quantity)
		}
		updates := map[string]any{
			"reserved": gorm.Expr("reserved - ?", quantity),
			"on_hand":  gorm.Expr("on_hand - ?", quantity),
		}
		if err := tx.Model(product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to commit stock: %w", err)
		}
		return recordMovement(tx, product.ID, models.MovementTypeOut, quantity, parcelID, "", actorID)
	})
}

// Adjust corrects on-hand stock after a physical count. Quantity may be
// negative but can never push available stock below zero.
func (s *Service) Adjust(ctx context.Context, productID uint, actorID uint, req *models.StockAdjustRequest) (*models.Product, error) {
	if req.Quantity == 0 {
		return nil, ErrNegativeQuantity
	}
	return s.mutate(ctx, productID, func(tx *gorm.DB, product *models.Product) error {
		if product.OnHand+req.Quantity < product.Reserved {
			return fmt.Errorf("%w: adjustment would break %d reserved units", ErrInsufficientStock, product.Reserved)
		}
		if err := tx.Model(product).Update("on_hand", gorm.Expr("on_hand + ?", req.Quantity)).Error; err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}
		return recordMovement(tx, product.ID, models.MovementTypeAdjust, req.Quantity, nil, req.Reason, actorID)
	})
}

func (s *Service) ListMovements(ctx context.Context, productID uint, limit int) ([]models.StockMovement, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var movements []models.StockMovement
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}

// mutate locks the product row, applies fn, and returns the fresh record.
func (s *Service) mutate(ctx context.Context, productID uint, fn func(tx *gorm.DB, product *models.Product) error) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to fetch product: %w", err)
		}
		return fn(tx, &product)
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

func recordMovement(tx *gorm.DB, productID uint, movementType models.MovementType, quantity int, parcelID *uint, reason string, actorID uint) error {
	movement := &models.StockMovement{
		ProductID: productID,
		Type:      movementType,
		Quantity:  quantity,
		ParcelID:  parcelID,
		Reason:    reason,
		CreatedBy: actorID,
	}
	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}
