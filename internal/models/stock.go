package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SellerID    uint      `gorm:"not null;index" json:"seller_id"`
	SKU         string    `gorm:"uniqueIndex;not null;size:64" json:"sku"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	OnHand      int       `gorm:"not null;default:0" json:"on_hand"`
	Reserved    int       `gorm:"not null;default:0" json:"reserved"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Available is the sellable quantity: units on hand not already promised to
// an in-flight parcel.
func (p *Product) Available() int {
	return p.OnHand - p.Reserved
}

type MovementType string

const (
	MovementTypeIn      MovementType = "IN"
	MovementTypeOut     MovementType = "OUT"
	MovementTypeReserve MovementType = "RESERVE"
	MovementTypeRelease MovementType = "RELEASE"
	MovementTypeAdjust  MovementType = "ADJUST"
)

type StockMovement struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	ProductID uint         `gorm:"not null;index" json:"product_id"`
	Type      MovementType `gorm:"size:16;not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	ParcelID  *uint        `gorm:"index" json:"parcel_id,omitempty"`
	Reason    string       `gorm:"size:255" json:"reason,omitempty"`
	CreatedBy uint         `gorm:"index" json:"created_by"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

type ProductCreateRequest struct {
	SKU         string  `json:"sku" validate:"required,min=1,max=64"`
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" validate:"required,min=0"`
	OnHand      int     `json:"on_hand,omitempty"`
}

type ProductUpdateRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type StockAdjustRequest struct {
	Quantity int    `json:"quantity" validate:"required"`
	Reason   string `json:"reason,omitempty"`
}
