package models

import "time"

type ParcelStatus string

const (
	ParcelStatusPending   ParcelStatus = "PENDING"
	ParcelStatusReceived  ParcelStatus = "RECEIVED"
	ParcelStatusDispatched ParcelStatus = "DISPATCHED"
	ParcelStatusInTransit ParcelStatus = "IN_TRANSIT"
	ParcelStatusDelivered ParcelStatus = "DELIVERED"
	ParcelStatusRefused   ParcelStatus = "REFUSED"
	ParcelStatusReturned  ParcelStatus = "RETURNED"
	ParcelStatusCancelled ParcelStatus = "CANCELLED"
)

// parcelTransitions is the authoritative status machine. The SPA only
// displays statuses; every transition is checked here.
var parcelTransitions = map[ParcelStatus][]ParcelStatus{
	ParcelStatusPending:    {ParcelStatusReceived, ParcelStatusCancelled},
	ParcelStatusReceived:   {ParcelStatusDispatched, ParcelStatusCancelled},
	ParcelStatusDispatched: {ParcelStatusInTransit, ParcelStatusReceived},
	ParcelStatusInTransit:  {ParcelStatusDelivered, ParcelStatusRefused},
	ParcelStatusRefused:    {ParcelStatusReturned},
	ParcelStatusDelivered:  {},
	ParcelStatusReturned:   {},
	ParcelStatusCancelled:  {},
}

func (s ParcelStatus) CanTransitionTo(next ParcelStatus) bool {
	for _, allowed := range parcelTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s ParcelStatus) IsTerminal() bool {
	return len(parcelTransitions[s]) == 0
}

func ValidParcelStatus(s ParcelStatus) bool {
	_, ok := parcelTransitions[s]
	return ok
}

type Parcel struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Code           string       `gorm:"uniqueIndex;not null;size:32" json:"code"`
	SellerID       uint         `gorm:"not null;index" json:"seller_id"`
	RecipientName  string       `gorm:"not null;size:255" json:"recipient_name"`
	RecipientPhone string       `gorm:"not null;size:32" json:"recipient_phone"`
	CityID         uint         `gorm:"not null;index" json:"city_id"`
	City           *City        `gorm:"foreignKey:CityID" json:"city,omitempty"`
	Address        string       `gorm:"type:text;not null" json:"address"`
	ProductID      *uint        `gorm:"index" json:"product_id,omitempty"`
	Quantity       int          `gorm:"default:1" json:"quantity"`
	Price          float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	DeliveryFee    float64      `gorm:"type:decimal(10,2);not null" json:"delivery_fee"`
	Status         ParcelStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	Note           string       `gorm:"type:text" json:"note,omitempty"`
	OpenParcel     bool         `gorm:"default:false" json:"open_parcel"`
	DeliverySlipID *uint        `gorm:"index" json:"delivery_slip_id,omitempty"`
	DeliveredAt    *time.Time   `json:"delivered_at,omitempty"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Parcel) TableName() string {
	return "parcels"
}

type ParcelCreateRequest struct {
	RecipientName  string  `json:"recipient_name" validate:"required,min=1,max=255"`
	RecipientPhone string  `json:"recipient_phone" validate:"required"`
	CityID         uint    `json:"city_id" validate:"required"`
	Address        string  `json:"address" validate:"required"`
	ProductID      *uint   `json:"product_id,omitempty"`
	Quantity       int     `json:"quantity,omitempty"`
	Price          float64 `json:"price" validate:"required,min=0"`
	Note           string  `json:"note,omitempty"`
	OpenParcel     bool    `json:"open_parcel,omitempty"`
}

type ParcelUpdateRequest struct {
	RecipientName  *string  `json:"recipient_name,omitempty"`
	RecipientPhone *string  `json:"recipient_phone,omitempty"`
	Address        *string  `json:"address,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Note           *string  `json:"note,omitempty"`
}

type ParcelStatusChangeRequest struct {
	Status  ParcelStatus `json:"status" validate:"required"`
	Comment string       `json:"comment,omitempty"`
}

type ParcelBulkStatusRequest struct {
	ParcelIDs []uint       `json:"parcel_ids" validate:"required,min=1"`
	Status    ParcelStatus `json:"status" validate:"required"`
	Comment   string       `json:"comment,omitempty"`
}

type ParcelFilter struct {
	SellerID *uint        `query:"seller_id"`
	CityID   *uint        `query:"city_id"`
	Status   ParcelStatus `query:"status"`
	Search   string       `query:"search"`
	DateFrom *time.Time   `query:"date_from"`
	DateTo   *time.Time   `query:"date_to"`
	Page     int          `query:"page"`
	PageSize int          `query:"page_size"`
}

func (f *ParcelFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 200 {
		f.PageSize = 25
	}
}

type ParcelPage struct {
	Items      []Parcel `json:"items"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}

// BulkStatusResult reports per-parcel outcomes of a bulk transition so the
// client can show partial failures without re-fetching everything.
type BulkStatusResult struct {
	Updated []uint            `json:"updated"`
	Failed  map[uint]string   `json:"failed,omitempty"`
}
