package models

import "time"

type SlipType string

const (
	SlipTypeDelivery SlipType = "DELIVERY"
	SlipTypePickup   SlipType = "PICKUP"
	SlipTypeReturn   SlipType = "RETURN"
)

type SlipStatus string

const (
	SlipStatusOpen       SlipStatus = "OPEN"
	SlipStatusClosed     SlipStatus = "CLOSED"
	SlipStatusDispatched SlipStatus = "DISPATCHED"
	SlipStatusCompleted  SlipStatus = "COMPLETED"
)

var slipTransitions = map[SlipStatus][]SlipStatus{
	SlipStatusOpen:       {SlipStatusClosed},
	SlipStatusClosed:     {SlipStatusDispatched, SlipStatusOpen},
	SlipStatusDispatched: {SlipStatusCompleted},
	SlipStatusCompleted:  {},
}

func (s SlipStatus) CanTransitionTo(next SlipStatus) bool {
	for _, allowed := range slipTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type DeliverySlip struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"uniqueIndex;not null;size:32" json:"code"`
	Type      SlipType   `gorm:"size:16;not null;default:'DELIVERY'" json:"type"`
	Status    SlipStatus `gorm:"size:16;not null;default:'OPEN';index" json:"status"`
	CityID    *uint      `gorm:"index" json:"city_id,omitempty"`
	CourierID *uint      `gorm:"index" json:"courier_id,omitempty"`
	CreatedBy uint       `gorm:"not null;index" json:"created_by"`
	Parcels   []Parcel   `gorm:"foreignKey:DeliverySlipID" json:"parcels,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DeliverySlip) TableName() string {
	return "delivery_slips"
}

type SlipCreateRequest struct {
	Type      SlipType `json:"type,omitempty"`
	CityID    *uint    `json:"city_id,omitempty"`
	CourierID *uint    `json:"courier_id,omitempty"`
	ParcelIDs []uint   `json:"parcel_ids,omitempty"`
}

type SlipScanRequest struct {
	ParcelCode string `json:"parcel_code" validate:"required"`
}

type SlipStatusChangeRequest struct {
	Status SlipStatus `json:"status" validate:"required"`
}

type SlipFilter struct {
	Type     SlipType   `query:"type"`
	Status   SlipStatus `query:"status"`
	CityID   *uint      `query:"city_id"`
	Page     int        `query:"page"`
	PageSize int        `query:"page_size"`
}

func (f *SlipFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 25
	}
}

type SlipPage struct {
	Items      []DeliverySlip `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}
