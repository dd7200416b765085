package models

import "time"

type City struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"uniqueIndex;not null;size:128" json:"name"`
	Code          string    `gorm:"uniqueIndex;size:16" json:"code"`
	Zone          string    `gorm:"size:64;index" json:"zone,omitempty"`
	DeliveryFee   float64   `gorm:"type:decimal(10,2);not null" json:"delivery_fee"`
	ReturnFee     float64   `gorm:"type:decimal(10,2);default:0" json:"return_fee"`
	RefusalFee    float64   `gorm:"type:decimal(10,2);default:0" json:"refusal_fee"`
	PickupEnabled bool      `gorm:"default:false" json:"pickup_enabled"`
	PickupFee     float64   `gorm:"type:decimal(10,2);default:0" json:"pickup_fee"`
	IsActive      bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (City) TableName() string {
	return "cities"
}

type CityCreateRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=128"`
	Code          string  `json:"code" validate:"required,min=1,max=16"`
	Zone          string  `json:"zone,omitempty"`
	DeliveryFee   float64 `json:"delivery_fee" validate:"required,min=0"`
	ReturnFee     float64 `json:"return_fee,omitempty"`
	RefusalFee    float64 `json:"refusal_fee,omitempty"`
	PickupEnabled bool    `json:"pickup_enabled,omitempty"`
	PickupFee     float64 `json:"pickup_fee,omitempty"`
}

type CityUpdateRequest struct {
	Name          *string  `json:"name,omitempty"`
	Zone          *string  `json:"zone,omitempty"`
	DeliveryFee   *float64 `json:"delivery_fee,omitempty"`
	ReturnFee     *float64 `json:"return_fee,omitempty"`
	RefusalFee    *float64 `json:"refusal_fee,omitempty"`
	PickupEnabled *bool    `json:"pickup_enabled,omitempty"`
	PickupFee     *float64 `json:"pickup_fee,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
}

// TariffQuote is the fee breakdown for delivering one parcel to a city.
type TariffQuote struct {
	CityID      uint    `json:"city_id"`
	DeliveryFee float64 `json:"delivery_fee"`
	PickupFee   float64 `json:"pickup_fee,omitempty"`
	Total       float64 `json:"total"`
}
