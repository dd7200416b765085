package models

import "time"

// ParcelEvent is one row in the parcel history stream. Events are written to
// ClickHouse and never updated; the relational side only keeps the current
// status.
type ParcelEvent struct {
	ID         string       `gorm:"type:String" json:"id"`
	ParcelID   uint         `gorm:"type:UInt64" json:"parcel_id"`
	ParcelCode string       `gorm:"type:String" json:"parcel_code"`
	SellerID   uint         `gorm:"type:UInt64" json:"seller_id"`
	FromStatus ParcelStatus `gorm:"type:String" json:"from_status"`
	ToStatus   ParcelStatus `gorm:"type:String" json:"to_status"`
	ActorID    string       `gorm:"type:String" json:"actor_id"`
	Comment    string       `gorm:"type:String" json:"comment,omitempty"`
	OccurredAt time.Time    `gorm:"type:DateTime64(3)" json:"occurred_at"`
}

func (ParcelEvent) TableName() string {
	return "parcel_events"
}

// EventStoreConfig configures the analytical event store connection.
type EventStoreConfig struct {
	Enabled       bool   `yaml:"enabled" json:"enabled"`
	DSN           string `yaml:"dsn,omitempty" json:"dsn,omitzero"`
	Host          string `yaml:"host,omitempty" json:"host,omitzero"`
	Port          int    `yaml:"port,omitempty" json:"port,omitzero"`
	Database      string `yaml:"database,omitempty" json:"database,omitzero"`
	Username      string `yaml:"username,omitempty" json:"username,omitzero"`
	Password      string `yaml:"password,omitempty" json:"password,omitzero"`
	FlushInterval int    `yaml:"flush_interval_sec,omitempty" json:"flush_interval_sec,omitzero"`
	BatchSize     int    `yaml:"batch_size,omitempty" json:"batch_size,omitzero"`
}
