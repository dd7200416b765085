package sms

import (
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	parcel := &models.Parcel{
		Code:          "DLV-AB12CD34EF",
		RecipientName: "Sara",
		Status:        models.ParcelStatusInTransit,
		City:          &models.City{Name: "Rabat"},
	}

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"all placeholders",
			"Hello {recipient}, parcel {code} is {status} to {city}",
			"Hello Sara, parcel DLV-AB12CD34EF is IN_TRANSIT to Rabat",
		},
		{
			"no placeholders",
			"Static message",
			"Static message",
		},
		{
			"unknown placeholder untouched",
			"Parcel {code} {tracking_url}",
			"Parcel DLV-AB12CD34EF {tracking_url}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderTemplate(tt.body, parcel))
		})
	}
}

func TestRenderTemplateNilCity(t *testing.T) {
	parcel := &models.Parcel{Code: "DLV-X", RecipientName: "Omar"}
	assert.Equal(t, "to ", RenderTemplate("to {city}", parcel))
}

func TestNotifiesOn(t *testing.T) {
	settings := &models.SmsSettings{
		Enabled:         true,
		EnabledStatuses: "IN_TRANSIT,DELIVERED",
	}
	assert.True(t, settings.NotifiesOn(models.ParcelStatusInTransit))
	assert.True(t, settings.NotifiesOn(models.ParcelStatusDelivered))
	assert.False(t, settings.NotifiesOn(models.ParcelStatusRefused))

	settings.Enabled = false
	assert.False(t, settings.NotifiesOn(models.ParcelStatusDelivered))
}

func TestDefaultBody(t *testing.T) {
	parcel := &models.Parcel{Code: "DLV-Y"}
	assert.Contains(t, defaultBody(parcel, models.ParcelStatusDelivered), "DLV-Y")
	assert.Empty(t, defaultBody(parcel, models.ParcelStatusCancelled))
}
