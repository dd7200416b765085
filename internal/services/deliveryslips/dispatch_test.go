package deliveryslips

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/parcels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "slips.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.City{}, &models.Parcel{}, &models.DeliverySlip{}))
	return db
}

type captureRecorder struct {
	events []*models.ParcelEvent
}

func (r *captureRecorder) RecordParcelEvent(_ context.Context, event *models.ParcelEvent) error {
	r.events = append(r.events, event)
	return nil
}

type captureNotifier struct {
	statuses []models.ParcelStatus
}

func (n *captureNotifier) NotifyStatusChange(_ context.Context, _ *models.Parcel, status models.ParcelStatus) {
	n.statuses = append(n.statuses, status)
}

func seedReceivedParcel(t *testing.T, db *gorm.DB, code string) *models.Parcel {
	t.Helper()
	city := &models.City{Name: "Casablanca-" + code, Code: "CASA-" + code, DeliveryFee: 30}
	require.NoError(t, db.Create(city).Error)

	parcel := &models.Parcel{
		Code:           code,
		SellerID:       1,
		RecipientName:  "Sara",
		RecipientPhone: "+212600000001",
		CityID:         city.ID,
		Address:        "12 Rue des Orangers",
		Quantity:       1,
		Price:          199,
		DeliveryFee:    30,
		Status:         models.ParcelStatusReceived,
	}
	require.NoError(t, db.Create(parcel).Error)
	return parcel
}

func TestDispatchMovesAttachedParcelsInTransit(t *testing.T) {
	db := newTestDB(t)
	recorder := &captureRecorder{}
	notifier := &captureNotifier{}
	parcelSvc := parcels.NewService(db, nil, recorder, notifier, nil)
	svc := NewService(db, parcelSvc)

	parcel := seedReceivedParcel(t, db, "DLV-TEST000001")

	ctx := context.Background()
	slip, err := svc.CreateSlip(ctx, 2, &models.SlipCreateRequest{
		Type:      models.SlipTypeDelivery,
		ParcelIDs: []uint{parcel.ID},
	})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, slip.ID, "2", &models.SlipStatusChangeRequest{Status: models.SlipStatusClosed})
	require.NoError(t, err)
	dispatched, err := svc.ChangeStatus(ctx, slip.ID, "2", &models.SlipStatusChangeRequest{Status: models.SlipStatusDispatched})
	require.NoError(t, err)

	assert.Equal(t, models.SlipStatusDispatched, dispatched.Status)
	require.Len(t, dispatched.Parcels, 1)
	assert.Equal(t, models.ParcelStatusInTransit, dispatched.Parcels[0].Status)

	// Both hops land in the event trail with the acting user and slip code.
	require.Len(t, recorder.events, 2)
	assert.Equal(t, models.ParcelStatusReceived, recorder.events[0].FromStatus)
	assert.Equal(t, models.ParcelStatusDispatched, recorder.events[0].ToStatus)
	assert.Equal(t, models.ParcelStatusDispatched, recorder.events[1].FromStatus)
	assert.Equal(t, models.ParcelStatusInTransit, recorder.events[1].ToStatus)
	assert.Equal(t, "2", recorder.events[0].ActorID)
	assert.Contains(t, recorder.events[0].Comment, slip.Code)

	// And the recipient notification hook fires per hop.
	assert.Equal(t, []models.ParcelStatus{models.ParcelStatusDispatched, models.ParcelStatusInTransit}, notifier.statuses)
}

func TestDispatchLeavesReturnSlipParcelsAlone(t *testing.T) {
	db := newTestDB(t)
	parcelSvc := parcels.NewService(db, nil, nil, nil, nil)
	svc := NewService(db, parcelSvc)

	city := &models.City{Name: "Rabat", Code: "RBT", DeliveryFee: 25}
	require.NoError(t, db.Create(city).Error)
	refused := &models.Parcel{
		Code:           "DLV-TEST000002",
		SellerID:       1,
		RecipientName:  "Omar",
		RecipientPhone: "+212600000002",
		CityID:         city.ID,
		Address:        "5 Avenue Hassan II",
		Quantity:       1,
		Price:          80,
		DeliveryFee:    25,
		Status:         models.ParcelStatusRefused,
	}
	require.NoError(t, db.Create(refused).Error)

	ctx := context.Background()
	slip, err := svc.CreateSlip(ctx, 2, &models.SlipCreateRequest{
		Type:      models.SlipTypeReturn,
		ParcelIDs: []uint{refused.ID},
	})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, slip.ID, "2", &models.SlipStatusChangeRequest{Status: models.SlipStatusClosed})
	require.NoError(t, err)
	dispatched, err := svc.ChangeStatus(ctx, slip.ID, "2", &models.SlipStatusChangeRequest{Status: models.SlipStatusDispatched})
	require.NoError(t, err)

	require.Len(t, dispatched.Parcels, 1)
	assert.Equal(t, models.ParcelStatusRefused, dispatched.Parcels[0].Status)
}

func TestDispatchParcelsWithoutMover(t *testing.T) {
	svc := NewService(nil, nil)
	assert.NotPanics(t, func() {
		svc.dispatchParcels(context.Background(), "DS-ABCD1234", "1", []uint{1, 2})
	})
}
