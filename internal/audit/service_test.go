package audit

import (
	"context"
	"testing"

	"github.com/counterline/counterline-backend/pkg/db/dbtest"
	"github.com/counterline/counterline-backend/pkg/db/models"
	"github.com/counterline/counterline-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepository struct {
	created []*models.OrderStatusEvent
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, event *models.OrderStatusEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusEvent, error) {
	return nil, nil
}

func TestService_RecordForcedTransition(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	from := enums.OrderStatusCollected
	clientID := uuid.New()
	event, err := svc.Record(context.Background(), RecordInput{
		OrderID: uuid.New(),
		Action:  enums.AuditActionForced,
		From:    &from,
		To:      enums.OrderStatusConfirm,
		Actor:   Actor{ID: clientID, Role: enums.RoleClient},
		Forced:  true,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "client", event.ActorRole)
	assert.True(t, event.Forced)
	require.NotNil(t, event.ActorID)
	assert.Equal(t, clientID, *event.ActorID)
}

func TestService_RecordValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), RecordInput{Action: enums.AuditActionPlaced, To: enums.OrderStatusConfirm})
	assert.Error(t, err)

	_, err = svc.Record(context.Background(), RecordInput{OrderID: uuid.New(), Action: enums.AuditActionPlaced, To: "Lost"})
	assert.Error(t, err)

	_, err = NewService(nil)
	assert.Error(t, err)
}

func TestService_ListByOrderRoundTripsThroughSQLite(t *testing.T) {
	conn := dbtest.NewSQLite(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	ctx := context.Background()
	orderID := uuid.New()
	_, err = svc.Record(ctx, RecordInput{OrderID: orderID, Action: enums.AuditActionPlaced, To: enums.OrderStatusConfirm, Actor: System})
	require.NoError(t, err)

	from := enums.OrderStatusConfirm
	_, err = svc.Record(ctx, RecordInput{OrderID: orderID, Action: enums.AuditActionTransition, From: &from, To: enums.OrderStatusReady, Actor: Actor{ID: uuid.New(), Role: enums.RoleClient}})
	require.NoError(t, err)

	events, err := svc.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, enums.AuditActionPlaced, events[0].Action)
	assert.Equal(t, "system", events[0].ActorRole)
	assert.Nil(t, events[0].ActorID)
	assert.Equal(t, enums.OrderStatusReady, events[1].ToStatus)
	require.NotNil(t, events[1].FromStatus)
	assert.Equal(t, enums.OrderStatusConfirm, *events[1].FromStatus)
}
