package store

import (
	"context"
	"errors"
	"io"
	"testing"

	"salon/internal/model"
	"salon/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) LoadClients(ctx context.Context) ([]model.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Client), args.Error(1)
}
func (m *mockRepo) SaveClients(ctx context.Context, c []model.Client) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockRepo) LoadReservations(ctx context.Context) ([]model.Reservation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Reservation), args.Error(1)
}
func (m *mockRepo) SaveReservations(ctx context.Context, r []model.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(eventType string, payload any) { m.Called(eventType, payload) }

var errDiskFull = errors.New("disk full")

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type fixture struct {
	gw           *storage.Gateway
	clients      *Clients
	reservations *Reservations
}

func newFixture(t *testing.T, rules Rules) fixture {
	t.Helper()
	backend, err := storage.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	gw := storage.NewGateway(backend, true, testLogger())

	clients := NewClients(gw, nil, testLogger())
	require.NoError(t, clients.Load(context.Background()))
	reservations := NewReservations(gw, clients, rules, nil, testLogger())
	require.NoError(t, reservations.Load(context.Background()))
	return fixture{gw: gw, clients: clients, reservations: reservations}
}

// reload builds fresh stores over the same gateway.
func (f fixture) reload(t *testing.T) fixture {
	t.Helper()
	clients := NewClients(f.gw, nil, testLogger())
	require.NoError(t, clients.Load(context.Background()))
	reservations := NewReservations(f.gw, clients, f.reservations.Rules(), nil, testLogger())
	require.NoError(t, reservations.Load(context.Background()))
	return fixture{gw: f.gw, clients: clients, reservations: reservations}
}
