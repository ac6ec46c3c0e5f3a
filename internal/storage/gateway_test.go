package storage

import (
	"context"
	"io"
	"testing"
	"time"

	"salon/internal/dates"
	"salon/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, strict bool) (*Gateway, *FileBackend) {
	t.Helper()
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	logger := zerolog.New(io.Discard)
	return NewGateway(backend, strict, &logger), backend
}

func sampleReservations() []model.Reservation {
	return []model.Reservation{
		{
			ID:         1,
			ClientDNI:  "30111222",
			ClientName: "Ana Lopez",
			EventType:  "Boda",
			Date:       dates.Date{Year: 2025, Month: time.September, Day: 18},
			Menu:       model.MenuAdultos,
			Music:      model.MusicDJ,
			Services:   []model.Service{model.ServiceFotografia, model.ServiceCotillon},
		},
		{
			ID:         4,
			ClientDNI:  "27000111",
			ClientName: "Juan Perez",
			EventType:  "Cumpleaños",
			Date:       dates.Date{Year: 2025, Month: time.October, Day: 2},
			Services:   []model.Service{},
		},
	}
}

func TestGateway_MissingDocumentsLoadEmpty(t *testing.T) {
	gw, _ := newTestGateway(t, true)
	ctx := context.Background()

	clients, err := gw.LoadClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)
	assert.NotNil(t, clients)

	reservations, err := gw.LoadReservations(ctx)
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

func TestGateway_RoundTrip(t *testing.T) {
	gw, _ := newTestGateway(t, true)
	ctx := context.Background()

	clients := []model.Client{{Name: "Ana Lopez", DNI: "30111222"}, {Name: "Juan Perez", DNI: "27000111"}}
	require.NoError(t, gw.SaveClients(ctx, clients))
	gotClients, err := gw.LoadClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, clients, gotClients)

	reservations := sampleReservations()
	require.NoError(t, gw.SaveReservations(ctx, reservations))
	gotReservations, err := gw.LoadReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, reservations, gotReservations)
}

func TestGateway_SaveEmptyWritesArray(t *testing.T) {
	gw, backend := newTestGateway(t, false)
	ctx := context.Background()

	require.NoError(t, gw.SaveReservations(ctx, nil))
	data, err := backend.Read(ctx, ReservationsDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestGateway_MalformedDocuments(t *testing.T) {
	docs := map[string]string{
		"invalid json":    `[{"id": 1,`,
		"object":          `{"id": 1}`,
		"null":            `null`,
		"positional rows": `[["Ana", "Boda", 18, 9, 2025]]`,
		"bad date":        `[{"id": 1, "fecha": "18/09/2025"}]`,
		"empty file":      ``,
		"missing date":    `[{"id": 1, "dni": "1", "tipo": "Boda"}, {"id": 2, "fecha": "2025-10-01"}]`,
		"null element":    `[null, {"id": 2, "fecha": "2025-10-01"}]`,
		"zero date":       `[{"id": 1, "fecha": "0000-00-00"}]`,
	}

	for name, body := range docs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			lenient, backend := newTestGateway(t, false)
			require.NoError(t, backend.Write(ctx, ReservationsDocument, []byte(body)))
			got, err := lenient.LoadReservations(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)

			logger := zerolog.New(io.Discard)
			strict := NewGateway(backend, true, &logger)
			_, err = strict.LoadReservations(ctx)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestGateway_NormalizesServices(t *testing.T) {
	gw, backend := newTestGateway(t, true)
	ctx := context.Background()

	body := `[{"id":2,"dni":"1","nombre":"A","tipo":"X","fecha":"2025-01-01","menu":"Premium","musica":"Banda","servicios":["Cotillon","Magia","Cotillon","Fotografia"]}]`
	require.NoError(t, backend.Write(ctx, ReservationsDocument, []byte(body)))

	got, err := gw.LoadReservations(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []model.Service{model.ServiceFotografia, model.ServiceCotillon}, got[0].Services)
	assert.Equal(t, model.MenuPremium, got[0].Menu)
	assert.Equal(t, model.MusicBanda, got[0].Music)
}

func TestGateway_ClientWithoutDNIIsMalformed(t *testing.T) {
	gw, backend := newTestGateway(t, true)
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, ClientsDocument, []byte(`[{"nombre": "Ana", "dni": "1"}, {"nombre": "Sin DNI"}]`)))
	_, err := gw.LoadClients(ctx)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestGateway_NeverWritesUnreadableDates(t *testing.T) {
	gw, backend := newTestGateway(t, true)
	ctx := context.Background()

	require.NoError(t, gw.SaveReservations(ctx, sampleReservations()))

	broken := append(sampleReservations(), model.Reservation{ID: 9, EventType: "Sin fecha"})
	err := gw.SaveReservations(ctx, broken)
	assert.ErrorIs(t, err, dates.ErrInvalidDate)

	data, err := backend.Read(ctx, ReservationsDocument)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "0000-00-00")

	got, err := gw.LoadReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleReservations(), got)
}
