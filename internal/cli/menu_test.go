package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"salon/internal/storage"
	"salon/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type session struct {
	clients      *store.Clients
	reservations *store.Reservations
}

func newSession(t *testing.T) session {
	t.Helper()
	logger := zerolog.New(io.Discard)
	backend, err := storage.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	gw := storage.NewGateway(backend, true, &logger)

	clients := store.NewClients(gw, nil, &logger)
	require.NoError(t, clients.Load(context.Background()))
	reservations := store.NewReservations(gw, clients, store.DefaultRules(), nil, &logger)
	require.NoError(t, reservations.Load(context.Background()))
	return session{clients: clients, reservations: reservations}
}

func (s session) run(t *testing.T, lines ...string) string {
	t.Helper()
	logger := zerolog.New(io.Discard)
	var out bytes.Buffer
	menu := NewMenu(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, s.clients, s.reservations, &logger)
	require.NoError(t, menu.Run(context.Background()))
	return out.String()
}

func TestMenu_RegisterAndBook(t *testing.T) {
	s := newSession(t)

	out := s.run(t,
		"1", "Ana Lopez", "30111222",
		"1", "Otra", "30111222",
		"3", "30111222", "Boda", "18/09/2025", "2", "1", "2,4",
		"3", "30111222", "Cena", "18-09-2025", "", "", "",
		"4",
		"0",
	)

	assert.Contains(t, out, "Cliente registrado con éxito.")
	assert.Contains(t, out, "Ya existe un cliente con ese DNI.")
	assert.Contains(t, out, "Reserva registrada con éxito. ID asignado: 1")
	assert.Contains(t, out, "ya existe una reserva en esa fecha")
	assert.Contains(t, out, "ID 1 - Cliente: Ana Lopez - Fiesta: Boda - Fecha: 2025-09-18 - Menú: Adultos - Música: DJ - Servicios: Fotografia, Cotillon")
	assert.Contains(t, out, "hasta la próxima")
	assert.Equal(t, 1, s.clients.Count())
	assert.Equal(t, 1, s.reservations.Count())
}

func TestMenu_UnknownClient(t *testing.T) {
	s := newSession(t)
	out := s.run(t, "3", "999", "Boda", "18/09/2025", "", "", "", "0")
	assert.Contains(t, out, "El cliente no está registrado.")
	assert.Zero(t, s.reservations.Count())
}

func TestMenu_InvalidOptionReprompts(t *testing.T) {
	s := newSession(t)
	out := s.run(t, "9", "abc", "0")
	assert.Equal(t, 2, strings.Count(out, "Opción inválida"))
	assert.Equal(t, 3, strings.Count(out, "Menú principal:"))
}

func TestMenu_EndOfInputExits(t *testing.T) {
	s := newSession(t)
	logger := zerolog.New(io.Discard)
	menu := NewMenu(strings.NewReader("1\nAna"), io.Discard, s.clients, s.reservations, &logger)
	assert.NoError(t, menu.Run(context.Background()))
	assert.Zero(t, s.clients.Count())
}

func TestMenu_ModifyReservation(t *testing.T) {
	s := newSession(t)
	s.run(t,
		"1", "Ana Lopez", "30111222",
		"3", "30111222", "Boda", "18/09/2025", "2", "1", "2,4",
		"3", "30111222", "Cena", "01/10/2025", "", "", "",
		"0",
	)

	out := s.run(t,
		"5", "x",
		"5", "77",
		"5", "1", "", "Aniversario", "01/10/2025", "s", "3", "n", "S", "",
		"5", "1", "", "", "", "", "", "",
		"0",
	)
	assert.Contains(t, out, "ID inválido.")
	assert.Contains(t, out, "No se encontró la reserva.")
	assert.Contains(t, out, "Esa fecha ya está ocupada")
	assert.Contains(t, out, "Reserva modificada con éxito.")
	assert.Contains(t, out, "No se realizaron cambios.")

	r, err := s.reservations.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "Aniversario", r.EventType)
	assert.Equal(t, "2025-09-18", r.Date.String())
	assert.Equal(t, "Premium", r.Menu.String())
	assert.Equal(t, "DJ", r.Music.String())
	assert.Empty(t, r.Services)
}

func TestMenu_DeleteReservation(t *testing.T) {
	s := newSession(t)
	s.run(t,
		"1", "Ana Lopez", "30111222",
		"3", "30111222", "Boda", "18/09/2025", "", "", "",
		"0",
	)

	out := s.run(t, "6", "1", "eliminar", "0")
	assert.Contains(t, out, "Se eliminará la reserva ID 1 de Ana Lopez en 2025-09-18.")
	assert.Contains(t, out, "Operación cancelada.")
	assert.Equal(t, 1, s.reservations.Count())

	out = s.run(t, "6", "1", "ELIMINAR", "4", "0")
	assert.Contains(t, out, "Reserva eliminada con éxito.")
	assert.Contains(t, out, "No hay reservas registradas.")
	assert.Zero(t, s.reservations.Count())
}

func TestMenu_Export(t *testing.T) {
	s := newSession(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")

	out := s.run(t, "1", "Ana Lopez", "30111222", "7", path, "0")
	assert.Contains(t, out, "Datos exportados a "+path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Clientes")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
