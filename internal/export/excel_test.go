package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"salon/internal/dates"
	"salon/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() ([]model.Client, []model.Reservation) {
	clients := []model.Client{{Name: "Ana Lopez", DNI: "30111222"}}
	reservations := []model.Reservation{{
		ID:         1,
		ClientDNI:  "30111222",
		ClientName: "Ana Lopez",
		EventType:  "Boda",
		Date:       dates.Date{Year: 2025, Month: time.September, Day: 18},
		Menu:       model.MenuAdultos,
		Music:      model.MusicDJ,
		Services:   []model.Service{model.ServiceFotografia, model.ServiceCotillon},
	}}
	return clients, reservations
}

func TestWrite(t *testing.T) {
	clients, reservations := sample()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, clients, reservations))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ClientsSheet, ReservationsSheet}, f.GetSheetList())

	rows, err := f.GetRows(ClientsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"DNI", "Nombre"}, {"30111222", "Ana Lopez"}}, rows)

	rows, err = f.GetRows(ReservationsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "2025-09-18", "30111222", "Ana Lopez", "Boda", "Adultos", "DJ", "Fotografia, Cotillon"}, rows[1])
}

func TestWriteFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salon.xlsx")
	require.NoError(t, WriteFile(path, nil, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ReservationsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tipo de evento", rows[0][4])
}
