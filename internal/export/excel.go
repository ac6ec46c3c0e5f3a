// Package export renders clients and reservations as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"salon/internal/model"

	"github.com/xuri/excelize/v2"
)

const (
	ClientsSheet      = "Clientes"
	ReservationsSheet = "Reservas"
)

var (
	clientColumns      = []string{"DNI", "Nombre"}
	reservationColumns = []string{"ID", "Fecha", "DNI", "Nombre", "Tipo de evento", "Menu", "Musica", "Servicios"}
)

// sheetWriter appends rows to an excelize workbook one sheet at a time.
type sheetWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newSheetWriter() *sheetWriter {
	return &sheetWriter{file: excelize.NewFile()}
}

func (w *sheetWriter) addSheet(name string) error {
	// Excel limits sheet names to 31 characters.
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

func (w *sheetWriter) writeHeader(columns []string) error {
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	if err := w.writeRow(row); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	start, _ := excelize.CoordinatesToCellName(1, 1)
	end, _ := excelize.CoordinatesToCellName(len(columns), 1)
	return w.file.SetCellStyle(w.currentSheet, start, end, style)
}

func (w *sheetWriter) writeRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	cell, err := excelize.CoordinatesToCellName(1, w.currentRow)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.currentSheet, cell, &row); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

func build(clients []model.Client, reservations []model.Reservation) (*excelize.File, error) {
	w := newSheetWriter()

	if err := w.addSheet(ClientsSheet); err != nil {
		return nil, err
	}
	if err := w.writeHeader(clientColumns); err != nil {
		return nil, err
	}
	for _, c := range clients {
		if err := w.writeRow([]any{c.DNI, c.Name}); err != nil {
			return nil, err
		}
	}

	if err := w.addSheet(ReservationsSheet); err != nil {
		return nil, err
	}
	if err := w.writeHeader(reservationColumns); err != nil {
		return nil, err
	}
	for _, r := range reservations {
		row := []any{r.ID, r.Date.String(), r.ClientDNI, r.ClientName, r.EventType, r.Menu.String(), r.Music.String(), r.ServicesLabel()}
		if err := w.writeRow(row); err != nil {
			return nil, err
		}
	}

	return w.file, nil
}

// Write renders the workbook to out.
func Write(out io.Writer, clients []model.Client, reservations []model.Reservation) error {
	f, err := build(clients, reservations)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(out)
}

// WriteFile saves the workbook at path.
func WriteFile(path string, clients []model.Client, reservations []model.Reservation) error {
	f, err := build(clients, reservations)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
