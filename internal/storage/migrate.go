package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"salon/internal/dates"
	"salon/internal/model"
)

// Reservation document schema versions.
const (
	// SchemaPositional stores each reservation as [nombre, tipo, dia, mes, anio].
	SchemaPositional = 1
	// SchemaObjects stores each reservation as a JSON object.
	SchemaObjects = 2
)

// MigrationReport summarizes a MigrateReservations run.
type MigrationReport struct {
	FromVersion int
	ToVersion   int
	Converted   int
	Skipped     int
	// Conflicting counts rows dropped because an earlier row holds the same date.
	Conflicting int
	// Unresolved counts converted rows whose client name matched no registered client.
	// Their DNI stays empty.
	Unresolved int
	BackupName string
}

// DetectReservationsVersion inspects a reservations document.
// Empty arrays are reported as SchemaObjects.
func DetectReservationsVersion(data []byte) (int, error) {
	if !isArray(data) {
		return 0, errors.New("top-level value is not a JSON array")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, err
	}
	if len(raw) > 0 && isLegacyRow(raw[0]) {
		return SchemaPositional, nil
	}
	return SchemaObjects, nil
}

// MigrateReservations rewrites a positional reservations document into the
// object schema. The original document is kept as "<name>.v1.bak". Client
// DNIs are recovered by exact name match against clients. Only the first row
// for each date is kept, so the result satisfies the one-reservation-per-day rule.
func (g *Gateway) MigrateReservations(ctx context.Context, clients []model.Client) (MigrationReport, error) {
	report := MigrationReport{ToVersion: SchemaObjects}

	data, err := g.backend.Read(ctx, ReservationsDocument)
	if errors.Is(err, ErrNotExist) {
		report.FromVersion = SchemaObjects
		return report, nil
	}
	if err != nil {
		return report, err
	}

	version, err := DetectReservationsVersion(data)
	if err != nil {
		return report, fmt.Errorf("%w: %s: %v", ErrMalformed, ReservationsDocument, err)
	}
	report.FromVersion = version
	if version == SchemaObjects {
		g.logger.Info().Msg("reservations document already uses the current schema")
		return report, nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return report, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	dniByName := make(map[string]string, len(clients))
	for _, c := range clients {
		if _, taken := dniByName[c.Name]; !taken {
			dniByName[c.Name] = c.DNI
		}
	}

	migrated := make([]model.Reservation, 0, len(rows))
	taken := make(map[dates.Date]int, len(rows))
	for i, row := range rows {
		r, err := convertLegacyRow(row)
		if err != nil {
			report.Skipped++
			g.logger.Warn().Err(err).Int("row", i).Msg("skipping legacy reservation")
			continue
		}
		if first, ok := taken[r.Date]; ok {
			report.Conflicting++
			g.logger.Warn().Int("row", i).Int("kept_row", first).Str("date", r.Date.String()).Msg("skipping legacy reservation on an already booked date")
			continue
		}
		taken[r.Date] = i
		r.ID = len(migrated) + 1
		if dni, ok := dniByName[r.ClientName]; ok {
			r.ClientDNI = dni
		} else {
			report.Unresolved++
		}
		migrated = append(migrated, r)
	}
	report.Converted = len(migrated)

	report.BackupName = ReservationsDocument + ".v1.bak"
	if err := g.backend.Write(ctx, report.BackupName, data); err != nil {
		return report, fmt.Errorf("back up legacy document: %w", err)
	}
	if err := g.SaveReservations(ctx, migrated); err != nil {
		return report, err
	}

	g.logger.Info().
		Int("converted", report.Converted).
		Int("skipped", report.Skipped).
		Int("conflicting", report.Conflicting).
		Int("unresolved_clients", report.Unresolved).
		Str("backup", report.BackupName).
		Msg("reservations migrated to object schema")
	return report, nil
}

func convertLegacyRow(row json.RawMessage) (model.Reservation, error) {
	var fields []any
	if err := json.Unmarshal(row, &fields); err != nil {
		return model.Reservation{}, err
	}
	if len(fields) != 5 {
		return model.Reservation{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	name, ok1 := fields[0].(string)
	kind, ok2 := fields[1].(string)
	if !ok1 || !ok2 {
		return model.Reservation{}, errors.New("name and event type must be strings")
	}

	parts := make([]int, 3)
	for i, f := range fields[2:] {
		n, err := legacyNumber(f)
		if err != nil {
			return model.Reservation{}, err
		}
		parts[i] = n
	}

	date, err := dates.New(parts[2], parts[1], parts[0])
	if err != nil {
		return model.Reservation{}, err
	}

	return model.Reservation{
		ClientName: strings.TrimSpace(name),
		EventType:  strings.TrimSpace(kind),
		Date:       date,
		Services:   []model.Service{},
	}, nil
}

func legacyNumber(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	case string:
		n = strings.TrimSpace(n)
		if !dates.IsDigits(n) {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("unexpected value %v", v)
	}
}
