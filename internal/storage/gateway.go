package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"salon/internal/model"

	"github.com/rs/zerolog"
)

// Gateway encodes the two collections as JSON arrays over a Backend.
//
// A missing document loads as an empty collection. A document that exists
// but cannot be decoded also loads as empty (with a warning) unless the
// gateway is strict, in which case ErrMalformed is returned.
type Gateway struct {
	backend Backend
	strict  bool
	logger  zerolog.Logger
}

// NewGateway creates a gateway over backend.
func NewGateway(backend Backend, strict bool, logger *zerolog.Logger) *Gateway {
	return &Gateway{
		backend: backend,
		strict:  strict,
		logger:  logger.With().Str("component", "storage").Logger(),
	}
}

// Backend returns the underlying document backend.
func (g *Gateway) Backend() Backend { return g.backend }

func (g *Gateway) LoadClients(ctx context.Context) ([]model.Client, error) {
	return load[model.Client](ctx, g, ClientsDocument)
}

func (g *Gateway) SaveClients(ctx context.Context, clients []model.Client) error {
	return save(ctx, g, ClientsDocument, clients)
}

func (g *Gateway) LoadReservations(ctx context.Context) ([]model.Reservation, error) {
	items, err := load[model.Reservation](ctx, g, ReservationsDocument)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Services = model.ServiceSet(items[i].Services)
	}
	return items, nil
}

func (g *Gateway) SaveReservations(ctx context.Context, reservations []model.Reservation) error {
	return save(ctx, g, ReservationsDocument, reservations)
}

func load[T any](ctx context.Context, g *Gateway, name string) ([]T, error) {
	data, err := g.backend.Read(ctx, name)
	if errors.Is(err, ErrNotExist) {
		g.logger.Debug().Str("document", name).Msg("document not found, starting empty")
		return []T{}, nil
	}
	if err != nil {
		return degrade[T](g, name, err)
	}

	items, err := decodeArray[T](data)
	if err != nil {
		return degrade[T](g, name, err)
	}

	g.logger.Debug().Str("document", name).Int("count", len(items)).Msg("document loaded")
	return items, nil
}

func degrade[T any](g *Gateway, name string, cause error) ([]T, error) {
	if g.strict {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, cause)
	}
	g.logger.Warn().Err(cause).Str("document", name).Msg("unreadable document, continuing with an empty collection")
	return []T{}, nil
}

func decodeArray[T any](data []byte) ([]T, error) {
	if !isArray(data) {
		return nil, errors.New("top-level value is not a JSON array")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("not a JSON array: %w", err)
	}

	items := make([]T, 0, len(raw))
	for i, elem := range raw {
		if isLegacyRow(elem) {
			return nil, fmt.Errorf("element %d uses the positional v1 format, run the migrate command", i)
		}
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if v, ok := any(item).(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func isLegacyRow(elem json.RawMessage) bool {
	return isArray(elem)
}

func isArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func save[T any](ctx context.Context, g *Gateway, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := g.backend.Write(ctx, name, data); err != nil {
		return err
	}
	g.logger.Debug().Str("document", name).Int("count", len(items)).Msg("document saved")
	return nil
}
