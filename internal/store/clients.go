// Package store holds the in-memory client and reservation collections and
// enforces their rules. Every mutation is flushed through a repository
// before it becomes visible.
package store

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"salon/internal/dates"
	"salon/internal/model"

	"github.com/rs/zerolog"
)

// Event types published by the stores.
const (
	EventClientRegistered    = "client.registered"
	EventReservationCreated  = "reservation.created"
	EventReservationModified = "reservation.modified"
	EventReservationDeleted  = "reservation.deleted"
)

// Publisher receives lifecycle events.
type Publisher interface {
	Publish(eventType string, payload any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, any) {}

// ClientRepository persists the client collection.
type ClientRepository interface {
	LoadClients(ctx context.Context) ([]model.Client, error)
	SaveClients(ctx context.Context, clients []model.Client) error
}

// Clients is the registry of clients keyed by DNI.
type Clients struct {
	repo   ClientRepository
	events Publisher
	logger zerolog.Logger

	items []model.Client
	byDNI map[string]int
}

// NewClients creates an empty registry. Call Load to read persisted clients.
func NewClients(repo ClientRepository, events Publisher, logger *zerolog.Logger) *Clients {
	if events == nil {
		events = noopPublisher{}
	}
	return &Clients{
		repo:   repo,
		events: events,
		logger: logger.With().Str("component", "clients").Logger(),
		byDNI:  make(map[string]int),
	}
}

// Load replaces the registry with the persisted collection.
// Repeated DNIs keep their first occurrence.
func (c *Clients) Load(ctx context.Context) error {
	loaded, err := c.repo.LoadClients(ctx)
	if err != nil {
		return fmt.Errorf("load clients: %w", err)
	}

	c.items = c.items[:0]
	c.byDNI = make(map[string]int, len(loaded))
	for _, cl := range loaded {
		if _, dup := c.byDNI[cl.DNI]; dup {
			c.logger.Warn().Str("dni", cl.DNI).Msg("duplicate DNI in stored clients, keeping the first")
			continue
		}
		c.byDNI[cl.DNI] = len(c.items)
		c.items = append(c.items, cl)
	}

	c.logger.Info().Int("count", len(c.items)).Msg("clients loaded")
	return nil
}

// Register validates and stores a new client.
func (c *Clients) Register(ctx context.Context, name, dni string) (model.Client, error) {
	name = strings.TrimSpace(name)
	dni = strings.TrimSpace(dni)

	if !ValidName(name) {
		return model.Client{}, ErrInvalidName
	}
	if !dates.IsDigits(dni) {
		return model.Client{}, ErrInvalidDNI
	}
	if _, exists := c.byDNI[dni]; exists {
		return model.Client{}, ErrDuplicateDNI
	}

	client := model.Client{Name: name, DNI: dni}
	next := append(append([]model.Client{}, c.items...), client)
	if err := c.repo.SaveClients(ctx, next); err != nil {
		c.logger.Error().Err(err).Str("dni", dni).Msg("failed to persist new client")
		return model.Client{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	c.byDNI[dni] = len(c.items)
	c.items = next

	c.logger.Info().Str("dni", dni).Str("name", name).Msg("client registered")
	c.events.Publish(EventClientRegistered, client)
	return client, nil
}

// FindByDNI looks a client up by exact DNI.
func (c *Clients) FindByDNI(dni string) (model.Client, error) {
	idx, ok := c.byDNI[strings.TrimSpace(dni)]
	if !ok {
		return model.Client{}, fmt.Errorf("%w: client %q", ErrNotFound, dni)
	}
	return c.items[idx], nil
}

// List returns the clients in registration order.
func (c *Clients) List() []model.Client {
	return append([]model.Client{}, c.items...)
}

func (c *Clients) Count() int { return len(c.items) }

// ValidName reports whether name is non-empty and has no digit characters.
func ValidName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return strings.IndexFunc(name, unicode.IsDigit) < 0
}
