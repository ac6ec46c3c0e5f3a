package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"salon/internal/dates"
	"salon/internal/model"

	"github.com/rs/zerolog"
)

// ConfirmDeleteToken must be typed verbatim to delete a reservation.
const ConfirmDeleteToken = "ELIMINAR"

// ConflictPolicy selects how reservation dates may collide.
type ConflictPolicy string

const (
	// PolicyExact rejects a second reservation on the same date.
	PolicyExact ConflictPolicy = "exact"
	// PolicySeparation requires more than MinSeparationDays between any two dates.
	PolicySeparation ConflictPolicy = "separation"
)

// Rules configures date conflict detection.
type Rules struct {
	Policy            ConflictPolicy
	MinSeparationDays int
}

func DefaultRules() Rules {
	return Rules{Policy: PolicyExact, MinSeparationDays: 1}
}

func (r Rules) normalize() Rules {
	if r.Policy != PolicySeparation {
		r.Policy = PolicyExact
	}
	if r.MinSeparationDays < 0 {
		r.MinSeparationDays = 0
	}
	return r
}

// ReservationRepository persists the reservation collection.
type ReservationRepository interface {
	LoadReservations(ctx context.Context) ([]model.Reservation, error)
	SaveReservations(ctx context.Context, reservations []model.Reservation) error
}

// ClientLookup resolves a DNI to a registered client.
type ClientLookup interface {
	FindByDNI(dni string) (model.Client, error)
}

// CreateRequest carries raw user input for a new reservation.
type CreateRequest struct {
	DNI         string
	EventType   string
	DateText    string
	MenuKey     string
	MusicKey    string
	ServiceKeys string
}

// Update lists optional changes to a reservation. Blank text fields keep
// the current value; catalog fields apply only when their Change flag is set.
type Update struct {
	ClientName string
	EventType  string
	DateText   string

	ChangeMenu     bool
	MenuKey        string
	ChangeMusic    bool
	MusicKey       string
	ChangeServices bool
	ServiceKeys    string
}

// ModifyReport describes what Modify did besides returning the result.
type ModifyReport struct {
	Changed bool
	// DateRejected holds the reason a requested date change was ignored.
	DateRejected error
}

// DeleteOutcome is the result of a Delete that found its reservation.
type DeleteOutcome int

const (
	DeleteCancelled DeleteOutcome = iota
	Deleted
)

func (o DeleteOutcome) String() string {
	if o == Deleted {
		return "deleted"
	}
	return "cancelled"
}

// Reservations owns the reservation collection and its booking rules.
type Reservations struct {
	repo    ReservationRepository
	clients ClientLookup
	rules   Rules
	events  Publisher
	logger  zerolog.Logger

	items  []model.Reservation
	lastID int
}

func NewReservations(repo ReservationRepository, clients ClientLookup, rules Rules, events Publisher, logger *zerolog.Logger) *Reservations {
	if events == nil {
		events = noopPublisher{}
	}
	return &Reservations{
		repo:    repo,
		clients: clients,
		rules:   rules.normalize(),
		events:  events,
		logger:  logger.With().Str("component", "reservations").Logger(),
	}
}

func (s *Reservations) Rules() Rules { return s.rules }

// Load replaces the collection with the persisted one. Records without a
// positive id, or repeating an earlier id, get fresh ids after the highest
// stored one; they are written back on the next save.
func (s *Reservations) Load(ctx context.Context) error {
	loaded, err := s.repo.LoadReservations(ctx)
	if err != nil {
		return fmt.Errorf("load reservations: %w", err)
	}

	s.lastID = 0
	for _, r := range loaded {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}
	seen := make(map[int]bool, len(loaded))
	for i := range loaded {
		if id := loaded[i].ID; id > 0 && !seen[id] {
			seen[id] = true
			continue
		}
		s.lastID++
		s.logger.Warn().Int("stored_id", loaded[i].ID).Int("id", s.lastID).Str("date", loaded[i].Date.String()).Msg("stored reservation without a unique id, assigning a new one")
		loaded[i].ID = s.lastID
		seen[s.lastID] = true
	}
	s.items = loaded

	s.logger.Info().Int("count", len(loaded)).Int("last_id", s.lastID).Msg("reservations loaded")
	return nil
}

// Create validates req and books a new reservation.
func (s *Reservations) Create(ctx context.Context, req CreateRequest) (model.Reservation, error) {
	dni := strings.TrimSpace(req.DNI)
	if !dates.IsDigits(dni) {
		return model.Reservation{}, ErrInvalidDNI
	}
	client, err := s.clients.FindByDNI(dni)
	if err != nil {
		return model.Reservation{}, ErrClientNotRegistered
	}
	eventType := strings.TrimSpace(req.EventType)
	if eventType == "" {
		return model.Reservation{}, ErrEmptyEventType
	}
	date, err := s.parseDate(req.DateText, -1)
	if err != nil {
		return model.Reservation{}, err
	}

	r := model.Reservation{
		ID:         s.NextID(),
		ClientDNI:  client.DNI,
		ClientName: client.Name,
		EventType:  eventType,
		Date:       date,
		Menu:       model.MenuFromKey(req.MenuKey),
		Music:      model.MusicFromKey(req.MusicKey),
		Services:   model.ParseServices(req.ServiceKeys),
	}

	next := append(s.snapshot(), r)
	if err := s.persist(ctx, next); err != nil {
		return model.Reservation{}, err
	}
	s.items = next
	s.lastID = r.ID

	s.logger.Info().Int("id", r.ID).Str("dni", r.ClientDNI).Str("date", r.Date.String()).Msg("reservation created")
	s.events.Publish(EventReservationCreated, r.Clone())
	return r.Clone(), nil
}

// List returns reservations sorted by date, keeping insertion order for ties.
func (s *Reservations) List() []model.Reservation {
	out := make([]model.Reservation, len(s.items))
	for i, r := range s.items {
		out[i] = r.Clone()
	}
	SortByDate(out)
	return out
}

// SortByDate orders reservations by date, keeping the given order for ties.
func SortByDate(reservations []model.Reservation) {
	sort.SliceStable(reservations, func(i, j int) bool { return reservations[i].Date.Before(reservations[j].Date) })
}

func (s *Reservations) Get(id int) (model.Reservation, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Reservation{}, fmt.Errorf("%w %d", ErrReservationNotFound, id)
	}
	return s.items[idx].Clone(), nil
}

func (s *Reservations) Count() int { return len(s.items) }

// NextID is the id the next created reservation will get. Ids of deleted
// reservations are not reused while the process runs; after a restart the
// sequence resumes from the highest stored id.
func (s *Reservations) NextID() int {
	return s.lastID + 1
}

// Conflicts reports whether date clashes with any stored reservation.
func (s *Reservations) Conflicts(date dates.Date) bool {
	return s.conflicts(date, -1)
}

// conflicts checks date against every reservation except the one at index skip.
func (s *Reservations) conflicts(date dates.Date, skip int) bool {
	for i, r := range s.items {
		if i == skip {
			continue
		}
		switch s.rules.Policy {
		case PolicySeparation:
			if dates.DaysBetween(r.Date, date) <= s.rules.MinSeparationDays {
				return true
			}
		default:
			if r.Date.Equal(date) {
				return true
			}
		}
	}
	return false
}

// Modify applies u to reservation id. A rejected date keeps the old one and
// is reported in ModifyReport rather than as an error.
func (s *Reservations) Modify(ctx context.Context, id int, u Update) (model.Reservation, ModifyReport, error) {
	var report ModifyReport

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Reservation{}, report, fmt.Errorf("%w %d", ErrReservationNotFound, id)
	}
	current := s.items[idx]
	updated := current.Clone()

	if name := strings.TrimSpace(u.ClientName); name != "" && name != updated.ClientName {
		updated.ClientName = name
		report.Changed = true
	}
	if eventType := strings.TrimSpace(u.EventType); eventType != "" && eventType != updated.EventType {
		updated.EventType = eventType
		report.Changed = true
	}
	if strings.TrimSpace(u.DateText) != "" {
		date, err := s.parseDate(u.DateText, idx)
		switch {
		case err != nil:
			report.DateRejected = err
			s.logger.Debug().Err(err).Int("id", id).Msg("date change rejected")
		case !date.Equal(updated.Date):
			updated.Date = date
			report.Changed = true
		}
	}
	if u.ChangeMenu {
		if menu := model.MenuFromKey(u.MenuKey); menu != updated.Menu {
			updated.Menu = menu
			report.Changed = true
		}
	}
	if u.ChangeMusic {
		if music := model.MusicFromKey(u.MusicKey); music != updated.Music {
			updated.Music = music
			report.Changed = true
		}
	}
	if u.ChangeServices {
		services := model.ParseServices(u.ServiceKeys)
		if !sameServices(services, updated.Services) {
			updated.Services = services
			report.Changed = true
		}
	}

	if !report.Changed {
		return current.Clone(), report, nil
	}

	next := s.snapshot()
	next[idx] = updated
	if err := s.persist(ctx, next); err != nil {
		return current.Clone(), ModifyReport{DateRejected: report.DateRejected}, err
	}
	s.items = next

	s.logger.Info().Int("id", id).Msg("reservation modified")
	s.events.Publish(EventReservationModified, updated.Clone())
	return updated.Clone(), report, nil
}

// Delete removes reservation id when token equals ConfirmDeleteToken.
// Any other token cancels without side effects.
func (s *Reservations) Delete(ctx context.Context, id int, token string) (DeleteOutcome, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return DeleteCancelled, fmt.Errorf("%w %d", ErrReservationNotFound, id)
	}
	if token != ConfirmDeleteToken {
		s.logger.Debug().Int("id", id).Msg("delete cancelled")
		return DeleteCancelled, nil
	}

	removed := s.items[idx]
	next := make([]model.Reservation, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	if err := s.persist(ctx, next); err != nil {
		return DeleteCancelled, err
	}
	s.items = next

	s.logger.Info().Int("id", id).Str("date", removed.Date.String()).Msg("reservation deleted")
	s.events.Publish(EventReservationDeleted, removed.Clone())
	return Deleted, nil
}

// parseDate validates text as a booking date. The reservation at index skip
// is left out of the conflict check; -1 checks them all.
func (s *Reservations) parseDate(text string, skip int) (dates.Date, error) {
	if strings.TrimSpace(text) == "" {
		return dates.Date{}, ErrEmptyDate
	}
	date, err := dates.Parse(text)
	if err != nil {
		return dates.Date{}, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}
	if s.conflicts(date, skip) {
		return dates.Date{}, fmt.Errorf("%w: %s", ErrDateTaken, date)
	}
	return date, nil
}

func (s *Reservations) persist(ctx context.Context, next []model.Reservation) error {
	if err := s.repo.SaveReservations(ctx, next); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist reservations")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Reservations) snapshot() []model.Reservation {
	return append(make([]model.Reservation, 0, len(s.items)+1), s.items...)
}

func (s *Reservations) indexOf(id int) int {
	for i, r := range s.items {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func sameServices(a, b []model.Service) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
