package model

import (
	"fmt"
	"strings"

	"salon/internal/dates"
)

// Reservation books the hall for one calendar day.
type Reservation struct {
	ID         int        `json:"id"`
	ClientDNI  string     `json:"dni"`
	ClientName string     `json:"nombre"`
	EventType  string     `json:"tipo"`
	Date       dates.Date `json:"fecha"`
	Menu       Menu       `json:"menu"`
	Music      Music      `json:"musica"`
	Services   []Service  `json:"servicios"`
}

// Validate checks the fields a stored reservation cannot do without.
// A missing id is tolerated; the store assigns one on load.
func (r Reservation) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return fmt.Errorf("reservation %d: fecha: %w", r.ID, err)
	}
	return nil
}

// Clone returns a copy that shares no slices with r.
func (r Reservation) Clone() Reservation {
	r.Services = append([]Service{}, r.Services...)
	return r
}

// ServicesLabel renders the extra services, or "Ninguno" when there are none.
func (r Reservation) ServicesLabel() string {
	if len(r.Services) == 0 {
		return "Ninguno"
	}
	return strings.Join(ServiceNames(r.Services), ", ")
}
