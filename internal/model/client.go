package model

import (
	"fmt"

	"salon/internal/dates"
)

// Client is a registered customer identified by national ID (DNI).
type Client struct {
	Name string `json:"nombre"`
	DNI  string `json:"dni"`
}

// Validate checks the fields a stored client needs to be addressable.
func (c Client) Validate() error {
	if !dates.IsDigits(c.DNI) {
		return fmt.Errorf("client %q: DNI %q is not a number", c.Name, c.DNI)
	}
	return nil
}
