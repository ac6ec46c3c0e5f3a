package cli

import (
	"errors"

	"salon/internal/metrics"
	"salon/internal/store"
)

// message renders a store error for the user.
func message(err error) string {
	switch {
	case errors.Is(err, store.ErrInvalidName):
		return "¡Error! El nombre no puede estar vacío ni contener números."
	case errors.Is(err, store.ErrInvalidDNI):
		return "¡Error! El DNI debe ser un número."
	case errors.Is(err, store.ErrDuplicateDNI):
		return "¡Error! Ya existe un cliente con ese DNI."
	case errors.Is(err, store.ErrClientNotRegistered):
		return "¡Error! El cliente no está registrado."
	case errors.Is(err, store.ErrEmptyEventType):
		return "¡Error! Debe indicar el tipo de fiesta."
	case errors.Is(err, store.ErrEmptyDate):
		return "¡Error! Debe indicar la fecha."
	case errors.Is(err, store.ErrInvalidDate):
		return "Formato de fecha inválido. Usar DD/MM/AAAA (ej: 18/09/2025)."
	case errors.Is(err, store.ErrDateTaken):
		return "No se puede reservar: ya existe una reserva en esa fecha."
	case errors.Is(err, store.ErrNotFound):
		return "No se encontró la reserva."
	case errors.Is(err, store.ErrPersist):
		return "¡Error! No se pudieron guardar los cambios. Intente de nuevo."
	default:
		return "¡Error inesperado! " + err.Error()
	}
}

func dateRejectedMessage(err error) string {
	if errors.Is(err, store.ErrDateTaken) {
		return "Esa fecha ya está ocupada, se mantiene la fecha anterior."
	}
	return "Formato inválido, se mantiene la fecha anterior."
}

func recordRejection(operation string, err error) {
	reason := "other"
	switch {
	case errors.Is(err, store.ErrValidation):
		reason = "validation"
	case errors.Is(err, store.ErrConflict):
		reason = "conflict"
	case errors.Is(err, store.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, store.ErrPersist):
		reason = "persist"
	}
	metrics.IncRejection(operation, reason)
}
