// Package cli implements the interactive text menu over the stores.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"salon/internal/export"
	"salon/internal/model"
	"salon/internal/store"

	"github.com/rs/zerolog"
)

// ClientService is the part of store.Clients the menu uses.
type ClientService interface {
	Register(ctx context.Context, name, dni string) (model.Client, error)
	List() []model.Client
}

// ReservationService is the part of store.Reservations the menu uses.
type ReservationService interface {
	Create(ctx context.Context, req store.CreateRequest) (model.Reservation, error)
	List() []model.Reservation
	Get(id int) (model.Reservation, error)
	Modify(ctx context.Context, id int, u store.Update) (model.Reservation, store.ModifyReport, error)
	Delete(ctx context.Context, id int, token string) (store.DeleteOutcome, error)
}

const defaultExportPath = "salon.xlsx"

type Menu struct {
	in           *bufio.Scanner
	out          io.Writer
	clients      ClientService
	reservations ReservationService
	logger       zerolog.Logger
}

func NewMenu(in io.Reader, out io.Writer, clients ClientService, reservations ReservationService, logger *zerolog.Logger) *Menu {
	return &Menu{
		in:           bufio.NewScanner(in),
		out:          out,
		clients:      clients,
		reservations: reservations,
		logger:       logger.With().Str("component", "cli").Logger(),
	}
}

// Run shows the main menu until the user exits, input ends or ctx is done.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		m.println("\nSistema de Gestión del Salón de Fiestas")
		m.println("\nMenú principal:")
		m.println("\n1. Registrar cliente")
		m.println("2. Listar clientes")
		m.println("3. Registrar reserva")
		m.println("4. Listar reservas")
		m.println("5. Modificar reserva")
		m.println("6. Eliminar reserva")
		m.println("7. Exportar a Excel")
		m.println("0. Salir")

		option, err := m.ask("\nSeleccione una opción: ")
		if err != nil {
			return endOfInput(err)
		}

		switch option {
		case "1":
			err = m.registerClient(ctx)
		case "2":
			m.listClients()
		case "3":
			err = m.createReservation(ctx)
		case "4":
			m.listReservations()
		case "5":
			err = m.modifyReservation(ctx)
		case "6":
			err = m.deleteReservation(ctx)
		case "7":
			err = m.exportWorkbook()
		case "0":
			m.println("\n¡Gracias por usar el sistema, hasta la próxima!")
			return nil
		default:
			m.println("\nOpción inválida, intente de nuevo.")
		}
		if err != nil {
			return endOfInput(err)
		}
	}
}

func (m *Menu) registerClient(ctx context.Context) error {
	name, err := m.ask("\nIngrese el nombre y apellido: ")
	if err != nil {
		return err
	}
	dni, err := m.ask("Ingrese el DNI: ")
	if err != nil {
		return err
	}

	if _, err := m.clients.Register(ctx, name, dni); err != nil {
		m.report("register_client", err)
		return nil
	}
	m.println("\nCliente registrado con éxito.")
	return nil
}

func (m *Menu) listClients() {
	clients := m.clients.List()
	if len(clients) == 0 {
		m.println("\nNo hay clientes registrados.")
		return
	}
	m.println("\nLista de clientes:")
	for _, c := range clients {
		m.printf("Nombre: %s - DNI: %s\n", c.Name, c.DNI)
	}
}

func (m *Menu) createReservation(ctx context.Context) error {
	m.println("\nRegistrar reserva")
	var req store.CreateRequest
	var err error

	if req.DNI, err = m.ask("DNI del cliente: "); err != nil {
		return err
	}
	if req.EventType, err = m.ask("Tipo de fiesta: "); err != nil {
		return err
	}
	if req.DateText, err = m.ask("Fecha (DD/MM/AAAA): "); err != nil {
		return err
	}
	if req.MenuKey, err = m.chooseMenu(); err != nil {
		return err
	}
	if req.MusicKey, err = m.chooseMusic(); err != nil {
		return err
	}
	if req.ServiceKeys, err = m.chooseServices(); err != nil {
		return err
	}

	r, err := m.reservations.Create(ctx, req)
	if err != nil {
		m.report("create_reservation", err)
		return nil
	}
	m.printf("\nReserva registrada con éxito. ID asignado: %d\n", r.ID)
	return nil
}

func (m *Menu) listReservations() {
	reservations := m.reservations.List()
	if len(reservations) == 0 {
		m.println("\nNo hay reservas registradas.")
		return
	}
	m.println("\nLista de reservas")
	for _, r := range reservations {
		m.printf("ID %d - Cliente: %s - Fiesta: %s - Fecha: %s - Menú: %s - Música: %s - Servicios: %s\n",
			r.ID, r.ClientName, r.EventType, r.Date, r.Menu, r.Music, r.ServicesLabel())
	}
}

func (m *Menu) modifyReservation(ctx context.Context) error {
	r, ok, err := m.pickReservation("\nID de la reserva a modificar: ")
	if err != nil || !ok {
		return err
	}

	m.println("Deje vacío para mantener el valor anterior.")
	var u store.Update
	if u.ClientName, err = m.ask(fmt.Sprintf("Nombre del cliente (%s): ", r.ClientName)); err != nil {
		return err
	}
	if u.EventType, err = m.ask(fmt.Sprintf("Tipo de fiesta (%s): ", r.EventType)); err != nil {
		return err
	}
	if u.DateText, err = m.ask(fmt.Sprintf("Fecha (%s) - DD/MM/AAAA: ", r.Date)); err != nil {
		return err
	}
	if u.ChangeMenu, err = m.confirm("¿Cambiar menú? (s/N): "); err != nil {
		return err
	}
	if u.ChangeMenu {
		if u.MenuKey, err = m.chooseMenu(); err != nil {
			return err
		}
	}
	if u.ChangeMusic, err = m.confirm("¿Cambiar música? (s/N): "); err != nil {
		return err
	}
	if u.ChangeMusic {
		if u.MusicKey, err = m.chooseMusic(); err != nil {
			return err
		}
	}
	if u.ChangeServices, err = m.confirm("¿Cambiar servicios? (s/N): "); err != nil {
		return err
	}
	if u.ChangeServices {
		if u.ServiceKeys, err = m.chooseServices(); err != nil {
			return err
		}
	}

	_, report, err := m.reservations.Modify(ctx, r.ID, u)
	if err != nil {
		m.report("modify_reservation", err)
		return nil
	}
	if report.DateRejected != nil {
		m.println(dateRejectedMessage(report.DateRejected))
	}
	if !report.Changed {
		m.println("No se realizaron cambios.")
		return nil
	}
	m.println("Reserva modificada con éxito.")
	return nil
}

func (m *Menu) deleteReservation(ctx context.Context) error {
	r, ok, err := m.pickReservation("\nID de la reserva a eliminar: ")
	if err != nil || !ok {
		return err
	}

	m.printf("Se eliminará la reserva ID %d de %s en %s.\n", r.ID, r.ClientName, r.Date)
	token, err := m.ask(fmt.Sprintf("Confirmar (%s): ", store.ConfirmDeleteToken))
	if err != nil {
		return err
	}

	outcome, err := m.reservations.Delete(ctx, r.ID, token)
	switch {
	case err != nil:
		m.report("delete_reservation", err)
	case outcome == store.Deleted:
		m.println("Reserva eliminada con éxito.")
	default:
		m.println("Operación cancelada.")
	}
	return nil
}

func (m *Menu) exportWorkbook() error {
	path, err := m.ask(fmt.Sprintf("\nArchivo de destino (%s): ", defaultExportPath))
	if err != nil {
		return err
	}
	if path == "" {
		path = defaultExportPath
	}

	if err := export.WriteFile(path, m.clients.List(), m.reservations.List()); err != nil {
		m.logger.Error().Err(err).Str("path", path).Msg("export failed")
		m.println("¡Error! No se pudo exportar el archivo.")
		return nil
	}
	m.logger.Info().Str("path", path).Msg("workbook exported")
	m.printf("Datos exportados a %s.\n", path)
	return nil
}

// pickReservation asks for an id and looks it up. ok is false when the
// input was not a number or the reservation does not exist.
func (m *Menu) pickReservation(prompt string) (model.Reservation, bool, error) {
	text, err := m.ask(prompt)
	if err != nil {
		return model.Reservation{}, false, err
	}
	id, convErr := strconv.Atoi(text)
	if convErr != nil {
		m.println("ID inválido. Debe ingresar un número entero.")
		return model.Reservation{}, false, nil
	}
	r, getErr := m.reservations.Get(id)
	if getErr != nil {
		m.println(message(getErr))
		return model.Reservation{}, false, nil
	}
	return r, true, nil
}

func (m *Menu) chooseMenu() (string, error) {
	m.println("\nMenús disponibles:")
	for _, o := range model.Menus {
		m.printf("%s. %s\n", o.Key(), o)
	}
	return m.ask("Seleccione menú: ")
}

func (m *Menu) chooseMusic() (string, error) {
	m.println("\nMúsica disponible:")
	for _, o := range model.Musics {
		m.printf("%s. %s\n", o.Key(), o)
	}
	return m.ask("Seleccione música: ")
}

func (m *Menu) chooseServices() (string, error) {
	m.println("\nServicios adicionales (separe por coma, o ENTER para ninguno):")
	for _, o := range model.Services {
		m.printf("%s. %s\n", o.Key(), o)
	}
	return m.ask("Seleccione: ")
}

func (m *Menu) confirm(prompt string) (bool, error) {
	answer, err := m.ask(prompt)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "s"), nil
}

func (m *Menu) report(operation string, err error) {
	m.logger.Debug().Err(err).Str("operation", operation).Msg("operation rejected")
	recordRejection(operation, err)
	m.println(message(err))
}

// ask prints prompt and returns the next trimmed input line.
func (m *Menu) ask(prompt string) (string, error) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
