package model

import (
	"strconv"
	"strings"
)

// UndefinedLabel is shown for a menu or music choice that was never made.
const UndefinedLabel = "Sin definir"

// Menu is the catering tier of a reservation.
type Menu int

const (
	MenuUndefined Menu = iota
	MenuInfantil
	MenuAdultos
	MenuPremium
)

// Menus lists the selectable menus in display order.
var Menus = []Menu{MenuInfantil, MenuAdultos, MenuPremium}

var menuNames = map[Menu]string{
	MenuInfantil: "Infantil",
	MenuAdultos:  "Adultos",
	MenuPremium:  "Premium",
}

func (m Menu) String() string {
	if name, ok := menuNames[m]; ok {
		return name
	}
	return UndefinedLabel
}

// Key is the menu option number typed by the operator.
func (m Menu) Key() string { return optionKey(int(m)) }

// MenuFromKey resolves an option number. Unknown keys give MenuUndefined.
func MenuFromKey(key string) Menu {
	for _, m := range Menus {
		if m.Key() == strings.TrimSpace(key) {
			return m
		}
	}
	return MenuUndefined
}

func (m Menu) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Menu) UnmarshalText(b []byte) error {
	*m = MenuUndefined
	for _, candidate := range Menus {
		if candidate.String() == string(b) {
			*m = candidate
		}
	}
	return nil
}

// Music is the entertainment option of a reservation.
type Music int

const (
	MusicUndefined Music = iota
	MusicDJ
	MusicBanda
	MusicPlaylist
)

// Musics lists the selectable music options in display order.
var Musics = []Music{MusicDJ, MusicBanda, MusicPlaylist}

var musicNames = map[Music]string{
	MusicDJ:       "DJ",
	MusicBanda:    "Banda",
	MusicPlaylist: "Playlist personalizada",
}

func (m Music) String() string {
	if name, ok := musicNames[m]; ok {
		return name
	}
	return UndefinedLabel
}

func (m Music) Key() string { return optionKey(int(m)) }

// MusicFromKey resolves an option number. Unknown keys give MusicUndefined.
func MusicFromKey(key string) Music {
	for _, m := range Musics {
		if m.Key() == strings.TrimSpace(key) {
			return m
		}
	}
	return MusicUndefined
}

func (m Music) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Music) UnmarshalText(b []byte) error {
	*m = MusicUndefined
	for _, candidate := range Musics {
		if candidate.String() == string(b) {
			*m = candidate
		}
	}
	return nil
}

// Service is an optional extra hired with a reservation.
type Service int

const (
	ServiceDecoracion Service = iota + 1
	ServiceFotografia
	ServiceAnimacion
	ServiceCotillon
)

// Services lists the extra services in display order.
var Services = []Service{ServiceDecoracion, ServiceFotografia, ServiceAnimacion, ServiceCotillon}

var serviceNames = map[Service]string{
	ServiceDecoracion: "Decoracion tematica",
	ServiceFotografia: "Fotografia",
	ServiceAnimacion:  "Animacion",
	ServiceCotillon:   "Cotillon",
}

func (s Service) String() string { return serviceNames[s] }

func (s Service) Key() string { return optionKey(int(s)) }

// Valid reports whether s belongs to the catalog.
func (s Service) Valid() bool {
	_, ok := serviceNames[s]
	return ok
}

func (s Service) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText leaves s as the zero, invalid Service for unknown names;
// ServiceSet drops those.
func (s *Service) UnmarshalText(b []byte) error {
	*s = 0
	for _, candidate := range Services {
		if candidate.String() == string(b) {
			*s = candidate
		}
	}
	return nil
}

// ParseServices expands a comma separated selection such as "2,4".
// Unknown keys are ignored and duplicates collapse; the result is in catalog order.
func ParseServices(selection string) []Service {
	picked := make(map[Service]bool)
	for _, part := range strings.Split(selection, ",") {
		key := strings.TrimSpace(part)
		for _, s := range Services {
			if s.Key() == key {
				picked[s] = true
			}
		}
	}
	return collect(picked)
}

// ServiceSet normalizes services to a duplicate-free, catalog ordered slice.
func ServiceSet(services []Service) []Service {
	picked := make(map[Service]bool, len(services))
	for _, s := range services {
		if s.Valid() {
			picked[s] = true
		}
	}
	return collect(picked)
}

// ServiceNames renders services for display.
func ServiceNames(services []Service) []string {
	names := make([]string, 0, len(services))
	for _, s := range services {
		names = append(names, s.String())
	}
	return names
}

func collect(picked map[Service]bool) []Service {
	out := make([]Service, 0, len(picked))
	for _, s := range Services {
		if picked[s] {
			out = append(out, s)
		}
	}
	return out
}

func optionKey(n int) string {
	return strconv.Itoa(n)
}
