// Package agenda holds the appointment index: appointments grouped by date key,
// in insertion order, split by shift for display.
package agenda

import (
	"fmt"
)

// Shift is one of the two daily service periods.
type Shift string

const (
	Morning   Shift = "morning"
	Afternoon Shift = "afternoon"
)

// Label returns the pt-BR name shown in the UI.
func (s Shift) Label() string {
	switch s {
	case Morning:
		return "Manhã"
	case Afternoon:
		return "Tarde"
	default:
		return string(s)
	}
}

// Valid reports whether s is a known shift.
func (s Shift) Valid() bool {
	return s == Morning || s == Afternoon
}

// Shifts returns the shifts in display order.
func Shifts() []Shift {
	return []Shift{Morning, Afternoon}
}

// ParseShift parses "morning" or "afternoon".
func ParseShift(s string) (Shift, error) {
	sh := Shift(s)
	if !sh.Valid() {
		return "", fmt.Errorf("unknown shift %q", s)
	}
	return sh, nil
}

var appliances = []string{
	"Lavadora",
	"Secadora",
	"Lava e Seca",
	"Lava Louça",
	"Geladeira",
	"Freezer",
}

// Appliances returns the appliance categories serviced, in form order.
func Appliances() []string {
	out := make([]string, len(appliances))
	copy(out, appliances)
	return out
}

// IsKnownAppliance reports whether name is one of Appliances.
func IsKnownAppliance(name string) bool {
	for _, a := range appliances {
		if a == name {
			return true
		}
	}
	return false
}

// Appointment is a scheduled repair visit.
type Appointment struct {
	ID         string `json:"id"`
	ClientName string `json:"clientName"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"cep"`
	Appliance  string `json:"appliance"`
	Problem    string `json:"problem"`
	Shift      Shift  `json:"shift"`
	Time       string `json:"time"`
}

// Draft is an appointment that has not been assigned an ID yet.
type Draft struct {
	ClientName string
	Phone      string
	Address    string
	PostalCode string
	Appliance  string
	Problem    string
	Shift      Shift
	Time       string
}

func (d Draft) withID(id string) Appointment {
	return Appointment{
		ID:         id,
		ClientName: d.ClientName,
		Phone:      d.Phone,
		Address:    d.Address,
		PostalCode: d.PostalCode,
		Appliance:  d.Appliance,
		Problem:    d.Problem,
		Shift:      d.Shift,
		Time:       d.Time,
	}
}
