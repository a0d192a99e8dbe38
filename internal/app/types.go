package app

import (
	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
	"github.com/klabast/wb-services/thermotec-agenda/internal/calendar"
)

// cell is a grid day annotated with its appointment count
type cell struct {
	calendar.Day
	Count int `json:"count"`
}

type shiftOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// monthView feeds month.html and GET /api/grid
type monthView struct {
	Month    string   `json:"month"`
	Title    string   `json:"title"`
	Prev     string   `json:"prev"`
	Next     string   `json:"next"`
	Today    string   `json:"today"`
	WeekDays []string `json:"weekDays"`
	Weeks    [][]cell `json:"-"`
	Days     []cell   `json:"days"`
}

// dayView feeds day.html and print.html
type dayView struct {
	Date       string
	Title      string
	Short      string
	Month      string
	Morning    []agenda.Appointment
	Afternoon  []agenda.Appointment
	Count      int
	Form       agenda.Form
	Notice     *agenda.Notice
	Appliances []string
	Shifts     []shiftOption
	AuthOn     bool
}

// dayAppointments is the JSON body of GET /api/days/{date}/appointments
type dayAppointments struct {
	Date      string               `json:"date"`
	Count     int                  `json:"count"`
	Morning   []agenda.Appointment `json:"morning"`
	Afternoon []agenda.Appointment `json:"afternoon"`
}

type createdResponse struct {
	Appointment agenda.Appointment `json:"appointment"`
	Notice      agenda.Notice      `json:"notice"`
}

type validationResponse struct {
	Error   string        `json:"error"`
	Missing []string      `json:"missing,omitempty"`
	Invalid []string      `json:"invalid,omitempty"`
	Notice  agenda.Notice `json:"notice"`
}

type addressResponse struct {
	PostalCode   string `json:"cep"`
	Address      string `json:"address"`
	Street       string `json:"logradouro"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
}

func shiftOptions() []shiftOption {
	shifts := agenda.Shifts()
	out := make([]shiftOption, len(shifts))
	for i, s := range shifts {
		out[i] = shiftOption{Value: string(s), Label: s.Label()}
	}
	return out
}
