package app

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/go-chi/chi/v5"

	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
	"github.com/klabast/wb-services/thermotec-agenda/internal/calendar"
)

const maxReminderMinutes = 24 * 60

// HandleExport downloads the appointments of {date} as ics, csv or json.
// Query param: reminder (ics only, minutes before the visit)
// An iCalendar file needs at least one event, so empty days answer 404 for ics.
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	day, key, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	list := s.index.ListFor(key)

	switch chi.URLParam(r, "format") {
	case "ics":
		if len(list) == 0 {
			http.Error(w, ErrNoAppointments, http.StatusNotFound)
			return
		}
		reminder, err := parseReminder(r.URL.Query().Get("reminder"))
		if err != nil {
			http.Error(w, ErrInvalidReminder, http.StatusBadRequest)
			return
		}
		s.generateICS(w, day, list, reminder)
	case "csv":
		s.generateCSV(w, key, list)
	case "json":
		s.generateJSON(w, key, list)
	default:
		http.Error(w, ErrInvalidFormat, http.StatusBadRequest)
	}
}

func parseReminder(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 0 || minutes > maxReminderMinutes {
		return 0, fmt.Errorf("invalid reminder %q", raw)
	}
	return time.Duration(minutes) * time.Minute, nil
}

func exportFilename(key, ext string) string {
	return fmt.Sprintf("attachment; filename=agendamentos_%s.%s", key, ext)
}

// visitStart combines the day with the appointment's HH:MM time
func visitStart(day time.Time, hhmm string) (time.Time, bool) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location()), true
}

// buildCalendar turns the day's appointments into one VEVENT each.
// Timed visits are written in UTC; an unparseable time becomes an all-day event.
func (s *Server) buildCalendar(day time.Time, list []agenda.Appointment, reminder time.Duration) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ICSProductID)
	cal.Props.SetText("X-WR-CALNAME", "Agendamentos "+calendar.FormatShort(day))
	cal.Props.SetText("X-WR-TIMEZONE", s.loc.String())

	stamp := s.now().UTC()
	for _, appt := range list {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("%s@%s", appt.ID, ICSDomain))
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s - %s", appt.Appliance, appt.ClientName))
		event.Props.SetText(ical.PropDescription, eventDescription(appt))
		if appt.Address != "" {
			event.Props.SetText(ical.PropLocation, appt.Address)
		}

		if start, ok := visitStart(day, appt.Time); ok {
			event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
			event.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(DefaultVisitDuration).UTC())
		} else {
			event.Props.SetDate(ical.PropDateTimeStart, day)
			event.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
		}

		if reminder > 0 {
			event.Children = append(event.Children, newAlarm(appt, reminder))
		}

		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

func eventDescription(appt agenda.Appointment) string {
	desc := fmt.Sprintf("Turno: %s\nTelefone: %s", appt.Shift.Label(), appt.Phone)
	if appt.PostalCode != "" {
		desc += "\nCEP: " + appt.PostalCode
	}
	if appt.Problem != "" {
		desc += "\nProblema: " + appt.Problem
	}
	return desc
}

// newAlarm builds a display alarm firing before the visit starts
func newAlarm(appt agenda.Appointment, before time.Duration) *ical.Component {
	alarm := ical.NewComponent(ical.CompAlarm)
	alarm.Props.SetText(ical.PropAction, "DISPLAY")
	alarm.Props.SetText(ical.PropDescription, fmt.Sprintf("Lembrete: %s - %s", appt.Appliance, appt.ClientName))

	trigger := ical.NewProp(ical.PropTrigger)
	trigger.Value = fmt.Sprintf("-PT%dM", int(before.Minutes()))
	alarm.Props.Set(trigger)
	return alarm
}

func (s *Server) generateICS(w http.ResponseWriter, day time.Time, list []agenda.Appointment, reminder time.Duration) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(s.buildCalendar(day, list, reminder)); err != nil {
		s.logger.Error("encoding calendar", "date", calendar.DateKey(day), "error", err)
		http.Error(w, ErrFailedToGenerateICS, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", exportFilename(calendar.DateKey(day), "ics"))
	_, _ = buf.WriteTo(w)
}

var csvHeader = []string{"Data", "Turno", "Horário", "Cliente", "Telefone", "CEP", "Endereço", "Produto", "Problema"}

func (s *Server) generateCSV(w http.ResponseWriter, key string, list []agenda.Appointment) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write(csvHeader)

	parts := agenda.Partition(list)
	for _, group := range [][]agenda.Appointment{parts.Morning, parts.Afternoon} {
		for _, a := range group {
			_ = cw.Write([]string{key, a.Shift.Label(), a.Time, a.ClientName, a.Phone, a.PostalCode, a.Address, a.Appliance, a.Problem})
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.Error("encoding csv export", "date", key, "error", err)
		http.Error(w, ErrFailedToGenerateCSV, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", exportFilename(key, "csv"))
	_, _ = buf.WriteTo(w)
}

func (s *Server) generateJSON(w http.ResponseWriter, key string, list []agenda.Appointment) {
	parts := agenda.Partition(list)
	body, err := json.Marshal(dayAppointments{
		Date:      key,
		Count:     parts.Len(),
		Morning:   parts.Morning,
		Afternoon: parts.Afternoon,
	})
	if err != nil {
		s.logger.Error("encoding json export", "date", key, "error", err)
		http.Error(w, ErrFailedToGenerateJSON, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", exportFilename(key, "json"))
	_, _ = w.Write(body)
}
