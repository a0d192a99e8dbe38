package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
	"github.com/klabast/wb-services/thermotec-agenda/internal/calendar"
	"github.com/klabast/wb-services/thermotec-agenda/internal/cep"
)

// ServeMonth renders the month calendar
// Query params: month (YYYY-MM, defaults to the current month), nav (prev|next)
func (s *Server) ServeMonth(w http.ResponseWriter, r *http.Request) {
	ref, err := s.referenceMonth(r.URL.Query())
	if err != nil {
		monthError(w, err)
		return
	}
	s.render(w, http.StatusOK, pageMonth, s.buildMonthView(ref))
}

// ServeDay renders the appointments of one day with the new-appointment form
// Query param: notice (code of the message to show after a redirect)
func (s *Server) ServeDay(w http.ResponseWriter, r *http.Request) {
	day, key, ok := s.dateParam(w, r)
	if !ok {
		return
	}

	view := s.buildDayView(day, key)
	if n, found := agenda.NoticeByCode(r.URL.Query().Get("notice")); found {
		view.Notice = &n
	}
	s.render(w, http.StatusOK, pageDay, view)
}

// ServePrint renders the printable summary of one day
func (s *Server) ServePrint(w http.ResponseWriter, r *http.Request) {
	day, key, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	s.render(w, http.StatusOK, pagePrint, s.buildDayView(day, key))
}

func formFromValues(v url.Values) agenda.Form {
	return agenda.Form{
		ClientName: v.Get("clientName"),
		Phone:      v.Get("phone"),
		Address:    v.Get("address"),
		PostalCode: v.Get("cep"),
		Appliance:  v.Get("appliance"),
		Problem:    v.Get("problem"),
		Shift:      v.Get("shift"),
		Time:       v.Get("time"),
	}
}

func dayURL(key, notice string) string {
	u := "/day/" + key
	if notice != "" {
		u += "?notice=" + url.QueryEscape(notice)
	}
	return u
}

// SubmitAppointment handles the HTML form. A rejected form is shown again
// with its values and the notice; nothing is added.
func (s *Server) SubmitAppointment(w http.ResponseWriter, r *http.Request) {
	day, key, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidBody, http.StatusBadRequest)
		return
	}

	form := formFromValues(r.PostForm)
	if _, err := s.addAppointment(r.Context(), key, form); err != nil {
		body, isValidation := validationBody(err)
		if !isValidation {
			s.logger.Error("adding appointment", "date", key, "error", err)
			http.Error(w, ErrInternalServer, http.StatusInternalServerError)
			return
		}

		view := s.buildDayView(day, key)
		view.Form = form
		view.Notice = &body.Notice
		s.render(w, http.StatusUnprocessableEntity, pageDay, view)
		return
	}

	http.Redirect(w, r, dayURL(key, agenda.NoticeCreated.Code), http.StatusSeeOther)
}

// SubmitDelete removes one appointment and returns to the day page.
// An id that is already gone is not an error.
func (s *Server) SubmitDelete(w http.ResponseWriter, r *http.Request) {
	_, key, ok := s.dateParam(w, r)
	if !ok {
		return
	}

	notice := ""
	if s.removeAppointment(key, chi.URLParam(r, "id")) {
		notice = agenda.NoticeDeleted.Code
	}
	http.Redirect(w, r, dayURL(key, notice), http.StatusSeeOther)
}

// GetConfig returns the fixed choices the UI needs
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"appliances":  agenda.Appliances(),
		"shifts":      shiftOptions(),
		"weekDays":    calendar.WeekdayHeaders(),
		"month":       calendar.MonthKey(today),
		"today":       calendar.DateKey(today),
		"timezone":    s.loc.String(),
		"authEnabled": s.auth.Enabled(),
	})
}

// GetGrid returns the 42 cells of a month with appointment counts
// Query params: month (YYYY-MM), nav (prev|next)
func (s *Server) GetGrid(w http.ResponseWriter, r *http.Request) {
	ref, err := s.referenceMonth(r.URL.Query())
	if err != nil {
		monthError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.buildMonthView(ref))
}

// ListAppointments returns the appointments of {date} split by shift
func (s *Server) ListAppointments(w http.ResponseWriter, r *http.Request) {
	_, key, ok := s.dateParam(w, r)
	if !ok {
		return
	}

	parts := agenda.Partition(s.index.ListFor(key))
	s.writeJSON(w, http.StatusOK, dayAppointments{
		Date:      key,
		Count:     parts.Len(),
		Morning:   parts.Morning,
		Afternoon: parts.Afternoon,
	})
}

// CreateAppointment adds an appointment from a JSON form body
func (s *Server) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	_, key, ok := s.dateParam(w, r)
	if !ok {
		return
	}

	var form agenda.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, ErrInvalidBody, http.StatusBadRequest)
		return
	}

	appt, err := s.addAppointment(r.Context(), key, form)
	if err != nil {
		body, isValidation := validationBody(err)
		if !isValidation {
			s.logger.Error("adding appointment", "date", key, "error", err)
			http.Error(w, ErrInternalServer, http.StatusInternalServerError)
			return
		}
		s.writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}

	w.Header().Set("Location", "/api/days/"+key+"/appointments/"+appt.ID)
	s.writeJSON(w, http.StatusCreated, createdResponse{Appointment: appt, Notice: agenda.NoticeCreated})
}

// DeleteAppointment removes an appointment; absent ids answer 204 as well
func (s *Server) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	_, key, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	s.removeAppointment(key, chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// LookupPostalCode resolves {cep} to an address
func (s *Server) LookupPostalCode(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		http.Error(w, ErrLookupFailed, http.StatusBadGateway)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cepTimeout)
	defer cancel()

	addr, err := s.lookup.Lookup(ctx, chi.URLParam(r, "cep"))
	switch {
	case errors.Is(err, cep.ErrInvalidPostalCode):
		http.Error(w, ErrInvalidPostalCode, http.StatusBadRequest)
		return
	case errors.Is(err, cep.ErrNotFound):
		http.Error(w, ErrPostalCodeNotFound, http.StatusNotFound)
		return
	case err != nil:
		s.logger.Warn("address lookup failed", "cep", chi.URLParam(r, "cep"), "error", err)
		http.Error(w, ErrLookupFailed, http.StatusBadGateway)
		return
	}

	s.writeJSON(w, http.StatusOK, addressResponse{
		PostalCode:   addr.PostalCode,
		Address:      addr.String(),
		Street:       addr.Street,
		Neighborhood: addr.Neighborhood,
		City:         addr.City,
		State:        addr.State,
	})
}
