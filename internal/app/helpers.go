package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
	"github.com/klabast/wb-services/thermotec-agenda/internal/calendar"
	"github.com/klabast/wb-services/thermotec-agenda/internal/cep"
)

// writeJSON encodes v with status and logs encoding failures
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// dateParam parses the {date} URL parameter, answering 400 when invalid
func (s *Server) dateParam(w http.ResponseWriter, r *http.Request) (time.Time, string, bool) {
	key := chi.URLParam(r, "date")
	day, err := calendar.ParseDateKey(key, s.loc)
	if err != nil {
		http.Error(w, ErrInvalidDateFormat, http.StatusBadRequest)
		return time.Time{}, "", false
	}
	return day, key, true
}

// referenceMonth resolves ?month=YYYY-MM (default: today) and applies ?nav=prev|next
func (s *Server) referenceMonth(q url.Values) (time.Time, error) {
	ref := s.today()
	if m := q.Get("month"); m != "" {
		parsed, err := calendar.ParseMonthKey(m, s.loc)
		if err != nil {
			return time.Time{}, err
		}
		ref = parsed
	}
	if nav := q.Get("nav"); nav != "" {
		dir, err := calendar.ParseDirection(nav)
		if err != nil {
			return time.Time{}, err
		}
		ref = calendar.Navigate(ref, dir)
	}
	if !calendar.SupportedYear(ref.Year()) {
		return time.Time{}, calendar.ErrInvalidMonth
	}
	return ref, nil
}

// monthError answers 400 for a bad month or direction query
func monthError(w http.ResponseWriter, err error) {
	if errors.Is(err, calendar.ErrInvalidDirection) {
		http.Error(w, ErrInvalidDirection, http.StatusBadRequest)
		return
	}
	http.Error(w, ErrInvalidMonth, http.StatusBadRequest)
}

// buildMonthView computes the grid for ref and annotates it with counts
func (s *Server) buildMonthView(ref time.Time) monthView {
	grid := calendar.BuildMonth(ref, s.today())
	counts := s.index.Counts(grid.Keys())

	first := grid.Reference()
	view := monthView{
		Month:    calendar.MonthKey(first),
		Title:    grid.Title(),
		Prev:     neighbourMonth(first, calendar.Prev),
		Next:     neighbourMonth(first, calendar.Next),
		Today:    calendar.DateKey(s.today()),
		WeekDays: calendar.WeekdayHeaders(),
		Days:     make([]cell, len(grid.Days)),
	}
	for i, d := range grid.Days {
		view.Days[i] = cell{Day: d, Count: counts[d.Key]}
	}
	for i := 0; i < len(view.Days); i += calendar.DaysPerWeek {
		view.Weeks = append(view.Weeks, view.Days[i:i+calendar.DaysPerWeek])
	}
	return view
}

// neighbourMonth is the month key one step away, or "" past the supported years
func neighbourMonth(first time.Time, dir calendar.Direction) string {
	m := calendar.Navigate(first, dir)
	if !calendar.SupportedYear(m.Year()) {
		return ""
	}
	return calendar.MonthKey(m)
}

// buildDayView lists the day's appointments split by shift
func (s *Server) buildDayView(day time.Time, key string) dayView {
	parts := agenda.Partition(s.index.ListFor(key))
	month := ""
	if calendar.SupportedYear(day.Year()) {
		month = calendar.MonthKey(day)
	}
	return dayView{
		Date:       key,
		Title:      calendar.FormatLong(day),
		Short:      calendar.FormatShort(day),
		Month:      month,
		Morning:    parts.Morning,
		Afternoon:  parts.Afternoon,
		Count:      parts.Len(),
		Form:       agenda.Form{Shift: string(agenda.Morning)},
		Appliances: agenda.Appliances(),
		Shifts:     shiftOptions(),
		AuthOn:     s.auth.Enabled(),
	}
}

// addAppointment validates f, fills the address from the postal code when
// the user left it empty, and adds the result under key. Lookup failures
// only leave the address empty.
func (s *Server) addAppointment(ctx context.Context, key string, f agenda.Form) (agenda.Appointment, error) {
	f.Normalize()
	if err := f.Validate(); err != nil {
		return agenda.Appointment{}, err
	}

	if f.Address == "" && cep.Complete(f.PostalCode) && s.lookup != nil {
		f.Address = s.resolveAddress(ctx, f.PostalCode)
	}

	appt := s.index.Add(key, f.Draft())
	s.logger.Info("appointment created",
		"date", key,
		"id", appt.ID,
		"shift", appt.Shift,
		"time", appt.Time,
		"appliance", appt.Appliance,
	)
	return appt, nil
}

// resolveAddress waits for the lookup at most cepTimeout
func (s *Server) resolveAddress(ctx context.Context, postalCode string) string {
	ctx, cancel := context.WithTimeout(ctx, s.cepTimeout)
	defer cancel()

	select {
	case res := <-s.lookup.LookupAsync(ctx, postalCode):
		if res.Err != nil {
			s.logger.Info("address left for manual entry", "cep", postalCode, "error", res.Err)
			return ""
		}
		return res.Address.String()
	case <-ctx.Done():
		s.logger.Info("address left for manual entry", "cep", postalCode, "error", ctx.Err())
		return ""
	}
}

// removeAppointment deletes id under key; unknown ids are a no-op
func (s *Server) removeAppointment(key, id string) bool {
	removed := s.index.Remove(key, id)
	if removed {
		s.logger.Info("appointment removed", "date", key, "id", id)
	} else {
		s.logger.Debug("appointment already absent", "date", key, "id", id)
	}
	return removed
}

func validationBody(err error) (validationResponse, bool) {
	var verr *agenda.ValidationError
	if !errors.As(err, &verr) {
		return validationResponse{}, false
	}
	return validationResponse{
		Error:   verr.Error(),
		Missing: verr.Missing,
		Invalid: verr.Invalid,
		Notice:  verr.Notice(),
	}, true
}
