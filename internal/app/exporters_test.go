package app

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
)

func seedExportDay(s *Server) {
	s.Index().Add("2024-03-15", agenda.Draft{
		ClientName: "Ana",
		Phone:      "11988887777",
		PostalCode: "01001000",
		Address:    "Praça da Sé, Sé, São Paulo - SP",
		Appliance:  "Geladeira",
		Problem:    "Não gela",
		Shift:      agenda.Afternoon,
		Time:       "14:30",
	})
	s.Index().Add("2024-03-15", agenda.Draft{
		ClientName: "Bruno",
		Phone:      "11977776666",
		Appliance:  "Lavadora",
		Shift:      agenda.Morning,
		Time:       "cedo",
	})
}

func TestExportICS(t *testing.T) {
	s := newTestServer(t, nil, nil)
	seedExportDay(s)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/day/2024-03-15/export/ics?reminder=30", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		t.Errorf("Expected Content-Type text/calendar, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "agendamentos_2024-03-15.ics") {
		t.Errorf("Unexpected Content-Disposition %q", cd)
	}

	body := w.Body.String()
	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ICSProductID,
		"UID:appt-1@" + ICSDomain,
		"UID:appt-2@" + ICSDomain,
		"SUMMARY:Geladeira - Ana",
		"SUMMARY:Lavadora - Bruno",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(body, field) {
			t.Errorf("ICS output missing required field: %s", field)
		}
	}

	if n := strings.Count(body, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("Expected 2 events, got %d", n)
	}

	// 14:30 in UTC-3
	if !strings.Contains(body, "DTSTART:20240315T173000Z") {
		t.Error("Timed visit should start at 17:30 UTC")
	}
	if !strings.Contains(body, "DTEND:20240315T183000Z") {
		t.Error("Timed visit should last one hour")
	}
	if !strings.Contains(body, "DTSTART;VALUE=DATE:20240315") {
		t.Error("Visit without a clock time should be all-day")
	}

	if n := strings.Count(body, "BEGIN:VALARM"); n != 2 {
		t.Errorf("Expected 2 alarms, got %d", n)
	}
	if !strings.Contains(body, "TRIGGER:-PT30M") {
		t.Error("Alarm should trigger 30 minutes before")
	}
}

func TestExportICSWithoutReminder(t *testing.T) {
	s := newTestServer(t, nil, nil)
	seedExportDay(s)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/day/2024-03-15/export/ics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "BEGIN:VALARM") {
		t.Error("No alarm expected without reminder")
	}
}

func TestExportICSEmptyDay(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/day/2024-03-20/export/ics", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), ErrNoAppointments) {
		t.Errorf("Unexpected body %q", w.Body.String())
	}

	w = serve(s, httptest.NewRequest(http.MethodGet, "/day/2024-03-20", nil))
	if strings.Contains(w.Body.String(), "/export/ics") {
		t.Error("Day page without appointments should not offer the ics export")
	}

	seedExportDay(s)
	w = serve(s, httptest.NewRequest(http.MethodGet, "/day/2024-03-15", nil))
	if !strings.Contains(w.Body.String(), "/day/2024-03-15/export/ics") {
		t.Error("Day page with appointments should offer the ics export")
	}
}

func TestExportCSVEmptyDay(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/day/2024-03-20/export/csv", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil || len(records) != 1 {
		t.Errorf("Expected only the header, got %v (%v)", records, err)
	}
}

func TestExportICSInvalidReminder(t *testing.T) {
	s := newTestServer(t, nil, nil)
	seedExportDay(s)

	for _, reminder := range []string{"soon", "-5", "5000"} {
		w := serve(s, httptest.NewRequest(http.MethodGet, "/day/2024-03-15/export/ics?reminder="+reminder, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("reminder=%s: expected status 400, got %d", reminder, w.Code)
		}
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t, nil, nil)
	seedExportDay(s)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/day/2024-03-15/export/csv", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/csv") {
		t.Errorf("Expected Content-Type text/csv, got %s", ct)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("Reading CSV failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(records))
	}
	if records[0][0] != "Data" || records[0][3] != "Cliente" {
		t.Errorf("Unexpected header %v", records[0])
	}

	// Morning rows come first
	if records[1][3] != "Bruno" || records[1][1] != "Manhã" {
		t.Errorf("First row = %v", records[1])
	}
	if records[2][3] != "Ana" || records[2][6] != "Praça da Sé, Sé, São Paulo - SP" {
		t.Errorf("Second row = %v", records[2])
	}
}

func TestExportJSON(t *testing.T) {
	s := newTestServer(t, nil, nil)
	seedExportDay(s)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/day/2024-03-15/export/json", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var day dayAppointments
	if err := json.NewDecoder(w.Body).Decode(&day); err != nil {
		t.Fatalf("Decoding JSON export failed: %v", err)
	}
	if day.Date != "2024-03-15" || day.Count != 2 || len(day.Morning) != 1 || len(day.Afternoon) != 1 {
		t.Errorf("Unexpected export %+v", day)
	}
}

func TestExportInvalidFormat(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/day/2024-03-15/export/xml", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestVisitStart(t *testing.T) {
	day := time.Date(2024, time.March, 15, 0, 0, 0, 0, testZone)

	tests := []struct {
		hhmm string
		want time.Time
		ok   bool
	}{
		{"09:00", time.Date(2024, time.March, 15, 9, 0, 0, 0, testZone), true},
		{"23:59", time.Date(2024, time.March, 15, 23, 59, 0, 0, testZone), true},
		{"9h", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		got, ok := visitStart(day, tt.hhmm)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("visitStart(%q) = %v, %v; want %v, %v", tt.hhmm, got, ok, tt.want, tt.ok)
		}
	}
}
