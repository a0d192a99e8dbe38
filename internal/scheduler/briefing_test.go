package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
)

func seededIndex() *agenda.Index {
	ix := agenda.NewIndex()
	ix.Add("2024-03-15", agenda.Draft{ClientName: "Ana", Appliance: "Geladeira", Shift: agenda.Afternoon, Time: "14:00"})
	ix.Add("2024-03-15", agenda.Draft{ClientName: "Bruno", Appliance: "Lavadora", Shift: agenda.Morning, Time: "09:00"})
	ix.Add("2024-03-16", agenda.Draft{ClientName: "Carla", Appliance: "Freezer", Shift: agenda.Morning, Time: "08:00"})
	return ix
}

func TestSummarize(t *testing.T) {
	ix := seededIndex()
	sum := Summarize("2024-03-15", ix.ListFor("2024-03-15"))

	if sum.Total != 2 || sum.Morning != 1 || sum.Afternoon != 1 {
		t.Errorf("Unexpected counts %+v", sum)
	}
	want := []string{"09:00 Bruno (Lavadora)", "14:00 Ana (Geladeira)"}
	if !reflect.DeepEqual(sum.Visits, want) {
		t.Errorf("Visits = %v, want %v", sum.Visits, want)
	}

	empty := Summarize("2024-03-17", ix.ListFor("2024-03-17"))
	if empty.Total != 0 || empty.Visits != nil {
		t.Errorf("Empty day summary = %+v", empty)
	}
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := New("every morning", agenda.NewIndex(), time.UTC, logger); err == nil {
		t.Error("Expected error for invalid cron spec")
	}
}

func TestRunLogsToday(t *testing.T) {
	zone := time.FixedZone("BRT", -3*60*60)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	b, err := New("0 7 * * *", seededIndex(), zone, logger)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	// 01:30 UTC on the 16th is still the 15th in UTC-3
	b.now = func() time.Time { return time.Date(2024, time.March, 16, 1, 30, 0, 0, time.UTC) }
	b.Run()

	var entry struct {
		Msg   string   `json:"msg"`
		Date  string   `json:"date"`
		Total int      `json:"total"`
		Visit []string `json:"visits"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Decoding log line %q failed: %v", buf.String(), err)
	}
	if entry.Date != "2024-03-15" || entry.Total != 2 || len(entry.Visit) != 2 {
		t.Errorf("Unexpected briefing %+v", entry)
	}
}

func TestStartStopsWithContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b, err := New("@every 1h", agenda.NewIndex(), time.UTC, logger)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
