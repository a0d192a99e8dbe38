// Package scheduler runs the daily agenda briefing.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/klabast/wb-services/thermotec-agenda/internal/agenda"
	"github.com/klabast/wb-services/thermotec-agenda/internal/calendar"
)

// DayLister is the read side of the appointment index.
type DayLister interface {
	ListFor(key string) []agenda.Appointment
}

// Summary is what the briefing reports for one day.
type Summary struct {
	Date      string
	Total     int
	Morning   int
	Afternoon int
	Visits    []string
}

// Summarize counts the day's appointments per shift and lists them
// morning first, in insertion order.
func Summarize(key string, list []agenda.Appointment) Summary {
	parts := agenda.Partition(list)
	sum := Summary{
		Date:      key,
		Total:     parts.Len(),
		Morning:   len(parts.Morning),
		Afternoon: len(parts.Afternoon),
	}
	for _, group := range [][]agenda.Appointment{parts.Morning, parts.Afternoon} {
		for _, a := range group {
			sum.Visits = append(sum.Visits, fmt.Sprintf("%s %s (%s)", a.Time, a.ClientName, a.Appliance))
		}
	}
	return sum
}

// Briefing logs the current day's agenda on a cron schedule.
type Briefing struct {
	cron   *cron.Cron
	spec   string
	index  DayLister
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// New registers the briefing at spec (standard 5-field cron) in loc.
func New(spec string, index DayLister, loc *time.Location, logger *slog.Logger) (*Briefing, error) {
	b := &Briefing{
		cron:   cron.New(cron.WithLocation(loc)),
		spec:   spec,
		index:  index,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
	if _, err := b.cron.AddFunc(spec, b.Run); err != nil {
		return nil, fmt.Errorf("add daily briefing %q: %w", spec, err)
	}
	return b, nil
}

// Start runs the schedule until ctx is done.
func (b *Briefing) Start(ctx context.Context) {
	b.cron.Start()
	b.logger.Info("📅 briefing scheduled", "spec", b.spec, "timezone", b.loc.String())

	<-ctx.Done()
	b.Stop()
}

// Stop waits for a running briefing to finish.
func (b *Briefing) Stop() {
	<-b.cron.Stop().Done()
	b.logger.Info("briefing stopped")
}

// Run logs today's summary once.
func (b *Briefing) Run() {
	key := calendar.DateKey(b.now().In(b.loc))
	sum := Summarize(key, b.index.ListFor(key))

	if sum.Total == 0 {
		b.logger.Info("☀️ daily briefing: no appointments today", "date", key)
		return
	}
	b.logger.Info("☀️ daily briefing",
		"date", sum.Date,
		"total", sum.Total,
		"morning", sum.Morning,
		"afternoon", sum.Afternoon,
		"visits", sum.Visits,
	)
}
