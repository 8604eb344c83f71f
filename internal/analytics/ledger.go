// Package analytics keeps the per-day guest ledger: who was seated, when
// they left, and the metrics and exports derived from that.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/seating-chart/internal/event"
	"github.com/iliyamo/seating-chart/internal/model"
	"github.com/iliyamo/seating-chart/internal/repository"
)

// SessionRepository persists one ledger per session date.
type SessionRepository interface {
	Load(ctx context.Context, date string) (model.SessionData, error)
	Save(ctx context.Context, s model.SessionData) error
	Archive(ctx context.Context, date string, at time.Time) (string, error)
}

// EventKind names a ledger change.
type EventKind string

const (
	GuestSeated    EventKind = "guest_seated"
	GuestCleared   EventKind = "guest_cleared"
	SessionArchive EventKind = "session_archived"
)

// Event is published to subscribers after every ledger change.  Area is
// the area of the seat involved, empty for session events.
type Event struct {
	Kind        EventKind
	SessionDate string
	Area        string
	Guest       model.Guest
	At          time.Time
}

// Ledger is the day's session record.  It implements the seating engine's
// ledger notifier.
type Ledger struct {
	repo    SessionRepository
	now     func() time.Time
	log     *slog.Logger
	timeout time.Duration

	session model.SessionData
	feed    event.Feed[Event]
}

// NewLedger returns a ledger for today's date.  Call Open to pick up a
// session persisted earlier the same day.
func NewLedger(repo SessionRepository, now func() time.Time, log *slog.Logger) *Ledger {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	l := &Ledger{repo: repo, now: now, log: log, timeout: 5 * time.Second}
	l.session = model.SessionData{SessionDate: l.today()}
	return l
}

func (l *Ledger) today() string { return l.now().Format(model.SessionDateLayout) }

// Open loads today's session if one was saved, else keeps a fresh one.
func (l *Ledger) Open(ctx context.Context) error {
	date := l.today()
	s, err := l.repo.Load(ctx, date)
	switch {
	case err == nil:
		if s.SessionDate == "" {
			s.SessionDate = date
		}
		l.session = s
		l.log.Info("session resumed", "date", date, "guests", len(s.GuestInteractions))
		return nil
	case errors.Is(err, repository.ErrNotFound):
		l.session = model.SessionData{SessionDate: date}
		return nil
	default:
		l.session = model.SessionData{SessionDate: date}
		l.log.Warn("session unreadable, starting fresh", "date", date, "err", err)
		return err
	}
}

// Subscribe registers fn for ledger events.
func (l *Ledger) Subscribe(fn func(Event)) func() { return l.feed.Subscribe(fn) }

// RecordSeated appends g, stamped with the current time if it has none.
// area names the seat's area for subscribers; it is not persisted.
func (l *Ledger) RecordSeated(area string, g model.Guest) {
	rec := g.Clone()
	if rec.TimeSeated.IsZero() {
		rec.TimeSeated = l.now()
	}
	rec.TimeCleared = nil
	l.session.GuestInteractions = append(l.session.GuestInteractions, rec)
	l.persist()
	l.feed.Publish(Event{Kind: GuestSeated, SessionDate: l.session.SessionDate, Area: area, Guest: rec.Clone(), At: rec.TimeSeated})
}

// RecordCleared closes the most recent open record for g's GuestID.  With
// no open record it does nothing.
func (l *Ledger) RecordCleared(area string, g model.Guest) {
	list := l.session.GuestInteractions
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].GuestID != g.GuestID || list[i].TimeCleared != nil {
			continue
		}
		now := l.now()
		list[i].TimeCleared = &now
		l.persist()
		l.feed.Publish(Event{Kind: GuestCleared, SessionDate: l.session.SessionDate, Area: area, Guest: list[i].Clone(), At: now})
		return
	}
	l.log.Debug("no open ledger record", "guest", g.GuestID)
}

// TotalGuestsToday is the number of seatings recorded this session.
func (l *Ledger) TotalGuestsToday() int { return len(l.session.GuestInteractions) }

// AverageStayMinutes is the mean stay over closed records, 0 when none.
func (l *Ledger) AverageStayMinutes() float64 {
	var sum float64
	n := 0
	for _, g := range l.session.GuestInteractions {
		if g.TimeCleared == nil {
			continue
		}
		sum += g.StayMinutes()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// OpenRecords counts guests still seated.
func (l *Ledger) OpenRecords() int {
	n := 0
	for _, g := range l.session.GuestInteractions {
		if g.Open() {
			n++
		}
	}
	return n
}

func (l *Ledger) SessionDate() string { return l.session.SessionDate }

// Interactions returns a copy of the ledger entries.
func (l *Ledger) Interactions() []model.Guest {
	out := make([]model.Guest, len(l.session.GuestInteractions))
	for i, g := range l.session.GuestInteractions {
		out[i] = g.Clone()
	}
	return out
}

// Save persists the session now.
func (l *Ledger) Save(ctx context.Context) error {
	if err := l.repo.Save(ctx, l.session); err != nil {
		l.log.Error("session save failed", "date", l.session.SessionDate, "err", err)
		return err
	}
	return nil
}

func (l *Ledger) persist() {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	_ = l.Save(ctx)
}

// ArchiveAndReset saves the session one last time, moves it to its archive
// name and starts an empty session for today.  Persistence failures are
// logged and returned, but the in-memory ledger is reset regardless.  A
// failed archive move alone is not an error.
func (l *Ledger) ArchiveAndReset(ctx context.Context) (archiveKey string, err error) {
	closed := l.session.SessionDate
	var errs []error
	if err := l.Save(ctx); err != nil {
		l.log.Warn("closing session not saved, archiving last persisted copy",
			"date", closed, "records", len(l.session.GuestInteractions))
		errs = append(errs, fmt.Errorf("save closing session: %w", err))
	}
	at := l.now()
	archiveKey, aerr := l.repo.Archive(ctx, closed, at)
	if aerr != nil {
		l.log.Warn("session archive failed", "date", closed, "err", aerr)
		archiveKey = ""
	}
	l.session = model.SessionData{SessionDate: l.today()}
	if err := l.Save(ctx); err != nil {
		errs = append(errs, fmt.Errorf("save fresh session: %w", err))
	}
	l.log.Info("session archived", "date", closed, "archive", archiveKey)
	l.feed.Publish(Event{Kind: SessionArchive, SessionDate: closed, At: at})
	return archiveKey, errors.Join(errs...)
}
