package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"SportsCatalog/internal/memstore"
	"SportsCatalog/internal/metrics"
	"SportsCatalog/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

type fixture struct {
	store      *memstore.MemStore
	metrics    *metrics.Metrics
	logger     *logrus.Logger
	hook       *logtest.Hook
	propagator *StatusPropagator
	sports     *SportService
	events     *EventService
	selections *SelectionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	store := memstore.NewMemStore()
	m := metrics.New()
	p := NewStatusPropagator(store, m, logger)
	return &fixture{
		store:      store,
		metrics:    m,
		logger:     logger,
		hook:       hook,
		propagator: p,
		sports:     NewSportService(store, m, logger),
		events:     NewEventService(store, store, p, m, logger),
		selections: NewSelectionService(store, store, p, m, logger),
	}
}

func (f *fixture) sport(t *testing.T, slug string) *model.Sport {
	t.Helper()
	s := &model.Sport{Name: slug, Slug: slug, Active: true}
	if err := f.sports.CreateSport(context.Background(), s); err != nil {
		t.Fatalf("CreateSport(%s): %v", slug, err)
	}
	return s
}

func (f *fixture) event(t *testing.T, sportID uint64, slug string) *model.Event {
	t.Helper()
	e := &model.Event{
		Name:           slug,
		Slug:           slug,
		Active:         true,
		Type:           "preplay",
		SportID:        sportID,
		Status:         "Pending",
		ScheduledStart: time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC),
	}
	if err := f.events.CreateEvent(context.Background(), e); err != nil {
		t.Fatalf("CreateEvent(%s): %v", slug, err)
	}
	return e
}

func (f *fixture) selection(t *testing.T, eventID uint64, name string, active bool) *model.Selection {
	t.Helper()
	s := &model.Selection{
		Name:    name,
		EventID: eventID,
		Price:   decimal.RequireFromString("1.50"),
		Active:  active,
		Outcome: "Unsettled",
	}
	if err := f.selections.CreateSelection(context.Background(), s); err != nil {
		t.Fatalf("CreateSelection(%s): %v", name, err)
	}
	return s
}

func (f *fixture) activeOf(t *testing.T, entity string, id uint64) bool {
	t.Helper()
	ctx := context.Background()
	switch entity {
	case model.EntitySport:
		s, err := f.store.GetSportByID(ctx, id)
		if err != nil {
			t.Fatalf("GetSportByID(%d): %v", id, err)
		}
		return s.Active
	case model.EntityEvent:
		e, err := f.store.GetEventByID(ctx, id)
		if err != nil {
			t.Fatalf("GetEventByID(%d): %v", id, err)
		}
		return e.Active
	default:
		s, err := f.store.GetSelectionByID(ctx, id)
		if err != nil {
			t.Fatalf("GetSelectionByID(%d): %v", id, err)
		}
		return s.Active
	}
}

func deactivate(t *testing.T, f *fixture, selectionID uint64) {
	t.Helper()
	off := false
	if _, err := f.selections.UpdateSelection(context.Background(), selectionID, model.SelectionUpdate{Active: &off}); err != nil {
		t.Fatalf("UpdateSelection(%d): %v", selectionID, err)
	}
}

func TestCascadeDeactivation(t *testing.T) {
	f := newFixture(t)
	football := f.sport(t, "football")
	e1 := f.event(t, football.ID, "e1")
	s1 := f.selection(t, e1.ID, "home", true)
	s2 := f.selection(t, e1.ID, "away", true)

	deactivate(t, f, s1.ID)
	if !f.activeOf(t, model.EntityEvent, e1.ID) {
		t.Fatalf("event deactivated while a selection is still active")
	}

	deactivate(t, f, s2.ID)
	if f.activeOf(t, model.EntityEvent, e1.ID) {
		t.Fatalf("event still active after its last selection was deactivated")
	}
	if f.activeOf(t, model.EntitySport, football.ID) {
		t.Fatalf("sport still active after its only event was deactivated")
	}

	changes := f.store.StatusChanges()
	if len(changes) != 2 {
		t.Fatalf("status changes = %d, want 2", len(changes))
	}
	if changes[0].Entity != model.EntityEvent || changes[0].Reason != ReasonNoActiveSelections {
		t.Fatalf("first change = %+v", changes[0])
	}
	if want := fmt.Sprintf(`{"entity_id":%d,"active_children":0}`, e1.ID); string(changes[0].Detail) != want {
		t.Fatalf("first change detail = %s, want %s", changes[0].Detail, want)
	}
	if changes[1].Entity != model.EntitySport || changes[1].Reason != ReasonNoActiveEvents {
		t.Fatalf("second change = %+v", changes[1])
	}

	expectDeactivations(t, f.metrics, map[string]int{model.EntityEvent: 1, model.EntitySport: 1})
}

func TestSportStaysActiveWithOtherActiveEvent(t *testing.T) {
	f := newFixture(t)
	sport := f.sport(t, "tennis")
	e1 := f.event(t, sport.ID, "t1")
	e2 := f.event(t, sport.ID, "t2")
	s1 := f.selection(t, e1.ID, "a", true)
	f.selection(t, e2.ID, "b", true)

	deactivate(t, f, s1.ID)

	if f.activeOf(t, model.EntityEvent, e1.ID) {
		t.Fatalf("e1 should be inactive")
	}
	if !f.activeOf(t, model.EntityEvent, e2.ID) {
		t.Fatalf("e2 should be untouched")
	}
	if !f.activeOf(t, model.EntitySport, sport.ID) {
		t.Fatalf("sport should stay active while e2 is active")
	}
}

func TestRecomputeEventIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sport := f.sport(t, "golf")
	e := f.event(t, sport.ID, "g1")
	s := f.selection(t, e.ID, "x", true)
	deactivate(t, f, s.ID)

	before := len(f.store.StatusChanges())
	for i := 0; i < 3; i++ {
		if err := f.propagator.RecomputeEvent(ctx, e.ID); err != nil {
			t.Fatalf("RecomputeEvent: %v", err)
		}
	}
	if after := len(f.store.StatusChanges()); after != before {
		t.Fatalf("repeated recompute recorded %d extra changes", after-before)
	}
	expectDeactivations(t, f.metrics, map[string]int{model.EntityEvent: 1, model.EntitySport: 1})
}

func TestRecomputeNeverReactivates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sport := f.sport(t, "darts")
	e := f.event(t, sport.ID, "d1")
	s := f.selection(t, e.ID, "x", true)
	deactivate(t, f, s.ID)

	on := true
	if _, err := f.selections.UpdateSelection(ctx, s.ID, model.SelectionUpdate{Active: &on}); err != nil {
		t.Fatalf("UpdateSelection: %v", err)
	}
	if f.activeOf(t, model.EntityEvent, e.ID) {
		t.Fatalf("event was reactivated by propagation")
	}
	if f.activeOf(t, model.EntitySport, sport.ID) {
		t.Fatalf("sport was reactivated by propagation")
	}
}

func TestRecomputeEventMissing(t *testing.T) {
	f := newFixture(t)
	if err := f.propagator.RecomputeEvent(context.Background(), 999); err != nil {
		t.Fatalf("RecomputeEvent on missing event: %v", err)
	}
	if n := len(f.store.StatusChanges()); n != 0 {
		t.Fatalf("status changes = %d, want 0", n)
	}
}

func TestRecordFailureDoesNotStopCascade(t *testing.T) {
	f := newFixture(t)
	sport := f.sport(t, "rugby")
	e := f.event(t, sport.ID, "r1")
	s := f.selection(t, e.ID, "x", true)

	f.store.FailRecord = errors.New("disk full")
	deactivate(t, f, s.ID)

	if f.activeOf(t, model.EntitySport, sport.ID) {
		t.Fatalf("sport should be deactivated even when audit record fails")
	}
	if !hasEntry(f.hook, logrus.WarnLevel, "record status change failed") {
		t.Fatalf("missing warn log for failed status change record")
	}
}

func TestPropagationFailureIsBestEffort(t *testing.T) {
	f := newFixture(t)
	sport := f.sport(t, "cricket")
	e := f.event(t, sport.ID, "c1")

	f.store.FailStatus = errors.New("connection reset")
	s := f.selection(t, e.ID, "x", false)
	if s.ID == 0 {
		t.Fatalf("selection was not written")
	}
	if !hasEntry(f.hook, logrus.WarnLevel, "recompute event after selection write failed") {
		t.Fatalf("missing warn log for failed propagation")
	}
	if !f.activeOf(t, model.EntityEvent, e.ID) {
		t.Fatalf("event changed although propagation failed")
	}
}

func expectDeactivations(t *testing.T, m *metrics.Metrics, want map[string]int) {
	t.Helper()
	entities := make([]string, 0, len(want))
	for e := range want {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	var b strings.Builder
	b.WriteString("# HELP catalog_deactivations_total Derived active flags flipped to false by cascading deactivation.\n")
	b.WriteString("# TYPE catalog_deactivations_total counter\n")
	for _, e := range entities {
		fmt.Fprintf(&b, "catalog_deactivations_total{entity=%q} %d\n", e, want[e])
	}
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(b.String()), "catalog_deactivations_total"); err != nil {
		t.Fatalf("deactivation metrics: %v", err)
	}
}

func hasEntry(hook *logtest.Hook, level logrus.Level, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
