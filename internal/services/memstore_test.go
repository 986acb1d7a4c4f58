package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"eventrsvp/internal/domain"
)

// memStore is an in-memory ReservationStore. Each WithinTx runs under one lock and is undone from a
// snapshot when fn fails, which gives the same all-or-nothing contract as the Postgres store.
//
// Because every transaction is serialized by that lock, tests built on memStore check service-level
// behaviour only: admit-before-add ordering, rollback on a failed step, notification counts and the
// occupancy invariant. They cannot catch a read-then-write race inside Admit. That atomicity is pinned
// by the SQL-shape tests in internal/repository/postgres/admission_test.go (one conditional UPDATE, no
// prior SELECT) and exercised against a live database by cmd/conctest.
type memStore struct {
	mu           sync.Mutex
	events       map[string]*domain.Event
	reservations map[string]*domain.Reservation
	seq          int
}

func newMemStore(events ...*domain.Event) *memStore {
	m := &memStore{
		events:       make(map[string]*domain.Event),
		reservations: make(map[string]*domain.Reservation),
	}
	for _, e := range events {
		cp := *e
		m.events[e.ID] = &cp
	}
	return m
}

func pairKey(userID, eventID string) string { return userID + "|" + eventID }

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, admission domain.AdmissionControl, ledger domain.ReservationLedger) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin: %w: %w", domain.ErrStoreUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	events, reservations, seq := m.snapshot()
	tx := &memTx{m: m}
	if err := fn(ctx, tx, tx); err != nil {
		m.events, m.reservations, m.seq = events, reservations, seq
		return err
	}
	return nil
}

func (m *memStore) Ledger() domain.ReservationLedger {
	return &memReader{m: m}
}

func (m *memStore) snapshot() (map[string]*domain.Event, map[string]*domain.Reservation, int) {
	events := make(map[string]*domain.Event, len(m.events))
	for k, v := range m.events {
		cp := *v
		events[k] = &cp
	}
	reservations := make(map[string]*domain.Reservation, len(m.reservations))
	for k, v := range m.reservations {
		reservations[k] = v
	}
	return events, reservations, m.seq
}

// occupancy returns the stored counter and the number of live reservations for eventID.
func (m *memStore) occupancy(eventID string) (counter, live int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.EventID == eventID {
			live++
		}
	}
	return m.events[eventID].Occupancy, live
}

func (m *memStore) hasReservation(userID, eventID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.reservations[pairKey(userID, eventID)]
	return ok
}

// memTx operates on the store while its lock is held.
type memTx struct {
	m *memStore
}

func (t *memTx) Admit(_ context.Context, eventID string) (*domain.Event, error) {
	e, ok := t.m.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if e.Occupancy >= e.Capacity {
		return nil, domain.ErrEventFull
	}
	e.Occupancy++
	cp := *e
	return &cp, nil
}

func (t *memTx) Release(_ context.Context, eventID string) (*domain.Event, error) {
	e, ok := t.m.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if e.Occupancy == 0 {
		return nil, fmt.Errorf("release %s: occupancy already zero", eventID)
	}
	e.Occupancy--
	cp := *e
	return &cp, nil
}

func (t *memTx) Add(_ context.Context, userID, eventID string) (*domain.Reservation, error) {
	key := pairKey(userID, eventID)
	if _, ok := t.m.reservations[key]; ok {
		return nil, domain.ErrDuplicateReservation
	}
	t.m.seq++
	r := &domain.Reservation{
		ID:        fmt.Sprintf("res-%d", t.m.seq),
		UserID:    userID,
		EventID:   eventID,
		CreatedAt: time.Unix(int64(t.m.seq), 0).UTC(),
	}
	t.m.reservations[key] = r
	return r, nil
}

func (t *memTx) Remove(_ context.Context, userID, eventID string) (*domain.Reservation, error) {
	key := pairKey(userID, eventID)
	r, ok := t.m.reservations[key]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	delete(t.m.reservations, key)
	return r, nil
}

func (t *memTx) ListEventIDs(_ context.Context, userID string) ([]string, error) {
	list := t.byUser(userID)
	ids := make([]string, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		ids = append(ids, list[i].EventID)
	}
	return ids, nil
}

// byUser returns userID's reservations, newest first.
func (t *memTx) byUser(userID string) []*domain.Reservation {
	list := make([]*domain.Reservation, 0)
	for _, r := range t.m.reservations {
		if r.UserID == userID {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

// ListWithEvents mirrors the inner join: reservations without an event are left out.
func (t *memTx) ListWithEvents(_ context.Context, userID string) ([]*domain.ReservationWithEvent, error) {
	list := make([]*domain.ReservationWithEvent, 0)
	for _, r := range t.byUser(userID) {
		e, ok := t.m.events[r.EventID]
		if !ok {
			continue
		}
		ev := *e
		list = append(list, &domain.ReservationWithEvent{Reservation: r, Event: &ev})
	}
	return list, nil
}

// memReader serves pool reads outside a transaction.
type memReader struct {
	m *memStore
}

func (r *memReader) Add(ctx context.Context, userID, eventID string) (*domain.Reservation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return (&memTx{m: r.m}).Add(ctx, userID, eventID)
}

func (r *memReader) Remove(ctx context.Context, userID, eventID string) (*domain.Reservation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return (&memTx{m: r.m}).Remove(ctx, userID, eventID)
}

func (r *memReader) ListEventIDs(ctx context.Context, userID string) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return (&memTx{m: r.m}).ListEventIDs(ctx, userID)
}

func (r *memReader) ListWithEvents(ctx context.Context, userID string) ([]*domain.ReservationWithEvent, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return (&memTx{m: r.m}).ListWithEvents(ctx, userID)
}
