package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/completion"
	"github.com/ahmetcoskunkizilkaya/idebisnis-backend/internal/models"
	"github.com/google/uuid"
)

type memStore struct {
	mu      sync.Mutex
	reports map[uuid.UUID]models.Report
	failAll error
}

func newMemStore() *memStore {
	return &memStore{reports: make(map[uuid.UUID]models.Report)}
}

func (m *memStore) Create(_ context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	if _, ok := m.reports[r.ID]; ok {
		return errors.New("duplicate id")
	}
	m.reports[r.ID] = *r
	return nil
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	r, ok := m.reports[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) FindByPaymentRef(_ context.Context, ref string) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.PaymentRef != nil && *r.PaymentRef == ref {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListByOwner(_ context.Context, owner uuid.UUID, limit, offset int) ([]models.Report, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Report
	for _, r := range m.reports {
		if r.UserID == owner {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *memStore) MarkPaid(_ context.Context, id uuid.UUID, at time.Time, via string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.IsPaid {
		return false, nil
	}
	r.IsPaid = true
	r.PaidAt = &at
	r.PaidVia = via
	m.reports[id] = r
	return true, nil
}

func (m *memStore) SetPaymentRef(_ context.Context, id uuid.UUID, ref string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok || r.IsPaid || r.PaymentRef != nil {
		return false, nil
	}
	r.PaymentRef = &ref
	r.PaymentRequestedAt = &at
	m.reports[id] = r
	return true, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

type fakeProvider struct {
	mu       sync.Mutex
	requests []completion.Request
	err      error
	block    chan struct{}
	started  int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req completion.Request) (string, error) {
	f.mu.Lock()
	f.started++
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if req.Tier == completion.TierFull {
		return "## Analisis SWOT\nLaporan lengkap", nil
	}
	return "Ringkasan singkat ide bisnis", nil
}

func (f *fakeProvider) startedCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *fakeProvider) calls() []completion.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]completion.Request(nil), f.requests...)
}

type memCache struct {
	mu    sync.Mutex
	items map[uuid.UUID]string
	err   error
}

func (c *memCache) Get(_ context.Context, id uuid.UUID) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", false, c.err
	}
	text, ok := c.items[id]
	return text, ok, nil
}

func (c *memCache) Set(_ context.Context, id uuid.UUID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.items == nil {
		c.items = make(map[uuid.UUID]string)
	}
	c.items[id] = text
	return nil
}

type memEvents struct {
	mu     sync.Mutex
	events map[string]*models.PaymentEvent
}

func newMemEvents() *memEvents {
	return &memEvents{events: make(map[string]*models.PaymentEvent)}
}

func (m *memEvents) Find(_ context.Context, provider, eventID string) (*models.PaymentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[provider+"/"+eventID]
	if !ok {
		return nil, nil
	}
	cp := *ev
	return &cp, nil
}

func (m *memEvents) Create(_ context.Context, ev *models.PaymentEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ev.Provider + "/" + ev.ProviderEventID
	if _, ok := m.events[key]; ok {
		return errors.New("unique violation")
	}
	cp := *ev
	m.events[key] = &cp
	return nil
}

func (m *memEvents) MarkProcessed(_ context.Context, id uuid.UUID, at time.Time, processingErr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.ID == id {
			ev.ProcessingError = processingErr
			if processingErr == "" {
				ev.ProcessedAt = &at
			}
		}
	}
	return nil
}
