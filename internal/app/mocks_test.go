package app_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/neomorfeo/siteclone/internal/domain"
)

// --- Token verifier ---

type staticTokens struct {
	valid string
}

func (s staticTokens) Verify(_ context.Context, token string) error {
	if token != s.valid {
		return domain.ErrInvalidToken
	}
	return nil
}

// --- Catalog ---

type mockCatalog struct {
	eligible map[string]bool
	err      error
	calls    int
}

func (m *mockCatalog) List(_ context.Context) ([]domain.TenantSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]string, 0, len(m.eligible))
	for id := range m.eligible {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.TenantSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.TenantSummary{ID: id, Domain: "example.com", Path: "/" + id + "/", Eligible: m.eligible[id]})
	}
	return out, nil
}

func (m *mockCatalog) IsEligible(_ context.Context, id string) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	eligible, ok := m.eligible[id]
	if !ok {
		return false, domain.ErrTenantNotFound
	}
	return eligible, nil
}

// --- Engine ---

type recordingEngine struct {
	id       string
	err      error
	requests []domain.DuplicationRequest
	onCall   func(transcript *slog.Logger)
}

func (e *recordingEngine) Duplicate(_ context.Context, req domain.DuplicationRequest, transcript *slog.Logger) (string, error) {
	e.requests = append(e.requests, req)
	if e.onCall != nil {
		e.onCall(transcript)
	}
	if e.err != nil {
		return "", e.err
	}
	return e.id, nil
}

// --- Transcripts ---

type memTranscript struct {
	buf    bytes.Buffer
	logger *slog.Logger
	url    string
	closed int
}

func (t *memTranscript) Logger() *slog.Logger { return t.logger }
func (t *memTranscript) URL() string          { return t.url }
func (t *memTranscript) Close() error {
	t.closed++
	return nil
}

type memTranscripts struct {
	opened []*memTranscript
	paths  []string
	err    error
}

func (m *memTranscripts) Open(_ context.Context, path string) (domain.Transcript, error) {
	if m.err != nil {
		return nil, m.err
	}
	t := &memTranscript{url: "https://logs.example.com" + path}
	t.logger = slog.New(slog.NewTextHandler(&t.buf, nil))
	m.opened = append(m.opened, t)
	m.paths = append(m.paths, path)
	return t, nil
}

// --- Repositories ---

type mockRepo struct {
	tenants map[string]domain.Tenant
	err     error
}

func newMockRepo(tenants ...domain.Tenant) *mockRepo {
	m := &mockRepo{tenants: make(map[string]domain.Tenant)}
	for _, t := range tenants {
		m.tenants[t.ID] = t
	}
	return m
}

func (m *mockRepo) Create(_ context.Context, t domain.Tenant) error {
	m.tenants[t.ID] = t
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (domain.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *mockRepo) GetByAddress(_ context.Context, d, p string) (domain.Tenant, error) {
	for _, t := range m.tenants {
		if t.Domain == d && t.Path == p {
			return t, nil
		}
	}
	return domain.Tenant{}, domain.ErrTenantNotFound
}

func (m *mockRepo) List(_ context.Context, _ domain.ListFilter) ([]domain.Tenant, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]string, 0, len(m.tenants))
	for id := range m.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]domain.Tenant, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.tenants[id])
	}
	return out, nil
}

func (m *mockRepo) Update(_ context.Context, t domain.Tenant) error {
	if _, ok := m.tenants[t.ID]; !ok {
		return domain.ErrTenantNotFound
	}
	m.tenants[t.ID] = t
	return nil
}

type mockMembers struct {
	members []domain.Member
}

func (m *mockMembers) AddMember(_ context.Context, member domain.Member) error {
	for i, existing := range m.members {
		if existing.TenantID == member.TenantID && existing.Email == member.Email {
			m.members[i] = member
			return nil
		}
	}
	m.members = append(m.members, member)
	return nil
}

func (m *mockMembers) ListMembers(_ context.Context, tenantID string) ([]domain.Member, error) {
	var out []domain.Member
	for _, member := range m.members {
		if member.TenantID == tenantID {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *mockMembers) CopyMembers(ctx context.Context, from, to string) (int, error) {
	src, _ := m.ListMembers(ctx, from)
	for _, member := range src {
		member.TenantID = to
		_ = m.AddMember(ctx, member)
	}
	return len(src), nil
}

// --- Assets ---

type mockAssets struct {
	copies [][2]string
	err    error
}

func (m *mockAssets) Copy(_ context.Context, from, to string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.copies = append(m.copies, [2]string{from, to})
	return 3, nil
}

// --- Publisher ---

type publishedEvent struct {
	event  domain.Event
	tenant domain.Tenant
}

type mockPublisher struct {
	events []publishedEvent
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event, t domain.Tenant) error {
	m.events = append(m.events, publishedEvent{event: e, tenant: t})
	return nil
}

// --- Transition validator ---

type tableValidator struct{}

func (tableValidator) Apply(_ context.Context, current domain.Status, event domain.Event) (domain.Status, error) {
	for _, t := range domain.Transitions {
		if t.Event == event && t.Src == current {
			return t.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: event, Current: current}
}

var errBoom = errors.New("boom")
