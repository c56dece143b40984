package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/nide-gg/mapsync/internal/domain"
	"github.com/nide-gg/mapsync/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

type stateChange struct {
	previous State
	current  State
}

// mockEvents records everything the controller and pipeline emit.
type mockEvents struct {
	mu       sync.Mutex
	states   []stateChange
	lines    []string
	progress [][2]int
	items    []ItemResult
	sums     []domain.Summary

	// onItem runs after an item is recorded, outside the lock.
	onItem func(ItemResult)
}

func (m *mockEvents) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, stateChange{previous, current})
}

func (m *mockEvents) OnLog(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
}

func (m *mockEvents) OnProgress(current, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, [2]int{current, total})
}

func (m *mockEvents) OnItem(result ItemResult) {
	m.mu.Lock()
	m.items = append(m.items, result)
	hook := m.onItem
	m.mu.Unlock()
	if hook != nil {
		hook(result)
	}
}

func (m *mockEvents) OnSummary(summary domain.Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sums = append(m.sums, summary)
}

func (m *mockEvents) Summaries() []domain.Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Summary{}, m.sums...)
}

func (m *mockEvents) States() []stateChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChange{}, m.states...)
}

func (m *mockEvents) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.lines...)
}

func (m *mockEvents) Progress() [][2]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][2]int{}, m.progress...)
}

func (m *mockEvents) Items() []ItemResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ItemResult{}, m.items...)
}

func (m *mockEvents) hasLine(line string) bool {
	for _, l := range m.Lines() {
		if l == line {
			return true
		}
	}
	return false
}

// temporaryError lets tests control retry classification.
type temporaryError struct {
	msg  string
	temp bool
}

func (e *temporaryError) Error() string   { return e.msg }
func (e *temporaryError) Temporary() bool { return e.temp }

// mockRemote serves a fixed index and artifact bodies keyed by URL.
type mockRemote struct {
	mu        sync.Mutex
	index     string
	indexErr  error
	artifacts map[string]string
	failures  map[string][]error
	requests  []string

	// beforeOpen runs on every artifact request, outside the lock.
	beforeOpen func(url string)
}

func (m *mockRemote) FetchIndex(ctx context.Context, baseURL string) (string, error) {
	if m.indexErr != nil {
		return "", m.indexErr
	}
	return m.index, nil
}

func (m *mockRemote) OpenArtifact(ctx context.Context, url string) (io.ReadCloser, error) {
	m.mu.Lock()
	m.requests = append(m.requests, url)
	hook := m.beforeOpen
	var err error
	if errs := m.failures[url]; len(errs) > 0 {
		err = errs[0]
		m.failures[url] = errs[1:]
	}
	body, ok := m.artifacts[url]
	m.mu.Unlock()

	if hook != nil {
		hook(url)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &temporaryError{msg: "not found", temp: false}
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (m *mockRemote) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.requests...)
}

// memStore is an in-memory ports.MapStore.
type memStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	removed []string
	partial int
	invErr  error

	// createErr, writeErr and commitErr make every pending file fail at
	// that step.
	createErr error
	writeErr  error
	commitErr error
}

func newMemStore(names ...string) *memStore {
	s := &memStore{files: make(map[string][]byte)}
	for _, n := range names {
		s.files[n] = []byte("existing")
	}
	return s
}

func (s *memStore) Dir() string { return "/mem" }

func (s *memStore) Inventory(ctx context.Context) (domain.Inventory, error) {
	if s.invErr != nil {
		return nil, s.invErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := domain.NewInventory()
	for name := range s.files {
		if id, ok := domain.IdentifierFromMap(name); ok {
			inv.Add(id)
		}
	}
	return inv, nil
}

func (s *memStore) SweepPartials(ctx context.Context) (int, error) {
	n := s.partial
	s.partial = 0
	return n, nil
}

func (s *memStore) Create(name string) (ports.PendingFile, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &memPending{store: s, name: name}, nil
}

func (s *memStore) Open(name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	if !ok {
		return nil, errors.New("no such file: " + name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, name)
	s.removed = append(s.removed, name)
	return nil
}

func (s *memStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for n := range s.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *memStore) File(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

type memPending struct {
	store *memStore
	name  string
	buf   bytes.Buffer
	done  bool
}

func (p *memPending) Write(b []byte) (int, error) {
	if p.store.writeErr != nil {
		return 0, p.store.writeErr
	}
	return p.buf.Write(b)
}

func (p *memPending) Commit() error {
	if p.store.commitErr != nil {
		return p.store.commitErr
	}
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	p.store.files[p.name] = append([]byte(nil), p.buf.Bytes()...)
	p.done = true
	return nil
}

func (p *memPending) Abort() error {
	p.done = true
	return nil
}

// upperExtractor "decompresses" by uppercasing. Input starting with
// "corrupt" fails, mimicking a bad bzip2 stream.
type upperExtractor struct{}

func (upperExtractor) Extract(ctx context.Context, src io.Reader, dst io.Writer) (int64, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return 0, err
	}
	if bytes.HasPrefix(data, []byte("corrupt")) {
		return 0, errors.New("bzip2 data invalid")
	}
	n, err := dst.Write(bytes.ToUpper(data))
	return int64(n), err
}
