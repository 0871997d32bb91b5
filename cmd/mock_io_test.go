package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/eykd/blockmark/internal/block"
	"github.com/eykd/blockmark/internal/editor"
	"github.com/eykd/blockmark/internal/store"
)

// mockFileIO is an in-memory test double for ReadIO, WriteIO and ApplyIO.
type mockFileIO struct {
	files    map[string][]byte
	writes   map[string][]byte
	writeErr error

	cfg        editor.Config
	cfgErr     error
	configPath string
}

func newMockFileIO(files map[string]string) *mockFileIO {
	m := &mockFileIO{
		files:  make(map[string][]byte),
		writes: make(map[string][]byte),
		cfg:    editor.DefaultConfig(),
	}
	for k, v := range files {
		m.files[k] = []byte(v)
	}
	return m
}

func (m *mockFileIO) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return data, nil
}

func (m *mockFileIO) WriteFileAtomic(_ context.Context, path string, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes[path] = append([]byte(nil), data...)
	return nil
}

func (m *mockFileIO) LoadConfig(path string) (editor.Config, error) {
	m.configPath = path
	return m.cfg, m.cfgErr
}

// mockStore is an in-memory DocumentStore.
type mockStore struct {
	docs      map[string][]block.Block
	revisions map[string]int64
	closed    bool
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[string][]block.Block), revisions: make(map[string]int64)}
}

func (s *mockStore) Save(_ context.Context, name string, blocks []block.Block) (int64, error) {
	s.docs[name] = block.CloneAll(blocks)
	s.revisions[name]++
	return s.revisions[name], nil
}

func (s *mockStore) Load(_ context.Context, name string) ([]block.Block, error) {
	blocks, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	return block.CloneAll(blocks), nil
}

func (s *mockStore) List(_ context.Context) ([]store.DocumentInfo, error) {
	var infos []store.DocumentInfo
	for name, blocks := range s.docs {
		infos = append(infos, store.DocumentInfo{Name: name, Revision: s.revisions[name], Blocks: len(blocks)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *mockStore) Delete(_ context.Context, name string) error {
	if _, ok := s.docs[name]; !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	delete(s.docs, name)
	return nil
}

func (s *mockStore) Close() error {
	s.closed = true
	return nil
}

// mockStoreIO serves one shared mockStore.
type mockStoreIO struct {
	*mockFileIO
	store   *mockStore
	dbPath  string
	openErr error
}

func (m *mockStoreIO) OpenStore(_ context.Context, path string) (DocumentStore, error) {
	m.dbPath = path
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.store.closed = false
	return m.store, nil
}

// mockWatchIO replays file contents as a sequence of changes.
type mockWatchIO struct {
	*mockFileIO
	changes []string
}

func (m *mockWatchIO) Watch(_ context.Context, path string, onChange func()) error {
	for _, c := range m.changes {
		m.files[path] = []byte(c)
		onChange()
	}
	return nil
}
