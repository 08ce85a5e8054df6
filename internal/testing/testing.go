// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/plsplit/internal/models"
	"github.com/desertthunder/plsplit/internal/services"
	"github.com/desertthunder/plsplit/internal/shared"
)

// Mock catalog method names, as recorded in [Call.Method].
const (
	MethodGetPlaylist          = "GetPlaylist"
	MethodGetNextPage          = "GetNextPage"
	MethodGetAlbumLabel        = "GetAlbumLabel"
	MethodCreatePlaylist       = "CreatePlaylist"
	MethodGetCurrentUserID     = "GetCurrentUserID"
	MethodReplaceItems         = "ReplaceItems"
	MethodRemoveAllOccurrences = "RemoveAllOccurrences"
	MethodAddItems             = "AddItems"
	MethodClearItems           = "ClearItems"
	MethodGetPlaylists         = "GetPlaylists"
)

// Call is one recorded catalog request.
type Call struct {
	Method     string
	PlaylistID string
	TrackIDs   []string
	Arg        string
}

type failure struct {
	nth int
	err error
}

// MockCatalog is an in-memory test double for [services.Catalog].
//
// Sources holds the tracks read by GetPlaylist, Contents the track ids of every playlist written to.
type MockCatalog struct {
	mu        sync.Mutex
	Sources   map[string][]models.Track
	Contents  map[string][]string
	Labels    map[string]string
	Playlists []models.Playlist
	UserID    string
	PageSize  int
	Limit     int
	Calls     []Call
	failures  map[string]failure
	created   int
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Sources:  make(map[string][]models.Track),
		Contents: make(map[string][]string),
		Labels:   make(map[string]string),
		UserID:   "mock-user",
		PageSize: 100,
		Limit:    100,
		failures: make(map[string]failure),
	}
}

// AddSource registers tracks as the contents of playlistID.
func (m *MockCatalog) AddSource(playlistID string, tracks ...models.Track) *MockCatalog {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sources[playlistID] = append(m.Sources[playlistID], tracks...)
	return m
}

// FailOn makes the nth call (1-based) of method return err. nth 0 fails every call.
func (m *MockCatalog) FailOn(method string, nth int, err error) *MockCatalog {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = failure{nth: nth, err: err}
	return m
}

// record appends a call and returns the injected error for it, if any. Callers hold m.mu.
func (m *MockCatalog) record(c Call) error {
	m.Calls = append(m.Calls, c)
	f, ok := m.failures[c.Method]
	if !ok {
		return nil
	}
	if f.nth == 0 || f.nth == m.count(c.Method) {
		return f.err
	}
	return nil
}

func (m *MockCatalog) count(method string) int {
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// CallCount returns how many times method was called.
func (m *MockCatalog) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count(method)
}

// CallsTo returns the recorded calls of method in order.
func (m *MockCatalog) CallsTo(method string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Methods returns the method names of all recorded calls in order.
func (m *MockCatalog) Methods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		out[i] = c.Method
	}
	return out
}

// Playlist returns a copy of the current contents of playlistID.
func (m *MockCatalog) Playlist(playlistID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Contents[playlistID]...)
}

func (m *MockCatalog) page(playlistID string, offset int) (*services.Page, error) {
	tracks, ok := m.Sources[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	end := min(offset+m.PageSize, len(tracks))
	page := &services.Page{Items: append([]models.Track(nil), tracks[offset:end]...), Total: len(tracks)}
	if end < len(tracks) {
		page.Next = fmt.Sprintf("%s@%d", playlistID, end)
	}
	return page, nil
}

func (m *MockCatalog) GetPlaylist(_ context.Context, playlistID string) (*services.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Method: MethodGetPlaylist, PlaylistID: playlistID}); err != nil {
		return nil, err
	}
	return m.page(playlistID, 0)
}

func (m *MockCatalog) GetNextPage(_ context.Context, cursor string) (*services.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Method: MethodGetNextPage, Arg: cursor}); err != nil {
		return nil, err
	}

	playlistID, offsetStr, ok := strings.Cut(cursor, "@")
	if !ok {
		return nil, fmt.Errorf("%w: bad cursor %q", shared.ErrInvalidArgument, cursor)
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad cursor %q", shared.ErrInvalidArgument, cursor)
	}
	return m.page(playlistID, offset)
}

func (m *MockCatalog) GetAlbumLabel(_ context.Context, albumID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Method: MethodGetAlbumLabel, Arg: albumID}); err != nil {
		return "", err
	}
	return m.Labels[albumID], nil
}

func (m *MockCatalog) CreatePlaylist(_ context.Context, ownerID, name string) (*models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Method: MethodCreatePlaylist, Arg: name}); err != nil {
		return nil, err
	}

	m.created++
	id := fmt.Sprintf("created-%d", m.created)
	m.Contents[id] = nil
	return &models.Playlist{ID: id, Name: name, OwnerID: ownerID}, nil
}

func (m *MockCatalog) GetCurrentUserID(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Method: MethodGetCurrentUserID}); err != nil {
		return "", err
	}
	return m.UserID, nil
}

func (m *MockCatalog) write(method, playlistID string, trackIDs []string) error {
	if err := m.record(Call{Method: method, PlaylistID: playlistID, TrackIDs: append([]string(nil), trackIDs...)}); err != nil {
		return err
	}
	if len(trackIDs) > m.Limit {
		return fmt.Errorf("%w: %d tracks exceeds batch limit of %d", shared.ErrInvalidArgument, len(trackIDs), m.Limit)
	}
	return nil
}

func (m *MockCatalog) ReplaceItems(_ context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodReplaceItems, playlistID, trackIDs); err != nil {
		return err
	}
	m.Contents[playlistID] = append([]string(nil), trackIDs...)
	return nil
}

func (m *MockCatalog) RemoveAllOccurrences(_ context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodRemoveAllOccurrences, playlistID, trackIDs); err != nil {
		return err
	}

	remove := make(map[string]struct{}, len(trackIDs))
	for _, id := range trackIDs {
		remove[id] = struct{}{}
	}

	kept := m.Contents[playlistID][:0]
	for _, id := range m.Contents[playlistID] {
		if _, ok := remove[id]; !ok {
			kept = append(kept, id)
		}
	}
	m.Contents[playlistID] = kept
	return nil
}

func (m *MockCatalog) AddItems(_ context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodAddItems, playlistID, trackIDs); err != nil {
		return err
	}
	m.Contents[playlistID] = append(m.Contents[playlistID], trackIDs...)
	return nil
}

// GetPlaylists returns Playlists, the listing of the current user's playlists.
func (m *MockCatalog) GetPlaylists(_ context.Context) ([]models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(Call{Method: MethodGetPlaylists}); err != nil {
		return nil, err
	}
	return append([]models.Playlist(nil), m.Playlists...), nil
}

func (m *MockCatalog) BatchLimit() int {
	return m.Limit
}

// ClearingCatalog is a [MockCatalog] that also implements [services.Clearer].
type ClearingCatalog struct {
	*MockCatalog
}

func NewClearingCatalog() *ClearingCatalog {
	return &ClearingCatalog{MockCatalog: NewMockCatalog()}
}

func (c *ClearingCatalog) ClearItems(_ context.Context, playlistID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.record(Call{Method: MethodClearItems, PlaylistID: playlistID}); err != nil {
		return err
	}
	c.Contents[playlistID] = nil
	return nil
}

var (
	_ services.Catalog = (*MockCatalog)(nil)
	_ services.Clearer = (*ClearingCatalog)(nil)
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
