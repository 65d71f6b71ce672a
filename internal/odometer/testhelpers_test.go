package odometer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	internaldb "github.com/hilodev/csuodo/internal/db"
)

// mustOpenDB opens a temp file SQLite database with the full schema applied.
func mustOpenDB(tb testing.TB) *sql.DB {
	tb.Helper()
	dbPath := filepath.Join(tb.TempDir(), "test.db")
	db, err := internaldb.Open(dbPath)
	if err != nil {
		tb.Fatalf("open test DB: %v", err)
	}
	if err := internaldb.RunMigrations(db); err != nil {
		db.Close()
		tb.Fatalf("run migrations: %v", err)
	}
	tb.Cleanup(func() { db.Close() })
	return db
}

// memStore is an in-memory Store for runner tests.
type memStore struct {
	mu sync.Mutex
	m  map[string]FileResult
}

func newMemStore() *memStore {
	return &memStore{m: make(map[string]FileResult)}
}

func (s *memStore) Get(_ context.Context, dir string) (*FileResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.m[dir]
	if !ok {
		return nil, false, nil
	}
	return &res, true, nil
}

func (s *memStore) Put(_ context.Context, dir string, res *FileResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[dir] = *res
	return nil
}

func (s *memStore) Delete(_ context.Context, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, dir)
	return nil
}

// logLine formats one CSU record line the way syslog writes them: month
// name, space-padded day, time, then the record payload whose third
// comma-separated field is the bar position.
func logLine(month string, day int, clock string, bar int, pos float64) string {
	return fmt.Sprintf("%s %2d %s mosfireserver csud: Record=<%02d,1,%.2f,0,OK>",
		month, day, clock, bar, pos)
}

// writeLog writes a CSU.log file with the given lines into dir (created
// under root) and returns its path.
func writeLog(tb testing.TB, root, dir string, lines []string) string {
	tb.Helper()
	d := filepath.Join(root, dir)
	if err := os.MkdirAll(d, 0o755); err != nil {
		tb.Fatalf("mkdir %q: %v", d, err)
	}
	p := filepath.Join(d, "CSU.log")
	if err := os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		tb.Fatalf("write %q: %v", p, err)
	}
	return p
}
