package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sys/unix"
)

const (
	ledgerFile = "stack.json"
	lockFile   = "stack.lock"
)

// StateDir returns the directory holding the ledger.
// Uses XDG_STATE_HOME or defaults to ~/.local/state/creak.
func StateDir() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "creak"), nil
}

// Store gives lock-guarded access to the ledger file in one directory.
type Store struct {
	dir      string
	path     string
	lockPath string

	clock    clockwork.Clock
	prober   Prober
	signaler Signaler
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for created_at, expiry and pruning.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithProber sets the liveness probe used when pruning.
func WithProber(p Prober) Option {
	return func(s *Store) { s.prober = p }
}

// WithSignaler sets how owners of cleared entries are terminated.
func WithSignaler(sig Signaler) Option {
	return func(s *Store) { s.signaler = sig }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore opens the ledger kept in dir, creating the directory if needed.
func NewStore(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	s := &Store{
		dir:      dir,
		path:     filepath.Join(dir, ledgerFile),
		lockPath: filepath.Join(dir, lockFile),
		clock:    clockwork.NewRealClock(),
		prober:   ProcessProber{},
		signaler: ProcessSignaler{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the state directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the ledger file path.
func (s *Store) Path() string { return s.path }

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger { return s.logger }

// Now returns the store clock as epoch milliseconds.
func (s *Store) Now() uint64 {
	ms := s.clock.Now().UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

// Load reads the ledger from disk. A missing, empty or malformed file yields
// an empty ledger; the next Save replaces it.
func (s *Store) Load() *Ledger {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("ledger unreadable, starting empty", "path", s.path, "error", err)
		}
		return New()
	}
	if len(data) == 0 {
		return New()
	}

	l := New()
	if err := json.Unmarshal(data, l); err != nil {
		s.logger.Debug("ledger corrupted, starting empty", "path", s.path, "error", err)
		return New()
	}
	l.normalize()
	return l
}

// Save writes the ledger atomically via a temp file and rename.
func (s *Store) Save(l *Ledger) error {
	if l.Entries == nil {
		l.Entries = []Entry{}
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Update runs fn against the current ledger while holding the exclusive
// cross-process lock. The ledger is saved when fn reports a change.
func (s *Store) Update(fn func(l *Ledger) (bool, error)) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	l := s.Load()
	changed, err := fn(l)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.Save(l)
}

// lock acquires the advisory lock on stack.lock, blocking until available.
func (s *Store) lock() (func(), error) {
	f, err := os.OpenFile(s.lockPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock %s: %w", s.lockPath, err)
	}

	fd := int(f.Fd())
	for {
		err = unix.Flock(fd, unix.LOCK_EX)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", s.lockPath, err)
	}

	return func() {
		_ = unix.Flock(fd, unix.LOCK_UN)
		f.Close()
	}, nil
}
