package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/afero"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/logging"
	"github.com/mayankbohra/remote-ticktick-mcp/internal/ticktick"
)

// AppName names the cache directory.
const AppName = "remote-ticktick-mcp"

const fileName = "tokens.json"

// Entry is the on-disk form of a cached token pair.
type Entry struct {
	// Seed is the fingerprint of the configured access token the pair
	// descends from.
	Seed         string    `json:"seed"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store reads and writes the token cache file.
type Store struct {
	fs   afero.Fs
	path string
	now  func() time.Time
}

// New returns a store for the file at path on fs.
func New(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path, now: time.Now}
}

// NewDefault returns a store for DefaultPath on the OS filesystem.
func NewDefault() *Store {
	return New(afero.NewOsFs(), DefaultPath())
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// DefaultPath returns the cache file location for the current user.
func DefaultPath() string {
	return filepath.Join(userCacheDir(), AppName, fileName)
}

// Load returns the cached pair descending from seedAccessToken. ok is false
// when there is no cache file or it belongs to a different seed.
func (s *Store) Load(seedAccessToken string) (tok ticktick.Token, ok bool, err error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ticktick.Token{}, false, nil
		}
		return ticktick.Token{}, false, fmt.Errorf("failed to read token cache: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return ticktick.Token{}, false, fmt.Errorf("failed to parse token cache %s: %w", s.path, err)
	}
	if e.Seed != logging.Fingerprint(seedAccessToken) || e.AccessToken == "" {
		return ticktick.Token{}, false, nil
	}
	return ticktick.Token{AccessToken: e.AccessToken, RefreshToken: e.RefreshToken}, true, nil
}

// Save writes tok as descending from seedAccessToken. The file is replaced
// atomically.
func (s *Store) Save(seedAccessToken string, tok ticktick.Token) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(Entry{
		Seed:         logging.Fingerprint(seedAccessToken),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		UpdatedAt:    s.now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token cache: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// Clear removes the cache file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token cache: %w", err)
	}
	return nil
}

// Observer returns a token observer that saves every refreshed pair.
// Write failures are logged; the refreshed token stays usable in memory.
func (s *Store) Observer(seedAccessToken string, logger logging.Logger) ticktick.TokenObserver {
	return func(tok ticktick.Token) {
		if err := s.Save(seedAccessToken, tok); err != nil {
			logger.Warn("Failed to save refreshed token", "path", s.path, logging.Err(err))
			return
		}
		logger.Debug("Saved refreshed token", "path", s.path)
	}
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
