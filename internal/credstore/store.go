package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"quotereel/manager-go/internal/utils"
)

// ErrCorruptStore means the token file exists but is not valid JSON. Callers
// should treat this as "no credentials available" and force re-auth.
var ErrCorruptStore = errors.New("credstore: token file is not valid JSON")

// Store owns the on-disk token file: a JSON object keyed by account email.
// It is the only component that writes the file. Loads and saves are
// wholesale; there is no per-key locking (single process, sequential runs).
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads every stored bundle. A missing file yields an empty map.
func (s *Store) Load() (map[string]Bundle, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Bundle{}, nil
		}
		return nil, fmt.Errorf("credstore: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return map[string]Bundle{}, nil
	}

	bundles := map[string]Bundle{}
	if err := json.Unmarshal(data, &bundles); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptStore, s.path)
	}
	return bundles, nil
}

// Save rewrites the whole token file. The write goes through a temp file and
// rename so a reader never observes a partial file.
func (s *Store) Save(bundles map[string]Bundle) error {
	utils.Debug("credstore save", "path", s.path, "accounts", len(bundles))
	if err := utils.EnsureDir(filepath.Dir(s.path)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(bundles, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: marshal: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("credstore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("credstore: rename %s: %w", s.path, err)
	}
	return nil
}

// Put loads, replaces one account's bundle and saves. Last write wins.
func (s *Store) Put(email string, bundle Bundle) error {
	bundles, err := s.Load()
	if err != nil && !errors.Is(err, ErrCorruptStore) {
		return err
	}
	if bundles == nil {
		bundles = map[string]Bundle{}
	}
	bundles[email] = bundle
	return s.Save(bundles)
}

// Accounts returns the stored account emails in stable order.
func (s *Store) Accounts() ([]string, error) {
	bundles, err := s.Load()
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(bundles))
	for email := range bundles {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails, nil
}
