// Package receipt persists and loads the installation receipt (§3 §6):
// the serialized Plan at /nix/receipt.json plus a copy of the running
// binary at /nix/nix-installer. Writes are atomic (write-to-temp +
// rename) and strictly serialized behind one mutex, matching §4.4's
// "receipt persistence is strictly serialized behind a process-local
// mutex" invariant.
package receipt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/nix-community/nix-installer/internal/plan"
)

type Store struct {
	path       string
	binaryPath string
	mu         sync.Mutex
}

func NewStore(path, binaryPath string) *Store {
	return &Store{path: path, binaryPath: binaryPath}
}

// Save atomically writes p to the receipt path as canonical,
// sorted-key, newline-terminated JSON (§6). encoding/json sorts map keys
// but writes struct fields in declaration order, so the encoded plan is
// decoded into generic maps and encoded again to sort every object's keys.
func (s *Store) Save(p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}

	var canonical any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&canonical); err != nil {
		return fmt.Errorf("failed to canonicalize receipt: %w", err)
	}

	data, err = json.MarshalIndent(canonical, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".receipt-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp receipt file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp receipt file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp receipt file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp receipt file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp receipt file into place: %w", err)
	}

	return s.saveBinaryCopy()
}

func (s *Store) saveBinaryCopy() error {
	if s.binaryPath == "" {
		return nil
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve running executable: %w", err)
	}

	src, err := os.Open(self)
	if err != nil {
		return fmt.Errorf("failed to open running executable: %w", err)
	}
	defer src.Close()

	dir := filepath.Dir(s.binaryPath)
	tmp, err := os.CreateTemp(dir, ".nix-installer-*")
	if err != nil {
		return fmt.Errorf("failed to create temp binary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy running executable: %w", err)
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp binary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp binary file: %w", err)
	}

	if err := os.Rename(tmpPath, s.binaryPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp binary file into place: %w", err)
	}

	return nil
}

// Load reads and deserializes the receipt at s.path, migrating it first
// if it carries an older schema version (§9).
func (s *Store) Load() (*plan.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}

	data, err = MigrateIfNeeded(data)
	if err != nil {
		return nil, err
	}

	var p plan.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipt: %w", err)
	}

	return &p, nil
}

// Exists reports whether a receipt is present at s.path.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
