// Package secrets stores PDF passwords in the system keyring.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/99designs/keyring"

	"github.com/salmonumbrella/pdfmark/internal/config"
)

const (
	passwordKeyPrefix = "password:"

	keyringBackendEnv  = "PDFMARK_KEYRING_BACKEND"
	keyringPasswordEnv = "PDFMARK_KEYRING_PASSWORD"

	keyringOpenTimeout = 5 * time.Second
)

var (
	// ErrNotFound is returned when no password is stored for a name.
	ErrNotFound = errors.New("no stored password")

	errKeyringTimeout = errors.New("timed out opening keyring")

	keyringOpenFunc = keyring.Open
)

// Store holds passwords keyed by document name.
type Store interface {
	Get(name string) (string, error)
	Set(name, password string) error
	Delete(name string) error
	Keys() ([]string, error)
}

// KeyringBackendInfo describes the selected backend and where the choice
// came from.
type KeyringBackendInfo struct {
	Value  string // auto, keychain, file
	Source string // env, config, default
}

// ResolveBackend picks the keyring backend: environment first, then the
// configured value, then auto.
func ResolveBackend(configured string) KeyringBackendInfo {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(keyringBackendEnv))); v != "" {
		return KeyringBackendInfo{Value: v, Source: "env"}
	}
	if v := strings.ToLower(strings.TrimSpace(configured)); v != "" {
		return KeyringBackendInfo{Value: v, Source: "config"}
	}
	return KeyringBackendInfo{Value: "auto", Source: "default"}
}

// KeyringStore is a Store backed by 99designs/keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// Open opens the store with the given backend.
func Open(info KeyringBackendInfo) (*KeyringStore, error) {
	cfg, err := keyringConfig(info)
	if err != nil {
		return nil, err
	}

	dbusAddr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")
	var ring keyring.Keyring
	if shouldUseKeyringTimeout(runtime.GOOS, info, dbusAddr) {
		ring, err = openKeyringWithTimeout(cfg, keyringOpenTimeout)
	} else {
		ring, err = keyringOpenFunc(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

// ValidateBackend reports whether value names a known keyring backend.
func ValidateBackend(value string) error {
	switch value {
	case "", "auto", "keychain", "file":
		return nil
	}
	return fmt.Errorf("invalid keyring backend %q (expected auto|keychain|file)", value)
}

func keyringConfig(info KeyringBackendInfo) (keyring.Config, error) {
	cfg := keyring.Config{
		ServiceName:              config.AppName,
		KeychainTrustApplication: true,
	}

	switch info.Value {
	case "", "auto":
		if shouldForceFileBackend(runtime.GOOS, info, os.Getenv("DBUS_SESSION_BUS_ADDRESS")) {
			cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		}
	case "keychain":
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
		}
	case "file":
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	default:
		return keyring.Config{}, ValidateBackend(info.Value)
	}

	if len(cfg.AllowedBackends) == 1 && cfg.AllowedBackends[0] == keyring.FileBackend {
		dir, err := config.EnsureKeyringDir()
		if err != nil {
			return keyring.Config{}, err
		}
		cfg.FileDir = dir
		if pw := os.Getenv(keyringPasswordEnv); pw != "" {
			cfg.FilePasswordFunc = keyring.FixedStringPrompt(pw)
		}
	}
	return cfg, nil
}

// shouldForceFileBackend reports whether auto mode must fall back to the
// file backend. Linux without a D-Bus session has no secret service.
func shouldForceFileBackend(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr == ""
}

// shouldUseKeyringTimeout reports whether opening the keyring may hang on a
// secret service that never answers.
func shouldUseKeyringTimeout(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr != ""
}

func openKeyringWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	type result struct {
		ring keyring.Keyring
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		ring, err := keyringOpenFunc(cfg)
		ch <- result{ring, err}
	}()

	select {
	case res := <-ch:
		return res.ring, res.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s; set %s=file to use the file backend", errKeyringTimeout, timeout, keyringBackendEnv)
	}
}

// Get returns the stored password for name.
func (s *KeyringStore) Get(name string) (string, error) {
	item, err := s.ring.Get(passwordKeyPrefix + name)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", fmt.Errorf("%w for %s", ErrNotFound, name)
		}
		return "", err
	}
	return string(item.Data), nil
}

// Set stores password for name.
func (s *KeyringStore) Set(name, password string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("empty document name")
	}
	return s.ring.Set(keyring.Item{
		Key:   passwordKeyPrefix + name,
		Data:  []byte(password),
		Label: config.AppName + " password for " + name,
	})
}

// Delete removes the stored password for name.
func (s *KeyringStore) Delete(name string) error {
	if err := s.ring.Remove(passwordKeyPrefix + name); err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("%w for %s", ErrNotFound, name)
		}
		return err
	}
	return nil
}

// Keys returns the document names with a stored password, sorted.
func (s *KeyringStore) Keys() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, k := range keys {
		if name, ok := strings.CutPrefix(k, passwordKeyPrefix); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
