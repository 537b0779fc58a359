// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for dataorch.
// This module manages all interactions with the OS keychain/credential store,
// providing a unified interface for storing and retrieving the completion service
// API key and the database password when they are not supplied by the environment.
//
// The package supports macOS Keychain, Windows Credential Manager, the freedesktop
// Secret Service and pass, with thread-safe operations and proper error handling.
package keychain

import (
	"errors"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "dataorch"

// Keys used for storing secrets in the OS keychain.
const (
	keyAPIKeyPrefix = "api_key_"
	KeyDBPassword   = "db_password"
)

// ErrNotFound is returned when a secret is absent or empty.
var ErrNotFound = errors.New("secret not found in keychain")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewManagerWithRing wraps an already opened keyring.
// Tests use it with keyring.NewArrayKeyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}

	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only.
// There is deliberately no encrypted-file fallback.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:     ServiceName,
		AllowedBackends: allowedBackends,
		PassPrefix:      ServiceName,
	}
	if runtime.GOOS == "windows" {
		cfg.WinCredPrefix = ServiceName
	}

	return keyring.Open(cfg)
}

// APIKeyName returns the keychain key holding the API key of a provider.
func APIKeyName(provider string) string {
	return keyAPIKeyPrefix + strings.ToLower(strings.TrimSpace(provider))
}

// SaveAPIKey stores the completion service API key for a provider.
// This method is thread-safe.
func (m *Manager) SaveAPIKey(provider, apiKey string) error {
	return m.set(APIKeyName(provider), apiKey)
}

// LoadAPIKey retrieves the completion service API key for a provider.
// This method is thread-safe.
func (m *Manager) LoadAPIKey(provider string) (string, error) {
	return m.get(APIKeyName(provider))
}

// SaveDBPassword stores the database password in the keychain.
// This method is thread-safe.
func (m *Manager) SaveDBPassword(password string) error {
	return m.set(KeyDBPassword, password)
}

// LoadDBPassword retrieves the database password from the keychain.
// This method is thread-safe.
func (m *Manager) LoadDBPassword() (string, error) {
	return m.get(KeyDBPassword)
}

// ClearAll removes every dataorch secret from the keychain.
// This method is thread-safe and should be used with caution.
func (m *Manager) ClearAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys, err := m.ring.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if k == KeyDBPassword || strings.HasPrefix(k, keyAPIKeyPrefix) {
			_ = m.ring.Remove(k)
		}
	}
	return nil
}

func (m *Manager) set(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("refusing to store an empty secret")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value)})
}

func (m *Manager) get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}
