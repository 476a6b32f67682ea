// Package session keeps the API tokens issued at login in a fiber storage.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// ErrNotFound is returned for unknown or expired tokens.
var ErrNotFound = errors.New("session not found")

// Store is the global session store instance.
var Store *session.Store

// Data represents the session data structure.
type Data struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
}

// Write stores the session data under token for exp.
func (s *Data) Write(token string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(token, out, exp)
}

// Read loads the session data of token.
func (s *Data) Read(token string) error {
	if token == "" {
		return ErrNotFound
	}

	byteData, err := Store.Storage.Get(token)
	if err != nil {
		return err
	}

	if len(byteData) == 0 {
		return ErrNotFound
	}

	return json.Unmarshal(byteData, s)
}

// Delete revokes token.
func Delete(token string) error {
	return Store.Storage.Delete(token)
}

// Init initializes the session store with the provided storage backend.
// A nil storage keeps the sessions in memory.
func Init(storage fiber.Storage) {
	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateToken generates a new secure random token.
func GenerateToken() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
