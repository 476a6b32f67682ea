package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewUUID returns a random uuid in hex form without dashes.
func NewUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
