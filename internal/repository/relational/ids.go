package relational

import (
	"errors"
	"strings"

	"github.com/dom/chat-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// normalizeID returns the canonical text form of a UUID id.
func normalizeID(id string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func normalizePair(a, b string) (string, string, bool) {
	na, okA := normalizeID(a)
	nb, okB := normalizeID(b)
	return na, nb, okA && okB
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// isDuplicateKey also matches the raw sqlite message for drivers without error translation.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
