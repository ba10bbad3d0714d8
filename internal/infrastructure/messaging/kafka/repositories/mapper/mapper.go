package mapper

import (
	"crypto/sha256"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	domainrepos "github.com/whiteelite/registry/internal/domain/repositories"
	"github.com/whiteelite/registry/internal/infrastructure/messaging/kafka/repositories/models"
)

var ErrHashMismatch = errors.New("message content does not match its hash")

func ToMessage(event domainrepos.ChangeEvent) (*models.Message, error) {
	serialized, err := json.Marshal(event.Entity)
	if err != nil {
		return nil, err
	}

	return &models.Message{
		ID:         uuid.New(),
		Seq:        event.Seq,
		Kind:       string(event.Kind),
		EntityID:   uint64(event.EntityID),
		Content:    string(serialized),
		Hash:       Hash(serialized),
		OccurredAt: event.OccurredAt,
	}, nil
}

// Hash is the base58 encoded SHA-256 digest of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return base58.Encode(sum[:])
}

// DecodeEntity verifies the message hash and decodes its content into T.
func DecodeEntity[T any](message *models.Message) (*T, error) {
	if Hash([]byte(message.Content)) != message.Hash {
		return nil, fmt.Errorf("message %s: %w", message.ID, ErrHashMismatch)
	}

	entity := new(T)
	if err := json.Unmarshal([]byte(message.Content), entity); err != nil {
		return nil, err
	}

	return entity, nil
}
