package repository

import (
	"context"
	"strconv"
	"sync"

	json "github.com/goccy/go-json"

	sdk "github.com/segmentio/kafka-go"
	domainrepos "github.com/whiteelite/registry/internal/domain/repositories"
	mapper "github.com/whiteelite/registry/internal/infrastructure/messaging/kafka/repositories/mapper"
)

// messageWriter is the part of *sdk.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...sdk.Message) error
}

// StartProducer writes every event from bucket until ctx is cancelled or
// bucket is closed. Failures are reported on errors, which is closed when
// the producer returns.
func StartProducer(
	ctx context.Context,
	wg *sync.WaitGroup,
	writer messageWriter,
	bucket <-chan domainrepos.ChangeEvent,
	errors chan<- error,
) {
	defer wg.Done()
	defer close(errors)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-bucket:
			if !ok {
				return
			}

			model, err := mapper.ToMessage(event)
			if err != nil {
				report(ctx, errors, err)
				continue
			}

			serialized, err := json.Marshal(model)
			if err != nil {
				report(ctx, errors, err)
				continue
			}

			err = writer.WriteMessages(ctx, sdk.Message{
				Key:   MessageKey(model.EntityID),
				Value: serialized,
			})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				report(ctx, errors, err)
				continue
			}
		}
	}
}

// MessageKey keys messages by entity id so that every change of one entity
// lands on the same partition, in order.
func MessageKey(entityID uint64) []byte {
	return []byte(strconv.FormatUint(entityID, 10))
}

// report delivers err unless ctx is done first.
func report(ctx context.Context, errors chan<- error, err error) {
	select {
	case errors <- err:
	case <-ctx.Done():
	}
}
