package repository

import (
	"context"
	"io"
	"sync"

	json "github.com/goccy/go-json"

	sdk "github.com/segmentio/kafka-go"
	models "github.com/whiteelite/registry/internal/infrastructure/messaging/kafka/repositories/models"
)

// messageReader is the part of *sdk.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (sdk.Message, error)
	CommitMessages(ctx context.Context, msgs ...sdk.Message) error
}

// StartConsumer fetches messages, decodes them onto bucket and commits each
// one once it has been handed over. bucket and errors are closed when the
// consumer returns, which happens when ctx is cancelled.
func StartConsumer(
	ctx context.Context,
	wg *sync.WaitGroup,
	reader messageReader,
	bucket chan<- *models.Message,
	errors chan<- error,
) {
	defer wg.Done()
	defer close(errors)
	defer close(bucket)

	for {
		data, err := reader.FetchMessage(ctx)
		if err != nil {
			// io.EOF means the reader was closed.
			if ctx.Err() != nil || err == io.EOF {
				return
			}
			report(ctx, errors, err)
			continue
		}

		model := new(models.Message)
		if err := json.Unmarshal(data.Value, model); err != nil {
			report(ctx, errors, err)
			// Undecodable messages are skipped for good.
			commit(ctx, reader, errors, data)
			continue
		}

		select {
		case bucket <- model:
		case <-ctx.Done():
			return
		}
		commit(ctx, reader, errors, data)
	}
}

func commit(ctx context.Context, reader messageReader, errors chan<- error, data sdk.Message) {
	if err := reader.CommitMessages(ctx, data); err != nil && ctx.Err() == nil {
		report(ctx, errors, err)
	}
}
