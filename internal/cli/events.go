package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/whiteelite/registry/internal/ctxlog"
	domainrepos "github.com/whiteelite/registry/internal/domain/repositories"
	"github.com/whiteelite/registry/internal/infrastructure/messaging/kafka/repositories/mapper"
	"github.com/whiteelite/registry/internal/infrastructure/messaging/kafka/repositories/models"
	"github.com/whiteelite/registry/internal/infrastructure/messaging/kafka/repositories/repository"
)

func (a *app) newEventsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail registry change events from Kafka",
		Long: `Consume change events published by the tasks and bank commands and print
them as they arrive. Stops on interrupt or after --limit events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.Kafka.Enabled() {
				return errors.New("no kafka brokers configured (set kafka.brokers or REGISTRY_KAFKA_BROKERS)")
			}

			sub, err := repository.NewSubscriber(repository.KafkaMessageQueueParams{
				Brokers:          a.cfg.Kafka.Brokers,
				Topic:            a.cfg.Kafka.Topic,
				GroupID:          a.cfg.Kafka.GroupID,
				ToConsumeBufSize: a.cfg.Kafka.BufferSize,
			})
			if err != nil {
				return fmt.Errorf("creating subscriber: %w", err)
			}
			defer sub.Close()

			return a.tailEvents(cmd, sub, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many events (0 means no limit)")
	return cmd
}

// eventLine is the printed form of one change event.
type eventLine struct {
	ID         string         `json:"id"`
	Seq        uint64         `json:"seq"`
	Kind       string         `json:"kind"`
	EntityID   uint64         `json:"entity_id"`
	Entity     map[string]any `json:"entity"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func (a *app) tailEvents(cmd *cobra.Command, sub domainrepos.MessageQueueConsumer[*models.Message], limit int) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := ctxlog.FromContext(ctx)

	messages, errs := sub.ToConsumeBuffered(), sub.Errors()
	for seen := 0; limit == 0 || seen < limit; {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("consuming change event", "error", err)
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := a.printEvent(cmd, msg); err != nil {
				logger.Warn("skipping change event", "id", msg.ID, "error", err)
				continue
			}
			seen++
		}
	}
	return nil
}

func (a *app) printEvent(cmd *cobra.Command, msg *models.Message) error {
	entity, err := mapper.DecodeEntity[map[string]any](msg)
	if err != nil {
		return err
	}
	line := eventLine{
		ID:         msg.ID.String(),
		Seq:        msg.Seq,
		Kind:       msg.Kind,
		EntityID:   msg.EntityID,
		Entity:     *entity,
		OccurredAt: msg.OccurredAt,
	}

	if a.cfg.Output == "json" {
		return writeJSON(cmd.OutOrStdout(), line)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s  %-7s  #%d  %s\n",
		line.OccurredAt.Format(time.RFC3339), line.Kind, line.EntityID, msg.Content)
	return err
}
