package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	sdk "github.com/segmentio/kafka-go"
	domainrepos "github.com/whiteelite/registry/internal/domain/repositories"
	models "github.com/whiteelite/registry/internal/infrastructure/messaging/kafka/repositories/models"
)

const (
	DefaultBufSize      = 1024
	DefaultFlushTimeout = 5 * time.Second
)

// KafkaMessageQueueParams configures the publisher and subscriber.
type KafkaMessageQueueParams struct {
	// Required
	Brokers []string
	Topic   string

	// Optional
	GroupID          string
	ToProduceBufSize int
	ToConsumeBufSize int
	// FlushTimeout bounds how long Publisher.Close waits for queued events.
	FlushTimeout time.Duration
}

func (p KafkaMessageQueueParams) withDefaults() KafkaMessageQueueParams {
	if p.ToProduceBufSize <= 0 {
		p.ToProduceBufSize = DefaultBufSize
	}
	if p.ToConsumeBufSize <= 0 {
		p.ToConsumeBufSize = DefaultBufSize
	}
	if p.FlushTimeout <= 0 {
		p.FlushTimeout = DefaultFlushTimeout
	}
	return p
}

// Helper to ensure required params are set.
func ValidateKafkaParams(p KafkaMessageQueueParams) error {
	if len(p.Brokers) == 0 {
		return errors.New("kafka brokers are required")
	}
	if p.Topic == "" {
		return errors.New("kafka topic is required")
	}
	return nil
}

// Publisher ships registry change events to a Kafka topic. It is a
// repositories.ChangeSink, so it can be handed straight to a registry.
type Publisher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
	logger *slog.Logger

	writer       messageWriter
	closer       func() error
	toProduce    chan domainrepos.ChangeEvent
	errors       chan error
	flushTimeout time.Duration

	// guards toProduce against sends after Close
	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a Publisher writing to the configured topic.
func NewPublisher(params KafkaMessageQueueParams, logger *slog.Logger) (*Publisher, error) {
	if err := ValidateKafkaParams(params); err != nil {
		return nil, err
	}
	params = params.withDefaults()

	writer := &sdk.Writer{
		Addr:         sdk.TCP(params.Brokers...),
		Topic:        params.Topic,
		RequiredAcks: sdk.RequireAll,
		// Messages are keyed by entity id; hashing keeps each entity on
		// one partition.
		Balancer:     &sdk.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: params.FlushTimeout,
	}
	return newPublisher(writer, writer.Close, params.ToProduceBufSize, params.FlushTimeout, logger), nil
}

func newPublisher(writer messageWriter, closer func() error, bufSize int, flushTimeout time.Duration, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())

	p := &Publisher{
		ctx:       ctx,
		cancel:    cancel,
		wg:        &sync.WaitGroup{},
		logger:    logger,
		writer:    writer,
		closer:    closer,
		toProduce: make(chan domainrepos.ChangeEvent, bufSize),
		errors:    make(chan error, 16),

		flushTimeout: flushTimeout,
	}
	p.startWorkers()
	return p
}

func (p *Publisher) startWorkers() {
	p.wg.Add(1)
	go StartProducer(p.ctx, p.wg, p.writer, p.toProduce, p.errors)

	// Drain producer errors into the log.
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for err := range p.errors {
			p.logger.Error("publishing change event failed", "error", err)
		}
	}()
}

// Emit queues event for publishing. When the buffer is full the event is
// dropped and logged rather than blocking the registry.
func (p *Publisher) Emit(event domainrepos.ChangeEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.toProduce <- event:
	default:
		p.logger.Warn("change event dropped, publish buffer full", "kind", event.Kind, "id", event.EntityID)
	}
}

// Close flushes queued events, stops the workers and closes the writer.
// Events still queued when the flush timeout expires are dropped.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	// Closing the bucket lets the producer finish what is queued.
	close(p.toProduce)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(p.flushTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		p.logger.Warn("flush timed out, dropping queued change events",
			"queued", len(p.toProduce), "timeout", p.flushTimeout)
		p.cancel()
		<-done
	}
	p.cancel()

	if p.closer != nil {
		if err := p.closer(); err != nil {
			p.logger.Error("closing kafka writer", "error", err)
		}
	}
}

// Subscriber consumes change-event messages from a Kafka topic.
type Subscriber struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup

	reader    messageReader
	closer    func() error
	toConsume chan *models.Message
	errors    chan error

	closeOnce sync.Once
}

// NewSubscriber creates a Subscriber reading the configured topic within
// the consumer group params.GroupID.
func NewSubscriber(params KafkaMessageQueueParams) (*Subscriber, error) {
	if err := ValidateKafkaParams(params); err != nil {
		return nil, err
	}
	params = params.withDefaults()

	reader := sdk.NewReader(sdk.ReaderConfig{
		Brokers: params.Brokers,
		Topic:   params.Topic,
		GroupID: params.GroupID,
	})
	return newSubscriber(reader, reader.Close, params.ToConsumeBufSize), nil
}

func newSubscriber(reader messageReader, closer func() error, bufSize int) *Subscriber {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Subscriber{
		ctx:       ctx,
		cancel:    cancel,
		wg:        &sync.WaitGroup{},
		reader:    reader,
		closer:    closer,
		toConsume: make(chan *models.Message, bufSize),
		errors:    make(chan error, 16),
	}

	s.wg.Add(1)
	go StartConsumer(s.ctx, s.wg, s.reader, s.toConsume, s.errors)
	return s
}

// ToConsumeBuffered exposes the consumed messages. It is closed by Close.
func (s *Subscriber) ToConsumeBuffered() <-chan *models.Message {
	return s.toConsume
}

// Errors exposes consumer failures. It is closed when the consumer stops.
func (s *Subscriber) Errors() <-chan error {
	return s.errors
}

func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		if s.closer != nil {
			_ = s.closer()
		}
		s.wg.Wait()
	})
}

// Compile-time assertions to ensure interface conformance
var (
	_ domainrepos.ChangeSink                            = (*Publisher)(nil)
	_ domainrepos.MessageQueueConsumer[*models.Message] = (*Subscriber)(nil)
)
