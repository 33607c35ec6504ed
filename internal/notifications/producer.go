package notifications

import (
	"context"
	"fmt"
	"time"

	"buslane/pkg/logger"

	"github.com/IBM/sarama"
)

// Producer publishes reservation and compensation events
type Producer interface {
	PublishReservation(ctx context.Context, event ReservationEvent) error
	PublishCompensation(ctx context.Context, event CompensationEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka event producer
type KafkaProducerConfig struct {
	Brokers           []string
	ReservationTopic  string
	CompensationTopic string
	RetryMax          int
	Timeout           time.Duration
	RequiredAcks      sarama.RequiredAcks
	CompressionType   sarama.CompressionCodec
	IdempotentWrites  bool
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:           []string{"localhost:9092"},
		ReservationTopic:  "reservation-notifications",
		CompensationTopic: "payment-compensations",
		RetryMax:          3,
		Timeout:           10 * time.Second,
		RequiredAcks:      sarama.WaitForAll,
		CompressionType:   sarama.CompressionSnappy,
		IdempotentWrites:  true,
	}
}

// KafkaProducer publishes events to Kafka
type KafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	logger   *logger.Logger
}

// NewKafkaProducer creates a new Kafka event producer
func NewKafkaProducer(config *KafkaProducerConfig, log *logger.Logger) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("kafka producer created", "brokers", config.Brokers)
	return &KafkaProducer{
		producer: producer,
		config:   config,
		logger:   log,
	}, nil
}

// PublishReservation publishes a reservation lifecycle event
func (kp *KafkaProducer) PublishReservation(ctx context.Context, event ReservationEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal reservation event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: kp.config.ReservationTopic,
		Key:   sarama.StringEncoder(event.PartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("hold_id"), Value: []byte(event.HoldID)},
			{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send reservation event: %w", err)
	}

	kp.logger.Debug("reservation event published",
		"topic", kp.config.ReservationTopic,
		"partition", partition,
		"offset", offset,
		"type", event.Type,
		"hold_id", event.HoldID)
	return nil
}

// PublishCompensation publishes a compensation event for a captured payment
// that could not be settled
func (kp *KafkaProducer) PublishCompensation(ctx context.Context, event CompensationEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal compensation event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: kp.config.CompensationTopic,
		Key:   sarama.StringEncoder(event.PartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("payment_id"), Value: []byte(event.PaymentID)},
			{Key: []byte("hold_id"), Value: []byte(event.HoldID)},
			{Key: []byte("reason"), Value: []byte(event.Reason)},
		},
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send compensation event: %w", err)
	}

	kp.logger.Info("compensation event published",
		"topic", kp.config.CompensationTopic,
		"partition", partition,
		"offset", offset,
		"payment_id", event.PaymentID,
		"hold_id", event.HoldID)
	return nil
}

// Close closes the Kafka producer
func (kp *KafkaProducer) Close() error {
	if kp.producer != nil {
		if err := kp.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
		kp.logger.Info("kafka producer closed")
	}
	return nil
}

// NoopProducer drops all events. Used when Kafka is disabled and in tests.
type NoopProducer struct{}

func NewNoopProducer() Producer {
	return &NoopProducer{}
}

func (NoopProducer) PublishReservation(context.Context, ReservationEvent) error   { return nil }
func (NoopProducer) PublishCompensation(context.Context, CompensationEvent) error { return nil }
func (NoopProducer) Close() error                                                 { return nil }
