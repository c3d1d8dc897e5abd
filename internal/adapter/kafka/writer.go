package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/argo-profile-etl/internal/config"
	"github.com/couchcryptid/argo-profile-etl/internal/domain"
)

// Record types carried in the record_type header.
const (
	RecordMetadata = "metadata"
	RecordProfile  = "profile"
)

// Writer publishes records to a metadata topic and a profile topic, keyed by
// _id. It implements pipeline.Sink. Kafka is an append log, so a duplicate _id
// is published again rather than rejected.
type Writer struct {
	writer        *kafkago.Writer
	profileTopic  string
	metadataTopic string
	logger        *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topics.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{
		writer:        w,
		profileTopic:  cfg.KafkaProfileTopic,
		metadataTopic: cfg.KafkaMetadataTopic,
		logger:        logger,
	}
}

// InsertMeta publishes a metadata record.
func (w *Writer) InsertMeta(ctx context.Context, rec domain.MetaRecord) error {
	msg, err := metaMessage(w.metadataTopic, rec)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish metadata %s: %w", rec.ID, err)
	}
	return nil
}

// InsertProfile publishes a profile record.
func (w *Writer) InsertProfile(ctx context.Context, rec domain.ProfileRecord) error {
	msg, err := profileMessage(w.profileTopic, rec)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish profile %s: %w", rec.ID, err)
	}
	w.logger.Debug("profile published", "profile_id", rec.ID, "topic", w.profileTopic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func metaMessage(topic string, rec domain.MetaRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize metadata %s: %w", rec.ID, err)
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "record_type", Value: []byte(RecordMetadata)},
			{Key: "platform_number", Value: []byte(rec.PlatformNumber)},
		},
	}, nil
}

func profileMessage(topic string, rec domain.ProfileRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize profile %s: %w", rec.ID, err)
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "record_type", Value: []byte(RecordProfile)},
			{Key: "metadata_id", Value: []byte(rec.MetadataID())},
			{Key: "data_mode", Value: []byte(rec.DataMode)},
		},
	}, nil
}
