package recalc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes jobs to a Kafka topic, keyed by job ID.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a synchronous publisher for topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Publish encodes job as JSON and writes it.
func (p *KafkaPublisher) Publish(ctx context.Context, job Job) error {
	value, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}

	msg := kafka.Message{
		Key:     []byte(job.ID),
		Value:   value,
		Headers: []kafka.Header{{Key: "reason", Value: []byte(job.Reason)}},
		Time:    job.EnqueuedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write job %s: %w", job.ID, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaConsumer reads jobs from a Kafka topic as a member of a consumer group.
type KafkaConsumer struct {
	reader *kafka.Reader

	closeOnce sync.Once
}

// NewKafkaConsumer creates a consumer-group reader for topic.
func NewKafkaConsumer(brokers []string, topic, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  3 * time.Second,
		}),
	}
}

// Dequeue starts the read loop. Undecodable messages are logged and skipped;
// the channel closes when the reader is closed or ctx is done.
func (c *KafkaConsumer) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.EOF) {
					return
				}
				slog.Warn("recalculation consumer read error", "error", err)
				continue
			}

			job, err := DecodeJob(msg.Value)
			if err != nil {
				slog.Warn("recalculation consumer skipped message",
					"partition", msg.Partition,
					"offset", msg.Offset,
					"error", err,
				)
				continue
			}

			select {
			case out <- job:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Close stops the reader and leaves the consumer group.
func (c *KafkaConsumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

// DecodeJob parses a job published by KafkaPublisher.
func DecodeJob(value []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(value, &job); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	if job.ID == "" {
		return Job{}, errors.New("decode job: missing id")
	}
	return job, nil
}
