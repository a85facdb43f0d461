package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
)

const (
	MessageTypeProcess = "process"
	MessageTypeAudio   = "audio"
)

type Producer interface {
	SendStageMessage(ctx context.Context, topic string, message *StageMessage) error
	Close() error
}

// StageMessage schedules one unit of pipeline work. Process messages carry
// the submission payload; audio messages carry the variant to synthesize.
type StageMessage struct {
	Type      string `json:"type"`
	TaskID    string `json:"task_id"`
	ArticleID string `json:"article_id,omitempty"`
	Variant   string `json:"variant,omitempty"`
	URL       string `json:"url,omitempty"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
	TraceID   string `json:"trace_id"`
}

type producer struct {
	producer sarama.SyncProducer
}

func NewProducer(brokers []string) (Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &producer{producer: p}, nil
}

func (p *producer) SendStageMessage(ctx context.Context, topic string, message *StageMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	// Key by task so one task's units stay ordered within a partition.
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(message.TaskID),
		Value: sarama.ByteEncoder(data),
	}

	_, _, err = p.producer.SendMessage(msg)
	return err
}

func (p *producer) Close() error {
	return p.producer.Close()
}
