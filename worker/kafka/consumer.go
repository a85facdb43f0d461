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

type MessageHandler func(ctx context.Context, msg *StageMessage) error

// StageMessage mirrors the producer-side schema: one schedulable unit of
// pipeline work, either task processing or audio synthesis.
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

type Consumer struct {
	consumer sarama.ConsumerGroup
}

func NewConsumer(brokers []string, groupID string) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	c, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	return &Consumer{consumer: c}, nil
}

type consumerHandler struct {
	fn  MessageHandler
	ctx context.Context
}

func (h *consumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var stageMsg StageMessage
		if err := json.Unmarshal(msg.Value, &stageMsg); err != nil {
			session.MarkMessage(msg, "")
			continue
		}
		h.fn(h.ctx, &stageMsg)
		session.MarkMessage(msg, "")
	}
	return nil
}

func (c *Consumer) Consume(ctx context.Context, topic string, handler MessageHandler) error {
	h := &consumerHandler{fn: handler, ctx: ctx}
	return c.consumer.Consume(ctx, []string{topic}, h)
}

func (c *Consumer) Close() error {
	return c.consumer.Close()
}
