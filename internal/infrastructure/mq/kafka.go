package mq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"vedzeb_server/internal/config"
	"vedzeb_server/pkg/errorx"
)

// KafkaPublisher 按接收人做 key，同一用户的事件落在同一分区保持顺序
type KafkaPublisher struct {
	writer   *kafka.Writer
	consumer *KafkaConsumer
}

// NewKafkaPublisher 创建写入器
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.HostPort),
			Topic:                  cfg.EventTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           cfg.Timeout * time.Second,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "marshal event")
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.RecipientID),
		Value: value,
	})
	if err != nil {
		return errorx.Wrap(err, errorx.CodeExternalError, "publish event")
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	err := p.writer.Close()
	if p.consumer != nil {
		if cerr := p.consumer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// KafkaConsumer 读取事件主题并转发给在线连接
type KafkaConsumer struct {
	reader *kafka.Reader
	sender MessageSender
}

// NewKafkaConsumer 每个实例使用同一消费者组；多实例部署时需为每个实例配置不同 groupId
func NewKafkaConsumer(cfg config.KafkaConfig, sender MessageSender) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{cfg.HostPort},
			Topic:          cfg.EventTopic,
			GroupID:        cfg.GroupID,
			CommitInterval: cfg.Timeout * time.Second,
			StartOffset:    kafka.LastOffset,
		}),
		sender: sender,
	}
}

// Run 阻塞直到 ctx 结束或读取器关闭
func (c *KafkaConsumer) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("kafka consumer panic", zap.Any("recover", r))
		}
	}()
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			zap.L().Error("kafka read", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			zap.L().Warn("skip malformed event", zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		deliver(c.sender, ev)
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
