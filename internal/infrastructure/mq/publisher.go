package mq

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"vedzeb_server/internal/config"
	"vedzeb_server/pkg/errorx"
)

const transmitSize = 256

// Init 根据 messageMode 创建发布者，kafka 模式同时启动消费者
func Init(ctx context.Context, cfg config.KafkaConfig, sender MessageSender) EventPublisher {
	switch cfg.MessageMode {
	case "kafka":
		zap.L().Info("realtime events via kafka", zap.String("topic", cfg.EventTopic))
		pub := NewKafkaPublisher(cfg)
		consumer := NewKafkaConsumer(cfg, sender)
		go consumer.Run(ctx)
		pub.consumer = consumer
		return pub
	case "none":
		zap.L().Info("realtime events disabled")
		return NoopPublisher{}
	default:
		zap.L().Info("realtime events via in-process channel")
		return NewChannelPublisher(sender)
	}
}

// NoopPublisher 丢弃全部事件
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// ChannelPublisher 进程内转发：Publish 只入队，后台协程负责推送
type ChannelPublisher struct {
	sender   MessageSender
	transmit chan Event
	once     sync.Once
	wg       sync.WaitGroup
}

// NewChannelPublisher 创建并启动转发协程
func NewChannelPublisher(sender MessageSender) *ChannelPublisher {
	p := &ChannelPublisher{
		sender:   sender,
		transmit: make(chan Event, transmitSize),
	}
	p.wg.Add(1)
	go p.loop()
	return p
}

func (p *ChannelPublisher) loop() {
	defer p.wg.Done()
	for ev := range p.transmit {
		deliver(p.sender, ev)
	}
}

// Publish 队列已满时丢弃并返回错误
func (p *ChannelPublisher) Publish(_ context.Context, ev Event) error {
	select {
	case p.transmit <- ev:
		return nil
	default:
		return errorx.New(errorx.CodeServerBusy, "event queue full")
	}
}

// Close 排空队列后返回
func (p *ChannelPublisher) Close() error {
	p.once.Do(func() { close(p.transmit) })
	p.wg.Wait()
	return nil
}

func deliver(sender MessageSender, ev Event) {
	if sender == nil || ev.RecipientID == "" {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		zap.L().Error("marshal event", zap.Error(err))
		return
	}
	n := sender.SendToUser(ev.RecipientID, data)
	zap.L().Debug("event delivered",
		zap.String("type", ev.Type),
		zap.String("recipient", ev.RecipientID),
		zap.Int("connections", n),
	)
}
