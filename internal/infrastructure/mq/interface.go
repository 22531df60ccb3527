// Package mq 投递实时领域事件
// messageMode=none 丢弃，channel 进程内转发给 WebSocket Hub，kafka 先写 Kafka 再由消费者转发
package mq

import (
	"context"
	"encoding/json"
	"time"
)

// 事件类型
const (
	EventContactRequestCreated = "contact_request.created"
	EventContactRequestStatus  = "contact_request.status_changed"
	EventMessageCreated        = "message.created"
)

// Event 推送给单个用户的事件
type Event struct {
	Type             string          `json:"type"`
	RecipientID      string          `json:"recipientId"`
	ContactRequestID string          `json:"contactRequestId"`
	Payload          json.RawMessage `json:"payload,omitempty"`
	At               time.Time       `json:"at"`
}

// NewEvent payload 序列化失败时不带 payload
func NewEvent(eventType, recipientID, contactRequestID string, payload any) Event {
	ev := Event{
		Type:             eventType,
		RecipientID:      recipientID,
		ContactRequestID: contactRequestID,
		At:               time.Now().UTC(),
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			ev.Payload = raw
		}
	}
	return ev
}

// EventPublisher 事件发布接口，Service 层只依赖它
// 发布失败不影响业务操作，调用方只记录日志
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// MessageSender 消息发送接口
// 用于解耦 MQ 层和 Gateway 层的依赖关系
type MessageSender interface {
	// SendToUser 返回成功入队的连接数
	SendToUser(userID string, data []byte) int
}
