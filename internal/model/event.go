package model

import "time"

// ContactEventType 联系人生命周期事件，同时作为 routing key
type ContactEventType string

const (
	ContactCreated ContactEventType = "contact.created"
	ContactUpdated ContactEventType = "contact.updated"
	ContactDeleted ContactEventType = "contact.deleted"
)

// ContactEvent 发布到 contacts.events 交换机的消息体
type ContactEvent struct {
	MessageID  string           `json:"messageId"` // 消息唯一ID，消费端据此去重
	Type       ContactEventType `json:"type"`
	ContactID  int64            `json:"contactId,string"`
	ActorID    string           `json:"actorId,omitempty"` // 发起操作的用户
	OccurredAt time.Time        `json:"occurredAt"`
	Contact    *Contact         `json:"contact,omitempty"` // 删除事件不携带快照
}
