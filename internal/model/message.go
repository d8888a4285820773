package model

import "time"

type Status string

const (
	Pending Status = "pending"
	Sent    Status = "sent"
	Failed  Status = "failed"
)

type MessageType string

const (
	TypeSMS MessageType = "sms"
)

// Message is the durable record of one outbound notification. ID and the
// timestamps are assigned by the store on first save.
type Message struct {
	ID        int64
	Recipient string
	Type      MessageType
	Status    Status
	Retries   int
	Subject   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New builds an unpersisted record in its initial state.
func New(recipient string, t MessageType, subject, content string) Message {
	return Message{
		Recipient: recipient,
		Type:      t,
		Status:    Pending,
		Subject:   subject,
		Content:   content,
	}
}

// MarkSent transitions the record to sent. Sent is terminal: a sent record
// is never handed to a provider again.
func (m *Message) MarkSent() {
	m.Status = Sent
}

// RecordFailure counts one failed delivery attempt. With maxRetries <= 0 the
// record stays pending and keeps accumulating attempts; with a positive cap
// the record turns failed once the counter reaches it.
func (m *Message) RecordFailure(maxRetries int) {
	m.Retries++
	if maxRetries > 0 && m.Retries >= maxRetries {
		m.Status = Failed
	}
}
