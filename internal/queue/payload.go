package queue

import (
	"encoding/json"

	"github.com/adams-okode/messaging-gateway-service/internal/model"
)

// Payload is the wire representation of a message in flight. It carries the
// six fields the delivery path needs to act; id is present only for records
// that were already persisted (retry republishes), never for fresh submits.
// Timestamps deliberately do not travel: the store owns them.
type Payload struct {
	ID        int64  `json:"id,omitempty"`
	Recipient string `json:"recipient"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Retries   int    `json:"retries"`
	Subject   string `json:"subject,omitempty"`
	Content   string `json:"content"`
}

// FromMessage maps the persisted representation onto the wire one, field by
// field. Keep this and ToMessage in sync by hand; a silent field drop here
// breaks the delivery path.
func FromMessage(m model.Message) Payload {
	return Payload{
		ID:        m.ID,
		Recipient: m.Recipient,
		Type:      string(m.Type),
		Status:    string(m.Status),
		Retries:   m.Retries,
		Subject:   m.Subject,
		Content:   m.Content,
	}
}

// ToMessage reconstructs the record the delivery path mutates and persists.
func (p Payload) ToMessage() model.Message {
	return model.Message{
		ID:        p.ID,
		Recipient: p.Recipient,
		Type:      model.MessageType(p.Type),
		Status:    model.Status(p.Status),
		Retries:   p.Retries,
		Subject:   p.Subject,
		Content:   p.Content,
	}
}

func Encode(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

func Decode(b []byte) (Payload, error) {
	var p Payload
	err := json.Unmarshal(b, &p)
	return p, err
}
