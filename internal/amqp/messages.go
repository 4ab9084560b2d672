package amqp

import (
	"encoding/json"
	"time"
)

// Mirror actions carried on the queue. The worker fetches the full
// transaction from the database, so messages stay small.
const (
	ActionMirror = "mirror"
	ActionDelete = "delete"
)

// MirrorMessage asks the worker to mirror or un-mirror one transaction.
type MirrorMessage struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMirrorMessage(id int64) *MirrorMessage {
	return &MirrorMessage{ID: id, Action: ActionMirror, Timestamp: time.Now()}
}

func NewDeleteMessage(id int64) *MirrorMessage {
	return &MirrorMessage{ID: id, Action: ActionDelete, Timestamp: time.Now()}
}

func (m *MirrorMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MirrorMessageFromJSON(data []byte) (*MirrorMessage, error) {
	var msg MirrorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
