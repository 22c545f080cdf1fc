package amqp

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Op string

const (
	OpCreate Op = "create"
	OpDelete Op = "delete"
)

// ChangeMessage announces that an owner's transactions changed. It carries
// no payload: receivers reload the owner's snapshot from the database.
type ChangeMessage struct {
	Owner     string    `json:"owner"`
	Op        Op        `json:"op"`
	ID        string    `json:"id"`
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(owner string, op Op, id, origin string) *ChangeMessage {
	return &ChangeMessage{
		Owner:     owner,
		Op:        op,
		ID:        id,
		Origin:    origin,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Owner == "" {
		return nil, errMissingOwner
	}
	return &msg, nil
}
