package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const maxReasonLength = 256

// DatasetInvalidateMessage tells the service its cached dataset is stale.
// It carries no data; the service re-reads the source file on next use.
type DatasetInvalidateMessage struct {
	Source    string    `json:"source"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetInvalidateMessage creates a message stamped with the current time.
func NewDatasetInvalidateMessage(source, reason string) *DatasetInvalidateMessage {
	return &DatasetInvalidateMessage{
		Source:    source,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

// Validate checks the fields a consumer relies on.
func (m *DatasetInvalidateMessage) Validate() error {
	if strings.TrimSpace(m.Source) == "" {
		return errors.New("source is required")
	}
	if len(m.Reason) > maxReasonLength {
		return fmt.Errorf("reason longer than %d bytes", maxReasonLength)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *DatasetInvalidateMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetInvalidateMessageFromJSON decodes and validates a message.
func DatasetInvalidateMessageFromJSON(data []byte) (*DatasetInvalidateMessage, error) {
	var msg DatasetInvalidateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	return &msg, nil
}
