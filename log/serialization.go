// Package log carries log records emitted by a guest engine build to the
// host's slog logger.
package log

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageWire is the JSON wire format of a log line sent by the guest through
// hvm_host.log_message.
type MessageWire struct {
	Timestamp time.Time  `json:"timestamp,omitempty"`
	Attrs     []AttrWire `json:"attrs,omitempty"`
	Level     string     `json:"level"`
	Message   string     `json:"message"`
}

// AttrWire is a single attribute. Value is always a string; Type says how
// to read it back ("int64", "uint64", "bool", "float64", "time" in RFC 3339,
// "duration"). Other types, such as "error" or "json", stay strings.
type AttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// DecodeMessage parses a wire payload.
func DecodeMessage(payload []byte) (MessageWire, error) {
	var msg MessageWire
	if err := json.Unmarshal(payload, &msg); err != nil {
		return MessageWire{}, fmt.Errorf("decode guest log message: %w", err)
	}
	return msg, nil
}
