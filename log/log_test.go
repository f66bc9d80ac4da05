package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAttrWire(t *testing.T) {
	tests := []struct {
		name     string
		wire     AttrWire
		wantKind slog.Kind
		want     any
	}{
		{"string", AttrWire{Key: "k", Type: "string", Value: "value"}, slog.KindString, "value"},
		{"int64", AttrWire{Key: "k", Type: "int64", Value: "-123"}, slog.KindInt64, int64(-123)},
		{"uint64", AttrWire{Key: "k", Type: "uint64", Value: "18446744073709551615"}, slog.KindUint64, uint64(18446744073709551615)},
		{"bool", AttrWire{Key: "k", Type: "bool", Value: "true"}, slog.KindBool, true},
		{"float64", AttrWire{Key: "k", Type: "float64", Value: "1.230000"}, slog.KindFloat64, 1.23},
		{"time", AttrWire{Key: "k", Type: "time", Value: "2024-01-01T00:00:00Z"}, slog.KindTime, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"duration", AttrWire{Key: "k", Type: "duration", Value: "1h0m0s"}, slog.KindDuration, time.Hour},
		{"error", AttrWire{Key: "k", Type: "error", Value: "out of memory"}, slog.KindString, "out of memory"},
		{"json", AttrWire{Key: "k", Type: "json", Value: `{"field":"data"}`}, slog.KindString, `{"field":"data"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := fromAttrWire(tt.wire)
			assert.Equal(t, "k", attr.Key)
			assert.Equal(t, tt.wantKind, attr.Value.Kind())
			if want, ok := tt.want.(time.Time); ok {
				assert.True(t, want.Equal(attr.Value.Time()))
				return
			}
			assert.Equal(t, tt.want, attr.Value.Any())
		})
	}
}

func TestDecodeMessage(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{
		"timestamp": "2024-01-01T00:00:00Z",
		"level": "WARN",
		"message": "reduction slow",
		"attrs": [{"key": "itrs", "type": "int64", "value": "42"}]
	}`))
	require.NoError(t, err)
	assert.True(t, msg.Timestamp.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "WARN", msg.Level)
	assert.Equal(t, "reduction slow", msg.Message)
	assert.Equal(t, []AttrWire{{Key: "itrs", Type: "int64", Value: "42"}}, msg.Attrs)

	_, err = DecodeMessage([]byte("{"))
	assert.ErrorContains(t, err, "decode guest log message")
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestForward_TypedAttrs(t *testing.T) {
	payload := []byte(`{"level":"WARN","message":"reduction slow","attrs":[
		{"key":"itrs","type":"int64","value":"42"},
		{"key":"c","type":"bool","value":"false"},
		{"key":"def","type":"string","value":"main"}]}`)

	logger, buf := captureLogger()
	Forward(context.Background(), logger, payload)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "WARN", got["level"])
	assert.Equal(t, "reduction slow", got["msg"])
	assert.Equal(t, "guest", got["origin"])
	assert.Equal(t, float64(42), got["itrs"])
	assert.Equal(t, false, got["c"])
	assert.Equal(t, "main", got["def"])
}

func TestForward_MinimalMessage(t *testing.T) {
	logger, buf := captureLogger()
	Forward(context.Background(), logger, []byte(`{"level":"DEBUG","message":"book parsed"}`))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "DEBUG", got["level"])
	assert.Equal(t, "book parsed", got["msg"])
}

func TestForward_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger, buf := captureLogger()
	Forward(context.Background(), logger, []byte(`{"level":"trace","message":"x"}`))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "INFO", got["level"])
}

func TestForward_RawPayload(t *testing.T) {
	logger, buf := captureLogger()
	Forward(context.Background(), logger, []byte("not json"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "hvm guest log (raw)", got["msg"])
	assert.Equal(t, "not json", got["payload"])
}

func TestFromAttrWire_UnparseableKeepsString(t *testing.T) {
	attr := fromAttrWire(AttrWire{Key: "n", Type: "int64", Value: "many"})
	assert.Equal(t, slog.KindString, attr.Value.Kind())
	assert.Equal(t, "many", attr.Value.String())
}
