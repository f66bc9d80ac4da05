package log

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Forward decodes a guest log payload and re-emits it on logger. Payloads
// that are not valid wire messages are logged raw at info level.
func Forward(ctx context.Context, logger *slog.Logger, payload []byte) {
	msg, err := DecodeMessage(payload)
	if err != nil {
		logger.InfoContext(ctx, "hvm guest log (raw)", "payload", string(payload))
		return
	}

	level := slog.LevelInfo
	if msg.Level != "" {
		if err := level.UnmarshalText([]byte(msg.Level)); err != nil {
			level = slog.LevelInfo
		}
	}

	attrs := make([]slog.Attr, 0, len(msg.Attrs)+1)
	attrs = append(attrs, slog.String("origin", "guest"))
	for _, a := range msg.Attrs {
		attrs = append(attrs, fromAttrWire(a))
	}
	logger.LogAttrs(ctx, level, msg.Message, attrs...)
}

// fromAttrWire restores the typed value where the wire type allows it.
func fromAttrWire(a AttrWire) slog.Attr {
	switch a.Type {
	case "int64":
		if v, err := strconv.ParseInt(a.Value, 10, 64); err == nil {
			return slog.Int64(a.Key, v)
		}
	case "uint64":
		if v, err := strconv.ParseUint(a.Value, 10, 64); err == nil {
			return slog.Uint64(a.Key, v)
		}
	case "bool":
		if v, err := strconv.ParseBool(a.Value); err == nil {
			return slog.Bool(a.Key, v)
		}
	case "float64":
		if v, err := strconv.ParseFloat(a.Value, 64); err == nil {
			return slog.Float64(a.Key, v)
		}
	case "time":
		if v, err := time.Parse(time.RFC3339Nano, a.Value); err == nil {
			return slog.Time(a.Key, v)
		}
	case "duration":
		if v, err := time.ParseDuration(a.Value); err == nil {
			return slog.Duration(a.Key, v)
		}
	}
	return slog.String(a.Key, a.Value)
}
