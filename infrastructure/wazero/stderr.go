package wazero

import (
	"bytes"
	"strings"
)

// DefaultMaxStderrSize is the default amount of guest stderr kept per call.
const DefaultMaxStderrSize = 4 * 1024

// boundedBuffer keeps the first limit bytes written to it and silently
// discards the rest. The engine writes its panic message to stderr right
// before trapping, so the captured text explains the trap.
type boundedBuffer struct {
	buffer    bytes.Buffer
	limit     int
	truncated bool
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

// Write implements io.Writer. It always reports len(p) so the guest never
// sees a short write.
func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - b.buffer.Len()
	if remaining <= 0 {
		b.truncated = len(p) > 0 || b.truncated
		return len(p), nil
	}
	if len(p) > remaining {
		b.truncated = true
		b.buffer.Write(p[:remaining])
		return len(p), nil
	}
	b.buffer.Write(p)
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	return b.buffer.String()
}

func (b *boundedBuffer) Len() int {
	return b.buffer.Len()
}

func (b *boundedBuffer) Reset() {
	b.buffer.Reset()
	b.truncated = false
}

// trapMessage appends whatever the guest printed to stderr during the
// failed call to the trap error.
func trapMessage(err error, stderr *boundedBuffer) string {
	msg := err.Error()
	if stderr == nil {
		return msg
	}
	out := strings.TrimSpace(stderr.String())
	if out == "" {
		return msg
	}
	if stderr.truncated {
		out += "..."
	}
	return msg + ": " + out
}
