package cli

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvm-interop/hvm-go/testing/hvmtest"
)

func TestSerializeHex(t *testing.T) {
	fake := hvmtest.New()
	cmd := NewSerializeCommand(&RootOptions{Format: "text", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--backend", "native", "--sample", "fib")
	require.NoError(t, err)

	data, err := hex.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Len(t, data, 116)
	assert.Equal(t, byte(7), data[0])
	assert.Equal(t, "fib_iterative", string(data[2:2+data[1]]))

	assert.Equal(t, 1, fake.Calls(hvmtest.CallVecCopy))
	fake.AssertClean(t)
}

func TestSerializeToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fib.bin")
	fake := hvmtest.New()
	cmd := NewSerializeCommand(&RootOptions{Format: "json", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--backend", "native", "--sample", "fib", "-o", path)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   SerializeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, uint64(116), resp.Data.Bytes)
	assert.Equal(t, path, resp.Data.Output)
	assert.Empty(t, resp.Data.Hex)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, written, 116)
	fake.AssertClean(t)
}

func TestSerializeEngineError(t *testing.T) {
	fake := hvmtest.New(hvmtest.WithSerializeError("serialization unsupported"))
	cmd := NewSerializeCommand(&RootOptions{Format: "text", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--backend", "native", "--sample", "fib")
	requireExitCode(t, err, ExitFailure)
	assert.Contains(t, out, "Error [interop]: serialization unsupported")
	fake.AssertClean(t)
}

func TestSerializeResult_String(t *testing.T) {
	assert.Equal(t, "wrote 3 bytes to out.bin", SerializeResult{Bytes: 3, Output: "out.bin"}.String())
	assert.Equal(t, "0a0b", SerializeResult{Bytes: 2, Hex: "0a0b"}.String())
}
