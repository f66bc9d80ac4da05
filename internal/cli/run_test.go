package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvm-interop/hvm-go/domain/entities"
	"github.com/hvm-interop/hvm-go/testing/hvmtest"
)

func TestRunText(t *testing.T) {
	fake := hvmtest.New()
	cmd := NewRunCommand(&RootOptions{Format: "text", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--backend", "native", "--sample", "fib", "--param", "N=10")
	require.NoError(t, err)

	assertGolden(t, "run_fib_text", out)
	fake.AssertClean(t)
}

func TestRunJSON(t *testing.T) {
	fake := hvmtest.New()
	cmd := NewRunCommand(&RootOptions{Format: "json", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--backend", "native", "--sample", "fib", "--param", "N=10")
	require.NoError(t, err)

	var resp struct {
		Status string             `json:"status"`
		Data   entities.RunReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	report := resp.Data
	assert.True(t, report.IsSuccess())
	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err, "run id should be a UUID")

	require.NotNil(t, report.Evaluation)
	assert.Equal(t, "#7", report.Evaluation.Result)
	assert.Equal(t, uint64(7528), report.Evaluation.Iterations)
	assert.Empty(t, report.Evaluation.MemDump)

	require.NotNil(t, report.Metadata)
	assert.Equal(t, "native", report.Metadata.Backend)
	assert.Equal(t, "rust", report.Metadata.Runtime)
	assert.Equal(t, uint64(116), report.Metadata.SerializedBytes)
	assert.False(t, report.Metadata.EndTime.Before(report.Metadata.StartTime))

	fake.AssertClean(t)
}

func TestRunMemDump(t *testing.T) {
	fake := hvmtest.New()
	cmd := NewRunCommand(&RootOptions{Format: "text", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--backend", "native", "--sample", "fib", "--mem-dump")
	require.NoError(t, err)

	assert.Contains(t, out, "mem dump:\nDEFS:\n")
	assert.Contains(t, out, "0006: @main")
	fake.AssertClean(t)
}

func TestRunSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.hvm")
	require.NoError(t, os.WriteFile(path, []byte("@main = a\n  & @id ~ (1 a)\n@id = (x x)\n"), 0o600))

	fake := hvmtest.New()
	cmd := NewRunCommand(&RootOptions{Format: "text", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--backend", "native", "--source", path)
	require.NoError(t, err)

	assert.Contains(t, out, "program:    "+path)
	assert.Contains(t, out, "result:     #2")
	fake.AssertClean(t)
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := `backend: native
runtime: c
mem_dump: true
sample: fib
params:
  N: 12
`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	fake := hvmtest.New(hvmtest.WithCRuntime())
	cmd := NewRunCommand(&RootOptions{Format: "text", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "runtime:    c")
	assert.Contains(t, out, "mem dump:")
	fake.AssertClean(t)
}

func TestRunFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: native\nruntime: c\nsample: fib\n"), 0o600))

	fake := hvmtest.New()
	cmd := NewRunCommand(&RootOptions{Format: "text", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--config", path, "--runtime", "rust")
	require.NoError(t, err)
	assert.Contains(t, out, "runtime:    rust")
}

func TestRunParseError(t *testing.T) {
	fake := hvmtest.New()
	cmd := NewRunCommand(&RootOptions{Format: "text", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--backend", "native", "--sample", "faulty")
	requireExitCode(t, err, ExitFailure)

	assert.Contains(t, out, `Error [interop]: PARSE_ERROR (1:1): expected definition, found "this is faulty"`)
	fake.AssertClean(t)
}

func TestRunEngineRejectsRuntime(t *testing.T) {
	fake := hvmtest.New()
	cmd := NewRunCommand(&RootOptions{Format: "json", Backend: fakeBackend(fake)})

	out, _, err := execute(t, cmd, "--backend", "native", "--sample", "fib", "--runtime", "c")
	requireExitCode(t, err, ExitFailure)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "interop", resp.Error.Code)
	assert.Equal(t, "C runtime not supported", resp.Error.Message)
	fake.AssertClean(t)
}

func TestRunInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "wasm backend without module",
			args: []string{"--sample", "fib"},
			want: "wasm_path",
		},
		{
			name: "no program",
			args: []string{"--backend", "native"},
			want: "sample",
		},
		{
			name: "unknown runtime",
			args: []string{"--backend", "native", "--sample", "fib", "--runtime", "go"},
			want: "runtime",
		},
		{
			name: "unknown sample",
			args: []string{"--backend", "native", "--sample", "nope"},
			want: "unknown sample",
		},
		{
			name: "malformed param",
			args: []string{"--backend", "native", "--sample", "fib", "--param", "N"},
			want: "expected key=value",
		},
		{
			name: "missing source file",
			args: []string{"--backend", "native", "--source", "does-not-exist.hvm"},
			want: "failed to read program",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := hvmtest.New()
			cmd := NewRunCommand(&RootOptions{Format: "text", Backend: fakeBackend(fake)})

			out, _, err := execute(t, cmd, tt.args...)
			requireExitCode(t, err, ExitCommandError)
			assert.Contains(t, out, "Error [config]")
			assert.Contains(t, out, tt.want)
			assert.Zero(t, fake.Calls(hvmtest.CallBookParse))
		})
	}
}

func TestRunMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hvm.prom")
	fake := hvmtest.New()
	cmd := NewRunCommand(&RootOptions{Format: "text", MetricsFile: path, Backend: fakeBackend(fake)})

	_, _, err := execute(t, cmd, "--backend", "native", "--sample", "fib")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `hvm_evaluations_total{runtime="rust",status="success"} 1`)
	assert.Contains(t, text, `hvm_native_resources_live{kind="book"} 0`)
}

func TestFormatReport_NoEvaluation(t *testing.T) {
	report := entities.ReportError("id", entities.NewErrorDetail("interop", "boom"))
	assert.Equal(t, "program:    x", formatReport("x", report))
}
