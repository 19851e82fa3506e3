package cli

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "surge", cmd.Use)
	assert.Contains(t, cmd.Long, "virtual users")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"run", "validate", "history"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	for flag, short := range map[string]string{"users": "u", "iterations": "n", "duration": "d", "db": ""} {
		f := run.Flags().Lookup(flag)
		require.NotNil(t, f, flag)
		assert.Equal(t, short, f.Shorthand, flag)
	}
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate", "--format", "yaml", "x.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestSetupLogging(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	tests := []struct {
		level   string
		verbose bool
		debug   bool
		info    bool
	}{
		{"info", false, false, true},
		{"warn", false, false, false},
		{"debug", false, true, true},
		{"warn", true, true, true},
		{"nonsense", false, false, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		setupLogging(&buf, tt.verbose, tt.level)
		slog.Debug("debug line")
		slog.Info("info line")
		assert.Equal(t, tt.debug, bytes.Contains(buf.Bytes(), []byte("debug line")), "level %s verbose %v", tt.level, tt.verbose)
		assert.Equal(t, tt.info, bytes.Contains(buf.Bytes(), []byte("info line")), "level %s verbose %v", tt.level, tt.verbose)
	}
}

func TestFirstNonZero(t *testing.T) {
	assert.Equal(t, 3, firstNonZero(0, 3, 5))
	assert.Equal(t, 0, firstNonZero[int]())
	assert.Equal(t, "b", firstNonZero("", "b"))
}
