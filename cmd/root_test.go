package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// Default configuration wires memory providers, so commands that do not need
// external services run end to end.
func TestArchiveCommandRunsWithDefaults(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"archive"})

	require.NoError(t, cmd.Execute())
}

func TestDiscoverCommandRunsWithDefaults(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"discover"})

	require.NoError(t, cmd.Execute())
}

func TestUnknownConfigFileFails(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"archive", "--config", "/nonexistent/config.yaml"})

	require.Error(t, cmd.Execute())
}
