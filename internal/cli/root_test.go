package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "raffleverify", cmd.Use)
	assert.Contains(t, cmd.Long, "MT19937")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"verify", "roll", "fixtures", "history", "cache"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestVerifyCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	verifyCmd, _, err := cmd.Find([]string{"verify"})
	require.NoError(t, err)

	for _, name := range []string{"height", "explorer", "winners-url", "round-types-url", "player-lists-url", "cache-db", "no-cache", "no-color"} {
		assert.NotNil(t, verifyCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "0", verifyCmd.Flags().Lookup("height").DefValue)
}

func TestRollCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	rollCmd, _, err := cmd.Find([]string{"roll"})
	require.NoError(t, err)

	tokenFlag := rollCmd.Flags().Lookup("token")
	require.NotNil(t, tokenFlag)
	assert.Equal(t, "t", tokenFlag.Shorthand)
	assert.Equal(t, "1", tokenFlag.DefValue)

	fileFlag := rollCmd.Flags().Lookup("file")
	require.NotNil(t, fileFlag)
	assert.Equal(t, "f", fileFlag.Shorthand)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	limitFlag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "20", limitFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "xml", "roll", "0", "a"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootRoll(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"roll", "0", "a", "b", "c", "d", "e", "f", "g", "h", "i", "j"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "f\n", buf.String())
}
