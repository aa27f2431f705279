package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/warmpath/scout-cli/internal/adapters/driven/config/file"
	"github.com/warmpath/scout-cli/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "warmscout", rootCmd.Use)
}

func TestRootCmd_HasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag, "verbose flag should exist")
	assert.Equal(t, "v", flag.Shorthand)
}

func TestRootCmd_VerboseFlagEnablesLogging(t *testing.T) {
	defer func() {
		verboseFlag = false
		logger.SetVerbose(false)
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"--verbose", "version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestConfiguredWeights(t *testing.T) {
	cfg, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Nil(t, configuredWeights(cfg), "no weight keys set means no override")

	require.NoError(t, cfg.Set("weights.relationship", 50.0))
	require.NoError(t, cfg.Set("weights.company_alignment", 50.0))

	weights := configuredWeights(cfg)
	require.NotNil(t, weights)
	assert.Equal(t, 50.0, weights.Relationship)
	assert.Equal(t, 50.0, weights.CompanyAlignment)
	assert.Zero(t, weights.AskFit)
}

func TestRootCmd_HasExpectedCommands(t *testing.T) {
	commands := rootCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "scout")
	assert.Contains(t, commandNames, "runs")
	assert.Contains(t, commandNames, "contacts")
	assert.Contains(t, commandNames, "learning")
	assert.Contains(t, commandNames, "config")
	assert.Contains(t, commandNames, "version")
}
