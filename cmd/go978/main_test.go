package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go978/internal/app"
)

func TestRootCmd_Version(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Go978")
	assert.Contains(t, out.String(), "Version: "+app.Version)
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()
	flags := cmd.Flags()

	for _, name := range []string{"config", "input", "connect", "format", "log-dir", "utc", "log-to-file",
		"log-retention-days", "quiet", "sqlite", "postgres", "nats", "nats-subject", "stats-interval", "verbose", "version"} {
		assert.NotNil(t, flags.Lookup(name), "flag --%s", name)
	}

	assert.Equal(t, "text", flags.Lookup("format").DefValue)
	assert.Equal(t, "30s", flags.Lookup("stats-interval").DefValue)
	assert.Equal(t, "0", flags.Lookup("log-retention-days").DefValue)
}

func TestApplyConfigFile_FlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go978.yaml")
	content := "format: json\nconnect: receiver.local\nstats_interval: 5m\nverbose: true\nlog_retention_days: 14\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config := app.DefaultConfig()
	var configFile string
	flags := pflag.NewFlagSet("go978", pflag.ContinueOnError)
	bindFlags(flags, &config, &configFile)

	require.NoError(t, flags.Parse([]string{"--config", path, "--format", "sbs", "--stats-interval", "10s", "--log-retention-days", "3"}))
	require.NoError(t, applyConfigFile(flags, configFile, &config))

	// Explicit flags win over the file
	assert.Equal(t, app.FormatSBS, config.Format)
	assert.Equal(t, 10*time.Second, config.StatsInterval)
	assert.Equal(t, 3, config.LogRetention)

	// File values win over defaults
	assert.Equal(t, "receiver.local", config.Connect)
	assert.True(t, config.Verbose)

	// Neither: defaults
	assert.Equal(t, app.DefaultLogDir, config.LogDir)
}

func TestApplyConfigFile_Missing(t *testing.T) {
	config := app.DefaultConfig()
	var configFile string
	flags := pflag.NewFlagSet("go978", pflag.ContinueOnError)
	bindFlags(flags, &config, &configFile)

	err := applyConfigFile(flags, filepath.Join(t.TempDir(), "nope.yaml"), &config)
	assert.Error(t, err)
}
