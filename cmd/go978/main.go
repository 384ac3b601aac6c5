package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go978/internal/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	config := app.DefaultConfig()
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "go978",
		Short: "UAT ADS-B downlink decoder (dump978 raw input)",
		Long: `UAT ADS-B downlink decoder.

Reads dump978 raw lines ("-" downlink, "+" uplink) from stdin, a file or a
dump978 raw TCP port, decodes 978 MHz UAT downlink messages (header, state
vector, mode status, auxiliary state vector, target state) and writes a text
report, BaseStation (SBS) CSV or JSON. Decoded downlinks can also be archived
to SQLite or PostgreSQL and published to NATS.

Example usage:
  dump978-fa --raw-stdout | go978
  go978 --connect localhost:30978 --format sbs --log-to-file --log-dir ./logs
  go978 --config /etc/go978.yaml`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ShowVersion {
				app.ShowVersion(cmd.OutOrStdout())
				return nil
			}

			if configFile != "" {
				if err := applyConfigFile(cmd.Flags(), configFile, &config); err != nil {
					return err
				}
			}

			application := app.NewApplication(config)
			return application.Start()
		},
	}

	bindFlags(rootCmd.Flags(), &config, &configFile)
	return rootCmd
}

func bindFlags(flags *pflag.FlagSet, config *app.Config, configFile *string) {
	flags.StringVar(configFile, "config", "", "YAML configuration file")
	flags.StringVarP(&config.Input, "input", "i", config.Input, "Input file with dump978 raw lines (- for stdin)")
	flags.StringVarP(&config.Connect, "connect", "c", config.Connect, "dump978 raw TCP address host[:port]")
	flags.StringVarP((*string)(&config.Format), "format", "f", string(config.Format), "Output format: text, sbs or json")
	flags.StringVarP(&config.LogDir, "log-dir", "l", config.LogDir, "Log directory")
	flags.BoolVarP(&config.LogRotateUTC, "utc", "u", config.LogRotateUTC, "Use UTC for log rotation")
	flags.BoolVar(&config.LogToFile, "log-to-file", config.LogToFile, "Also write output to a daily rotated file")
	flags.IntVar(&config.LogRetention, "log-retention-days", config.LogRetention, "Remove rotated files older than this many days (0 keeps all)")
	flags.BoolVarP(&config.Quiet, "quiet", "q", config.Quiet, "Do not write output to stdout")
	flags.StringVar(&config.SQLitePath, "sqlite", config.SQLitePath, "Archive decoded downlinks in this SQLite database")
	flags.StringVar(&config.PostgresURL, "postgres", config.PostgresURL, "Archive decoded downlinks in PostgreSQL (connection URL)")
	flags.StringVar(&config.NATSURL, "nats", config.NATSURL, "Publish decoded downlinks to this NATS server")
	flags.StringVar(&config.NATSSubject, "nats-subject", config.NATSSubject, "NATS subject prefix")
	flags.DurationVar(&config.StatsInterval, "stats-interval", config.StatsInterval, "Statistics logging interval")
	flags.BoolVarP(&config.Verbose, "verbose", "v", config.Verbose, "Verbose logging")
	flags.BoolVar(&config.ShowVersion, "version", false, "Show version information")
}

// applyConfigFile loads the YAML file into config and then re-applies every
// flag set on the command line, so explicit flags win over the file.
func applyConfigFile(flags *pflag.FlagSet, path string, config *app.Config) error {
	explicit := make(map[string]string)
	flags.Visit(func(f *pflag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	if err := app.LoadConfigFile(path, config); err != nil {
		return err
	}

	for name, value := range explicit {
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("failed to re-apply flag --%s: %w", name, err)
		}
	}
	return nil
}
