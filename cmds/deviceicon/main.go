package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"

	"github.com/safing/audioicons/base/log"
	"github.com/safing/audioicons/service/deviceicon"
)

var (
	configPath  string
	logLevel    string
	showMetrics bool

	provider *deviceicon.Provider
)

var rootCmd = &cobra.Command{
	Use:   "deviceicon",
	Short: "Resolve and export the icons of audio devices",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		err = log.Start(cfg.Log.Level, cfg.Log.Dir == "", cfg.Log.Dir)
		if err != nil {
			return err
		}
		log.Debugf("deviceicon: logging at level %s", log.GetLogLevel().Name())
		if configPath != "" {
			log.Tracef("deviceicon: loaded config from %s", configPath)
		}

		opts := cfg.Options()
		opts.Metrics = newMetricsSet()
		provider, err = deviceicon.New(opts)
		if err != nil {
			return err
		}
		provider.Start(cmd.Context())
		return nil
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&logLevel, "log", "", "set log level to [trace|debug|info|warning|error|critical]")
	flags.BoolVar(&showMetrics, "metrics", false, "print metrics when done")
}

// newMetricsSet returns the metrics set shared by the provider and the
// log line counters.
func newMetricsSet() *vm.Set {
	set := vm.NewSet()
	set.NewGauge(`deviceicon_log_lines_total{level="warning"}`, func() float64 {
		return float64(log.TotalWarningLogLines())
	})
	set.NewGauge(`deviceicon_log_lines_total{level="error"}`, func() float64 {
		return float64(log.TotalErrorLogLines())
	})
	return set
}

// execute runs the root command and releases the provider afterwards, also
// when the command failed.
func execute(ctx context.Context, out io.Writer) error {
	defer func() {
		if provider != nil {
			if showMetrics {
				provider.WritePrometheus(out)
			}
			provider.Close()
			provider = nil
		}
	}()

	return rootCmd.ExecuteContext(ctx)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := execute(ctx, os.Stdout)
	log.Shutdown()
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
