// Package cli implements the registryctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/whiteelite/registry/internal/config"
	"github.com/whiteelite/registry/internal/ctxlog"
	"github.com/whiteelite/registry/internal/infrastructure/memory"
	"github.com/whiteelite/registry/internal/infrastructure/messaging/kafka/repositories/repository"
	"github.com/whiteelite/registry/internal/logging"
)

type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// app carries state shared by all subcommands of one root command.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	build      buildInfo
}

// NewRootCmd builds a fresh command tree. Each call gets its own viper
// instance, so trees do not share flag or config state.
func NewRootCmd(version, commit, date string) *cobra.Command {
	a := &app{
		v:     config.New(),
		build: buildInfo{Version: version, Commit: commit, Date: date},
	}

	root := &cobra.Command{
		Use:   "registryctl",
		Short: "Run the task manager and bank on the in-memory entity registry",
		Long: `registryctl drives two hosts built on a generic in-memory entity registry:
a task manager and a small bank. Registry changes can be published to Kafka
and tailed with the events command.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.StringP("output", "o", "table", "output format (table, json)")
	pf.Bool("strict", false, "fail on unknown ids instead of ignoring them")

	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = a.v.BindPFlag("output", pf.Lookup("output"))
	_ = a.v.BindPFlag("strict", pf.Lookup("strict"))

	root.AddCommand(
		a.newTasksCmd(),
		a.newBankCmd(),
		a.newEventsCmd(),
		a.newVersionCmd(),
	)
	return root
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	if err := NewRootCmd(version, commit, date).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
	return nil
}

// registryOptions returns the options shared by every registry the hosts
// create. When Kafka is configured the returned close func flushes and
// stops the publisher.
func (a *app) registryOptions(ctx context.Context) ([]memory.Option, func(), error) {
	logger := ctxlog.FromContext(ctx)

	opts := []memory.Option{memory.WithLogger(logger)}
	if a.cfg.Strict {
		opts = append(opts, memory.WithStrictLookups())
	}

	if !a.cfg.Kafka.Enabled() {
		return opts, func() {}, nil
	}

	pub, err := repository.NewPublisher(repository.KafkaMessageQueueParams{
		Brokers:          a.cfg.Kafka.Brokers,
		Topic:            a.cfg.Kafka.Topic,
		ToProduceBufSize: a.cfg.Kafka.BufferSize,
		FlushTimeout:     a.cfg.Kafka.FlushTimeout,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating change publisher: %w", err)
	}
	logger.Debug("publishing registry changes", "brokers", a.cfg.Kafka.Brokers, "topic", a.cfg.Kafka.Topic)

	return append(opts, memory.WithChangeSink(pub)), pub.Close, nil
}
