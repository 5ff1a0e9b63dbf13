package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/field4d/gober/internal/collector"
	"github.com/field4d/gober/internal/config"
)

// Version is reported at start-up.
const Version = "2.0.2"

var (
	debug      bool
	configPath string

	rootCmd = &cobra.Command{
		Use:   "gober-server",
		Short: "Collect Field4D sensor records over UDP",
		Long:  "gober-server receives Field4D sensor packets over UDP and forwards the rendered records to the configured sinks.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debugging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file location")
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Errorf("failed to execute command: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	conf, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := setLogLevel(conf.LogLevel); err != nil {
		return err
	}
	log := logrus.WithField("component", "server")
	log.Infof("gober-server %s starting", Version)
	log.Debugf("config: %+v", conf)

	sinks, err := buildSinks(conf, logrus.WithField("component", "sink"))
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			log.WithError(err).Warn("failed to close sinks")
		}
	}()

	c := collector.New(sinks, logrus.WithField("component", "collector"), collector.Options{
		Mode:     conf.RenderMode(),
		ReplyAck: conf.ReplyAck,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errs := make(chan error, 2)
	listeners := 1
	go func() { errs <- c.ListenAndServe(ctx, conf.Listen, c.HandleRecord) }()
	if conf.SummaryListen != "" {
		listeners++
		go func() { errs <- c.ListenAndServe(ctx, conf.SummaryListen, c.HandleSummary) }()
	}
	sdnotify(log, daemon.SdNotifyReady)

	var first error
	for i := 0; i < listeners; i++ {
		if err := <-errs; err != nil && first == nil {
			first = err
			cancel()
		}
	}
	sdnotify(log, daemon.SdNotifyStopping)
	log.Info("gober-server stopped")
	return first
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func setLogLevel(level string) error {
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	return nil
}

func sdnotify(log *logrus.Entry, state string) bool {
	ok, err := daemon.SdNotify(false, state)
	if err != nil {
		log.WithError(err).Warn("sdnotify")
	}
	return ok
}
