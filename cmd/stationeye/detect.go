package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stationeye/internal/config"
	"stationeye/internal/events"
	"stationeye/internal/model"
	"stationeye/internal/session"
	"stationeye/pkg/log"
)

var threshold float64

var detectCommand = &cobra.Command{
	Use:   "detect",
	Short: "Run a headless detection session and log every detection",
	Run: func(cmd *cobra.Command, args []string) {
		runDetect(cmd.Flags().Changed("threshold"))
	},
}

func init() {
	detectCommand.Flags().Float64Var(&threshold, "threshold", model.DefaultConfidence, "confidence threshold, overrides settings.confidence")
}

func runDetect(overrideThreshold bool) {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}
	if overrideThreshold {
		conf.Settings.Confidence = threshold
		if err := conf.Validate(); err != nil {
			logrus.Fatal(err)
		}
	}

	c, err := newConsole(conf, events.LogPublisher{Logger: log.ComponentLogger("detect")})
	if err != nil {
		logrus.WithError(err).Fatal("new console")
	}
	defer c.Close()

	if err := c.StartSession(context.Background()); err != nil {
		logrus.WithError(err).Error("start session")
		return
	}

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-termChan:
			logrus.Info("detect is shutting down...")
			return
		case <-ticker.C:
			// the session stops itself on channel failure
			if status := c.Status(); status.State == session.StateClosed.String() {
				logrus.Errorf("session ended, state: %s", status.State)
				return
			}
		}
	}
}
