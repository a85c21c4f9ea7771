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
	"stationeye/internal/server"
)

var autoStart bool

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the detection console API",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	serveCommand.Flags().BoolVar(&autoStart, "start", false, "start a detection session immediately")
}

func runServe() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	logrus.Infof("config: %+v", conf)

	c, err := newConsole(conf)
	if err != nil {
		logrus.WithError(err).Fatal("new console")
	}
	defer c.Close()

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	srv := server.NewServer(ctx, conf, c)
	go func() {
		if err := srv.Start(); err != nil {
			logrus.WithError(err).Error("http server exited")
			cancelFunc()
		}
	}()

	if autoStart {
		if err := c.StartSession(ctx); err != nil {
			logrus.WithError(err).Error("start session")
		}
	}

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-termChan:
	case <-ctx.Done():
	}
	logrus.Infof("server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server forced to shutdown")
	}
}
