package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stationeye/internal/config"
	"stationeye/internal/server"
)

var (
	operator string
	tokenTTL time.Duration
)

var tokenCommand = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the control API",
	Run: func(cmd *cobra.Command, args []string) {
		runToken()
	},
}

func init() {
	tokenCommand.Flags().StringVar(&operator, "operator", "operator", "operator name recorded in the token")
	tokenCommand.Flags().DurationVar(&tokenTTL, "ttl", 7*24*time.Hour, "token lifetime")
}

func runToken() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}
	token, err := server.GenerateToken(conf.Auth.JwtSecret, operator, tokenTTL)
	if err != nil {
		logrus.WithError(err).Fatal("generate token, set auth.jwtSecret first")
	}
	fmt.Println(token)
}
