package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// v holds flag bindings and is read by config.Load.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "hcs",
	Short: "hcs controls the mouse pointer with hand gestures",
	Long: `hcs reads frames from a webcam or video file, detects hands, and turns
the right hand into a smoothed pointer with click, grab and navigation gestures.
The left hand navigates back and forward.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")

	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}
