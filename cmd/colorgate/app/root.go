// Package app provides the colorgate command-line application.
package app

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewRootCmd creates the colorgate root command. Flags may also be set
// through COLORGATE_* environment variables.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("COLORGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:          "colorgate",
		Short:        "Demonstrates fair admission of two caller colors to one resource",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().Bool("debug", false, "Log queueing decisions")
	_ = v.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRunCmd(v))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.DisableStacktrace = true
	if debug {
		cfg.Level.SetLevel(zap.DebugLevel)
		cfg.DisableStacktrace = false
	}
	return cfg.Build()
}
