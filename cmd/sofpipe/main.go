// Command sofpipe runs a file-to-file audio pipeline on the copy engine:
// wav source, gain stage, wav sink. It exists to exercise the whole stack
// end to end from a shell.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/davidrau-renesas-opensource/sof/log"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "sofpipe",
	Short:        "sofpipe processes audio files through the copy engine",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.sofpipe.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetDefault("period_frames", 48)
	viper.SetDefault("gain", 1.0)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".sofpipe")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("sofpipe")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "using config file %s\n", viper.ConfigFileUsed())
	}

	if viper.GetBool("debug") {
		os.Setenv(log.DebugEnv, "1")
	}
	log.New()
}
