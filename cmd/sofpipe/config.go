package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// settings is the effective configuration after file, env and flags merge.
type settings struct {
	PeriodFrames int     `yaml:"period_frames" mapstructure:"period_frames"`
	Gain         float64 `yaml:"gain" mapstructure:"gain"`
	MetricsAddr  string  `yaml:"metrics_addr" mapstructure:"metrics_addr"`
	Debug        bool    `yaml:"debug" mapstructure:"debug"`
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		var s settings
		if err := viper.Unmarshal(&s); err != nil {
			return err
		}
		out, err := yaml.Marshal(s)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil
	},
}
