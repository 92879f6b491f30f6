package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vigilo-hq/vigilo/internal/config"
	"github.com/vigilo-hq/vigilo/internal/pkg/logger"
)

var (
	cfgFile      string
	outputFormat string
	cfg          *config.Config
	log          *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vigilo",
	Short: "Vigilo CLI - administrative alerting and remediation engine",
	Long: `Vigilo CLI provides operational access to the alerting engine:
raising test events, inspecting active IP blocks and account suspensions,
and reviewing recent security alerts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log = logger.New(logger.Config{Level: "error", Format: "console"})
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.vigilo/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRaiseCmd())
	rootCmd.AddCommand(newBlocksCmd())
	rootCmd.AddCommand(newAlertsCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		configDir := home + "/.vigilo"
		_ = os.MkdirAll(configDir, 0700)
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VIGILO")
	viper.AutomaticEnv()

	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func getOutputFormat() string {
	if f := viper.GetString("output"); f != "" {
		return f
	}
	return outputFormat
}
