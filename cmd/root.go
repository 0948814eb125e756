package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sweeparr",
	Short: "clean up fully watched seasons from a sonarr library",
	Long: `sweeparr reconciles a sonarr library against the watch state kept by
plex or jellyfin and deletes seasons that are fully downloaded, fully
watched, untagged, and past their retention window.

Without -f nothing is deleted; the plan is only reported.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "sweeparr.yaml", "config file")
}

func initConfig() {
	viper.SetConfigFile(cfgFile)

	viper.SetEnvPrefix("SWEEPARR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	viper.SetDefault("sonarr.url", "")
	viper.SetDefault("sonarr.apiKey", "")

	viper.SetDefault("plex.url", "")
	viper.SetDefault("plex.apiKey", "")

	viper.SetDefault("jellyfin.url", "")
	viper.SetDefault("jellyfin.apiKey", "")
	viper.SetDefault("jellyfin.user", "")

	viper.SetDefault("retention.retainTag", "retain")
	viper.SetDefault("retention.retainDuration", "14d")

	viper.SetDefault("fetch.workers", 4)
}
