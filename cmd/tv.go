package cmd

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sweeparr/sweeparr/config"
	sweephttp "github.com/sweeparr/sweeparr/pkg/http"
	"github.com/sweeparr/sweeparr/pkg/logger"
	"github.com/sweeparr/sweeparr/pkg/sonarr"
	"github.com/sweeparr/sweeparr/pkg/sweep"
	"github.com/sweeparr/sweeparr/pkg/watched"
	"go.uber.org/zap"
)

var deleteFiles bool

// tvCmd represents the tv command
var tvCmd = &cobra.Command{
	Use:   "tv",
	Short: "sweep fully watched tv seasons",
	Long: `tv fetches the sonarr library and the watch state from plex or jellyfin,
decides which seasons are fully downloaded, fully watched, untagged, and past
the retention window, and reports them. With -f the files are deleted and the
seasons unmonitored.`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatalw("failed to read configuration", zap.Error(err))
		}
		if err := cfg.Validate(); err != nil {
			log.Fatalw("invalid configuration", zap.Error(err))
		}

		httpClient := sweephttp.NewRetryingClient()

		catalog, err := sonarr.New(httpClient, cfg.Sonarr.URL, cfg.Sonarr.APIKey.Reveal())
		if err != nil {
			log.Fatalw("failed to create sonarr client", zap.Error(err))
		}

		source, err := watched.NewWatchClient(httpClient, cfg)
		if err != nil {
			log.Fatalw("failed to create watch state client", zap.Error(err))
		}

		duration, err := cfg.Retention.Duration()
		if err != nil {
			log.Fatalw("invalid retention duration", zap.Error(err))
		}
		policy := sweep.RetentionPolicy{
			Tag:      cfg.Retention.RetainTag,
			Duration: duration,
		}

		log = log.With(zap.String("run_id", uuid.New().String()))
		ctx := logger.WithCtx(cmd.Context(), log)

		sweeper := sweep.New(catalog, source, policy, cfg.Fetch.Workers)
		_, results, err := sweeper.Run(ctx, os.Stdout, deleteFiles)

		cfg.Sonarr.APIKey.Zero()
		cfg.Plex.APIKey.Zero()
		cfg.Jellyfin.APIKey.Zero()

		if err != nil {
			log.Fatalw("sweep failed", zap.Error(err))
		}
		if results.Failed() {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(tvCmd)
	tvCmd.Flags().BoolVarP(&deleteFiles, "delete-files", "f", false, "delete files instead of only reporting")
}
