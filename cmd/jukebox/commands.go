package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-jukebox/internal/config"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "jukebox",
		Short: "A command line jukebox for a CSV music library",
		Long: `Manage a music library stored in a CSV file: list, search, rate and play tracks,
keep named playlists, import tags from mp3 files and back the library up to S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			// Приложение, собранное заранее (например, в тестах), не перенастраивается
			if app.Config != nil {
				return nil
			}
			return app.setup(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to the YAML config file")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createListCommand())
	rootCmd.AddCommand(app.createSearchCommand())
	rootCmd.AddCommand(app.createShowCommand())
	rootCmd.AddCommand(app.createRateCommand())
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createAddCommand())
	rootCmd.AddCommand(app.createEditCommand())
	rootCmd.AddCommand(app.createDeleteCommand())
	rootCmd.AddCommand(app.createImportCommand())
	rootCmd.AddCommand(app.createDownloadCommand(ctx))
	rootCmd.AddCommand(app.createPlaylistCommand(ctx))
	rootCmd.AddCommand(app.createBackupCommand(ctx))
	rootCmd.AddCommand(app.createRestoreCommand(ctx))
	rootCmd.AddCommand(app.createTUICommand())

	return rootCmd
}
