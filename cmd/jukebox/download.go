package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-jukebox/internal/backup"
	"github.com/hazadus/go-jukebox/internal/download"
)

// createDownloadCommand создает команду download
func (app *Application) createDownloadCommand(ctx context.Context) *cobra.Command {
	var (
		rating int
		noAdd  bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "download [YouTube URL]",
		Short: "Download audio from YouTube and add it to the library",
		Long: `Download the best audio stream of a YouTube video into download_dir as
"Artist - Title.mp3" and add the track to the library.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Создаем контекст с таймаутом для скачивания (10 минут)
			downloadCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.downloadTrack(downloadCtx, args[0], rating, force, !noAdd)
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating for the added track (0-5)")
	cmd.Flags().BoolVar(&noAdd, "no-add", false, "only download, do not add to the library")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "add even if the track is already in the library")
	return cmd
}

func (app *Application) downloadTrack(ctx context.Context, url string, rating int, force, add bool) error {
	videoID, err := download.ExtractVideoID(url)
	if err != nil {
		return fmt.Errorf("ошибка извлечения ID видео: %w", err)
	}
	fmt.Printf("📺 Скачиваем аудио для видео ID: %s\n", videoID)

	downloader := download.NewDownloader(app.Config.DownloadDir)

	var result *download.Result
	err = app.prompter.Spin(ctx, "Скачиваем...", func(ctx context.Context) error {
		var err error
		result, err = downloader.Download(ctx, url)
		return err
	})
	if err != nil {
		return fmt.Errorf("ошибка скачивания: %w", err)
	}

	fmt.Printf("✅ Файл сохранен: %s (%s)\n", result.Path, backup.FormatFileSize(result.Size))
	fmt.Printf("   Исполнитель: %s\n", result.Artist)
	fmt.Printf("   Название: %s\n", result.Name)

	if !add {
		return nil
	}
	if err := app.allowMissingLibrary(); err != nil {
		return err
	}
	return app.addTrack(result.Name, result.Artist, rating, force)
}
