package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-jukebox/internal/backup"
	"github.com/hazadus/go-jukebox/internal/s3"
)

// errNoS3 возвращается командами резервного копирования без настроек S3
var errNoS3 = errors.New("хранилище S3 не настроено: укажите aws_bucket_name, aws_access_key, aws_secret_key и aws_region")

// backupService создает сервис резервного копирования поверх S3
func (app *Application) backupService() (*backup.Service, error) {
	storage := app.backupStorage
	if storage == nil {
		if !app.Config.HasS3() {
			return nil, errNoS3
		}
		client, err := s3.NewClient(&s3.Config{
			Region:     app.Config.AwsRegion,
			AccessKey:  app.Config.AwsAccessKey,
			SecretKey:  app.Config.AwsSecretKey,
			Endpoint:   app.Config.AwsEndpoint,
			BucketName: app.Config.AwsBucketName,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания S3 клиента: %w", err)
		}
		storage = client
	}

	return backup.NewService(storage, app.Config.BackupPrefix, backup.Sources{
		LibraryFile: app.Config.LibraryFile,
		PlaylistDir: app.Config.PlaylistDir,
		ImagesDir:   app.Config.ImagesDir,
	}, app.Logger), nil
}

// logProgress пишет ход копирования файлов в debug-лог
func (app *Application) logProgress(p backup.Progress) {
	if p.Done < p.File.Size {
		return
	}
	app.Logger.Debug().
		Str("name", p.File.Name).
		Int("index", p.Index+1).
		Int("total", p.Total).
		Msg("файл обработан")
}

// createBackupCommand создает команду backup и ее подкоманды
func (app *Application) createBackupCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up the library, playlists and artwork to S3",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.createBackup(ctx)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List backups stored in S3",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.listBackups(ctx)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a backup from S3",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			service, err := app.backupService()
			if err != nil {
				return err
			}
			if err := service.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("🗑️  Резервная копия %s удалена\n", args[0])
			return nil
		},
	})

	return cmd
}

func (app *Application) createBackup(ctx context.Context) error {
	service, err := app.backupService()
	if err != nil {
		return err
	}

	startTime := time.Now()
	var manifest *backup.Manifest
	err = app.prompter.Spin(ctx, "Создаем резервную копию...", func(ctx context.Context) error {
		var err error
		manifest, err = service.Backup(ctx, app.logProgress)
		return err
	})
	if err != nil {
		return fmt.Errorf("ошибка резервного копирования: %w", err)
	}

	fmt.Printf("☁️  Резервная копия создана: %s\n", manifest.ID)
	fmt.Printf("   Треков: %d, файлов: %d, размер: %s\n",
		manifest.Tracks, len(manifest.Files), backup.FormatFileSize(manifest.Size()))
	fmt.Printf("⏱️  Время выполнения: %s\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}

func (app *Application) listBackups(ctx context.Context) error {
	service, err := app.backupService()
	if err != nil {
		return err
	}

	infos, err := service.List(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения списка копий: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("☁️  Резервных копий пока нет")
		return nil
	}

	fmt.Printf("☁️  Резервных копий: %d\n", len(infos))
	for _, info := range infos {
		fmt.Printf("   %s  %s  файлов: %d, %s\n",
			info.ID,
			info.CreatedAt.Local().Format("2006-01-02 15:04"),
			info.Files,
			backup.FormatFileSize(info.Size))
	}
	return nil
}

// createRestoreCommand создает команду restore
func (app *Application) createRestoreCommand(ctx context.Context) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore [id]",
		Short: "Restore the library, playlists and artwork from an S3 backup",
		Long: `Download the files of a backup over the local ones. Without an id
the backup is chosen interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			return app.restoreBackup(ctx, id, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (app *Application) restoreBackup(ctx context.Context, id string, yes bool) error {
	service, err := app.backupService()
	if err != nil {
		return err
	}

	if id == "" {
		id, err = app.selectBackup(ctx, service)
		if err != nil {
			return err
		}
	}

	if !yes {
		ok, err := app.prompter.Confirm(fmt.Sprintf("Заменить локальные файлы копией %s?", id))
		if errors.Is(err, errNotInteractive) {
			return fmt.Errorf("подтвердите восстановление флагом --yes: %w", err)
		}
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("🚫 Восстановление отменено")
			return nil
		}
	}

	var manifest *backup.Manifest
	err = app.prompter.Spin(ctx, "Восстанавливаем...", func(ctx context.Context) error {
		var err error
		manifest, err = service.Restore(ctx, id, app.logProgress)
		return err
	})
	if err != nil {
		return fmt.Errorf("ошибка восстановления: %w", err)
	}

	fmt.Printf("✅ Восстановлено файлов: %d (%s)\n", len(manifest.Files), backup.FormatFileSize(manifest.Size()))

	app.loadLibrary()
	if err := app.requireLibrary(); err != nil {
		return err
	}
	fmt.Printf("📚 Треков в каталоге: %d\n", app.Library.Len())
	return nil
}

// selectBackup предлагает выбрать копию из списка
func (app *Application) selectBackup(ctx context.Context, service *backup.Service) (string, error) {
	infos, err := service.List(ctx)
	if err != nil {
		return "", fmt.Errorf("ошибка получения списка копий: %w", err)
	}
	if len(infos) == 0 {
		return "", backup.ErrBackupNotFound
	}

	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	id, err := app.prompter.Select("Выберите резервную копию", ids)
	if errors.Is(err, errNotInteractive) {
		return "", fmt.Errorf("укажите идентификатор копии: %w", err)
	}
	return id, err
}
