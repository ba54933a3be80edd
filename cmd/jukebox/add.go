package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-jukebox/internal/track"
)

// createAddCommand создает команду add с привязкой к экземпляру приложения
func (app *Application) createAddCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "add [name] [artist] [rating]",
		Short: "Add a track to the library",
		Long: `Append a track to the library. A track with the same name and artist
is treated as a duplicate: you are asked to confirm, or pass --force.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := app.allowMissingLibrary(); err != nil {
				return err
			}
			return app.addTrack(args[0], args[1], parseRatingArg(args, 2), force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "add even if the track is already in the library")
	return cmd
}

// addTrack добавляет трек, спрашивая подтверждение для дубликата
func (app *Application) addTrack(name, artist string, rating int, force bool) error {
	key, err := app.Library.AddTrack(name, artist, rating, force)
	if errors.Is(err, track.ErrDuplicateTrack) {
		key, err = app.confirmDuplicate(key, func() (string, error) {
			return app.Library.AddTrack(name, artist, rating, true)
		})
	}
	if err != nil {
		return err
	}
	if key == "" {
		return nil
	}

	fmt.Printf("✅ Трек добавлен под ключом %s: %s - %s\n", key, artist, name)
	return nil
}

// confirmDuplicate спрашивает, добавлять ли дубликат трека existing.
// Пустой ключ без ошибки означает, что пользователь отказался.
func (app *Application) confirmDuplicate(existing string, add func() (string, error)) (string, error) {
	ok, err := app.prompter.Confirm(fmt.Sprintf("Трек уже есть в каталоге под ключом %s. Добавить еще раз?", existing))
	if errors.Is(err, errNotInteractive) {
		return "", fmt.Errorf("%w: ключ %s, используйте --force", track.ErrDuplicateTrack, existing)
	}
	if err != nil {
		return "", err
	}
	if !ok {
		fmt.Println("🚫 Добавление отменено")
		return "", nil
	}
	return add()
}

// createImportCommand создает команду import
func (app *Application) createImportCommand() *cobra.Command {
	var (
		force  bool
		rating int
	)

	cmd := &cobra.Command{
		Use:   "import [file.mp3]...",
		Short: "Add tracks from mp3 files",
		Long: `Read ID3 tags of mp3 files and add them to the library. When tags are missing,
"Artist - Title.mp3" file names are used. Embedded cover art is saved as track artwork.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := app.allowMissingLibrary(); err != nil {
				return err
			}

			var errs []error
			for _, path := range args {
				if err := app.importFile(path, rating, force); err != nil {
					fmt.Printf("❌ %s: %v\n", path, err)
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "import even if the track is already in the library")
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating for imported tracks (0-5)")
	return cmd
}

func (app *Application) importFile(path string, rating int, force bool) error {
	key, info, err := app.Library.ImportFile(path, rating, force)
	if errors.Is(err, track.ErrDuplicateTrack) {
		key, err = app.confirmDuplicate(key, func() (string, error) {
			key, _, err := app.Library.ImportFile(path, rating, true)
			return key, err
		})
	}
	if err != nil {
		return err
	}
	if key == "" {
		return nil
	}

	fmt.Printf("📥 Импортирован трек %s: %s - %s\n", key, info.Artist, info.Name)
	if info.HasPicture() {
		fmt.Println("   🖼️  Обложка сохранена")
	}
	return nil
}
