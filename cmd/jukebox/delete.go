package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-jukebox/internal/library"
	"github.com/hazadus/go-jukebox/internal/track"
)

// createDeleteCommand создает команду delete с привязкой к экземпляру приложения
func (app *Application) createDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [key]...",
		Short: "Delete tracks by key",
		Long: `Delete tracks from the library. Keys of the remaining tracks are re-derived
from their new positions; artwork files and playlists follow the renumbering.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := app.requireLibrary(); err != nil {
				return err
			}
			return app.deleteTracks(args, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (app *Application) deleteTracks(keys []string, yes bool) error {
	keys = uniqueKeys(keys)
	for _, key := range keys {
		name, ok := app.Library.Name(key)
		if !ok {
			return fmt.Errorf("%w: %s", track.ErrTrackNotFound, key)
		}
		artist, _ := app.Library.Artist(key)
		fmt.Printf("🗑️  Удаляем трек %s: %s - %s\n", key, artist, name)
	}

	if !yes {
		ok, err := app.prompter.Confirm(fmt.Sprintf("Удалить треков: %d?", len(keys)))
		if errors.Is(err, errNotInteractive) {
			return fmt.Errorf("подтвердите удаление флагом --yes: %w", err)
		}
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("🚫 Удаление отменено")
			return nil
		}
	}

	renames, err := app.Library.DeleteTracks(keys...)
	if err != nil {
		return fmt.Errorf("ошибка удаления треков: %w", err)
	}

	fmt.Printf("✅ Удалено треков: %d\n", len(keys))
	if len(renames) > 0 {
		fmt.Println("🔢 Новые ключи:")
		oldKeys := slices.SortedFunc(maps.Keys(renames), func(a, b string) int {
			return library.KeyPosition(a) - library.KeyPosition(b)
		})
		for _, old := range oldKeys {
			fmt.Printf("   %s → %s\n", old, renames[old])
		}
	}
	return nil
}

// uniqueKeys убирает повторы, сохраняя порядок
func uniqueKeys(keys []string) []string {
	unique := make([]string, 0, len(keys))
	for _, key := range keys {
		if !slices.Contains(unique, key) {
			unique = append(unique, key)
		}
	}
	return unique
}
