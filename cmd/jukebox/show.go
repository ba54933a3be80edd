package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-jukebox/internal/library"
	"github.com/hazadus/go-jukebox/internal/track"
)

// createShowCommand создает команду show
func (app *Application) createShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [key]",
		Short: "Show track details",
		Long:  `Show name, artist, rating, play count, artwork and playlists of a track.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := app.requireLibrary(); err != nil {
				return err
			}
			return app.showTrack(args[0])
		},
	}
}

func (app *Application) showTrack(key string) error {
	details, err := app.Library.Details(key)
	if err != nil {
		return err
	}

	fmt.Printf("🎵 Трек %s\n", details.Key)
	fmt.Printf("   Название: %s\n", details.Name)
	fmt.Printf("   Исполнитель: %s\n", details.Artist)
	fmt.Printf("   Рейтинг: %s (%d)\n", details.Stars(), details.Rating)
	fmt.Printf("   Прослушиваний: %d\n", details.PlayCount)
	if details.HasArtwork() {
		fmt.Printf("   Обложка: %s\n", details.ArtworkPath)
	} else {
		fmt.Println("   Обложка: нет")
	}
	if len(details.Playlists) > 0 {
		fmt.Printf("   Плейлисты: %s\n", strings.Join(details.Playlists, ", "))
	}
	return nil
}

// createRateCommand создает команду rate
func (app *Application) createRateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rate [key] [rating]",
		Short: "Set track rating (0-5)",
		Long:  `Set track rating. Values outside 0..5 are clamped, non-numeric values become 0.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := app.requireLibrary(); err != nil {
				return err
			}
			return app.rateTrack(args[0], library.ParseRating(args[1]))
		},
	}
}

func (app *Application) rateTrack(key string, rating int) error {
	if err := app.Library.SetRating(key, rating); err != nil {
		return err
	}
	name, _ := app.Library.Name(key)
	rating = app.Library.Rating(key)
	fmt.Printf("⭐ %s: рейтинг %d %s\n", name, rating, strings.Repeat("⭐", rating))
	return nil
}

// createEditCommand создает команду edit
func (app *Application) createEditCommand() *cobra.Command {
	var name, artist, rating string

	cmd := &cobra.Command{
		Use:   "edit [key]",
		Short: "Edit track name, artist or rating",
		Long:  `Change the name, artist and/or rating of a track. Omitted flags keep current values.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireLibrary(); err != nil {
				return err
			}
			key := args[0]
			current, ok := app.Library.Name(key)
			if !ok {
				return fmt.Errorf("%w: %s", track.ErrTrackNotFound, key)
			}
			currentArtist, _ := app.Library.Artist(key)
			newRating := app.Library.Rating(key)

			if !cmd.Flags().Changed("name") {
				name = current
			}
			if !cmd.Flags().Changed("artist") {
				artist = currentArtist
			}
			if cmd.Flags().Changed("rating") {
				newRating = library.ParseRating(rating)
			}
			return app.editTrack(key, name, artist, newRating)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new track name")
	cmd.Flags().StringVar(&artist, "artist", "", "new artist")
	cmd.Flags().StringVar(&rating, "rating", "", "new rating (0-5)")
	return cmd
}

func (app *Application) editTrack(key, name, artist string, rating int) error {
	if err := app.Library.UpdateTrack(key, name, artist, rating); err != nil {
		return err
	}
	details, _ := app.Library.Details(key)
	fmt.Printf("✏️  Трек обновлен: %s\n", details.Row)
	return nil
}

// parseRatingArg разбирает необязательный аргумент рейтинга
func parseRatingArg(args []string, index int) int {
	if len(args) <= index {
		return 0
	}
	return library.ParseRating(args[index])
}
