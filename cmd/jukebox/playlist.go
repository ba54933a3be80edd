package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-jukebox/internal/player"
	"github.com/hazadus/go-jukebox/internal/playlist"
)

// createPlaylistCommand создает группу команд для работы с плейлистами
func (app *Application) createPlaylistCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Manage playlists",
		Long: `Playlists are ordered subsets of library keys stored as {name}.csv in playlist_dir.
Each entry has an "included in playback" flag.`,
	}
	cmd.PersistentPreRunE = func(sub *cobra.Command, _ []string) error {
		// cobra не вызывает PersistentPreRunE родителя, если задан свой
		if root := sub.Root(); root != cmd && root.PersistentPreRunE != nil {
			if err := root.PersistentPreRunE(sub, nil); err != nil {
				return err
			}
		}
		return app.requireLibrary()
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List playlists",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.listPlaylists()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show [name]",
		Short: "Show playlist entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.showPlaylist(app.playlistName(args))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add [name] [key]...",
		Short: "Add tracks to a playlist, creating it if needed",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.addToPlaylist(args[0], args[1:])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove [name] [key]...",
		Short: "Remove tracks from a playlist",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := app.Library.RemoveFromPlaylist(args[0], args[1:]...); err != nil {
				return err
			}
			fmt.Printf("✅ Треки удалены из плейлиста %s\n", args[0])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle [name] [key]",
		Short: "Toggle whether a track is included in playback",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			included, err := app.Library.TogglePlaylistEntry(args[0], args[1])
			if err != nil {
				return err
			}
			state := "выключен"
			if included {
				state = "включен"
			}
			fmt.Printf("🔀 Трек %s %s в плейлисте %s\n", args[1], state, args[0])
			return nil
		},
	})
	var audio bool
	playCmd := &cobra.Command{
		Use:   "play [name]",
		Short: "Play all included tracks of a playlist",
		Long: `Count a play of every included track. With --audio the tracks are played in order
from music_dir; tracks without an audio file are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.playPlaylist(ctx, app.playlistName(args), audio)
		},
	}
	playCmd.Flags().BoolVar(&audio, "audio", false, "play the audio files of the tracks")
	cmd.AddCommand(playCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a playlist file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := app.Library.DeletePlaylist(args[0]); err != nil {
				return err
			}
			fmt.Printf("🗑️  Плейлист %s удален\n", args[0])
			return nil
		},
	})

	return cmd
}

// playlistName возвращает имя из аргументов или плейлист по умолчанию
func (app *Application) playlistName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return app.Config.DefaultPlaylist
}

func (app *Application) listPlaylists() error {
	names, err := app.Library.Playlists()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("📃 Плейлистов пока нет. Создайте плейлист командой 'playlist add'.")
		return nil
	}

	fmt.Printf("📃 Плейлистов: %d\n", len(names))
	for _, name := range names {
		fmt.Printf("   %s\n", name)
	}
	return nil
}

func (app *Application) showPlaylist(name string) error {
	rows, err := app.Library.OpenPlaylist(name)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Printf("📃 Плейлист %s пуст\n", name)
		return nil
	}

	fmt.Printf("📃 Плейлист %s (%d)\n\n", name, len(rows))
	for _, row := range rows {
		mark := "[ ]"
		if row.Included {
			mark = "[x]"
		}
		fmt.Printf("%s %s\n", mark, row.Row)
	}
	return nil
}

func (app *Application) addToPlaylist(name string, keys []string) error {
	added, err := app.Library.AddToPlaylist(name, keys...)
	if added > 0 {
		fmt.Printf("✅ Добавлено в плейлист %s: %d\n", name, added)
	}
	if err == nil {
		return nil
	}

	// Дубликаты - только предупреждение, остальные ошибки возвращаются
	var other []error
	for _, e := range unwrapJoined(err) {
		if errors.Is(e, playlist.ErrDuplicate) {
			fmt.Printf("⚠️  %v\n", e)
			continue
		}
		other = append(other, e)
	}
	return errors.Join(other...)
}

// unwrapJoined раскладывает ошибку, собранную errors.Join
func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

func (app *Application) playPlaylist(ctx context.Context, name string, audio bool) error {
	played, err := app.Library.PlayPlaylist(name)
	if err != nil {
		return err
	}
	if len(played) == 0 {
		fmt.Printf("📃 В плейлисте %s нет включенных треков\n", name)
		return nil
	}

	fmt.Printf("▶️  Плейлист %s: воспроизведено треков %d\n", name, len(played))
	for _, key := range played {
		trackName, _ := app.Library.Name(key)
		artist, _ := app.Library.Artist(key)
		fmt.Printf("   %s %s - %s (%d)\n", key, artist, trackName, app.Library.PlayCount(key))
	}
	fmt.Println(strings.Repeat("-", 40))
	fmt.Println("💡 Счетчики прослушиваний не сохраняются в файл каталога")

	if !audio {
		return nil
	}
	items := app.playlistItems(played)
	if len(items) == 0 {
		return fmt.Errorf("%w: ни для одного трека плейлиста %s", player.ErrSourceNotFound, name)
	}
	fmt.Println()
	return app.playAudio(ctx, items)
}

// playlistItems собирает очередь из треков, для которых найден аудиофайл
func (app *Application) playlistItems(keys []string) []player.Item {
	items := make([]player.Item, 0, len(keys))
	for _, key := range keys {
		name, _ := app.Library.Name(key)
		artist, _ := app.Library.Artist(key)
		source, err := player.ResolveSource(app.Config.MusicDir, artist, name)
		if err != nil {
			fmt.Printf("⚠️  %s: %v\n", key, err)
			continue
		}
		items = append(items, player.Item{Key: key, Name: name, Artist: artist, Source: source})
	}
	return items
}
