package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-jukebox/internal/library"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracks from the library",
		Long:  `Display all tracks in library order with their keys, ratings and play counts.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := app.requireLibrary(); err != nil {
				return err
			}
			app.listTracks()
			return nil
		},
	}
}

// createSearchCommand создает команду search
func (app *Application) createSearchCommand() *cobra.Command {
	var byArtist bool

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search tracks by name or artist",
		Long:  `Case-insensitive substring search by track name, or by artist with --artist.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := app.requireLibrary(); err != nil {
				return err
			}
			field := library.FieldName
			if byArtist {
				field = library.FieldArtist
			}
			app.searchTracks(args[0], field)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&byArtist, "artist", "a", false, "search by artist instead of track name")
	return cmd
}

func (app *Application) listTracks() {
	rows := app.Library.LoadAll()
	if len(rows) == 0 {
		fmt.Println("📚 Библиотека пуста. Добавьте треки с помощью команды 'add'.")
		return
	}

	fmt.Printf("📚 Найдено треков: %d\n\n", len(rows))
	printRows(rows)
	fmt.Println()
	fmt.Println("💡 Используйте 'jukebox play [ключ]' для воспроизведения трека")
}

func (app *Application) searchTracks(term string, field library.Field) {
	rows := app.Library.Search(term, field)
	if len(rows) == 0 {
		fmt.Printf("🔍 По запросу %q ничего не найдено\n", term)
		return
	}

	fmt.Printf("🔍 Найдено треков: %d\n\n", len(rows))
	printRows(rows)
}

// printRows выводит строки каталога в формате "ключ\tназвание\tисполнитель\tрейтинг\tпрослушивания"
func printRows(rows []library.Row) {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(row.String())
		b.WriteString("\n")
	}
	fmt.Print(b.String())
}
