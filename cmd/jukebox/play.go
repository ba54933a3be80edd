package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-jukebox/internal/player"
	"github.com/hazadus/go-jukebox/internal/streaming"
	"github.com/hazadus/go-jukebox/internal/utils"
)

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	var audio bool

	cmd := &cobra.Command{
		Use:   "play [key]",
		Short: "Play a track by its key",
		Long: `Count a play of the track. With --audio the track file "Artist - Title.mp3"
is looked up in music_dir (a local directory or base URL) and played.
Play counts live for the session only and are not written to the library file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := app.requireLibrary(); err != nil {
				return err
			}
			return app.playTrack(ctx, args[0], audio)
		},
	}
	cmd.Flags().BoolVar(&audio, "audio", false, "play the audio file of the track")
	return cmd
}

func (app *Application) playTrack(ctx context.Context, key string, audio bool) error {
	if err := app.Library.IncrementPlayCount(key); err != nil {
		return err
	}
	details, err := app.Library.Details(key)
	if err != nil {
		return err
	}

	fmt.Printf("🎵 Сейчас играет:\n")
	fmt.Printf("   Ключ: %s\n", details.Key)
	fmt.Printf("   Исполнитель: %s\n", details.Artist)
	fmt.Printf("   Название: %s\n", details.Name)
	fmt.Printf("   Прослушиваний за сеанс: %d\n", details.PlayCount)
	fmt.Println()

	if !audio {
		return nil
	}

	source, err := player.ResolveSource(app.Config.MusicDir, details.Artist, details.Name)
	if err != nil {
		return err
	}
	return app.playAudio(ctx, []player.Item{{
		Key:    details.Key,
		Name:   details.Name,
		Artist: details.Artist,
		Source: source,
	}})
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	// Без stty плеер работает, просто без управления с клавиатуры
	if err := cmd.Run(); err != nil {
		log.Warn().Err(err).Msg("не удалось включить raw-режим терминала")
	}
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		log.Debug().Err(err).Msg("не удалось восстановить режим терминала")
	}
}

// readSingleChar читает одиночный символ без ожидания Enter
func readSingleChar() (byte, error) {
	buffer := make([]byte, 1)
	_, err := os.Stdin.Read(buffer)
	return buffer[0], err
}

// playAudio воспроизводит очередь треков, пока она не закончится или не отменен ctx
func (app *Application) playAudio(ctx context.Context, items []player.Item) error {
	p := player.NewPlayer()
	defer p.Close()

	// PlayQueue сам пропускает треки, которые не удалось открыть
	if err := p.PlayQueue(items); err != nil {
		return fmt.Errorf("ошибка запуска воспроизведения: %w", err)
	}
	app.Logger.Debug().Int("tracks", len(items)).Str("source", items[0].Source).Msg("воспроизведение запущено")

	stream := streaming.IsURL(items[0].Source)
	if stream {
		fmt.Printf("🌐 Начинаем потоковое воспроизведение...\n")
	}
	fmt.Printf("🎮 Управление:\n")
	fmt.Printf("   [Пробел] - пауза/воспроизведение\n")
	if len(items) > 1 {
		fmt.Printf("   [n] - следующий трек\n")
	}
	fmt.Printf("   [Ctrl+C] - остановить и выйти\n")
	fmt.Println()

	enableRawMode()
	defer disableRawMode()

	go func() {
		for {
			char, err := readSingleChar()
			if err != nil {
				return
			}

			switch char {
			case ' ', '\n', '\r':
				p.Pause()
				fmt.Printf("\r\033[K")
				if p.IsPlaying() {
					fmt.Printf("▶️  Воспроизведение\n")
				} else {
					fmt.Printf("⏸️  Пауза\n")
				}
			case 'n':
				// Недоступные треки плеер пропускает сам; при ошибке очередь заканчивается
				if err := p.Next(); err != nil && !errors.Is(err, player.ErrQueueEnd) {
					app.Logger.Warn().Err(err).Msg("не удалось открыть оставшиеся треки")
				}
			}
		}
	}()

	position := -1
	for {
		select {
		case status, ok := <-p.Progress():
			if !ok {
				return nil
			}
			if len(items) > 1 && status.Position != position {
				position = status.Position
				fmt.Printf("\r\033[K🎵 %d/%d: %s - %s\n", position+1, status.QueueLen, status.Item.Artist, status.Item.Name)
			}
			displayProgress(status, stream)
		case <-p.Done():
			fmt.Println("\n✅ Воспроизведение завершено")
			return nil
		case <-ctx.Done():
			fmt.Println("\n⏹️  Воспроизведение остановлено")
			p.Stop()
			return nil
		}
	}
}

// displayProgress отображает прогресс воспроизведения
func displayProgress(status player.Status, stream bool) {
	statusIcon := "⏱️"
	statusText := "Воспроизведение"
	if stream {
		statusText = streaming.GetStreamStatus(status.StuckCount)
	}

	switch {
	case !status.IsPlaying:
		statusIcon = "⏸️"
		statusText = "На паузе"
	case status.StuckCount > 3:
		statusIcon = "⚠️"
	}

	if status.Total > 0 {
		percent := float64(status.Current) / float64(status.Total) * 100
		fmt.Printf("\r%s  %.1f%% | %s / %s | Статус: %s",
			statusIcon,
			percent,
			utils.FormatDuration(status.Current),
			utils.FormatDuration(status.Total),
			statusText)
		return
	}

	fmt.Printf("\r%s  %s | Статус: %s",
		statusIcon,
		utils.FormatDuration(status.Current),
		statusText)
}
