// Package player воспроизводит треки каталога и очереди плейлистов через beep
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog/log"

	"github.com/hazadus/go-jukebox/internal/streaming"
)

// Границы громкости в единицах log2: 0 - исходная громкость
const (
	MinVolume = -5.0
	MaxVolume = 1.0
)

var (
	// ErrEmptyQueue возвращается при попытке воспроизвести пустую очередь
	ErrEmptyQueue = errors.New("очередь воспроизведения пуста")
	// ErrQueueEnd возвращается, когда в очереди не осталось треков
	ErrQueueEnd = errors.New("очередь воспроизведения закончилась")
)

// Item - трек для воспроизведения
type Item struct {
	Key    string
	Name   string
	Artist string
	Source string // Путь к файлу или URL
}

// Status представляет текущий статус плеера
type Status struct {
	Item       Item
	Position   int // Номер трека в очереди, с нуля
	QueueLen   int
	Current    time.Duration
	Total      time.Duration
	IsPlaying  bool
	StuckCount int // Сколько тиков подряд позиция не менялась
	Volume     float64
}

// Player воспроизводит очередь треков по одному.
// Когда трек заканчивается, плеер сам переходит к следующему; Done сигналит об окончании очереди.
type Player struct {
	progressChan chan Status
	doneChan     chan bool

	ctx    context.Context
	cancel context.CancelFunc
	mutex  sync.RWMutex
	closed bool

	isInitialized bool
	sampleRate    beep.SampleRate
	isPaused      bool
	volume        float64

	queue    []Item
	position int
	// generation меняется при каждом запуске трека, чтобы отбрасывать сигналы от прежних
	generation int

	streamer     beep.StreamSeekCloser
	ctrl         *beep.Ctrl
	gain         *effects.Volume
	streamReader *streaming.Reader
}

// NewPlayer создает новый экземпляр плеера
func NewPlayer() *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		progressChan: make(chan Status, 1),
		doneChan:     make(chan bool, 1),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Progress возвращает канал для получения обновлений прогресса
func (p *Player) Progress() <-chan Status {
	return p.progressChan
}

// Done возвращает канал, в который приходит сигнал об окончании очереди
func (p *Player) Done() <-chan bool {
	return p.doneChan
}

// Play воспроизводит один трек. Текущим трек становится даже при ошибке открытия.
func (p *Player) Play(item Item) error {
	return p.PlayQueue([]Item{item})
}

// PlayQueue заменяет очередь и начинает воспроизведение с первого трека, который удалось открыть.
// Если не открылся ни один, возвращается ошибка первого, а текущим остается последний трек очереди.
func (p *Player) PlayQueue(items []Item) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stopInternal()
	if len(items) == 0 {
		return ErrEmptyQueue
	}
	p.queue = append([]Item(nil), items...)
	return p.startFrom(0)
}

// startFrom запускает первый открывшийся трек, начиная с позиции from (вызывается под мьютексом)
func (p *Player) startFrom(from int) error {
	var first error
	for p.position = from; p.position < len(p.queue); p.position++ {
		err := p.startCurrent()
		if err == nil {
			return nil
		}
		if first == nil {
			first = err
		}
		log.Warn().Err(err).Str("key", p.queue[p.position].Key).Msg("трек пропущен")
	}
	p.position = len(p.queue) - 1
	return first
}

// Next переходит к следующему треку очереди, пропуская те, что не удалось открыть.
// После последнего трека очередь очищается и возвращается ErrQueueEnd.
// Если не открылся ни один из оставшихся, очередь тоже очищается и возвращается ошибка первого из них.
func (p *Player) Next() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.queue) == 0 {
		return ErrQueueEnd
	}
	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
		p.gain = nil
	}
	p.closeStreams()

	if p.position+1 >= len(p.queue) {
		p.stopInternal()
		p.signalDone()
		return ErrQueueEnd
	}
	if err := p.startFrom(p.position + 1); err != nil {
		p.stopInternal()
		p.signalDone()
		return err
	}
	return nil
}

// startCurrent запускает трек под текущей позицией очереди (вызывается под мьютексом)
func (p *Player) startCurrent() error {
	item := p.queue[p.position]
	p.generation++
	generation := p.generation

	streamReader, err := streaming.Open(p.ctx, item.Source, streaming.DefaultBufferSize)
	if err != nil {
		return fmt.Errorf("ошибка создания потокового ридера: %w", err)
	}
	p.streamReader = streamReader

	streamer, format, err := mp3.Decode(streamReader)
	if err != nil {
		p.closeStreams()
		return fmt.Errorf("ошибка декодирования MP3: %w", err)
	}
	p.streamer = streamer

	// speaker инициализируется один раз, треки с другой частотой передискретизируются
	if !p.isInitialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/5)); err != nil {
			p.closeStreams()
			return fmt.Errorf("ошибка инициализации динамиков: %w", err)
		}
		p.isInitialized = true
		p.sampleRate = format.SampleRate
	}

	var source beep.Streamer = streamer
	if format.SampleRate != p.sampleRate {
		source = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}

	p.ctrl = &beep.Ctrl{Streamer: source}
	p.gain = &effects.Volume{Streamer: p.ctrl, Base: 2}
	p.applyVolume()
	p.isPaused = false

	speaker.Play(beep.Seq(p.gain, beep.Callback(func() {
		// Колбэк выполняется под блокировкой speaker, поэтому переход - в отдельной горутине
		go p.trackEnded(generation)
	})))

	go p.monitorProgress(format, generation)

	return nil
}

// trackEnded переходит к следующему треку, пропуская те, что не удалось открыть
func (p *Player) trackEnded(generation int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.closed || generation != p.generation {
		return
	}
	p.ctrl = nil
	p.gain = nil
	p.closeStreams()

	if p.position+1 < len(p.queue) && p.startFrom(p.position+1) == nil {
		return
	}
	p.stopInternal()
	p.signalDone()
}

func (p *Player) signalDone() {
	if p.closed {
		return
	}
	select {
	case p.doneChan <- true:
	default:
	}
}

// Pause приостанавливает или возобновляет воспроизведение
func (p *Player) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.isPaused = !p.isPaused
		p.ctrl.Paused = p.isPaused
		speaker.Unlock()
	}
}

// AdjustVolume меняет громкость на delta и возвращает новое значение.
// Громкость сохраняется между треками.
func (p *Player) AdjustVolume(delta float64) float64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.volume = min(max(p.volume+delta, MinVolume), MaxVolume)
	if p.gain != nil {
		speaker.Lock()
		p.applyVolume()
		speaker.Unlock()
	}
	return p.volume
}

// Volume возвращает текущую громкость
func (p *Player) Volume() float64 {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.volume
}

func (p *Player) applyVolume() {
	p.gain.Volume = p.volume
	p.gain.Silent = p.volume <= MinVolume
}

// Stop останавливает воспроизведение и очищает очередь
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopInternal()
}

// stopInternal должен вызываться под мьютексом
func (p *Player) stopInternal() {
	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
		p.gain = nil
	}
	p.closeStreams()
	p.generation++
	p.queue = nil
	p.position = 0
	p.isPaused = false
}

func (p *Player) closeStreams() {
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.streamReader != nil {
		p.streamReader.Close()
		p.streamReader = nil
	}
}

// Close закрывает плеер и освобождает ресурсы
func (p *Player) Close() error {
	p.cancel()

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return nil
	}
	p.stopInternal()
	p.closed = true
	close(p.progressChan)
	close(p.doneChan)
	return nil
}

// IsPlaying возвращает true, если трек воспроизводится
func (p *Player) IsPlaying() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.ctrl != nil && !p.isPaused
}

// CurrentItem возвращает текущий трек очереди или nil
func (p *Player) CurrentItem() *Item {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if len(p.queue) == 0 {
		return nil
	}
	item := p.queue[p.position]
	return &item
}

// Queue возвращает копию очереди и позицию текущего трека
func (p *Player) Queue() ([]Item, int) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return append([]Item(nil), p.queue...), p.position
}

// monitorProgress отправляет обновления статуса раз в секунду, пока играет трек generation
func (p *Player) monitorProgress(format beep.Format, generation int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastPosition := time.Duration(-1)
	stuckCount := 0

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
		}

		p.mutex.RLock()
		if p.closed || generation != p.generation || p.streamer == nil {
			p.mutex.RUnlock()
			return
		}

		speaker.Lock()
		current := format.SampleRate.D(p.streamer.Position())
		total := format.SampleRate.D(p.streamer.Len())
		speaker.Unlock()

		// Позиция не меняется без паузы - поток не успевает загружаться
		if !p.isPaused && current == lastPosition {
			stuckCount++
		} else {
			stuckCount = 0
		}
		lastPosition = current

		status := Status{
			Item:       p.queue[p.position],
			Position:   p.position,
			QueueLen:   len(p.queue),
			Current:    current,
			Total:      total,
			IsPlaying:  !p.isPaused,
			StuckCount: stuckCount,
			Volume:     p.volume,
		}
		select {
		case p.progressChan <- status:
		default:
		}
		p.mutex.RUnlock()
	}
}
