package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
)

// errNotInteractive возвращается, когда требуется ответ пользователя, а терминала нет
var errNotInteractive = errors.New("нет интерактивного терминала")

// Prompter задает вопросы пользователю и показывает ход долгих операций
type Prompter interface {
	Confirm(title string) (bool, error)
	Select(title string, options []string) (string, error)
	Spin(ctx context.Context, title string, action func(context.Context) error) error
}

// terminalPrompter работает через huh, если stdin и stdout - терминал
type terminalPrompter struct {
	interactive bool
}

func newTerminalPrompter() *terminalPrompter {
	return &terminalPrompter{
		interactive: isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()),
	}
}

func (p *terminalPrompter) Confirm(title string) (bool, error) {
	if !p.interactive {
		return false, errNotInteractive
	}

	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Да").
		Negative("Нет").
		Value(&confirmed).
		Run()
	return confirmed, err
}

func (p *terminalPrompter) Select(title string, options []string) (string, error) {
	if !p.interactive {
		return "", errNotInteractive
	}

	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, o)
	}

	var selected string
	err := huh.NewSelect[string]().
		Height(10).
		Title(title).
		Options(opts...).
		Value(&selected).
		Run()
	return selected, err
}

// Spin выполняет action под спиннером; без терминала просто выполняет его
func (p *terminalPrompter) Spin(ctx context.Context, title string, action func(context.Context) error) error {
	if !p.interactive {
		return action(ctx)
	}
	return spinner.New().Title(title).Context(ctx).ActionWithErr(action).Run()
}
