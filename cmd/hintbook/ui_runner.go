package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"hintbook/internal/pipeline"
	"hintbook/internal/ui"
)

type renderOutcome struct {
	session *pipeline.Session
	docs    []pipeline.Document
	err     error
}

// renderDir opens a session and rewrites srcDir. Open errors leave the
// session nil.
func renderDir(ctx context.Context, opts pipeline.Options, srcDir string, dirOpts pipeline.DirOptions) renderOutcome {
	s, err := pipeline.Open(ctx, opts)
	if err != nil {
		return renderOutcome{err: err}
	}
	docs, err := s.ProcessDir(ctx, srcDir, dirOpts)
	return renderOutcome{session: s, docs: docs, err: err}
}

// renderDirWithUI runs renderDir in the background while a progress view
// consumes its events. Quitting the view cancels the run.
func renderDirWithUI(ctx context.Context, title string, files []string, opts pipeline.Options, srcDir string, dirOpts pipeline.DirOptions) (renderOutcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan renderOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = pipeline.ChannelSink{Ch: events}
		outcomeCh <- renderDir(ctx, optsCopy, srcDir, dirOpts)
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()

	// Представление могло закрыться раньше: останавливаем запуск и дочитываем события
	cancel()
	for range events {
	}
	return <-outcomeCh, uiErr
}
