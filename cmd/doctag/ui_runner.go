package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"doctag/internal/driver"
	"doctag/internal/source"
	"doctag/internal/ui"
	"doctag/internal/writetag"
)

type scanOutcome struct {
	fs      *source.FileSet
	results []driver.FileResult
	err     error
}

// runScanWithUI runs driver.Scan in a goroutine while a bubbletea
// progress model consumes its events in the foreground.
func runScanWithUI(ctx context.Context, title string, files []string, rules []*writetag.Rule, opts driver.ScanOptions) (*source.FileSet, []driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan scanOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		fs, results, err := driver.Scan(ctx, rules, optsCopy)
		outcomeCh <- scanOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
