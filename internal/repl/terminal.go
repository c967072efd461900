package repl

import (
	"errors"
	"os"

	"github.com/peterh/liner"
)

// Terminal is a line editor with persistent history
type Terminal struct {
	*liner.State
	historyPath string
}

// NewTerminal puts the terminal in line-editing mode and loads history
// from historyPath. An empty path disables history persistence.
func NewTerminal(historyPath string) *Terminal {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetMultiLineMode(false)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}
	}

	return &Terminal{State: state, historyPath: historyPath}
}

// Close saves history and restores the terminal
func (t *Terminal) Close() error {
	var saveErr error
	if t.historyPath != "" {
		f, err := os.Create(t.historyPath)
		if err == nil {
			_, saveErr = t.WriteHistory(f)
			if err := f.Close(); err != nil && saveErr == nil {
				saveErr = err
			}
		} else {
			saveErr = err
		}
	}
	return errors.Join(saveErr, t.State.Close())
}
