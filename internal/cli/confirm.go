package cli

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	// Interactive reports whether a question can be asked at all.
	Interactive() bool
	Confirm(title string) (bool, error)
}

// TerminalConfirmer prompts on the controlling terminal.
type TerminalConfirmer struct{}

// NewTerminalConfirmer creates a confirmer backed by a huh dialog
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{}
}

// Interactive is true when stdin and stdout are both terminals.
func (TerminalConfirmer) Interactive() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Confirm shows the question with No preselected.
func (TerminalConfirmer) Confirm(title string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Description("This cannot be undone.").
		Affirmative("Delete").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
