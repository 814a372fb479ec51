// Package editor suspends the widget and opens an article source in the
// configured external editor.
package editor

import (
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type Editor struct {
	Editing   bool   // Is the editor open
	EditorCmd string // Command to open the editor on shell, may include flags
}

// EditingFinished is emitted when the editor is closed.
type EditingFinished struct{}

// EditArticle opens the article source in the editor.
func (m *Editor) EditArticle(path string) tea.Cmd {
	m.Editing = true

	parts := strings.Fields(m.EditorCmd)
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	args := append(parts[1:], path)

	return tea.ExecProcess(exec.Command(parts[0], args...), func(err error) tea.Msg {
		return EditingFinished{}
	})
}

func (m Editor) Update(msg tea.Msg) (Editor, tea.Cmd) {
	switch msg.(type) {
	case EditingFinished:
		m.Editing = false
	}
	return m, nil
}
