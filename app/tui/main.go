package main

import (
	"fmt"
	"log"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/knipferrc/teacup/code"
	"github.com/samber/lo"

	"github.com/tomwolanski/site_search/builder"
	"github.com/tomwolanski/site_search/editor"
	"github.com/tomwolanski/site_search/indexfile"
	"github.com/tomwolanski/site_search/search"
	"github.com/tomwolanski/site_search/search/bleve_searcher"
	"github.com/tomwolanski/site_search/utils"
)

var ListStyle = lipgloss.NewStyle().MarginTop(1)

// Main app model for bubbletea. The model owns its searcher; there is no
// shared state outside of it.
type Model struct {
	width     int                    // width of terminal
	height    int                    // height of terminal
	preview   *code.Bubble           // the preview widget model
	list      list.Model             // the list widget model
	textInput textinput.Model        // the input search widget model
	searcher  search.ArticleSearcher // the matcher over the site index
	editor    editor.Editor          // for opening up external editor.
	config    *utils.Config
}

// Create a new model for the app
func New(searcher search.ArticleSearcher, config *utils.Config) *Model {
	return &Model{
		list:      createListModel(),
		textInput: createTextInput(),
		searcher:  searcher,
		editor:    editor.Editor{Editing: false, EditorCmd: config.Editor},
		config:    config,
	}
}

func (m *Model) setListSize() {
	width := m.width
	height := m.height

	// If preview is open take half width
	if m.preview != nil {
		width = m.width / 2
	}

	m.list.SetSize(width, height-2)
}

func (m *Model) setPreviewSize() {
	if m.preview != nil {
		m.preview.SetSize(m.width/2, m.height)
	}
}

func (m *Model) updateSize(width, height int) {
	m.height = height
	m.width = width

	m.setListSize()
}

func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Formats a match fragment for the single-line list display.
// Strips highlight escapes, removes newlines and collapses whitespace.
func formatContent(content string) string {
	s := stripansi.Strip(content)
	s = strings.ReplaceAll(s, "\n", " ↵ ")
	re := regexp.MustCompile(`\s{2,}|\t+`)
	return string(re.ReplaceAll([]byte(s), []byte(" ")))
}

// The update fn for the bubbletea model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case ResultMsg:
		if msg.Err != nil {
			log.Print("search failed: ", msg.Err)
		}
		m.list.SetItems(lo.Map(msg.Hits, func(hit search.ArticleMatch, _ int) list.Item {
			return Article{
				title:     hit.Title,
				date:      hit.Date,
				path:      hit.Path,
				permalink: hit.Permalink,
				fragment:  formatContent(hit.Fragment),
			}
		}))
	case tea.KeyMsg:
		// Keybindings:
		// Tab - move down in the list
		// Shift+Tab - move up in the list
		// Enter - toggle preview for the selected article
		// Esc - close preview
		// Ctrl+R - rebuild the index from the content dir
		// Ctrl+K - Preview line up
		// Ctrl+J - Preview line down
		// Ctrl+O - Open the article source in the editor
		// Ctrl+C - quit the application
		switch msg.String() {
		case "tab":
			m.list.CursorDown()
		case "shift+tab":
			m.list.CursorUp()
		case "enter":
			// Enter previews instead of submitting, so the widget
			// never navigates away mid-search.
			if m.list.SelectedItem() != nil {
				article := m.list.SelectedItem().(Article)
				codeModel := code.New(false, true, lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})
				codeModel.SetSize(m.width/2, m.height)
				cmds = append(cmds, codeModel.SetFileName(path.Join(m.config.SiteRoot, article.path)))
				m.preview = &codeModel
			}
		case "esc":
			m.preview = nil
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			return m, m.rebuildIndex()
		case "ctrl+k":
			if m.preview != nil {
				m.preview.Viewport.LineUp(5)
			}
		case "ctrl+j":
			if m.preview != nil {
				m.preview.Viewport.LineDown(5)
			}
		case "ctrl+o":
			if m.list.SelectedItem() != nil {
				article := m.list.SelectedItem().(Article)
				cmd = m.editor.EditArticle(path.Join(m.config.SiteRoot, article.path))
				cmds = append(cmds, cmd)
			}
		default:
			log.Print(msg.String())
		}
	case tea.WindowSizeMsg:
		m.updateSize(msg.Width, msg.Height)
	}

	// Update the widgets sizes
	m.setListSize()
	m.setPreviewSize()

	// save to compare if changed
	oldValue := m.textInput.Value()

	// pass on message to the other components
	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	m.editor, cmd = m.editor.Update(msg)
	cmds = append(cmds, cmd)

	if m.preview != nil {
		var newPreview code.Bubble
		newPreview, cmd = m.preview.Update(msg)
		cmds = append(cmds, cmd)
		m.preview = &newPreview
	}

	// If input has changed, search for the new value. Each keystroke
	// replaces the list wholesale, so stale results never linger.
	newValue := m.textInput.Value()
	if oldValue != newValue {
		return m, func() tea.Msg {
			results := m.searcher.Search(newValue)
			return ResultMsg{results}
		}
	}

	return m, tea.Batch(cmds...)
}

// rebuildIndex rescans the content dir, rewrites the index file and
// reloads the matcher, then re-runs the current query.
func (m Model) rebuildIndex() tea.Cmd {
	return func() tea.Msg {
		entries, err := builder.Build(m.config.ContentRoot(), m.config.Extensions)
		if err != nil {
			return ResultMsg{search.SearchResult{Err: err}}
		}
		if err := indexfile.Write(m.config.IndexFile(), entries); err != nil {
			log.Print("failed to write index file: ", err)
		}
		if err := m.searcher.Load(entries); err != nil {
			return ResultMsg{search.SearchResult{Err: err}}
		}
		return ResultMsg{m.searcher.Search(m.textInput.Value())}
	}
}

// This is emitted when new results are available for the current query.
type ResultMsg struct {
	search.SearchResult
}

// View fn for bubbletea model
func (m Model) View() string {
	listContent := ListStyle.Render(m.list.View())

	// render list
	innerContent := listContent

	// if preview then preview takes up half the width
	if m.preview != nil {
		innerContent = lipgloss.JoinHorizontal(lipgloss.Left,
			listContent,      // render list
			m.preview.View(), // render preview.
		)
	}

	// render the input box and the content
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.textInput.View(), // render the text input
		innerContent,       // render the main content
	)
}

func main() {
	// Setup logging.
	homedir, _ := os.UserHomeDir()
	logPath := path.Join(homedir, "/.config/site_search/debug.log")
	f, err := tea.LogToFile(logPath, "debug")
	if err != nil {
		log.Fatal(err)
	}

	defer f.Close()

	// read application config
	config := utils.NewConfig()

	// create the matcher.
	searcher, err := bleve_searcher.NewBleveSearcher(bleve_searcher.Config{MaxResults: config.MaxResults})
	if err != nil {
		log.Fatal(err)
	}

	// Load the prebuilt index. A failed load is not fatal and not
	// surfaced: the widget stays usable and every query returns no hits.
	if entries, err := loadEntries(config); err != nil {
		log.Print("index load failed: ", err)
	} else if err := searcher.Load(entries); err != nil {
		log.Print("indexing failed: ", err)
	}

	// Create a new bubbletea Model
	m := New(&searcher, config)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		panic(err)
	}
}

// loadEntries prefers the published index URL, falling back to the
// local index file.
func loadEntries(config *utils.Config) ([]search.Entry, error) {
	if config.IndexURL != "" {
		return indexfile.Fetch(config.IndexURL)
	}
	return indexfile.Load(config.IndexFile())
}

// Article implements list.Item interface
type Article struct {
	title     string
	date      time.Time
	path      string
	permalink string
	fragment  string
}

func (a Article) Title() string {
	if a.date.IsZero() {
		return a.title
	}
	return fmt.Sprintf("%s · %s", a.title, a.date.Format("2006-01-02"))
}

func (a Article) Description() string {
	if a.fragment == "" {
		return a.permalink
	}
	return a.permalink + "  " + a.fragment
}
func (a Article) FilterValue() string { return "" }

// Create the list model
func createListModel() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.SetShowFilter(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.Styles.NoItems = l.Styles.NoItems.Copy().PaddingLeft(2)
	return l
}

// Create the text input model
func createTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "query"
	ti.Prompt = "Search:"
	ti.PromptStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("62")).
		Foreground(lipgloss.Color("230")).
		MarginRight(1).
		MarginLeft(2).
		Padding(0, 1)
	ti.Focus()
	return ti
}
