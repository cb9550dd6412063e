package app

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/wahaj323/quizengine/internal/router"
	"github.com/wahaj323/quizengine/internal/screen"
	"github.com/wahaj323/quizengine/internal/screens/catalog"
	"github.com/wahaj323/quizengine/internal/screens/take"
	"github.com/wahaj323/quizengine/internal/session"
	"github.com/wahaj323/quizengine/internal/ui/layout"
)

// Options configures the terminal client.
type Options struct {
	Backend screen.Backend

	// CourseID filters the catalog. Empty lists every course.
	CourseID string

	// QuizID starts an attempt right away, on top of the catalog.
	QuizID string

	SessionOptions []session.Option
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	user   string
	start  tea.Cmd
	width  int
	height int
}

// newAppModel creates a new AppModel with the catalog screen.
func newAppModel(opts Options) AppModel {
	home := catalog.New(opts.Backend, opts.CourseID, opts.SessionOptions...)
	m := AppModel{
		router: router.New(home),
		user:   opts.Backend.UserID(),
	}
	m.start = home.Init()
	if opts.QuizID != "" {
		m.start = tea.Batch(m.start, router.PushCmd(take.New(opts.Backend, opts.QuizID, opts.SessionOptions...)))
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	return m.start
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render composes header, active screen and footer.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, m.user, status, m.width)

	footerHints := []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until the learner quits or
// ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
