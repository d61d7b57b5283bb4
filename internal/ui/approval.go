package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/epuerta/codex-patch/internal/editor"
)

// chrome is the number of lines used around the body (title, buttons, help)
const chrome = 7

type approvalKeyMap struct {
	Yes    key.Binding
	No     key.Binding
	Left   key.Binding
	Right  key.Binding
	Enter  key.Binding
	Cancel key.Binding
}

var approvalKeys = approvalKeyMap{
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "approve")),
	No:     key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "deny")),
	Left:   key.NewBinding(key.WithKeys("left", "h", "tab"), key.WithHelp("←", "approve")),
	Right:  key.NewBinding(key.WithKeys("right", "l", "shift+tab"), key.WithHelp("→", "deny")),
	Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

// ApprovalModel is a bubble tea model asking whether a change may be written
type ApprovalModel struct {
	Title    string
	Body     string
	Action   string
	Approved bool // true = yes, false = no
	Done     bool // When true, the user has made a selection
	YesText  string
	NoText   string

	viewport viewport.Model
	ready    bool
}

// NewApprovalModel creates a new approval model
func NewApprovalModel(title, body, action string) ApprovalModel {
	return ApprovalModel{
		Title:    title,
		Body:     body,
		Action:   action,
		Approved: false, // Default to "no"
		YesText:  "Apply",
		NoText:   "Skip",
	}
}

// NewChangeApproval builds the approval prompt for a planned change
func NewChangeApproval(c *editor.Change) ApprovalModel {
	action := fmt.Sprintf("Apply %s to %s?", c.Op.Type(), c.Op.FilePath())
	return NewApprovalModel("Review patch", FormatChange(c), action)
}

// Init initializes the model
func (m ApprovalModel) Init() tea.Cmd {
	return nil
}

// Update handles updates to the model
func (m ApprovalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - chrome
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.Body)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, approvalKeys.Cancel):
			m.Done = true
			m.Approved = false
			return m, tea.Quit
		case key.Matches(msg, approvalKeys.Yes):
			m.Done = true
			m.Approved = true
			return m, tea.Quit
		case key.Matches(msg, approvalKeys.No):
			m.Done = true
			m.Approved = false
			return m, tea.Quit
		case key.Matches(msg, approvalKeys.Left):
			m.Approved = true
			return m, nil
		case key.Matches(msg, approvalKeys.Right):
			m.Approved = false
			return m, nil
		case key.Matches(msg, approvalKeys.Enter):
			m.Done = true
			return m, tea.Quit
		}
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the model
func (m ApprovalModel) View() string {
	var sb strings.Builder

	sb.WriteString(approvalTitleStyle.Render(m.Title))
	sb.WriteString("\n")

	if m.ready {
		sb.WriteString(m.viewport.View())
	} else {
		sb.WriteString(m.Body)
	}
	sb.WriteString("\n")

	sb.WriteString(approvalActionStyle.Render(m.Action))
	sb.WriteString("\n\n")

	yes := m.YesText
	no := m.NoText
	if m.Approved {
		yes = selectedStyle.Render(yes)
	} else {
		no = selectedStyle.Render(no)
	}
	sb.WriteString(fmt.Sprintf("%s %s", yesButtonStyle.Render(yes), noButtonStyle.Render(no)))
	sb.WriteString("\n\n")

	sb.WriteString(helpStyle.Render("(y/n, arrows to select, Enter to confirm, ↑/↓ to scroll, Esc to cancel)"))

	return sb.String()
}

// Approver asks on a terminal before each change is written. It implements
// editor.Approver.
type Approver struct {
	Input  io.Reader
	Output io.Writer
	// TTY reads keys from the controlling terminal, for when stdin carries data.
	TTY bool
}

// Approve runs the approval UI for c and returns the user's decision
func (a *Approver) Approve(c *editor.Change) (bool, error) {
	var opts []tea.ProgramOption
	switch {
	case a.TTY:
		opts = append(opts, tea.WithInputTTY())
	case a.Input != nil:
		opts = append(opts, tea.WithInput(a.Input))
	}
	if a.Output != nil {
		opts = append(opts, tea.WithOutput(a.Output))
	}

	p := tea.NewProgram(NewChangeApproval(c), opts...)
	result, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("error running approval UI: %w", err)
	}

	finalModel, ok := result.(ApprovalModel)
	if !ok {
		return false, fmt.Errorf("unexpected model type: %T", result)
	}

	return finalModel.Done && finalModel.Approved, nil
}
