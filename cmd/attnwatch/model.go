package main

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kylesnowschwartz/copilot-attnwatch/attention"
	"github.com/kylesnowschwartz/copilot-attnwatch/status"
	"github.com/kylesnowschwartz/copilot-attnwatch/workspace"
)

// conversationsMsg carries the current attention list after a coalesced
// change notification.
type conversationsMsg []attention.Conversation

// waitForConversations blocks on sub and wraps the result as a tea.Msg.
// Closing sub unblocks the pending Cmd with a nil message instead of
// leaking a goroutine.
func waitForConversations(sub chan []attention.Conversation) tea.Cmd {
	return func() tea.Msg {
		convs, ok := <-sub
		if !ok {
			return nil
		}
		return conversationsMsg(convs)
	}
}

type model struct {
	root    string
	watcher *attention.Watcher
	sub     chan []attention.Conversation

	conversations []attention.Conversation
	cursor        int
	width         int
	height        int
}

func newModel(root string, watcher *attention.Watcher, sub chan []attention.Conversation) model {
	return model{root: root, watcher: watcher, sub: sub}
}

func (m model) Init() tea.Cmd {
	return waitForConversations(m.sub)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case conversationsMsg:
		m.conversations = msg
		if m.cursor >= len(m.conversations) {
			m.cursor = len(m.conversations) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, waitForConversations(m.sub)

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.conversations)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		}
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if len(m.conversations) == 0 {
		dim := lipgloss.NewStyle().Foreground(colorTextDim)
		b.WriteString(dim.Render("No conversations currently need your attention."))
		b.WriteString("\n")
	} else {
		for i, c := range m.conversations {
			b.WriteString(m.renderRow(c, i == m.cursor))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m model) renderHeader() string {
	accent := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	dim := lipgloss.NewStyle().Foreground(colorTextDim)
	return accent.Render("attnwatch") + "  " + dim.Render(m.root)
}

func (m model) renderFooter() string {
	dim := lipgloss.NewStyle().Foreground(colorTextDim)
	return dim.Render("j/k move  q quit")
}

func (m model) renderRow(c attention.Conversation, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}

	codeStyle := lipgloss.NewStyle().Bold(true).Foreground(statusColor(c.Status.Code))
	code := codeStyle.Render(padCode(c.Status.Code))

	name := workspace.ProjectName(c.Metadata)
	if name == "Unknown" {
		name = c.ID
	}

	age := ""
	if !c.LastModified.IsZero() {
		age = " (" + time.Since(c.LastModified).Round(time.Second).String() + " ago)"
	}

	line := fmt.Sprintf("%s%s %s%s", marker, code, name, age)
	if c.Status.Reason != "" {
		dim := lipgloss.NewStyle().Foreground(colorTextDim)
		line += "\n      " + dim.Render(c.Status.Reason)
	}
	return line
}

func statusColor(code status.Code) lipgloss.AdaptiveColor {
	switch code {
	case status.CodeWaitingForUser:
		return colorWaitingForUser
	case status.CodeWaitingForApproval:
		return colorWaitingForApproval
	default:
		return colorReady
	}
}

func padCode(code status.Code) string {
	s := string(code)
	const width = len("waiting-for-approval")
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
