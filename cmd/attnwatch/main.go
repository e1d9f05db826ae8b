// Command attnwatch is a terminal dashboard over the attnwatch core: it
// starts an attention.Watcher on a root directory and renders the
// delivered conversation list. It is a reference "shell" consumer of the
// core's one public interface, not the menu-bar/GUI shell the core itself
// stays agnostic to.
package main

import (
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/kylesnowschwartz/copilot-attnwatch/attention"
	"github.com/kylesnowschwartz/copilot-attnwatch/logevents"
)

func main() {
	// Detect terminal background ONCE, before Bubble Tea takes over --
	// termenv's OSC 11 query can fail once the alt screen is active. Tell
	// lipgloss explicitly so every AdaptiveColor agrees with it.
	hasDarkBg := termenv.HasDarkBackground()
	lipgloss.SetHasDarkBackground(hasDarkBg)

	var root, dumpPath string
	verbose := false

	for _, arg := range os.Args[1:] {
		switch {
		case arg == "--verbose":
			verbose = true
		case strings.HasPrefix(arg, "--dump-events="):
			dumpPath = strings.TrimPrefix(arg, "--dump-events=")
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", arg)
			os.Exit(1)
		default:
			root = arg
		}
	}

	if dumpPath != "" {
		runDump(dumpPath)
		return
	}

	if root == "" {
		fmt.Fprintln(os.Stderr, "usage: attnwatch [--verbose] <root-directory>")
		os.Exit(1)
	}

	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	sub := make(chan []attention.Conversation, 1)
	watcher := attention.NewWatcher()
	watcher.Logger = logger

	err := watcher.Start(root, func(convs []attention.Conversation) {
		select {
		case sub <- convs:
		default:
			// Drop the stale pending update; the fresher one below will
			// supersede it once the reader catches up.
			select {
			case <-sub:
			default:
			}
			sub <- convs
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Stop()

	m := newModel(root, watcher, sub)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runDump reads a single events.jsonl file, decodes it, and re-encodes
// each event back to stdout -- a one-shot path to eyeball how a log file
// decodes.
func runDump(path string) {
	events, err := logevents.ParseFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, e := range events {
		b, err := logevents.Encode(e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(b))
	}
}
