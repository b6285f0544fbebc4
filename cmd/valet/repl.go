package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/okonma/valet/pkg/engine"
	"github.com/okonma/valet/pkg/logctl"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	humanStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	aiStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// repl is the interactive loop around the engine. All terminal output goes
// through out so commands stay testable.
type repl struct {
	eng       *engine.Engine
	logs      *logctl.Manager
	sessionID string

	// logFullHistory toggles the engine's per-call logging mode
	// (/fullhistorylog).
	logFullHistory bool

	out io.Writer
	md  *glamour.TermRenderer
}

func runREPL(eng *engine.Engine, logs *logctl.Manager, sessionID string) error {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}

	r := &repl{
		eng:       eng,
		logs:      logs,
		sessionID: sessionID,
		out:       os.Stdout,
		md:        md,
	}

	fmt.Fprintln(r.out, noticeStyle.Render("valet ready. Type /help for commands, /exit to quit."))
	fmt.Fprintln(r.out, dimStyle.Render("session "+sessionID))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		// One reload check per turn, announced so edits are visible.
		configChanged, templateChanged := r.eng.CheckHotReload()
		if configChanged {
			fmt.Fprintln(r.out, noticeStyle.Render("configuration reloaded"))
		}
		if templateChanged {
			fmt.Fprintln(r.out, noticeStyle.Render("system template reloaded"))
		}

		fmt.Fprint(r.out, promptStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.handleCommand(line); quit {
				return nil
			}
			continue
		}

		reply, err := r.eng.SendMessage(context.Background(), line, r.sessionID, r.logFullHistory)
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("error: "+err.Error()))
			continue
		}

		r.printReply(reply)
	}
}

// printReply renders the assistant's reply as markdown, falling back to the
// raw text if rendering fails.
func (r *repl) printReply(reply string) {
	out, err := r.md.Render(reply)
	if err != nil {
		out = reply + "\n"
	}
	fmt.Fprint(r.out, out)
}
