package main

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

const helpText = `Commands:
  /help            show this help
  /history         show the conversation so far
  /clear           clear the conversation
  /fullhistorylog  toggle logging of the full history on each call
  /loglevel        show current log levels
  /loglevel <component|all> <debug|info|warn|error>
                   change a component's log level
  /loggers         list every logger category
  /exit            quit`

// handleCommand dispatches a slash command. It reports whether the REPL
// should quit.
func (r *repl) handleCommand(line string) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case "/exit", "/quit":
		return true

	case "/help":
		fmt.Fprintln(r.out, helpText)

	case "/history":
		r.printHistory()

	case "/clear":
		r.eng.ClearHistory(r.sessionID)
		fmt.Fprintln(r.out, noticeStyle.Render("conversation cleared"))

	case "/fullhistorylog":
		r.logFullHistory = !r.logFullHistory
		if r.logFullHistory {
			fmt.Fprintln(r.out, noticeStyle.Render("full-history logging on"))
		} else {
			fmt.Fprintln(r.out, noticeStyle.Render("full-history logging off (current turn only)"))
		}

	case "/loglevel":
		r.handleLogLevel(fields[1:])

	case "/loggers":
		for _, name := range r.logs.AllLoggers() {
			fmt.Fprintln(r.out, "  "+name)
		}

	default:
		fmt.Fprintln(r.out, errorStyle.Render("unknown command "+fields[0]))
		fmt.Fprintln(r.out, dimStyle.Render("try /help"))
	}

	return false
}

func (r *repl) printHistory() {
	history := r.eng.History(r.sessionID)
	if len(history) == 0 {
		fmt.Fprintln(r.out, dimStyle.Render("no conversation history yet"))
		return
	}

	for i, turn := range history {
		label := humanStyle.Render("human")
		if turn.Role == "ai" {
			label = aiStyle.Render("ai")
		}
		fmt.Fprintf(r.out, "%3d  %s  %s\n", i+1, label, turn.Content)
	}
}

func (r *repl) handleLogLevel(args []string) {
	switch len(args) {
	case 0:
		st := r.logs.Status()
		fmt.Fprintf(r.out, "  root: %s\n", st.Root)

		names := make([]string, 0, len(st.Components))
		for name := range st.Components {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(r.out, "  %s: %s\n", name, st.Components[name])
		}

	case 2:
		level, err := zapcore.ParseLevel(args[1])
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render("unknown level "+args[1]))
			return
		}

		msg, err := r.logs.SetLevel(args[0], level)
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
			return
		}
		fmt.Fprintln(r.out, noticeStyle.Render(msg))

	default:
		fmt.Fprintln(r.out, dimStyle.Render("usage: /loglevel [component|all] [debug|info|warn|error]"))
	}
}
