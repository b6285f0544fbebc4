// Command valet is a single-user conversational assistant REPL with
// hot-reloadable configuration and prompt templates.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/okonma/valet/pkg/config"
	"github.com/okonma/valet/pkg/engine"
	"github.com/okonma/valet/pkg/llm"
	"github.com/okonma/valet/pkg/logctl"
	"github.com/okonma/valet/pkg/memory"
	"github.com/okonma/valet/pkg/prompt"
)

func main() {
	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 && os.Args[1] == "init" {
		initCmd := flag.NewFlagSet("init", flag.ExitOnError)
		initCmd.Usage = func() {
			fmt.Fprintf(os.Stderr, "Usage: valet init [flags]\n\nCreate a starter configuration and prompt template.\n\nFlags:\n")
			initCmd.PrintDefaults()
		}
		dir := initCmd.String("dir", ".", "directory to initialize")
		_ = initCmd.Parse(os.Args[2:])

		if err := runInit(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		return
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: valet [flags]\n       valet init [flags]\n\nFlags:\n")
		flag.PrintDefaults()
	}

	configPath := flag.String("config", "valet.yaml", "path to configuration file")
	templatePath := flag.String("template", "system_prompt.tmpl", "path to system prompt template")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	sessionID := flag.String("session", "", "session identifier (default: random)")
	logFile := flag.String("log-file", "", "write logs to this file in addition to stderr")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*configPath, *templatePath, *sessionID, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv loads the .env file if it exists; a missing file is fine.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func run(configPath, templatePath, sessionID, logFile string) error {
	var sink io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec // log file, not a secret
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		sink = io.MultiWriter(os.Stderr, f)
	}

	logs := logctl.New(sink)

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required (set it in the environment or %s)", ".env")
	}

	loader := config.New(configPath, logs.Logger("app.config"))
	builder := prompt.New(templatePath, logs.Logger("app.template"))

	// The initial load is fatal: the assistant must not start without a
	// valid configuration and system template. Later reload failures are
	// absorbed by the loaders.
	if _, err := loader.Load(); err != nil {
		return err
	}
	if err := builder.Load(); err != nil {
		return err
	}

	client := llm.NewClient(
		os.Getenv("OPENROUTER_BASE_URL"),
		apiKey,
		logs.Logger("llm.client"),
		logs.Logger("llm.wire"),
	)

	eng := engine.New(loader, builder, &memory.Store{}, client, logs.Logger("app.prompt"))

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	return runREPL(eng, logs, sessionID)
}
