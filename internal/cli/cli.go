// Package cli parses command-line arguments, validates user input, and owns
// process-level concerns like exit codes. It translates flags into the
// application's internal configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/searchengine/internal/app"
)

// ExitError carries a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const usage = `searchengine - a metasearch engine and its artifact build pipeline.

Usage:
  searchengine build [options] [TARGET...]
  searchengine serve [options]

Commands:
  build   Run the build manifest, optionally restricted to the named targets.
  serve   Start the web frontend.

Options:
`

// Parse processes command-line arguments. It returns a populated app config,
// a boolean indicating the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("searchengine", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usage)
		flagSet.PrintDefaults()
	}

	var manifest string
	flagSet.StringVar(&manifest, "manifest", "build.hcl", "Path to the build manifest file or directory.")
	flagSet.StringVar(&manifest, "m", "build.hcl", "Path to the build manifest (shorthand).")
	configFlag := flagSet.String("config", "", "Path to the serve configuration file.")
	listenFlag := flagSet.String("listen", "", "Listen address override for serve.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Log level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 4, "Number of concurrent build workers.")

	if len(args) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}

	command := args[0]
	switch command {
	case app.CmdBuild, app.CmdServe:
	case "-h", "-help", "--help", "help":
		flagSet.Usage()
		return nil, true, nil
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q, expected 'build' or 'serve'", command)}
	}

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
	}

	cfg := &app.Config{
		Command:      command,
		ManifestPath: manifest,
		Targets:      flagSet.Args(),
		ConfigPath:   *configFlag,
		Listen:       *listenFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		WorkerCount:  *workersFlag,
	}

	if command == app.CmdServe && len(cfg.Targets) > 0 {
		return nil, false, &ExitError{Code: 2, Message: "serve takes no positional arguments"}
	}

	return cfg, false, nil
}
