package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"psmux-uninstall/pkg/config"
	"psmux-uninstall/pkg/confirm"
	"psmux-uninstall/pkg/logger"
	"psmux-uninstall/pkg/pathenv"
	"psmux-uninstall/pkg/procctl"
	"psmux-uninstall/pkg/ui"
	"psmux-uninstall/pkg/uninstall"
)

func getConfigPath(opts *cliOptions) string {
	if p := strings.TrimSpace(opts.configPath); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv("PSMUX_UNINSTALL_CONFIG"))
}

// loadConfig layers flags over file and environment values, then validates.
func loadConfig(opts *cliOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath(opts))
	if err != nil {
		return nil, &exitError{code: 2, msg: fmt.Sprintf("Error loading config: %v", err)}
	}
	if opts.installDir != "" {
		cfg.InstallDir = opts.installDir
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		lines := make([]string, 0, len(errs)+1)
		lines = append(lines, "Invalid configuration:")
		for _, e := range errs {
			lines = append(lines, "  - "+e.Error())
		}
		return nil, &exitError{code: 2, msg: strings.Join(lines, "\n")}
	}
	configureLogging(cfg, opts.debug, os.Stderr)
	return cfg, nil
}

// configureLogging keeps log lines off the console unless debug is set; the
// printer already reports every stage outcome to the operator.
func configureLogging(cfg *config.Config, debug bool, console io.Writer) {
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetOutput(nil)
	if debug {
		logger.SetLevel(logger.DEBUG)
		logger.SetOutput(console)
	}
	if cfg.Logging.File == "" {
		logger.DisableFileLogging()
		return
	}
	if err := logger.EnableFileLogging(cfg.Logging.File, cfg.Logging.MaxSizeMB); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to enable file logging: %v\n", err)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func selectPrompter(opts *cliOptions, in *os.File, out io.Writer) confirm.Prompter {
	switch {
	case opts.yes:
		return confirm.Yes
	case opts.keepData:
		return confirm.No
	case isTerminal(in):
		return &confirm.ReadlinePrompter{Stdin: in, Stdout: out}
	default:
		return confirm.NewLinePrompter(in, out)
	}
}

func selectWaiter(out *os.File) ui.Waiter {
	if isTerminal(out) {
		return ui.SpinnerWaiter{Out: out}
	}
	return ui.SleepWaiter{}
}

func uninstallOptions(cfg *config.Config, dryRun bool) uninstall.Options {
	return uninstall.Options{
		InstallDir:    cfg.InstallDir,
		DataDir:       cfg.DataDir,
		ProcessNames:  cfg.Shutdown.ProcessNames,
		StopArgs:      cfg.Shutdown.StopCommand,
		StopTimeout:   cfg.StopTimeout(),
		GracePeriod:   cfg.GracePeriod(),
		PathVar:       cfg.Environment.PathVar,
		ListSeparator: pathenv.ListSeparator,
		PromptTimeout: cfg.PromptTimeout(),
		DryRun:        dryRun,
	}
}

func systemDeps(cfg *config.Config, opts *cliOptions) uninstall.Deps {
	return uninstall.Deps{
		Runner:   procctl.ExecRunner{},
		Table:    procctl.SystemTable{},
		Store:    pathenv.UserStore(cfg.Environment.EnvFile),
		Prompter: selectPrompter(opts, os.Stdin, os.Stdout),
		Waiter:   selectWaiter(os.Stdout),
		Printer:  ui.NewPrinter(os.Stdout),
	}
}
