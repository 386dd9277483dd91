// Package app wires configuration, rule list, walker and output together.
package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/treeward/treeward/internal/config"
	"github.com/treeward/treeward/internal/logger"
	"github.com/treeward/treeward/internal/rules"
)

const (
	// StateDirName is the per-working-copy state directory; it is covered
	// by a built-in ignore rule so scans never descend into it.
	StateDirName = ".treeward"
	ruleFileName = "ignore"
)

// App encapsulates one command invocation.
type App struct {
	cfg *config.Config
	log *logger.Logger
	// Output is the destination for command results (not log messages).
	Output io.Writer
}

// New creates an App from the parsed configuration.
func New(cfg *config.Config) *App {
	color.NoColor = !cfg.UseColors

	var output io.Writer = os.Stdout
	if cfg.OutputFile != "" {
		file, err := os.Create(cfg.OutputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: cannot create output file: %v\n", err)
			os.Exit(1)
		}
		// The file is closed by main once the run finishes.
		output = file
	}

	log := logger.New(os.Stderr, cfg.Verbose, cfg.UseColors)
	if cfg.LogLevel != "" {
		log.SetLevel(cfg.LogLevel)
	} else if cfg.Quiet {
		log.WithLevel(logger.LevelWarn)
	}

	return &App{cfg: cfg, log: log, Output: output}
}

// Run executes the selected command and returns the process exit code.
func (a *App) Run() int {
	if a.cfg.ShowVersion {
		fmt.Fprintf(a.Output, "treeward version %s\n", a.cfg.Version)
		return 0
	}

	root, ok := a.validateRoot()
	if !ok {
		return 1
	}

	switch a.cfg.Command {
	case "scan":
		return a.runScan(root)
	case "ignore":
		return a.runIgnore(root)
	}
	a.log.Error("unknown command %q (expected \"scan\" or \"ignore\")", a.cfg.Command)
	return 2
}

func (a *App) validateRoot() (string, bool) {
	absRoot, err := filepath.Abs(a.cfg.RootDir)
	if err != nil {
		a.log.Error("invalid root directory path %q: %v", a.cfg.RootDir, err)
		return "", false
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			a.log.Error("root directory %q not found", absRoot)
		} else {
			a.log.Error("cannot access root directory %q: %v", absRoot, err)
		}
		return "", false
	}
	if !info.IsDir() {
		a.log.Error("path %q is not a directory", absRoot)
		return "", false
	}
	return absRoot, true
}

func (a *App) rulePath(root string) string {
	return filepath.Join(root, StateDirName, ruleFileName)
}

// newList creates a rule list holding only the built-in rules.
func (a *App) newList() (*rules.List, error) {
	list := rules.NewList(rules.WithLogger(a.log))
	if err := list.AddBuiltins("./" + StateDirName + "/"); err != nil {
		return nil, err
	}
	return list, nil
}

// loadList creates the rule list and loads the persisted user rules, if a
// rule file exists.
func (a *App) loadList(root string) (*rules.List, error) {
	list, err := a.newList()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(a.rulePath(root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.log.Debug("no ignore list found at %s", a.rulePath(root))
			return list, nil
		}
		return nil, err
	}
	defer f.Close()

	n, err := list.Load(f)
	if err != nil {
		return nil, err
	}
	a.log.Debug("loaded %d ignore patterns from %s", n, a.rulePath(root))
	return list, nil
}

// saveList persists the user rules, creating the state directory first.
func (a *App) saveList(root string, list *rules.List) error {
	if err := os.MkdirAll(filepath.Join(root, StateDirName), 0o755); err != nil {
		return err
	}
	f, err := os.Create(a.rulePath(root))
	if err != nil {
		return err
	}
	if err := list.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
