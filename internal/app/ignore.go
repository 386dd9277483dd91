package app

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/treeward/treeward/internal/rules"
	"github.com/treeward/treeward/internal/walker"
)

// runIgnore edits, shows or applies the stored ignore list:
//
//	ignore [append|prepend|at=N] pattern...
//	ignore dump
//	ignore load
//	ignore test path...
func (a *App) runIgnore(root string) int {
	args := a.cfg.Args
	if len(args) == 0 {
		a.log.Error(`ignore needs a subcommand: "append", "prepend", "at=N", "dump", "load" or "test"`)
		return 2
	}

	switch args[0] {
	case "dump":
		return a.ignoreDump(root)
	case "load":
		return a.ignoreLoad(root, os.Stdin)
	case "test":
		return a.ignoreTest(root, args[1:])
	}

	pos := rules.PositionEnd
	patterns := args
	switch {
	case args[0] == "append":
		patterns = args[1:]
	case args[0] == "prepend":
		pos = rules.PositionStart
		patterns = args[1:]
	case strings.HasPrefix(args[0], "at="):
		n, err := strconv.Atoi(args[0][len("at="):])
		if err != nil || n < 0 {
			a.log.Error("invalid insertion position %q", args[0])
			return 2
		}
		pos = rules.Position(n)
		patterns = args[1:]
	}
	if len(patterns) == 0 {
		a.log.Error("no patterns given")
		return 2
	}

	list, err := a.loadList(root)
	if err != nil {
		a.log.Error("cannot load ignore list: %v", err)
		return 1
	}
	if err := list.Insert(patterns, pos); err != nil {
		a.log.Error("cannot add patterns: %v", err)
		return 1
	}
	if err := a.saveList(root, list); err != nil {
		a.log.Error("cannot save ignore list: %v", err)
		return 1
	}
	return 0
}

// ignoreDump prints the stored user rules; with --verbose each line is
// prefixed with its insertion index.
func (a *App) ignoreDump(root string) int {
	list, err := a.loadList(root)
	if err != nil {
		a.log.Error("cannot load ignore list: %v", err)
		return 1
	}
	for i, text := range list.Dump() {
		if a.cfg.Verbose {
			fmt.Fprintf(a.Output, "%3d: %s\n", i, text)
		} else {
			fmt.Fprintln(a.Output, text)
		}
	}
	return 0
}

// ignoreLoad replaces the stored user rules with patterns read from r,
// separated by newlines or NULs.
func (a *App) ignoreLoad(root string, r io.Reader) int {
	data, err := io.ReadAll(r)
	if err != nil {
		a.log.Error("cannot read patterns: %v", err)
		return 1
	}
	var patterns []string
	for _, field := range strings.FieldsFunc(string(data), func(c rune) bool {
		return c == '\n' || c == 0
	}) {
		if strings.TrimSpace(field) != "" {
			patterns = append(patterns, field)
		}
	}

	list, err := a.newList()
	if err != nil {
		a.log.Error("cannot build rule list: %v", err)
		return 1
	}
	if err := list.Insert(patterns, rules.PositionEnd); err != nil {
		a.log.Error("cannot load patterns: %v", err)
		return 1
	}
	if err := a.saveList(root, list); err != nil {
		a.log.Error("cannot save ignore list: %v", err)
		return 1
	}
	if !a.cfg.Quiet {
		plural := "s"
		if len(patterns) == 1 {
			plural = ""
		}
		fmt.Fprintf(a.Output, "%d pattern%s loaded.\n", len(patterns), plural)
	}
	return 0
}

// ignoreTest reports what a scan would decide for each given path.
func (a *App) ignoreTest(root string, paths []string) int {
	if len(paths) == 0 {
		a.log.Error("no paths given")
		return 2
	}
	list, err := a.loadList(root)
	if err != nil {
		a.log.Error("cannot load ignore list: %v", err)
		return 1
	}
	for _, path := range paths {
		status, err := walker.ClassifyPath(root, path, list)
		if err != nil {
			a.log.Error("cannot classify %q: %v", path, err)
			return 1
		}
		fmt.Fprintf(a.Output, "%-8s %s\n", status, path)
	}
	return 0
}
