// Package config holds the command-line configuration.
package config

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"
)

// Config holds all application settings.
type Config struct {
	// Directory settings
	RootDir string

	// Logging settings
	Verbose   bool
	Quiet     bool
	LogLevel  string
	NoColor   bool
	UseColors bool

	// Output settings
	OutputFile  string
	JSONOutput  bool
	TreeOutput  bool
	ShowSkipped bool

	// Scan settings
	BruteForce bool
	Watch      bool
	Debounce   time.Duration

	// Version info
	ShowVersion bool
	Version     string

	// Subcommand and its remaining arguments.
	Command string
	Args    []string
}

// New creates a Config from the command line.
func New() *Config {
	c := &Config{Version: "0.3.0"}

	flag.StringVarP(&c.RootDir, "dir", "d", ".", "The working copy root directory")
	flag.BoolVarP(&c.Verbose, "verbose", "v", false, "Enable verbose logging (and indices in dumps)")
	flag.BoolVarP(&c.Quiet, "quiet", "q", false, "Suppress informational messages")
	flag.StringVar(&c.LogLevel, "log-level", "", "Set the logging level (DEBUG, INFO, WARN, ERROR)")
	flag.BoolVar(&c.NoColor, "no-color", false, "Disable color output")
	flag.StringVarP(&c.OutputFile, "output", "o", "", "Output to file instead of stdout")
	flag.BoolVar(&c.JSONOutput, "json", false, "Output scan results as JSON")
	flag.BoolVarP(&c.TreeOutput, "tree", "t", false, "Render scan results as a tree")
	flag.BoolVar(&c.ShowSkipped, "show-skipped", false, "List entries that could not be scanned")
	flag.BoolVar(&c.BruteForce, "brute-force", false, "Test the full rule list against every entry instead of propagating per directory")
	flag.BoolVarP(&c.Watch, "watch", "w", false, "Rescan when the tree changes")
	flag.DurationVar(&c.Debounce, "debounce", 250*time.Millisecond, "Settle time before a watch-triggered rescan")
	flag.BoolVar(&c.ShowVersion, "version", false, "Show version information")

	flag.Parse()

	c.UseColors = !c.NoColor && isatty.IsTerminal(os.Stdout.Fd()) && c.OutputFile == ""

	args := flag.Args()
	if len(args) > 0 {
		c.Command = args[0]
		c.Args = args[1:]
	} else {
		c.Command = "scan"
	}

	return c
}
