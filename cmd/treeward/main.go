package main

import (
	"os"

	"github.com/treeward/treeward/internal/app"
	"github.com/treeward/treeward/internal/config"
)

func main() {
	cfg := config.New()

	application := app.New(cfg)
	code := application.Run()

	// Close the output file if one was opened.
	if cfg.OutputFile != "" {
		if f, ok := application.Output.(*os.File); ok {
			f.Close()
		}
	}

	os.Exit(code)
}
