package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/graph-guard/chainmap/pkg/config"
)

// ReadConfig reads the config file at configPath.
// Returns nil and writes the error to w if reading failed.
func ReadConfig(
	w io.Writer,
	configPath string,
) *config.Config {
	basePath, fileName := filepath.Split(configPath)
	if basePath == "" {
		basePath = "."
	}
	conf, err := config.Read(os.DirFS(basePath), fileName)
	if err != nil {
		fmt.Fprintf(w, "reading config: %s\n", err)
		return nil
	}
	return conf
}
