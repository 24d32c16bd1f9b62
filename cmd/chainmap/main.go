package main

import (
	"fmt"
	"os"

	"github.com/graph-guard/chainmap/pkg/cli"
)

func main() {
	w := os.Stdout
	switch c := cli.Parse(w, os.Args).(type) {
	case cli.CommandServe:
		serve(w, c)
	case cli.CommandRender:
		if !render(w, c) {
			os.Exit(1)
		}
	default:
		if c != nil {
			panic(fmt.Errorf("unexpected command: %#v", c))
		}
	}
}
