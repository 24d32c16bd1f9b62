package main

import (
	"fmt"
	"io"

	"github.com/graph-guard/chainmap/pkg/cli"
	"github.com/graph-guard/chainmap/pkg/display"
	"github.com/phuslu/log"
)

// render inserts the pairs of c into a new map and
// writes the resulting buckets to w.
// Pairs with an empty key or value are skipped.
func render(w io.Writer, c cli.CommandRender) (ok bool) {
	conf := ReadConfig(w, c.ConfigFilePath)
	if conf == nil {
		return false
	}

	l := log.Logger{
		Level:  conf.LogLevel,
		Writer: &log.IOWriter{Writer: w},
	}
	d := display.New(conf.NewMap(), l, nil)
	for _, p := range c.Pairs {
		if !d.Insert(p.Key, p.Value) {
			l.Warn().
				Str("key", p.Key).
				Str("value", p.Value).
				Msg("skipping empty input")
		}
	}
	if err := d.Render(w); err != nil {
		fmt.Fprintf(w, "rendering: %s\n", err)
		return false
	}
	return true
}
