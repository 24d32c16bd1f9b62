package main

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/graph-guard/chainmap/pkg/cli"
	"github.com/graph-guard/chainmap/pkg/display"
	"github.com/graph-guard/chainmap/pkg/server"
	"github.com/graph-guard/chainmap/pkg/statistics"
	"github.com/phuslu/log"
)

// serve turns the CLI process into a server process
// that runs until it receives SIGINT or SIGTERM.
func serve(w io.Writer, c cli.CommandServe) {
	conf := ReadConfig(w, c.ConfigFilePath)
	if conf == nil {
		return
	}

	l := log.Logger{
		Level:  conf.LogLevel,
		Writer: &log.IOWriter{Writer: w},
	}

	stats := statistics.NewMapSync()

	lDisplay := l
	lDisplay.Context = log.NewContext(nil).
		Str("module", "display").Value()
	d := display.New(conf.NewMap(), lDisplay, stats)

	lServer := l
	lServer.Context = log.NewContext(nil).
		Str("server", "api").
		Str("hasher", conf.Hasher).
		Int("capacity", conf.Capacity).
		Float64("loadFactor", conf.LoadFactor).Value()
	s := server.New(conf, server.Auth{
		Username: c.APIUsername,
		Password: c.APIPassword,
	}, d, stats, lServer)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Serve(nil)
	}()

	<-sig
	_ = s.Shutdown()
	wg.Wait()
}
