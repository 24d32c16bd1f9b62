package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const EnvAPIUsername = "CHAINMAP_API_USERNAME"
const EnvAPIPassword = "CHAINMAP_API_PASSWORD"
const DefaultConfigPath = "./config.yaml"

// Command can be any of:
//
//	CommandServe
//	CommandRender
type Command any

type CommandServe struct {
	ConfigFilePath string
	APIUsername    string
	APIPassword    string
}

// CommandRender inserts Pairs into a fresh map
// and renders the resulting buckets.
type CommandRender struct {
	ConfigFilePath string
	Pairs          []Pair
}

type Pair struct {
	Key   string
	Value string
}

func Parse(w io.Writer, args []string) (cmd Command) {
	fm := fmt.Sprintf

	executableName := "chainmap"
	if len(args) > 0 {
		executableName = filepath.Base(args[0])
	}

	flags := flag.NewFlagSet("chainmap", flag.ContinueOnError)
	flags.SetOutput(w)
	flags.Usage = func() {
		writeLines(w,
			fm("usage: %s <command> [flags]", executableName),
			"",
			"commands available:",
			" serve - turns the CLI into a server and starts listening",
			" render - inserts key=value pairs and renders the buckets",
			" help - prints this help",
		)
	}

	parseFlags := func() (ok bool) {
		err := flags.Parse(args[2:])
		// flags will automatically call .Usage()
		return err == nil
	}

	if len(args) < 2 {
		flags.Usage()
		return nil
	}

	switch args[1] {
	case "serve":
		c := CommandServe{}
		c.APIUsername = os.Getenv(EnvAPIUsername)
		c.APIPassword = os.Getenv(EnvAPIPassword)

		flags.Usage = func() {
			writeLines(w,
				"",
				fm("usage: %s serve [-config <path>]", executableName),
				"",
				"flags:",
				"-config <path>: defines the configuration file path "+
					fm("(default: %s)", DefaultConfigPath),
				"",
				"environment variables:",
				fm("%s: API basic auth username "+
					"(enables basic auth if set)", EnvAPIUsername),
				fm("%s: API basic auth password", EnvAPIPassword),
			)
		}

		flags.StringVar(&c.ConfigFilePath, "config", DefaultConfigPath, "")
		if !parseFlags() {
			return nil
		}

		if c.APIUsername != "" && c.APIPassword == "" {
			writeLines(w,
				EnvAPIPassword+" isn't set.",
				"Make sure you provide it when "+EnvAPIUsername+" is defined.",
			)
			flags.Usage()
			return nil
		}

		cmd = c

	case "render":
		c := CommandRender{}

		flags.Usage = func() {
			writeLines(w,
				"",
				fm("usage: %s render [-config <path>] [key=value ...]",
					executableName),
				"",
				"flags:",
				"-config <path>: defines the configuration file path "+
					fm("(default: %s)", DefaultConfigPath),
			)
		}

		flags.StringVar(&c.ConfigFilePath, "config", DefaultConfigPath, "")
		if !parseFlags() {
			return nil
		}

		for _, a := range flags.Args() {
			k, v, ok := strings.Cut(a, "=")
			if !ok {
				writeLines(w, fm("invalid pair %q, expected key=value", a))
				flags.Usage()
				return nil
			}
			c.Pairs = append(c.Pairs, Pair{Key: k, Value: v})
		}

		cmd = c

	case "help":
		PrintHelp(w)
		return

	default:
		flags.Usage()
		return nil
	}
	return cmd
}

func writeLines(w io.Writer, lines ...string) {
	for i := range lines {
		_, _ = w.Write([]byte(lines[i]))
		_, _ = w.Write([]byte("\n"))
	}
}

func PrintHelp(w io.Writer) {
	writeLines(w,
		"chainmap - a chained hash map visualizer",
		"",
		"The map resolves collisions by chaining key-value pairs",
		"in buckets and doubles its capacity once the load factor",
		"is exceeded. Use \"serve\" to inspect it over HTTP.",
	)
}
