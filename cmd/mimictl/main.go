package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/ZentaChain/zentalk-content/pkg/content"
	"github.com/ZentaChain/zentalk-content/pkg/logger"
)

const version = "0.1.0"

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "mimictl: %v\n", err)
		os.Exit(1)
	}
}

// env holds what the global flags configure for every command
type env struct {
	out      io.Writer
	decoder  *content.Decoder
	registry *content.HashRegistry
}

func run(args []string, out io.Writer) error {
	e := &env{out: out}

	app := cli.NewApp()
	app.Name = "mimictl"
	app.Version = version
	app.Usage = "Encode, inspect and identify MIMI content messages."
	app.Writer = out

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "log-level",
			Value:  "warn",
			Usage:  "log level (debug, info, warn, error)",
			EnvVar: "MIMI_LOG_LEVEL",
		},
		cli.StringFlag{
			Name:   "log-format",
			Value:  "console",
			Usage:  "log format (console, json)",
			EnvVar: "MIMI_LOG_FORMAT",
		},
		cli.IntFlag{
			Name:   "max-depth",
			Value:  content.DefaultMaxDepth,
			Usage:  "maximum nested part depth accepted when decoding",
			EnvVar: "MIMI_MAX_DEPTH",
		},
	}

	app.Before = func(c *cli.Context) error {
		if err := logger.Init(c.GlobalString("log-level"), c.GlobalString("log-format")); err != nil {
			return err
		}

		d, err := content.NewDecoder(content.DecoderConfig{
			MaxDepth: c.GlobalInt("max-depth"),
			Logger:   logger.Log,
		})
		if err != nil {
			return err
		}
		e.decoder = d

		if e.registry, err = newRegistry(); err != nil {
			return err
		}

		logger.Log.Debug("configured",
			zap.String("command", c.Args().First()),
			zap.Int("max_depth", d.MaxDepth()),
		)
		return nil
	}

	app.After = func(*cli.Context) error {
		logger.Sync()
		return nil
	}

	app.Commands = []cli.Command{
		encodeCommand(e),
		inspectCommand(e),
		idCommand(e),
		frankCommand(e),
		reportCommand(e),
		derivedCommand(e),
	}

	return app.Run(args)
}
