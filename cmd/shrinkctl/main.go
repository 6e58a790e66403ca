// shrinkctl shrinks, restores, and inspects length-prefixed buffers
// from the command line. Buffers travel over stdio in a text-safe
// encoding picked by --adapter; diagnostics go to stderr so stdout
// stays pipeable.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	cli "github.com/urfave/cli/v2"

	"github.com/jozzzzep/shrink/internal/logging"
	"github.com/jozzzzep/shrink/transport"
)

var app = &cli.App{
	Name:    "shrinkctl",
	Usage:   "shrink, restore, and inspect length-prefixed buffers",
	Version: "0.1.0",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "adapter", Value: "base64", Usage: "buffer text encoding on stdio: base64|hex"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging on stderr"},
	},
	Before: setup,
	Commands: []*cli.Command{
		bitmaskCmd,
		shrinkCmd,
		restoreCmd,
		frameCmd,
		bufferCmd,
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("shrinkctl failed")
		os.Exit(1)
	}
}

func setup(ctx *cli.Context) error {
	logging.ConfigureRuntime()
	if ctx.Bool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return nil
}

func adapterFor(ctx *cli.Context) (transport.Adapter, error) {
	return transport.ByName(ctx.String("adapter"))
}

// readBufferArg reads a buffer's text form from the first positional
// arg, or stdin when absent, and decodes it with the adapter.
func readBufferArg(ctx *cli.Context) ([]byte, error) {
	text, err := readTextArg(ctx)
	if err != nil {
		return nil, err
	}
	adapter, err := adapterFor(ctx)
	if err != nil {
		return nil, err
	}
	return adapter.Decode(strings.TrimSpace(text))
}

func readTextArg(ctx *cli.Context) (string, error) {
	if ctx.Args().Len() > 0 {
		return ctx.Args().First(), nil
	}
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(raw), nil
}

func readRawInput(ctx *cli.Context) ([]byte, error) {
	if path := ctx.String("in"); path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func writeBuffer(ctx *cli.Context, buf []byte) error {
	adapter, err := adapterFor(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, adapter.Encode(buf))
	return err
}

func parseIDs(args []string) ([]uint32, error) {
	ids := make([]uint32, 0, len(args))
	for _, raw := range args {
		v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", raw, err)
		}
		ids = append(ids, uint32(v))
	}
	return ids, nil
}
