package main

import (
	"fmt"
	"math"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	cli "github.com/urfave/cli/v2"

	"github.com/jozzzzep/shrink"
	"github.com/jozzzzep/shrink/bitmask"
	"github.com/jozzzzep/shrink/framing"
)

var bitmaskCmd = &cli.Command{
	Name:  "bitmask",
	Usage: "pack and unpack identifier sets",
	Subcommands: []*cli.Command{
		{
			Name:      "encode",
			Usage:     "pack ids into a framed bitmask buffer",
			ArgsUsage: "id [id ...]",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "sparse", Usage: "roaring container instead of the dense mask"},
				&cli.Uint64Flag{Name: "max-bits", Value: uint64(bitmask.DefaultLimits().MaxBits), Usage: "dense mask bit cap"},
			},
			Action: func(ctx *cli.Context) error {
				ids, err := parseIDs(ctx.Args().Slice())
				if err != nil {
					return err
				}
				var buf []byte
				if ctx.Bool("sparse") {
					buf, err = bitmask.EncodeSparse(ids)
				} else {
					var maxBits uint32
					maxBits, err = parseMaxBits(ctx.Uint64("max-bits"))
					if err != nil {
						return err
					}
					buf, err = bitmask.EncodeLimits(ids, bitmask.Limits{MaxBits: maxBits})
				}
				if err != nil {
					return err
				}
				log.Debug().Int("ids", len(ids)).Int("buffer_bytes", len(buf)).Msg("encoded bitmask")
				return writeBuffer(ctx, buf)
			},
		},
		{
			Name:      "decode",
			Usage:     "unpack a bitmask buffer into its ids",
			ArgsUsage: "[buffer]",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "sparse", Usage: "buffer holds a roaring container"},
			},
			Action: func(ctx *cli.Context) error {
				buf, err := readBufferArg(ctx)
				if err != nil {
					return err
				}
				var ids []uint32
				if ctx.Bool("sparse") {
					ids, err = bitmask.DecodeSparse(buf)
				} else {
					ids, err = bitmask.Decode(buf)
				}
				if err != nil {
					return err
				}
				return printIDs(ids)
			},
		},
	},
}

var shrinkCmd = &cli.Command{
	Name:  "shrink",
	Usage: "compress payloads into framed buffers",
	Subcommands: []*cli.Command{
		{
			Name:  "bytes",
			Usage: "shrink a binary payload",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "in", Usage: "input file (defaults to stdin)"},
			},
			Action: func(ctx *cli.Context) error {
				raw, err := readRawInput(ctx)
				if err != nil {
					return err
				}
				buf, err := shrink.Bytes(raw)
				if err != nil {
					return err
				}
				log.Debug().Int("raw_bytes", len(raw)).Int("shrunk_bytes", len(buf)).Msg("shrunk payload")
				return writeBuffer(ctx, buf)
			},
		},
		{
			Name:      "text",
			Usage:     "shrink a string",
			ArgsUsage: "[text]",
			Action: func(ctx *cli.Context) error {
				text, err := readTextArg(ctx)
				if err != nil {
					return err
				}
				buf, err := shrink.String(text)
				if err != nil {
					return err
				}
				return writeBuffer(ctx, buf)
			},
		},
		{
			Name:  "json",
			Usage: "shrink a JSON document",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "in", Usage: "input file (defaults to stdin)"},
			},
			Action: func(ctx *cli.Context) error {
				raw, err := readRawInput(ctx)
				if err != nil {
					return err
				}
				buf, err := shrink.JSON(raw)
				if err != nil {
					return err
				}
				return writeBuffer(ctx, buf)
			},
		},
		{
			Name:      "uints",
			Usage:     "shrink an identifier set",
			ArgsUsage: "id [id ...]",
			Action: func(ctx *cli.Context) error {
				ids, err := parseIDs(ctx.Args().Slice())
				if err != nil {
					return err
				}
				buf, err := shrink.Uints(ids)
				if err != nil {
					return err
				}
				return writeBuffer(ctx, buf)
			},
		},
	},
}

var restoreCmd = &cli.Command{
	Name:  "restore",
	Usage: "restore shrunk buffers",
	Subcommands: []*cli.Command{
		{
			Name:      "bytes",
			Usage:     "restore a binary payload",
			ArgsUsage: "[buffer]",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Usage: "output file (defaults to stdout)"},
			},
			Action: func(ctx *cli.Context) error {
				buf, err := readBufferArg(ctx)
				if err != nil {
					return err
				}
				raw, err := shrink.RestoreBytes(buf)
				if err != nil {
					return err
				}
				if path := ctx.String("out"); path != "" {
					return os.WriteFile(path, raw, 0o644)
				}
				_, err = os.Stdout.Write(raw)
				return err
			},
		},
		{
			Name:      "text",
			Usage:     "restore a string",
			ArgsUsage: "[buffer]",
			Action: func(ctx *cli.Context) error {
				buf, err := readBufferArg(ctx)
				if err != nil {
					return err
				}
				text, err := shrink.RestoreString(buf)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(os.Stdout, text)
				return err
			},
		},
		{
			Name:      "json",
			Usage:     "restore a JSON document",
			ArgsUsage: "[buffer]",
			Action: func(ctx *cli.Context) error {
				buf, err := readBufferArg(ctx)
				if err != nil {
					return err
				}
				doc, err := shrink.RestoreJSON(buf)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(os.Stdout, string(doc))
				return err
			},
		},
		{
			Name:      "uints",
			Usage:     "restore an identifier set",
			ArgsUsage: "[buffer]",
			Action: func(ctx *cli.Context) error {
				buf, err := readBufferArg(ctx)
				if err != nil {
					return err
				}
				ids, err := shrink.RestoreUints(buf)
				if err != nil {
					return err
				}
				return printIDs(ids)
			},
		},
	},
}

var frameCmd = &cli.Command{
	Name:  "frame",
	Usage: "inspect and apply the 4-byte length prefix",
	Subcommands: []*cli.Command{
		{
			Name:      "split",
			Usage:     "split a buffer into prefix and payload",
			ArgsUsage: "[buffer]",
			Action: func(ctx *cli.Context) error {
				buf, err := readBufferArg(ctx)
				if err != nil {
					return err
				}
				length, payload, err := framing.SplitPrefix(buf)
				if err != nil {
					return err
				}
				adapter, err := adapterFor(ctx)
				if err != nil {
					return err
				}
				return printJSON(map[string]any{
					"length":        length,
					"payload_bytes": len(payload),
					"payload":       adapter.Encode(payload),
				})
			},
		},
		{
			Name:      "wrap",
			Usage:     "prepend a length prefix to a payload",
			ArgsUsage: "[payload-buffer]",
			Flags: []cli.Flag{
				&cli.Uint64Flag{Name: "length", Usage: "prefix value (defaults to the payload byte count)"},
			},
			Action: func(ctx *cli.Context) error {
				payload, err := readBufferArg(ctx)
				if err != nil {
					return err
				}
				length := uint32(len(payload))
				if ctx.IsSet("length") {
					length = uint32(ctx.Uint64("length"))
				}
				return writeBuffer(ctx, framing.AddPrefix(payload, length))
			},
		},
	},
}

// parseMaxBits narrows the --max-bits flag, rejecting values the dense
// codec's cap cannot hold instead of truncating them.
func parseMaxBits(v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("max-bits %d out of range (max %d)", v, uint64(math.MaxUint32))
	}
	return uint32(v), nil
}

func printIDs(ids []uint32) error {
	if ids == nil {
		ids = []uint32{}
	}
	return printJSON(map[string]any{"count": len(ids), "ids": ids})
}

func printJSON(v any) error {
	out, err := jsoniter.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
