package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v2"

	"github.com/jozzzzep/shrink/internal/store"
)

var bufferCmd = &cli.Command{
	Name:  "buffer",
	Usage: "keep buffers in a local store backend",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "backend", Value: "fs", Usage: "store backend: fs|badger|memory"},
		&cli.StringFlag{Name: "root", Value: "local/buffers", Usage: "fs backend root directory"},
		&cli.StringFlag{Name: "db", Value: "local/badger", Usage: "badger backend path"},
	},
	Subcommands: []*cli.Command{
		{
			Name:      "put",
			Usage:     "store a buffer under a key",
			ArgsUsage: "key [buffer]",
			Action:    runBufferPut,
		},
		{
			Name:      "get",
			Usage:     "fetch a stored buffer",
			ArgsUsage: "key",
			Action:    runBufferGet,
		},
		{
			Name:      "del",
			Usage:     "remove a stored buffer",
			ArgsUsage: "key",
			Action:    runBufferDel,
		},
		{
			Name:  "list",
			Usage: "list stored keys",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "prefix", Usage: "only keys starting with this prefix"},
			},
			Action: runBufferList,
		},
	},
}

func openStore(ctx *cli.Context) (*store.Store, error) {
	adapter, err := adapterFor(ctx)
	if err != nil {
		return nil, err
	}
	return store.OpenStore(ctx.String("backend"), store.Options{
		Root: ctx.String("root"),
		Path: ctx.String("db"),
	}, adapter)
}

func runBufferPut(ctx *cli.Context) error {
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("put needs a key")
	}
	key := ctx.Args().First()
	text := ctx.Args().Get(1)
	if text == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(raw)
	}
	adapter, err := adapterFor(ctx)
	if err != nil {
		return err
	}
	buf, err := adapter.Decode(strings.TrimSpace(text))
	if err != nil {
		return err
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.PutBuffer(key, buf); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "ok put key=%s bytes=%d\n", key, len(buf))
	return nil
}

func runBufferGet(ctx *cli.Context) error {
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("get needs a key")
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	buf, err := st.GetBuffer(ctx.Args().First())
	if err != nil {
		return err
	}
	return writeBuffer(ctx, buf)
}

func runBufferDel(ctx *cli.Context) error {
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("del needs a key")
	}
	key := ctx.Args().First()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.DeleteBuffer(key); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "ok delete key=%s\n", key)
	return nil
}

func runBufferList(ctx *cli.Context) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	keys, err := st.ListKeys(ctx.String("prefix"))
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Fprintln(os.Stdout, key)
	}
	return nil
}
