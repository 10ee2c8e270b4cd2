package cmd

import (
	"context"
	"io"
	"os"
)

type ioKey struct{}

// ioState carries the command's streams so tests can swap them for
// buffers. Nil streams fall back to the process streams.
type ioState struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func withIO(ctx context.Context, in io.Reader, out, err io.Writer) context.Context {
	return context.WithValue(ctx, ioKey{}, ioState{in: in, out: out, err: err})
}

func ioFromContext(ctx context.Context) ioState {
	if ctx != nil {
		if v, ok := ctx.Value(ioKey{}).(ioState); ok {
			return v
		}
	}
	return ioState{}
}

func stdinFromContext(ctx context.Context) io.Reader {
	if in := ioFromContext(ctx).in; in != nil {
		return in
	}
	return os.Stdin
}

func stdoutFromContext(ctx context.Context) io.Writer {
	if out := ioFromContext(ctx).out; out != nil {
		return out
	}
	return os.Stdout
}

func stderrFromContext(ctx context.Context) io.Writer {
	if err := ioFromContext(ctx).err; err != nil {
		return err
	}
	return os.Stderr
}
