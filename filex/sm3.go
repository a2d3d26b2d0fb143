// Package filex feeds files and readers through the SM3 engine.
package filex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/opentoys/gosm3/crypto/sm3"
	"github.com/opentoys/gosm3/gopool"
	"github.com/opentoys/gosm3/logx"
)

// DefaultChunkSize is the read size used when none is configured.
const DefaultChunkSize = 1 << 20

type options struct {
	chunk  int
	logger *slog.Logger
}

type Option func(*options)

// WithChunkSize sets how many bytes are read per call. n <= 0 keeps the default.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunk = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		chunk:  DefaultChunkSize,
		logger: slog.New(logx.New(io.Discard)),
	}
	for _, v := range opts {
		v(o)
	}
	return o
}

// SM3Reader hashes everything r yields until EOF.
func SM3Reader(ctx context.Context, r io.Reader, opts ...Option) (sum sm3.Checksum, e error) {
	o := newOptions(opts)
	if _, sum, e = digest(ctx, r, o.chunk); e != nil {
		e = fmt.Errorf("filex: %w", e)
	}
	return
}

func digest(ctx context.Context, r io.Reader, chunk int) (n int64, sum sm3.Checksum, e error) {
	d := sm3.New()
	buf := make([]byte, chunk)
	for {
		if e = ctx.Err(); e != nil {
			return
		}
		var m int
		m, e = r.Read(buf)
		if m > 0 {
			d.Write(buf[:m])
			n += int64(m)
		}
		if errors.Is(e, io.EOF) {
			break
		}
		if e != nil {
			e = fmt.Errorf("read: %w", e)
			return
		}
	}
	return n, d.Finalize(), nil
}

// SM3File hashes the file at path.
func SM3File(ctx context.Context, path string, opts ...Option) (sum sm3.Checksum, e error) {
	o := newOptions(opts)
	f, e := os.Open(path)
	if e != nil {
		return sum, fmt.Errorf("filex: %w", e)
	}
	defer f.Close()

	start := time.Now()
	n, sum, e := digest(ctx, f, o.chunk)
	if e != nil {
		o.logger.Debug("sm3 failed", "path", path, "err", e)
		return sum, fmt.Errorf("filex: %s: %w", path, e)
	}
	o.logger.Debug("sm3 done", "path", path, "bytes", n, "elapsed", time.Since(start).String())
	return sum, nil
}

// Result is the outcome of hashing one path.
type Result struct {
	Path string
	Sum  sm3.Checksum
	Err  error
}

// SM3Files hashes every path with its own digest, at most workers at a
// time. Results follow the order of paths and per-file failures are kept in
// Result.Err. The error is only set when ctx ends early.
func SM3Files(ctx context.Context, paths []string, workers int, opts ...Option) ([]Result, error) {
	results := make([]Result, len(paths))
	fns := make([]func(context.Context) error, len(paths))
	for i := range paths {
		i := i
		results[i].Path = paths[i]
		fns[i] = func(ctx context.Context) error {
			results[i].Sum, results[i].Err = SM3File(ctx, paths[i], opts...)
			if e := ctx.Err(); e != nil {
				return e
			}
			return nil
		}
	}
	if e := gopool.AllWithContext(ctx, workers, fns...); e != nil {
		return results, e
	}
	return results, nil
}
