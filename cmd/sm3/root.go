package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/opentoys/gosm3/crypto/sm3"
	"github.com/opentoys/gosm3/filex"
	"github.com/opentoys/gosm3/logx"
)

const appName = "sm3"

var version = "1.0.0"

type flags struct {
	str    bool
	file   bool
	lower  bool
	upper  bool
	config string
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   appName + " (-s|-f) [-x|-X] ARG...",
		Short: "Compute SM3 digests of strings or files",
		Long: `Compute SM3 (GB/T 32905-2016) digests.

Examples:
  sm3 -s abc
  sm3 -f -X /usr/bin/env
  SM3_WORKERS=8 sm3 -f *.iso`,
		Args:          cobra.MinimumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &f, args)
		},
	}

	fs := cmd.Flags()
	fs.BoolVarP(&f.str, "string", "s", false, "hash each argument as a string")
	fs.BoolVarP(&f.file, "file", "f", false, "hash each argument as a file path")
	fs.BoolVarP(&f.lower, "lower", "x", false, "print lowercase hex")
	fs.BoolVarP(&f.upper, "upper", "X", false, "print uppercase hex")
	fs.StringVar(&f.config, "config", "", "config file (yaml, json or toml)")
	fs.Int("chunk-size", filex.DefaultChunkSize, "bytes read per file read call")
	fs.Int("workers", 0, "files hashed in parallel (default number of CPUs)")
	fs.String("log-level", "warn", "debug, info, warn or error")

	cmd.MarkFlagsMutuallyExclusive("string", "file")
	cmd.MarkFlagsOneRequired("string", "file")
	cmd.MarkFlagsMutuallyExclusive("lower", "upper")
	return cmd
}

func run(cmd *cobra.Command, f *flags, args []string) error {
	cfg, err := loadConfig(cmd, f.config)
	if err != nil {
		return err
	}
	switch {
	case f.upper:
		cfg.Case = "upper"
	case f.lower:
		cfg.Case = "lower"
	}

	log := slog.New(logx.New(cmd.ErrOrStderr(), logx.WithLevel(logx.ParseLevel(cfg.LogLevel))))
	out := cmd.OutOrStdout()

	if f.str {
		for _, v := range args {
			printSum(out, cfg, sm3.Sum([]byte(v)), v, len(args))
		}
		return nil
	}

	res, err := filex.SM3Files(cmd.Context(), args, cfg.Workers,
		filex.WithChunkSize(cfg.ChunkSize),
		filex.WithLogger(log),
	)
	if err != nil {
		return err
	}

	red := color.New(color.FgRed)
	var failed int
	for _, r := range res {
		if r.Err != nil {
			failed++
			red.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", appName, r.Err)
			continue
		}
		printSum(out, cfg, r.Sum, r.Path, len(args))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, len(res))
	}
	return nil
}

func printSum(w io.Writer, cfg *Config, sum sm3.Checksum, name string, n int) {
	s := sum.String()
	if cfg.Case == "upper" {
		s = strings.ToUpper(s)
	}
	if n == 1 {
		fmt.Fprintln(w, s)
		return
	}
	fmt.Fprintf(w, "%s  %s\n", s, name)
}
