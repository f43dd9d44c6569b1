package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hintbook/internal/trace"
)

// traceFlags mirrors the --trace* persistent flags.
type traceFlags struct {
	output string
	level  string
	mode   string
	format string
	ring   int
	pulse  time.Duration
}

func readTraceFlags(cmd *cobra.Command) (traceFlags, error) {
	fl := cmd.Root().PersistentFlags()
	var (
		tf   traceFlags
		errs [6]error
	)
	tf.output, errs[0] = fl.GetString("trace")
	tf.level, errs[1] = fl.GetString("trace-level")
	tf.mode, errs[2] = fl.GetString("trace-mode")
	tf.format, errs[3] = fl.GetString("trace-format")
	tf.ring, errs[4] = fl.GetInt("trace-ring-size")
	tf.pulse, errs[5] = fl.GetDuration("trace-pulse")
	if err := errors.Join(errs[:]...); err != nil {
		return tf, fmt.Errorf("trace flags: %w", err)
	}
	// --trace без уровня включает трассировку стадий
	if tf.output != "" && !fl.Changed("trace-level") {
		tf.level = trace.LevelPhase.String()
	}
	return tf, nil
}

func (tf traceFlags) config() (trace.Config, error) {
	level, err := trace.ParseLevel(tf.level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(tf.mode)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(tf.format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: tf.output,
		RingSize:   tf.ring,
	}, nil
}

// setupTracing attaches a tracer and the run span to the command context and
// returns the cleanup to call when the command is done. A ring-only tracer is
// written out only when the command failed.
func setupTracing(cmd *cobra.Command) (func(failed bool), error) {
	tf, err := readTraceFlags(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := tf.config()
	if err != nil {
		return nil, err
	}
	if cfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, err
	}
	ctx, run := trace.Start(trace.WithTracer(cmd.Context(), tracer), trace.ScopeRun, cmd.CommandPath())
	cmd.SetContext(ctx)
	stopPulse := trace.Pulse(tracer, tf.pulse)

	report := func(what string, err error) {
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: %s: %v\n", what, err)
		}
	}
	return func(failed bool) {
		stopPulse()
		if !failed {
			run.End("ok")
		} else {
			run.End("failed")
			if ring, ok := tracer.(*trace.Ring); ok {
				report("dump", dumpRing(ring, cfg))
			}
		}
		report("flush", tracer.Flush())
		report("close", tracer.Close())
	}, nil
}

// dumpRing writes buffered events to the --trace destination. Tracers that
// also stream have written every event already and are not dumped.
func dumpRing(ring *trace.Ring, cfg trace.Config) error {
	format := cfg.Format
	if format == trace.FormatAuto {
		format = trace.FormatText
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return ring.Dump(os.Stderr, format)
	}
	f, err := os.Create(cfg.OutputPath) // #nosec G304 -- path comes from the --trace flag
	if err != nil {
		return err
	}
	if err := ring.Dump(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
