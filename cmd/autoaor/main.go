package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/ccampo133/auto-aor/internal/calendar"
	"github.com/ccampo133/auto-aor/internal/config"
	"github.com/ccampo133/auto-aor/internal/plan"
	"github.com/ccampo133/auto-aor/internal/window"
)

const (
	Program = "autoaor"
	Version = "1.0.0"
)

func main() {
	Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cli carries what every command needs.
type cli struct {
	cfg    config.Config
	level  *slog.LevelVar
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) error {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).With("program", Program)

	cfg, err := config.Load(logger)
	if err != nil {
		return badUsage("invalid configuration: %v", err)
	}
	level.Set(cfg.LogLevel())

	c := &cli{cfg: cfg, level: level, logger: logger, stdout: stdout, stderr: stderr}
	if len(args) > 0 {
		switch args[0] {
		case "times":
			return c.runTimes(args[1:])
		case "calendar":
			return c.runCalendar(args[1:])
		case "help":
			fmt.Fprint(stdout, helpText)
			return nil
		case "version":
			fmt.Fprintf(stdout, "%s %s\n", Program, Version)
			return nil
		}
	}
	return c.runPlan(args)
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.Usage = func() { fmt.Fprint(c.stderr, helpText) }
	return fs
}

func (c *cli) parse(fs *flag.FlagSet, args []string, verbose *bool) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return badUsage("%v", err)
	}
	if *verbose {
		c.level.Set(slog.LevelDebug)
	}
	return nil
}

func (c *cli) planner() *plan.Planner {
	return plan.NewPlanner(c.cfg.Fetcher(c.logger), c.cfg.PlanDefaults(), c.logger)
}

func triples(files []string, keepPast bool) ([]plan.Input, error) {
	if len(files) == 0 || len(files)%3 != 0 {
		return nil, badUsage("expected <tep> <aai> <vis> triples, got %d file(s)", len(files))
	}
	inputs := make([]plan.Input, 0, len(files)/3)
	for i := 0; i < len(files); i += 3 {
		inputs = append(inputs, plan.Input{Tep: files[i], Aai: files[i+1], Vis: files[i+2], KeepPast: keepPast})
	}
	return inputs, nil
}

func (c *cli) runPlan(args []string) error {
	fs := c.flagSet(Program)
	outDir := fs.String("o", c.cfg.Planning.OutputDir, "output directory")
	jobs := fs.Int("j", c.cfg.Planning.Concurrency, "concurrent targets")
	keepPast := fs.Bool("keep-past", false, "keep closed visibility windows")
	toStdout := fs.Bool("stdout", false, "print instead of writing files")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := c.parse(fs, args, verbose); err != nil {
		return err
	}
	inputs, err := triples(fs.Args(), *keepPast)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := c.planner().RunBatch(ctx, inputs, *jobs)

	var (
		failed  int
		lastErr error
	)
	for _, r := range results {
		if r.Err != nil {
			failed++
			lastErr = r.Err
			c.logger.Error("target failed", "tep", r.Input.Tep, "aai", r.Input.Aai, "error", r.Err)
			continue
		}
		if *toStdout {
			fmt.Fprint(c.stdout, r.Output.AOR)
			fmt.Fprint(c.stdout, r.Output.Diagnostics)
			continue
		}
		if err := writeOutput(*outDir, r.Output); err != nil {
			return &Error{Cause: err, Code: EIO}
		}
		c.logger.Info("wrote AOR",
			"aor", filepath.Join(*outDir, r.Output.AORFile),
			"diagnostics", filepath.Join(*outDir, r.Output.DiagFile),
			"run_id", r.Output.RunID,
		)
	}

	switch {
	case failed == 0:
		return nil
	case len(results) == 1:
		return checkError(lastErr)
	default:
		return &Error{Cause: fmt.Errorf("%d of %d targets failed", failed, len(results)), Code: BatchErrCode}
	}
}

func writeOutput(dir string, out *plan.Output) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, out.AORFile), []byte(out.AOR), 0o644); err != nil {
		return fmt.Errorf("writing AOR: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, out.DiagFile), []byte(out.Diagnostics), 0o644); err != nil {
		return fmt.Errorf("writing diagnostics: %w", err)
	}
	return nil
}

func (c *cli) runTimes(args []string) error {
	fs := c.flagSet("times")
	mode := fs.String("mode", c.cfg.Planning.Timing, "ingress, egress or midtimes")
	keepPast := fs.Bool("keep-past", false, "keep closed visibility windows")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := c.parse(fs, args, verbose); err != nil {
		return err
	}
	m, err := window.ParseMode(*mode)
	if err != nil {
		return badUsage("%v", err)
	}
	inputs, err := triples(fs.Args(), *keepPast)
	if err != nil {
		return err
	}
	if len(inputs) != 1 {
		return badUsage("times takes exactly one <tep> <aai> <vis> triple")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := c.planner().Plan(ctx, inputs[0])
	if err != nil {
		return checkError(err)
	}
	product, err := out.Result.Output(m)
	if err != nil {
		return checkError(err)
	}
	fmt.Fprint(c.stdout, product.String())
	return nil
}

func (c *cli) runCalendar(args []string) error {
	if len(args) == 0 {
		return badUsage("calendar needs at least one Julian date")
	}
	for _, a := range args {
		jd, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return badUsage("invalid Julian date %q", a)
		}
		fmt.Fprintf(c.stdout, "%s  %s\n", a, calendar.ToCalendar(jd))
	}
	return nil
}
