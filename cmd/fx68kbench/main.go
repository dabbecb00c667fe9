package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jenska/m68kbench/internal/bench"
	"github.com/jenska/m68kbench/internal/bus"
	"github.com/jenska/m68kbench/internal/core"
	"github.com/jenska/m68kbench/internal/irq"
	"github.com/jenska/m68kbench/internal/logging"
	"github.com/jenska/m68kbench/internal/report"
	"github.com/jenska/m68kbench/internal/runner"
	"github.com/jenska/m68kbench/internal/scenario"
	"github.com/jenska/m68kbench/internal/trace"
)

const (
	defaultCatalog = "testdata/interrupt_test_vectors.txt"
	defaultProgram = "testdata/basic_arithmetic.asm"
)

type options struct {
	trace       bool
	performance bool
	verbose     bool
	catalog     string
	program     string
	traceFile   string
	delay       int
	policy      string
	logLevel    logging.Level
}

func parseFlags(args []string) (options, error) {
	var opts options

	flagSet := flag.NewFlagSet("fx68kbench", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&opts.trace, "trace", false, "Write a VCD waveform of every tick")
	flagSet.BoolVar(&opts.performance, "performance", false, "Report wall time per cycle")
	flagSet.BoolVar(&opts.verbose, "verbose", false, "Log every scenario and print passing verdicts")
	flagSet.StringVar(&opts.catalog, "catalog", defaultCatalog, "Interrupt scenario catalog")
	flagSet.StringVar(&opts.program, "program", defaultProgram, "Program for the External Program group (.asm, .bin or .hex)")
	flagSet.StringVar(&opts.traceFile, "trace-file", trace.DefaultFile, "VCD output file")
	flagSet.IntVar(&opts.delay, "delay", bus.DefaultDelay, "Responder acknowledge delay in ticks")
	flagSet.StringVar(&opts.policy, "policy", irq.SinglePending.String(), "Interrupt latching policy: single or priority")
	logLevel := flagSet.String("log-level", logging.LevelInfo.String(), "Log level: error, warn, info or debug")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: fx68kbench [--trace] [--performance] [--catalog file] [--delay n] [--policy single|priority] [--log-level level]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}
	if opts.delay < 0 {
		return opts, fmt.Errorf("delay must not be negative: %d", opts.delay)
	}
	if _, ok := irq.ParsePolicy(opts.policy); !ok {
		return opts, fmt.Errorf("unknown policy %q", opts.policy)
	}
	level, ok := logging.ParseLevel(*logLevel)
	if !ok {
		return opts, fmt.Errorf("unknown log level %q", *logLevel)
	}
	opts.logLevel = level
	if opts.verbose {
		opts.logLevel = logging.LevelDebug
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(opts, os.Stdout))
}

func run(opts options, out io.Writer) int {
	logger := logging.New(os.Stderr, opts.logLevel, "[fx68k] ")

	cfg := bench.DefaultConfig()
	cfg.Bus.Delay = opts.delay
	cfg.IRQ.Policy, _ = irq.ParsePolicy(opts.policy)
	cfg.Performance = opts.performance

	b := bench.New(cfg, core.NewStandIn(core.DefaultConfig()))
	b.SetLogger(logger)

	if opts.trace {
		w, err := trace.Create(opts.traceFile)
		if err != nil {
			log.Fatalf("failed to enable tracing: %v", err)
		}
		defer func() {
			if err := w.Close(); err != nil {
				logger.Errorf("closing trace: %v", err)
			}
		}()
		b.SetDumper(w)
		logger.Infof("tracing to %s", opts.traceFile)
	}

	results := b.RunGroups(opts.program)

	catalog, err := scenario.Load(opts.catalog)
	if err != nil {
		logger.Errorf("%v", err)
	}
	if catalog.Skipped > 0 {
		logger.Warnf("%d malformed catalog lines skipped", catalog.Skipped)
	}

	r := runner.New(b, runner.DefaultConfig())
	r.SetLogger(logger)
	summary := r.RunCatalog(catalog)
	results = append(results, bench.Result{
		Name:    "Interrupt Scenarios",
		Passed:  summary.Failed == 0,
		Details: fmt.Sprintf("%d/%d scenarios passed", summary.Passed, summary.Total),
	})

	rep := report.New(out)
	rep.SetVerbose(opts.verbose)
	rep.Scenarios(summary)
	passed := rep.Groups(results)
	if opts.performance {
		rep.Performance(b.Stats())
	}

	if !passed {
		return 1
	}
	return 0
}
