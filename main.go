package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codestats/analyze"
	"codestats/cache"
	"codestats/config"
	"codestats/metrics"
	"codestats/render"
	"codestats/scanner"
)

func main() {
	var target, output string
	flag.StringVar(&target, "target", ".", "File or directory to analyze")
	flag.StringVar(&target, "t", ".", "File or directory to analyze (shorthand)")
	flag.StringVar(&output, "output", "", "Output directory for reports (default: current directory)")
	flag.StringVar(&output, "o", "", "Output directory for reports (shorthand)")

	historyMode := flag.Bool("history", false, "Analyze every commit of the target's git history")
	format := flag.String("format", "", "Metrics output format: csv or json")
	jsonMode := flag.Bool("json", false, "Shorthand for --format json")
	graphMode := flag.Bool("graph", false, "Build and export the dependency graph (tdg.dot)")
	noCache := flag.Bool("no-cache", false, "Bypass the metrics cache")
	debugMode := flag.Bool("debug", false, "Show debug info (config, grammar paths, skipped files)")
	initConfig := flag.Bool("init-config", false, "Write a default config to .codestats/config.yaml and exit")
	helpMode := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *helpMode {
		fmt.Println("codestats - Source code metrics from tree-sitter parse trees")
		fmt.Println()
		fmt.Println("Usage: codestats [options]")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -t, --target <path>   File or directory to analyze (default: .)")
		fmt.Println("  -o, --output <dir>    Output directory for reports")
		fmt.Println("  --history             Analyze every commit of the git history")
		fmt.Println("  --format <fmt>        Metrics output format: csv or json")
		fmt.Println("  --json                Shorthand for --format json")
		fmt.Println("  --graph               Export the dependency graph (tdg.dot)")
		fmt.Println("  --no-cache            Bypass the metrics cache")
		fmt.Println("  --init-config         Write a default .codestats/config.yaml")
		fmt.Println("  --debug               Show debug info")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  codestats -t ./src                    # Metrics for a tree")
		fmt.Println("  codestats -t main.py                  # Metrics for one file")
		fmt.Println("  codestats -t . --history              # Per-commit metrics")
		fmt.Println("  codestats -t . --graph --json         # Graph + JSON metrics")
		os.Exit(0)
	}

	if *initConfig {
		path := filepath.Join(".codestats", "config.yaml")
		if err := config.WriteDefault(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flag overrides
	if *format != "" {
		cfg.Output.Format = config.Format(*format)
	}
	if *jsonMode {
		cfg.Output.Format = config.FormatJSON
	}
	if output != "" {
		cfg.Output.Dir = output
	}
	if *graphMode {
		cfg.Output.Graph = true
	}
	if *noCache {
		cfg.Cache.Enabled = false
	}
	if *debugMode {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting absolute path: %v\n", err)
		os.Exit(1)
	}

	// The grammar loader picks up the configured directory via its
	// environment search path.
	if cfg.GrammarDir != "" {
		os.Setenv("CODESTATS_GRAMMAR_DIR", cfg.GrammarDir)
	}

	loader := scanner.NewGrammarLoader()

	if cfg.Debug {
		fmt.Fprintf(os.Stderr, "[debug] Target: %s\n", absTarget)
		fmt.Fprintf(os.Stderr, "[debug] Output dir: %s\n", cfg.Output.Dir)
		fmt.Fprintf(os.Stderr, "[debug] Format: %s\n", cfg.Output.Format)
		if loader.HasGrammars() {
			fmt.Fprintf(os.Stderr, "[debug] Grammar dir: %s\n", loader.GrammarDir())
		} else {
			fmt.Fprintf(os.Stderr, "[debug] No grammar directory found\n")
		}
	}

	if !loader.HasGrammars() {
		fmt.Fprintln(os.Stderr, "Error: no grammar directory found")
		fmt.Fprintln(os.Stderr, "Install grammar libraries to ~/.codestats/grammars or set CODESTATS_GRAMMAR_DIR")
		os.Exit(1)
	}

	var metricsCache *cache.Cache
	if cfg.Cache.Enabled {
		metricsCache, err = cache.New(cache.Options{
			Dir:     cfg.Cache.Dir,
			TTL:     time.Duration(cfg.Cache.TTLDays) * 24 * time.Hour,
			Enabled: true,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating cache: %v\n", err)
			os.Exit(1)
		}
	}

	opts := analyze.Options{
		Target:  absTarget,
		Output:  cfg.Output.Dir,
		Format:  cfg.Output.Format,
		History: *historyMode,
		Graph:   cfg.Output.Graph,
		Cache:   metricsCache,
	}
	if cfg.Debug {
		opts.Logf = func(f string, args ...any) {
			fmt.Fprintf(os.Stderr, "[debug] "+f+"\n", args...)
		}
	}

	progress := render.NewProgress()
	opts.Progress = progress.Update

	runner := analyze.NewRunner(opts, loader)

	start := time.Now()
	runErr := runner.Run()
	progress.Finish()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}

	paths, err := runner.SaveMetrics()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing metrics: %v\n", err)
		os.Exit(1)
	}
	for _, path := range paths {
		fmt.Printf("Wrote %s\n", path)
	}

	if dotPath, err := runner.SaveGraph(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing graph: %v\n", err)
		os.Exit(1)
	} else if dotPath != "" {
		fmt.Printf("Wrote %s\n", dotPath)
	}

	if !*historyMode {
		render.Summary(os.Stdout, runner.Report.Get(metrics.DefaultKey))
	}

	fmt.Printf("\nFinished in %s\n", time.Since(start).Round(time.Millisecond))
}
