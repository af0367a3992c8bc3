// Package analyze orchestrates a metrics run: walking the target,
// parsing files, computing metric blocks, building the dependency graph
// and writing reports.
package analyze

import (
	"fmt"
	"os"
	"path/filepath"

	"codestats/cache"
	"codestats/config"
	"codestats/graph"
	"codestats/metrics"
	"codestats/scanner"
)

// Progress is called once per processed file.
type Progress func(done, total int, path string)

// Options configures a Runner.
type Options struct {
	// Target is the file or directory to analyze
	Target string

	// Output is the directory reports are written to
	Output string

	// Format selects the metrics file format
	Format config.Format

	// History analyzes every commit of the target's git history instead
	// of the working tree
	History bool

	// Graph enables dependency graph construction and export
	Graph bool

	// Cache holds previously computed blocks (can be nil)
	Cache *cache.Cache

	// Progress receives per-file updates (can be nil)
	Progress Progress

	// Logf receives debug output (can be nil)
	Logf func(format string, args ...any)
}

// Runner executes an analysis over a target and holds its results.
type Runner struct {
	opts   Options
	loader *scanner.GrammarLoader

	Report *metrics.Report
	Graph  *graph.DependencyGraph
}

// NewRunner creates a runner for the given options.
func NewRunner(opts Options, loader *scanner.GrammarLoader) *Runner {
	r := &Runner{
		opts:   opts,
		loader: loader,
		Report: metrics.NewReport(),
	}
	if opts.Graph {
		r.Graph = graph.NewDependencyGraph(opts.Target)
	}
	return r
}

// Run executes the analysis. History mode requires the target to be a
// git repository.
func (r *Runner) Run() error {
	info, err := os.Stat(r.opts.Target)
	if err != nil {
		return fmt.Errorf("target %s: %w", r.opts.Target, err)
	}

	if r.opts.History {
		if !info.IsDir() || !scanner.IsRepository(r.opts.Target) {
			return fmt.Errorf("target %s is not a git repository", r.opts.Target)
		}
		return r.runHistory()
	}

	return r.runDefault()
}

// runDefault analyzes the working tree and stores blocks under the
// default report key.
func (r *Runner) runDefault() error {
	gitignore := scanner.LoadGitignore(r.opts.Target)

	files, err := scanner.ScanFiles(r.opts.Target, gitignore)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", r.opts.Target, err)
	}

	targetIsDir := isDir(r.opts.Target)

	for i, file := range files {
		absPath := filepath.Join(r.opts.Target, file.Path)
		if !targetIsDir {
			absPath = r.opts.Target
		}

		content, err := os.ReadFile(absPath)
		if err != nil {
			r.logf("read %s: %v", absPath, err)
			continue
		}

		blocks, pf, err := r.analyzeContent(file.Path, content)
		if err != nil {
			r.logf("parse %s: %v", file.Path, err)
			continue
		}

		if blocks != nil {
			r.Report.AddDefault(blocks)
		}
		if pf != nil {
			if r.Graph != nil {
				r.buildGraph(pf, file.Path)
			}
			pf.Close()
		}

		if r.opts.Progress != nil {
			r.opts.Progress(i+1, len(files), file.Path)
		}
	}

	return nil
}

// runHistory replays the commit history oldest first. Each commit's
// report entry holds the blocks of only the files that commit added or
// modified; unchanged files are not re-emitted, deletions produce
// nothing.
func (r *Runner) runHistory() error {
	commits, err := scanner.ListCommits(r.opts.Target)
	if err != nil {
		return fmt.Errorf("listing commits: %w", err)
	}

	for i, commit := range commits {
		changes, err := scanner.ChangedFiles(r.opts.Target, commit)
		if err != nil {
			return fmt.Errorf("changes for %s: %w", commit, err)
		}

		var commitBlocks []metrics.Block
		for _, change := range changes {
			if scanner.DetectLanguage(change.Path) == "" {
				continue
			}
			if change.Status == scanner.StatusDeleted {
				continue
			}

			content, err := scanner.ShowBlob(r.opts.Target, commit, change.Path)
			if err != nil {
				r.logf("blob %s at %s: %v", change.Path, commit, err)
				continue
			}

			blocks, pf, err := r.analyzeContent(change.Path, content)
			if err != nil {
				r.logf("parse %s at %s: %v", change.Path, commit, err)
				continue
			}
			if pf != nil {
				pf.Close()
			}
			commitBlocks = append(commitBlocks, blocks...)
		}

		r.Report.Add(commit, commitBlocks)

		if r.opts.Progress != nil {
			r.opts.Progress(i+1, len(commits), commit)
		}
	}

	return nil
}

// analyzeContent computes blocks for one file's content, consulting the
// cache first. The returned ParsedFile is nil on a cache hit and must be
// closed by the caller otherwise.
func (r *Runner) analyzeContent(relPath string, content []byte) ([]metrics.Block, *scanner.ParsedFile, error) {
	lang := scanner.DetectLanguage(relPath)
	if lang == "" {
		return nil, nil, nil
	}

	var hash string
	if r.opts.Cache != nil && r.opts.Cache.Enabled() {
		hash = cache.ContentHash(content)
		// Graph construction needs the parse tree, so only short-circuit
		// when the tree is not required.
		if r.Graph == nil {
			if blocks, ok := r.opts.Cache.GetBlocks(hash, lang); ok {
				blocks = rekeyPath(blocks, relPath)
				return blocks, nil, nil
			}
		}
	}

	pf, err := r.loader.Parse(relPath, content)
	if err != nil {
		return nil, nil, err
	}
	if pf == nil {
		return nil, nil, nil
	}

	cfg := r.loader.Config(pf.Language)
	blocks := metrics.FromFile(pf, cfg)

	if hash != "" {
		if err := r.opts.Cache.SetBlocks(hash, lang, blocks); err != nil {
			r.logf("cache write for %s: %v", relPath, err)
		}
	}

	return blocks, pf, nil
}

// SaveMetrics writes the report to the output directory and returns the
// written file paths. A single-key report is written as metrics.csv or
// metrics.json; history reports get one file per commit under metrics/.
func (r *Runner) SaveMetrics() ([]string, error) {
	keys := r.Report.Keys()
	if len(keys) == 0 {
		return nil, nil
	}

	ext := "csv"
	write := metrics.WriteCSV
	if r.opts.Format == config.FormatJSON {
		ext = "json"
		write = metrics.WriteJSON
	}

	if len(keys) == 1 {
		path := filepath.Join(r.opts.Output, "metrics."+ext)
		if err := write(path, r.Report.Table(keys[0])); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var paths []string
	for _, key := range keys {
		path := filepath.Join(r.opts.Output, "metrics", key+"."+ext)
		if err := write(path, r.Report.Table(key)); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SaveGraph exports the dependency graph as DOT and persists the binary
// form under the target's data directory. Returns the DOT path.
func (r *Runner) SaveGraph() (string, error) {
	if r.Graph == nil {
		return "", nil
	}

	dotPath := filepath.Join(r.opts.Output, "tdg.dot")
	if err := r.Graph.ExportDOT(dotPath); err != nil {
		return "", err
	}

	if isDir(r.opts.Target) {
		if err := r.Graph.SaveBinary(graph.GraphPath(r.opts.Target)); err != nil {
			return "", err
		}
	}

	return dotPath, nil
}

// rekeyPath rewrites the file path on cached blocks, which may have been
// computed under a different relative path.
func rekeyPath(blocks []metrics.Block, relPath string) []metrics.Block {
	out := make([]metrics.Block, len(blocks))
	copy(out, blocks)
	for i := range out {
		out[i].FilePath = relPath
	}
	// The first block is the file root, named after the file.
	if len(out) > 0 {
		out[0].NodeName = filepath.Base(relPath)
	}
	return out
}

func (r *Runner) logf(format string, args ...any) {
	if r.opts.Logf != nil {
		r.opts.Logf(format, args...)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
