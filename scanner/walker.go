package scanner

import (
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoredDirs are directories to skip during scanning.
var IgnoredDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	"node_modules":  true,
	"vendor":        true,
	"build":         true,
	"dist":          true,
	"target":        true,
	".idea":         true,
	".vscode":       true,
	"__pycache__":   true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".tox":          true,
	"venv":          true,
	".venv":         true,
	".gradle":       true,
	".codestats":    true,
	"grammars":      true,
}

// FileInfo represents a single file found during a scan.
type FileInfo struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Ext      string `json:"ext"`
	Language string `json:"language,omitempty"`
}

// WalkOptions configures the file walking behavior.
type WalkOptions struct {
	// Gitignore patterns to apply (can be nil)
	Gitignore *ignore.GitIgnore

	// LanguageFilter if true, only visits files with supported languages
	LanguageFilter bool
}

// WalkFunc is the callback function type for WalkFiles.
// It receives the absolute path, relative path, and file info for each file.
// Return filepath.SkipDir to skip a directory, or any other error to stop walking.
type WalkFunc func(absPath, relPath string, info os.FileInfo) error

// WalkFiles walks the directory tree and calls fn for each file. If root
// is a regular file, fn is called once for it, so a single source file can
// be analyzed the same way as a tree.
func WalkFiles(root string, opts WalkOptions, fn WalkFunc) error {
	if info, err := os.Stat(root); err != nil {
		return err
	} else if !info.IsDir() {
		if opts.LanguageFilter && DetectLanguage(root) == "" {
			return nil
		}
		return fn(root, filepath.Base(root), info)
	}

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		// Skip if matched by common ignore patterns
		if info.IsDir() {
			if IgnoredDirs[info.Name()] {
				return filepath.SkipDir
			}
		} else {
			if IgnoredDirs[info.Name()] {
				return nil
			}
		}

		// Skip if matched by .gitignore
		if opts.Gitignore != nil && opts.Gitignore.MatchesPath(relPath) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip directories (we only process files)
		if info.IsDir() {
			return nil
		}

		// Apply language filter if enabled
		if opts.LanguageFilter && DetectLanguage(path) == "" {
			return nil
		}

		return fn(path, relPath, info)
	})
}

// LoadGitignore loads .gitignore from root if it exists.
func LoadGitignore(root string) *ignore.GitIgnore {
	gitignorePath := filepath.Join(root, ".gitignore")

	if _, err := os.Stat(gitignorePath); err == nil {
		if gitignore, err := ignore.CompileIgnoreFile(gitignorePath); err == nil {
			return gitignore
		}
	}

	return nil
}

// ScanFiles walks the directory tree and returns all supported source files.
func ScanFiles(root string, gitignore *ignore.GitIgnore) ([]FileInfo, error) {
	var files []FileInfo

	opts := WalkOptions{
		Gitignore:      gitignore,
		LanguageFilter: true,
	}

	err := WalkFiles(root, opts, func(absPath, relPath string, info os.FileInfo) error {
		files = append(files, FileInfo{
			Path:     relPath,
			Size:     info.Size(),
			Ext:      filepath.Ext(absPath),
			Language: DetectLanguage(absPath),
		})
		return nil
	})

	return files, err
}
