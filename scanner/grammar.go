package scanner

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

//go:embed queries/*.scm
var queryFiles embed.FS

// LanguageConfig holds a dynamically loaded parser language and its base query.
type LanguageConfig struct {
	Language *tree_sitter.Language
	Query    *tree_sitter.Query
}

// GrammarLoader handles dynamic loading of tree-sitter grammars.
type GrammarLoader struct {
	configs    map[string]*LanguageConfig
	grammarDir string
}

// displayNames maps internal language names to the names used in reports.
var displayNames = map[string]string{
	"python": "Python",
	"java":   "Java",
}

// Extension to language mapping.
var extToLang = map[string]string{
	".py":   "python",
	".java": "java",
}

// NewGrammarLoader creates a loader that searches for grammar shared libraries.
func NewGrammarLoader() *GrammarLoader {
	loader := &GrammarLoader{
		configs: make(map[string]*LanguageConfig),
	}

	// Find grammar directory - check env var first
	possibleDirs := []string{}
	if envDir := os.Getenv("CODESTATS_GRAMMAR_DIR"); envDir != "" {
		possibleDirs = append(possibleDirs, envDir)
	}
	possibleDirs = append(possibleDirs,
		filepath.Join(getExecutableDir(), "grammars"),
		filepath.Join(getExecutableDir(), "..", "lib", "grammars"),
		"/usr/local/lib/codestats/grammars",
		filepath.Join(os.Getenv("HOME"), ".codestats", "grammars"),
		"./grammars",         // For development
		"./scanner/grammars", // For development from root
	)

	for _, dir := range possibleDirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			loader.grammarDir = dir
			break
		}
	}

	return loader
}

// HasGrammars returns true if a grammar directory was found.
func (l *GrammarLoader) HasGrammars() bool {
	return l.grammarDir != ""
}

// GrammarDir returns the grammar directory path (for diagnostics).
func (l *GrammarLoader) GrammarDir() string {
	return l.grammarDir
}

// LoadLanguage dynamically loads a grammar from .so/.dylib and compiles
// its base query.
func (l *GrammarLoader) LoadLanguage(lang string) error {
	if _, exists := l.configs[lang]; exists {
		return nil // Already loaded
	}

	if l.grammarDir == "" {
		return fmt.Errorf("no grammar directory found")
	}

	// OS-specific library extension
	var libExt string
	switch runtime.GOOS {
	case "darwin":
		libExt = ".dylib"
	case "windows":
		libExt = ".dll"
	default:
		libExt = ".so"
	}

	// Load shared library
	libPath := filepath.Join(l.grammarDir, fmt.Sprintf("libtree-sitter-%s%s", lang, libExt))
	lib, err := loadLibrary(libPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", libPath, err)
	}

	// Get language function
	langFunc, err := getLanguageFunc(lib, lang)
	if err != nil {
		return fmt.Errorf("get func for %s: %w", lang, err)
	}
	language := tree_sitter.NewLanguage(langFunc())

	// Load base query
	queryBytes, err := queryFiles.ReadFile(fmt.Sprintf("queries/%s.scm", lang))
	if err != nil {
		return fmt.Errorf("no query for %s", lang)
	}

	query, qerr := tree_sitter.NewQuery(language, string(queryBytes))
	if qerr != nil {
		return fmt.Errorf("bad query for %s: %v", lang, qerr)
	}

	l.configs[lang] = &LanguageConfig{Language: language, Query: query}
	return nil
}

// Config returns the loaded configuration for a language, or nil if the
// language has not been loaded.
func (l *GrammarLoader) Config(lang string) *LanguageConfig {
	return l.configs[lang]
}

// DetectLanguage returns the internal language name for a file path.
func DetectLanguage(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	return extToLang[ext]
}

// DisplayName returns the report name for an internal language name.
func DisplayName(lang string) string {
	if name, ok := displayNames[lang]; ok {
		return name
	}
	return lang
}

// SupportedExtensions returns the file extensions routed to a parser.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extToLang))
	for ext := range extToLang {
		exts = append(exts, ext)
	}
	return exts
}

// ParsedFile holds a parsed syntax tree together with its source.
// Callers must Close it to release the tree and parser.
type ParsedFile struct {
	Path     string
	Language string // internal name: "python", "java"
	Source   []byte
	Tree     *tree_sitter.Tree

	parser *tree_sitter.Parser
}

// Close releases the underlying tree-sitter resources.
func (f *ParsedFile) Close() {
	if f.Tree != nil {
		f.Tree.Close()
	}
	if f.parser != nil {
		f.parser.Close()
	}
}

// ParseFile reads and parses a source file. Returns nil for unsupported
// or unloadable languages, mirroring how unsupported files are skipped
// during a scan.
func (l *GrammarLoader) ParseFile(filePath string) (*ParsedFile, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return l.Parse(filePath, content)
}

// Parse parses source content as the language detected from filePath.
func (l *GrammarLoader) Parse(filePath string, content []byte) (*ParsedFile, error) {
	lang := DetectLanguage(filePath)
	if lang == "" {
		return nil, nil
	}

	if err := l.LoadLanguage(lang); err != nil {
		return nil, nil // Skip if grammar unavailable
	}

	config := l.configs[lang]

	parser := tree_sitter.NewParser()
	parser.SetLanguage(config.Language)

	tree := parser.Parse(content, nil)
	if tree == nil {
		parser.Close()
		return nil, fmt.Errorf("parse %s: no tree produced", filePath)
	}

	return &ParsedFile{
		Path:     filePath,
		Language: lang,
		Source:   content,
		Tree:     tree,
		parser:   parser,
	}, nil
}

func getExecutableDir() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Dir(exe)
	}
	return "."
}
