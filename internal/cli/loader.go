package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/token"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/jgrey4296/instal-stable-sub001/internal/ast"
	"github.com/jgrey4296/instal-stable-sub001/internal/compiler"
)

// LoadResult contains the compiled forest of the loaded specs.
type LoadResult struct {
	Forest []ast.Node
	Files  []string // CUE files compiled, sorted
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs resolves paths to CUE files and compiles them into one forest.
// A file path is used as is; a directory contributes the files matching any
// of the include globs, evaluated relative to that directory.
func LoadSpecs(paths, include []string) (*LoadResult, error) {
	seen := make(map[string]bool)
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}
		}

		found := []string{path}
		if info.IsDir() {
			found, err = FindCUEFiles(path, include)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning %s: %v", path, err)}
			}
		}
		for _, f := range found {
			f = filepath.Clean(f)
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %v", paths)}
	}
	sort.Strings(files)

	forest, err := compiler.CompileFiles(files...)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return &LoadResult{Forest: forest, Files: files}, nil
}

// FindCUEFiles returns the regular files under dir matching any include glob.
func FindCUEFiles(dir string, include []string) ([]string, error) {
	var files []string
	for _, pattern := range include {
		matches, err := doublestar.FilepathGlob(filepath.Join(dir, filepath.FromSlash(pattern)),
			doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	if compileErr, ok := compiler.AsCompileError(err); ok {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // Reading a CUE file failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE evaluation failed
	ErrCodeConfig      = "E007" // Invalid configuration
	ErrCodeStore       = "E008" // History store error

	// Spec structure errors
	ErrCodeInstitution = "E101" // Malformed institution or bridge section
	ErrCodeSyntax      = "E102" // Term or condition syntax
	ErrCodeQuery       = "E103" // Malformed query
	ErrCodeDomain      = "E104" // Malformed domain
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "cue":
		return ErrCodeBuildFailed
	case "files":
		return ErrCodeNoFiles
	case "conditions":
		return ErrCodeSyntax
	case "query", "step":
		return ErrCodeQuery
	case "domain":
		return ErrCodeDomain
	default:
		return ErrCodeInstitution
	}
}
