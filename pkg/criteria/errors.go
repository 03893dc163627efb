package criteria

import "fmt"

// CompileError describes a criteria string that cannot be represented as a
// decision table. Path is the catalog file the criteria came from (empty
// when compiling from memory); Line is the 1-based line within the criteria
// string, not the file.
type CompileError struct {
	Path    string
	Line    int
	Text    string
	Message string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: criteria line %d %q: %s", e.Path, e.Line, e.Text, e.Message)
	}
	return fmt.Sprintf("criteria line %d %q: %s", e.Line, e.Text, e.Message)
}

// WithPath returns a copy of the error tagged with the source file path.
func (e *CompileError) WithPath(path string) *CompileError {
	out := *e
	out.Path = path
	return &out
}
