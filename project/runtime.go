package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// Severity of a Diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// A Diagnostic is an advisory message about the project. Diagnostics
// never stop generation.
type Diagnostic struct {
	ID       string
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Severity, d.ID, d.Message)
}

// MissingRuntimeID identifies the diagnostic reported when the
// project does not require the runtime module.
const MissingRuntimeID = "AVROGEN001"

func readModFile(root string) (*modfile.File, error) {
	name := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return modfile.ParseLax(name, data, nil)
}

// CheckRuntime reports a Diagnostic if the go.mod file in root does
// not require module. It returns nil if the requirement is present.
func CheckRuntime(root, module string) *Diagnostic {
	mf, err := readModFile(root)
	if err == nil {
		for _, req := range mf.Require {
			if req.Mod.Path == module {
				return nil
			}
		}
	}
	msg := fmt.Sprintf("could not find a requirement on %s in %s", module, filepath.Join(root, "go.mod"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Diagnostic{ID: MissingRuntimeID, Severity: SeverityError, Message: msg}
}

// BaseNamespace returns the root namespace of the project in root:
// the last element of its module path, or the name of the directory
// when it has no usable go.mod file.
func BaseNamespace(root string) string {
	if mf, err := readModFile(root); err == nil && mf.Module != nil {
		return path.Base(mf.Module.Mod.Path)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}
