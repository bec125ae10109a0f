// Package project generates Go source for every Avro schema file in a
// project tree.
//
// A Runner discovers schema files below a project root, resolves the
// namespace of each file from its location, and writes the generated
// source next to the schema. Files that were generated before are left
// alone. A failure to generate one file does not prevent the others
// from being generated.
package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/CognitoIQ/go-avro/sourcegen"
)

// A Generator produces the source for one schema file. The returned
// unit is nil when the schema produced no declaration.
// *sourcegen.Generator implements Generator.
type Generator interface {
	GenerateUnit(path, schema, target string) (*sourcegen.Unit, error)
}

// An Emitter stores generated units.
type Emitter interface {
	// Exists reports whether a unit with the given name was already
	// generated for schemaFile.
	Exists(schemaFile, name string) (bool, error)
	Emit(schemaFile string, unit *sourcegen.Unit) (string, error)
}

// DirEmitter writes each unit to the directory of its schema file.
type DirEmitter struct{}

func (DirEmitter) path(schemaFile, name string) string {
	return filepath.Join(filepath.Dir(schemaFile), name)
}

// Exists reports whether the file for name exists next to schemaFile.
func (e DirEmitter) Exists(schemaFile, name string) (bool, error) {
	_, err := os.Stat(e.path(schemaFile, name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Emit writes unit next to schemaFile and returns the path written.
func (e DirEmitter) Emit(schemaFile string, unit *sourcegen.Unit) (string, error) {
	name := e.path(schemaFile, unit.Name)
	return name, os.WriteFile(name, []byte(unit.Source), 0o666)
}

// FileResult describes the outcome for one schema file.
type FileResult struct {
	Schema    string
	Namespace string
	// Path of the generated file, empty if nothing was written.
	Output  string
	Skipped bool
	Err     error
}

// Result describes the outcome of a Run.
type Result struct {
	Diagnostics []Diagnostic
	Files       []FileResult
}

// Err returns the errors of all failed files, joined.
func (r *Result) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// A Runner generates sources for a project.
type Runner struct {
	Config    Config
	Generator Generator
	// Defaults to DirEmitter.
	Emitter Emitter
	// Receives logs when Config.EnableLogging is set.
	Logger logrus.FieldLogger
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Config.EnableLogging && r.Logger != nil {
		return r.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (r *Runner) emitter() Emitter {
	if r.Emitter == nil {
		return DirEmitter{}
	}
	return r.Emitter
}

// Discover returns the files below root whose names match pattern,
// in lexical order. Directories whose names begin with "." or "_",
// and vendor directories, are not searched.
func Discover(root, pattern string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		ok, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Run generates sources for all schema files below root. The returned
// error joins the errors of every file that failed; the Result is
// returned even then.
func (r *Runner) Run(ctx context.Context, root string) (*Result, error) {
	log := r.logger()
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := r.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	result := new(Result)
	if diag := CheckRuntime(root, r.Config.RuntimeModule); diag != nil {
		log.WithField("id", diag.ID).Error(diag.Message)
		result.Diagnostics = append(result.Diagnostics, *diag)
	}

	base := r.Config.BaseNamespace
	if base == "" {
		base = BaseNamespace(root)
	}
	files, err := Discover(root, r.Config.Pattern)
	if err != nil {
		return result, fmt.Errorf("discover schema files: %w", err)
	}
	log.WithFields(logrus.Fields{
		"root":           root,
		"base_namespace": base,
		"schemas":        len(files),
	}).Info("generating sources")

	result.Files = make([]FileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Config.Jobs)
	for i, file := range files {
		i, file := i, file
		if ctx.Err() != nil {
			result.Files[i] = FileResult{Schema: file, Err: fmt.Errorf("%s: %w", file, ctx.Err())}
			continue
		}
		g.Go(func() error {
			result.Files[i] = r.process(log, base, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, result.Err()
}

func (r *Runner) process(log logrus.FieldLogger, base, file string) FileResult {
	res := FileResult{Schema: file}
	log = log.WithField("schema", file)

	res.Namespace = sourcegen.ResolveNamespace(base, file)
	if _, found := sourcegen.FolderPath(base, file); !found {
		log.WithField("base_namespace", base).Debug("base namespace not found in schema path, using it unchanged")
	}
	log = log.WithField("namespace", res.Namespace)

	name := sourcegen.FileName(file)
	exists, err := r.emitter().Exists(file, name)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", file, err)
		return res
	}
	if exists {
		log.WithField("output", name).Info("output exists, skipping")
		res.Skipped = true
		return res
	}

	data, err := os.ReadFile(file)
	if err != nil {
		res.Err = err
		return res
	}
	unit, err := r.Generator.GenerateUnit(file, string(data), res.Namespace)
	if err != nil {
		log.WithError(err).Error("generation failed")
		res.Err = fmt.Errorf("%s: %w", file, err)
		return res
	}
	if unit == nil {
		log.Warn("schema produced no type declaration")
		return res
	}
	res.Output, err = r.emitter().Emit(file, unit)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", file, err)
		return res
	}
	log.WithField("output", res.Output).Info("generated")
	return res
}
