// Package sourcegen turns Avro schema documents into Go source files
// placed in a namespace derived from the schema's location.
//
// A Generator drives a Compiler, which turns schema text into type
// declarations, and re-homes the first declaration it produces into
// the requested namespace. The namespace is usually computed with
// ResolveNamespace.
package sourcegen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/CognitoIQ/go-avro/avrogen"
	"github.com/CognitoIQ/go-avro/avsc"
	"github.com/CognitoIQ/go-avro/internal/gen"
)

// Extension is the suffix added to a schema file's name to name the
// Go source generated from it.
const Extension = ".g.go"

// A Compiler translates schema text into type declarations grouped
// by namespace. Declarations in a namespace that is a key of
// overrides must be placed in the namespace it maps to.
type Compiler interface {
	Compile(schema string, overrides map[string]string) ([]gen.Namespace, error)
}

// Types implementing the Logger interface can receive
// information about schemas that produced no output.
// The Logger interface is implemented by *log.Logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Settings are the fixed parts of every generated file.
type Settings struct {
	// Single comment line written at the top of the file.
	Header string
	// Package documentation, one element per line.
	FileComment []string
	// Import paths, in order. Imports the declaration does not use
	// are removed from the output.
	Imports []string
	Style   gen.Style
}

// DefaultSettings returns the settings used by New when none are
// given.
func DefaultSettings() Settings {
	return Settings{
		Header: "// Code generated by avrogen. DO NOT EDIT.",
		FileComment: []string{
			"Types in this file are generated from an Avro schema document.",
			"Changes to this file may cause incorrect behavior and will be",
			"lost if the code is regenerated.",
		},
		Imports: []string{avrogen.BigPath, avrogen.TimePath, avrogen.RuntimePath},
		Style:   gen.SpaceStyle,
	}
}

// A Unit is the generated source for one schema file.
type Unit struct {
	Name   string
	Source string
}

// FileName returns the name of the file generated from schemaFile.
func FileName(schemaFile string) string {
	return filepath.Base(schemaFile) + Extension
}

// A Generator produces Go source from schema documents. It holds no
// mutable state and is safe for concurrent use.
type Generator struct {
	compiler Compiler
	settings Settings
	logger   Logger
}

// New creates a Generator that compiles schemas with c. The settings
// are copied.
func New(c Compiler, settings Settings) *Generator {
	settings.FileComment = append([]string(nil), settings.FileComment...)
	settings.Imports = append([]string(nil), settings.Imports...)
	return &Generator{compiler: c, settings: settings}
}

// WithLogger returns a copy of g that reports schemas producing no
// output to l.
func (g *Generator) WithLogger(l Logger) *Generator {
	c := *g
	c.logger = l
	return &c
}

func (g *Generator) logf(format string, v ...interface{}) {
	if g.logger != nil {
		g.logger.Printf(format, v...)
	}
}

// Generate compiles schema and returns Go source declaring its
// top-level type in the namespace target.
//
// Errors from decoding the schema or from the Compiler are returned
// as-is. When the Compiler produces no namespace or no declaration,
// Generate returns an empty string and a nil error.
func (g *Generator) Generate(schema, target string) (string, error) {
	meta, err := avsc.ParseMetadata([]byte(schema))
	if err != nil {
		return "", err
	}
	if !meta.IsRecord() {
		g.logf("schema %s has type %q, not %q", meta.FullName(), meta.Type, avsc.RecordType)
	}
	overrides := map[string]string{meta.Namespace: target}

	namespaces, err := g.compiler.Compile(schema, overrides)
	if err != nil {
		return "", err
	}
	if len(namespaces) == 0 {
		g.logf("schema %s produced no namespace", meta.FullName())
		return "", nil
	}
	if len(namespaces[0].Types) == 0 {
		g.logf("schema %s produced no type declaration in namespace %s", meta.FullName(), namespaces[0].Name)
		return "", nil
	}

	ns := gen.Namespace{
		Name:     target,
		Comments: g.settings.FileComment,
		Imports:  g.settings.Imports,
		Types:    []*gen.TypeDecl{namespaces[0].Types[0]},
	}
	namespaces[0].Types = namespaces[0].Types[1:]
	for _, rest := range namespaces {
		for _, t := range rest.Types {
			g.logf("schema %s: not emitting %s declared in namespace %s", meta.FullName(), t.Name, rest.Name)
		}
	}
	namespaces[0].Types = nil

	src, err := ns.Source(g.settings.Style)
	if err != nil {
		return "", fmt.Errorf("print %s: %w", meta.FullName(), err)
	}

	var buf bytes.Buffer
	buf.WriteString(g.settings.Header)
	buf.WriteString("\n\n")
	buf.Write(src)

	out := bytes.ReplaceAll(buf.Bytes(), []byte(gen.RootQualifier), nil)
	out, err = gen.FormattedSource(out, g.settings.Style)
	if err != nil {
		return "", fmt.Errorf("format %s: %w", meta.FullName(), err)
	}
	return string(out), nil
}

// GenerateUnit generates the source for the schema file at path, whose
// contents are schema. The returned Unit is nil if the schema produced
// no declaration.
func (g *Generator) GenerateUnit(path, schema, target string) (*Unit, error) {
	src, err := g.Generate(schema, target)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	return &Unit{Name: FileName(path), Source: src}, nil
}
