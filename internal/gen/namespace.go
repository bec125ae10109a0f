package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"
)

// RootQualifier is written ahead of references to named types whose
// declaring namespace is not yet known. The marker is not valid Go and
// must be removed from serialized source before it is parsed again.
const RootQualifier = "$root."

// A TypeDecl is a single type declaration along with the
// declarations that accompany it, such as constants of the type
// and its methods.
type TypeDecl struct {
	Name    string
	Decl    *ast.GenDecl
	Members []ast.Decl
}

// A Namespace groups type declarations under a dotted name. It
// serializes to a single Go source file for a package named after
// the last element of the namespace.
type Namespace struct {
	Name     string
	Comments []string
	Imports  []string
	Types    []*TypeDecl
}

// PackageName returns the Go package name for a dotted namespace.
func PackageName(namespace string) string {
	if i := strings.LastIndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return Identifier(namespace)
}

// A Style controls the layout of serialized source.
type Style struct {
	// Indent with tabs rather than spaces.
	TabIndent bool
	// Width of an indentation level, in columns.
	TabWidth int
}

var (
	// GoStyle is the layout produced by gofmt.
	GoStyle = Style{TabIndent: true, TabWidth: 8}
	// SpaceStyle indents with four spaces.
	SpaceStyle = Style{TabWidth: 4}
)

func (s Style) printer() *printer.Config {
	mode := printer.UseSpaces
	if s.TabIndent {
		mode |= printer.TabIndent
	}
	width := s.TabWidth
	if width <= 0 {
		width = 8
	}
	return &printer.Config{Mode: mode, Tabwidth: width}
}

// File converts the namespace into an *ast.File. The namespace's
// comments become the package documentation, followed by a line
// naming the full namespace.
func (ns *Namespace) File() *ast.File {
	file := &ast.File{Name: ast.NewIdent(PackageName(ns.Name))}
	doc := append([]string{}, ns.Comments...)
	if len(doc) > 0 {
		doc = append(doc, "")
	}
	doc = append(doc, "namespace "+ns.Name)
	file.Doc = CommentGroup(strings.Join(doc, "\n"))

	if len(ns.Imports) > 0 {
		decl := &ast.GenDecl{Tok: token.IMPORT, Lparen: 1}
		for _, path := range ns.Imports {
			decl.Specs = append(decl.Specs, &ast.ImportSpec{
				Path: &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(path)},
			})
		}
		file.Decls = append(file.Decls, decl)
	}
	for _, t := range ns.Types {
		file.Decls = append(file.Decls, t.Decl)
		file.Decls = append(file.Decls, t.Members...)
	}
	return file
}

// Source prints the namespace as Go source in the given style. The
// output is printed as-is and may still contain RootQualifier markers.
func (ns *Namespace) Source(style Style) ([]byte, error) {
	var buf bytes.Buffer

	file := ns.File()

	// our *ast.File did not come from a real Go source
	// file. As such, all of its node positions are 0, and
	// the go/printer package will print the package
	// comment between the package statement and
	// the package name. The most straightforward way
	// to work around this is to put the package comment
	// there ourselves.
	if file.Doc != nil {
		for _, v := range file.Doc.List {
			buf.WriteString(v.Text)
			buf.WriteString("\n")
		}
		file.Doc = nil
	}

	// For the same reason, struct field comments end up one
	// field too early, so they are written in after printing.
	docs := detachFieldDocs(file)
	defer docs.restore()

	var out bytes.Buffer
	if err := style.printer().Fprint(&out, token.NewFileSet(), file); err != nil {
		return nil, err
	}
	buf.Write(docs.insert(out.Bytes()))
	return buf.Bytes(), nil
}

const fieldDocMarker = "$doc"

var fieldDocPattern = regexp.MustCompile(`\$doc(\d+)\$`)

type fieldDoc struct {
	field *ast.Field
	name  string
	doc   *ast.CommentGroup
}

type fieldDocs []fieldDoc

// detachFieldDocs removes the doc comments of the named struct
// fields in file and prefixes the name of each documented field with
// a numbered marker.
func detachFieldDocs(file *ast.File) fieldDocs {
	var docs fieldDocs
	ast.Inspect(file, func(n ast.Node) bool {
		st, ok := n.(*ast.StructType)
		if !ok || st.Fields == nil {
			return true
		}
		for _, f := range st.Fields.List {
			if f.Doc == nil || len(f.Names) == 0 {
				continue
			}
			id := f.Names[0]
			docs = append(docs, fieldDoc{field: f, name: id.Name, doc: f.Doc})
			id.Name = fmt.Sprintf("%s%d$%s", fieldDocMarker, len(docs)-1, id.Name)
			f.Doc = nil
		}
		return true
	})
	return docs
}

func (docs fieldDocs) restore() {
	for _, d := range docs {
		d.field.Names[0].Name = d.name
		d.field.Doc = d.doc
	}
}

// insert writes each detached comment above the line holding its
// marker, at the same indentation, and removes the marker.
func (docs fieldDocs) insert(src []byte) []byte {
	if len(docs) == 0 {
		return src
	}
	var out bytes.Buffer
	for _, line := range bytes.SplitAfter(src, []byte("\n")) {
		m := fieldDocPattern.FindSubmatchIndex(line)
		if m == nil {
			out.Write(line)
			continue
		}
		i, err := strconv.Atoi(string(line[m[2]:m[3]]))
		if err != nil || i >= len(docs) {
			out.Write(line)
			continue
		}
		indent := line[:len(line)-len(bytes.TrimLeft(line, " \t"))]
		for _, c := range docs[i].doc.List {
			out.Write(indent)
			out.WriteString(c.Text)
			out.WriteByte('\n')
		}
		out.Write(line[:m[0]])
		out.Write(line[m[1]:])
	}
	return out.Bytes()
}

// FormattedSource parses src, removes unused imports and reformats it
// in the given style.
func FormattedSource(src []byte, style Style) ([]byte, error) {
	out, err := imports.Process("", src, &imports.Options{
		Comments:  true,
		TabIndent: style.TabIndent,
		TabWidth:  style.TabWidth,
	})
	if err != nil {
		return nil, fmt.Errorf("%v in %s", err, src)
	}
	if style.TabIndent {
		return out, nil
	}

	// imports.Process indents with tabs regardless of its options.
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", out, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := style.printer().Fprint(&buf, fset, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
