// Package gen provides functions for generating go source code
//
// The gen package provides wrapper functions around the go/ast and
// go/token packages to reduce boilerplate.
package gen

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.Und, cases.NoLower)

// TypeSpecDecl generates a type declaration with the given name.
func TypeSpecDecl(name *ast.Ident, typ ast.Expr) *ast.GenDecl {
	return &ast.GenDecl{
		Tok: token.TYPE,
		Specs: []ast.Spec{
			&ast.TypeSpec{
				Name: name,
				Type: typ,
			},
		},
	}
}

// Sanitize modifies any names that are reserved in
// Go, so that they may be used as identifiers without
// causing a syntax error.
func Sanitize(name string) string {
	switch name {
	case "break", "default", "func", "interface", "select",
		"case", "defer", "go", "map", "struct",
		"chan", "else", "goto", "package", "switch",
		"const", "fallthrough", "if", "range", "type",
		"continue", "for", "import", "return", "var":
		return name + "_"
	}
	return name
}

// Identifier converts s into a valid Go identifier by dropping
// characters that cannot appear in one. An identifier that would
// begin with a digit is prefixed with an underscore.
func Identifier(s string) string {
	var buf strings.Builder
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			buf.WriteRune(r)
		}
	}
	id := buf.String()
	if id == "" {
		return "_"
	}
	if unicode.IsDigit([]rune(id)[0]) {
		id = "_" + id
	}
	return Sanitize(id)
}

// Public turns a string into a public (uppercase) identifier. Words
// separated by punctuation or spaces are title-cased and joined, so
// "user_id" and "user-id" both become UserId.
func Public(name string) *ast.Ident {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		words[i] = titler.String(w)
	}
	id := Identifier(strings.Join(words, ""))
	if id != "_" && !unicode.IsUpper([]rune(id)[0]) {
		id = "X" + id
	}
	return ast.NewIdent(id)
}

// Field creates a struct field. The tag and doc arguments may be
// empty.
func Field(name *ast.Ident, typ ast.Expr, tag, doc string) *ast.Field {
	field := &ast.Field{Type: typ}
	if name != nil {
		field.Names = []*ast.Ident{name}
	}
	if tag != "" {
		field.Tag = String(tag)
	}
	if doc != "" {
		field.Doc = CommentGroup(doc)
	}
	return field
}

// Struct creates a struct{} expression from a list of fields.
func Struct(fields ...*ast.Field) *ast.StructType {
	return &ast.StructType{Fields: &ast.FieldList{List: fields}}
}

// FieldList generates a field list from strings in the form "[name]
// expr".
func FieldList(fields ...string) (*ast.FieldList, error) {
	result := &ast.FieldList{List: []*ast.Field{}}
	for _, s := range fields {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 0 {
			return nil, fmt.Errorf("empty field list item %q", s)
		}
		var names []*ast.Ident
		typeExpr, err := parser.ParseExpr(parts[len(parts)-1])
		if err != nil {
			return nil, fmt.Errorf("could not parse type in %q: %v", s, err)
		}
		if len(parts) > 1 {
			names = []*ast.Ident{ast.NewIdent(parts[0])}
		}
		result.List = append(result.List, &ast.Field{
			Names: names,
			Type:  typeExpr,
		})
	}
	return result, nil
}

// String generates a literal string. If the string contains a double
// quote, backticks are used for quoting instead.
func String(s string) *ast.BasicLit {
	if strings.Contains(s, "\"") && !strings.Contains(s, "`") {
		return &ast.BasicLit{Kind: token.STRING, Value: "`" + s + "`"}
	}
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}

// ConstString creates a series of string const declarations from
// the name/type/value triples in args. An empty type leaves the
// constant untyped.
func ConstString(args ...string) *ast.GenDecl {
	decl := ast.GenDecl{Tok: token.CONST}

	if len(args)%3 != 0 {
		panic("Number of values passed to ConstString must be a multiple of 3")
	}
	for i := 0; i < len(args); i += 3 {
		name, typ, val := args[i], args[i+1], args[i+2]
		spec := &ast.ValueSpec{
			Names:  []*ast.Ident{ast.NewIdent(name)},
			Values: []ast.Expr{&ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(val)}},
		}
		if typ != "" {
			spec.Type = ast.NewIdent(typ)
		}
		decl.Specs = append(decl.Specs, spec)
	}

	if len(decl.Specs) > 1 {
		decl.Lparen = 1
	}

	return &decl
}

// CommentGroup creates a comment group from strings. Each line of
// each string becomes one line comment, and an empty string becomes
// an empty comment line. Leading and trailing empty lines are dropped.
func CommentGroup(comments ...string) *ast.CommentGroup {
	var group ast.CommentGroup
	blank := func() {
		group.List = append(group.List, &ast.Comment{Text: "//"})
	}
	for _, v := range comments {
		if v == "" {
			blank()
			continue
		}
		line := bufio.NewScanner(strings.NewReader(v))
		for line.Scan() {
			text := strings.TrimSpace(line.Text())
			if text == "" {
				blank()
				continue
			}
			group.List = append(group.List, &ast.Comment{Text: "// " + text})
		}
	}
	list := group.List
	for len(list) > 0 && list[0].Text == "//" {
		list = list[1:]
	}
	for len(list) > 0 && list[len(list)-1].Text == "//" {
		list = list[:len(list)-1]
	}
	if len(list) == 0 {
		return nil
	}
	group.List = list
	return &group
}

type Function struct {
	name, receiver, godoc string
	args, returns         []string
	err                   error
	body                  string
}

func Func(name string) *Function {
	return &Function{name: name}
}

// Decl generates Go source for a Func.  an error is returned if the
// body, or parameters cannot be parsed.
func (fn *Function) Decl() (*ast.FuncDecl, error) {
	var err error

	if fn.err != nil {
		return nil, fn.err
	}
	if fn.name == "" {
		return nil, errors.New("function name unset")
	}
	if len(fn.body) == 0 {
		return nil, fmt.Errorf("function body for %s unset", fn.name)
	}

	fl := func(args ...string) (list *ast.FieldList) {
		if len(args) == 0 || len(args[0]) == 0 || err != nil {
			return nil
		}
		list, err = FieldList(args...)
		return list
	}
	args := fl(fn.args...)
	returns := fl(fn.returns...)
	receiver := fl(fn.receiver)
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = &ast.FieldList{}
	}
	body, err := parseBlock(fn.body)
	if err != nil {
		return nil, fmt.Errorf("could not parse function body of %s: %v in\n%s", fn.name, err, fn.body)
	}
	return &ast.FuncDecl{
		Doc:  CommentGroup(fn.godoc),
		Recv: receiver,
		Name: ast.NewIdent(fn.name),
		Type: &ast.FuncType{
			Params:  args,
			Results: returns,
		},
		Body: body,
	}, nil
}

// Body sets the body of a function. The body should not include
// enclosing braces.
func (fn *Function) Body(format string, v ...interface{}) *Function {
	fn.body = fmt.Sprintf(format, v...)
	return fn
}

// Returns sets the return values of a function. Each return
// value should be a string matching the Go syntax for a
// single return value.
func (fn *Function) Returns(values ...string) *Function {
	fn.returns = values
	return fn
}

// Comment sets the Godoc comments for the function.
func (fn *Function) Comment(format string, v ...interface{}) *Function {
	fn.godoc = fmt.Sprintf(format, v...)
	return fn
}

// Args sets the arguments that a function takes.
func (fn *Function) Args(args ...string) *Function {
	fn.args = args
	return fn
}

// Receiver turns the function into a method operating on
// the specified type.
func (fn *Function) Receiver(receiver string) *Function {
	fn.receiver = receiver
	return fn
}

func parseBlock(s string) (*ast.BlockStmt, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "package tmp\nfunc _block() {\n%s\n}", s)
	file, err := parser.ParseFile(token.NewFileSet(), "", buf.Bytes(), 0)
	if err != nil {
		return nil, err
	}
	for _, decl := range file.Decls {
		if decl, ok := decl.(*ast.FuncDecl); ok {
			return decl.Body, nil
		}
	}
	return nil, fmt.Errorf("parse error: no function found in %q", buf.Bytes())
}

// ExprString converts an ast.Expr to the Go source it represents.
func ExprString(expr ast.Expr) string {
	var buf bytes.Buffer
	fs := token.NewFileSet()
	printer.Fprint(&buf, fs, expr)
	return buf.String()
}
