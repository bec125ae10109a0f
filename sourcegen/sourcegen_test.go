package sourcegen

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/go-avro/avrogen"
	"github.com/CognitoIQ/go-avro/internal/gen"
)

type testLogger testing.T

func (t *testLogger) Printf(format string, v ...interface{}) {
	t.Logf(format, v...)
}

func readSchema(t *testing.T, name string) string {
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func newGenerator(t *testing.T) *Generator {
	var cfg avrogen.Config
	cfg.Option(avrogen.DefaultOptions...)
	cfg.Option(avrogen.LogOutput((*testLogger)(t)), avrogen.LogLevel(5))
	return New(&cfg, DefaultSettings()).WithLogger((*testLogger)(t))
}

// fakeCompiler returns fixed output and records the overrides it
// was called with.
type fakeCompiler struct {
	namespaces []gen.Namespace
	err        error
	overrides  map[string]string
}

func (c *fakeCompiler) Compile(schema string, overrides map[string]string) ([]gen.Namespace, error) {
	c.overrides = overrides
	return c.namespaces, c.err
}

func pointDecl() *gen.TypeDecl {
	return &gen.TypeDecl{
		Name: "Point",
		Decl: gen.TypeSpecDecl(ast.NewIdent("Point"), gen.Struct(
			gen.Field(ast.NewIdent("X"), ast.NewIdent("int64"), `avro:"x"`, ""),
			gen.Field(ast.NewIdent("Origin"), &ast.StarExpr{X: ast.NewIdent(gen.RootQualifier + "Point")}, `avro:"origin"`, ""),
		)),
	}
}

const pointSchema = `{"type":"record","name":"Point","namespace":"geo","fields":[]}`

func TestGenerateRecord(t *testing.T) {
	g := newGenerator(t)
	src, err := g.Generate(readSchema(t, "user.avsc"), "test.code.namespace")
	require.NoError(t, err)
	t.Logf("got \n%s", src)

	assert.True(t, strings.HasPrefix(src, DefaultSettings().Header+"\n"), "missing provenance header")
	assert.Contains(t, src, "namespace test.code.namespace")
	assert.Contains(t, src, "package namespace")
	assert.Contains(t, src, "// TestSchema is generated from the Avro type test.avro.test-schema.\n//\n"+
		"// A basic schema for storing blog messages\ntype TestSchema struct {\n")
	assert.Regexp(t, "\n    // Name of the user account\n    Username +string +`avro:\"username\"`\n", src)
	assert.Regexp(t, "\n    // The email of the user logging the message\n    Email +string +`avro:\"email\"`\n", src)
	assert.Regexp(t, "\n    // time in seconds\n    Timestamp +int64 +`avro:\"timestamp\"`\n", src)
	assert.NotContains(t, src, "\t")
	assert.NotContains(t, src, gen.RootQualifier)
	assert.NotContains(t, src, "$doc")
	assert.NotContains(t, src, "func (", "test-schema is rejected by the avro runtime")

	file, err := parser.ParseFile(token.NewFileSet(), "out.go", src, parser.ParseComments)
	require.NoError(t, err)
	assert.Equal(t, "namespace", file.Name.Name)
	assert.True(t, ast.IsGenerated(file))
	assert.Empty(t, file.Imports)
	typeCheck(t, src)
}

func TestGenerateRecordMethods(t *testing.T) {
	g := newGenerator(t)
	src, err := g.Generate(readSchema(t, "message.avsc"), "gentests.events")
	require.NoError(t, err)
	t.Logf("got \n%s", src)

	assert.Contains(t, src, "var schemaMessage = avro.MustParse(")
	assert.Contains(t, src, "func (r *Message) Schema() avro.Schema {\n    return schemaMessage\n}")
	assert.Contains(t, src, "func (r *Message) Marshal() ([]byte, error)")
	assert.Contains(t, src, "func (r *Message) Unmarshal(data []byte) error")
	assert.Regexp(t, "\n    // Message this one answers.\n    ReplyTo +\\*string ", src)
	assert.NotContains(t, src, `"math/big"`)

	file, err := parser.ParseFile(token.NewFileSet(), "out.go", src, 0)
	require.NoError(t, err)
	var paths []string
	for _, imp := range file.Imports {
		paths = append(paths, imp.Path.Value)
	}
	assert.Equal(t, []string{`"time"`, `"github.com/hamba/avro/v2"`}, paths)
	typeCheck(t, src)
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := newGenerator(t)
	schema := readSchema(t, "user.avsc")
	first, err := g.Generate(schema, "test.code.namespace")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := g.Generate(schema, "test.code.namespace")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGenerateWithoutNamespace(t *testing.T) {
	g := newGenerator(t)
	src, err := g.Generate(readSchema(t, "no-namespace.avsc"), "test.code.namespace")
	assert.Empty(t, src)

	var serr *avrogen.SchemaError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, avrogen.ErrNoNamespace)
}

func TestGenerateMalformedSchema(t *testing.T) {
	g := newGenerator(t)
	_, err := g.Generate(`{"type": "record", "name": `, "app")
	assert.Error(t, err)

	var serr *avrogen.SchemaError
	_, err = g.Generate(`{"type": "record", "name": "Rec", "namespace": "app"}`, "app")
	assert.ErrorAs(t, err, &serr, "record without fields")
}

func TestGeneratePassesOverride(t *testing.T) {
	c := &fakeCompiler{namespaces: []gen.Namespace{{Name: "target.ns", Types: []*gen.TypeDecl{pointDecl()}}}}
	g := New(c, DefaultSettings())

	_, err := g.Generate(pointSchema, "target.ns")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"geo": "target.ns"}, c.overrides)
}

func TestGenerateEmptyNamespaceOverride(t *testing.T) {
	c := &fakeCompiler{err: errors.New("boom")}
	g := New(c, DefaultSettings())

	_, err := g.Generate(`{"type":"record","name":"Point","fields":[]}`, "app")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, map[string]string{"": "app"}, c.overrides)
}

func TestGenerateSoftFail(t *testing.T) {
	tests := map[string][]gen.Namespace{
		"no namespace":   nil,
		"no declaration": {{Name: "geo"}},
	}
	for name, out := range tests {
		t.Run(name, func(t *testing.T) {
			g := New(&fakeCompiler{namespaces: out}, DefaultSettings()).WithLogger((*testLogger)(t))
			src, err := g.Generate(pointSchema, "app.geo")
			require.NoError(t, err)
			assert.Empty(t, src)

			unit, err := g.GenerateUnit("point.avro", pointSchema, "app.geo")
			require.NoError(t, err)
			assert.Nil(t, unit)
		})
	}
}

func TestGenerateTakesFirstDeclaration(t *testing.T) {
	other := &gen.TypeDecl{
		Name: "Other",
		Decl: gen.TypeSpecDecl(ast.NewIdent("Other"), ast.NewIdent("string")),
	}
	c := &fakeCompiler{namespaces: []gen.Namespace{
		{Name: "geo", Types: []*gen.TypeDecl{pointDecl(), other}},
		{Name: "unrelated", Types: []*gen.TypeDecl{other}},
	}}
	g := New(c, DefaultSettings())

	src, err := g.Generate(pointSchema, "app.geo")
	require.NoError(t, err)
	assert.Contains(t, src, "type Point struct")
	assert.Contains(t, src, "Origin *Point")
	assert.NotContains(t, src, "Other")
	assert.NotContains(t, src, gen.RootQualifier)
	assert.Contains(t, src, "namespace app.geo")
	assert.Contains(t, src, "package geo")
}

func TestGenerateSettings(t *testing.T) {
	settings := Settings{
		Header:      "// generated",
		FileComment: []string{"Package geo holds points."},
		Imports:     []string{"time"},
		Style:       gen.Style{TabWidth: 4},
	}
	c := &fakeCompiler{namespaces: []gen.Namespace{{Name: "geo", Types: []*gen.TypeDecl{{
		Name: "Stamp",
		Decl: gen.TypeSpecDecl(ast.NewIdent("Stamp"), gen.Struct(
			gen.Field(ast.NewIdent("At"), &ast.SelectorExpr{X: ast.NewIdent("time"), Sel: ast.NewIdent("Time")}, "", ""),
		)),
	}}}}}
	g := New(c, settings)
	settings.Imports[0] = "changed"

	src, err := g.Generate(pointSchema, "app.geo")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(src, "// generated\n"))
	assert.Contains(t, src, "// Package geo holds points.")
	assert.Contains(t, src, `"time"`)
	assert.Contains(t, src, "\n    At time.Time\n")
}

func TestGenerateUnit(t *testing.T) {
	g := newGenerator(t)
	unit, err := g.GenerateUnit(filepath.Join("app", "TestNamespace", "testSchema.avro"), readSchema(t, "user.avsc"), "app.TestNamespace")
	require.NoError(t, err)
	require.NotNil(t, unit)
	assert.Equal(t, "testSchema.avro.g.go", unit.Name)
	assert.Contains(t, unit.Source, "namespace app.TestNamespace")
	assert.Contains(t, unit.Source, "package TestNamespace")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "user.avro.g.go", FileName(filepath.Join("a", "b", "user.avro")))
	assert.Equal(t, "user.avsc.g.go", FileName("user.avsc"))
}
