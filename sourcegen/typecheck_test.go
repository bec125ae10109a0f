package sourcegen

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/go-avro/avrogen"
)

// avroStub declares the parts of the avro runtime that generated
// code refers to.
const avroStub = `package avro

type Schema interface {
	String() string
}

func MustParse(schema string) Schema
func Marshal(schema Schema, v any) ([]byte, error)
func Unmarshal(schema Schema, data []byte, v any) error
`

type stubImporter struct {
	fset  *token.FileSet
	std   types.Importer
	stubs map[string]*types.Package
}

func (imp *stubImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := imp.stubs[path]; ok {
		return pkg, nil
	}
	return imp.std.Import(path)
}

func checkFiles(t *testing.T, fset *token.FileSet, path string, imp types.Importer, files ...*ast.File) *types.Package {
	t.Helper()
	conf := types.Config{Importer: imp}
	pkg, err := conf.Check(path, fset, files, nil)
	require.NoError(t, err)
	return pkg
}

// typeCheck fails the test if src is not a well-typed Go file.
func typeCheck(t *testing.T, src string) {
	t.Helper()
	fset := token.NewFileSet()
	imp := &stubImporter{
		fset:  fset,
		std:   importer.ForCompiler(fset, "source", nil),
		stubs: make(map[string]*types.Package),
	}
	stub, err := parser.ParseFile(fset, "avro.go", avroStub, 0)
	require.NoError(t, err)
	imp.stubs[avrogen.RuntimePath] = checkFiles(t, fset, avrogen.RuntimePath, imp, stub)

	file, err := parser.ParseFile(fset, "generated.go", src, parser.ParseComments)
	require.NoError(t, err)
	checkFiles(t, fset, "example.com/generated", imp, file)
}
