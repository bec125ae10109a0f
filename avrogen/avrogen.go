package avrogen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/hamba/avro/v2"

	"github.com/CognitoIQ/go-avro/internal/gen"
)

// Avro tooling accepts names such as "test-schema" that the Avro
// specification forbids. Generated identifiers are sanitized anyway.
// This disables name validation in the avro package for the whole
// program.
func init() {
	avro.SkipNameValidation = true
}

// Import paths of the packages that generated declarations may refer to.
const (
	RuntimePath = "github.com/hamba/avro/v2"
	BigPath     = "math/big"
	TimePath    = "time"
)

var (
	// ErrNoNamespace is reported for named types that declare no namespace.
	ErrNoNamespace = errors.New("namespace is required")
	// ErrNameCollision is reported when two fields of a record, or two
	// symbols of an enum, map to the same Go identifier.
	ErrNameCollision = errors.New("names map to the same Go identifier")
)

// A SchemaError is returned when a schema document cannot be compiled.
type SchemaError struct {
	// Full name of the offending type, if known.
	Name string
	Err  error
}

func (e *SchemaError) Error() string {
	if e.Name == "" {
		return "avrogen: " + e.Err.Error()
	}
	return fmt.Sprintf("avrogen: %s: %v", e.Name, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Compile parses an Avro schema document and generates a Go type
// declaration for every named type it defines. Declarations are grouped
// by the Avro namespace of their type; when that namespace is a key in
// overrides, the group is named after the mapped value instead.
//
// The first declaration of the first namespace is always the
// declaration of the top-level type. References between generated
// types are written with gen.RootQualifier ahead of the type name.
func (cfg *Config) Compile(schema string, overrides map[string]string) ([]gen.Namespace, error) {
	s, err := avro.ParseWithCache(schema, "", &avro.SchemaCache{})
	if err != nil {
		cfg.errorf("parse schema: %v", err)
		return nil, &SchemaError{Err: err}
	}
	c := compilation{
		cfg:       cfg,
		overrides: overrides,
		index:     make(map[string]int),
		declared:  make(map[string]bool),
	}
	if err := c.declare(s); err != nil {
		return nil, err
	}
	cfg.debugf("declared %d types in %d namespaces", len(c.declared), len(c.namespaces))
	return c.namespaces, nil
}

type compilation struct {
	cfg        *Config
	overrides  map[string]string
	namespaces []gen.Namespace
	index      map[string]int
	declared   map[string]bool
}

func (c *compilation) add(namespace string, t *gen.TypeDecl) {
	if to, ok := c.overrides[namespace]; ok {
		namespace = to
	}
	i, ok := c.index[namespace]
	if !ok {
		i = len(c.namespaces)
		c.index[namespace] = i
		c.namespaces = append(c.namespaces, gen.Namespace{
			Name:    namespace,
			Imports: []string{BigPath, TimePath, RuntimePath},
		})
	}
	c.namespaces[i].Types = append(c.namespaces[i].Types, t)
}

// declare walks s depth-first, declaring each named type before the
// named types it refers to.
func (c *compilation) declare(s avro.Schema) error {
	switch s := s.(type) {
	case *avro.RecordSchema:
		if !c.first(s) {
			return nil
		}
		t, err := c.cfg.genRecord(s)
		if err != nil {
			return err
		}
		c.add(s.Namespace(), t)
		for _, f := range s.Fields() {
			if err := c.declare(f.Type()); err != nil {
				return err
			}
		}
	case *avro.EnumSchema:
		if !c.first(s) {
			return nil
		}
		t, err := c.cfg.genEnum(s)
		if err != nil {
			return err
		}
		c.add(s.Namespace(), t)
	case *avro.FixedSchema:
		if !c.first(s) {
			return nil
		}
		t, err := c.cfg.genFixed(s)
		if err != nil {
			return err
		}
		c.add(s.Namespace(), t)
	case *avro.ArraySchema:
		return c.declare(s.Items())
	case *avro.MapSchema:
		return c.declare(s.Values())
	case *avro.UnionSchema:
		for _, t := range s.Types() {
			if err := c.declare(t); err != nil {
				return err
			}
		}
	case *avro.RefSchema:
		return c.declare(s.Schema())
	}
	return nil
}

// first reports whether s has not been declared yet, and marks it
// declared.
func (c *compilation) first(s avro.NamedSchema) bool {
	if c.declared[s.FullName()] {
		return false
	}
	c.declared[s.FullName()] = true
	return true
}

func checkNamespace(s avro.NamedSchema) error {
	if s.Namespace() == "" {
		return &SchemaError{Name: s.FullName(), Err: ErrNoNamespace}
	}
	return nil
}

func (cfg *Config) genRecord(s *avro.RecordSchema) (*gen.TypeDecl, error) {
	if err := checkNamespace(s); err != nil {
		return nil, err
	}
	name := cfg.public(s.Name())
	cfg.debugf("generating record %s as %s", s.FullName(), name)

	fields := make([]*ast.Field, 0, len(s.Fields()))
	names := make(map[string]string, len(s.Fields()))
	for _, f := range s.Fields() {
		if cfg.filterFields != nil && cfg.filterFields(f.Name()) {
			cfg.debugf("ignoring field %s of %s", f.Name(), s.FullName())
			continue
		}
		typ, err := cfg.expr(f.Type())
		if err != nil {
			return nil, &SchemaError{Name: s.FullName() + "." + f.Name(), Err: err}
		}
		fieldName := cfg.public(f.Name())
		if cfg.methods && methodNames[fieldName] {
			fieldName += "_"
		}
		if prev, ok := names[fieldName]; ok {
			return nil, &SchemaError{
				Name: s.FullName() + "." + f.Name(),
				Err:  fmt.Errorf("%w: fields %s and %s are both %s", ErrNameCollision, prev, f.Name(), fieldName),
			}
		}
		names[fieldName] = f.Name()
		fields = append(fields, gen.Field(ast.NewIdent(fieldName), typ, cfg.tag(f.Name()), f.Doc()))
	}
	decl := gen.TypeSpecDecl(ast.NewIdent(name), gen.Struct(fields...))
	decl.Doc = typeDoc(name, s.FullName(), s.Doc())

	t := &gen.TypeDecl{Name: name, Decl: decl}
	if !cfg.methods {
		return t, nil
	}
	if err := checkRuntimeNames(s, make(map[string]bool)); err != nil {
		cfg.logf("not generating methods for %s: %v", s.FullName(), err)
		return t, nil
	}
	members, err := recordMethods(name, s.String())
	if err != nil {
		// These functions are all bundled with the program, and
		// should never fail to parse
		panic("failed to create record method: " + err.Error())
	}
	t.Members = members
	return t, nil
}

var methodNames = map[string]bool{"Schema": true, "Marshal": true, "Unmarshal": true}

// The avro package validates names when generated code parses its
// schema, so methods are only generated for schemas whose names
// follow the Avro naming rules.
func checkRuntimeNames(s avro.Schema, seen map[string]bool) error {
	checkNamed := func(s avro.NamedSchema) (bool, error) {
		if seen[s.FullName()] {
			return false, nil
		}
		seen[s.FullName()] = true
		for _, part := range strings.Split(s.FullName(), ".") {
			if !validName(part) {
				return false, fmt.Errorf("invalid name %q in %s", part, s.FullName())
			}
		}
		return true, nil
	}
	switch s := s.(type) {
	case *avro.RecordSchema:
		ok, err := checkNamed(s)
		if !ok {
			return err
		}
		for _, f := range s.Fields() {
			if !validName(f.Name()) {
				return fmt.Errorf("invalid field name %q in %s", f.Name(), s.FullName())
			}
			if err := checkRuntimeNames(f.Type(), seen); err != nil {
				return err
			}
		}
	case *avro.EnumSchema:
		ok, err := checkNamed(s)
		if !ok {
			return err
		}
		for _, sym := range s.Symbols() {
			if !validName(sym) {
				return fmt.Errorf("invalid symbol %q in %s", sym, s.FullName())
			}
		}
	case *avro.FixedSchema:
		_, err := checkNamed(s)
		return err
	case *avro.ArraySchema:
		return checkRuntimeNames(s.Items(), seen)
	case *avro.MapSchema:
		return checkRuntimeNames(s.Values(), seen)
	case *avro.UnionSchema:
		for _, t := range s.Types() {
			if err := checkRuntimeNames(t, seen); err != nil {
				return err
			}
		}
	case *avro.RefSchema:
		return checkRuntimeNames(s.Schema(), seen)
	}
	return nil
}

// validName reports whether name matches [A-Za-z_][A-Za-z0-9_]*.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

// recordMethods returns the declaration of a package variable
// holding the parsed schema of the record, and the Schema, Marshal
// and Unmarshal methods of the record type.
func recordMethods(name, schema string) ([]ast.Decl, error) {
	schemaVar := "schema" + name
	parsed := &ast.GenDecl{
		Tok: token.VAR,
		Doc: gen.CommentGroup(fmt.Sprintf("%s is the parsed Avro schema of %s.", schemaVar, name)),
		Specs: []ast.Spec{&ast.ValueSpec{
			Names: []*ast.Ident{ast.NewIdent(schemaVar)},
			Values: []ast.Expr{&ast.CallExpr{
				Fun:  selector("avro", "MustParse"),
				Args: []ast.Expr{gen.String(schema)},
			}},
		}},
	}
	fns := []*gen.Function{
		gen.Func("Schema").
			Receiver("r *"+name).
			Returns("avro.Schema").
			Comment("Schema returns the Avro schema of %s.", name).
			Body("return %s", schemaVar),
		gen.Func("Marshal").
			Receiver("r *"+name).
			Returns("[]byte", "error").
			Comment("Marshal encodes r in the Avro binary encoding.").
			Body("return avro.Marshal(r.Schema(), r)"),
		gen.Func("Unmarshal").
			Receiver("r *"+name).
			Args("data []byte").
			Returns("error").
			Comment("Unmarshal decodes Avro binary data into r.").
			Body("return avro.Unmarshal(r.Schema(), data, r)"),
	}
	result := make([]ast.Decl, 0, len(fns)+1)
	result = append(result, parsed)
	for _, fn := range fns {
		x, err := fn.Decl()
		if err != nil {
			return nil, err
		}
		result = append(result, x)
	}
	return result, nil
}

func (cfg *Config) genEnum(s *avro.EnumSchema) (*gen.TypeDecl, error) {
	if err := checkNamespace(s); err != nil {
		return nil, err
	}
	name := cfg.public(s.Name())
	cfg.debugf("generating enum %s as %s", s.FullName(), name)

	decl := gen.TypeSpecDecl(ast.NewIdent(name), ast.NewIdent("string"))
	decl.Doc = typeDoc(name, s.FullName(), s.Doc())

	t := &gen.TypeDecl{Name: name, Decl: decl}
	if len(s.Symbols()) == 0 {
		return t, nil
	}
	args := make([]string, 0, 3*len(s.Symbols()))
	consts := make(map[string]string, len(s.Symbols()))
	for _, sym := range s.Symbols() {
		constName := name + cfg.public(sym)
		if prev, ok := consts[constName]; ok {
			return nil, &SchemaError{
				Name: s.FullName(),
				Err:  fmt.Errorf("%w: symbols %s and %s are both %s", ErrNameCollision, prev, sym, constName),
			}
		}
		consts[constName] = sym
		args = append(args, constName, name, sym)
	}
	t.Members = []ast.Decl{gen.ConstString(args...)}
	return t, nil
}

func (cfg *Config) genFixed(s *avro.FixedSchema) (*gen.TypeDecl, error) {
	if err := checkNamespace(s); err != nil {
		return nil, err
	}
	name := cfg.public(s.Name())
	cfg.debugf("generating fixed %s as %s", s.FullName(), name)

	decl := gen.TypeSpecDecl(ast.NewIdent(name), &ast.ArrayType{
		Len: &ast.BasicLit{Kind: token.INT, Value: strconv.Itoa(s.Size())},
		Elt: ast.NewIdent("byte"),
	})
	decl.Doc = typeDoc(name, s.FullName(), "")
	return &gen.TypeDecl{Name: name, Decl: decl}, nil
}

func typeDoc(name, fullName, doc string) *ast.CommentGroup {
	comments := []string{fmt.Sprintf("%s is generated from the Avro type %s.", name, fullName)}
	if doc != "" {
		comments = append(comments, "", doc)
	}
	return gen.CommentGroup(comments...)
}

func selector(pkg, name string) ast.Expr {
	return &ast.SelectorExpr{X: ast.NewIdent(pkg), Sel: ast.NewIdent(name)}
}

// Return the Go expression for an Avro type. Named types are
// referenced through gen.RootQualifier.
func (cfg *Config) expr(s avro.Schema) (ast.Expr, error) {
	switch s := s.(type) {
	case *avro.PrimitiveSchema:
		if ex := logicalExpr(s.Logical()); ex != nil {
			return ex, nil
		}
		return primitiveExpr(s.Type())
	case *avro.ArraySchema:
		elt, err := cfg.expr(s.Items())
		if err != nil {
			return nil, err
		}
		return &ast.ArrayType{Elt: elt}, nil
	case *avro.MapSchema:
		val, err := cfg.expr(s.Values())
		if err != nil {
			return nil, err
		}
		return &ast.MapType{Key: ast.NewIdent("string"), Value: val}, nil
	case *avro.UnionSchema:
		return cfg.unionExpr(s)
	case *avro.FixedSchema:
		if ex := logicalExpr(s.Logical()); ex != nil {
			return ex, nil
		}
		return cfg.named(s), nil
	case *avro.RecordSchema:
		return cfg.named(s), nil
	case *avro.EnumSchema:
		return cfg.named(s), nil
	case *avro.RefSchema:
		return cfg.expr(s.Schema())
	case *avro.NullSchema:
		return ast.NewIdent("any"), nil
	}
	return nil, fmt.Errorf("unsupported schema type %q", s.Type())
}

func (cfg *Config) named(s avro.NamedSchema) ast.Expr {
	return ast.NewIdent(gen.RootQualifier + cfg.public(s.Name()))
}

// A union of null and one other type maps to a pointer, or to
// the other type itself when it already has a nil value.
func (cfg *Config) unionExpr(s *avro.UnionSchema) (ast.Expr, error) {
	types := s.Types()
	if !s.Nullable() || len(types) != 2 {
		cfg.debugf("union %s mapped to any", s.String())
		return ast.NewIdent("any"), nil
	}
	other := types[0]
	if other.Type() == avro.Null {
		other = types[1]
	}
	ex, err := cfg.expr(other)
	if err != nil {
		return nil, err
	}
	switch ex := ex.(type) {
	case *ast.ArrayType:
		if ex.Len == nil {
			return ex, nil
		}
	case *ast.MapType, *ast.StarExpr:
		return ex, nil
	case *ast.Ident:
		if ex.Name == "any" {
			return ex, nil
		}
	}
	return &ast.StarExpr{X: ex}, nil
}

func primitiveExpr(t avro.Type) (ast.Expr, error) {
	switch t {
	case avro.Boolean:
		return ast.NewIdent("bool"), nil
	case avro.Int:
		return ast.NewIdent("int"), nil
	case avro.Long:
		return ast.NewIdent("int64"), nil
	case avro.Float:
		return ast.NewIdent("float32"), nil
	case avro.Double:
		return ast.NewIdent("float64"), nil
	case avro.Bytes:
		return &ast.ArrayType{Elt: ast.NewIdent("byte")}, nil
	case avro.String:
		return ast.NewIdent("string"), nil
	case avro.Null:
		return ast.NewIdent("any"), nil
	}
	return nil, fmt.Errorf("unknown primitive type %q", t)
}

func logicalExpr(l avro.LogicalSchema) ast.Expr {
	if l == nil {
		return nil
	}
	switch l.Type() {
	case avro.Date, avro.TimestampMillis, avro.TimestampMicros,
		avro.LocalTimestampMillis, avro.LocalTimestampMicros:
		return selector("time", "Time")
	case avro.TimeMillis, avro.TimeMicros:
		return selector("time", "Duration")
	case avro.Decimal:
		return &ast.StarExpr{X: selector("big", "Rat")}
	}
	return nil
}
