// Package avrogen generates Go type declarations from Avro schema documents.
//
// The avrogen package generates a struct declaration for every record,
// a string type with constants for every enum, and a byte array type
// for every fixed type defined in a schema. Record types carry methods
// to encode and decode themselves with the github.com/hamba/avro/v2
// package. The source code generation is configurable, and can be
// passed through user-defined filters.
//
// Every named type must be placed in a namespace. Declarations are
// grouped by namespace, and namespaces can be renamed as part of the
// compilation.
//
// Importing avrogen sets avro.SkipNameValidation, so names such as
// "test-schema" are accepted by every use of the avro package in the
// program, not only by the compiler. Record methods are not generated
// for schemas whose names the avro package would otherwise reject, so
// generated code does not depend on the setting.
package avrogen
