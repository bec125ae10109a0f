/*
avrogen generates Go type declarations from Avro schema documents.

Usage:

	avrogen [flags] [dir]
	avrogen compile [flags] schema
	avrogen resolve base file

Given a project directory, avrogen finds every schema file below it
(files matching "*.avro" by default) and writes a Go source file next
to each one. The file generated from schema.avro is named
schema.avro.g.go. Files that already exist are not regenerated; delete
them to force regeneration.

The namespace of the generated types follows the location of the
schema file. The project's base namespace is the last element of the
module path in its go.mod file, or the name of the project directory,
and each directory below the one named by the base namespace adds an
element. The types generated from

	compilation/TestNamespace/testSchema.avro

are placed in the namespace compilation.TestNamespace, declared in
package TestNamespace. The resolve command prints the namespace
computed for a file.

Settings are read from avrogen.yaml in the project directory:

	base_namespace: compilation
	enable_logging: true
	pattern: "*.avro"
	runtime_module: github.com/hamba/avro/v2
	jobs: 4

Setting AVROGEN_ENABLE_LOGGING=true in the environment enables logging
regardless of the configuration file.

The -r flag can be used to specify a series of replacement rules. A
replacement rule is a string of the form

	regex -> replacement

For example, the rule

	^user -> account_

will transform the field user_id to AccountId. All identifiers are
passed through the defined substitution rules.

The avrogen command may be used with the go generate command. Simply
embed a comment in your go source like so:

	//go:generate avrogen .
*/
package main
