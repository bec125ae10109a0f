// Package testutil contains common utility functions for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFiles creates the files named by the keys of files below root,
// creating parent directories as needed. Keys use forward slashes.
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o666); err != nil {
			t.Fatal(err)
		}
	}
}

// ReadFile returns the contents of the file at path, failing the test
// if it cannot be read.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Logger adapts a testing.T to the Printf-style logger interfaces.
type Logger struct{ testing.TB }

// Printf logs to the test log.
func (l Logger) Printf(format string, v ...interface{}) {
	l.Helper()
	l.Logf(format, v...)
}
