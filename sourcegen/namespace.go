package sourcegen

import (
	"path/filepath"
	"strings"
)

// FolderPath locates base in the directory of schemaFile and returns
// the portion of the directory below the first path separator that
// follows it. The found result is false when base does not occur in
// the directory at all.
//
// The search is a case-sensitive substring search for the last
// occurrence of base, so base need not match a whole path element.
func FolderPath(base, schemaFile string) (folder string, found bool) {
	dir := filepath.Dir(schemaFile)

	start := strings.LastIndex(dir, base)
	if start < 0 {
		return "", false
	}
	rest := dir[start+len(base):]
	sep := strings.IndexByte(rest, filepath.Separator)
	if sep < 0 {
		return "", true
	}
	return rest[sep+1:], true
}

// ResolveNamespace computes the namespace of the types generated from
// schemaFile in a project whose root namespace is base. Each directory
// below the one named by base adds an element to the namespace, so
// the schema <root>/base/a/b/x.avro resolves to "base.a.b". Schema
// files outside a directory named by base resolve to base itself.
func ResolveNamespace(base, schemaFile string) string {
	folder, _ := FolderPath(base, schemaFile)
	if folder == "" {
		return base
	}
	return base + "." + strings.ReplaceAll(folder, string(filepath.Separator), ".")
}
