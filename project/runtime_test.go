package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/go-avro/avrogen"
	"github.com/CognitoIQ/go-avro/internal/testutil"
)

const goModWithRuntime = `module example.com/shop/compilation

go 1.23

require github.com/hamba/avro/v2 v2.27.0
`

const goModWithoutRuntime = `module example.com/shop

go 1.23

require github.com/sirupsen/logrus v1.9.3
`

func TestCheckRuntime(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"go.mod": goModWithRuntime})
	assert.Nil(t, CheckRuntime(root, avrogen.RuntimePath))
}

func TestCheckRuntimeMissing(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"go.mod": goModWithoutRuntime})
	diag := CheckRuntime(root, avrogen.RuntimePath)
	require.NotNil(t, diag)
	assert.Equal(t, MissingRuntimeID, diag.ID)
	assert.Equal(t, SeverityError, diag.Severity)
	assert.Contains(t, diag.Message, avrogen.RuntimePath)
	assert.Contains(t, diag.String(), "error "+MissingRuntimeID)
}

func TestCheckRuntimeNoModFile(t *testing.T) {
	diag := CheckRuntime(t.TempDir(), avrogen.RuntimePath)
	require.NotNil(t, diag)
	assert.Equal(t, MissingRuntimeID, diag.ID)
}

func TestBaseNamespace(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"go.mod": goModWithRuntime})
	assert.Equal(t, "compilation", BaseNamespace(root))

	dir := filepath.Join(t.TempDir(), "orders")
	testutil.WriteFiles(t, dir, map[string]string{"x.avro": "{}"})
	assert.Equal(t, "orders", BaseNamespace(dir))
}
