package commandline

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceRuleList(t *testing.T) {
	var rules ReplaceRuleList
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.VarP(&rules, "replace", "r", "")
	require.NoError(t, fs.Parse([]string{"-r", "^user -> account_", "--replace=_id$->ID"}))

	require.Len(t, rules, 2)
	assert.Equal(t, "^user", rules[0].From.String())
	assert.Equal(t, "account_", rules[0].To)
	assert.Equal(t, "ID", rules[1].To)
	assert.Equal(t, "^user -> account_, _id$ -> ID", rules.String())
}

func TestReplaceRuleListErrors(t *testing.T) {
	var rules ReplaceRuleList
	assert.Error(t, rules.Set("no arrow"))
	assert.Error(t, rules.Set("( -> x"))
	assert.Empty(t, rules)
}

func TestStrings(t *testing.T) {
	var s Strings
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&s, "tag", "")
	require.NoError(t, fs.Parse([]string{"--tag", "avro", "--tag", "json, yaml"}))
	assert.Equal(t, Strings{"avro", "json", "yaml"}, s)
	assert.Equal(t, "avro,json,yaml", s.String())
}
