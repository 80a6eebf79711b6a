package config

import (
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dunder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, "Add", rules.Methods[token.ADD])
	assert.Equal(t, "Sub", rules.Methods[token.SUB])
	assert.Equal(t, "Mul", rules.Methods[token.MUL])
	assert.Equal(t, "Scalar", rules.Scalar)
	assert.Equal(t, "dist", cfg.OutDir)
	assert.False(t, cfg.NoEmitOnError)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
operators:
  "*": Dot
scalar: Const
out: build
tags: [integration, cgo]
noEmitOnError: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"*": "Dot"}, cfg.Operators)
	assert.Equal(t, "Const", cfg.Scalar)
	assert.Equal(t, "build", cfg.OutDir)
	assert.Equal(t, []string{"integration", "cgo"}, cfg.Tags)
	assert.True(t, cfg.NoEmitOnError)

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, map[token.Token]string{token.MUL: "Dot"}, rules.Methods)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "noEmitOnError: true\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Operators, cfg.Operators)
	assert.Equal(t, def.Scalar, cfg.Scalar)
	assert.Equal(t, def.OutDir, cfg.OutDir)
	assert.True(t, cfg.NoEmitOnError)
}

func TestLoad_EmptyScalarDisablesWrapping(t *testing.T) {
	cfg, err := Load(writeConfig(t, "scalar: \"\"\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Scalar)

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Empty(t, rules.Scalar)
	assert.Equal(t, "Mul", rules.Methods[token.MUL])

	// A null value counts as missing.
	cfg, err = Load(writeConfig(t, "scalar:\n"))
	require.NoError(t, err)
	assert.Equal(t, "Scalar", cfg.Scalar)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "operators: [", "parse"},
		{"division", "operators:\n  \"/\": Div\n", "cannot be lowered"},
		{"bad method", "operators:\n  \"+\": \"a b\"\n", "not an identifier"},
		{"bad scalar", "scalar: \"2x\"\n", "not an identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_EmptyOutDir(t *testing.T) {
	cfg := Default()
	cfg.OutDir = ""
	assert.Error(t, cfg.Validate())
}
