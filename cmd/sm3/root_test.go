package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	abcSum   = "66c7f0f462eeedd9d1f2d46bdc10e4e24167c4875cf2f7a2297da02b8f4ba8e0"
	emptySum = "1ab21d8355cfa17f8e61194831e81a8f22bec8c728fefb747ed035eb5082aa2b"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errs bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errs.String(), err
}

func TestString(t *testing.T) {
	out, _, err := execute(t, "-s", "abc")
	require.NoError(t, err)
	assert.Equal(t, abcSum+"\n", out)

	out, _, err = execute(t, "-s", "-x", "abc")
	require.NoError(t, err)
	assert.Equal(t, abcSum+"\n", out)

	out, _, err = execute(t, "-s", "-X", "abc")
	require.NoError(t, err)
	assert.Equal(t, strings.ToUpper(abcSum)+"\n", out)
}

func TestStringMany(t *testing.T) {
	out, _, err := execute(t, "-s", "abc", "")
	require.NoError(t, err)
	assert.Equal(t, abcSum+"  abc\n"+emptySum+"  \n", out)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("abc"), 0o600))
	e := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(e, nil, 0o600))

	out, _, err := execute(t, "-f", a)
	require.NoError(t, err)
	assert.Equal(t, abcSum+"\n", out)

	out, _, err = execute(t, "-f", "--chunk-size", "1", "--workers", "2", a, e)
	require.NoError(t, err)
	assert.Equal(t, abcSum+"  "+a+"\n"+emptySum+"  "+e+"\n", out)
}

func TestFileMissing(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("abc"), 0o600))
	missing := filepath.Join(dir, "missing")

	out, errs, err := execute(t, "-f", a, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Equal(t, abcSum+"  "+a+"\n", out)
	assert.Contains(t, errs, missing)
}

func TestFlagRules(t *testing.T) {
	_, _, err := execute(t, "abc")
	assert.Error(t, err, "mode is required")

	_, _, err = execute(t, "-s", "-f", "abc")
	assert.Error(t, err)

	_, _, err = execute(t, "-s", "-x", "-X", "abc")
	assert.Error(t, err)

	_, _, err = execute(t, "-s")
	assert.Error(t, err, "at least one argument")
}

func TestConfigEnvAndFile(t *testing.T) {
	t.Setenv("SM3_CASE", "upper")
	out, _, err := execute(t, "-s", "abc")
	require.NoError(t, err)
	assert.Equal(t, strings.ToUpper(abcSum)+"\n", out)

	// flags beat the environment
	out, _, err = execute(t, "-s", "-x", "abc")
	require.NoError(t, err)
	assert.Equal(t, abcSum+"\n", out)

	t.Setenv("SM3_CASE", "")
	p := filepath.Join(t.TempDir(), "sm3.yaml")
	require.NoError(t, os.WriteFile(p, []byte("case: upper\nworkers: 3\n"), 0o600))
	out, _, err = execute(t, "-s", "--config", p, "abc")
	require.NoError(t, err)
	assert.Equal(t, strings.ToUpper(abcSum)+"\n", out)
}

func TestConfigInvalid(t *testing.T) {
	t.Setenv("SM3_CASE", "mixed")
	_, _, err := execute(t, "-s", "abc")
	assert.ErrorIs(t, err, errConfig)

	t.Setenv("SM3_CASE", "lower")
	_, _, err = execute(t, "-f", "--workers", "-1", "x")
	assert.ErrorIs(t, err, errConfig)

	_, _, err = execute(t, "-s", "--config", filepath.Join(t.TempDir(), "none.yaml"), "abc")
	assert.Error(t, err)
}
