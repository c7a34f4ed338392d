// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/amidict/pkg/dictionary"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestBuildValidateAnnotate(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	dict := filepath.Join(dir, "climate.xml")
	require.NoError(t, execute(t, "build", "--out", dict, "greenhouse gas", "methane", "Methane"))

	d, err := dictionary.Load(dict, dictionary.Options{})
	require.NoError(t, err)
	assert.Equal(t, "climate", d.Title)
	assert.Equal(t, 2, d.Len())

	require.NoError(t, execute(t, "validate", dict))

	in := filepath.Join(dir, "chapter.html")
	require.NoError(t, os.WriteFile(in, []byte(`<html><body><p id="p1">Methane is a greenhouse gas.</p></body></html>`), 0o644))
	out := filepath.Join(dir, "out", "chapter.html")
	require.NoError(t, execute(t, "annotate", "--dict", dict, "--in", in, "--out", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<a class="annotation" title="greenhouse gas">greenhouse gas</a>`)
	assert.FileExists(t, filepath.Join(dir, "out", "index.html"))
}

func TestValidate_Invalid(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	bad := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(bad, []byte(`<dictionary title="t"><entry term="x" wikidataID="nope"/></dictionary>`), 0o644))
	assert.Error(t, execute(t, "validate", bad))
}

func TestBuild_RequiresInput(t *testing.T) {
	chdir(t, t.TempDir())
	assert.Error(t, execute(t, "build", "--out", "x.xml"))
}

func TestConfig_PrintsDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AMIDICT_SPARQL_ENDPOINT", "http://localhost:9999/sparql")

	out := captureStdout(t, func() {
		require.NoError(t, execute(t, "config"))
	})
	assert.Contains(t, out, "endpoint: http://localhost:9999/sparql")
	assert.Contains(t, out, "max_candidates: 5")
	assert.NotContains(t, out, "token")
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

// resetFlags restores the named flags of cmd after the test, since cobra
// keeps flag values between Execute calls.
func resetFlags(t *testing.T, cmd *cobra.Command, names ...string) {
	t.Helper()
	t.Cleanup(func() {
		for _, n := range names {
			f := cmd.Flags().Lookup(n)
			require.NotNil(t, f, n)
			require.NoError(t, f.Value.Set(f.DefValue))
			f.Changed = false
		}
	})
}

func TestBuild_FromCSVColumn(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	resetFlags(t, buildCmd, "csv", "column", "out", "max")

	csvPath := filepath.Join(dir, "Keywords Chapter1.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("doc,keyword\nch1,methane\nch1,albedo\nch2,Methane\nch2,ozone\n"), 0o644))
	out := filepath.Join(dir, "kw.xml")
	require.NoError(t, execute(t, "build", "--csv", csvPath, "--column", "keyword", "--max", "3", "--out", out))

	d, err := dictionary.Load(out, dictionary.Options{})
	require.NoError(t, err)
	assert.Equal(t, "keywordschapter1", d.Title)
	assert.Equal(t, 2, d.Len(), "the cap applies before duplicates are folded")
	assert.NotNil(t, d.Entry("albedo"))

	assert.ErrorIs(t, execute(t, "build", "--csv", csvPath, "--column", "term", "--out", out), dictionary.ErrColumn)
}

func TestEncyclopedia_FromURL(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	resetFlags(t, encyclopediaCmd, "dict", "out")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<dictionary title="chem" version="0.0.1">
  <entry term="ethanol" wikidataID="Q153"></entry>
  <entry term="ethyl alcohol" wikidataID="Q153"></entry>
</dictionary>`))
	}))
	t.Cleanup(ts.Close)

	out := filepath.Join(dir, "chem.html")
	require.NoError(t, execute(t, "encyclopedia", "--dict", ts.URL+"/chem.xml", "--out", out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ethyl alcohol")
}
