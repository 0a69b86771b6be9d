package internal

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

func TestWriterResolverJSON(t *testing.T) {
	var out bytes.Buffer
	r := &WriterResolver{Out: &out, Format: JSON, Platform: HTML5, FS: projectFS()}
	require.NoError(t, ResolveKappa(context.Background(), HTML5, r))

	doc := out.String()
	require.True(t, gjson.Valid(doc))
	require.Equal(t, Generator, gjson.Get(doc, "generator").String())
	require.Equal(t, "html5", gjson.Get(doc, "platform").String())
	require.Equal(t, "kappa", gjson.Get(doc, "project.name").String())
	require.Equal(t, `["json2object","iron_format","haxebullet"]`, gjson.Get(doc, "project.libraries|@ugly").Raw)
	require.Equal(t, "assets", gjson.Get(doc, "project.assets.0.options.nameBaseDir").String())
	require.False(t, gjson.Get(doc, "project.assets.1.options").Exists())
	require.Equal(t, int64(3), gjson.Get(doc, "assets.#").Int())
	require.True(t, strings.HasPrefix(gjson.Get(doc, "assetsHash").String(), "h1:"))
}

func TestWriterResolverWithoutFS(t *testing.T) {
	var out bytes.Buffer
	r := &WriterResolver{Out: &out, Format: JSON, Platform: Linux}
	require.NoError(t, ResolveKappa(context.Background(), Linux, r))

	doc := out.String()
	require.False(t, gjson.Get(doc, "assets").Exists())
	require.False(t, gjson.Get(doc, "assetsHash").Exists())
	require.Equal(t, int64(1), gjson.Get(doc, "project.assets.#").Int())
}

func TestWriterResolverYAML(t *testing.T) {
	var out bytes.Buffer
	r := &WriterResolver{Out: &out, Format: YAML, Platform: Krom}
	require.NoError(t, ResolveKappa(context.Background(), Krom, r))

	var doc struct {
		Generator string   `yaml:"generator"`
		Platform  string   `yaml:"platform"`
		Project   *Project `yaml:"project"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	require.Equal(t, Generator, doc.Generator)
	require.Equal(t, "krom", doc.Platform)
	require.Equal(t, Kappa(Krom), doc.Project)
}

func TestResolveRefusesIncompleteProject(t *testing.T) {
	p := NewProject("broken")
	p.AddLibrary("")
	r := &WriterResolver{Out: &bytes.Buffer{}, Format: JSON}
	require.ErrorIs(t, r.Resolve(context.Background(), p), ErrMissingArgument)
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancelFn := context.WithCancel(context.Background())
	cancelFn()
	var out bytes.Buffer
	r := &WriterResolver{Out: &out, Format: JSON}
	require.ErrorIs(t, r.Resolve(ctx, Kappa(HTML5)), context.Canceled)
	require.Zero(t, out.Len())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("yml")
	require.NoError(t, err)
	require.Equal(t, YAML, f)
	f, err = ParseFormat("json")
	require.NoError(t, err)
	require.Equal(t, JSON, f)
	_, err = ParseFormat("toml")
	require.Error(t, err)
}
