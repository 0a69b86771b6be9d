package internal

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func projectFS() fstest.MapFS {
	return fstest.MapFS{
		"Sources/Main.hx":                    {Data: []byte("class Main {}")},
		"Shaders/mesh.frag.glsl":             {Data: []byte("void main() {}")},
		"Shaders/mesh.vert.glsl":             {Data: []byte("void main() {}")},
		"assets/logo.png":                    {Data: []byte("png")},
		"assets/models/ship.blend":           {Data: []byte("blend")},
		"Libraries/json2object/haxelib.json": {Data: []byte("{}")},
		"Libraries/iron_format/haxelib.json": {Data: []byte("{}")},
		"Libraries/haxebullet/haxelib.json":  {Data: []byte("{}")},
		"Libraries/haxebullet/ammo/ammo.js":  {Data: []byte("var Ammo;")},
	}
}

func TestRewrite(t *testing.T) {
	kappaOpts := &AssetOptions{
		NameBaseDir: "assets",
		Destination: "assets/{dir}/{name}",
		Name:        "{dir}/{name}",
	}
	tests := []struct {
		name string
		opts *AssetOptions
		file string
		want Asset
	}{
		{"top level", kappaOpts, "assets/logo.png", Asset{"logo", "assets/logo.png", "assets/logo.png"}},
		{"nested", kappaOpts, "assets/models/ship.blend", Asset{"models/ship", "assets/models/ship.blend", "assets/models/ship.blend"}},
		{"deeper", kappaOpts, "assets/a/b/c.ogg", Asset{"a/b/c", "assets/a/b/c.ogg", "assets/a/b/c.ogg"}},
		{"no options", nil, "Libraries/haxebullet/ammo/ammo.wasm.wasm", Asset{"ammo.wasm.wasm", "Libraries/haxebullet/ammo/ammo.wasm.wasm", "ammo.wasm.wasm"}},
		{"ext token", &AssetOptions{Destination: "out/{name}{ext}", Name: "{name}_{ext}"}, "x/sound.wav", Asset{"sound_.wav", "x/sound.wav", "out/sound.wav"}},
		{"base dir not a prefix", &AssetOptions{NameBaseDir: "other", Name: "{dir}/{name}"}, "assets/logo.png", Asset{"assets/logo", "assets/logo.png", "logo.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.opts.rewrite(tt.file))
		})
	}
}

func TestExpandAssets(t *testing.T) {
	fsys := projectFS()
	assets, err := ExpandAssets(fsys, Kappa(HTML5).Assets)
	require.NoError(t, err)

	names := make([]string, 0, len(assets))
	for _, a := range assets {
		names = append(names, a.Name)
		require.False(t, strings.HasSuffix(a.File, "/"))
	}
	require.ElementsMatch(t, []string{"logo", "models/ship", "ammo.js"}, names)
	require.Equal(t, "ammo.js", assets[len(assets)-1].Name, "platform rules come after the base rule")

	assets, err = ExpandAssets(fsys, Kappa(Krom).Assets)
	require.NoError(t, err)
	require.Len(t, assets, 2, "wasm build of ammo is not vendored")

	assets, err = ExpandAssets(fsys, nil)
	require.NoError(t, err)
	require.Empty(t, assets)
}

func TestExpandAssetsDuplicateNames(t *testing.T) {
	fsys := fstest.MapFS{
		"assets/a/x.png": {Data: []byte("a")},
		"assets/b/x.png": {Data: []byte("b")},
	}
	_, err := ExpandAssets(fsys, []AssetRule{{Match: "assets/**", Options: &AssetOptions{Name: "{name}"}}})
	require.ErrorIs(t, err, ErrDuplicateAsset)

	_, err = ExpandAssets(fsys, []AssetRule{{Match: "assets/**", Options: &AssetOptions{NameBaseDir: "assets", Name: "{dir}/{name}"}}})
	require.NoError(t, err)
}

func TestExpandAssetsBadPattern(t *testing.T) {
	_, err := ExpandAssets(projectFS(), []AssetRule{{Match: "assets/[*"}})
	require.Error(t, err)
}

func TestAssetsHash(t *testing.T) {
	fsys := projectFS()
	assets, err := ExpandAssets(fsys, Kappa(HTML5).Assets)
	require.NoError(t, err)

	h1, err := AssetsHash(fsys, assets)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h1, "h1:"))

	fsys["assets/logo.png"] = &fstest.MapFile{Data: []byte("another png")}
	h2, err := AssetsHash(fsys, assets)
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}
