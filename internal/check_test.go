package internal

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	problems, err := Check(projectFS(), Kappa(HTML5))
	require.NoError(t, err)
	require.Empty(t, problems)

	problems, err = Check(projectFS(), Kappa(Krom))
	require.NoError(t, err)
	require.Equal(t, []Problem{
		{MissingAssets, "Libraries/haxebullet/ammo/ammo.wasm.js"},
		{MissingAssets, "Libraries/haxebullet/ammo/ammo.wasm.wasm"},
	}, problems)
}

func TestCheckRefusesIncompleteProject(t *testing.T) {
	p := Kappa(HTML5)
	p.AddLibrary("")
	problems, err := Check(projectFS(), p)
	require.ErrorIs(t, err, ErrMissingArgument)
	require.Nil(t, problems)
}

func TestCheckEmptyRoot(t *testing.T) {
	problems, err := Check(fstest.MapFS{}, Kappa(Linux))
	require.NoError(t, err)
	require.Equal(t, []Problem{
		{MissingSources, "Sources"},
		{MissingShaders, "Shaders/**"},
		{MissingLibrary, "Libraries/json2object"},
		{MissingLibrary, "Libraries/iron_format"},
		{MissingLibrary, "Libraries/haxebullet"},
		{MissingAssets, "assets/**"},
	}, problems)
	require.Equal(t, "library: nothing at Libraries/haxebullet", problems[4].String())
}
