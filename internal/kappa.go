package internal

import (
	"context"
	"path"
)

const ProjectName = "kappa"

const ammoDir = "Libraries/haxebullet/ammo"

// baseAssetRules is how many asset rules Kappa adds on every platform.
const baseAssetRules = 1

// Kappa builds the kappa project descriptor for platform. Browser targets get
// the asm.js build of ammo, Krom gets the wasm build, anything else gets no
// physics assets.
func Kappa(platform Platform) *Project {
	project := NewProject(ProjectName)

	project.AddSources("Sources")
	project.AddShaders("Shaders/**")

	project.AddLibrary("json2object")
	project.AddLibrary("iron_format")
	project.AddLibrary("haxebullet")

	project.AddAssets("assets/**", &AssetOptions{
		NameBaseDir: "assets",
		Destination: "assets/{dir}/{name}",
		Name:        "{dir}/{name}",
	})

	switch {
	case platform.Browser():
		project.AddAssets(path.Join(ammoDir, "ammo.js"), nil)
	case platform == Krom:
		project.AddAssets(path.Join(ammoDir, "ammo.wasm.js"), nil)
		project.AddAssets(path.Join(ammoDir, "ammo.wasm.wasm"), nil)
	}

	return project
}

// PlatformAssets returns the asset rules Kappa adds only for platform.
func PlatformAssets(p *Project) []AssetRule {
	return p.AssetsSince(baseAssetRules)
}

func ResolveKappa(ctx context.Context, platform Platform, r Resolver) error {
	return r.Resolve(ctx, Kappa(platform))
}
