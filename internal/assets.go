package internal

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/mod/sumdb/dirhash"
)

var ErrDuplicateAsset = errors.New("duplicate asset name")

// Asset is a single file matched by an asset rule.
type Asset struct {
	Name        string `json:"name" yaml:"name"`
	File        string `json:"file" yaml:"file"`
	Destination string `json:"destination" yaml:"destination"`
}

// ExpandAssets matches every rule against fsys, in rule order. Directories
// are skipped.
func ExpandAssets(fsys fs.FS, rules []AssetRule) ([]Asset, error) {
	var assets []Asset
	seen := make(map[string]string)
	for _, rule := range rules {
		files, err := matchFiles(fsys, rule.Match)
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", rule.Match, err)
		}
		for _, f := range files {
			a := rule.Options.rewrite(f)
			if prev, ok := seen[a.Name]; ok {
				return nil, fmt.Errorf("%w: %s from %s and %s", ErrDuplicateAsset, a.Name, prev, f)
			}
			seen[a.Name] = f
			assets = append(assets, a)
		}
	}
	return assets, nil
}

func matchFiles(fsys fs.FS, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(fsys, strings.TrimPrefix(pattern, "./"))
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := fs.Stat(fsys, m)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	return files, nil
}

func (o *AssetOptions) rewrite(file string) Asset {
	dir, base := path.Split(file)
	dir = strings.TrimSuffix(dir, "/")
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	nameTmpl, destTmpl := "{name}{ext}", "{name}"
	if o != nil {
		if o.NameBaseDir != "" {
			baseDir := strings.Trim(path.Clean(o.NameBaseDir), "/")
			if dir == baseDir {
				dir = ""
			} else {
				dir = strings.TrimPrefix(dir, baseDir+"/")
			}
		}
		if o.Name != "" {
			nameTmpl = o.Name
		}
		if o.Destination != "" {
			destTmpl = o.Destination
		}
	}

	r := strings.NewReplacer("{dir}", dir, "{name}", stem, "{ext}", ext)
	dest := r.Replace(destTmpl)
	if !strings.Contains(destTmpl, "{ext}") {
		dest += ext
	}
	return Asset{
		Name:        cleanSegments(r.Replace(nameTmpl)),
		File:        file,
		Destination: cleanSegments(dest),
	}
}

// cleanSegments drops the empty segments left behind by an empty {dir}.
func cleanSegments(p string) string {
	parts := strings.Split(p, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}

// AssetsHash returns a dirhash h1: digest of the asset files.
func AssetsHash(fsys fs.FS, assets []Asset) (string, error) {
	files := make([]string, 0, len(assets))
	for _, a := range assets {
		files = append(files, a.File)
	}
	return dirhash.Hash1(files, func(name string) (io.ReadCloser, error) {
		return fsys.Open(name)
	})
}
