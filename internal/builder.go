package internal

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/color"
)

const KhafileName = "khafile.js"

// Builder produces the project descriptor for a project root, either from
// the root's khafile.js or from the built-in kappa configuration.
type Builder struct {
	root     string
	khafile  string
	platform Platform
}

// NewBuilder returns a builder for root. An empty khafile means the
// built-in configuration.
func NewBuilder(root, khafile string, platform Platform) (*Builder, error) {
	if khafile != "" && !filepath.IsAbs(khafile) {
		khafile = filepath.Join(root, khafile)
	}
	return &Builder{
		root:     root,
		khafile:  khafile,
		platform: platform,
	}, nil
}

func (b *Builder) Platform() Platform {
	return b.platform
}

func (b *Builder) FS() fs.FS {
	return os.DirFS(b.root)
}

func (b *Builder) Project(ctx context.Context) (*Project, error) {
	if b.khafile == "" {
		return Kappa(b.platform), nil
	}
	src, err := os.ReadFile(filepath.Clean(b.khafile))
	if err != nil {
		return nil, err
	}
	startTime := time.Now()
	project, err := LoadKhafile(ctx, src, filepath.Base(b.khafile), b.platform)
	if err != nil {
		return nil, err
	}
	color.Printf("Loaded <grey>%s</> for %s in %s\n", b.khafile, b.platform, time.Since(startTime))
	return project, nil
}

// Resolve builds the project and hands it to r.
func (b *Builder) Resolve(ctx context.Context, r Resolver) (*Project, error) {
	project, err := b.Project(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.Resolve(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Check reports what the project references but the root does not contain.
func (b *Builder) Check(ctx context.Context) ([]Problem, error) {
	project, err := b.Project(ctx)
	if err != nil {
		return nil, err
	}
	return Check(b.FS(), project)
}

// WatchedFiles returns the khafile plus the existing top level directories
// that the project's sources, shaders and assets live in.
func (b *Builder) WatchedFiles(ctx context.Context) ([]string, error) {
	project, err := b.Project(ctx)
	if err != nil {
		return nil, err
	}
	paths := []string{}
	if b.khafile != "" {
		paths = append(paths, b.khafile)
	}
	globs := make([]string, 0, len(project.Sources)+len(project.Shaders)+len(project.Assets))
	globs = append(globs, project.Sources...)
	globs = append(globs, project.Shaders...)
	for _, a := range project.Assets {
		globs = append(globs, a.Match)
	}
	seen := map[string]bool{}
	for _, g := range globs {
		dir := globRoot(g)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		p := filepath.Join(b.root, filepath.FromSlash(dir))
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// globRoot returns the longest leading part of a glob without meta
// characters.
func globRoot(glob string) string {
	glob = strings.TrimPrefix(glob, "./")
	parts := strings.Split(glob, "/")
	for i, part := range parts {
		if strings.ContainsAny(part, "*?[{") {
			if i == 0 {
				return "."
			}
			return path.Join(parts[:i]...)
		}
	}
	return glob
}
