package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"

	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"
)

const Generator = "kappa-build"

// Resolver takes ownership of a finished project descriptor.
type Resolver interface {
	Resolve(ctx context.Context, p *Project) error
}

type ResolverFunc func(ctx context.Context, p *Project) error

func (f ResolverFunc) Resolve(ctx context.Context, p *Project) error {
	return f(ctx, p)
}

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case JSON, YAML:
		return Format(s), nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Resolution is what a WriterResolver emits for a project.
type Resolution struct {
	Platform   Platform `json:"platform" yaml:"platform"`
	Project    *Project `json:"project" yaml:"project"`
	Assets     []Asset  `json:"assets,omitempty" yaml:"assets,omitempty"`
	AssetsHash string   `json:"assetsHash,omitempty" yaml:"assetsHash,omitempty"`
	Generator  string   `json:"-" yaml:"generator"`
}

// WriterResolver encodes the project to Out. When FS is set the asset rules
// are expanded against it.
type WriterResolver struct {
	Out      io.Writer
	Format   Format
	Platform Platform
	FS       fs.FS
}

func (r *WriterResolver) Resolve(ctx context.Context, p *Project) error {
	res, err := NewResolution(r.FS, r.Platform, p)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return res.Encode(r.Out, r.Format)
}

func NewResolution(fsys fs.FS, platform Platform, p *Project) (*Resolution, error) {
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", p.Name, err)
	}
	res := &Resolution{
		Platform:  platform,
		Project:   p,
		Generator: Generator,
	}
	if fsys == nil {
		return res, nil
	}
	assets, err := ExpandAssets(fsys, p.Assets)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", p.Name, err)
	}
	res.Assets = assets
	if len(assets) > 0 {
		if res.AssetsHash, err = AssetsHash(fsys, assets); err != nil {
			return nil, fmt.Errorf("hash assets: %w", err)
		}
	}
	return res, nil
}

func (res *Resolution) Encode(w io.Writer, format Format) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case JSON, "":
		data, err := json.Marshal(res)
		if err != nil {
			return err
		}
		data, err = sjson.SetBytes(data, "generator", res.Generator)
		if err != nil {
			return err
		}
		var out bytes.Buffer
		if err := json.Indent(&out, data, "", "  "); err != nil {
			return err
		}
		out.WriteByte('\n')
		_, err = out.WriteTo(w)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}
