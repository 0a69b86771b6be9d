package internal

import (
	"errors"
	"fmt"
)

var ErrMissingArgument = errors.New("missing argument")

// AssetOptions rewrites where a matched asset lands and what it is called.
// Templates may use {dir}, {name} and {ext}.
type AssetOptions struct {
	NameBaseDir string `json:"nameBaseDir,omitempty" yaml:"nameBaseDir,omitempty"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
}

type AssetRule struct {
	Match   string        `json:"match" yaml:"match"`
	Options *AssetOptions `json:"options,omitempty" yaml:"options,omitempty"`
}

// Project describes sources, shaders, libraries and assets for the host
// build tool. Entries are only ever appended.
type Project struct {
	Name      string      `json:"name" yaml:"name"`
	Sources   []string    `json:"sources" yaml:"sources"`
	Shaders   []string    `json:"shaders" yaml:"shaders"`
	Libraries []string    `json:"libraries" yaml:"libraries"`
	Assets    []AssetRule `json:"assets" yaml:"assets"`

	err error
}

func NewProject(name string) *Project {
	p := &Project{
		Name:      name,
		Sources:   []string{},
		Shaders:   []string{},
		Libraries: []string{},
		Assets:    []AssetRule{},
	}
	if name == "" {
		p.fail("project name")
	}
	return p
}

func (p *Project) fail(what string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s", ErrMissingArgument, what)
	}
}

// Err returns the first missing argument recorded while building.
func (p *Project) Err() error {
	return p.err
}

func (p *Project) AddSources(glob string) {
	if glob == "" {
		p.fail("addSources")
		return
	}
	p.Sources = append(p.Sources, glob)
}

func (p *Project) AddShaders(glob string) {
	if glob == "" {
		p.fail("addShaders")
		return
	}
	p.Shaders = append(p.Shaders, glob)
}

// AddLibrary references a library by name. Whether it exists is up to the
// host build tool.
func (p *Project) AddLibrary(name string) {
	if name == "" {
		p.fail("addLibrary")
		return
	}
	p.Libraries = append(p.Libraries, name)
}

// AddAssets appends an asset rule. options may be nil.
func (p *Project) AddAssets(glob string, options *AssetOptions) {
	if glob == "" {
		p.fail("addAssets")
		return
	}
	var opts *AssetOptions
	if options != nil {
		o := *options
		opts = &o
	}
	p.Assets = append(p.Assets, AssetRule{Match: glob, Options: opts})
}

// AssetsSince returns a copy of the asset rules appended after the first n.
func (p *Project) AssetsSince(n int) []AssetRule {
	if n >= len(p.Assets) {
		return nil
	}
	return append([]AssetRule(nil), p.Assets[n:]...)
}
