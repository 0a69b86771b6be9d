package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

type ProblemKind int

const (
	MissingSources ProblemKind = iota
	MissingShaders
	MissingAssets
	MissingLibrary
)

func (k ProblemKind) String() string {
	switch k {
	case MissingSources:
		return "sources"
	case MissingShaders:
		return "shaders"
	case MissingAssets:
		return "assets"
	case MissingLibrary:
		return "library"
	}
	return fmt.Sprintf("ProblemKind(%d)", int(k))
}

// Problem is something the host build tool would fail on.
type Problem struct {
	Kind ProblemKind
	Path string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: nothing at %s", p.Kind, p.Path)
}

// Check looks for the paths project references under fsys. Libraries are
// expected in Libraries/<name>. A project with a recorded missing argument
// is refused, as resolvers refuse it.
func Check(fsys fs.FS, project *Project) ([]Problem, error) {
	if err := project.Err(); err != nil {
		return nil, fmt.Errorf("check %s: %w", project.Name, err)
	}
	var problems []Problem
	for _, s := range project.Sources {
		ok, err := exists(fsys, s)
		if err != nil {
			return nil, err
		}
		if !ok {
			problems = append(problems, Problem{MissingSources, s})
		}
	}
	for _, s := range project.Shaders {
		files, err := matchFiles(fsys, s)
		if err != nil {
			return nil, fmt.Errorf("check shaders %s: %w", s, err)
		}
		if len(files) == 0 {
			problems = append(problems, Problem{MissingShaders, s})
		}
	}
	for _, l := range project.Libraries {
		dir := path.Join("Libraries", l)
		ok, err := exists(fsys, dir)
		if err != nil {
			return nil, err
		}
		if !ok {
			problems = append(problems, Problem{MissingLibrary, dir})
		}
	}
	for _, rule := range project.Assets {
		files, err := matchFiles(fsys, rule.Match)
		if err != nil {
			return nil, fmt.Errorf("check assets %s: %w", rule.Match, err)
		}
		if len(files) == 0 {
			problems = append(problems, Problem{MissingAssets, rule.Match})
		}
	}
	return problems, nil
}

func exists(fsys fs.FS, name string) (bool, error) {
	_, err := fs.Stat(fsys, path.Clean(strings.TrimPrefix(name, "./")))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
