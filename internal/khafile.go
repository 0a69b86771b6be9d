package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gookit/color"
	"github.com/tidwall/gjson"
	"rogchap.com/v8go"
)

var (
	ErrNotResolved   = errors.New("khafile never called resolve")
	ErrResolvedTwice = errors.New("khafile called resolve more than once")
)

const khafileTimeout = 30 * time.Second

const khafilePrelude = `
class Project {
	constructor(name) {
		this.name = String(name);
		this.sources = [];
		this.shaders = [];
		this.libraries = [];
		this.assets = [];
	}
	addSources(p) { this.sources.push(p === undefined ? "" : String(p)); }
	addShaders(p) { this.shaders.push(p === undefined ? "" : String(p)); }
	addLibrary(n) { this.libraries.push(n === undefined ? "" : String(n)); }
	addAssets(match, options) {
		this.assets.push({ match: match === undefined ? "" : String(match), options: options || null });
	}
}
var resolve = function (project) { __resolve(JSON.stringify(project)); };
`

// LoadKhafile runs a khafile.js script for platform and returns the project
// it passed to resolve.
func LoadKhafile(ctx context.Context, src []byte, filename string, platform Platform) (*Project, error) {
	iso := v8go.NewIsolate()
	defer iso.Dispose()

	prelude, err := platformGlobals(platform)
	if err != nil {
		return nil, err
	}

	type loaded struct {
		project *Project
		err     error
	}
	done := make(chan loaded, 1)
	go func() {
		project, err := runKhafile(iso, prelude, src, filename)
		done <- loaded{project, err}
	}()

	timer := time.NewTimer(khafileTimeout)
	defer timer.Stop()
	select {
	case l := <-done:
		return l.project, l.err
	case <-ctx.Done():
		iso.TerminateExecution()
		<-done
		return nil, ctx.Err()
	case <-timer.C:
		iso.TerminateExecution()
		<-done
		return nil, fmt.Errorf("%s took longer than %s", filename, khafileTimeout)
	}
}

func platformGlobals(platform Platform) (string, error) {
	platforms := make(map[string]string, len(identifiers))
	for ident, p := range identifiers {
		platforms[ident] = string(p)
	}
	enum, err := json.Marshal(platforms)
	if err != nil {
		return "", err
	}
	current, err := json.Marshal(string(platform))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("var Platform = Object.freeze(%s);\nvar platform = %s;\n", enum, current), nil
}

// decodeProject rebuilds a project from the JSON the script handed to
// resolve, going through the same Add calls a Go caller would use.
func decodeProject(data string) *Project {
	doc := gjson.Parse(data)
	p := NewProject(doc.Get("name").String())
	for _, s := range doc.Get("sources").Array() {
		p.AddSources(s.String())
	}
	for _, s := range doc.Get("shaders").Array() {
		p.AddShaders(s.String())
	}
	for _, l := range doc.Get("libraries").Array() {
		p.AddLibrary(l.String())
	}
	for _, a := range doc.Get("assets").Array() {
		var opts *AssetOptions
		if o := a.Get("options"); o.IsObject() {
			opts = &AssetOptions{
				NameBaseDir: o.Get("nameBaseDir").String(),
				Destination: o.Get("destination").String(),
				Name:        o.Get("name").String(),
			}
		}
		p.AddAssets(a.Get("match").String(), opts)
	}
	return p
}

// runKhafile evaluates src in a fresh context of iso. The context is closed
// before it returns.
func runKhafile(iso *v8go.Isolate, prelude string, src []byte, filename string) (*Project, error) {
	var project *Project
	var resolveErr error
	resolveFn := v8go.NewFunctionTemplate(iso, func(info *v8go.FunctionCallbackInfo) *v8go.Value {
		if project != nil {
			resolveErr = ErrResolvedTwice
			msg, _ := v8go.NewValue(iso, ErrResolvedTwice.Error())
			return iso.ThrowException(msg)
		}
		var data string
		if args := info.Args(); len(args) > 0 {
			data = args[0].String()
		}
		project = decodeProject(data)
		return nil
	})
	log := v8go.NewFunctionTemplate(iso, func(info *v8go.FunctionCallbackInfo) *v8go.Value {
		color.Printf("<grey>%s:</> ", filename)
		args := info.Args()
		for i, arg := range args {
			fmt.Printf("%v", arg)
			if i != len(args)-1 {
				fmt.Printf(" ")
			}
		}
		fmt.Printf("\n")
		return nil
	})
	console := v8go.NewObjectTemplate(iso)
	if err := console.Set("log", log); err != nil {
		return nil, err
	}
	if err := console.Set("error", log); err != nil {
		return nil, err
	}
	global := v8go.NewObjectTemplate(iso)
	if err := global.Set("__resolve", resolveFn); err != nil {
		return nil, err
	}
	if err := global.Set("console", console); err != nil {
		return nil, err
	}
	v8ctx := v8go.NewContext(iso, global)
	defer v8ctx.Close()

	if _, err := v8ctx.RunScript(khafilePrelude+prelude, "prelude.js"); err != nil {
		return nil, fmt.Errorf("error loading prelude: %w", err)
	}
	if _, err := v8ctx.RunScript(string(src), filename); err != nil {
		if resolveErr != nil {
			err = resolveErr
		}
		return nil, fmt.Errorf("error running %s: %w", filename, err)
	}
	if resolveErr != nil {
		return nil, fmt.Errorf("error running %s: %w", filename, resolveErr)
	}
	if project == nil {
		return nil, fmt.Errorf("%s: %w", filename, ErrNotResolved)
	}
	return project, nil
}
