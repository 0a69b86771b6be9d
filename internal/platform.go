package internal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// Platform is a target id as understood by the host build tool.
type Platform string

const (
	Krom         Platform = "krom"
	Windows      Platform = "windows"
	WindowsApp   Platform = "windowsapp"
	PlayStation4 Platform = "ps4"
	XboxOne      Platform = "xboxone"
	Switch       Platform = "switch"
	XboxSeries   Platform = "xboxseries"
	PlayStation5 Platform = "ps5"
	Linux        Platform = "linux"
	HTML5        Platform = "html5"
	HTML5Worker  Platform = "html5worker"
	Flash        Platform = "flash"
	WPF          Platform = "wpf"
	Java         Platform = "java"
	Android      Platform = "android"
	Node         Platform = "node"
	DebugHTML5   Platform = "debug-html5"
	Empty        Platform = "empty"
	Pi           Platform = "pi"
	TVOS         Platform = "tvos"
	OSX          Platform = "osx"
	IOS          Platform = "ios"
	FreeBSD      Platform = "freebsd"
	Emscripten   Platform = "emscripten"
	Wasm         Platform = "wasm"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// identifiers maps the names scripts use (Platform.DebugHTML5) to ids.
var identifiers = map[string]Platform{
	"Krom":         Krom,
	"Windows":      Windows,
	"WindowsApp":   WindowsApp,
	"PlayStation4": PlayStation4,
	"XboxOne":      XboxOne,
	"Switch":       Switch,
	"XboxSeries":   XboxSeries,
	"PlayStation5": PlayStation5,
	"Linux":        Linux,
	"HTML5":        HTML5,
	"HTML5Worker":  HTML5Worker,
	"Flash":        Flash,
	"WPF":          WPF,
	"Java":         Java,
	"Android":      Android,
	"Node":         Node,
	"DebugHTML5":   DebugHTML5,
	"Empty":        Empty,
	"Pi":           Pi,
	"tvOS":         TVOS,
	"OSX":          OSX,
	"iOS":          IOS,
	"FreeBSD":      FreeBSD,
	"Emscripten":   Emscripten,
	"Wasm":         Wasm,
}

func (p Platform) String() string {
	return string(p)
}

// Known reports whether p is one of the ids the host build tool defines.
func (p Platform) Known() bool {
	for _, known := range identifiers {
		if known == p {
			return true
		}
	}
	return false
}

// Browser reports whether p compiles to plain JavaScript for a browser.
func (p Platform) Browser() bool {
	return p == DebugHTML5 || p == HTML5 || p == HTML5Worker
}

func normalizePlatform(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, "_", "")
}

func ParsePlatform(s string) (Platform, error) {
	want := normalizePlatform(s)
	if want == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownPlatform)
	}
	for ident, p := range identifiers {
		if normalizePlatform(ident) == want || normalizePlatform(string(p)) == want {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}

// Platforms returns every known platform sorted by id.
func Platforms() []Platform {
	platforms := maps.Values(identifiers)
	sort.Slice(platforms, func(i, j int) bool { return platforms[i] < platforms[j] })
	return platforms
}

// PlatformIdentifiers returns the script identifier for every known
// platform, sorted.
func PlatformIdentifiers() []string {
	idents := maps.Keys(identifiers)
	sort.Strings(idents)
	return idents
}

// Identifier returns the script identifier of p, or "" for unknown ids.
func (p Platform) Identifier() string {
	for ident, known := range identifiers {
		if known == p {
			return ident
		}
	}
	return ""
}
