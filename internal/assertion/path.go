package assertion

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PathKind identifies which subset of the run a Path selects.
type PathKind int

const (
	// PathGlobal selects every request of the run.
	PathGlobal PathKind = iota
	// PathGroup selects every request inside a group path, nested groups included.
	PathGroup
	// PathRequest selects every request with a given name, in any group.
	PathRequest
	// PathDetails selects the request named by the last part inside exactly the
	// preceding groups, or, when no such request exists, the group named by all parts.
	PathDetails
)

// LabelSeparator joins path parts in labels.
const LabelSeparator = " / "

// Path is an immutable scope selector.
type Path struct {
	kind  PathKind
	parts []string
}

// Global selects the whole run.
func Global() Path {
	return Path{kind: PathGlobal}
}

// Group selects the requests inside the group path names.
func Group(names ...string) Path {
	return Path{kind: PathGroup, parts: normalize(names)}
}

// Request selects requests named name.
func Request(name string) Path {
	return Path{kind: PathRequest, parts: normalize([]string{name})}
}

// Details selects a request inside a group path (the last part is the request
// name) or a group path alone.
func Details(parts ...string) Path {
	return Path{kind: PathDetails, parts: normalize(parts)}
}

// Normalize returns name in Unicode NFC. Stats records are normalised the
// same way so that both sides compare by canonical form.
func Normalize(name string) string {
	return norm.NFC.String(name)
}

func normalize(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = Normalize(n)
	}
	return out
}

// Kind returns the path kind.
func (p Path) Kind() PathKind {
	return p.kind
}

// Parts returns a copy of the path's names.
func (p Path) Parts() []string {
	out := make([]string, len(p.parts))
	copy(out, p.parts)
	return out
}

// Label renders the path for reports: "Global", "Login", "Checkout / Pay".
func (p Path) Label() string {
	if p.kind == PathGlobal {
		return "Global"
	}
	return strings.Join(p.parts, LabelSeparator)
}

// Equal reports whether two paths select the same scope.
func (p Path) Equal(o Path) bool {
	if p.kind != o.kind || len(p.parts) != len(o.parts) {
		return false
	}
	for i := range p.parts {
		if p.parts[i] != o.parts[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	return p.Label()
}
