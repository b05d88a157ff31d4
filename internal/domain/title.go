package domain

import (
	"strconv"
	"strings"
)

// SubpageSeparator delimits hierarchy segments inside a page key.
const SubpageSeparator = "/"

// Title identifies a page by namespace and primary-store key.
type Title struct {
	Namespace int
	DBKey     string
}

// NewTitle creates a title from a namespace and display text or key.
func NewTitle(ns int, textOrKey string) Title {
	return Title{Namespace: ns, DBKey: DBKey(textOrKey)}
}

// ID returns the stable "<ns>:<dbkey>" identifier used by tree nodes.
func (t Title) ID() string {
	return strconv.Itoa(t.Namespace) + ":" + t.DBKey
}

// Key returns the normalized search key of the title.
func (t Title) Key() string { return NormalizeKey(t.DBKey) }

// Text returns the title text without namespace.
func (t Title) Text() string { return Text(t.DBKey) }

// Prefixed returns "Namespace:Text", or just the text in the main namespace.
func (t Title) Prefixed(ns *Namespaces) string {
	return t.prefix(ns, " ") + t.Text()
}

// PrefixedDBKey returns "Namespace:Key" with underscores.
func (t Title) PrefixedDBKey(ns *Namespaces) string {
	return t.prefix(ns, "_") + t.DBKey
}

func (t Title) prefix(ns *Namespaces, space string) string {
	if t.Namespace == NSMain || ns == nil {
		return ""
	}
	name, ok := ns.Name(t.Namespace)
	if !ok || name == "" {
		return ""
	}
	return strings.ReplaceAll(name, " ", space) + ":"
}

// IsSubpage reports whether the key contains a hierarchy separator.
func (t Title) IsSubpage() bool { return strings.Contains(t.DBKey, SubpageSeparator) }

// Segments splits the key into its hierarchy segments.
func (t Title) Segments() []string { return strings.Split(t.DBKey, SubpageSeparator) }

// Depth returns the number of hierarchy segments.
func (t Title) Depth() int { return strings.Count(t.DBKey, SubpageSeparator) + 1 }

// Parent returns the title with the last segment removed.
// ok is false for root titles.
func (t Title) Parent() (Title, bool) {
	i := strings.LastIndex(t.DBKey, SubpageSeparator)
	if i < 0 {
		return Title{}, false
	}
	return Title{Namespace: t.Namespace, DBKey: t.DBKey[:i]}, true
}

// Root returns the first segment title.
func (t Title) Root() Title {
	if i := strings.Index(t.DBKey, SubpageSeparator); i >= 0 {
		return Title{Namespace: t.Namespace, DBKey: t.DBKey[:i]}
	}
	return t
}

// LeafText returns the text of the last segment.
func (t Title) LeafText() string {
	segs := t.Segments()
	return Text(segs[len(segs)-1])
}

// BaseText returns the text of everything before the last segment.
func (t Title) BaseText() string {
	if p, ok := t.Parent(); ok {
		return p.Text()
	}
	return t.Text()
}

// IsDirectChildOf reports whether t is exactly one segment below parent.
func (t Title) IsDirectChildOf(parent Title) bool {
	if t.Namespace != parent.Namespace {
		return false
	}
	p, ok := t.Parent()
	return ok && p.DBKey == parent.DBKey
}

// IsDescendantOf reports whether t lies anywhere below parent.
func (t Title) IsDescendantOf(parent Title) bool {
	return t.Namespace == parent.Namespace &&
		strings.HasPrefix(t.DBKey, parent.DBKey+SubpageSeparator)
}

// ParseTitle splits "Namespace:Text" into a title. A prefix that does not
// resolve to a namespace is kept as part of a main-namespace title; a bare
// leading colon forces the main namespace.
func ParseTitle(ns *Namespaces, s string) Title {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, ":"); ok {
		return NewTitle(NSMain, rest)
	}
	prefix, rest, found := strings.Cut(s, ":")
	if found && prefix != "" {
		if idx, ok := ns.Index(prefix); ok && idx != NSMain {
			return NewTitle(idx, rest)
		}
	}
	return NewTitle(NSMain, s)
}
