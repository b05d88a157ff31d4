package domain

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Well-known namespace indexes of the primary store.
const (
	NSMain     = 0
	NSTalk     = 1
	NSUser     = 2
	NSProject  = 4
	NSFile     = 6
	NSTemplate = 10
	NSHelp     = 12
	NSCategory = 14
)

// Namespaces resolves namespace names and indexes. Immutable after construction.
type Namespaces struct {
	names    map[int]string
	byName   map[string]int
	content  []int
	subpages map[int]bool
}

// NewNamespaces builds a registry. Name lookup is case-insensitive and
// treats underscores and spaces alike.
func NewNamespaces(names map[int]string, content, subpages []int) *Namespaces {
	n := &Namespaces{
		names:    make(map[int]string, len(names)),
		byName:   make(map[string]int, len(names)),
		content:  slices.Clone(content),
		subpages: make(map[int]bool, len(subpages)),
	}
	for idx, name := range names {
		n.names[idx] = name
		if name != "" {
			n.byName[NormalizeKey(name)] = idx
		}
	}
	if _, ok := n.names[NSMain]; !ok {
		n.names[NSMain] = ""
	}
	if len(n.content) == 0 {
		n.content = []int{NSMain}
	}
	slices.Sort(n.content)
	for _, idx := range subpages {
		n.subpages[idx] = true
	}
	return n
}

// Index resolves a namespace name (or a numeric string) to its index.
func (n *Namespaces) Index(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return NSMain, true
	}
	if idx, ok := n.byName[NormalizeKey(name)]; ok {
		return idx, true
	}
	if idx, err := strconv.Atoi(name); err == nil {
		if _, ok := n.names[idx]; ok {
			return idx, true
		}
	}
	return 0, false
}

// Name returns the canonical name of a namespace, "" for the main namespace.
func (n *Namespaces) Name(idx int) (string, bool) {
	name, ok := n.names[idx]
	return name, ok
}

// Names returns a copy of the index to name mapping.
func (n *Namespaces) Names() map[int]string { return maps.Clone(n.names) }

// Content returns the configured content namespaces in ascending order.
func (n *Namespaces) Content() []int { return slices.Clone(n.content) }

// IsContent reports whether idx is a content namespace.
func (n *Namespaces) IsContent(idx int) bool {
	_, found := slices.BinarySearch(n.content, idx)
	return found
}

// HasSubpages reports whether pages in idx may have subpages.
func (n *Namespaces) HasSubpages(idx int) bool { return n.subpages[idx] }

// DefaultNamespaces returns the registry used when configuration names none.
func DefaultNamespaces() *Namespaces {
	return NewNamespaces(map[int]string{
		NSMain:     "",
		NSTalk:     "Talk",
		NSUser:     "User",
		3:          "User talk",
		NSProject:  "Project",
		NSFile:     "File",
		8:          "MediaWiki",
		NSTemplate: "Template",
		NSHelp:     "Help",
		NSCategory: "Category",
	}, []int{NSMain}, []int{NSMain, NSTalk, NSUser, 3, NSProject, NSHelp})
}
