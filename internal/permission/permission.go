// Package permission decides whether a principal may read a page.
package permission

import (
	"slices"

	"github.com/kailas-cloud/wikindex/internal/domain"
)

// Implicit groups.
const (
	GroupAll  = "*"
	GroupUser = "user"
)

// Principal is the acting account.
type Principal struct {
	Name   string
	Groups []string
}

// Anonymous returns the principal of an unauthenticated caller.
func Anonymous() Principal { return Principal{} }

// EffectiveGroups returns the explicit groups plus the implicit ones.
func (p Principal) EffectiveGroups() []string {
	groups := append([]string{GroupAll}, p.Groups...)
	if p.Name != "" {
		groups = append(groups, GroupUser)
	}
	return groups
}

// Checker is the capability check consulted by the tree engine.
type Checker interface {
	CanRead(p Principal, t domain.Title) bool
}

// AllowAll permits every read.
type AllowAll struct{}

// CanRead always returns true.
func (AllowAll) CanRead(Principal, domain.Title) bool { return true }

// NamespacePolicy restricts reading per namespace to a list of groups.
// Namespaces without a rule are readable by everyone.
type NamespacePolicy struct {
	rules map[int][]string
}

// NewNamespacePolicy creates a policy from namespace -> allowed groups.
func NewNamespacePolicy(rules map[int][]string) *NamespacePolicy {
	cp := make(map[int][]string, len(rules))
	for ns, groups := range rules {
		cp[ns] = slices.Clone(groups)
	}
	return &NamespacePolicy{rules: cp}
}

// CanRead reports whether p holds any group allowed for t's namespace.
func (n *NamespacePolicy) CanRead(p Principal, t domain.Title) bool {
	allowed, ok := n.rules[t.Namespace]
	if !ok {
		return true
	}
	for _, g := range p.EffectiveGroups() {
		if slices.Contains(allowed, g) {
			return true
		}
	}
	return false
}
