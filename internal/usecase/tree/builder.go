// Package tree reconstructs the subpage hierarchy of titles on demand.
package tree

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
	"github.com/kailas-cloud/wikindex/internal/logger"
	"github.com/kailas-cloud/wikindex/internal/metrics"
	"github.com/kailas-cloud/wikindex/internal/permission"
	"github.com/kailas-cloud/wikindex/internal/repository/page"
)

// Default build bounds.
const (
	DefaultMaxDepth = 32
	DefaultMaxNodes = 5000
)

// Limits bound a single build. Paths deeper than MaxDepth segments are
// skipped; materialization stops after MaxNodes nodes.
type Limits struct {
	MaxDepth int
	MaxNodes int
}

// Builder answers title tree queries.
type Builder struct {
	titles Matcher
	pages  PageReader
	ns     *domain.Namespaces
	perms  permission.Checker
	limits Limits
}

// NewBuilder creates a tree builder. A nil checker permits every read; zero
// limits fall back to the defaults.
func NewBuilder(titles Matcher, pages PageReader, ns *domain.Namespaces, perms permission.Checker, limits Limits) *Builder {
	if perms == nil {
		perms = permission.AllowAll{}
	}
	if limits.MaxDepth <= 0 {
		limits.MaxDepth = DefaultMaxDepth
	}
	if limits.MaxNodes <= 0 {
		limits.MaxNodes = DefaultMaxNodes
	}
	return &Builder{titles: titles, pages: pages, ns: ns, perms: perms, limits: limits}
}

// Build returns root nodes, or the direct children of req.Node() when set.
// Pagination applies to root listings only.
func (b *Builder) Build(
	ctx context.Context, p permission.Principal, req request.Request,
) (result.Set[record.TreeNode], error) {
	st := &buildState{
		principal: p,
		query:     req.Query() != "",
		prune:     req.Query() != "" || len(req.Filters()) > 0,
		matches:   make(map[string]bool),
		above:     make(map[string]bool),
		expand:    make(map[string]bool),
		below:     make(map[string][]page.Page),
		children:  make(map[string][]*record.TreeNode),
	}
	for _, path := range req.ExpandPaths() {
		for t, ok := b.ParseNode(path), true; ok; t, ok = b.parent(t) {
			st.expand[t.ID()] = true
		}
	}

	var (
		set result.Set[record.TreeNode]
		err error
	)
	if req.Node() != "" {
		set, err = b.expandNode(ctx, st, req)
	} else {
		set, err = b.listRoots(ctx, st, req)
	}
	if err != nil {
		return result.Set[record.TreeNode]{}, err
	}
	b.report(ctx, st)
	return set, nil
}

// Query builds the tree for the principal carried by ctx.
func (b *Builder) Query(ctx context.Context, req request.Request) (result.Set[record.TreeNode], error) {
	return b.Build(ctx, permission.FromContext(ctx), req)
}

// ParseNode resolves a node id ("<ns>:<dbkey>"), a prefixed title or a bare
// main-namespace path.
func (b *Builder) ParseNode(s string) domain.Title {
	if prefix, rest, ok := strings.Cut(s, ":"); ok {
		if ns, err := strconv.Atoi(prefix); err == nil {
			return domain.NewTitle(ns, rest)
		}
	}
	return domain.ParseTitle(b.ns, s)
}

func (b *Builder) listRoots(
	ctx context.Context, st *buildState, req request.Request,
) (result.Set[record.TreeNode], error) {
	matches, err := b.scan(ctx, st, req)
	if err != nil {
		return result.Set[record.TreeNode]{}, err
	}
	seen := make(map[string]bool)
	var roots []domain.Title
	for _, t := range matches {
		r := b.root(t)
		if !seen[r.ID()] {
			seen[r.ID()] = true
			roots = append(roots, r)
		}
	}
	slices.SortFunc(roots, func(a, c domain.Title) int {
		return cmp.Or(cmp.Compare(a.Namespace, c.Namespace), strings.Compare(a.DBKey, c.DBKey))
	})

	total := len(roots)
	start := min(req.Offset(), total)
	window := roots[start:min(start+req.Limit(), total)]
	if len(window) == 0 {
		return result.New([]record.TreeNode{}, total), nil
	}
	existing, err := b.pages.Existing(ctx, window)
	if err != nil {
		return result.Set[record.TreeNode]{}, fmt.Errorf("load tree roots: %w", err)
	}

	out := make([]record.TreeNode, 0, len(window))
	for _, r := range window {
		var pg *page.Page
		if p, ok := existing[r.ID()]; ok {
			pg = &p
		}
		n := st.newNode(r, pg)
		n.Leaf = !b.ns.HasSubpages(r.Namespace) || !st.above[r.ID()]
		if st.shouldExpand(n.NodeID) {
			if err := b.expand(ctx, st, n, r); err != nil {
				return result.Set[record.TreeNode]{}, err
			}
		}
		out = append(out, *n)
	}
	return result.New(out, total), nil
}

// expandNode lists the children of one node. A node the principal cannot read
// has no children.
func (b *Builder) expandNode(
	ctx context.Context, st *buildState, req request.Request,
) (result.Set[record.TreeNode], error) {
	t := b.ParseNode(req.Node())
	if t.DBKey == "" || !b.perms.CanRead(st.principal, t) {
		return result.New([]record.TreeNode{}, 0), nil
	}
	if st.prune {
		if _, err := b.scan(ctx, st, req); err != nil {
			return result.Set[record.TreeNode]{}, err
		}
	}
	kids, err := b.children(ctx, st, t)
	if err != nil {
		return result.Set[record.TreeNode]{}, err
	}
	out := make([]record.TreeNode, 0, len(kids))
	for _, k := range kids {
		if st.shouldExpand(k.NodeID) {
			if err := b.expand(ctx, st, k, titleOf(k)); err != nil {
				return result.Set[record.TreeNode]{}, err
			}
		}
		out = append(out, *k)
	}
	return result.New(out, len(out)), nil
}

// expand loads the children of n and recurses into branches that lead to a
// match or lie on an expand path.
func (b *Builder) expand(ctx context.Context, st *buildState, n *record.TreeNode, t domain.Title) error {
	if st.full(b.limits.MaxNodes) {
		return nil
	}
	kids, err := b.children(ctx, st, t)
	if err != nil {
		return err
	}
	n.Children = kids
	n.Loaded = true
	n.Expanded = true
	n.Leaf = len(kids) == 0
	for _, k := range kids {
		if !st.shouldExpand(k.NodeID) {
			continue
		}
		if err := b.expand(ctx, st, k, titleOf(k)); err != nil {
			return err
		}
	}
	return nil
}

// children returns the direct children of parent sorted by path, synthesizing
// nodes for segments without a page.
func (b *Builder) children(ctx context.Context, st *buildState, parent domain.Title) ([]*record.TreeNode, error) {
	if kids, ok := st.children[parent.ID()]; ok {
		return kids, nil
	}
	if !b.ns.HasSubpages(parent.Namespace) {
		st.children[parent.ID()] = []*record.TreeNode{}
		return st.children[parent.ID()], nil
	}
	pages, err := b.descendants(ctx, st, parent)
	if err != nil {
		return nil, err
	}

	type group struct {
		title  domain.Title
		page   *page.Page
		deeper bool
	}
	groups := make(map[string]*group)
	for i := range pages {
		pt := pages[i].Title
		if !b.admit(st, pt) {
			continue
		}
		child := directChild(parent, pt)
		g, ok := groups[child.ID()]
		if !ok {
			g = &group{title: child}
			groups[child.ID()] = g
		}
		if pt == child {
			g.page = &pages[i]
		} else {
			g.deeper = true
		}
	}
	sorted := make([]*group, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	slices.SortFunc(sorted, func(a, c *group) int { return strings.Compare(a.title.DBKey, c.title.DBKey) })

	kids := make([]*record.TreeNode, 0, len(sorted))
	for _, g := range sorted {
		id := g.title.ID()
		if st.prune && !st.matches[id] && !st.above[id] {
			continue
		}
		if st.full(b.limits.MaxNodes) {
			break
		}
		n := st.newNode(g.title, g.page)
		if st.prune {
			n.Leaf = !st.above[id]
		} else {
			n.Leaf = !g.deeper
		}
		kids = append(kids, n)
	}
	st.children[parent.ID()] = kids
	return kids, nil
}

// descendants returns the pages below t, reusing the pages already loaded
// for the nearest ancestor.
func (b *Builder) descendants(ctx context.Context, st *buildState, t domain.Title) ([]page.Page, error) {
	for a, ok := t, true; ok; a, ok = a.Parent() {
		cached, hit := st.below[a.ID()]
		if !hit {
			continue
		}
		if a == t {
			return cached, nil
		}
		var out []page.Page
		for _, p := range cached {
			if p.Title.IsDescendantOf(t) {
				out = append(out, p)
			}
		}
		return out, nil
	}
	pages, err := b.pages.Descendants(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", t.ID(), err)
	}
	st.below[t.ID()] = pages
	return pages, nil
}

// scan runs the flat query over all windows and records the matching titles
// and their ancestors. Every match is kept; the node bound applies only to
// materialized nodes.
func (b *Builder) scan(ctx context.Context, st *buildState, req request.Request) ([]domain.Title, error) {
	var out []domain.Title
	for offset := 0; ; {
		r, err := request.New(request.Params{
			Query:   req.Query(),
			Filters: req.Filters().Clone(),
			Offset:  offset,
			Limit:   request.MaxLimit,
		})
		if err != nil {
			return nil, err
		}
		set, err := b.titles.Query(ctx, r)
		if err != nil {
			return nil, err
		}
		for _, rec := range set.Records() {
			t := domain.Title{Namespace: rec.Namespace, DBKey: rec.DBKey}
			if !b.admit(st, t) {
				continue
			}
			st.matches[t.ID()] = true
			for a, ok := b.parent(t); ok; a, ok = b.parent(a) {
				st.above[a.ID()] = true
			}
			out = append(out, t)
		}
		offset += set.Len()
		if set.Len() == 0 || offset >= set.Total() {
			return out, nil
		}
	}
}

// admit applies the depth bound and the read check.
func (b *Builder) admit(st *buildState, t domain.Title) bool {
	if b.ns.HasSubpages(t.Namespace) && t.Depth() > b.limits.MaxDepth {
		st.depthCut = true
		return false
	}
	return b.perms.CanRead(st.principal, t)
}

func (b *Builder) root(t domain.Title) domain.Title {
	if !b.ns.HasSubpages(t.Namespace) {
		return t
	}
	return t.Root()
}

func (b *Builder) parent(t domain.Title) (domain.Title, bool) {
	if !b.ns.HasSubpages(t.Namespace) {
		return domain.Title{}, false
	}
	return t.Parent()
}

func (b *Builder) report(ctx context.Context, st *buildState) {
	metrics.TreeNodesTotal.Add(float64(st.nodes))
	log := logger.FromContext(ctx)
	if st.depthCut {
		metrics.TreeTruncatedTotal.WithLabelValues("depth").Inc()
		log.Warn("title tree truncated", zap.String("limit", "depth"), zap.Int("max_depth", b.limits.MaxDepth))
	}
	if st.nodeCut {
		metrics.TreeTruncatedTotal.WithLabelValues("nodes").Inc()
		log.Warn("title tree truncated", zap.String("limit", "nodes"), zap.Int("max_nodes", b.limits.MaxNodes))
	}
}

// directChild returns the ancestor of t exactly one segment below parent.
func directChild(parent, t domain.Title) domain.Title {
	rest := strings.TrimPrefix(t.DBKey, parent.DBKey+domain.SubpageSeparator)
	seg, _, _ := strings.Cut(rest, domain.SubpageSeparator)
	return domain.Title{Namespace: parent.Namespace, DBKey: parent.DBKey + domain.SubpageSeparator + seg}
}

func titleOf(n *record.TreeNode) domain.Title {
	return domain.Title{Namespace: n.Namespace, DBKey: n.DBKey}
}
