package tree

import (
	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
	"github.com/kailas-cloud/wikindex/internal/permission"
	"github.com/kailas-cloud/wikindex/internal/repository/page"
)

// buildState is scoped to one Build call. Maps are keyed by Title.ID().
type buildState struct {
	principal permission.Principal
	query     bool // free text given: matching branches are expanded
	prune     bool // query or filters given: only matching branches are kept

	matches  map[string]bool
	above    map[string]bool // ancestors of matches
	expand   map[string]bool // expand paths and their ancestors
	below    map[string][]page.Page
	children map[string][]*record.TreeNode

	nodes    int
	depthCut bool
	nodeCut  bool
}

func (st *buildState) shouldExpand(id string) bool {
	return (st.query && st.above[id]) || st.expand[id]
}

// full reports whether the node budget is spent.
func (st *buildState) full(maxNodes int) bool {
	if st.nodes >= maxNodes {
		st.nodeCut = true
		return true
	}
	return false
}

func (st *buildState) newNode(t domain.Title, pg *page.Page) *record.TreeNode {
	st.nodes++
	n := &record.TreeNode{
		Title:    record.Title{Namespace: t.Namespace, DBKey: t.DBKey},
		NodeID:   t.ID(),
		Path:     t.DBKey,
		Children: []*record.TreeNode{},
	}
	if pg != nil {
		n.ID = pg.ID
		n.Exists = true
		n.ContentModel = pg.ContentModel
		n.IsRedirect = pg.IsRedirect
	}
	return n
}
