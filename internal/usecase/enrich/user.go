package enrich

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
)

// BucketGroups names the group facet relabeled by Users.
const BucketGroups = "groups"

// Users enriches user records.
type Users struct {
	ns   *domain.Namespaces
	msgs Messages
	site Site
}

// NewUsers creates a user enricher.
func NewUsers(ns *domain.Namespaces, msgs Messages, site Site) *Users {
	return &Users{ns: ns, msgs: msgs, site: site}
}

// Enrich implements the user store enricher. Group labels are memoized per call.
func (e *Users) Enrich(_ context.Context, set result.Set[record.User]) (result.Set[record.User], error) {
	labels := newLabelCache(e.msgs)
	recs := set.Records()
	for i := range recs {
		u := &recs[i]
		u.RealName = StripMarkup(u.RealName)
		u.DisplayName = u.RealName
		if u.DisplayName == "" {
			u.DisplayName = u.Name
		}
		groups := make([]string, len(u.GroupsRaw))
		for j, g := range u.GroupsRaw {
			groups[j] = labels.label(g)
		}
		u.Groups = groups

		page := domain.NewTitle(domain.NSUser, u.Name)
		u.PagePrefixed = page.Prefixed(e.ns)
		u.PageURL = e.site.ArticleURL(page.PrefixedDBKey(e.ns))
	}

	if bucket, ok := set.Buckets()[BucketGroups]; ok {
		relabeled := make(map[string]string, len(bucket))
		for id := range bucket {
			relabeled[id] = labels.label(id)
		}
		set = set.WithBuckets(BucketGroups, relabeled)
	}
	return set, nil
}

type labelCache struct {
	msgs  Messages
	cache map[string]string
}

func newLabelCache(msgs Messages) *labelCache {
	return &labelCache{msgs: msgs, cache: make(map[string]string)}
}

// label resolves "group-<id>", falling back to the raw id.
func (c *labelCache) label(group string) string {
	if l, ok := c.cache[group]; ok {
		return l
	}
	l := group
	if key := "group-" + group; c.msgs.Exists(key) {
		l = c.msgs.Text(key)
	}
	c.cache[group] = l
	return l
}

// StripMarkup returns the text content of an HTML fragment.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}
