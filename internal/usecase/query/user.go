package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/domain"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
	"github.com/kailas-cloud/wikindex/internal/repository/user"
)

// User store filter fields handled outside the generic pass.
const (
	FieldUserName     = "user_name"
	FieldUserRealName = "user_real_name"
	FieldGroups       = "groups"
	FieldGroupsRaw    = "groups_raw"
	FieldEnabled      = "enabled"

	// GroupBucket names the facet of groups present in a user result.
	GroupBucket = "groups"

	// systemUserMarker flags maintenance accounts in the token column.
	systemUserMarker = "INVALID"
)

func userTable() Table {
	return Table{
		From: "user",
		Joins: []db.Join{{
			Kind: db.InnerJoin, Table: domidx.UserTable, On: []db.Cond{db.ColEq("user_id", "mui_user_id")},
		}},
		Fields: []string{
			"user_id", "user_name", "user_real_name", "user_email", "user_registration", "user_editcount",
		},
		Filterable: map[string]Column{
			"user_id":           {Name: "user_id", Kind: NumberColumn},
			"user_editcount":    {Name: "user_editcount", Kind: NumberColumn},
			"user_registration": {Name: "user_registration", Kind: TextColumn},
		},
		Sortable: map[string]string{
			FieldUserName:       "mui_user_name",
			FieldUserRealName:   "mui_user_real_name",
			"user_id":           "user_id",
			"user_editcount":    "user_editcount",
			"user_registration": "user_registration",
		},
		DefaultSort: []db.Order{{Col: "mui_user_name"}, {Col: "user_id"}},
	}
}

// UserProvider queries the user index. Excluded users and groups are always
// hidden; users whose only groups are excluded still appear with no groups.
type UserProvider struct {
	engine  *Engine
	groups  GroupReader
	exclude Exclusions
}

// NewUserProvider creates the user store provider.
func NewUserProvider(store Store, groups GroupReader, exclude Exclusions, extra ...Rewriter) *UserProvider {
	rw := &userRewriter{exclude: exclude}
	rewriters := append([]Rewriter{rw}, extra...)
	return &UserProvider{
		engine:  NewEngine(store, userTable(), rewriters...),
		groups:  groups,
		exclude: exclude,
	}
}

// Query returns matching users with their groups, block state and the group
// bucket of the whole (unpaginated) match.
func (p *UserProvider) Query(ctx context.Context, req request.Request) (result.Set[record.User], error) {
	page, err := p.engine.Execute(ctx, req)
	if err != nil {
		return result.Set[record.User]{}, err
	}
	excluded := p.exclude.Groups()

	blocked, err := p.groups.BlockedIDs(ctx)
	if err != nil {
		return result.Set[record.User]{}, fmt.Errorf("load blocks: %w", err)
	}

	users := make([]user.User, 0, len(page.Rows))
	ids := make([]int64, 0, len(page.Rows))
	for _, row := range page.Rows {
		u := user.FromRow(row)
		users = append(users, u)
		ids = append(ids, u.ID)
	}
	memberships, err := p.groups.GroupsFor(ctx, ids, excluded)
	if err != nil {
		return result.Set[record.User]{}, err
	}

	out := make([]record.User, 0, len(users))
	for _, u := range users {
		groups := memberships[u.ID]
		if groups == nil {
			groups = []string{}
		}
		display := u.RealName
		if display == "" {
			display = u.Name
		}
		out = append(out, record.User{
			ID:           u.ID,
			Name:         u.Name,
			RealName:     u.RealName,
			Registration: u.Registration,
			EditCount:    u.EditCount,
			Email:        u.Email,
			Groups:       groups,
			GroupsRaw:    append([]string(nil), groups...),
			Enabled:      u.ID <= 0 || u.ID > int64(^uint32(0)) || !blocked.Contains(uint32(u.ID)),
			DisplayName:  display,
		})
	}

	bucketGroups, err := p.groups.DistinctGroups(ctx, p.engine.Subquery(page.Where, "user_id"), excluded)
	if err != nil {
		return result.Set[record.User]{}, err
	}
	bucket := make(map[string]string, len(bucketGroups))
	for _, g := range bucketGroups {
		bucket[g] = g
	}

	return result.New(out, page.Total).WithBuckets(GroupBucket, bucket), nil
}

type userRewriter struct {
	exclude Exclusions
}

func (r *userRewriter) Rewrite(_ context.Context, req *request.Request, scan *Scan) error {
	for _, f := range req.Filters().Pending() {
		switch f.Field() {
		case FieldUserName, FieldUserRealName:
			// name filters take priority over the free-text query
			scan.Text = ""
			f.MarkApplied()
			col := "mui_user_name"
			if f.Field() == FieldUserRealName {
				col = "mui_user_real_name"
			}
			if c, ok := TextCond(col, f, domain.LowerKey); ok {
				scan.Add(c)
			}
		case FieldGroups, FieldGroupsRaw:
			f.MarkApplied()
			if c, ok := r.groupCond(f); ok {
				scan.Add(c)
			}
		case FieldEnabled:
			f.MarkApplied()
			if c, ok := enabledCond(f); ok {
				scan.Add(c)
			}
		}
	}

	if scan.Text != "" {
		if q := strings.TrimSpace(domain.LowerKey(scan.Text)); q != "" {
			scan.Add(db.AnyOf(
				db.Contains("mui_user_name", q),
				db.Contains("mui_user_real_name", q),
			))
		}
		scan.Text = ""
	}

	scan.Add(db.NotContains("user_token", systemUserMarker))
	if users := r.exclude.Users(); len(users) > 0 {
		scan.Add(db.NotInList("user_name", users))
	}
	return nil
}

// groupCond restricts to members of the given groups. Excluded groups never
// match, so filtering by one yields nothing.
func (r *userRewriter) groupCond(f *filter.Filter) (db.Cond, bool) {
	groups := f.Strings()
	var groupCond db.Cond
	switch f.Comparison() {
	case filter.Equals, filter.In, filter.NotEquals:
		groupCond = db.InList("ug_group", groups)
	case filter.Contains, filter.Like:
		groupCond = db.Contains("ug_group", f.String())
	default:
		return nil, false
	}
	members := &db.Select{
		Table:  "user_groups",
		Fields: []string{"ug_user"},
		Where:  []db.Cond{groupCond, db.NotInList("ug_group", r.exclude.Groups())},
	}
	return db.InSelect{Col: "user_id", Query: members, Negate: f.Comparison() == filter.NotEquals}, true
}

func enabledCond(f *filter.Filter) (db.Cond, bool) {
	v, ok := f.Bool()
	if !ok {
		return nil, false
	}
	switch f.Comparison() {
	case filter.Equals:
	case filter.NotEquals:
		v = !v
	default:
		return nil, false
	}
	blocked := &db.Select{
		Table:  "block",
		Joins:  []db.Join{{Kind: db.InnerJoin, Table: "block_target", On: []db.Cond{db.ColEq("bt_id", "bl_target")}}},
		Fields: []string{"bt_user"},
		Where:  []db.Cond{db.NotNull("bt_user")},
	}
	// enabled means not blocked
	return db.InSelect{Col: "user_id", Query: blocked, Negate: v}, true
}
