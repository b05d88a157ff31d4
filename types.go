package wikindex

import (
	"github.com/kailas-cloud/wikindex/internal/domain/event"
	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
	"github.com/kailas-cloud/wikindex/internal/usecase/populate"
	queryuc "github.com/kailas-cloud/wikindex/internal/usecase/query"
)

// Store records.
type (
	Title    = record.Title
	File     = record.File
	Category = record.Category
	User     = record.User
	TreeNode = record.TreeNode
)

// Response is an untyped store result, as served over HTTP.
type Response = queryuc.Response

// Comparison is a filter operator.
type Comparison = filter.Comparison

// Filter operators.
const (
	Equals         = filter.Equals
	NotEquals      = filter.NotEquals
	Contains       = filter.Contains
	Like           = filter.Like
	In             = filter.In
	Less           = filter.Less
	LessOrEqual    = filter.LessOrEqual
	Greater        = filter.Greater
	GreaterOrEqual = filter.GreaterOrEqual
)

// Sort orders results by one property.
type Sort = request.Sort

// Direction is a sort direction.
type Direction = request.Direction

// Sort directions.
const (
	Asc  = request.Asc
	Desc = request.Desc
)

// Event is a primary-store mutation notification.
type Event = event.Event

// EventKind names a mutation.
type EventKind = event.Kind

// Event kinds.
const (
	PageSaved          = event.PageSaved
	PageMoved          = event.PageMoved
	PageDeleted        = event.PageDeleted
	PageRestored       = event.PageRestored
	PageImported       = event.PageImported
	CategoryMembership = event.CategoryMembership
	UserSaved          = event.UserSaved
	UserDeleted        = event.UserDeleted
)

// PopulateResult reports one population job.
type PopulateResult = populate.Result
