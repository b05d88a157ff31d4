// Package app assembles repositories and use cases on top of one primary store.
package app

import (
	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
	"github.com/kailas-cloud/wikindex/internal/i18n"
	"github.com/kailas-cloud/wikindex/internal/permission"
	categoryrepo "github.com/kailas-cloud/wikindex/internal/repository/category"
	filerepo "github.com/kailas-cloud/wikindex/internal/repository/file"
	"github.com/kailas-cloud/wikindex/internal/repository/indextable"
	pagerepo "github.com/kailas-cloud/wikindex/internal/repository/page"
	"github.com/kailas-cloud/wikindex/internal/repository/updatelog"
	userrepo "github.com/kailas-cloud/wikindex/internal/repository/user"
	"github.com/kailas-cloud/wikindex/internal/usecase/enrich"
	"github.com/kailas-cloud/wikindex/internal/usecase/indexer"
	"github.com/kailas-cloud/wikindex/internal/usecase/populate"
	queryuc "github.com/kailas-cloud/wikindex/internal/usecase/query"
	"github.com/kailas-cloud/wikindex/internal/usecase/tree"
)

// Store names.
const (
	StoreTitle     = "title"
	StoreFile      = "file"
	StoreCategory  = "category"
	StoreUser      = "user"
	StoreTitleTree = "title-tree"
)

// Settings are the non-storage inputs of Wire. Zero values fall back to
// built-in defaults.
type Settings struct {
	Namespaces    *domain.Namespaces
	Exclusions    queryuc.Exclusions
	Messages      enrich.Messages
	Site          enrich.Site
	Permissions   permission.Checker
	TreeLimits    tree.Limits
	PopulateBatch int
}

// App holds the wired use cases.
type App struct {
	Titles     *queryuc.Pipeline[record.Title]
	Files      *queryuc.Pipeline[record.File]
	Categories *queryuc.Pipeline[record.Category]
	Users      *queryuc.Pipeline[record.User]
	Tree       *queryuc.Pipeline[record.TreeNode]
	Stores     *queryuc.Registry
	Events     *indexer.Dispatcher
	Populate   *populate.Runner
}

type noExclusions struct{}

func (noExclusions) Users() []string  { return nil }
func (noExclusions) Groups() []string { return nil }

// Wire builds every repository and use case on store.
func Wire(store db.Store, s Settings) *App {
	if s.Namespaces == nil {
		s.Namespaces = domain.DefaultNamespaces()
	}
	if s.Exclusions == nil {
		s.Exclusions = noExclusions{}
	}
	if s.Messages == nil {
		s.Messages = i18n.New(nil)
	}
	if s.Site.ArticlePath == "" {
		s.Site.ArticlePath = "/wiki/$1"
	}
	if s.Site.UploadPath == "" {
		s.Site.UploadPath = "/images"
	}

	pages := pagerepo.New(store)
	users := userrepo.New(store)
	categories := categoryrepo.New(store)
	files := filerepo.New(store)
	index := indextable.New(store)

	titleEnricher := enrich.NewTitles(s.Namespaces, s.Messages, s.Site, pages)
	titleProvider := queryuc.NewTitleProvider(store, s.Namespaces)
	builder := tree.NewBuilder(titleProvider, pages, s.Namespaces, s.Permissions, s.TreeLimits)

	a := &App{
		Titles: queryuc.NewPipeline[record.Title](StoreTitle,
			titleProvider, titleEnricher, queryuc.MetricsHook[record.Title]()),
		Files: queryuc.NewPipeline[record.File](StoreFile,
			queryuc.NewFileProvider(store, s.Namespaces),
			enrich.NewFiles(titleEnricher, files, s.Site), queryuc.MetricsHook[record.File]()),
		Categories: queryuc.NewPipeline[record.Category](StoreCategory,
			queryuc.NewCategoryProvider(store, s.Namespaces),
			enrich.NewCategories(titleEnricher), queryuc.MetricsHook[record.Category]()),
		Users: queryuc.NewPipeline[record.User](StoreUser,
			queryuc.NewUserProvider(store, users, s.Exclusions),
			enrich.NewUsers(s.Namespaces, s.Messages, s.Site), queryuc.MetricsHook[record.User]()),
		Tree: queryuc.NewPipeline[record.TreeNode](StoreTitleTree,
			builder, enrich.NewTrees(titleEnricher), queryuc.MetricsHook[record.TreeNode]()),
		Stores: queryuc.NewRegistry(),
	}
	queryuc.Register(a.Stores, a.Titles)
	queryuc.Register(a.Stores, a.Files)
	queryuc.Register(a.Stores, a.Categories)
	queryuc.Register(a.Stores, a.Users)
	queryuc.Register(a.Stores, a.Tree)

	a.Events = indexer.NewDispatcher().
		Register(StoreTitle, indexer.NewTitleUpdater(pages, index)).
		Register(StoreCategory, indexer.NewCategoryUpdater(pages, categories, index)).
		Register(StoreUser, indexer.NewUserUpdater(users, index))
	a.Populate = populate.New(updatelog.New(store), index, pages, users, categories).
		WithBatchSize(s.PopulateBatch)
	return a
}
