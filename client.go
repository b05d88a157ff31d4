package wikindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wikindex/internal/app"
	"github.com/kailas-cloud/wikindex/internal/config"
	"github.com/kailas-cloud/wikindex/internal/db/sqlite"
	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/i18n"
	logpkg "github.com/kailas-cloud/wikindex/internal/logger"
	"github.com/kailas-cloud/wikindex/internal/permission"
	"github.com/kailas-cloud/wikindex/internal/usecase/enrich"
	"github.com/kailas-cloud/wikindex/internal/usecase/populate"
	"github.com/kailas-cloud/wikindex/internal/usecase/tree"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultBusyTimeout      = 5 * time.Second
)

// Store names accepted by Client.Query.
const (
	StoreTitle     = app.StoreTitle
	StoreFile      = app.StoreFile
	StoreCategory  = app.StoreCategory
	StoreUser      = app.StoreUser
	StoreTitleTree = app.StoreTitleTree
)

// Client is the wikindex SDK entry point. It runs the query stores, the event
// updaters and population jobs in process against one SQLite database.
type Client struct {
	store  *sqlite.Store
	app    *app.App
	logger *zap.Logger
}

// New opens the database and wires a Client.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{busyTimeout: defaultBusyTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.path == "" {
		return nil, errors.New("wikindex: database path required (use WithDatabase)")
	}

	store, err := sqlite.NewStore(sqlite.Config{
		Path:         cfg.path,
		BusyTimeout:  cfg.busyTimeout,
		MaxOpenConns: cfg.maxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("wikindex: open database: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("wikindex: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store *sqlite.Store, cfg *clientConfig) *Client {
	var ns *domain.Namespaces
	switch {
	case cfg.nsNames != nil:
		ns = domain.NewNamespaces(cfg.nsNames, cfg.nsContent, cfg.nsSubpages)
	case cfg.nsContent != nil || cfg.nsSubpages != nil:
		ns = domain.NewNamespaces(domain.DefaultNamespaces().Names(), cfg.nsContent, cfg.nsSubpages)
	}

	// nil interface, not a typed nil pointer, when no policy is set
	var perms permission.Checker
	if len(cfg.readPolicy) > 0 {
		perms = permission.NewNamespacePolicy(cfg.readPolicy)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		store:  store,
		logger: logger,
		app: app.Wire(store, app.Settings{
			Namespaces: ns,
			Exclusions: config.NewExclusions(config.ExclusionsConfig{
				Users:  cfg.excludeUsers,
				Groups: cfg.excludeGroup,
			}),
			Messages:      i18n.New(cfg.messages),
			Site:          enrich.Site{ArticlePath: cfg.articlePath, UploadPath: cfg.uploadPath},
			Permissions:   perms,
			TreeLimits:    tree.Limits{MaxDepth: cfg.treeMaxDepth, MaxNodes: cfg.treeMaxNodes},
			PopulateBatch: cfg.populateBatch,
		}),
	}
}

func (c *Client) withLogger(ctx context.Context) context.Context {
	return logpkg.ContextWithLogger(ctx, c.logger)
}

// Close releases the database.
func (c *Client) Close() error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Stores returns the names accepted by Query.
func (c *Client) Stores() []string { return c.app.Stores.Names() }

// Titles queries the title store.
func (c *Client) Titles() *QueryBuilder[Title] { return newBuilder(c, c.app.Titles) }

// Files queries the file store.
func (c *Client) Files() *QueryBuilder[File] { return newBuilder(c, c.app.Files) }

// Categories queries the category store.
func (c *Client) Categories() *QueryBuilder[Category] { return newBuilder(c, c.app.Categories) }

// Users queries the user store.
func (c *Client) Users() *QueryBuilder[User] { return newBuilder(c, c.app.Users) }

// Tree queries the title-tree store. The principal decides which namespaces
// are visible; see WithPrincipal.
func (c *Client) Tree() *QueryBuilder[TreeNode] { return newBuilder(c, c.app.Tree) }

// Query runs q against a store by name.
func (c *Client) Query(ctx context.Context, store string, q Query) (Response, error) {
	req, err := q.toRequest()
	if err != nil {
		return Response{}, err
	}
	return c.app.Stores.Run(c.withLogger(ctx), store, req)
}

// Apply feeds one mutation event to every index updater.
func (c *Client) Apply(ctx context.Context, ev Event) error {
	return c.app.Events.Dispatch(c.withLogger(ctx), ev)
}

// Populate rebuilds the index table of job ("title", "category", "user" or
// "all"). Completed jobs are skipped unless force is set.
func (c *Client) Populate(ctx context.Context, job string, force bool) ([]PopulateResult, error) {
	jobs := populate.Jobs()
	if job != "all" {
		j, err := populate.ParseJob(job)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		jobs = []populate.Job{j}
	}

	ctx = c.withLogger(ctx)
	out := make([]PopulateResult, 0, len(jobs))
	for _, j := range jobs {
		res, err := c.app.Populate.Run(ctx, j, force)
		if err != nil {
			return out, fmt.Errorf("populate %s: %w", j, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// WithPrincipal returns a context whose tree queries are evaluated for the
// given user and groups.
func WithPrincipal(ctx context.Context, user string, groups ...string) context.Context {
	return permission.WithPrincipal(ctx, permission.Principal{Name: user, Groups: groups})
}
