package wikindex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	path         string
	busyTimeout  time.Duration
	maxOpenConns int

	nsNames    map[int]string
	nsContent  []int
	nsSubpages []int

	messages     map[string]string
	articlePath  string
	uploadPath   string
	excludeUsers []string
	excludeGroup []string
	readPolicy   map[int][]string

	treeMaxDepth  int
	treeMaxNodes  int
	populateBatch int

	logger *zap.Logger
}

// WithDatabase sets the SQLite database file. Required.
func WithDatabase(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.path = path
	})
}

// WithBusyTimeout sets how long a statement waits on a locked database.
// Defaults to 5s.
func WithBusyTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.busyTimeout = d
	})
}

// WithMaxOpenConns caps the connection pool.
func WithMaxOpenConns(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxOpenConns = n
	})
}

// WithNamespaces replaces the built-in namespace registry. A nil names map
// keeps the built-in names and only overrides the content and subpage lists.
func WithNamespaces(names map[int]string, content, subpages []int) Option {
	return optionFunc(func(c *clientConfig) {
		c.nsNames = names
		c.nsContent = content
		c.nsSubpages = subpages
	})
}

// WithMessages overrides interface messages such as "group-sysop".
func WithMessages(m map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.messages = m
	})
}

// WithSite sets the article path ("$1" is replaced by the title) and the
// upload path used to build URLs.
func WithSite(articlePath, uploadPath string) Option {
	return optionFunc(func(c *clientConfig) {
		c.articlePath = articlePath
		c.uploadPath = uploadPath
	})
}

// WithExclusions hides users and groups from user store results.
func WithExclusions(users, groups []string) Option {
	return optionFunc(func(c *clientConfig) {
		c.excludeUsers = users
		c.excludeGroup = groups
	})
}

// WithReadPolicy restricts namespaces to the listed groups in tree results.
func WithReadPolicy(rules map[int][]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.readPolicy = rules
	})
}

// WithTreeLimits bounds tree reconstruction. Defaults: depth 32, 5000 nodes.
func WithTreeLimits(maxDepth, maxNodes int) Option {
	return optionFunc(func(c *clientConfig) {
		c.treeMaxDepth = maxDepth
		c.treeMaxNodes = maxNodes
	})
}

// WithPopulateBatchSize sets the read batch size of population jobs.
func WithPopulateBatchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.populateBatch = n
	})
}

// WithLogger sets the logger attached to every call. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
