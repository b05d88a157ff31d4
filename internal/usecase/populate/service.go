package populate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wikindex/internal/domain"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
	"github.com/kailas-cloud/wikindex/internal/logger"
	"github.com/kailas-cloud/wikindex/internal/metrics"
	"github.com/kailas-cloud/wikindex/internal/repository/category"
	"github.com/kailas-cloud/wikindex/internal/usecase/indexer"
)

// DefaultBatchSize is the number of primary rows read per round trip.
const DefaultBatchSize = 250

// Job names a population job.
type Job string

// Population jobs.
const (
	JobTitle    Job = "title"
	JobCategory Job = "category"
	JobUser     Job = "user"
)

// Jobs returns all jobs in the order "all" runs them.
func Jobs() []Job { return []Job{JobTitle, JobCategory, JobUser} }

// ParseJob validates a job name.
func ParseJob(s string) (Job, error) {
	switch j := Job(s); j {
	case JobTitle, JobCategory, JobUser:
		return j, nil
	}
	return "", fmt.Errorf("unknown populate job %q", s)
}

// UpdateKey is the update log key recorded when the job completes.
func (j Job) UpdateKey() string {
	return "mws-" + string(j) + "-index-init"
}

// Table is the index table the job rebuilds.
func (j Job) Table() string {
	switch j {
	case JobCategory:
		return domidx.CategoryTable
	case JobUser:
		return domidx.UserTable
	}
	return domidx.TitleTable
}

// Result summarizes a job run.
type Result struct {
	Job     Job
	Skipped bool
	// NoTable is set with Skipped when the index table is not migrated yet.
	NoTable  bool
	Rows     int64
	Duration time.Duration
}

// Runner rebuilds index tables from the primary store.
type Runner struct {
	log        UpdateLog
	index      IndexWriter
	pages      PageSource
	users      UserSource
	categories CategorySource
	batchSize  int
}

// New creates a population runner.
func New(log UpdateLog, index IndexWriter, pages PageSource, users UserSource, categories CategorySource) *Runner {
	return &Runner{
		log:        log,
		index:      index,
		pages:      pages,
		users:      users,
		categories: categories,
		batchSize:  DefaultBatchSize,
	}
}

// WithBatchSize overrides the read batch size.
func (r *Runner) WithBatchSize(n int) *Runner {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// Run rebuilds the table of job unless it already ran and force is false.
// Not transactional; a rerun converges.
func (r *Runner) Run(ctx context.Context, job Job, force bool) (Result, error) {
	res := Result{Job: job}
	log := logger.FromContext(ctx).With(zap.String("job", string(job)))

	if !force {
		done, err := r.log.Has(ctx, job.UpdateKey())
		if err != nil {
			return res, r.fail(job, err)
		}
		if done {
			res.Skipped = true
			metrics.PopulateRunsTotal.WithLabelValues(string(job), "skipped").Inc()
			log.Info("populate skipped, already done", zap.String("key", job.UpdateKey()))
			return res, nil
		}
	}

	ok, err := r.index.TableExists(ctx, job.Table())
	if err != nil {
		return res, r.fail(job, err)
	}
	if !ok {
		// Schema not ready. The update key stays unset so the job runs after migration.
		res.Skipped, res.NoTable = true, true
		metrics.PopulateRunsTotal.WithLabelValues(string(job), "skipped_no_table").Inc()
		log.Info("populate skipped, index table missing", zap.String("table", job.Table()))
		return res, nil
	}

	start := time.Now()
	if _, err := r.index.Clear(ctx, job.Table()); err != nil {
		return res, r.fail(job, err)
	}

	var rows int64
	switch job {
	case JobTitle:
		rows, err = r.titles(ctx)
	case JobCategory:
		rows, err = r.categoryRows(ctx)
	case JobUser:
		rows, err = r.userRows(ctx)
	default:
		err = fmt.Errorf("unknown populate job %q", job)
	}
	res.Rows = rows
	if err != nil {
		return res, r.fail(job, err)
	}

	if err := r.log.Record(ctx, job.UpdateKey()); err != nil {
		return res, r.fail(job, err)
	}
	res.Duration = time.Since(start)
	metrics.PopulateRunsTotal.WithLabelValues(string(job), "done").Inc()
	log.Info("populate finished", zap.Int64("rows", rows), zap.Duration("duration", res.Duration))
	return res, nil
}

func (r *Runner) fail(job Job, err error) error {
	metrics.PopulateRunsTotal.WithLabelValues(string(job), "error").Inc()
	return fmt.Errorf("populate %s: %w", job, err)
}

func (r *Runner) written(job Job, n int64) {
	metrics.PopulateRowsTotal.WithLabelValues(string(job)).Add(float64(n))
}

func (r *Runner) titles(ctx context.Context) (int64, error) {
	var total, after int64
	for {
		pages, err := r.pages.Batch(ctx, after, r.batchSize)
		if err != nil {
			return total, err
		}
		if len(pages) == 0 {
			return total, nil
		}
		ids := make([]int64, len(pages))
		for i, p := range pages {
			ids[i] = p.ID
		}
		display, err := r.pages.DisplayTitles(ctx, ids)
		if err != nil {
			return total, err
		}
		rows := make([]domidx.TitleRow, 0, len(pages))
		for _, p := range pages {
			rows = append(rows, indexer.TitleRow(p.ID, p.Title, display[p.ID]))
		}
		n, err := r.index.InsertTitles(ctx, rows)
		if err != nil {
			return total, err
		}
		total += n
		r.written(JobTitle, n)
		after = pages[len(pages)-1].ID
	}
}

func (r *Runner) userRows(ctx context.Context) (int64, error) {
	var total, after int64
	for {
		users, err := r.users.Batch(ctx, after, r.batchSize)
		if err != nil {
			return total, err
		}
		if len(users) == 0 {
			return total, nil
		}
		rows := make([]domidx.UserRow, 0, len(users))
		for _, u := range users {
			rows = append(rows, indexer.UserRow(u.ID, u.Name, u.RealName))
		}
		n, err := r.index.InsertUsers(ctx, rows)
		if err != nil {
			return total, err
		}
		total += n
		r.written(JobUser, n)
		after = users[len(users)-1].ID
	}
}

// categoryRows merges the category cache with the link targets, both sorted
// by title. Link counts win over cached page counts.
func (r *Runner) categoryRows(ctx context.Context) (int64, error) {
	cats := newCursor(func(after string) ([]category.Category, error) {
		return r.categories.Batch(ctx, after, r.batchSize)
	}, func(c category.Category) string { return c.Title })
	links := newCursor(func(after string) ([]category.LinkTarget, error) {
		return r.categories.LinkTargets(ctx, after, r.batchSize)
	}, func(l category.LinkTarget) string { return l.Title })

	var total int64
	batch := make([]domidx.CategoryRow, 0, r.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.index.InsertCategories(ctx, batch)
		if err != nil {
			return err
		}
		total += n
		r.written(JobCategory, n)
		batch = batch[:0]
		return nil
	}

	for {
		c, hasCat, err := cats.peek()
		if err != nil {
			return total, err
		}
		l, hasLink, err := links.peek()
		if err != nil {
			return total, err
		}
		if !hasCat && !hasLink {
			break
		}

		var row domidx.CategoryRow
		switch {
		case hasCat && (!hasLink || c.Title < l.Title):
			row = categoryRow(c.ID, c.Title, 0)
			cats.advance()
		case hasLink && (!hasCat || l.Title < c.Title):
			row = categoryRow(0, l.Title, l.Count)
			links.advance()
		default:
			row = categoryRow(c.ID, c.Title, l.Count)
			cats.advance()
			links.advance()
		}

		batch = append(batch, row)
		if len(batch) >= r.batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

func categoryRow(id int64, dbKey string, count int) domidx.CategoryRow {
	return domidx.CategoryRow{
		CatID:     id,
		Title:     domain.NormalizeKey(dbKey),
		PageTitle: dbKey,
		Count:     int64(count),
	}
}
