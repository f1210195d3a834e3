package crawler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"code/internal/fetcher"
	"code/internal/limiter"
	"code/internal/parser"
	"code/internal/urlset"
)

type crawlJob struct {
	url string
	seq uint64
}

type pageResult struct {
	job           crawlJob
	record        Record
	ok            bool
	internalLinks []string
	externalCount int
}

// session owns everything scoped to one crawl run. Independent sessions can
// run concurrently; nothing here is package-level state.
type session struct {
	seed     string
	baseHost string
	fetch    *fetcher.Fetcher
	logger   *zap.Logger
	clock    limiter.Timer
	progress io.Writer
	workers  int
	fetchSem *semaphore.Weighted
}

func newSession(
	opts Options,
	seed string,
	baseHost string,
	fetch *fetcher.Fetcher,
	logger *zap.Logger,
	clock limiter.Timer,
) *session {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	maxConcurrentFetch := opts.MaxConcurrentFetch
	if maxConcurrentFetch < 1 {
		maxConcurrentFetch = workers
	}

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	return &session{
		seed:     seed,
		baseHost: baseHost,
		fetch:    fetch,
		logger:   logger,
		clock:    clock,
		progress: progress,
		workers:  workers,
		fetchSem: semaphore.NewWeighted(int64(maxConcurrentFetch)),
	}
}

func (s *session) run(ctx context.Context) ([]Record, error) {
	jobBuffer := s.workers * 4
	if jobBuffer < 16 {
		jobBuffer = 16
	}

	jobs := make(chan crawlJob, jobBuffer)
	results := make(chan pageResult, s.workers)

	var workersWG sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		workersWG.Add(1)

		go func() {
			defer workersWG.Done()
			s.worker(ctx, jobs, results)
		}()
	}

	go func() {
		workersWG.Wait()
		close(results)
	}()

	agg := newAggregator(jobs, s.progress)
	agg.enqueue(s.seed)
	agg.dispatch()
	agg.closeJobsIfNeeded()

	return s.drainResults(ctx, agg, results)
}

func (s *session) drainResults(
	ctx context.Context,
	agg *aggregator,
	results <-chan pageResult,
) ([]Record, error) {
	canceled := false
	for {
		if !canceled {
			select {
			case result, ok := <-results:
				if !ok {
					return agg.records, ctx.Err()
				}
				agg.onResult(result)
			case <-ctx.Done():
				canceled = true
				agg.abandonFrontier()
			}

			continue
		}

		result, ok := <-results
		if !ok {
			return agg.records, ctx.Err()
		}

		agg.onResult(result)
	}
}

func (s *session) worker(ctx context.Context, jobs <-chan crawlJob, results chan<- pageResult) {
	for job := range jobs {
		results <- s.processJob(ctx, job)
	}
}

// processJob runs one fetch-parse-extract cycle. Any failure is logged and
// yields a skip result; the run is never aborted over one page.
func (s *session) processJob(ctx context.Context, job crawlJob) pageResult {
	result := pageResult{job: job}

	fetched, err := s.fetchPage(ctx, job.url)
	if err != nil {
		s.logger.Warn("fetch failed",
			zap.String("url", job.url),
			zap.Int("status", fetched.StatusCode),
			zap.Error(err))

		return result
	}

	if !fetched.IsHTML() {
		s.logger.Warn("skipping non-html page",
			zap.String("url", job.url),
			zap.String("content_type", fetched.ContentType()))

		return result
	}

	page, err := parser.ParseHTML(fetched.Body)
	if err != nil {
		s.logger.Warn("parse failed",
			zap.String("url", job.url),
			zap.Error(err))

		return result
	}

	internal, external := splitLinks(job.url, page.Hrefs, s.baseHost)

	result.ok = true
	result.internalLinks = internal
	result.externalCount = len(external)
	result.record = Record{
		URL:           job.url,
		Title:         page.Title,
		StatusCode:    fetched.StatusCode,
		ContentType:   fetched.ContentType(),
		ScrapedAt:     s.clock.Now().UTC().Format(time.RFC3339),
		ExternalLinks: sortedUnique(external),
	}

	return result
}

func (s *session) fetchPage(ctx context.Context, pageURL string) (fetcher.Result, error) {
	if err := s.fetchSem.Acquire(ctx, 1); err != nil {
		return fetcher.Result{}, err
	}
	defer s.fetchSem.Release(1)

	return s.fetch.Fetch(ctx, pageURL)
}

// aggregator owns the frontier and the seen set. It runs only on the drain
// goroutine, so dequeue-and-mark is atomic with respect to the workers: a
// URL enters seen before its job can reach any worker, which keeps every
// fetch at-most-once.
type aggregator struct {
	seen           *urlset.Set // enqueued at least once: settled or pending
	frontier       []crawlJob  // discovered, not yet handed to a worker
	jobs           chan crawlJob
	pending        int // handed to workers, result not yet received
	jobsClosed     bool
	settled        int
	nextSeq        uint64
	nextCommit     uint64
	pendingResults map[uint64]pageResult
	records        []Record
	progress       io.Writer
}

func newAggregator(jobs chan crawlJob, progress io.Writer) *aggregator {
	return &aggregator{
		seen:           urlset.New(),
		frontier:       []crawlJob{},
		jobs:           jobs,
		pendingResults: map[uint64]pageResult{},
		records:        []Record{},
		progress:       progress,
	}
}

// enqueue adds a URL to the frontier unless it was ever enqueued before.
func (a *aggregator) enqueue(url string) {
	if !a.seen.Add(url) {
		return
	}

	a.frontier = append(a.frontier, crawlJob{url: url, seq: a.nextSeq})
	a.nextSeq++
}

// dispatch moves frontier items into the jobs channel without blocking, so
// the aggregator can always keep receiving results.
func (a *aggregator) dispatch() {
	for len(a.frontier) > 0 {
		select {
		case a.jobs <- a.frontier[0]:
			a.frontier = a.frontier[1:]
			a.pending++
		default:
			return
		}
	}
}

// abandonFrontier drops all not-yet-dispatched work after cancellation.
func (a *aggregator) abandonFrontier() {
	a.frontier = nil
	a.closeJobsIfNeeded()
}

func (a *aggregator) closeJobsIfNeeded() {
	if a.pending != 0 || len(a.frontier) != 0 || a.jobsClosed {
		return
	}

	close(a.jobs)
	a.jobsClosed = true
}

func (a *aggregator) onResult(result pageResult) {
	a.pending--

	if a.frontier != nil {
		for _, link := range result.internalLinks {
			a.enqueue(link)
		}
	}

	a.pendingResults[result.job.seq] = result
	a.flushCommitted()

	a.dispatch()
	a.closeJobsIfNeeded()
}

// flushCommitted settles results in discovery-sequence order, so the record
// list and the progress log are deterministic for a given site regardless of
// worker count.
func (a *aggregator) flushCommitted() {
	for {
		result, ok := a.pendingResults[a.nextCommit]
		if !ok {
			return
		}

		delete(a.pendingResults, a.nextCommit)
		a.nextCommit++
		a.settled++

		if result.ok {
			a.records = append(a.records, result.record)
		}

		queued := int(a.nextSeq) - a.settled
		fmt.Fprintf(a.progress, "[%4d] %s | internal: %d | external: %d | queue: %d | visited: %d\n",
			a.settled, result.job.url, len(result.internalLinks), result.externalCount, queued, a.settled)
	}
}
