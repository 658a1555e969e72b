// File: pkg/scan/reader.go
package scan

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ProgressFunc is called once per processed file, from a single goroutine.
type ProgressFunc func(done, total int)

// Reader loads file contents with a bounded worker pool.
type Reader struct {
	fs         afero.Fs
	maxWorkers int
	onProgress ProgressFunc
	logger     *zap.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithWorkers sets the pool size; values <= 0 mean runtime.NumCPU().
func WithWorkers(n int) ReaderOption {
	return func(r *Reader) { r.maxWorkers = n }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) ReaderOption {
	return func(r *Reader) { r.onProgress = fn }
}

// NewReader creates a Reader over fs.
func NewReader(fs afero.Fs, logger *zap.Logger, opts ...ReaderOption) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reader{fs: fs, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxWorkers <= 0 {
		r.maxWorkers = runtime.NumCPU()
	}
	return r
}

type readOutcome struct {
	record FileRecord
	err    error
}

// Read fills in Content for every file record. Files that fail to read, look binary or are
// not UTF-8 are skipped with a warning. The returned files are sorted by RelativePath.
func (r *Reader) Read(ctx context.Context, records []FileRecord) *ReadResult {
	jobs := make(chan FileRecord, len(records))
	results := make(chan readOutcome, len(records))
	var wg sync.WaitGroup

	workers := r.maxWorkers
	if workers > len(records) {
		workers = len(records)
	}

	r.logger.Debug("Initializing worker pool", zap.Int("workers", workers), zap.Int("files", len(records)))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go r.worker(ctx, w, jobs, results, &wg)
	}

	for _, rec := range records {
		if rec.IsDirectory {
			continue
		}
		jobs <- rec
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	total := 0
	for _, rec := range records {
		if !rec.IsDirectory {
			total++
		}
	}

	out := &ReadResult{}
	done := 0
	for res := range results {
		done++
		if res.err != nil {
			out.Skipped = append(out.Skipped, res.record.RelativePath)
			out.Warnings = multierr.Append(out.Warnings, res.err)
		} else {
			out.Files = append(out.Files, res.record)
		}
		if r.onProgress != nil {
			r.onProgress(done, total)
		}
	}

	sortRecords(out.Files)
	r.logger.Debug("All files processed",
		zap.Int("read", len(out.Files)),
		zap.Int("skipped", len(out.Skipped)))
	return out
}

func (r *Reader) worker(ctx context.Context, id int, jobs <-chan FileRecord, results chan<- readOutcome, wg *sync.WaitGroup) {
	defer wg.Done()
	logger := r.logger.With(zap.Int("workerID", id))

	for rec := range jobs {
		if err := ctx.Err(); err != nil {
			results <- readOutcome{record: rec, err: fmt.Errorf("%s: %w", rec.RelativePath, err)}
			continue
		}

		content, err := r.readText(rec.AbsolutePath)
		if err != nil {
			logger.Warn("Skipping file", zap.String("filePath", rec.AbsolutePath), zap.Error(err))
			results <- readOutcome{record: rec, err: fmt.Errorf("%s: %w", rec.RelativePath, err)}
			continue
		}

		rec.Content = content
		results <- readOutcome{record: rec}
	}
}

func (r *Reader) readText(path string) (string, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := checkText(data); err != nil {
		return "", err
	}
	return string(data), nil
}
