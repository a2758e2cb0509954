package analyze

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WorkItem is one input file queued for analysis. Seq fixes its place in
// the output.
type WorkItem struct {
	Seq  int
	Path string
}

// WorkResult is the report, or the error, for one queued file.
type WorkResult struct {
	Seq    int
	Path   string
	Report *Report
	Err    error
}

// ParallelAnalyze fans the queued files out to a fixed number of workers,
// each running AnalyzeFile. Results come back as files finish, so Seq is
// not monotonic on the returned channel; pair it with OrderedCollect to
// restore input order. workers <= 0 means one worker per CPU. The channel
// is closed once items is drained and every worker has returned.
func (a *Analyzer) ParallelAnalyze(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			a.analyzeQueued(items, out)
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

func (a *Analyzer) analyzeQueued(items <-chan WorkItem, out chan<- WorkResult) {
	for item := range items {
		start := time.Now()
		rep, err := a.AnalyzeFile(item.Path)
		if err != nil {
			a.logger.Debug("analysis failed",
				zap.String("path", item.Path),
				zap.Error(err))
		}
		a.logger.Debug("analyzed queued file",
			zap.Int("seq", item.Seq),
			zap.String("path", item.Path),
			zap.Duration("elapsed", time.Since(start)))
		out <- WorkResult{Seq: item.Seq, Path: item.Path, Report: rep, Err: err}
	}
}

// Paths queues paths as work items numbered from zero.
func Paths(paths []string) <-chan WorkItem {
	ch := make(chan WorkItem, len(paths))
	for i, p := range paths {
		ch <- WorkItem{Seq: i, Path: p}
	}
	close(ch)
	return ch
}

// OrderedCollect hands results to fn in Seq order, holding back any result
// that finishes ahead of an earlier file. If fn fails, the remaining results
// are discarded so the workers can exit, and fn's error is returned.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	held := make(map[int]WorkResult)
	want := 0

	for r := range results {
		held[r.Seq] = r

		for next, ok := held[want]; ok; next, ok = held[want] {
			delete(held, want)
			want++
			if err := fn(next); err != nil {
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
