package pdfverify

import (
	"runtime"
	"sync"
)

// FileResult pairs a file with its verification result. Err is set when the
// file could not be read, in which case Result is nil.
type FileResult struct {
	Path   string
	Result *Result
	Err    error
}

// VerifyFiles verifies every file with at most workers goroutines. Results are
// returned in the order of paths. workers <= 0 means one per CPU.
func VerifyFiles(paths []string, workers int, opts ...Option) []FileResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]FileResult, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers && w < len(paths); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result, err := New(paths[i], opts...).Verify()
				results[i] = FileResult{Path: paths[i], Result: result, Err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
