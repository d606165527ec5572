package serializer

import (
	"reflect"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// ScanTask is the handle of a registration scan. Wait is the join point.
type ScanTask struct {
	done chan struct{}
	err  error
}

// Wait blocks until the scan has finished and returns the joined registration errors
func (t *ScanTask) Wait() error {
	<-t.done
	return t.err
}

// Done is closed when the scan has finished
func (t *ScanTask) Done() <-chan struct{} {
	return t.done
}

// Scan registers the types of the given sample values up front, so the first
// request using them pays no registration cost. Samples must be Serializable
// structs (or pointers to them). With async the scan runs in the background and
// the returned task completes later, otherwise it has completed on return.
func (r *TypeRegistry) Scan(async bool, samples ...any) *ScanTask {
	task := &ScanTask{done: make(chan struct{})}

	run := func() {
		start := time.Now()
		p := pool.New().WithErrors().WithMaxGoroutines(runtime.GOMAXPROCS(0))
		for _, sample := range samples {
			t := reflect.TypeOf(sample)
			if t == nil {
				continue
			}
			p.Go(func() error {
				_, err := r.TypeIDOf(t)
				return err
			})
		}
		task.err = p.Wait()
		Logger.Infof("type scan of %d types finished in %s", len(samples), time.Since(start))
		close(task.done)
	}

	if async {
		go run()
	} else {
		run()
	}
	return task
}
