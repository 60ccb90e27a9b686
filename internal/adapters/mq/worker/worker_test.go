package worker_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	queue "github.com/TissotPA/Match/internal/adapters/mq/queue"
	worker "github.com/TissotPA/Match/internal/adapters/mq/worker"
	model "github.com/TissotPA/Match/internal/domain/model"
	"github.com/TissotPA/Match/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// recorder collects handled versions.
type recorder struct {
	mu       sync.Mutex
	versions []uint64
	fail     map[uint64]bool
}

func (r *recorder) Handle(_ context.Context, c model.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[c.Version] {
		return errors.New("boom")
	}
	r.versions = append(r.versions, c.Version)
	return nil
}

func (r *recorder) seen() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]uint64(nil), r.versions...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestWorker(t *testing.T) {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
	ctx := context.Background()

	convey.Convey("Given a single worker with two handlers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		a := &recorder{fail: map[uint64]bool{2: true}}
		b := &recorder{}
		w := worker.NewInMemoryWorker(q, []worker.Handler{a, b}, worker.WithName("test"))
		go w.Run(ctx)

		convey.Convey("When changes are queued and the queue is closed", func() {
			for v := uint64(1); v <= 3; v++ {
				q.Enqueue(ctx, model.Change{Version: v})
			}
			_ = q.Close()

			sctx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			err := w.Shutdown(sctx)

			convey.Convey("Then every change reaches every handler despite failures", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(a.seen(), convey.ShouldResemble, []uint64{1, 3})
				convey.So(b.seen(), convey.ShouldResemble, []uint64{1, 2, 3})
			})
		})
	})

	convey.Convey("Given a worker whose queue never closes", t, func() {
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, nil)
		runCtx, stop := context.WithCancel(ctx)
		go w.Run(runCtx)

		convey.Convey("When shutdown times out", func() {
			sctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			err := w.Shutdown(sctx)
			stop()

			convey.Convey("Then an error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	_ = logger.Init()
	_ = logger.SetLevelString("error")
	ctx := context.Background()

	convey.Convey("Given a pool of four workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		rec := &recorder{}
		var calls sync.WaitGroup
		calls.Add(50)
		counted := worker.HandlerFunc(func(context.Context, model.Change) error {
			calls.Done()
			return nil
		})
		p := worker.NewPool(4, q, rec, counted)
		p.Start(ctx)

		convey.Convey("Then it reports its size", func() {
			convey.So(p.Size(), convey.ShouldEqual, 4)
			_ = p.Shutdown(ctx)
		})

		convey.Convey("When fifty changes are published and the pool shuts down", func() {
			for v := uint64(1); v <= 50; v++ {
				q.Enqueue(ctx, model.Change{Version: v})
			}
			calls.Wait()
			err := p.Shutdown(ctx)

			convey.Convey("Then each change was handled exactly once", func() {
				convey.So(err, convey.ShouldBeNil)
				got := rec.seen()
				convey.So(len(got), convey.ShouldEqual, 50)
				for i, v := range got {
					convey.So(v, convey.ShouldEqual, uint64(i+1))
				}
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool with a non-positive worker count", t, func() {
		p := worker.NewPool(0, queue.NewInMemoryQueue())

		convey.Convey("Then at least one worker is created", func() {
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
