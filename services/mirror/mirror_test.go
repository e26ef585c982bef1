package mirror_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fixit/services/mirror"
)

// scriptedSource emits the snapshots it is fed and fails when told to.
type scriptedSource struct {
	snapshots chan []string
	fail      chan error
	attempts  atomic.Int32
}

func newScriptedSource() *scriptedSource {
	return &scriptedSource{snapshots: make(chan []string, 10), fail: make(chan error, 10)}
}

func (s *scriptedSource) Watch(ctx context.Context, emit func([]string)) error {
	s.attempts.Add(1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-s.fail:
			return err
		case snap := <-s.snapshots:
			emit(snap)
		}
	}
}

var _ = Describe("Mirror", func() {
	var (
		src    *scriptedSource
		m      *mirror.Mirror[string]
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		src = newScriptedSource()
		m = mirror.New[string]("test", src, 20*time.Millisecond, nil)
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)
	})

	It("is empty and not ready before the first snapshot", func() {
		m.Start(ctx)
		Expect(m.Snapshot()).To(BeEmpty())
		Consistently(m.Ready(), 30*time.Millisecond).ShouldNot(BeClosed())
	})

	It("replaces the whole snapshot on each notification", func() {
		m.Start(ctx)
		src.snapshots <- []string{"a", "b"}
		Eventually(m.Ready()).Should(BeClosed())
		Eventually(m.Snapshot).Should(Equal([]string{"a", "b"}))

		src.snapshots <- []string{"c"}
		Eventually(m.Snapshot).Should(Equal([]string{"c"}))
	})

	It("hands out copies", func() {
		m.Start(ctx)
		src.snapshots <- []string{"a"}
		Eventually(m.Snapshot).Should(HaveLen(1))

		snap := m.Snapshot()
		snap[0] = "mutated"
		Expect(m.Snapshot()).To(Equal([]string{"a"}))
	})

	It("keeps the stale snapshot and resubscribes after a failure", func() {
		m.Start(ctx)
		src.snapshots <- []string{"a"}
		Eventually(m.Snapshot).Should(Equal([]string{"a"}))

		src.fail <- errors.New("change stream closed")
		Expect(m.Snapshot()).To(Equal([]string{"a"}))
		Eventually(src.attempts.Load).Should(BeNumerically(">=", 2))

		src.snapshots <- []string{"a", "b"}
		Eventually(m.Snapshot).Should(Equal([]string{"a", "b"}))
	})

	It("seeds new observers with the current snapshot", func() {
		m.Start(ctx)
		src.snapshots <- []string{"a"}
		Expect(m.WaitReady(ctx)).To(Succeed())

		ch := m.Subscribe(ctx)
		Eventually(ch).Should(Receive(Equal([]string{"a"})))

		src.snapshots <- []string{"a", "b"}
		Eventually(ch).Should(Receive(Equal([]string{"a", "b"})))
	})

	It("closes observer channels when their context ends", func() {
		m.Start(ctx)
		subCtx, subCancel := context.WithCancel(ctx)
		ch := m.Subscribe(subCtx)
		subCancel()
		Eventually(ch).Should(BeClosed())
	})

	It("stops when its context is cancelled", func() {
		done := make(chan struct{})
		go func() {
			m.Run(ctx)
			close(done)
		}()
		cancel()
		Eventually(done).Should(BeClosed())
	})
})
