package playback

import (
	"context"
	"sync"
	"time"

	"github.com/Belphemur/jellyplay/internal/config"
	"github.com/Belphemur/jellyplay/internal/metrics"
	"github.com/Belphemur/jellyplay/internal/models"
)

// DefaultProgressDebounce is the coalescing window of progress reports.
const DefaultProgressDebounce = 700 * time.Millisecond

const (
	reportTimeout = 10 * time.Second
	queueSize     = 64
)

// ReportSender delivers playback reports to the server.
type ReportSender interface {
	ReportPlaybackStart(ctx context.Context, info models.PlaybackProgressInfo) error
	ReportPlaybackProgress(ctx context.Context, info models.PlaybackProgressInfo) error
	ReportPlaybackStopped(ctx context.Context, info models.PlaybackStopInfo) error
}

// Reporter sends playback telemetry without ever blocking or failing playback.
//
// Reports are delivered in call order by a single worker. Progress reports
// are debounced: a report is only sent once no newer one arrived for the
// debounce window, and earlier pending reports are dropped, not queued.
// Failures are logged and counted.
type Reporter struct {
	sender   ReportSender
	debounce time.Duration

	mu      sync.Mutex
	pending *models.PlaybackProgressInfo
	timer   *time.Timer
	seq     uint64 // number of the scheduled flush
	closed  bool
	queue   chan report

	// timers tracks scheduled flushes so Close can wait for them.
	timers sync.WaitGroup
	done   chan struct{}
}

type report struct {
	kind string
	send func(ctx context.Context) error
}

// NewReporter starts a reporter. A debounce of zero or less uses DefaultProgressDebounce.
func NewReporter(sender ReportSender, debounce time.Duration) *Reporter {
	if debounce <= 0 {
		debounce = DefaultProgressDebounce
	}
	r := &Reporter{
		sender:   sender,
		debounce: debounce,
		queue:    make(chan report, queueSize),
		done:     make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Reporter) run() {
	defer close(r.done)
	logger := config.GetLogger()

	for rep := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		err := rep.send(ctx)
		cancel()

		if err != nil {
			metrics.ProgressReportsTotal.WithLabelValues(rep.kind, "error").Inc()
			logger.Warn().Err(err).Str("kind", rep.kind).Msg("Failed to send playback report")
			continue
		}
		metrics.ProgressReportsTotal.WithLabelValues(rep.kind, "success").Inc()
	}
}

// enqueue must be called with r.mu held. It never blocks: a report that
// does not fit in the queue is dropped.
func (r *Reporter) enqueue(rep report) {
	if r.closed {
		return
	}
	select {
	case r.queue <- rep:
	default:
		metrics.ProgressReportsTotal.WithLabelValues(rep.kind, "dropped").Inc()
		logger := config.GetLogger()
		logger.Warn().Str("kind", rep.kind).Int("queue_size", queueSize).Msg("Report queue full, dropping playback report")
	}
}

// Start reports that playback of an item began.
func (r *Reporter) Start(info models.PlaybackProgressInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.enqueue(report{kind: "start", send: func(ctx context.Context) error {
		return r.sender.ReportPlaybackStart(ctx, info)
	}})
}

// Progress schedules a progress report, replacing any report still pending.
func (r *Reporter) Progress(info models.PlaybackProgressInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	if r.pending != nil {
		metrics.ProgressReportsCoalescedTotal.Inc()
	}
	r.pending = &info

	r.stopTimer()
	seq := r.seq
	r.timers.Add(1)
	r.timer = time.AfterFunc(r.debounce, func() { r.flush(seq) })
}

// stopTimer invalidates the scheduled flush. r.mu must be held.
func (r *Reporter) stopTimer() {
	r.seq++
	if r.timer != nil && r.timer.Stop() {
		r.timers.Done()
	}
	r.timer = nil
}

// flush sends the pending report if seq is still the scheduled flush. A timer
// that fired while a newer report was being scheduled finds a newer seq.
func (r *Reporter) flush(seq uint64) {
	defer r.timers.Done()

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq != r.seq {
		return
	}
	info := r.pending
	r.pending = nil
	if info == nil {
		return
	}
	r.enqueue(report{kind: "progress", send: func(ctx context.Context) error {
		return r.sender.ReportPlaybackProgress(ctx, *info)
	}})
}

// dropPending cancels the pending progress report. r.mu must be held.
func (r *Reporter) dropPending() {
	r.stopTimer()
	r.pending = nil
}

// Stop reports that playback ended. A pending progress report is dropped:
// the stop report carries the final position.
func (r *Reporter) Stop(info models.PlaybackStopInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropPending()
	r.enqueue(report{kind: "stop", send: func(ctx context.Context) error {
		return r.sender.ReportPlaybackStopped(ctx, info)
	}})
}

// Close drops any pending progress report, delivers the reports already
// queued and stops the worker. Reports made after Close are ignored.
func (r *Reporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.dropPending()
	r.closed = true
	r.mu.Unlock()

	// A flush that already fired sees closed and returns without enqueueing.
	r.timers.Wait()

	r.mu.Lock()
	close(r.queue)
	r.mu.Unlock()
	<-r.done
}
