package zireael

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Engine is the single public handle of spec §4.J / §6.1. Every
// engine_* operation in the external interface is a method here; the
// engine owns no threads of its own except the platform backend's
// internal wake/SIGWINCH goroutine (spec §5: "Single-threaded cooperative
// from the engine's perspective").
type Engine struct {
	cfg  Config
	plat platform
	caps Caps

	prev, next, staging *Framebuffer
	resources           *resourceTable

	queue  *eventQueue
	parser *inputParser

	diffState *TerminalState

	metrics *metricsCounters
	debug   *debugTrace
	log     *logSink

	// postMu guards concurrent post_user_event callers; teardown is a
	// separate atomic flag so a post can be rejected without taking the
	// lock once torn down (spec §5: "an atomic 'teardown' flag rejects new
	// post_user_event calls").
	postMu      sync.Mutex
	teardown    atomic.Bool
	inFlightWG  sync.WaitGroup
	userPayload *arena

	startupResizeSent bool

	// nextTickMs is the deadline for the next injected TICK event, lazily
	// initialized on first PollEvents call so CreateEngine doesn't need to
	// know the platform's clock epoch in advance.
	nextTickMs uint64
}

// CreateEngine validates cfg, detects the platform, and returns a ready
// Engine with a startup RESIZE already enqueued (spec §4.J "create").
func CreateEngine(cfg Config, logger *logSink) (*Engine, error) {
	plat, err := newPlatformForOS(cfg)
	if err != nil {
		return nil, err
	}
	caps := plat.getCaps()
	if err := cfg.validate(caps); err != nil {
		plat.close()
		return nil, err
	}

	cols, rows := plat.getSize()
	if cols == 0 || rows == 0 {
		cols, rows = cfg.Cols, cfg.Rows
	}

	if logger == nil {
		logger = defaultLogSink()
	}

	e := &Engine{
		cfg:         cfg,
		plat:        plat,
		caps:        caps,
		prev:        newFramebuffer(cols, rows),
		next:        newFramebuffer(cols, rows),
		staging:     newFramebuffer(cols, rows),
		resources:   newResourceTable(cfg.DrawlistLimits.MaxStringsBytes+cfg.DrawlistLimits.MaxBlobsBytes, cfg.DrawlistLimits.MaxStringsCount+cfg.DrawlistLimits.MaxBlobsCount),
		queue:       newEventQueue(cfg.EventQueueCapacity),
		parser:      newInputParser(cfg.PasteBufferBytes),
		diffState:   &TerminalState{ColorMode: clampColorMode(cfg.ColorMode, caps.ColorMode)},
		metrics:     &metricsCounters{},
		debug:       newDebugTrace(1024),
		log:         logger,
		userPayload: newArena(cfg.UserEventQueueDepth * 256),
	}

	if err := e.plat.enterRaw(); err != nil {
		plat.close()
		return nil, err
	}
	e.plat.writeOutput(rawModeEnterSequence(caps, cfg))

	e.queue.push(Event{Kind: EventResize, TimeMs: e.plat.nowMs(), Cols: int32(cols), Rows: int32(rows)})
	e.startupResizeSent = true

	return e, nil
}

// Destroy leaves raw mode, releases platform resources, and drains any
// in-flight post_user_event calls before returning (spec §4.I "destroy",
// §5 "the destructor drains any in-flight posts before releasing memory").
// leaveRaw and the debug export flush have no data dependency on each
// other, so they run concurrently via errgroup and their errors (if any)
// are joined rather than silently dropped.
func (e *Engine) Destroy() error {
	e.teardown.Store(true)
	e.inFlightWG.Wait()

	var g errgroup.Group
	g.Go(func() error {
		e.plat.writeOutput(rawModeLeaveSequence(e.caps, e.cfg))
		return e.plat.close()
	})
	g.Go(func() error {
		e.debug.export(make([]byte, 0)) // best-effort final flush; discard payload
		return nil
	})
	return g.Wait()
}

// tickIntervalMs returns the spacing between injected TICK events, or 0
// if ticks are disabled (spec §5 "TICK events are injected on a
// target_fps cadence").
func tickIntervalMs(cfg Config) uint64 {
	if cfg.TargetFPS <= 0 {
		return 0
	}
	return uint64(1000 / cfg.TargetFPS)
}

// PollEvents drains available input, parses it, injects a tick if due,
// and packs whatever is queued into out (spec §4.J "poll_events", §5
// "if a tick is due, immediately-available input is drained first").
func (e *Engine) PollEvents(timeoutMs int, out []byte) (int, error) {
	interval := tickIntervalMs(e.cfg)

	if e.queue.empty() {
		waitMs := timeoutMs
		if interval > 0 {
			now := e.plat.nowMs()
			if e.nextTickMs == 0 {
				e.nextTickMs = now + interval
			}
			remaining := int64(0)
			if e.nextTickMs > now {
				remaining = int64(e.nextTickMs - now)
			}
			if waitMs < 0 || int64(waitMs) > remaining {
				waitMs = int(remaining)
			}
		}
		ready, err := e.plat.wait(waitMs)
		if err != nil {
			return -1, err
		}
		if ready == 1 {
			if perr := e.drainInput(); perr != nil {
				return -1, perr
			}
		}
	}

	if interval > 0 {
		now := e.plat.nowMs()
		if e.nextTickMs == 0 {
			e.nextTickMs = now + interval
		}
		if now >= e.nextTickMs {
			e.queue.push(Event{Kind: EventTick, TimeMs: now})
			e.nextTickMs = now + interval
		}
	}

	batch := e.collectBatch()
	n, truncated := packEventBatch(batch, out)
	e.metrics.eventsPolled.Add(uint64(len(batch)))
	if truncated {
		e.metrics.eventsTruncated.Add(1)
	}
	return n, nil
}

// drainInput reads and parses whatever input is currently available,
// queuing every decoded event before reporting a parser error (spec §8
// scenario 8: poll_events surfaces ZR_ERR_LIMIT for an over-cap paste
// while leaving the engine usable for subsequent polls).
func (e *Engine) drainInput() error {
	var buf [4096]byte
	for {
		n, err := e.plat.readInput(buf[:])
		if err != nil || n <= 0 {
			break
		}
		nowMs := e.plat.nowMs()
		events, perr := e.parser.Feed(buf[:n], nowMs, ParserCaps{
			BracketedPaste: e.cfg.EnableBracketedPaste && e.caps.SupportsBracketedPaste,
			FocusEvents:    e.cfg.EnableFocusEvents && e.caps.SupportsFocusEvents,
		})
		for _, ev := range events {
			e.queue.push(ev)
		}
		if perr != nil {
			e.log.warnf("input parser error")
			return perr
		}
		if n < len(buf) {
			break
		}
	}
	if cols, rows := e.plat.getSize(); cols > 0 && rows > 0 {
		e.queue.push(Event{Kind: EventResize, TimeMs: e.plat.nowMs(), Cols: int32(cols), Rows: int32(rows)})
	}
	return nil
}

func (e *Engine) collectBatch() []Event {
	var batch []Event
	for !e.queue.empty() {
		ev, ok := e.queue.pop()
		if !ok {
			break
		}
		batch = append(batch, ev)
	}
	return batch
}

// SubmitDrawlist validates and executes bytes into the staging
// framebuffer, then atomically swaps it into next on success (spec §4.J
// "submit_drawlist"). On any failure, next is left untouched.
func (e *Engine) SubmitDrawlist(bytes []byte) error {
	e.staging.copyFrom(e.next)
	if err := executeDrawlist(bytes, e.cfg.DrawlistLimits, e.staging, e.resources); err != nil {
		e.metrics.drawlistsRejected.Add(1)
		return err
	}
	e.staging.rehashAll()
	e.next, e.staging = e.staging, e.next
	e.metrics.drawlistsAccepted.Add(1)
	return nil
}

// Present diffs prev against next, writes the result in a single call,
// and swaps prev<-next only on success (spec §4.J "present").
func (e *Engine) Present() error {
	cfg := DiffConfig{
		SupportsSyncUpdate:   e.cfg.EnableSyncUpdate && e.caps.SupportsSyncUpdate,
		SupportsScrollRegion: e.cfg.EnableScrollRegion && e.caps.SupportsScrollRegion,
		OutMaxBytesPerFrame:  e.cfg.OutMaxBytesPerFrame,
		SGRAttrsSupported:    e.cfg.SGRAttrsSupported & e.caps.SGRAttrsSupported,
		ColorMode:            clampColorMode(e.cfg.ColorMode, e.caps.ColorMode),
	}
	// renderDiff updates diffState as it formats. When the frame is not
	// written, the pre-render state is restored and cursor/style/mode
	// validity is dropped so the next attempt re-emits them.
	saved := *e.diffState
	fail := func(stats FrameStats, err error) error {
		*e.diffState = saved
		e.diffState.CursorValid = false
		e.diffState.StyleValid = false
		e.diffState.CursorModeValid = false
		e.metrics.recordPresent(stats, false)
		return err
	}
	out, stats, err := renderDiff(e.prev, e.next, e.diffState, cfg)
	if err != nil {
		return fail(stats, err)
	}
	if len(out) > 0 {
		if e.cfg.WaitForOutputDrain {
			if werr := e.plat.waitOutputWritable(-1); werr != nil {
				return fail(stats, werr)
			}
		}
		if werr := e.plat.writeOutput(out); werr != nil {
			return fail(stats, werr)
		}
	}
	e.prev.copyFrom(e.next)
	e.metrics.recordPresent(stats, true)
	return nil
}

// GetMetrics copies the live counters into out using prefix-copy
// semantics (spec §4.J "get_metrics").
func (e *Engine) GetMetrics(out []byte) int {
	return e.metrics.snapshot().writePrefix(out)
}

func (e *Engine) GetCaps() Caps { return e.caps }

// SetLogSink swaps the engine's structured log sink at runtime; passing
// nil restores the no-op sink (spec §9: "no globals for log sink").
func (e *Engine) SetLogSink(l *logSink) {
	if l == nil {
		l = defaultLogSink()
	}
	e.log = l
}

// SetConfig rejects platform sub-config changes and otherwise applies the
// new config atomically (spec §4.J "set_config").
func (e *Engine) SetConfig(next Config) error {
	if e.cfg.platformSubConfigChanged(next) {
		return newErr(ErrUnsupported, "platform sub-config cannot be changed at runtime")
	}
	if err := next.validate(e.caps); err != nil {
		return err
	}
	e.cfg = next
	return nil
}

// PostUserEvent copies payload into an engine-owned region and enqueues a
// USER record; callable from any thread (spec §4.G "post_user_event").
func (e *Engine) PostUserEvent(tag uint32, payload []byte) error {
	if e.teardown.Load() {
		return newErr(ErrInvalidArgument, "engine is tearing down")
	}
	e.inFlightWG.Add(1)
	defer e.inFlightWG.Done()

	e.postMu.Lock()
	defer e.postMu.Unlock()

	owned, err := e.userPayload.alloc(payload)
	if err != nil {
		return err
	}
	if !e.queue.push(Event{Kind: EventUser, TimeMs: e.plat.nowMs(), UserTag: tag, UserPayload: owned}) {
		return newErr(ErrLimit, "event queue full")
	}
	e.plat.wake()
	return nil
}
