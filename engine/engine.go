package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-absm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-absm/engine/scene"
)

// engine implements the Engine interface.
// Coordinates the tick loop and the quit watcher.
type engine struct {
	mu *sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilingEnabled bool
	logger           *slog.Logger

	engineTickRate time.Duration
	fixedStep      bool
	tickCallback   func(deltaTime float32)
	errorCallback  func(err error)

	scenes map[int]scene.Scene
}

// Engine is the main entry point for the engine.
// It runs a fixed-rate loop that updates every active scene and reports the outcome.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// TickRate returns the current interval between ticks.
	TickRate() time.Duration

	// SetTickCallback registers the function called each engine tick after the scenes update.
	// Use this for game logic that drives machine parameters.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetErrorCallback registers the function that receives a failed tick's error.
	//
	// Parameters:
	//   - callback: the error handler
	SetErrorCallback(callback func(err error))

	// AddScene registers a scene at the given key.
	// Scenes are updated in ascending key order.
	//
	// Parameters:
	//   - key: the key determining update order (lower updates first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key.
	//
	// Parameters:
	//   - key: the key of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the key of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes by key.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Step runs a single tick: every active scene updates by dt in key order, then the
	// tick callback fires. Failing scenes do not stop later ones.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds
	//
	// Returns:
	//   - error: the joined errors of every failing scene
	Step(dt float32) error

	// Run starts the tick loop and blocks until Quit is called or ctx is done.
	// Run may only be called once.
	//
	// Parameters:
	//   - ctx: the context whose cancellation stops the engine
	//
	// Returns:
	//   - error: ctx's error if it stopped the engine, nil after Quit
	Run(ctx context.Context) error

	// Running reports whether Run is executing.
	Running() bool

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Close stops every registered scene's workers.
	Close()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.RWMutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		logger:          slog.New(slog.DiscardHandler),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	return e
}

func (e *engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("engine: Run called while already running")
	}
	defer e.running.Store(false)

	e.wg.Add(2)
	go e.handleEngine()
	go e.handleQuit(ctx)
	e.wg.Wait()

	return ctx.Err()
}

func (e *engine) Running() bool {
	return e.running.Load()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Listens for dynamic rate changes via tickRateChannel. Exits when the quit channel is closed.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("engine: tick goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	e.mu.RLock()
	rate := e.engineTickRate
	e.mu.RUnlock()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			if e.fixedStep {
				dt = float32(rate.Seconds())
			}

			err := e.Step(dt)
			if err != nil {
				e.logger.Error("engine: tick failed", "error", err)
				e.mu.RLock()
				cb := e.errorCallback
				e.mu.RUnlock()
				if cb != nil {
					cb(err)
				}
			}

			e.mu.RLock()
			profiling := e.profilingEnabled
			e.mu.RUnlock()
			if profiling {
				e.profiler.Tick(time.Since(now), err)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			rate = newRate
		}
	}
}

// handleQuit blocks until the quit channel is closed or ctx is done.
func (e *engine) handleQuit(ctx context.Context) {
	defer e.wg.Done()
	select {
	case <-e.quitChannel:
	case <-ctx.Done():
		e.signalQuit()
	}
}

func (e *engine) Step(dt float32) error {
	e.mu.RLock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	active := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	cb := e.tickCallback
	e.mu.RUnlock()

	var errs []error
	for _, s := range active {
		if err := s.Update(dt); err != nil {
			errs = append(errs, fmt.Errorf("scene %q: %w", s.Name(), err))
		}
	}

	if cb != nil {
		cb(dt)
	}
	return errors.Join(errs...)
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	e.engineTickRate = newRate
	e.mu.Unlock()

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	}
}

func (e *engine) TickRate() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.engineTickRate
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetErrorCallback(callback func(err error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errorCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func (e *engine) Close() {
	for _, s := range e.Scenes() {
		s.Close()
	}
}
