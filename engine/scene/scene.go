package scene

import (
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-absm/engine/game_object"
)

// Scene manages a registry of GameObjects and drives their Animators each tick.
// Animator updates are fanned out across a pool of compute workers; every object is
// independent, so the only synchronization point is the end-of-update barrier.
// Scenes can be hot-swapped via the Active flag.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether the engine updates this scene.
	Active() bool

	// SetActive sets whether the engine updates this scene.
	SetActive(active bool)

	// Count returns the number of GameObjects in the scene's registry.
	//
	// Returns:
	//   - int: count of registered GameObjects
	Count() int

	// Add registers a GameObject with the scene. Objects without an ID are assigned one.
	//
	// Parameters:
	//   - obj: the object to add (must not be nil)
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj game_object.GameObject) uint64

	// Get looks up a GameObject by ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil if not registered
	Get(id uint64) game_object.GameObject

	// Remove unregisters a GameObject by ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - bool: false if no object had that ID
	Remove(id uint64) bool

	// Objects returns the registered GameObjects ordered by ID.
	Objects() []game_object.GameObject

	// Clear removes every GameObject from the registry.
	Clear()

	// ComputeWorkers returns the number of workers used by Update.
	ComputeWorkers() int

	// Update advances every enabled GameObject by dt in parallel and waits for all
	// of them to finish. A failing object does not stop the others.
	//
	// Parameters:
	//   - dt: the elapsed time in seconds
	//
	// Returns:
	//   - error: the joined errors of every failing object, ordered by object ID
	Update(dt float32) error

	// Close stops the scene's compute workers. The scene must not be updated afterwards.
	Close()
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	registry map[uint64]game_object.GameObject
	nextID   uint64

	logger *slog.Logger

	// computePool runs Animator updates. Workers persist across ticks.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
	closeOnce      sync.Once
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		registry:       make(map[uint64]game_object.GameObject),
		nextID:         1,
		logger:         slog.New(slog.DiscardHandler),
		computeWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Queue size of 256 leaves headroom for large object counts before SubmitTask blocks.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	if obj == nil {
		panic("scene: cannot Add a nil GameObject")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(obj)
}

func (s *scene) addLocked(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	} else if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}
	s.registry[obj.ID()] = obj
	s.logger.Debug("scene: object added", "scene", s.name, "id", obj.ID(), "name", obj.Name())
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.registry[id]; !exists {
		return false
	}
	delete(s.registry, id)
	s.logger.Debug("scene: object removed", "scene", s.name, "id", id)
	return true
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

func (s *scene) sortedLocked() []game_object.GameObject {
	objs := make([]game_object.GameObject, 0, len(s.registry))
	for _, obj := range s.registry {
		objs = append(objs, obj)
	}
	slices.SortFunc(objs, func(a, b game_object.GameObject) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
	return objs
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]game_object.GameObject)
}

func (s *scene) ComputeWorkers() int {
	return s.computeWorkers
}

func (s *scene) Update(dt float32) error {
	s.mu.RLock()
	objs := s.sortedLocked()
	s.mu.RUnlock()

	errs := make([]error, len(objs))

	// A WaitGroup provides the per-tick barrier; pool.Wait() only returns once
	// workers go idle, which does not suit a fixed-rate loop.
	var wg sync.WaitGroup
	for i, obj := range objs {
		if !obj.Enabled() || obj.Animator() == nil {
			continue
		}
		wg.Add(1)
		s.computePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = obj.Update(dt)
				return nil, nil
			},
		})
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (s *scene) Close() {
	s.closeOnce.Do(func() {
		s.computePool.Stop()
	})
}
