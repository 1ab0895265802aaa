package model

import "sync"

// model is the implementation of the Model interface.
type model struct {
	mu         *sync.RWMutex
	name       string
	skeleton   *Skeleton
	animations []*AnimationClip
}

// Model defines the interface for an animated asset: a bone hierarchy and the
// animation clips authored against it. Models are shared between every Animator
// that plays them and are read-only once built, apart from AddAnimation.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Skinned reports whether this model carries a skeleton.
	//
	// Returns:
	//   - bool: true if the model has bone data
	Skinned() bool

	// Skeleton retrieves the bone hierarchy for this model.
	// Returns nil for models without bones.
	//
	// Returns:
	//   - *Skeleton: the skeleton or nil
	Skeleton() *Skeleton

	// Animations retrieves all animation clips bundled with this model.
	//
	// Returns:
	//   - []*AnimationClip: the animation clips
	Animations() []*AnimationClip

	// Animation looks up an animation clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - *AnimationClip: the clip, or nil if not found
	Animation(name string) *AnimationClip

	// AddAnimation appends an animation clip to the model.
	//
	// Parameters:
	//   - clip: the clip to add
	AddAnimation(clip *AnimationClip)

	// AnimationCount returns the number of available animation clips.
	//
	// Returns:
	//   - int: the animation count
	AnimationCount() int

	// AnimationNames returns the names of all animation clips.
	//
	// Returns:
	//   - []string: the animation clip names
	AnimationNames() []string

	// GetAnimationIndex returns the index of an animation by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the animation clip name to search for
	//
	// Returns:
	//   - int: the animation index, or -1 if not found
	GetAnimationIndex(name string) int
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		mu: &sync.RWMutex{},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Skinned() bool {
	return m.skeleton != nil && len(m.skeleton.Bones) > 0
}

func (m *model) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *model) Animations() []*AnimationClip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*AnimationClip(nil), m.animations...)
}

func (m *model) Animation(name string) *AnimationClip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, anim := range m.animations {
		if anim.Name == name {
			return anim
		}
	}
	return nil
}

func (m *model) AddAnimation(clip *AnimationClip) {
	if clip == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.animations = append(m.animations, clip)
}

func (m *model) AnimationCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.animations)
}

func (m *model) AnimationNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.animations))
	for i, anim := range m.animations {
		names[i] = anim.Name
	}
	return names
}

func (m *model) GetAnimationIndex(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, anim := range m.animations {
		if anim.Name == name {
			return i
		}
	}
	return -1
}
