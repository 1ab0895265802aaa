package animation

import (
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-absm/engine/model"
	"github.com/Carmen-Shannon/oxy-absm/engine/pool"
	"github.com/chewxy/math32"
)

// Playback is the per-clip playback state owned by a Player.
// It tracks playback time, speed, looping and the most recently sampled pose.
type Playback struct {
	clip    *model.AnimationClip
	time    float32
	speed   float32
	loop    bool
	enabled bool
	ended   bool
	dirty   bool
	pose    *Pose
	fired   []model.AnimationSignal
}

// Player is the CPU animation source: it owns clip playbacks, advances their time
// and samples their poses. A Player implements Source and SignalSource.
type Player interface {
	Source
	SignalSource

	// AddClip starts a playback of the given clip at time zero.
	//
	// Parameters:
	//   - clip: the clip to play (must not be nil)
	//   - loop: whether the playback wraps around at the end of the clip
	//
	// Returns:
	//   - Handle: the playback handle
	AddClip(clip *model.AnimationClip, loop bool) Handle

	// RemoveClip stops and frees a playback. Its handle becomes stale.
	//
	// Parameters:
	//   - h: the playback handle
	//
	// Returns:
	//   - bool: false if the handle was not live
	RemoveClip(h Handle) bool

	// Find returns the first playback whose clip has the given name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - Handle: the playback handle
	//   - bool: false if no playback matches
	Find(name string) (Handle, bool)

	// Count returns the number of live playbacks.
	Count() int

	// Clip returns the clip a playback plays, or nil for a stale handle.
	Clip(h Handle) *model.AnimationClip

	// Time returns a playback's current time in seconds.
	//
	// Parameters:
	//   - h: the playback handle
	//
	// Returns:
	//   - float32: the playback time
	//   - bool: false if the handle was not live
	Time(h Handle) (float32, bool)

	// SetTime moves a playback to the given time, clamped to the clip.
	//
	// Parameters:
	//   - h: the playback handle
	//   - t: the time in seconds
	SetTime(h Handle, t float32)

	// SetSpeed sets a playback's speed multiplier. Negative speeds play backwards.
	//
	// Parameters:
	//   - h: the playback handle
	//   - speed: the speed multiplier
	SetSpeed(h Handle, speed float32)

	// SetLoop sets whether a playback wraps around at the end of its clip.
	//
	// Parameters:
	//   - h: the playback handle
	//   - loop: true to loop
	SetLoop(h Handle, loop bool)

	// SetEnabled pauses or resumes a playback. Disabled playbacks keep their pose.
	//
	// Parameters:
	//   - h: the playback handle
	//   - enabled: false to pause
	SetEnabled(h Handle, enabled bool)

	// Rewind moves a playback back to its start and clears its ended flag.
	//
	// Parameters:
	//   - h: the playback handle
	Rewind(h Handle)
}

type player struct {
	mu        *sync.Mutex
	playbacks *pool.Pool[Playback]
	skeleton  *model.Skeleton
	speed     float32
}

var _ Player = &player{}

// NewPlayer creates a new Player with the provided options.
//
// Parameters:
//   - options: functional options for player configuration
//
// Returns:
//   - Player: the newly created player
func NewPlayer(options ...PlayerBuilderOption) Player {
	p := &player{
		mu:        &sync.Mutex{},
		playbacks: pool.NewPool[Playback](),
		speed:     1,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *player) AddClip(clip *model.AnimationClip, loop bool) Handle {
	if clip == nil {
		panic("animation: AddClip requires a non-nil clip")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playbacks.Spawn(newPlayback(clip, p.speed, loop))
}

func newPlayback(clip *model.AnimationClip, speed float32, loop bool) Playback {
	pb := Playback{
		clip:    clip,
		speed:   speed,
		loop:    loop,
		enabled: true,
		dirty:   true,
		pose:    NewPose(len(clip.Channels)),
	}
	if speed < 0 {
		pb.time = clip.Duration
	}
	return pb
}

func (p *player) RemoveClip(h Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.playbacks.Free(h)
	return ok
}

func (p *player) Find(name string) (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var found Handle
	p.playbacks.Each(func(h Handle, pb *Playback) bool {
		if pb.clip.Name == name {
			found = h
			return false
		}
		return true
	})
	return found, !found.IsNone()
}

func (p *player) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playbacks.Len()
}

func (p *player) Clip(h Handle) *model.AnimationClip {
	p.mu.Lock()
	defer p.mu.Unlock()
	pb, ok := p.playbacks.Get(h)
	if !ok {
		return nil
	}
	return pb.clip
}

func (p *player) Time(h Handle) (float32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pb, ok := p.playbacks.Get(h)
	if !ok {
		return 0, false
	}
	return pb.time, true
}

func (p *player) SetTime(h Handle, t float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pb, ok := p.playbacks.Get(h); ok {
		pb.time = math32.Max(0, math32.Min(t, pb.clip.Duration))
		pb.ended = false
		pb.dirty = true
	}
}

func (p *player) SetSpeed(h Handle, speed float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pb, ok := p.playbacks.Get(h); ok {
		pb.speed = speed
	}
}

func (p *player) SetLoop(h Handle, loop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pb, ok := p.playbacks.Get(h); ok {
		pb.loop = loop
	}
}

func (p *player) SetEnabled(h Handle, enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pb, ok := p.playbacks.Get(h); ok {
		pb.enabled = enabled
	}
}

func (p *player) Rewind(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pb, ok := p.playbacks.Get(h); ok {
		pb.time = 0
		if pb.speed < 0 {
			pb.time = pb.clip.Duration
		}
		pb.ended = false
		pb.dirty = true
	}
}

func (p *player) Ended(h Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pb, ok := p.playbacks.Get(h)
	return ok && pb.ended
}

func (p *player) Pose(h Handle) (*Pose, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pb, ok := p.playbacks.Get(h)
	if !ok {
		return nil, false
	}
	if pb.dirty {
		SampleClip(pb.clip, pb.time, p.skeleton, pb.pose)
		pb.dirty = false
	}
	return pb.pose, true
}

func (p *player) Signals(h Handle) []model.AnimationSignal {
	p.mu.Lock()
	defer p.mu.Unlock()
	pb, ok := p.playbacks.Get(h)
	if !ok {
		return nil
	}
	return slices.Clone(pb.fired)
}

func (p *player) Advance(dt float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playbacks.Each(func(_ Handle, pb *Playback) bool {
		pb.fired = pb.fired[:0]
		if !pb.enabled || dt == 0 {
			return true
		}
		from := pb.time
		pb.advance(dt)
		pb.collectSignals(from, dt*pb.speed)
		pb.dirty = true
		return true
	})
}

// collectSignals records the enabled signals between from and from+delta. Looping
// playbacks also catch signals passed after wrapping around the clip.
func (pb *Playback) collectSignals(from, delta float32) {
	to := from + delta
	duration := pb.clip.Duration
	for _, sig := range pb.clip.Signals {
		if sig.Disabled {
			continue
		}
		hit := passes(sig.Time, from, to)
		if !hit && pb.loop && duration > 0 {
			hit = passes(sig.Time+duration, from, to) || passes(sig.Time-duration, from, to)
		}
		if hit {
			pb.fired = append(pb.fired, sig)
		}
	}
}

// passes reports whether moving from one time to another crosses t. The start is
// exclusive and the end inclusive in the direction of travel.
func passes(t, from, to float32) bool {
	if to >= from {
		return from < t && t <= to
	}
	return to <= t && t < from
}

func (pb *Playback) advance(dt float32) {
	duration := pb.clip.Duration
	pb.time += dt * pb.speed
	if duration <= 0 {
		pb.time = 0
		pb.ended = !pb.loop
		return
	}

	if pb.loop {
		pb.time = math32.Mod(pb.time, duration)
		if pb.time < 0 {
			pb.time += duration
		}
		return
	}

	switch {
	case pb.time >= duration:
		pb.time = duration
		pb.ended = pb.speed > 0
	case pb.time <= 0:
		pb.time = 0
		pb.ended = pb.speed < 0
	default:
		pb.ended = false
	}
}
