package absm

import (
	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/Carmen-Shannon/oxy-absm/engine/pool"
)

// StateHandle references a State owned by a Machine.
type StateHandle = pool.Handle[State]

// State is a named entry point into the pose graph.
type State struct {
	name string
	root NodeHandle
}

// NewState builds a state whose pose is produced by the given root node.
//
// Parameters:
//   - name: the state name
//   - root: the root pose node
//
// Returns:
//   - State: the state, ready to add to a Machine
func NewState(name string, root NodeHandle) State {
	return State{name: name, root: root}
}

// Name returns the state name.
func (s *State) Name() string {
	return s.name
}

// SetName renames the state.
func (s *State) SetName(name string) {
	s.name = name
}

// Root returns the pose node producing the state's pose.
func (s *State) Root() NodeHandle {
	return s.root
}

// SetRoot points the state at another pose node.
func (s *State) SetRoot(root NodeHandle) {
	s.root = root
}

// Pose returns the cached pose of the state's root node from its latest evaluation.
//
// Parameters:
//   - nodes: the machine's node pool
//
// Returns:
//   - *animation.Pose: the root's pose
//   - bool: false if the root handle is not live
func (s *State) Pose(nodes *pool.Pool[PoseNode]) (*animation.Pose, bool) {
	node, ok := nodes.Get(s.root)
	if !ok {
		return nil, false
	}
	return node.Pose(), true
}
