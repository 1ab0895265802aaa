package absm

import "fmt"

func (m *machine) Validate() error {
	var err error
	m.states.Each(func(_ StateHandle, s *State) bool {
		if !m.nodes.IsValid(s.root) {
			te := nodeError("validate state", m.nodes, s.root)
			te.Ref = fmt.Sprintf("%s root %s", s.name, s.root)
			err = te
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	m.transitions.Each(func(_ TransitionHandle, t *Transition) bool {
		switch {
		case !m.states.IsValid(t.source):
			err = configError("validate transition", fmt.Sprintf("%s source %s", t.name, t.source), ErrDanglingHandle)
		case !m.states.IsValid(t.dest):
			err = configError("validate transition", fmt.Sprintf("%s dest %s", t.name, t.dest), ErrDanglingHandle)
		default:
			if verr := t.validate(); verr != nil {
				err = configError("validate transition", t.name, verr)
			}
		}
		return err == nil
	})
	if err != nil {
		return err
	}

	// depth-first walk; grey nodes are on the current path
	const (
		white = iota
		grey
		black
	)
	color := make(map[NodeHandle]int, m.nodes.Len())
	var visit func(h NodeHandle) error
	visit = func(h NodeHandle) error {
		switch color[h] {
		case grey:
			return configError("validate node", h.String(), ErrCycle)
		case black:
			return nil
		}
		node, ok := m.nodes.Get(h)
		if !ok {
			return nodeError("validate node", m.nodes, h)
		}
		color[h] = grey
		for _, child := range node.Children() {
			if err := visit(child); err != nil {
				return err
			}
		}
		color[h] = black
		return nil
	}
	for _, h := range m.nodes.Handles() {
		if err := visit(h); err != nil {
			return err
		}
	}
	return nil
}
