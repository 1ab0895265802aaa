package absm

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// ParameterKind identifies the value type a Parameter holds.
type ParameterKind int

const (
	// ParameterFloat holds a float32, read as a blend weight.
	ParameterFloat ParameterKind = iota

	// ParameterRule holds a bool, read by transition conditions.
	ParameterRule

	// ParameterIndex holds a uint32, read by index blend nodes.
	ParameterIndex

	// ParameterSamplingPoint holds a 2-D point, read by blend space nodes.
	ParameterSamplingPoint
)

func (k ParameterKind) String() string {
	switch k {
	case ParameterFloat:
		return "float"
	case ParameterRule:
		return "rule"
	case ParameterIndex:
		return "index"
	case ParameterSamplingPoint:
		return "sampling point"
	default:
		return fmt.Sprintf("ParameterKind(%d)", int(k))
	}
}

// Parameter is a typed value consulted by conditions and blend nodes.
// The kind is fixed when the value is built; use Float, Rule, Index or SamplingPoint.
type Parameter struct {
	kind  ParameterKind
	float float32
	rule  bool
	index uint32
	point mgl32.Vec2
}

// Float builds a weight parameter.
func Float(v float32) Parameter {
	return Parameter{kind: ParameterFloat, float: v}
}

// Rule builds a boolean parameter.
func Rule(v bool) Parameter {
	return Parameter{kind: ParameterRule, rule: v}
}

// Index builds an index parameter.
func Index(v uint32) Parameter {
	return Parameter{kind: ParameterIndex, index: v}
}

// SamplingPoint builds a blend space sampling point parameter.
func SamplingPoint(x, y float32) Parameter {
	return Parameter{kind: ParameterSamplingPoint, point: mgl32.Vec2{x, y}}
}

// Kind returns the parameter's value type.
func (p Parameter) Kind() ParameterKind {
	return p.kind
}

// Weight returns the float value; ok is false for other kinds.
func (p Parameter) Weight() (float32, bool) {
	return p.float, p.kind == ParameterFloat
}

// Rule returns the bool value; ok is false for other kinds.
func (p Parameter) Rule() (bool, bool) {
	return p.rule, p.kind == ParameterRule
}

// Index returns the index value; ok is false for other kinds.
func (p Parameter) Index() (uint32, bool) {
	return p.index, p.kind == ParameterIndex
}

// SamplingPoint returns the point value; ok is false for other kinds.
func (p Parameter) SamplingPoint() (mgl32.Vec2, bool) {
	return p.point, p.kind == ParameterSamplingPoint
}

func (p Parameter) String() string {
	switch p.kind {
	case ParameterFloat:
		return fmt.Sprintf("float(%g)", p.float)
	case ParameterRule:
		return fmt.Sprintf("rule(%t)", p.rule)
	case ParameterIndex:
		return fmt.Sprintf("index(%d)", p.index)
	case ParameterSamplingPoint:
		return fmt.Sprintf("point(%g, %g)", p.point[0], p.point[1])
	default:
		return p.kind.String()
	}
}

// ParameterContainer maps names to parameters. Reads never fail loudly: a missing
// name or a kind mismatch reports ok == false.
type ParameterContainer struct {
	values map[string]Parameter
}

// NewParameterContainer creates an empty container.
//
// Returns:
//   - *ParameterContainer: the newly created container
func NewParameterContainer() *ParameterContainer {
	return &ParameterContainer{values: make(map[string]Parameter)}
}

// Set inserts or overwrites a parameter.
//
// Parameters:
//   - name: the parameter name
//   - p: the value to store
func (c *ParameterContainer) Set(name string, p Parameter) {
	if c.values == nil {
		c.values = make(map[string]Parameter)
	}
	c.values[name] = p
}

// Get returns the named parameter.
//
// Parameters:
//   - name: the parameter name
//
// Returns:
//   - Parameter: the stored value
//   - bool: false if the name is not set
func (c *ParameterContainer) Get(name string) (Parameter, bool) {
	if c == nil {
		return Parameter{}, false
	}
	p, ok := c.values[name]
	return p, ok
}

// GetRule returns the named bool parameter.
//
// Parameters:
//   - name: the parameter name
//
// Returns:
//   - bool: the value, false when absent
//   - bool: false if the name is missing or not a rule
func (c *ParameterContainer) GetRule(name string) (bool, bool) {
	p, ok := c.Get(name)
	if !ok {
		return false, false
	}
	return p.Rule()
}

// GetWeight returns the named float parameter.
//
// Parameters:
//   - name: the parameter name
//
// Returns:
//   - float32: the value, 0 when absent
//   - bool: false if the name is missing or not a float
func (c *ParameterContainer) GetWeight(name string) (float32, bool) {
	p, ok := c.Get(name)
	if !ok {
		return 0, false
	}
	return p.Weight()
}

// GetIndex returns the named index parameter.
//
// Parameters:
//   - name: the parameter name
//
// Returns:
//   - uint32: the value, 0 when absent
//   - bool: false if the name is missing or not an index
func (c *ParameterContainer) GetIndex(name string) (uint32, bool) {
	p, ok := c.Get(name)
	if !ok {
		return 0, false
	}
	return p.Index()
}

// GetSamplingPoint returns the named sampling point parameter.
//
// Parameters:
//   - name: the parameter name
//
// Returns:
//   - mgl32.Vec2: the value, the origin when absent
//   - bool: false if the name is missing or not a sampling point
func (c *ParameterContainer) GetSamplingPoint(name string) (mgl32.Vec2, bool) {
	p, ok := c.Get(name)
	if !ok {
		return mgl32.Vec2{}, false
	}
	return p.SamplingPoint()
}

// Remove deletes a parameter.
//
// Parameters:
//   - name: the parameter name
//
// Returns:
//   - bool: false if the name was not set
func (c *ParameterContainer) Remove(name string) bool {
	if c == nil {
		return false
	}
	if _, ok := c.values[name]; !ok {
		return false
	}
	delete(c.values, name)
	return true
}

// Len returns the number of parameters.
func (c *ParameterContainer) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// Names returns the parameter names in sorted order.
func (c *ParameterContainer) Names() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.values))
}
