package absm

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
)

// ConditionKind identifies a Condition node.
type ConditionKind int

const (
	// ConditionParameter reads a rule parameter by name.
	ConditionParameter ConditionKind = iota

	// ConditionAnd is true when both operands are true.
	ConditionAnd

	// ConditionOr is true when either operand is true.
	ConditionOr

	// ConditionXor is true when exactly one operand is true.
	ConditionXor

	// ConditionNot negates its operand.
	ConditionNot

	// ConditionAnimationEnded is true once a non-looping playback has finished.
	ConditionAnimationEnded
)

// Condition is a boolean expression tree over rule parameters and playback state.
// The zero Condition reads the parameter named "" and is therefore always false.
type Condition struct {
	kind      ConditionKind
	name      string
	animation animation.Handle
	operands  []Condition
}

// Param builds a leaf reading the named rule parameter. Missing or mistyped
// parameters read false.
func Param(name string) Condition {
	return Condition{kind: ConditionParameter, name: name}
}

// And builds a conjunction.
func And(lhs, rhs Condition) Condition {
	return Condition{kind: ConditionAnd, operands: []Condition{lhs, rhs}}
}

// Or builds a disjunction.
func Or(lhs, rhs Condition) Condition {
	return Condition{kind: ConditionOr, operands: []Condition{lhs, rhs}}
}

// Xor builds an exclusive disjunction.
func Xor(lhs, rhs Condition) Condition {
	return Condition{kind: ConditionXor, operands: []Condition{lhs, rhs}}
}

// Not builds a negation.
func Not(c Condition) Condition {
	return Condition{kind: ConditionNot, operands: []Condition{c}}
}

// AnimationEnded builds a leaf that is true once the referenced playback has ended.
func AnimationEnded(h animation.Handle) Condition {
	return Condition{kind: ConditionAnimationEnded, animation: h}
}

// Kind returns the node kind.
func (c Condition) Kind() ConditionKind {
	return c.kind
}

// ParameterName returns the rule name of a ConditionParameter leaf, or "" for other kinds.
func (c Condition) ParameterName() string {
	return c.name
}

// Evaluate computes the condition against the current parameters and animation source.
//
// Parameters:
//   - params: the parameter container, may be nil
//   - source: the animation source, may be nil (AnimationEnded then reads false)
//
// Returns:
//   - bool: the condition's value
func (c Condition) Evaluate(params *ParameterContainer, source animation.Source) bool {
	switch c.kind {
	case ConditionParameter:
		v, _ := params.GetRule(c.name)
		return v
	case ConditionAnd:
		return c.operands[0].Evaluate(params, source) && c.operands[1].Evaluate(params, source)
	case ConditionOr:
		return c.operands[0].Evaluate(params, source) || c.operands[1].Evaluate(params, source)
	case ConditionXor:
		return c.operands[0].Evaluate(params, source) != c.operands[1].Evaluate(params, source)
	case ConditionNot:
		return !c.operands[0].Evaluate(params, source)
	case ConditionAnimationEnded:
		return source != nil && source.Ended(c.animation)
	default:
		return false
	}
}

func (c Condition) String() string {
	switch c.kind {
	case ConditionParameter:
		return c.name
	case ConditionAnd:
		return fmt.Sprintf("(%s && %s)", c.operands[0], c.operands[1])
	case ConditionOr:
		return fmt.Sprintf("(%s || %s)", c.operands[0], c.operands[1])
	case ConditionXor:
		return fmt.Sprintf("(%s ^ %s)", c.operands[0], c.operands[1])
	case ConditionNot:
		return fmt.Sprintf("!%s", c.operands[0])
	case ConditionAnimationEnded:
		return fmt.Sprintf("ended(%s)", c.animation)
	default:
		return fmt.Sprintf("ConditionKind(%d)", int(c.kind))
	}
}
