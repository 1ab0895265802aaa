package absm

import (
	"math"

	"github.com/Carmen-Shannon/oxy-absm/engine/animation"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// barycentricTolerance lets samples on a shared triangle edge count as inside.
const barycentricTolerance = 1e-5

// BlendSpacePoint is one child of a BlendSpace node, placed at Position in the space.
type BlendSpacePoint struct {
	Position mgl32.Vec2
	Node     NodeHandle
}

// Triangle holds the indices of three blend space points.
type Triangle [3]int

// PointWeight is the share one blend space point contributes to a sample.
type PointWeight struct {
	Point  int
	Weight float32
}

// NewBlendSpace builds a node that blends the points of a 2-D space around the sampling
// point stored in the named parameter. Points are triangulated; a sample inside a
// triangle blends its three corners by barycentric weight, and a sample outside every
// triangle blends the two ends of the nearest edge. The space spans [0, 1] on both axes
// with a snap step of 0.1 until changed.
//
// Parameters:
//   - samplingParameter: the name of the sampling point parameter
//   - points: the points of the space
//
// Returns:
//   - PoseNode: the node
func NewBlendSpace(samplingParameter string, points ...BlendSpacePoint) PoseNode {
	n := PoseNode{
		kind:              NodeBlendSpace,
		samplingParameter: samplingParameter,
		maxValues:         mgl32.Vec2{1, 1},
		snapStep:          mgl32.Vec2{0.1, 0.1},
		pose:              animation.NewPose(0),
	}
	n.SetPoints(points...)
	return n
}

// Points returns the points of a BlendSpace node.
func (n *PoseNode) Points() []BlendSpacePoint {
	return n.spacePoints
}

// SetPoints replaces the points of a BlendSpace node and triangulates them again.
//
// Parameters:
//   - points: the new points
func (n *PoseNode) SetPoints(points ...BlendSpacePoint) {
	if n.kind != NodeBlendSpace {
		return
	}
	n.spacePoints = points
	n.triangles = triangulate(points)
	n.spaceWeights = nil
}

// AddPoint appends a point to a BlendSpace node and triangulates again.
//
// Parameters:
//   - point: the point to add
//
// Returns:
//   - int: the point's index, or -1 if the node is not a BlendSpace
func (n *PoseNode) AddPoint(point BlendSpacePoint) int {
	if n.kind != NodeBlendSpace {
		return -1
	}
	n.SetPoints(append(n.spacePoints, point)...)
	return len(n.spacePoints) - 1
}

// Triangles returns the current triangulation of a BlendSpace node.
func (n *PoseNode) Triangles() []Triangle {
	return n.triangles
}

// SamplingParameter returns the parameter name a BlendSpace node reads.
func (n *PoseNode) SamplingParameter() string {
	return n.samplingParameter
}

// SetSamplingParameter changes the parameter a BlendSpace node reads.
func (n *PoseNode) SetSamplingParameter(name string) {
	if n.kind == NodeBlendSpace {
		n.samplingParameter = name
	}
}

// Bounds returns the minimum and maximum corner of a BlendSpace node.
func (n *PoseNode) Bounds() (mgl32.Vec2, mgl32.Vec2) {
	return n.minValues, n.maxValues
}

// SetBounds sets the corners SnapPoints clamps to. A maximum below the minimum is
// raised to it per axis.
//
// Parameters:
//   - minValues: the lower corner
//   - maxValues: the upper corner
func (n *PoseNode) SetBounds(minValues, maxValues mgl32.Vec2) {
	if n.kind != NodeBlendSpace {
		return
	}
	n.minValues = minValues
	n.maxValues = mgl32.Vec2{
		math32.Max(maxValues[0], minValues[0]),
		math32.Max(maxValues[1], minValues[1]),
	}
}

// SnapStep returns the grid step SnapPoints rounds to.
func (n *PoseNode) SnapStep() mgl32.Vec2 {
	return n.snapStep
}

// SetSnapStep sets the grid step SnapPoints rounds to. A step <= 0 leaves that axis unsnapped.
func (n *PoseNode) SetSnapStep(step mgl32.Vec2) {
	if n.kind == NodeBlendSpace {
		n.snapStep = step
	}
}

// SnapPoints rounds every point to the snap grid, clamps it to the bounds and
// triangulates again.
func (n *PoseNode) SnapPoints() {
	if n.kind != NodeBlendSpace {
		return
	}
	points := make([]BlendSpacePoint, len(n.spacePoints))
	for i, p := range n.spacePoints {
		for axis := range 2 {
			v := p.Position[axis]
			if step := n.snapStep[axis]; step > 0 {
				v = math32.Round(v/step) * step
			}
			p.Position[axis] = math32.Max(n.minValues[axis], math32.Min(v, n.maxValues[axis]))
		}
		points[i] = p
	}
	n.SetPoints(points...)
}

// Weights returns how much each point contributes at a sampling point. Points with no
// share are omitted.
//
// Parameters:
//   - sample: the sampling point
//
// Returns:
//   - []PointWeight: the contributing points, empty if the space has no points
func (n *PoseNode) Weights(sample mgl32.Vec2) []PointWeight {
	points := n.spacePoints
	switch len(points) {
	case 0:
		return nil
	case 1:
		return []PointWeight{{Point: 0, Weight: 1}}
	}

	for _, tri := range n.triangles {
		a, b, c := points[tri[0]].Position, points[tri[1]].Position, points[tri[2]].Position
		u, v, w, ok := barycentric(sample, a, b, c)
		if !ok || u < -barycentricTolerance || v < -barycentricTolerance || w < -barycentricTolerance {
			continue
		}
		return compactWeights(
			PointWeight{Point: tri[0], Weight: u},
			PointWeight{Point: tri[1], Weight: v},
			PointWeight{Point: tri[2], Weight: w},
		)
	}
	return n.nearestEdgeWeights(sample)
}

// nearestEdgeWeights projects the sample onto the closest triangle edge, or onto the
// closest segment between any two points when there are no triangles.
func (n *PoseNode) nearestEdgeWeights(sample mgl32.Vec2) []PointWeight {
	var edges [][2]int
	if len(n.triangles) > 0 {
		for _, tri := range n.triangles {
			edges = append(edges, [2]int{tri[0], tri[1]}, [2]int{tri[1], tri[2]}, [2]int{tri[2], tri[0]})
		}
	} else {
		for i := range n.spacePoints {
			for j := i + 1; j < len(n.spacePoints); j++ {
				edges = append(edges, [2]int{i, j})
			}
		}
	}

	best := float32(math32.MaxFloat32)
	var weights []PointWeight
	for _, edge := range edges {
		a, b := n.spacePoints[edge[0]].Position, n.spacePoints[edge[1]].Position
		ab := b.Sub(a)
		lenSq := ab.Dot(ab)
		if lenSq == 0 {
			continue
		}
		t := math32.Max(0, math32.Min(1, sample.Sub(a).Dot(ab)/lenSq))
		dist := sample.Sub(a.Add(ab.Mul(t))).Len()
		if dist < best {
			best = dist
			weights = compactWeights(
				PointWeight{Point: edge[0], Weight: 1 - t},
				PointWeight{Point: edge[1], Weight: t},
			)
		}
	}
	if weights == nil {
		// every point coincides
		return []PointWeight{{Point: 0, Weight: 1}}
	}
	return weights
}

func compactWeights(in ...PointWeight) []PointWeight {
	out := make([]PointWeight, 0, len(in))
	for _, w := range in {
		if w.Weight > 0 {
			out = append(out, w)
		}
	}
	return out
}

// barycentric returns the coordinates of p in triangle abc; ok is false for a
// degenerate triangle.
func barycentric(p, a, b, c mgl32.Vec2) (u, v, w float32, ok bool) {
	v0, v1, v2 := b.Sub(a), c.Sub(a), p.Sub(a)
	d00, d01, d11 := v0.Dot(v0), v0.Dot(v1), v1.Dot(v1)
	d20, d21 := v2.Dot(v0), v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 0, 0, 0, false
	}
	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	return 1 - v - w, v, w, true
}

// triangulate builds a Delaunay triangulation of the points with the Bowyer-Watson
// algorithm. Coincident points after the first are skipped, and fewer than three
// distinct non-collinear points produce no triangles.
func triangulate(points []BlendSpacePoint) []Triangle {
	n := len(points)
	if n < 3 {
		return nil
	}

	pts := make([]mgl64.Vec2, n, n+3)
	lo := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for i, p := range points {
		pts[i] = mgl64.Vec2{float64(p.Position[0]), float64(p.Position[1])}
		lo = mgl64.Vec2{math.Min(lo[0], pts[i][0]), math.Min(lo[1], pts[i][1])}
		hi = mgl64.Vec2{math.Max(hi[0], pts[i][0]), math.Max(hi[1], pts[i][1])}
	}
	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span == 0 {
		return nil
	}
	mid := lo.Add(hi).Mul(0.5)
	pts = append(pts,
		mid.Add(mgl64.Vec2{-20 * span, -span}),
		mid.Add(mgl64.Vec2{20 * span, -span}),
		mid.Add(mgl64.Vec2{0, 20 * span}),
	)

	// counter-clockwise super triangle enclosing every point
	tris := []Triangle{{n, n + 1, n + 2}}
	for i := range n {
		if duplicateOf(pts, i) {
			continue
		}
		p := pts[i]

		edges := make(map[[2]int]bool)
		kept := tris[:0:0]
		for _, t := range tris {
			if !inCircumcircle(pts[t[0]], pts[t[1]], pts[t[2]], p) {
				kept = append(kept, t)
				continue
			}
			for k := range 3 {
				edges[[2]int{t[k], t[(k+1)%3]}] = true
			}
		}
		// cavity boundary edges are the ones whose reverse is not also in the cavity
		for _, t := range tris {
			if !inCircumcircle(pts[t[0]], pts[t[1]], pts[t[2]], p) {
				continue
			}
			for k := range 3 {
				a, b := t[k], t[(k+1)%3]
				if edges[[2]int{b, a}] {
					continue
				}
				kept = append(kept, Triangle{a, b, i})
			}
		}
		tris = kept
	}

	out := make([]Triangle, 0, len(tris))
	for _, t := range tris {
		if t[0] >= n || t[1] >= n || t[2] >= n {
			continue
		}
		if math.Abs(orient(pts[t[0]], pts[t[1]], pts[t[2]])) < 1e-12 {
			continue
		}
		out = append(out, t)
	}
	return out
}

func duplicateOf(pts []mgl64.Vec2, i int) bool {
	for j := range i {
		if pts[j] == pts[i] {
			return true
		}
	}
	return false
}

// orient is twice the signed area of abc, positive when counter-clockwise.
func orient(a, b, c mgl64.Vec2) float64 {
	ab, ac := b.Sub(a), c.Sub(a)
	return ab[0]*ac[1] - ab[1]*ac[0]
}

// inCircumcircle reports whether d lies strictly inside the circumcircle of the
// counter-clockwise triangle abc.
func inCircumcircle(a, b, c, d mgl64.Vec2) bool {
	ad, bd, cd := a.Sub(d), b.Sub(d), c.Sub(d)
	det := ad.Dot(ad)*(bd[0]*cd[1]-cd[0]*bd[1]) -
		bd.Dot(bd)*(ad[0]*cd[1]-cd[0]*ad[1]) +
		cd.Dot(cd)*(ad[0]*bd[1]-bd[0]*ad[1])
	return det > 0
}
