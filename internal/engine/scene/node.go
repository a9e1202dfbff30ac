package scene

import (
	"github.com/Faultbox/arscene/pkg/experience"
	"github.com/Faultbox/arscene/pkg/math"
)

// LoadState tracks the asset behind a node.
type LoadState uint8

// Load states. Failed is a steady state; the node simply has no content.
const (
	Loading LoadState = iota
	Ready
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Node is the container for one asset.
type Node struct {
	Index    int
	Asset    experience.Asset
	Position math.Vec3 // base position from the layout, never changed afterwards

	Float       float32 // idle vertical offset
	Yaw         float32 // base yaw in [0, 2π), changed only by explicit rotation
	IdleYaw     float32 // idle oscillation added to Yaw
	Scale       float32
	TargetScale float32

	Content *Content
	State   LoadState
}

func newNode(index int, asset experience.Asset, pos math.Vec3) *Node {
	return &Node{
		Index:       index,
		Asset:       asset,
		Position:    pos,
		Scale:       1,
		TargetScale: 1,
	}
}

// WorldPosition is the rendered position including the idle float.
func (n *Node) WorldPosition() math.Vec3 {
	return n.Position.Add(math.Vec3{Y: n.Float})
}

// WorldMatrix returns the node transform for this frame.
func (n *Node) WorldMatrix() math.Mat4 {
	return math.TRS(n.WorldPosition(), n.Yaw+n.IdleYaw, n.Scale)
}

// attach sets content once. Later calls are ignored.
func (n *Node) attach(c *Content) bool {
	if n.Content != nil || c == nil {
		return false
	}
	n.Content = c
	n.State = Ready
	return true
}
