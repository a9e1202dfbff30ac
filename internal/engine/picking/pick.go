package picking

import (
	"github.com/Faultbox/arscene/internal/engine/scene"
)

// Hit describes the closest intersection found by Pick.
type Hit struct {
	Index    int     // owning node
	Part     int     // part within the node's content
	Distance float32 // ray parameter, world units for a normalized ray
}

// Pick casts r against every node that has content and returns the closest
// hit. Nodes still loading, or whose asset failed, are skipped.
func Pick(r Ray, nodes []*scene.Node) (Hit, bool) {
	best := Hit{Index: -1}
	found := false

	for _, n := range nodes {
		if n == nil || n.Content == nil {
			continue
		}
		world := n.WorldMatrix()
		local := r.Transform(world.Inverse())

		b := n.Content.Bounds
		if _, ok := local.IntersectAABB(AABB{Min: b.Min, Max: b.Max}); !ok {
			continue
		}

		for pi, part := range n.Content.Parts {
			if part.Mesh == nil {
				continue
			}
			pr := local.Transform(part.Transform.Inverse())
			for ti := 0; ti < part.Mesh.TriangleCount(); ti++ {
				a, b, c := part.Mesh.Triangle(ti)
				t, ok := pr.IntersectTriangle(a, b, c)
				if !ok || (found && t >= best.Distance) {
					continue
				}
				best = Hit{Index: n.Index, Part: pi, Distance: t}
				found = true
			}
		}
	}
	return best, found
}
