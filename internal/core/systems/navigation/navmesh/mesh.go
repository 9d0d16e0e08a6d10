// Package navmesh is an in-memory triangle nav mesh implementing
// navigation.Service. Triangles sharing an edge are neighbours; each connected
// set of triangles forms a group.
package navmesh

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/systems/navigation"
)

var (
	ErrEmptyZone          = errors.New("navmesh: zone has no triangles")
	ErrIndexOutOfRange    = errors.New("navmesh: vertex index out of range")
	ErrDegenerateTriangle = errors.New("navmesh: degenerate triangle")
)

var _ navigation.Service = (*Mesh)(nil)

// Triangle indexes three vertices of a zone.
type Triangle struct {
	V       [3]int
	Blocked bool
}

type node struct {
	id         navigation.NodeID
	group      navigation.GroupID
	vertices   [3]mgl64.Vec3
	walkable   bool
	neighbours []navigation.NodeID
}

func (n *node) closest(p mgl64.Vec3) mgl64.Vec3 {
	return closestPointOnTriangle(p, n.vertices[0], n.vertices[1], n.vertices[2])
}

type zone struct {
	nodes  []node
	groups [][]navigation.NodeID
}

type Mesh struct {
	mu    sync.RWMutex
	zones map[string]*zone
}

func New() *Mesh {
	return &Mesh{zones: make(map[string]*zone)}
}

// AddZone builds and installs a zone, replacing any zone with the same name.
func (m *Mesh) AddZone(name string, vertices []mgl64.Vec3, triangles []Triangle) error {
	z, err := buildZone(vertices, triangles)
	if err != nil {
		return fmt.Errorf("zone %q: %w", name, err)
	}
	m.mu.Lock()
	m.zones[name] = z
	m.mu.Unlock()
	return nil
}

func (m *Mesh) RemoveZone(name string) {
	m.mu.Lock()
	delete(m.zones, name)
	m.mu.Unlock()
}

// Zones returns the loaded zone names, sorted.
func (m *Mesh) Zones() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.zones))
	for name := range m.zones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Mesh) HasZone(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.zones[name]
	return ok
}

// GetGroup returns the group of the triangle closest to p.
func (m *Mesh) GetGroup(name string, p mgl64.Vec3) (navigation.GroupID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.zones[name]
	if !ok {
		return 0, false
	}
	best, bestDist := -1, math.Inf(1)
	for i := range z.nodes {
		if d := distanceSq(p, z.nodes[i].closest(p)); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return 0, false
	}
	return z.nodes[best].group, true
}

func (m *Mesh) GetClosestNode(p mgl64.Vec3, name string, group navigation.GroupID, walkableOnly bool) (navigation.NodeID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.zones[name]
	if !ok || int(group) < 0 || int(group) >= len(z.groups) {
		return 0, false
	}
	var (
		best     navigation.NodeID
		found    bool
		bestDist = math.Inf(1)
	)
	for _, id := range z.groups[group] {
		n := &z.nodes[id]
		if walkableOnly && !n.walkable {
			continue
		}
		if d := distanceSq(p, n.closest(p)); d < bestDist {
			best, bestDist, found = id, d, true
		}
	}
	return best, found
}

// ClampStep walks outward from node over neighbouring walkable triangles near
// the step and returns the walkable point closest to end. A blocked seed is
// only returned when no walkable neighbour can be reached from it.
func (m *Mesh) ClampStep(start, end mgl64.Vec3, seed navigation.NodeID, name string, group navigation.GroupID) (mgl64.Vec3, navigation.NodeID) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, ok := m.zones[name]
	if !ok || int(seed) < 0 || int(seed) >= len(z.nodes) || z.nodes[seed].group != group {
		return end, seed
	}

	reach := end.Sub(start).Len()
	reachSq := reach*reach + 1e-6

	bestNode := seed
	bestPoint := z.nodes[seed].closest(end)
	bestDist := distanceSq(end, bestPoint)
	if !z.nodes[seed].walkable {
		bestDist = math.Inf(1)
	}

	visited := map[navigation.NodeID]struct{}{seed: {}}
	frontier := []navigation.NodeID{seed}
	for len(frontier) > 0 && bestDist > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		for _, nb := range z.nodes[current].neighbours {
			if _, seen := visited[nb]; seen {
				continue
			}
			visited[nb] = struct{}{}
			if !z.nodes[nb].walkable {
				continue
			}
			point := z.nodes[nb].closest(end)
			d := distanceSq(end, point)
			if d > reachSq && d >= bestDist {
				continue
			}
			if d < bestDist {
				bestNode, bestPoint, bestDist = nb, point, d
			}
			frontier = append(frontier, nb)
		}
	}
	return bestPoint, bestNode
}

func buildZone(vertices []mgl64.Vec3, triangles []Triangle) (*zone, error) {
	if len(triangles) == 0 {
		return nil, ErrEmptyZone
	}
	z := &zone{nodes: make([]node, len(triangles))}
	edges := make(map[[2]int][]navigation.NodeID)

	for i, tri := range triangles {
		n := node{id: navigation.NodeID(i), walkable: !tri.Blocked}
		for k, idx := range tri.V {
			if idx < 0 || idx >= len(vertices) {
				return nil, fmt.Errorf("triangle %d: %w (%d)", i, ErrIndexOutOfRange, idx)
			}
			n.vertices[k] = vertices[idx]
		}
		if n.vertices[1].Sub(n.vertices[0]).Cross(n.vertices[2].Sub(n.vertices[0])).Len() < 1e-12 {
			return nil, fmt.Errorf("triangle %d: %w", i, ErrDegenerateTriangle)
		}
		z.nodes[i] = n
		for k := 0; k < 3; k++ {
			key := edgeKey(tri.V[k], tri.V[(k+1)%3])
			edges[key] = append(edges[key], n.id)
		}
	}

	for _, shared := range edges {
		for _, a := range shared {
			for _, b := range shared {
				if a != b {
					z.nodes[a].neighbours = appendUnique(z.nodes[a].neighbours, b)
				}
			}
		}
	}
	for i := range z.nodes {
		sort.Slice(z.nodes[i].neighbours, func(a, b int) bool {
			return z.nodes[i].neighbours[a] < z.nodes[i].neighbours[b]
		})
	}

	assigned := make([]bool, len(z.nodes))
	for i := range z.nodes {
		if assigned[i] {
			continue
		}
		group := navigation.GroupID(len(z.groups))
		var members []navigation.NodeID
		stack := []navigation.NodeID{navigation.NodeID(i)}
		assigned[i] = true
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			z.nodes[id].group = group
			members = append(members, id)
			for _, nb := range z.nodes[id].neighbours {
				if !assigned[nb] {
					assigned[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		sort.Slice(members, func(a, b int) bool { return members[a] < members[b] })
		z.groups = append(z.groups, members)
	}
	return z, nil
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func appendUnique(ids []navigation.NodeID, id navigation.NodeID) []navigation.NodeID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// Surface reports the floor directly below or above p: the height of the
// highest triangle whose footprint contains p's XZ position and whether that
// triangle is walkable. On shared edges a walkable triangle wins.
func (m *Mesh) Surface(name string, p mgl64.Vec3) (height float64, walkable, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z, found := m.zones[name]
	if !found {
		return 0, false, false
	}
	for i := range z.nodes {
		n := &z.nodes[i]
		y, inside := heightAt(n.vertices, p.X(), p.Z())
		if inside && (!ok || y > height || (y == height && n.walkable && !walkable)) {
			height, walkable, ok = y, n.walkable, true
		}
	}
	return height, walkable, ok
}
