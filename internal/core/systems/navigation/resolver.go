// Package navigation keeps positions on the walkable surface of a nav mesh.
//
// The mesh itself lives behind Service; the Resolver only caches the group and
// node it last used so that per-frame clamping is a cheap local step.
package navigation

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/observability/log"
)

type (
	GroupID int
	NodeID  int
)

// Service is the nav-mesh backend.
type Service interface {
	HasZone(zone string) bool
	GetGroup(zone string, p mgl64.Vec3) (GroupID, bool)
	GetClosestNode(p mgl64.Vec3, zone string, group GroupID, walkableOnly bool) (NodeID, bool)
	// ClampStep moves from start towards end staying on the surface, seeded by
	// node. It returns the clamped point and the node it lies on.
	ClampStep(start, end mgl64.Vec3, node NodeID, zone string, group GroupID) (mgl64.Vec3, NodeID)
}

// HeightFunc reports the current standing height of the avatar's viewpoint.
type HeightFunc func() float64

// Cache is the resolver's back-reference into the mesh topology.
type Cache struct {
	Group    GroupID
	HasGroup bool
	Node     NodeID
	HasNode  bool
}

type Resolver struct {
	service Service
	zone    string
	height  HeightFunc
	cache   Cache
	logger  log.Log

	warnedMissing bool
}

func NewResolver(service Service, zone string, height HeightFunc, logger log.Log) *Resolver {
	if logger == nil {
		logger = log.NewNop()
	}
	if height == nil {
		height = func() float64 { return 0 }
	}
	return &Resolver{
		service: service,
		zone:    zone,
		height:  height,
		logger:  logger.With(log.String("zone", zone)),
	}
}

// ZoneReady reports whether the configured zone has a loaded mesh.
func (r *Resolver) ZoneReady() bool {
	return r.service != nil && r.service.HasZone(r.zone)
}

func (r *Resolver) Cache() Cache {
	return r.cache
}

// Invalidate drops the cached group and node, e.g. after the mesh reloaded.
func (r *Resolver) Invalidate() {
	r.cache = Cache{}
	r.warnedMissing = false
}

// ForgetNode drops only the node, forcing a nearest-node search next time.
func (r *Resolver) ForgetNode() {
	r.cache.Node, r.cache.HasNode = 0, false
}

// Resolve clamps the step from start to end onto the walkable surface. When no
// mesh is loaded or no node can be found, end is returned unchanged.
func (r *Resolver) Resolve(start, end mgl64.Vec3, forceRecompute bool) mgl64.Vec3 {
	if !r.ZoneReady() {
		if !r.warnedMissing {
			r.logger.Warn("nav mesh zone not loaded, movement is unclamped")
			r.warnedMissing = true
		}
		return end
	}

	if forceRecompute || !r.cache.HasGroup {
		r.cache.Group, r.cache.HasGroup = r.service.GetGroup(r.zone, end)
		if !r.cache.HasGroup {
			return end
		}
	}

	if forceRecompute || !r.cache.HasNode {
		node, ok := r.service.GetClosestNode(end, r.zone, r.cache.Group, true)
		if !ok {
			node, ok = r.service.GetClosestNode(end, r.zone, r.cache.Group, false)
		}
		r.cache.Node, r.cache.HasNode = node, ok
		if !ok {
			return end
		}
	}

	clamped, node := r.service.ClampStep(start, end, r.cache.Node, r.zone, r.cache.Group)
	r.cache.Node = node
	return clamped
}

// ResolveViewpoint resolves a head position by working on the feet below it.
func (r *Resolver) ResolveViewpoint(start, end mgl64.Vec3, forceRecompute bool) mgl64.Vec3 {
	h := mgl64.Vec3{0, r.height(), 0}
	return r.Resolve(start.Sub(h), end.Sub(h), forceRecompute).Add(h)
}

// ResolveViewpointAt is ResolveViewpoint with an explicit height.
func (r *Resolver) ResolveViewpointAt(start, end mgl64.Vec3, height float64, forceRecompute bool) mgl64.Vec3 {
	h := mgl64.Vec3{0, height, 0}
	return r.Resolve(start.Sub(h), end.Sub(h), forceRecompute).Add(h)
}
