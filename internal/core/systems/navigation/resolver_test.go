package navigation_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/locomotion/internal/core/systems/navigation"
	"github.com/zeusync/locomotion/internal/core/systems/navigation/navmesh"
)

type countingService struct {
	navigation.Service
	groups, closest, steps int
	walkableMisses         bool
}

func (s *countingService) GetGroup(zone string, p mgl64.Vec3) (navigation.GroupID, bool) {
	s.groups++
	return s.Service.GetGroup(zone, p)
}

func (s *countingService) GetClosestNode(p mgl64.Vec3, zone string, g navigation.GroupID, walkable bool) (navigation.NodeID, bool) {
	s.closest++
	if walkable && s.walkableMisses {
		return 0, false
	}
	return s.Service.GetClosestNode(p, zone, g, walkable)
}

func (s *countingService) ClampStep(start, end mgl64.Vec3, n navigation.NodeID, zone string, g navigation.GroupID) (mgl64.Vec3, navigation.NodeID) {
	s.steps++
	return s.Service.ClampStep(start, end, n, zone, g)
}

func floor(t *testing.T) *navmesh.Mesh {
	t.Helper()
	m := navmesh.New()
	require.NoError(t, m.Grid("character", mgl64.Vec3{-5, 0, -5}, 10, 10, 1))
	return m
}

func near(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-9) || want.Sub(got).Len() < 1e-9, "want %v got %v", want, got)
}

func TestResolveWithoutZoneReturnsEnd(t *testing.T) {
	r := navigation.NewResolver(navmesh.New(), "character", nil, nil)
	end := mgl64.Vec3{100, 3, 100}
	assert.False(t, r.ZoneReady())
	assert.Equal(t, end, r.Resolve(mgl64.Vec3{}, end, false))

	r = navigation.NewResolver(nil, "character", nil, nil)
	assert.Equal(t, end, r.Resolve(mgl64.Vec3{}, end, true))
}

func TestResolveIsIdempotentOnSurface(t *testing.T) {
	r := navigation.NewResolver(floor(t), "character", nil, nil)
	p := mgl64.Vec3{1.25, 0, -2.5}

	first := r.Resolve(p, p, true)
	near(t, p, first)
	near(t, first, r.Resolve(first, first, false))
}

func TestResolveClampsOffMesh(t *testing.T) {
	r := navigation.NewResolver(floor(t), "character", nil, nil)
	got := r.Resolve(mgl64.Vec3{4, 0, 0}, mgl64.Vec3{7, 0, 0}, true)
	near(t, mgl64.Vec3{5, 0, 0}, got)
}

func TestCacheReuseAndRecompute(t *testing.T) {
	svc := &countingService{Service: floor(t)}
	r := navigation.NewResolver(svc, "character", nil, nil)

	r.Resolve(mgl64.Vec3{}, mgl64.Vec3{0.1, 0, 0}, false)
	r.Resolve(mgl64.Vec3{0.1, 0, 0}, mgl64.Vec3{0.2, 0, 0}, false)
	assert.Equal(t, 1, svc.groups)
	assert.Equal(t, 1, svc.closest)
	assert.Equal(t, 2, svc.steps)
	assert.True(t, r.Cache().HasNode)

	r.ForgetNode()
	assert.True(t, r.Cache().HasGroup)
	r.Resolve(mgl64.Vec3{}, mgl64.Vec3{0.1, 0, 0}, false)
	assert.Equal(t, 1, svc.groups)
	assert.Equal(t, 2, svc.closest)

	r.Resolve(mgl64.Vec3{}, mgl64.Vec3{0.1, 0, 0}, true)
	assert.Equal(t, 2, svc.groups)
	assert.Equal(t, 3, svc.closest)

	r.Invalidate()
	assert.Equal(t, navigation.Cache{}, r.Cache())
}

func TestClosestNodeFallsBackToAnyNode(t *testing.T) {
	svc := &countingService{Service: floor(t), walkableMisses: true}
	r := navigation.NewResolver(svc, "character", nil, nil)

	got := r.Resolve(mgl64.Vec3{}, mgl64.Vec3{1, 0, 1}, true)
	near(t, mgl64.Vec3{1, 0, 1}, got)
	assert.Equal(t, 2, svc.closest)
	assert.True(t, r.Cache().HasNode)
}

func TestResolveViewpointUsesHeight(t *testing.T) {
	r := navigation.NewResolver(floor(t), "character", func() float64 { return 1.6 }, nil)

	got := r.ResolveViewpoint(mgl64.Vec3{0, 1.6, 0}, mgl64.Vec3{2, 1.9, 9}, true)
	near(t, mgl64.Vec3{2, 1.6, 5}, got)

	got = r.ResolveViewpointAt(mgl64.Vec3{0, 2, 0}, mgl64.Vec3{1, 2, 1}, 2, false)
	near(t, mgl64.Vec3{1, 2, 1}, got)
}
