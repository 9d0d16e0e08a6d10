package navmesh

import "github.com/go-gl/mathgl/mgl64"

// closestPointOnTriangle returns the point of triangle abc nearest to p
// (Ericson, Real-Time Collision Detection 5.1.5).
func closestPointOnTriangle(p, a, b, c mgl64.Vec3) mgl64.Vec3 {
	ab, ac, ap := b.Sub(a), c.Sub(a), p.Sub(a)
	d1, d2 := ab.Dot(ap), ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3, d4 := ab.Dot(bp), ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Mul(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5, d6 := ab.Dot(cp), ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Mul(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return b.Add(c.Sub(b).Mul((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	denom := 1 / (va + vb + vc)
	v, w := vb*denom, vc*denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

func distanceSq(a, b mgl64.Vec3) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

// heightAt projects (x, z) onto the triangle's plane along Y. The footprint
// test is inclusive on edges.
func heightAt(v [3]mgl64.Vec3, x, z float64) (float64, bool) {
	ax, az := v[0].X(), v[0].Z()
	bx, bz := v[1].X(), v[1].Z()
	cx, cz := v[2].X(), v[2].Z()

	det := (bz-cz)*(ax-cx) + (cx-bx)*(az-cz)
	if det == 0 {
		return 0, false
	}
	l1 := ((bz-cz)*(x-cx) + (cx-bx)*(z-cz)) / det
	l2 := ((cz-az)*(x-cx) + (ax-cx)*(z-cz)) / det
	l3 := 1 - l1 - l2
	const slack = -1e-9
	if l1 < slack || l2 < slack || l3 < slack {
		return 0, false
	}
	return l1*v[0].Y() + l2*v[1].Y() + l3*v[2].Y(), true
}
