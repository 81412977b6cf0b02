package charctrl

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
)

// sweepHit is a candidate blocking hit from the shape-cast verification
// sweep, before padding correction.
type sweepHit struct {
	raw    host.RawHit
	normal mgl64.Vec3
}

type sweepCollector struct {
	ignored []IgnoredContact
	out     []sweepHit
}

func (s *sweepCollector) isIgnored(bodyID host.BodyID, sub host.SubShapeID) bool {
	for _, ig := range s.ignored {
		if ig.BodyID == bodyID && ig.SubShapeID == sub {
			return true
		}
	}
	return false
}

func (s *sweepCollector) AddHit(hit host.RawHit) bool {
	if s.isIgnored(hit.BodyID, hit.SubShapeID) {
		return false
	}
	s.out = append(s.out, sweepHit{raw: hit, normal: geom.NormalizedOr(hit.PenetrationAxis, mgl64.Vec3{})})
	return len(s.out) >= MaxNumHits
}

// GetFirstContactForSweep casts the character's shape along displacement
// to catch obstacles the overlap-based solver couldn't see because they lie
// beyond the predictive contact distance (§4.5). It returns the first
// blocking hit, if any, with its fraction shortened so the character stops
// CharacterPadding away from the obstacle rather than touching it exactly.
func GetFirstContactForSweep(vc *VirtualCharacter, position mgl64.Vec3, displacement mgl64.Vec3, shape geom.Shape, ignored []IgnoredContact, filters host.Filters) (fraction float64, ok bool) {
	if vc.host == nil || displacement.LenSqr() < velocitySettleSq {
		return 0, false
	}

	start := geom.WithCenterOfMass(geom.Transform{Position: position, Rotation: vc.rotation}, shape.CenterOfMass())

	settings := host.ShapeCastSettings{
		BackFaceModeTriangles:           host.CollideWithBackFaces,
		BackFaceModeConvex:              host.IgnoreBackFaces,
		ActiveEdgeMode:                  host.ActiveEdgesOnly,
		UseShrunkenShapeAndConvexRadius: true,
		ReturnDeepestPoint:              false,
	}

	collector := &sweepCollector{ignored: ignored}
	cast := host.ShapeCast{Shape: shapeAdapter{shape}, Start: hostTransform(start), Displacement: displacement}
	vc.host.CastShape(cast, settings, collector, filters)

	candidates := collector.out[:0]
	for _, h := range collector.out {
		if h.raw.Fraction <= 0 {
			continue
		}
		// h.normal follows Contact.Normal's convention (out of the other
		// body, toward the character - see contact.go), so moving toward
		// the hit means normal.Dot(displacement) < 0, the opposite sign
		// the reference controller's own filter uses on its un-negated
		// raw penetration axis.
		if h.normal.Dot(displacement) >= 0 {
			continue
		}
		candidates = append(candidates, h)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].raw.Fraction < candidates[j].raw.Fraction })

	for _, h := range candidates {
		distance := -h.raw.PenetrationDepth
		nd := h.normal.Dot(displacement)
		if distance+nd >= -CollisionTolerance {
			continue
		}
		if vc.listener != nil && !vc.listener.OnContactValidate(vc, h.raw.BodyID, h.raw.SubShapeID) {
			continue
		}

		f := h.raw.Fraction
		if nd != 0 {
			f = maxFloat(0, f+CharacterPadding/nd)
		}
		return f, true
	}

	return 0, false
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
