package charctrl

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wrenfield/charctrl/geom"
	"github.com/wrenfield/charctrl/host"
)

// fakeCaster is a minimal host.NarrowPhaseQuery whose CastShape feeds a
// fixed list of raw hits to whatever collector GetFirstContactForSweep
// hands it, so sweep.go's filtering/sorting/padding logic can be exercised
// without a real narrow phase.
type fakeCaster struct {
	hits []host.RawHit
}

func (f *fakeCaster) CollideShape(host.Shape, host.Transform, host.CollideShapeSettings, host.Collector, host.Filters) {
}

func (f *fakeCaster) CastShape(_ host.ShapeCast, _ host.ShapeCastSettings, collector host.Collector, _ host.Filters) {
	for _, h := range f.hits {
		if collector.AddHit(h) {
			return
		}
	}
}

func newSweepTestCharacter(caster *fakeCaster) *VirtualCharacter {
	return New(mgl64.Vec3{}, mgl64.QuatIdent(), geom.Sphere{Radius: 0.5}, caster, nil, nil, Config{})
}

func TestGetFirstContactForSweepSkipsTinyDisplacement(t *testing.T) {
	vc := newSweepTestCharacter(&fakeCaster{})
	_, ok := GetFirstContactForSweep(vc, mgl64.Vec3{}, mgl64.Vec3{1e-6, 0, 0}, vc.Shape(), nil, host.Filters{})
	if ok {
		t.Error("GetFirstContactForSweep found a hit for a displacement below the settle threshold, want none")
	}
}

func TestGetFirstContactForSweepFindsBlockingHitAndAppliesPadding(t *testing.T) {
	caster := &fakeCaster{hits: []host.RawHit{
		{BodyID: 1, Fraction: 0.5, PenetrationAxis: mgl64.Vec3{-1, 0, 0}, PenetrationDepth: 0},
	}}
	vc := newSweepTestCharacter(caster)
	displacement := mgl64.Vec3{1, 0, 0}

	fraction, ok := GetFirstContactForSweep(vc, mgl64.Vec3{}, displacement, vc.Shape(), nil, host.Filters{})
	if !ok {
		t.Fatal("GetFirstContactForSweep found no hit, want the blocking wall")
	}

	// normal.Dot(displacement) = -1, so adding CharacterPadding/-1 shortens
	// the fraction by CharacterPadding.
	want := 0.5 - CharacterPadding
	if fraction < want-1e-9 || fraction > 0.5+1e-9 {
		t.Errorf("fraction = %v, want approximately %v (0.5 shortened by padding)", fraction, want)
	}
}

func TestGetFirstContactForSweepSkipsIgnoredContact(t *testing.T) {
	caster := &fakeCaster{hits: []host.RawHit{
		{BodyID: 1, SubShapeID: 2, Fraction: 0.5, PenetrationAxis: mgl64.Vec3{-1, 0, 0}, PenetrationDepth: 0},
	}}
	vc := newSweepTestCharacter(caster)
	ignored := []IgnoredContact{{BodyID: 1, SubShapeID: 2}}

	_, ok := GetFirstContactForSweep(vc, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, vc.Shape(), ignored, host.Filters{})
	if ok {
		t.Error("GetFirstContactForSweep reported a hit that was on the ignored list, want none")
	}
}

func TestGetFirstContactForSweepSkipsHitsMovingAwayFrom(t *testing.T) {
	caster := &fakeCaster{hits: []host.RawHit{
		// Normal points the same way as the displacement, so the character
		// is moving away from this surface, not into it.
		{BodyID: 1, Fraction: 0.5, PenetrationAxis: mgl64.Vec3{1, 0, 0}, PenetrationDepth: 0},
	}}
	vc := newSweepTestCharacter(caster)

	_, ok := GetFirstContactForSweep(vc, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, vc.Shape(), nil, host.Filters{})
	if ok {
		t.Error("GetFirstContactForSweep reported a hit the character is moving away from, want none")
	}
}

func TestGetFirstContactForSweepSkipsHitsTooShallowToPenetrate(t *testing.T) {
	caster := &fakeCaster{hits: []host.RawHit{
		// distance + normal.Dot(displacement) is not meaningfully negative,
		// so the displacement wouldn't actually cause penetration.
		{BodyID: 1, Fraction: 0.5, PenetrationAxis: mgl64.Vec3{-1, 0, 0}, PenetrationDepth: -1.0},
	}}
	vc := newSweepTestCharacter(caster)

	_, ok := GetFirstContactForSweep(vc, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, vc.Shape(), nil, host.Filters{})
	if ok {
		t.Error("GetFirstContactForSweep reported a hit too shallow to meaningfully penetrate, want none")
	}
}

func TestGetFirstContactForSweepHonoursListenerVeto(t *testing.T) {
	caster := &fakeCaster{hits: []host.RawHit{
		{BodyID: 1, Fraction: 0.5, PenetrationAxis: mgl64.Vec3{-1, 0, 0}, PenetrationDepth: 0},
	}}
	vc := newSweepTestCharacter(caster)
	vc.SetListener(rejectAllListener{})

	_, ok := GetFirstContactForSweep(vc, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, vc.Shape(), nil, host.Filters{})
	if ok {
		t.Error("GetFirstContactForSweep reported a hit the listener vetoed, want none")
	}
}

func TestGetFirstContactForSweepPicksEarliestFractionAmongMultipleHits(t *testing.T) {
	caster := &fakeCaster{hits: []host.RawHit{
		{BodyID: 1, Fraction: 0.9, PenetrationAxis: mgl64.Vec3{-1, 0, 0}, PenetrationDepth: 0},
		{BodyID: 2, Fraction: 0.3, PenetrationAxis: mgl64.Vec3{-1, 0, 0}, PenetrationDepth: 0},
	}}
	vc := newSweepTestCharacter(caster)

	fraction, ok := GetFirstContactForSweep(vc, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, vc.Shape(), nil, host.Filters{})
	if !ok {
		t.Fatal("GetFirstContactForSweep found no hit, want the nearer of the two")
	}
	if fraction > 0.3+1e-9 {
		t.Errorf("fraction = %v, want near the earlier hit's 0.3", fraction)
	}
}

type rejectAllListener struct{}

func (rejectAllListener) OnContactValidate(*VirtualCharacter, host.BodyID, host.SubShapeID) bool {
	return false
}
func (rejectAllListener) OnContactAdded(*VirtualCharacter, host.BodyID, host.SubShapeID, mgl64.Vec3, mgl64.Vec3, *ContactSettings) {
}
