package charctrl

// RemoveConflictingContacts implements §4.2: when a thin wall or edge
// produces two contacts on the same body with opposing normals, both
// penetrating deeper than MinRequiredPenetration, the pair is
// contradictory - one says move left, the other move right - and we can't
// trust both. The contact with greater penetration (more negative
// Distance) survives; the other is dropped and its (body, sub-shape)
// recorded so the sweep in §4.5 knows to ignore it too.
//
// O(n^2) over the contact set, which is fine since n <= MaxNumHits.
func RemoveConflictingContacts(contacts []Contact) (kept []Contact, ignored []IgnoredContact) {
	discard := make([]bool, len(contacts))

	for i := 0; i < len(contacts); i++ {
		if discard[i] {
			continue
		}
		a := contacts[i]
		if a.Distance >= -MinRequiredPenetration {
			continue
		}

		for j := i + 1; j < len(contacts); j++ {
			if discard[j] {
				continue
			}
			b := contacts[j]
			if a.BodyID != b.BodyID {
				continue
			}
			if b.Distance >= -MinRequiredPenetration {
				continue
			}
			if a.Normal.Dot(b.Normal) >= 0 {
				continue
			}

			// Contradictory pair: keep the deeper one.
			if a.Distance <= b.Distance {
				discard[j] = true
				ignored = append(ignored, IgnoredContact{BodyID: b.BodyID, SubShapeID: b.SubShapeID})
			} else {
				discard[i] = true
				ignored = append(ignored, IgnoredContact{BodyID: a.BodyID, SubShapeID: a.SubShapeID})
				break
			}
		}
	}

	kept = contacts[:0]
	for i, c := range contacts {
		if !discard[i] {
			kept = append(kept, c)
		}
	}
	return kept, ignored
}
