package combine

import "github.com/latticesurgery/qrw/op"

// All merges every mergeable pair within rots, order-independently,
// until a full scan finds nothing left to merge. It is the "unordered
// version of C6" the section driver runs once per layer, since every
// rotation in a layer mutually commutes and can be reordered freely
// without changing the layer's effect.
func All(rots []op.Rotation) (changed bool, result []op.Rotation) {
	cur := append([]op.Rotation(nil), rots...)
	anyChange := false

	for {
		mergedThisPass := false

	scan:
		for i := 0; i < len(cur); i++ {
			for j := i + 1; j < len(cur); j++ {
				merged, out := Combine(cur[i], cur[j])
				if !merged {
					continue
				}
				next := make([]op.Rotation, 0, len(cur)-1)
				for k, r := range cur {
					if k != i && k != j {
						next = append(next, r)
					}
				}
				next = append(next, out...)
				cur = next
				anyChange = true
				mergedThisPass = true
				break scan
			}
		}

		if !mergedThisPass {
			break
		}
	}

	return anyChange, cur
}
