package platform

// seenWindow remembers the most recent ids so repeated polls do not yield
// the same question twice. Memory stays bounded by size.
type seenWindow struct {
	size  int
	ids   map[int64]struct{}
	order []int64
}

func newSeenWindow(size int) *seenWindow {
	return &seenWindow{size: size, ids: make(map[int64]struct{}, size)}
}

// filter returns the ids not seen before and records them.
func (w *seenWindow) filter(ids []int64) []int64 {
	fresh := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := w.ids[id]; ok {
			continue
		}
		w.ids[id] = struct{}{}
		w.order = append(w.order, id)
		fresh = append(fresh, id)
	}
	for len(w.order) > w.size {
		delete(w.ids, w.order[0])
		w.order = w.order[1:]
	}
	return fresh
}
