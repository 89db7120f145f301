package canopy

import "iter"

type sparseEntry[T any] struct {
	entity Entity
	value  T
	taken  bool
}

// SparseSet maps entities to values with dense storage. Lookups compare the
// full handle, so a stale generation never reads another entity's data.
type SparseSet[T any] struct {
	sparse []int32 // entity index -> dense slot + 1, 0 when absent
	dense  []sparseEntry[T]
}

func (s *SparseSet[T]) slot(e Entity) int {
	if e.IsNull() {
		return -1
	}
	i := e.Index()
	if i >= len(s.sparse) {
		return -1
	}
	d := int(s.sparse[i]) - 1
	if d < 0 || s.dense[d].entity != e {
		return -1
	}
	return d
}

// Insert sets the value for e, replacing any value stored for the same slot
// index, including one left behind by a stale generation.
func (s *SparseSet[T]) Insert(e Entity, v T) {
	if e.IsNull() {
		panic("canopy: insert into sparse set with null entity")
	}
	i := e.Index()
	for i >= len(s.sparse) {
		s.sparse = append(s.sparse, 0)
	}
	if d := int(s.sparse[i]) - 1; d >= 0 {
		s.dense[d] = sparseEntry[T]{entity: e, value: v}
		return
	}
	s.dense = append(s.dense, sparseEntry[T]{entity: e, value: v})
	s.sparse[i] = int32(len(s.dense))
}

// Get returns the value stored for e.
func (s *SparseSet[T]) Get(e Entity) (T, bool) {
	d := s.slot(e)
	if d < 0 || s.dense[d].taken {
		var zero T
		return zero, false
	}
	return s.dense[d].value, true
}

// GetPtr returns a pointer to the stored value, or nil. The pointer is only
// valid until the next Insert or Remove.
func (s *SparseSet[T]) GetPtr(e Entity) *T {
	d := s.slot(e)
	if d < 0 || s.dense[d].taken {
		return nil
	}
	return &s.dense[d].value
}

// Contains reports whether e has a value.
func (s *SparseSet[T]) Contains(e Entity) bool {
	d := s.slot(e)
	return d >= 0 && !s.dense[d].taken
}

// Remove deletes e's value and returns it.
func (s *SparseSet[T]) Remove(e Entity) (T, bool) {
	var zero T
	d := s.slot(e)
	if d < 0 {
		return zero, false
	}
	entry := s.dense[d]
	last := len(s.dense) - 1
	if d != last {
		s.dense[d] = s.dense[last]
		s.sparse[s.dense[d].entity.Index()] = int32(d + 1)
	}
	s.dense[last] = sparseEntry[T]{}
	s.dense = s.dense[:last]
	s.sparse[e.Index()] = 0
	if entry.taken {
		return zero, false
	}
	return entry.value, true
}

// take moves the value out of its slot and leaves a tombstone, so the set
// keeps the entity's position while the value is borrowed.
func (s *SparseSet[T]) take(e Entity) (T, bool) {
	var zero T
	d := s.slot(e)
	if d < 0 || s.dense[d].taken {
		return zero, false
	}
	v := s.dense[d].value
	s.dense[d].value = zero
	s.dense[d].taken = true
	return v, true
}

// restore puts back a value obtained from take. It reports false when the
// slot was removed in the meantime, in which case the value is dropped.
func (s *SparseSet[T]) restore(e Entity, v T) bool {
	d := s.slot(e)
	if d < 0 || !s.dense[d].taken {
		return false
	}
	s.dense[d].value = v
	s.dense[d].taken = false
	return true
}

// isTaken reports whether e's value is currently moved out by take.
func (s *SparseSet[T]) isTaken(e Entity) bool {
	d := s.slot(e)
	return d >= 0 && s.dense[d].taken
}

// Len returns the number of stored entries.
func (s *SparseSet[T]) Len() int { return len(s.dense) }

// Clear removes every entry.
func (s *SparseSet[T]) Clear() {
	s.sparse = s.sparse[:0]
	clear(s.dense)
	s.dense = s.dense[:0]
}

// All yields every stored entity and value in dense order.
func (s *SparseSet[T]) All() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		for i := 0; i < len(s.dense); i++ {
			if s.dense[i].taken {
				continue
			}
			if !yield(s.dense[i].entity, s.dense[i].value) {
				return
			}
		}
	}
}
