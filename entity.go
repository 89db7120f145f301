package canopy

import (
	"fmt"
	"math"
)

// Entity is a generational handle identifying one node of the UI tree.
// The low 32 bits hold the slot index and the high 32 bits the generation,
// so a handle kept past its entity's removal never matches the slot's new
// occupant.
type Entity uint64

const (
	// RootEntity is the first entity of every Context and the root of its tree.
	RootEntity Entity = 0
	// NullEntity refers to nothing. Event targets and the capture pointer use
	// it as "unset".
	NullEntity Entity = math.MaxUint64
)

func newEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index of the entity.
func (e Entity) Index() int { return int(uint32(e)) }

// Generation returns the generation counter of the entity.
func (e Entity) Generation() uint32 { return uint32(e >> 32) }

// IsNull reports whether e is NullEntity.
func (e Entity) IsNull() bool { return e == NullEntity }

func (e Entity) String() string {
	if e.IsNull() {
		return "Entity(null)"
	}
	return fmt.Sprintf("Entity(%d:%d)", e.Index(), e.Generation())
}

// entityManager hands out entity handles and recycles freed slots with a
// bumped generation.
type entityManager struct {
	generations []uint32
	alive       []bool
	free        []uint32
}

func (m *entityManager) create() Entity {
	if n := len(m.free); n > 0 {
		index := m.free[n-1]
		m.free = m.free[:n-1]
		m.alive[index] = true
		return newEntity(index, m.generations[index])
	}
	index := uint32(len(m.generations))
	if index == math.MaxUint32 {
		panic("canopy: entity index space exhausted")
	}
	m.generations = append(m.generations, 0)
	m.alive = append(m.alive, true)
	return newEntity(index, 0)
}

// destroy frees e's slot. Destroying a dead or stale handle is a logic error.
func (m *entityManager) destroy(e Entity) {
	if !m.isAlive(e) {
		panic(fmt.Sprintf("canopy: destroying dead entity %v", e))
	}
	index := uint32(e.Index())
	m.alive[index] = false
	m.generations[index]++
	m.free = append(m.free, index)
}

func (m *entityManager) isAlive(e Entity) bool {
	if e.IsNull() {
		return false
	}
	i := e.Index()
	return i < len(m.generations) && m.alive[i] && m.generations[i] == e.Generation()
}

// count returns the number of live entities.
func (m *entityManager) count() int {
	return len(m.generations) - len(m.free)
}
