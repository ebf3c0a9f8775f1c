package ecs

import "strconv"

// Entity packs a slot index (low 32 bits) and the slot's generation (high 32
// bits). The zero Entity is never handed out.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// ID returns the slot index. Live entities never share an ID, so it doubles as
// the body id in the physics world.
func (e Entity) ID() int {
	return int(e.id())
}

func (e Entity) String() string {
	return strconv.Itoa(e.ID()) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

func (e Entity) Valid() bool {
	return e.id() > 0
}
