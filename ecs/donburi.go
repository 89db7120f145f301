package ecs

import (
	"github.com/phanxgames/canopy"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// DispatchEventType is the Donburi event type for dispatched canopy events.
var DispatchEventType = events.NewEventType[canopy.DispatchRecord]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Records are published to DispatchEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) canopy.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(record canopy.DispatchRecord) {
	DispatchEventType.Publish(s.world, record)
}

// Subscribe registers fn for records whose message is an M.
func Subscribe[M any](world donburi.World, fn func(w donburi.World, rec canopy.DispatchRecord, msg M)) {
	DispatchEventType.Subscribe(world, func(w donburi.World, rec canopy.DispatchRecord) {
		if msg, ok := rec.Message.(M); ok {
			fn(w, rec, msg)
		}
	})
}
