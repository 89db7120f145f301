// Package ecs provides ECS adapters for canopy's event system.
//
// The primary adapter is [NewDonburiStore], which publishes a record of
// every event the canopy event manager dispatched into a [Donburi] world.
// Subscribe to [DispatchEventType] in your ECS systems to receive them, or
// use [Subscribe] to receive one message type only.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	cx.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
