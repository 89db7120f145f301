// Package canopy is a retained-mode UI runtime for [Ebitengine].
//
// Canopy keeps the user interface as a tree of entities. Behavior is
// attached to entities as views and models, appearance comes from CSS
// stylesheets, and a stack layout places every entity inside its parent.
// Input is turned into events that travel through the tree.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	cx := canopy.NewContext()
//	canopy.NewButton(cx, "Hello", func(cx *canopy.Context) { ... })
//	_ = cx.AddTheme(`button { width: 120px; height: 32px; }`)
//	canopy.Run(canopy.NewApplication(cx), canopy.DefaultRunConfig())
//
// For full control, implement [ebiten.Game] yourself and call
// [Application.Update] and [Application.Draw] directly.
//
// # Entities and the context
//
// A [Context] owns the tree. Construction code runs against the current
// entity: [Context.Add] creates a child of it and runs a build function with
// the new entity as current.
//
//	list := cx.Add(nil, func(cx *canopy.Context) {
//		canopy.NewLabel(cx, "first")
//		canopy.NewLabel(cx, "second")
//	})
//	cx.AddClass(list, "list")
//
// # Events
//
// Views receive events in [View.Event]. [Context.Emit] sends a message from
// the current entity up to the root; [Context.EmitTo] targets one entity.
// Any consumer can stop an event with [Event.Consume]. Models added with
// [Context.AddModel] see the same events as their entity's view and are
// found from descendants with [Data].
//
// # Styling
//
// Stylesheets use CSS syntax with type, class, id and pseudo-class
// selectors, descendant and child combinators, transitions, and properties
// such as width, background-color, child-space and transform. Inline values
// set with [Context.SetStyle] win over rules. Keyframe animations are built
// with [Context.AddAnimation].
//
// [Ebitengine]: https://ebitengine.org
package canopy
