package canopy

import "reflect"

// Model holds application data on an entity. Models receive the same events
// as the entity's view, after it.
type Model interface {
	Event(cx *Context, ev *Event)
}

// AddModel attaches m to the current entity. A model of the same type that is
// already attached is replaced in place.
func (cx *Context) AddModel(m Model) {
	e := cx.current
	if cx.models.isTaken(e) {
		// The entity's models are being dispatched to; merged on restore.
		cx.pendingModels[e] = append(cx.pendingModels[e], m)
		return
	}
	list, _ := cx.models.Get(e)
	cx.models.Insert(e, insertModel(list, m))
}

func insertModel(list []Model, m Model) []Model {
	t := reflect.TypeOf(m)
	for i, old := range list {
		if reflect.TypeOf(old) == t {
			list[i] = m
			return list
		}
	}
	return append(list, m)
}

// Data searches the models and then the view of the current entity and each
// of its ancestors for a value of type T.
func Data[T any](cx *Context) (T, bool) {
	for e := cx.current; !e.IsNull(); e = cx.tree.Parent(e) {
		if list, ok := cx.models.Get(e); ok {
			for _, m := range list {
				if t, ok := m.(T); ok {
					return t, true
				}
			}
		}
		if v, ok := cx.views.Get(e); ok {
			if t, ok := v.(T); ok {
				return t, true
			}
		}
	}
	var zero T
	return zero, false
}

// visitEntity delivers ev to the view of e and then to each of its models.
// Each is moved out of its store for the call and put back afterwards.
// Consumption by the view does not stop delivery to the models.
func (cx *Context) visitEntity(e Entity, ev *Event) {
	if view, ok := cx.views.take(e); ok {
		cx.WithCurrent(e, func(cx *Context) {
			view.Event(cx, ev)
		})
		cx.views.restore(e, view)
	}

	if list, ok := cx.models.take(e); ok {
		cx.WithCurrent(e, func(cx *Context) {
			for _, m := range list {
				m.Event(cx, ev)
			}
		})
		if cx.models.restore(e, list) {
			if pending, ok := cx.pendingModels[e]; ok {
				delete(cx.pendingModels, e)
				for _, m := range pending {
					list = insertModel(list, m)
				}
				cx.models.Insert(e, list)
			}
		}
	}
}
