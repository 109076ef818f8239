package intercept

import "github.com/KOMKZ/go-yogan-intercept/event"

// lifecycleShim keeps one no-op listener on "newListener" and "removeListener" so the base
// always reports a listener for those names, and hides it from listener introspection.
type lifecycleShim struct {
	newListener    *event.Listener
	removeListener *event.Listener
}

func nopListener(...any) {}

func installShim(base Base) *lifecycleShim {
	s := &lifecycleShim{
		newListener:    event.NewListener(nopListener),
		removeListener: event.NewListener(nopListener),
	}
	base.AddListener(event.EventNewListener, s.newListener)
	base.AddListener(event.EventRemoveListener, s.removeListener)
	return s
}

// filter drops the shim listener from the lifecycle lists; other names pass through untouched
func (s *lifecycleShim) filter(name string, listeners []*event.Listener) []*event.Listener {
	var hidden *event.Listener
	switch name {
	case event.EventNewListener:
		hidden = s.newListener
	case event.EventRemoveListener:
		hidden = s.removeListener
	default:
		return listeners
	}

	out := make([]*event.Listener, 0, len(listeners))
	for _, l := range listeners {
		if l != hidden {
			out = append(out, l)
		}
	}
	return out
}
