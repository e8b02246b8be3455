package session

import (
	"sync/atomic"

	"github.com/lixenwraith/softkey/settings"
)

// Context carries the per-session state that would otherwise live in
// process-wide singletons: the active settings snapshot, the enabled subtype
// list, and the handler loop. Constructed at session start, destroyed at
// session end, and passed explicitly to every component that needs it
type Context struct {
	// Subtypes is the enabled language+layout catalog. Mutated only on the
	// handler goroutine
	Subtypes *settings.SubtypeManager

	// Handler is the callback loop all input processing runs on
	Handler *Handler

	profile  atomic.Pointer[settings.Profile]
	snapshot atomic.Pointer[settings.Snapshot]
}

// NewContext builds a session context from a settings profile
func NewContext(p *settings.Profile) *Context {
	c := &Context{
		Subtypes: settings.NewSubtypeManager(p),
		Handler:  NewHandler(),
	}
	c.profile.Store(p)
	c.snapshot.Store(settings.NewSnapshot(p, c.Subtypes.Current().Locale))
	return c
}

// Settings returns the active snapshot. In-flight transactions keep the
// snapshot they were opened with even if this changes under them
func (c *Context) Settings() *settings.Snapshot {
	return c.snapshot.Load()
}

// ApplyProfile installs a new profile and rebuilds the snapshot for the
// current subtype. Safe to call from outside the handler goroutine (e.g. a
// file-watcher callback); the snapshot pointer swap is atomic
func (c *Context) ApplyProfile(p *settings.Profile) {
	c.profile.Store(p)
	c.snapshot.Store(settings.NewSnapshot(p, c.Subtypes.Current().Locale))
}

// NextSubtype advances to the next enabled subtype and rebuilds the snapshot
// for its locale. Returns the new subtype
func (c *Context) NextSubtype() settings.Subtype {
	st := c.Subtypes.Next()
	c.snapshot.Store(settings.NewSnapshot(c.profile.Load(), st.Locale))
	return st
}

// Destroy tears the session down, stopping the handler loop
func (c *Context) Destroy() {
	c.Handler.Stop()
}
