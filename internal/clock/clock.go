// Package clock supplies "today" to every date-dependent component, either
// the real current date in one fixed time zone or a process-wide test
// override installed through the command surface.
package clock

import (
	"fmt"
	"sync"
	"time"

	"dailyspend/internal/core"
)

// Clock resolves the current calendar day. At most one override is active at
// a time; installing or clearing one fires the registered change hooks so
// coupled state (the allowance cache) is dropped together with it.
type Clock struct {
	mu       sync.Mutex
	loc      *time.Location
	override *core.Date
	onChange []func()
}

// New creates a Clock reading real time in loc. A nil loc means UTC.
func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

// OnChange registers a hook invoked after every override change. Hooks run
// outside the clock's lock so they may take their own.
func (c *Clock) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Today returns the override date when one is set, else the real current
// date in the clock's zone.
func (c *Clock) Today() core.Date {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.override != nil {
		return *c.override
	}
	return core.DateOf(time.Now().In(c.loc))
}

// Overridden reports the active override, if any.
func (c *Clock) Overridden() (core.Date, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.override == nil {
		return core.Date{}, false
	}
	return *c.override, true
}

// SetOverride validates s as a YYYY-MM-DD date and installs it. The prior
// override and any dependent cached state stay untouched on a parse failure.
func (c *Clock) SetOverride(s string) (core.Date, error) {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", core.ErrClockOverride, s)
	}
	c.mu.Lock()
	c.override = &d
	hooks := append([]func(){}, c.onChange...)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return d, nil
}

// ClearOverride removes the override and resumes real time.
func (c *Clock) ClearOverride() {
	c.mu.Lock()
	c.override = nil
	hooks := append([]func(){}, c.onChange...)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
