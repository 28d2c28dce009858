// Package metadata captures the one-shot result record the engine emits at
// the end of a successful run and forwards it to the current subscriber.
package metadata

import (
	"github.com/printforge/slicerun/core"
)

// Collector receives the engine's metadata callback exactly once per
// successful run and forwards the reshaped record to the single-slot
// subscription. There is no buffering or queueing: if a misbehaving engine
// emits twice, the second record overwrites delivery of the first.
type Collector struct {
	notifier *core.Notifier[core.Metadata]
}

// NewCollector constructs a Collector with no subscriber.
func NewCollector() *Collector {
	return &Collector{notifier: core.NewNotifier[core.Metadata]()}
}

// Subscribe returns the metadata stream: one record per successful run. At
// most one subscriber is active; subscribing replaces any previous
// subscription.
func (c *Collector) Subscribe() <-chan core.Metadata {
	return c.notifier.Subscribe()
}

// Collect forwards a metadata record to the current subscriber.
func (c *Collector) Collect(m core.Metadata) {
	c.notifier.Publish(m)
}
