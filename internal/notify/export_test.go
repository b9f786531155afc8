package notify

import "time"

// SetNow swaps the relay's clock for tests.
func (r *Relay) SetNow(now func() time.Time) { r.now = now }
