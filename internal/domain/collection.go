package domain

// RunCollection is the ordered, capped set of listings one run produced.
// Insertion order is discovery order.
type RunCollection struct {
	max   int
	items []EnrichedListing
}

func NewRunCollection(max int) *RunCollection {
	if max < 0 {
		max = 0
	}
	return &RunCollection{max: max, items: make([]EnrichedListing, 0, max)}
}

func (c *RunCollection) Len() int { return len(c.items) }

func (c *RunCollection) Max() int { return c.max }

func (c *RunCollection) Full() bool { return len(c.items) >= c.max }

// Append adds l unless the collection is full.
func (c *RunCollection) Append(l EnrichedListing) bool {
	if c.Full() {
		return false
	}
	c.items = append(c.items, l)
	return true
}

// Listings returns a copy so callers cannot mutate the run's records.
func (c *RunCollection) Listings() []EnrichedListing {
	out := make([]EnrichedListing, len(c.items))
	copy(out, c.items)
	return out
}
