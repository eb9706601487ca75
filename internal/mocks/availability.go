package mocks

// Availability is a settable store availability flag for tests.
type Availability struct {
	Down bool
}

func (a *Availability) StoreAvailable() bool {
	return !a.Down
}
