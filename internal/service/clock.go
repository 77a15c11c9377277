package service

import "time"

// Clock abstracts time retrieval so expiration checks are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
