package utils

import (
	"math/rand"
	"sync"

	"github.com/Pallinder/go-randomdata"
)

// NameGenerator hands out unique human-readable names for documents that
// arrive without one. Safe for concurrent use.
type NameGenerator struct {
	mu   sync.Mutex
	used map[string]struct{}
}

func (ng *NameGenerator) Next() string {
	ng.mu.Lock()
	defer ng.mu.Unlock()

	if ng.used == nil {
		ng.used = make(map[string]struct{})
		randomdata.CustomRand(rand.New(rand.NewSource(0)))
	}
	for {
		name := randomdata.SillyName()
		// avoid duplicate names
		if _, exists := ng.used[name]; !exists {
			ng.used[name] = struct{}{}
			return name
		}
	}
}
