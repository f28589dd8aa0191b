package cache

import (
	"time"

	"github.com/Domenick1991/flightdesk/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

const profilesKey = "profiles"

// ProfileCache keeps the registered user list in process for a short TTL.
type ProfileCache struct {
	cache *gocache.Cache
	ttl   time.Duration
}

func NewProfileCache(ttl time.Duration) *ProfileCache {
	return &ProfileCache{cache: gocache.New(ttl, 2*ttl), ttl: ttl}
}

func (p *ProfileCache) GetProfiles() ([]domain.Profile, bool) {
	v, ok := p.cache.Get(profilesKey)
	if !ok {
		return nil, false
	}
	profiles, ok := v.([]domain.Profile)
	return profiles, ok
}

func (p *ProfileCache) SetProfiles(profiles []domain.Profile) {
	p.cache.Set(profilesKey, profiles, p.ttl)
}

func (p *ProfileCache) Invalidate() {
	p.cache.Delete(profilesKey)
}
