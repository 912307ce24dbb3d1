package family

import "time"

// Cache caches family lookups by member user ID. GetFamilyByUser sits on the
// hot path of every family-scoped request, so deployments back it with an
// in-process map or redis.
type Cache interface {
	GetByUserID(userID uint) (*Family, bool)
	SetByUserID(userID uint, family *Family, ttl time.Duration)
	DeleteByUserID(userID uint)
	Clear()
}

type noopCache struct{}

func (noopCache) GetByUserID(uint) (*Family, bool) {
	return nil, false
}

func (noopCache) SetByUserID(uint, *Family, time.Duration) {}

func (noopCache) DeleteByUserID(uint) {}

func (noopCache) Clear() {}
