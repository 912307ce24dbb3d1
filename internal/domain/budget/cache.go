package budget

import "time"

type CategoriesCache interface {
	GetByFamilyID(familyID uint) ([]Category, bool)
	SetByFamilyID(familyID uint, categories []Category, ttl time.Duration)
	DeleteByFamilyID(familyID uint)
}

type noopCategoriesCache struct{}

func (noopCategoriesCache) GetByFamilyID(uint) ([]Category, bool) {
	return nil, false
}

func (noopCategoriesCache) SetByFamilyID(uint, []Category, time.Duration) {}

func (noopCategoriesCache) DeleteByFamilyID(uint) {}
