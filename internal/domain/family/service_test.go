package family

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeFamilyRepo struct {
	families map[uint]*Family
	members  map[uint]*FamilyMember
	codes    map[string]uint
	nextID   uint
}

func newFakeFamilyRepo() *fakeFamilyRepo {
	return &fakeFamilyRepo{
		families: make(map[uint]*Family),
		members:  make(map[uint]*FamilyMember),
		codes:    make(map[string]uint),
	}
}

func (r *fakeFamilyRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeFamilyRepo) GetFamilyByUser(ctx context.Context, userID uint) (*Family, error) {
	member, ok := r.members[userID]
	if !ok {
		return nil, ErrFamilyNotFound
	}
	family, ok := r.families[member.FamilyID]
	if !ok {
		return nil, ErrFamilyNotFound
	}
	copied := *family
	return &copied, nil
}

func (r *fakeFamilyRepo) GetFamilyByCode(ctx context.Context, code string) (*Family, error) {
	id, ok := r.codes[code]
	if !ok {
		return nil, ErrFamilyCodeNotFound
	}
	family, ok := r.families[id]
	if !ok {
		return nil, ErrFamilyCodeNotFound
	}
	copied := *family
	return &copied, nil
}

func (r *fakeFamilyRepo) GetMemberByUser(ctx context.Context, userID uint) (*FamilyMember, error) {
	member, ok := r.members[userID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (r *fakeFamilyRepo) GetMember(ctx context.Context, familyID, userID uint) (*FamilyMember, error) {
	member, ok := r.members[userID]
	if !ok || member.FamilyID != familyID {
		return nil, ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (r *fakeFamilyRepo) ListMembers(ctx context.Context, familyID uint) ([]FamilyMember, error) {
	result := make([]FamilyMember, 0)
	for _, member := range r.members {
		if member.FamilyID == familyID {
			result = append(result, *member)
		}
	}
	return result, nil
}

func (r *fakeFamilyRepo) ListMembersWithProfiles(ctx context.Context, familyID uint) ([]FamilyMemberProfile, error) {
	members, _ := r.ListMembers(ctx, familyID)
	result := make([]FamilyMemberProfile, 0, len(members))
	for _, member := range members {
		result = append(result, FamilyMemberProfile{
			UserID:   member.UserID,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		})
	}
	return result, nil
}

func (r *fakeFamilyRepo) CreateFamily(ctx context.Context, family *Family) error {
	r.nextID++
	family.ID = r.nextID
	copied := *family
	r.families[family.ID] = &copied
	r.codes[family.Code] = family.ID
	return nil
}

func (r *fakeFamilyRepo) AddMember(ctx context.Context, member *FamilyMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	copied := *member
	r.members[member.UserID] = &copied
	return nil
}

func (r *fakeFamilyRepo) UpdateFamilyName(ctx context.Context, familyID uint, name string) error {
	family, ok := r.families[familyID]
	if !ok {
		return ErrFamilyNotFound
	}
	family.Name = name
	return nil
}

func (r *fakeFamilyRepo) DeleteFamily(ctx context.Context, familyID uint) error {
	family, ok := r.families[familyID]
	if ok {
		delete(r.codes, family.Code)
	}
	delete(r.families, familyID)
	return nil
}

func (r *fakeFamilyRepo) DeleteMember(ctx context.Context, familyID, userID uint) error {
	member, ok := r.members[userID]
	if ok && member.FamilyID == familyID {
		delete(r.members, userID)
	}
	return nil
}

func (r *fakeFamilyRepo) DeleteMembersByFamily(ctx context.Context, familyID uint) error {
	for userID, member := range r.members {
		if member.FamilyID == familyID {
			delete(r.members, userID)
		}
	}
	return nil
}

func (r *fakeFamilyRepo) CountMembers(ctx context.Context, familyID uint) (int64, error) {
	var count int64
	for _, member := range r.members {
		if member.FamilyID == familyID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFamilyRepo) IsUserInFamily(ctx context.Context, userID uint) (bool, error) {
	_, ok := r.members[userID]
	return ok, nil
}

func (r *fakeFamilyRepo) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	_, ok := r.codes[code]
	return ok, nil
}

func seedFamily(repo *fakeFamilyRepo, code string, ownerID uint) *Family {
	repo.nextID++
	family := &Family{ID: repo.nextID, Name: "Fam", Code: code, OwnerID: ownerID}
	repo.families[family.ID] = family
	repo.codes[code] = family.ID
	return family
}

func TestCreateFamilySuccess(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := NewService(repo, nil, 0)

	result, err := svc.CreateFamily(context.Background(), 1, "  My Family  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "My Family" {
		t.Fatalf("expected name trimmed, got %q", result.Name)
	}
	if result.OwnerID != 1 {
		t.Fatalf("expected owner 1, got %d", result.OwnerID)
	}
	if len(result.Code) != 6 {
		t.Fatalf("expected code length 6, got %q", result.Code)
	}
	member, ok := repo.members[1]
	if !ok {
		t.Fatalf("expected member created")
	}
	if member.Role != RoleOwner {
		t.Fatalf("expected owner role, got %q", member.Role)
	}
	if member.FamilyID != result.ID {
		t.Fatalf("expected member family %d, got %d", result.ID, member.FamilyID)
	}
}

func TestCreateFamilyAlreadyInFamily(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "AAAAAA", 2)
	repo.members[1] = &FamilyMember{FamilyID: family.ID, UserID: 1, Role: RoleParent}

	svc := NewService(repo, nil, 0)
	_, err := svc.CreateFamily(context.Background(), 1, "Name")
	if !errors.Is(err, ErrAlreadyInFamily) {
		t.Fatalf("expected ErrAlreadyInFamily, got %v", err)
	}
}

func TestJoinFamilyNormalizesCode(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "ZXCVBN", 2)

	svc := NewService(repo, nil, 0)
	result, err := svc.JoinFamily(context.Background(), 1, " zxcvbn ", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.ID != family.ID {
		t.Fatalf("expected family %d, got %d", family.ID, result.ID)
	}
	member := repo.members[1]
	if member == nil || member.Role != RoleParent {
		t.Fatalf("expected parent role by default, got %+v", member)
	}
}

func TestJoinFamilyChildRole(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "ZXCVBN", 2)

	svc := NewService(repo, nil, 0)
	if _, err := svc.JoinFamily(context.Background(), 1, "ZXCVBN", RoleChild); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	member := repo.members[1]
	if member == nil || member.Role != RoleChild {
		t.Fatalf("expected child role, got %+v", member)
	}
}

func TestJoinFamilyInvalidRole(t *testing.T) {
	repo := newFakeFamilyRepo()
	seedFamily(repo, "ZXCVBN", 2)

	svc := NewService(repo, nil, 0)
	_, err := svc.JoinFamily(context.Background(), 1, "ZXCVBN", "owner")
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestJoinFamilyCodeNotFound(t *testing.T) {
	repo := newFakeFamilyRepo()
	svc := NewService(repo, nil, 0)
	_, err := svc.JoinFamily(context.Background(), 1, "NOPE99", "")
	if !errors.Is(err, ErrFamilyCodeNotFound) {
		t.Fatalf("expected ErrFamilyCodeNotFound, got %v", err)
	}
}

func TestLeaveFamilyOwnerWithMembersMustTransfer(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "ZXCVBN", 2)
	repo.members[2] = &FamilyMember{FamilyID: family.ID, UserID: 2, Role: RoleOwner}
	repo.members[3] = &FamilyMember{FamilyID: family.ID, UserID: 3, Role: RoleParent}

	svc := NewService(repo, nil, 0)
	err := svc.LeaveFamily(context.Background(), 2)
	if !errors.Is(err, ErrOwnerMustTransfer) {
		t.Fatalf("expected ErrOwnerMustTransfer, got %v", err)
	}
	if _, ok := repo.members[2]; !ok {
		t.Fatalf("owner membership must remain intact")
	}
}

func TestLeaveFamilySoloOwnerDissolvesFamily(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "ZXCVBN", 2)
	repo.members[2] = &FamilyMember{FamilyID: family.ID, UserID: 2, Role: RoleOwner}

	svc := NewService(repo, nil, 0)
	if err := svc.LeaveFamily(context.Background(), 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.families[family.ID]; ok {
		t.Fatalf("expected family deleted")
	}
	if _, ok := repo.members[2]; ok {
		t.Fatalf("expected owner membership deleted")
	}
}

func TestLeaveFamilyMember(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "ZXCVBN", 2)
	repo.members[2] = &FamilyMember{FamilyID: family.ID, UserID: 2, Role: RoleOwner}
	repo.members[3] = &FamilyMember{FamilyID: family.ID, UserID: 3, Role: RoleParent}

	svc := NewService(repo, nil, 0)
	if err := svc.LeaveFamily(context.Background(), 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.members[3]; ok {
		t.Fatalf("expected membership deleted")
	}
	if _, ok := repo.families[family.ID]; !ok {
		t.Fatalf("family must remain")
	}
}

func TestUpdateFamily(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "ZXCVBN", 1)
	repo.members[1] = &FamilyMember{FamilyID: family.ID, UserID: 1, Role: RoleOwner}

	svc := NewService(repo, nil, 0)
	result, err := svc.UpdateFamily(context.Background(), 1, "New Name")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Name != "New Name" {
		t.Fatalf("expected updated name, got %q", result.Name)
	}
	if repo.families[family.ID].Name != "New Name" {
		t.Fatalf("expected persisted name, got %q", repo.families[family.ID].Name)
	}
}

func TestIsMember(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "ZXCVBN", 1)
	repo.members[1] = &FamilyMember{FamilyID: family.ID, UserID: 1, Role: RoleOwner}

	svc := NewService(repo, nil, 0)
	ok, err := svc.IsMember(context.Background(), family.ID, 1)
	if err != nil || !ok {
		t.Fatalf("expected member, got ok=%v err=%v", ok, err)
	}
	ok, err = svc.IsMember(context.Background(), family.ID, 99)
	if err != nil || ok {
		t.Fatalf("expected non-member, got ok=%v err=%v", ok, err)
	}
}

func TestRemoveMemberNotOwner(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "ZXCVBN", 2)
	repo.members[2] = &FamilyMember{FamilyID: family.ID, UserID: 2, Role: RoleOwner}
	repo.members[3] = &FamilyMember{FamilyID: family.ID, UserID: 3, Role: RoleParent}
	repo.members[4] = &FamilyMember{FamilyID: family.ID, UserID: 4, Role: RoleParent}

	svc := NewService(repo, nil, 0)
	err := svc.RemoveMember(context.Background(), 3, 4)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestRemoveMemberCannotRemoveOwner(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "ZXCVBN", 2)
	repo.members[2] = &FamilyMember{FamilyID: family.ID, UserID: 2, Role: RoleOwner}

	svc := NewService(repo, nil, 0)
	err := svc.RemoveMember(context.Background(), 2, 2)
	if !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("expected ErrCannotRemoveOwner, got %v", err)
	}
}

func TestRemoveMemberSuccess(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "ZXCVBN", 2)
	repo.members[2] = &FamilyMember{FamilyID: family.ID, UserID: 2, Role: RoleOwner}
	repo.members[3] = &FamilyMember{FamilyID: family.ID, UserID: 3, Role: RoleChild}

	svc := NewService(repo, nil, 0)
	if err := svc.RemoveMember(context.Background(), 2, 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.members[3]; ok {
		t.Fatalf("expected member removed")
	}
}

func TestGetFamilyByUserUsesCache(t *testing.T) {
	repo := newFakeFamilyRepo()
	family := seedFamily(repo, "ZXCVBN", 1)
	repo.members[1] = &FamilyMember{FamilyID: family.ID, UserID: 1, Role: RoleOwner}

	cache := newCountingCache()
	svc := NewService(repo, cache, time.Minute)

	if _, err := svc.GetFamilyByUser(context.Background(), 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.GetFamilyByUser(context.Background(), 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected single cache fill, got %d", cache.sets)
	}
	if cache.hits != 1 {
		t.Fatalf("expected one cache hit, got %d", cache.hits)
	}
}

type countingCache struct {
	entries map[uint]*Family
	sets    int
	hits    int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: make(map[uint]*Family)}
}

func (c *countingCache) GetByUserID(userID uint) (*Family, bool) {
	family, ok := c.entries[userID]
	if ok {
		c.hits++
	}
	return family, ok
}

func (c *countingCache) SetByUserID(userID uint, family *Family, ttl time.Duration) {
	c.sets++
	c.entries[userID] = family
}

func (c *countingCache) DeleteByUserID(userID uint) {
	delete(c.entries, userID)
}

func (c *countingCache) Clear() {
	c.entries = make(map[uint]*Family)
}
