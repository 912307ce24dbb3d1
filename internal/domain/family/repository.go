package family

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	GetFamilyByUser(ctx context.Context, userID uint) (*Family, error)
	GetFamilyByCode(ctx context.Context, code string) (*Family, error)
	GetMemberByUser(ctx context.Context, userID uint) (*FamilyMember, error)
	GetMember(ctx context.Context, familyID, userID uint) (*FamilyMember, error)
	ListMembers(ctx context.Context, familyID uint) ([]FamilyMember, error)
	ListMembersWithProfiles(ctx context.Context, familyID uint) ([]FamilyMemberProfile, error)
	CreateFamily(ctx context.Context, family *Family) error
	AddMember(ctx context.Context, member *FamilyMember) error
	UpdateFamilyName(ctx context.Context, familyID uint, name string) error
	DeleteFamily(ctx context.Context, familyID uint) error
	DeleteMember(ctx context.Context, familyID, userID uint) error
	DeleteMembersByFamily(ctx context.Context, familyID uint) error
	CountMembers(ctx context.Context, familyID uint) (int64, error)
	IsUserInFamily(ctx context.Context, userID uint) (bool, error)
	IsCodeTaken(ctx context.Context, code string) (bool, error)
}
