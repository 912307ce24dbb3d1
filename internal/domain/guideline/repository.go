package guideline

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListByFamilyAndType(ctx context.Context, familyID uint, guidelineType Type) ([]Detail, error)
	GetDetail(ctx context.Context, familyID, guidelineID uint) (*Detail, error)
	GetByID(ctx context.Context, familyID, guidelineID uint) (*Guideline, error)
	ListApprovals(ctx context.Context, guidelineID uint) ([]Approval, error)
	Create(ctx context.Context, g *Guideline) error
	CreateApprovals(ctx context.Context, approvals []Approval) error
	UpdateFields(ctx context.Context, guidelineID uint, fields map[string]interface{}) error
	SetApproval(ctx context.Context, guidelineID, userID uint, approved bool, approvedAt *time.Time) (bool, error)
}

// FamilyDirectory is the slice of the family domain the guideline service
// needs: membership checks and the member roster captured at proposal time.
type FamilyDirectory interface {
	IsMember(ctx context.Context, familyID, userID uint) (bool, error)
	ListMemberIDs(ctx context.Context, familyID uint) ([]uint, error)
}
