package guideline

import "errors"

var (
	ErrGuidelineNotFound = errors.New("guideline not found")
	ErrApprovalNotFound  = errors.New("approval not found")
	ErrNotFamilyMember   = errors.New("not a family member")
	ErrInvalidType       = errors.New("invalid guideline type")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidParent     = errors.New("invalid parent guideline")
)
