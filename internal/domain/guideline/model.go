package guideline

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Type string

const (
	TypeValue Type = "VALUE"
	TypeRule  Type = "RULE"
)

// ParseType normalizes a raw type string. Unrecognized or empty values fall
// back to VALUE, matching the list endpoint's default.
func ParseType(value string) Type {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(TypeRule):
		return TypeRule
	default:
		return TypeValue
	}
}

// IsValidType reports whether value names a concrete type, case-insensitively.
func IsValidType(value string) bool {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(TypeValue), string(TypeRule):
		return true
	}
	return false
}

type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusActive      Status = "ACTIVE"
	StatusRetired     Status = "RETIRED"
)

type Guideline struct {
	ID           uint           `gorm:"primaryKey;autoIncrement"`
	FamilyID     uint           `gorm:"index;not null"`
	Type         Type           `gorm:"type:varchar(8);not null"`
	Title        string         `gorm:"not null"`
	Description  *string        `gorm:"type:text"`
	ParentID     *uint          `gorm:"index"`
	Status       Status         `gorm:"type:varchar(16);not null;default:'UNDER_REVIEW'"`
	ProposedByID uint           `gorm:"not null"`
	ProposedAt   time.Time      `gorm:"autoCreateTime"`
	ActivatedAt  *time.Time
	ExpiresAt    *time.Time
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
}

type Approval struct {
	GuidelineID uint `gorm:"primaryKey"`
	UserID      uint `gorm:"primaryKey"`
	Approved    bool `gorm:"not null;default:false"`
	ApprovedAt  *time.Time
}

func (Approval) TableName() string {
	return "guideline_approvals"
}

// MemberSummary is the projection of a user profile embedded in guideline
// responses.
type MemberSummary struct {
	UserID    uint   `json:"UserID"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Email     string `json:"Email"`
}

// ApprovalDetail pairs an approval row with the voting member's profile.
type ApprovalDetail struct {
	Approval
	User *MemberSummary
}

// Detail is a guideline row together with its approval set and proposer
// profile, as loaded for serialization.
type Detail struct {
	Guideline
	Approvals  []ApprovalDetail
	ProposedBy *MemberSummary
}

// Node is the JSON shape of a serialized guideline, including its subtree.
type Node struct {
	GuidelineID  uint           `json:"GuidelineID"`
	FamilyID     uint           `json:"FamilyID"`
	Type         Type           `json:"Type"`
	Title        string         `json:"Title"`
	Description  *string        `json:"Description"`
	ParentID     *uint          `json:"ParentID"`
	Status       Status         `json:"Status"`
	ProposedByID uint           `json:"ProposedByUserID"`
	ProposedBy   *MemberSummary `json:"ProposedBy"`
	ProposedAt   time.Time      `json:"ProposedAt"`
	ActivatedAt  *time.Time     `json:"ActivatedAt"`
	ExpiresAt    *time.Time     `json:"ExpiresAt"`
	Metadata     datatypes.JSON `json:"Metadata"`
	Approvals    []ApprovalNode `json:"approvals"`
	Children     []*Node        `json:"children"`
}

// ApprovalNode is the JSON shape of one approval inside a Node.
type ApprovalNode struct {
	GuidelineID uint           `json:"GuidelineID"`
	UserID      uint           `json:"UserID"`
	Approved    bool           `json:"Approved"`
	ApprovedAt  *time.Time     `json:"ApprovedAt"`
	User        *MemberSummary `json:"User"`
}

// ListResult groups a family's guidelines of one type by review state. The
// newRules tree is present only for RULE listings with recent activations.
type ListResult struct {
	Active      []*Node `json:"active"`
	UnderReview []*Node `json:"underReview"`
	NewRules    []*Node `json:"newRules,omitempty"`
}

type CreateInput struct {
	FamilyID     uint
	ProposedByID uint
	Type         string
	Title        string
	Description  *string
	ParentID     *uint
	Metadata     datatypes.JSON
}

type UpdateInput struct {
	FamilyID    uint
	GuidelineID uint
	UserID      uint
	Title       *string
	Description *string
	Metadata    datatypes.JSON
	Status      *string
	ParentID    *uint
	ClearParent bool
}

func newNode(detail Detail) *Node {
	approvals := make([]ApprovalNode, 0, len(detail.Approvals))
	for _, approval := range detail.Approvals {
		approvals = append(approvals, ApprovalNode{
			GuidelineID: approval.GuidelineID,
			UserID:      approval.UserID,
			Approved:    approval.Approved,
			ApprovedAt:  approval.ApprovedAt,
			User:        approval.User,
		})
	}

	return &Node{
		GuidelineID:  detail.ID,
		FamilyID:     detail.FamilyID,
		Type:         detail.Type,
		Title:        detail.Title,
		Description:  detail.Description,
		ParentID:     detail.ParentID,
		Status:       detail.Status,
		ProposedByID: detail.ProposedByID,
		ProposedBy:   detail.ProposedBy,
		ProposedAt:   detail.ProposedAt,
		ActivatedAt:  detail.ActivatedAt,
		ExpiresAt:    detail.ExpiresAt,
		Metadata:     detail.Metadata,
		Approvals:    approvals,
		Children:     []*Node{},
	}
}
