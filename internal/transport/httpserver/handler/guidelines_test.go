package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	guidelinedomain "famconomy-go/internal/domain/guideline"
	"famconomy-go/internal/transport/httpserver/middleware"
	"famconomy-go/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type fakeGuidelineRepo struct {
	guidelines map[uint]*guidelinedomain.Guideline
	approvals  map[uint][]guidelinedomain.Approval
	nextID     uint
}

func newFakeGuidelineRepo() *fakeGuidelineRepo {
	return &fakeGuidelineRepo{
		guidelines: make(map[uint]*guidelinedomain.Guideline),
		approvals:  make(map[uint][]guidelinedomain.Approval),
	}
}

func (r *fakeGuidelineRepo) Transaction(ctx context.Context, fn func(guidelinedomain.Repository) error) error {
	return fn(r)
}

func (r *fakeGuidelineRepo) ListByFamilyAndType(ctx context.Context, familyID uint, guidelineType guidelinedomain.Type) ([]guidelinedomain.Detail, error) {
	result := make([]guidelinedomain.Detail, 0)
	for _, g := range r.guidelines {
		if g.FamilyID != familyID || g.Type != guidelineType {
			continue
		}
		detail, _ := r.GetDetail(ctx, familyID, g.ID)
		result = append(result, *detail)
	}
	return result, nil
}

func (r *fakeGuidelineRepo) GetDetail(ctx context.Context, familyID, guidelineID uint) (*guidelinedomain.Detail, error) {
	g, err := r.GetByID(ctx, familyID, guidelineID)
	if err != nil {
		return nil, err
	}
	details := make([]guidelinedomain.ApprovalDetail, 0, len(r.approvals[guidelineID]))
	for _, approval := range r.approvals[guidelineID] {
		details = append(details, guidelinedomain.ApprovalDetail{Approval: approval})
	}
	return &guidelinedomain.Detail{Guideline: *g, Approvals: details}, nil
}

func (r *fakeGuidelineRepo) GetByID(ctx context.Context, familyID, guidelineID uint) (*guidelinedomain.Guideline, error) {
	g, ok := r.guidelines[guidelineID]
	if !ok || g.FamilyID != familyID {
		return nil, guidelinedomain.ErrGuidelineNotFound
	}
	copied := *g
	return &copied, nil
}

func (r *fakeGuidelineRepo) ListApprovals(ctx context.Context, guidelineID uint) ([]guidelinedomain.Approval, error) {
	return append([]guidelinedomain.Approval{}, r.approvals[guidelineID]...), nil
}

func (r *fakeGuidelineRepo) Create(ctx context.Context, g *guidelinedomain.Guideline) error {
	r.nextID++
	g.ID = r.nextID
	copied := *g
	r.guidelines[g.ID] = &copied
	return nil
}

func (r *fakeGuidelineRepo) CreateApprovals(ctx context.Context, approvals []guidelinedomain.Approval) error {
	for _, approval := range approvals {
		r.approvals[approval.GuidelineID] = append(r.approvals[approval.GuidelineID], approval)
	}
	return nil
}

func (r *fakeGuidelineRepo) UpdateFields(ctx context.Context, guidelineID uint, fields map[string]interface{}) error {
	g, ok := r.guidelines[guidelineID]
	if !ok {
		return guidelinedomain.ErrGuidelineNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			g.Status = value.(guidelinedomain.Status)
		case "title":
			g.Title = value.(string)
		case "description":
			g.Description, _ = value.(*string)
		case "activated_at":
			switch v := value.(type) {
			case time.Time:
				g.ActivatedAt = &v
			case *time.Time:
				g.ActivatedAt = v
			}
		case "expires_at":
			switch v := value.(type) {
			case time.Time:
				g.ExpiresAt = &v
			case *time.Time:
				g.ExpiresAt = v
			}
		case "parent_id":
			switch v := value.(type) {
			case uint:
				g.ParentID = &v
			case nil:
				g.ParentID = nil
			}
		}
	}
	return nil
}

func (r *fakeGuidelineRepo) SetApproval(ctx context.Context, guidelineID, userID uint, approved bool, approvedAt *time.Time) (bool, error) {
	approvals := r.approvals[guidelineID]
	for i := range approvals {
		if approvals[i].UserID == userID {
			approvals[i].Approved = approved
			approvals[i].ApprovedAt = approvedAt
			return true, nil
		}
	}
	return false, nil
}

type fakeFamilyDirectory struct {
	members map[uint][]uint
}

func (f *fakeFamilyDirectory) IsMember(ctx context.Context, familyID, userID uint) (bool, error) {
	for _, id := range f.members[familyID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFamilyDirectory) ListMemberIDs(ctx context.Context, familyID uint) ([]uint, error) {
	return append([]uint{}, f.members[familyID]...), nil
}

func newGuidelineHandlers(repo *fakeGuidelineRepo, members map[uint][]uint) *Handlers {
	svc := guidelinedomain.NewService(repo, &fakeFamilyDirectory{members: members}, guidelinedomain.Config{})
	log := logger.New(io.Discard, slog.LevelError, "text")
	return New(svc, nil, nil, nil, nil, nil, log)
}

func guidelineRequest(method, body string, params map[string]string, user middleware.User) *http.Request {
	r := httptest.NewRequest(method, "/", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithUser(ctx, user)
	return r.WithContext(ctx)
}

func seedChildGuideline(t *testing.T, h *Handlers) (parentID, childID uint) {
	t.Helper()

	parent, err := h.Guidelines.Create(context.Background(), guidelinedomain.CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Honesty",
	})
	if err != nil {
		t.Fatalf("parent create failed: %v", err)
	}
	child, err := h.Guidelines.Create(context.Background(), guidelinedomain.CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Tell the truth",
		ParentID:     &parent.GuidelineID,
	})
	if err != nil {
		t.Fatalf("child create failed: %v", err)
	}
	return parent.GuidelineID, child.GuidelineID
}

func TestUpdateGuidelineNullParentClears(t *testing.T) {
	repo := newFakeGuidelineRepo()
	h := newGuidelineHandlers(repo, map[uint][]uint{1: {10}})
	_, childID := seedChildGuideline(t, h)

	w := httptest.NewRecorder()
	r := guidelineRequest(http.MethodPatch, `{"parent_id": null}`, map[string]string{
		"family_id":    "1",
		"guideline_id": fmt.Sprintf("%d", childID),
	}, middleware.User{ID: 10})
	h.UpdateGuideline(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var node guidelinedomain.Node
	if err := json.Unmarshal(w.Body.Bytes(), &node); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if node.ParentID != nil {
		t.Fatalf("explicit null parent_id must clear the parent, still set to %d", *node.ParentID)
	}
	if repo.guidelines[childID].ParentID != nil {
		t.Fatalf("expected parent cleared in storage")
	}
}

func TestUpdateGuidelineAbsentParentUnchanged(t *testing.T) {
	repo := newFakeGuidelineRepo()
	h := newGuidelineHandlers(repo, map[uint][]uint{1: {10}})
	parentID, childID := seedChildGuideline(t, h)

	w := httptest.NewRecorder()
	r := guidelineRequest(http.MethodPatch, `{"title": "Always tell the truth"}`, map[string]string{
		"family_id":    "1",
		"guideline_id": fmt.Sprintf("%d", childID),
	}, middleware.User{ID: 10})
	h.UpdateGuideline(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var node guidelinedomain.Node
	if err := json.Unmarshal(w.Body.Bytes(), &node); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if node.ParentID == nil || *node.ParentID != parentID {
		t.Fatalf("omitted parent_id must leave the parent unchanged, got %v", node.ParentID)
	}
}

func TestUpdateGuidelineReparent(t *testing.T) {
	repo := newFakeGuidelineRepo()
	h := newGuidelineHandlers(repo, map[uint][]uint{1: {10}})
	_, childID := seedChildGuideline(t, h)

	other, err := h.Guidelines.Create(context.Background(), guidelinedomain.CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Kindness",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	w := httptest.NewRecorder()
	r := guidelineRequest(http.MethodPatch, fmt.Sprintf(`{"parent_id": %d}`, other.GuidelineID), map[string]string{
		"family_id":    "1",
		"guideline_id": fmt.Sprintf("%d", childID),
	}, middleware.User{ID: 10})
	h.UpdateGuideline(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var node guidelinedomain.Node
	if err := json.Unmarshal(w.Body.Bytes(), &node); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if node.ParentID == nil || *node.ParentID != other.GuidelineID {
		t.Fatalf("expected reparent to %d, got %v", other.GuidelineID, node.ParentID)
	}
}

func TestUpdateGuidelineRejectsBadParentID(t *testing.T) {
	repo := newFakeGuidelineRepo()
	h := newGuidelineHandlers(repo, map[uint][]uint{1: {10}})
	_, childID := seedChildGuideline(t, h)

	for _, body := range []string{`{"parent_id": 0}`, `{"parent_id": "abc"}`} {
		w := httptest.NewRecorder()
		r := guidelineRequest(http.MethodPatch, body, map[string]string{
			"family_id":    "1",
			"guideline_id": fmt.Sprintf("%d", childID),
		}, middleware.User{ID: 10})
		h.UpdateGuideline(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, w.Code)
		}
	}
}

func TestApproveGuidelineRequiresExplicitFlag(t *testing.T) {
	repo := newFakeGuidelineRepo()
	h := newGuidelineHandlers(repo, map[uint][]uint{1: {10, 11}})

	created, err := h.Guidelines.Create(context.Background(), guidelinedomain.CreateInput{
		FamilyID:     1,
		ProposedByID: 10,
		Type:         "VALUE",
		Title:        "Respect",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	params := map[string]string{
		"family_id":    "1",
		"guideline_id": fmt.Sprintf("%d", created.GuidelineID),
	}

	for _, body := range []string{"", "{}"} {
		w := httptest.NewRecorder()
		r := guidelineRequest(http.MethodPost, body, params, middleware.User{ID: 11})
		h.ApproveGuideline(w, r)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 without explicit approved flag (body %q), got %d", body, w.Code)
		}
	}

	for _, approval := range repo.approvals[created.GuidelineID] {
		if approval.UserID == 11 && approval.Approved {
			t.Fatalf("rejected request must not record a vote")
		}
	}

	w := httptest.NewRecorder()
	r := guidelineRequest(http.MethodPost, `{"approved": true}`, params, middleware.User{ID: 11})
	h.ApproveGuideline(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with explicit flag, got %d (%s)", w.Code, w.Body.String())
	}

	var node guidelinedomain.Node
	if err := json.Unmarshal(w.Body.Bytes(), &node); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if node.Status != guidelinedomain.StatusActive {
		t.Fatalf("expected unanimous approval to activate, got %s", node.Status)
	}
}
