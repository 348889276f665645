package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/notehive/collab-note-service/internal/domain"
	"github.com/notehive/collab-note-service/internal/dto"
	"github.com/notehive/collab-note-service/pkg/code"
	"github.com/notehive/collab-note-service/pkg/writequeue"

	"gorm.io/gorm"
)

type mockNoteRepo struct {
	domain.NoteRepository
	mu         sync.Mutex
	notes      map[int64]*domain.Note
	nextID     int64
	deletedIDs []int64
	upserts    []domain.Collaborator
}

func newMockNoteRepo(notes ...*domain.Note) *mockNoteRepo {
	m := &mockNoteRepo{notes: make(map[int64]*domain.Note), nextID: 100}
	for _, n := range notes {
		if n.Collaborators == nil {
			n.Collaborators = domain.NewCollaboratorSet()
		}
		m.notes[n.ID] = n
	}
	return m
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

func (m *mockNoteRepo) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	note.ID = m.nextID
	note.Collaborators = domain.NewCollaboratorSet()
	note.CreatedAt = time.Now()
	note.UpdatedAt = note.CreatedAt
	m.notes[note.ID] = note
	return note, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note.UpdatedAt = time.Now()
	m.notes[note.ID] = note
	return note, nil
}

func (m *mockNoteRepo) UpdateArchived(ctx context.Context, id int64, archived bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notes[id]; ok {
		n.IsArchived = archived
	}
	return nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notes, id)
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockNoteRepo) ListByMember(ctx context.Context, uid int64, archived bool, page, pageSize int) ([]*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Note
	for _, n := range m.notes {
		if n.CanRead(uid) && n.IsArchived == archived {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNoteRepo) CountByMember(ctx context.Context, uid int64, archived bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, n := range m.notes {
		if n.CanRead(uid) && n.IsArchived == archived {
			total++
		}
	}
	return total, nil
}

func (m *mockNoteRepo) HasAnyByMember(ctx context.Context, uid int64, archived bool) (bool, error) {
	total, _ := m.CountByMember(ctx, uid, archived)
	return total > 0, nil
}

func (m *mockNoteRepo) UpsertCollaborator(ctx context.Context, noteID int64, c domain.Collaborator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[noteID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if c.SharedAt.IsZero() {
		c.SharedAt = time.Now()
	}
	n.Collaborators.Upsert(c)
	m.upserts = append(m.upserts, c)
	return nil
}

type mockUserRepo struct {
	domain.UserRepository
	users map[int64]*domain.User
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	m := &mockUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		m.users[u.UID] = u
	}
	return m
}

func (m *mockUserRepo) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	u, ok := m.users[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByUIDs(ctx context.Context, uids []int64) ([]*domain.User, error) {
	var out []*domain.User
	for _, uid := range uids {
		if u, ok := m.users[uid]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type notification struct {
	noteID     int64
	message    string
	excludeUID int64
}

type userNotification struct {
	uid     int64
	noteID  int64
	message string
}

type fakeNotifier struct {
	mu        sync.Mutex
	calls     []notification
	userCalls []userNotification
}

func (f *fakeNotifier) NotifyNoteChanged(noteID int64, message string, excludeUID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notification{noteID: noteID, message: message, excludeUID: excludeUID})
}

func (f *fakeNotifier) NotifyUser(uid int64, noteID int64, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls = append(f.userCalls, userNotification{uid: uid, noteID: noteID, message: message})
}

func (f *fakeNotifier) all() []notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notification, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeNotifier) allUser() []userNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]userNotification, len(f.userCalls))
	copy(out, f.userCalls)
	return out
}

func newTestNoteService(t *testing.T, noteRepo *mockNoteRepo, userRepo *mockUserRepo, notifier Notifier) NoteService {
	t.Helper()
	writes := writequeue.New(nil, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = writes.Shutdown(ctx)
	})
	if notifier == nil {
		notifier = NewNopNotifier()
	}
	return NewNoteService(noteRepo, userRepo, notifier, writes, nil)
}

func assertCode(t *testing.T, err error, want *code.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %d, got nil", want.Code())
	}
	var c *code.Code
	if !errors.As(err, &c) {
		t.Fatalf("expected *code.Code error, got %T: %v", err, err)
	}
	if c.Code() != want.Code() {
		t.Fatalf("expected error code %d (%s), got %d (%s)", want.Code(), want.Msg(), c.Code(), c.Msg())
	}
}

func strPtr(s string) *string { return &s }

// 基础数据：笔记 1 属于用户 1，用户 2 可写，用户 3 只读，用户 4 无权限
func permissionFixture() (*mockNoteRepo, *mockUserRepo) {
	noteRepo := newMockNoteRepo(&domain.Note{
		ID:       1,
		OwnerUID: 1,
		Title:    "meeting notes",
		Content:  "agenda",
		Collaborators: domain.NewCollaboratorSet(
			domain.Collaborator{UID: 2, Permission: domain.PermissionWrite, SharedAt: time.Now()},
			domain.Collaborator{UID: 3, Permission: domain.PermissionRead, SharedAt: time.Now()},
		),
	})
	userRepo := newMockUserRepo(
		&domain.User{UID: 1, Email: "owner@example.com", Nickname: "owner"},
		&domain.User{UID: 2, Email: "writer@example.com", Nickname: "writer"},
		&domain.User{UID: 3, Email: "reader@example.com", Nickname: "reader"},
		&domain.User{UID: 4, Email: "outsider@example.com", Nickname: "outsider"},
	)
	return noteRepo, userRepo
}

func TestNotePermissionInfoDefaultsToRead(t *testing.T) {
	svc := &noteService{}
	note := &domain.Note{ID: 7, OwnerUID: 1, Title: "solo"}

	info := svc.permissionInfo(note, 42)
	if info.UserPermission != "read" {
		t.Errorf("missing collaborator entry should default to read, got %q", info.UserPermission)
	}
	if info.IsOwnedByCurrentUser {
		t.Error("non-owner should not be flagged as owner")
	}
}

func TestNoteGetPermissions(t *testing.T) {
	tests := []struct {
		name     string
		uid      int64
		noteID   int64
		wantErr  *code.Code
		wantPerm string
		wantOwn  bool
	}{
		{name: "owner can read", uid: 1, noteID: 1, wantPerm: "write", wantOwn: true},
		{name: "write collaborator can read", uid: 2, noteID: 1, wantPerm: "write"},
		{name: "read collaborator can read", uid: 3, noteID: 1, wantPerm: "read"},
		{name: "outsider gets forbidden", uid: 4, noteID: 1, wantErr: code.ErrorNoteForbidden},
		{name: "missing note gets not found", uid: 1, noteID: 99, wantErr: code.ErrorNoteNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noteRepo, userRepo := permissionFixture()
			svc := newTestNoteService(t, noteRepo, userRepo, nil)

			got, err := svc.Get(context.Background(), tt.uid, tt.noteID)
			if tt.wantErr != nil {
				assertCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.PermissionInfo.UserPermission != tt.wantPerm {
				t.Errorf("permission mismatch: got %q, want %q", got.PermissionInfo.UserPermission, tt.wantPerm)
			}
			if got.PermissionInfo.IsOwnedByCurrentUser != tt.wantOwn {
				t.Errorf("ownership mismatch: got %v, want %v", got.PermissionInfo.IsOwnedByCurrentUser, tt.wantOwn)
			}
		})
	}
}

func TestNoteGetCollaboratorVisibility(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	svc := newTestNoteService(t, noteRepo, userRepo, nil)
	ctx := context.Background()

	// 所有者能看到完整协作者列表
	got, err := svc.Get(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Get as owner failed: %v", err)
	}
	if len(got.Collaborators) != 2 {
		t.Fatalf("owner should see 2 collaborators, got %d", len(got.Collaborators))
	}
	if got.Collaborators[0].UID != 2 || got.Collaborators[1].UID != 3 {
		t.Errorf("collaborators out of order: %+v", got.Collaborators)
	}
	if got.Collaborators[0].Nickname != "writer" {
		t.Errorf("collaborator profile not resolved: %+v", got.Collaborators[0])
	}

	// 协作者只能看到自己的权限状态
	got, err = svc.Get(ctx, 3, 1)
	if err != nil {
		t.Fatalf("Get as collaborator failed: %v", err)
	}
	if got.Collaborators != nil {
		t.Errorf("collaborator should not see the collaborator list, got %+v", got.Collaborators)
	}
}

func TestNoteCreate(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	svc := newTestNoteService(t, noteRepo, userRepo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: ""})
	assertCode(t, err, code.ErrorNoteTitleRequired)

	_, err = svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "   \t"})
	assertCode(t, err, code.ErrorNoteTitleRequired)

	got, err := svc.Create(ctx, 1, &dto.NoteCreateRequest{Title: "new note", Content: "body"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got.ID == 0 {
		t.Error("created note should have an ID")
	}
	if !got.PermissionInfo.IsOwnedByCurrentUser || got.PermissionInfo.UserPermission != "write" {
		t.Errorf("creator should own the note: %+v", got.PermissionInfo)
	}
}

func TestNoteCreateTrimsTitle(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	svc := newTestNoteService(t, noteRepo, userRepo, nil)

	got, err := svc.Create(context.Background(), 1, &dto.NoteCreateRequest{Title: "  padded title  "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got.Title != "padded title" {
		t.Errorf("title should be stored trimmed, got %q", got.Title)
	}
}

func TestNoteUpdate(t *testing.T) {
	tests := []struct {
		name    string
		uid     int64
		params  *dto.NoteUpdateRequest
		wantErr *code.Code
	}{
		{name: "owner can update", uid: 1, params: &dto.NoteUpdateRequest{Title: strPtr("updated")}},
		{name: "write collaborator can update", uid: 2, params: &dto.NoteUpdateRequest{Content: strPtr("new body")}},
		{name: "read collaborator is forbidden", uid: 3, params: &dto.NoteUpdateRequest{Title: strPtr("x")}, wantErr: code.ErrorNoteForbidden},
		{name: "outsider gets forbidden", uid: 4, params: &dto.NoteUpdateRequest{Title: strPtr("x")}, wantErr: code.ErrorNoteForbidden},
		{name: "empty title is rejected", uid: 1, params: &dto.NoteUpdateRequest{Title: strPtr("")}, wantErr: code.ErrorNoteTitleRequired},
		{name: "whitespace title is rejected", uid: 1, params: &dto.NoteUpdateRequest{Title: strPtr("   ")}, wantErr: code.ErrorNoteTitleRequired},
		{name: "padded title is trimmed", uid: 1, params: &dto.NoteUpdateRequest{Title: strPtr("  tidy  ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noteRepo, userRepo := permissionFixture()
			svc := newTestNoteService(t, noteRepo, userRepo, nil)

			got, err := svc.Update(context.Background(), tt.uid, 1, tt.params)
			if tt.wantErr != nil {
				assertCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if tt.params.Title != nil && got.Title != strings.TrimSpace(*tt.params.Title) {
				t.Errorf("title not updated: got %q", got.Title)
			}
			if tt.params.Content != nil && got.Content != *tt.params.Content {
				t.Errorf("content not updated: got %q", got.Content)
			}
		})
	}
}

func TestNoteUpdatePartialFields(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	svc := newTestNoteService(t, noteRepo, userRepo, nil)

	// 只更新内容，标题保持不变
	got, err := svc.Update(context.Background(), 1, 1, &dto.NoteUpdateRequest{Content: strPtr("only content")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Title != "meeting notes" {
		t.Errorf("title should be unchanged, got %q", got.Title)
	}
	if got.Content != "only content" {
		t.Errorf("content not updated, got %q", got.Content)
	}
}

func TestNoteDelete(t *testing.T) {
	tests := []struct {
		name    string
		uid     int64
		wantErr *code.Code
	}{
		{name: "owner can delete", uid: 1},
		{name: "write collaborator cannot delete", uid: 2, wantErr: code.ErrorNoteForbidden},
		{name: "read collaborator cannot delete", uid: 3, wantErr: code.ErrorNoteForbidden},
		{name: "outsider gets forbidden", uid: 4, wantErr: code.ErrorNoteForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noteRepo, userRepo := permissionFixture()
			svc := newTestNoteService(t, noteRepo, userRepo, nil)

			err := svc.Delete(context.Background(), tt.uid, 1)
			if tt.wantErr != nil {
				assertCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if len(noteRepo.deletedIDs) != 1 || noteRepo.deletedIDs[0] != 1 {
				t.Errorf("note not deleted: %v", noteRepo.deletedIDs)
			}
			// 删除后对所有用户都不可见
			_, err = svc.Get(context.Background(), 1, 1)
			assertCode(t, err, code.ErrorNoteNotFound)
			_, err = svc.Get(context.Background(), 3, 1)
			assertCode(t, err, code.ErrorNoteNotFound)
		})
	}
}

func TestNoteShare(t *testing.T) {
	tests := []struct {
		name    string
		uid     int64
		params  *dto.NoteShareRequest
		wantUID int64
		wantErr *code.Code
	}{
		{name: "owner can share", uid: 1, params: &dto.NoteShareRequest{Email: "outsider@example.com", Permission: "read"}, wantUID: 4},
		{name: "collaborator cannot share", uid: 2, params: &dto.NoteShareRequest{Email: "outsider@example.com", Permission: "read"}, wantErr: code.ErrorNoteForbidden},
		{name: "outsider gets forbidden", uid: 4, params: &dto.NoteShareRequest{Email: "reader@example.com", Permission: "read"}, wantErr: code.ErrorNoteForbidden},
		{name: "invalid permission", uid: 1, params: &dto.NoteShareRequest{Email: "outsider@example.com", Permission: "admin"}, wantErr: code.ErrorNotePermissionInvalid},
		{name: "unknown target user", uid: 1, params: &dto.NoteShareRequest{Email: "ghost@example.com", Permission: "read"}, wantErr: code.ErrorShareTargetNotFound},
		{name: "cannot share with owner", uid: 1, params: &dto.NoteShareRequest{Email: "owner@example.com", Permission: "read"}, wantErr: code.ErrorInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noteRepo, userRepo := permissionFixture()
			svc := newTestNoteService(t, noteRepo, userRepo, nil)

			got, err := svc.Share(context.Background(), tt.uid, 1, tt.params)
			if tt.wantErr != nil {
				assertCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Share failed: %v", err)
			}
			found := false
			for _, c := range got.Collaborators {
				if c.UID == tt.wantUID && c.Permission == tt.params.Permission {
					found = true
				}
			}
			if !found {
				t.Errorf("shared collaborator missing from response: %+v", got.Collaborators)
			}
		})
	}
}

func TestNoteShareIdempotent(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	svc := newTestNoteService(t, noteRepo, userRepo, nil)
	ctx := context.Background()

	// 重复分享同一用户只更新权限，不产生重复记录
	if _, err := svc.Share(ctx, 1, 1, &dto.NoteShareRequest{Email: "reader@example.com", Permission: "write"}); err != nil {
		t.Fatalf("re-share failed: %v", err)
	}

	got, err := svc.Get(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Collaborators) != 2 {
		t.Fatalf("collaborator count changed on re-share: got %d, want 2", len(got.Collaborators))
	}
	// 原有顺序保持不变，权限已更新
	if got.Collaborators[0].UID != 2 || got.Collaborators[1].UID != 3 {
		t.Errorf("collaborator order changed: %+v", got.Collaborators)
	}
	if got.Collaborators[1].Permission != "write" {
		t.Errorf("permission not upgraded: got %q, want write", got.Collaborators[1].Permission)
	}
}

func TestNoteSetArchived(t *testing.T) {
	tests := []struct {
		name    string
		uid     int64
		wantErr *code.Code
	}{
		{name: "owner can archive", uid: 1},
		{name: "write collaborator cannot archive", uid: 2, wantErr: code.ErrorNoteForbidden},
		{name: "outsider gets forbidden", uid: 4, wantErr: code.ErrorNoteForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noteRepo, userRepo := permissionFixture()
			svc := newTestNoteService(t, noteRepo, userRepo, nil)

			got, err := svc.SetArchived(context.Background(), tt.uid, 1, true)
			if tt.wantErr != nil {
				assertCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("SetArchived failed: %v", err)
			}
			if !got.IsArchived {
				t.Error("note should be archived")
			}
		})
	}
}

func TestNoteListPagination(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	svc := newTestNoteService(t, noteRepo, userRepo, nil)
	ctx := context.Background()

	// 用户 1 可见 1 条
	items, pagination, err := svc.List(ctx, 1, &dto.NoteListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 note, got %d", len(items))
	}
	if pagination.CurrentPage != 1 || pagination.TotalPages != 1 || pagination.TotalNotes != 1 {
		t.Errorf("pagination mismatch: %+v", pagination)
	}
	if pagination.HasNextPage || pagination.HasPrevPage {
		t.Errorf("single page should have no neighbors: %+v", pagination)
	}

	// 无可见笔记时返回空列表，totalPages 为 0
	items, pagination, err = svc.List(ctx, 99, &dto.NoteListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list, got %d items", len(items))
	}
	if pagination.TotalPages != 0 || pagination.TotalNotes != 0 {
		t.Errorf("empty result pagination mismatch: %+v", pagination)
	}
}

func TestNoteUpdateNotifiesExcludingActor(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	notifier := &fakeNotifier{}
	svc := newTestNoteService(t, noteRepo, userRepo, notifier)

	if _, err := svc.Update(context.Background(), 2, 1, &dto.NoteUpdateRequest{Content: strPtr("edited")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	calls := notifier.all()
	if len(calls) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(calls))
	}
	if calls[0].noteID != 1 {
		t.Errorf("notification for wrong note: %d", calls[0].noteID)
	}
	if calls[0].excludeUID != 2 {
		t.Errorf("actor should be excluded from the notification, got excludeUID=%d", calls[0].excludeUID)
	}
	// 文案包含操作者昵称和笔记标题
	if !strings.Contains(calls[0].message, "writer") || !strings.Contains(calls[0].message, "meeting notes") {
		t.Errorf("notification message incomplete: %q", calls[0].message)
	}
}

func TestNoteShareNotifiesTargetOnly(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	notifier := &fakeNotifier{}
	svc := newTestNoteService(t, noteRepo, userRepo, notifier)

	if _, err := svc.Share(context.Background(), 1, 1, &dto.NoteShareRequest{Email: "outsider@example.com", Permission: "read"}); err != nil {
		t.Fatalf("Share failed: %v", err)
	}

	if calls := notifier.all(); len(calls) != 0 {
		t.Errorf("share should not broadcast to watchers, got %d broadcasts", len(calls))
	}
	userCalls := notifier.allUser()
	if len(userCalls) != 1 {
		t.Fatalf("expected 1 target notification, got %d", len(userCalls))
	}
	if userCalls[0].uid != 4 || userCalls[0].noteID != 1 {
		t.Errorf("notification misdirected: %+v", userCalls[0])
	}
	if !strings.Contains(userCalls[0].message, "owner") || !strings.Contains(userCalls[0].message, "meeting notes") || !strings.Contains(userCalls[0].message, "read") {
		t.Errorf("notification message incomplete: %q", userCalls[0].message)
	}
}

func TestNoteDeleteSendsNoNotification(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	notifier := &fakeNotifier{}
	svc := newTestNoteService(t, noteRepo, userRepo, notifier)

	if err := svc.Delete(context.Background(), 1, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(notifier.all()) != 0 || len(notifier.allUser()) != 0 {
		t.Error("delete should not notify anyone")
	}
}

func TestNoteListArchivedFilter(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	noteRepo.notes[2] = &domain.Note{
		ID:            2,
		OwnerUID:      1,
		Title:         "old plans",
		IsArchived:    true,
		Collaborators: domain.NewCollaboratorSet(),
	}
	svc := newTestNoteService(t, noteRepo, userRepo, nil)
	ctx := context.Background()

	// 默认只返回未归档的笔记
	items, _, err := svc.List(ctx, 1, &dto.NoteListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != 1 {
		t.Errorf("default listing should exclude archived notes: %+v", items)
	}

	// showArchived 时只返回已归档的笔记
	items, _, err = svc.List(ctx, 1, &dto.NoteListRequest{ShowArchived: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != 2 {
		t.Errorf("archived listing should contain only archived notes: %+v", items)
	}
}

func TestNoteCanAccess(t *testing.T) {
	noteRepo, userRepo := permissionFixture()
	svc := newTestNoteService(t, noteRepo, userRepo, nil)
	ctx := context.Background()

	if !svc.CanAccess(ctx, 1, 1) {
		t.Error("owner should have access")
	}
	if !svc.CanAccess(ctx, 3, 1) {
		t.Error("read collaborator should have access")
	}
	if svc.CanAccess(ctx, 4, 1) {
		t.Error("outsider should not have access")
	}
	if svc.CanAccess(ctx, 1, 999) {
		t.Error("missing note should not be accessible")
	}
}
