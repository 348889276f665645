package dao

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/notehive/collab-note-service/internal/domain"
	"github.com/notehive/collab-note-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	return db
}

func newTestRepos(t *testing.T) (domain.NoteRepository, domain.UserRepository) {
	t.Helper()
	d := New(newTestDB(t))
	return NewNoteRepository(d), NewUserRepository(d)
}

func seedUser(t *testing.T, users domain.UserRepository, email, nickname string) *domain.User {
	t.Helper()
	u, err := users.Create(context.Background(), &domain.User{Email: email, Nickname: nickname, Password: "x"})
	require.NoError(t, err)
	return u
}

func TestNoteRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	notes, users := newTestRepos(t)
	owner := seedUser(t, users, "owner@example.com", "owner")

	created, err := notes.Create(ctx, &domain.Note{OwnerUID: owner.UID, Title: "first", Content: "body"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := notes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, owner.UID, got.OwnerUID)
	assert.False(t, got.IsArchived)

	got.Title = "renamed"
	got.Content = "edited"
	updated, err := notes.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "edited", updated.Content)

	require.NoError(t, notes.UpdateArchived(ctx, created.ID, true))
	got, err = notes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)

	require.NoError(t, notes.Delete(ctx, created.ID))
	_, err = notes.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNoteRepositoryUpsertCollaborator(t *testing.T) {
	ctx := context.Background()
	notes, users := newTestRepos(t)
	owner := seedUser(t, users, "owner@example.com", "owner")
	alice := seedUser(t, users, "alice@example.com", "alice")
	bob := seedUser(t, users, "bob@example.com", "bob")

	note, err := notes.Create(ctx, &domain.Note{OwnerUID: owner.UID, Title: "shared"})
	require.NoError(t, err)

	require.NoError(t, notes.UpsertCollaborator(ctx, note.ID, domain.Collaborator{UID: alice.UID, Permission: domain.PermissionRead}))
	require.NoError(t, notes.UpsertCollaborator(ctx, note.ID, domain.Collaborator{UID: bob.UID, Permission: domain.PermissionWrite}))

	// 重复写入同一协作者只更新权限
	require.NoError(t, notes.UpsertCollaborator(ctx, note.ID, domain.Collaborator{UID: alice.UID, Permission: domain.PermissionWrite}))

	got, err := notes.GetByID(ctx, note.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Collaborators.Len())

	// 加入顺序保持不变
	all := got.Collaborators.All()
	assert.Equal(t, alice.UID, all[0].UID)
	assert.Equal(t, bob.UID, all[1].UID)
	assert.Equal(t, domain.PermissionWrite, all[0].Permission)
}

func TestNoteRepositoryListByMember(t *testing.T) {
	ctx := context.Background()
	notes, users := newTestRepos(t)
	owner := seedUser(t, users, "owner@example.com", "owner")
	member := seedUser(t, users, "member@example.com", "member")
	outsider := seedUser(t, users, "outsider@example.com", "outsider")

	owned, err := notes.Create(ctx, &domain.Note{OwnerUID: owner.UID, Title: "mine"})
	require.NoError(t, err)
	shared, err := notes.Create(ctx, &domain.Note{OwnerUID: owner.UID, Title: "ours"})
	require.NoError(t, err)
	require.NoError(t, notes.UpsertCollaborator(ctx, shared.ID, domain.Collaborator{UID: member.UID, Permission: domain.PermissionRead}))

	// 所有者能看到两条
	total, err := notes.CountByMember(ctx, owner.UID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// 协作者只看到被分享的
	list, err := notes.ListByMember(ctx, member.UID, false, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shared.ID, list[0].ID)

	// 无关用户什么都看不到
	total, err = notes.CountByMember(ctx, outsider.UID, false)
	require.NoError(t, err)
	assert.Zero(t, total)
	has, err := notes.HasAnyByMember(ctx, outsider.UID, false)
	require.NoError(t, err)
	assert.False(t, has)
	has, err = notes.HasAnyByMember(ctx, member.UID, false)
	require.NoError(t, err)
	assert.True(t, has)

	// 归档后从默认列表消失，进入归档列表
	require.NoError(t, notes.UpdateArchived(ctx, owned.ID, true))
	total, err = notes.CountByMember(ctx, owner.UID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	list, err = notes.ListByMember(ctx, owner.UID, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, owned.ID, list[0].ID)

	// 分页越界返回空页
	list, err = notes.ListByMember(ctx, owner.UID, false, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNoteRepositoryPruneOrphanCollaborators(t *testing.T) {
	ctx := context.Background()
	d := New(newTestDB(t))
	notes := NewNoteRepository(d)
	users := NewUserRepository(d)

	owner := seedUser(t, users, "owner@example.com", "owner")
	ghost := seedUser(t, users, "ghost@example.com", "ghost")

	note, err := notes.Create(ctx, &domain.Note{OwnerUID: owner.UID, Title: "haunted"})
	require.NoError(t, err)
	require.NoError(t, notes.UpsertCollaborator(ctx, note.ID, domain.Collaborator{UID: ghost.UID, Permission: domain.PermissionRead}))

	// 标记用户删除后其协作者记录成为孤儿
	require.NoError(t, d.DB().Model(&model.User{}).Where("uid = ?", ghost.UID).Update("is_deleted", true).Error)

	pruned, err := notes.PruneOrphanCollaborators(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	got, err := notes.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Collaborators.Len())
}
