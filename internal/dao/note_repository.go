package dao

import (
	"context"
	"time"

	"github.com/notehive/collab-note-service/internal/domain"
	"github.com/notehive/collab-note-service/internal/model"
	"github.com/notehive/collab-note-service/pkg/timex"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note, collaborators []*model.NoteCollaborator) *domain.Note {
	if m == nil {
		return nil
	}
	set := domain.NewCollaboratorSet()
	for _, c := range collaborators {
		set.Upsert(domain.Collaborator{
			UID:        c.UID,
			Permission: domain.Permission(c.Permission),
			SharedAt:   time.Time(c.CreatedAt),
		})
	}
	return &domain.Note{
		ID:            m.ID,
		OwnerUID:      m.OwnerUID,
		Title:         m.Title,
		Content:       m.Content,
		IsArchived:    m.IsArchived,
		Collaborators: set,
		CreatedAt:     time.Time(m.CreatedAt),
		UpdatedAt:     time.Time(m.UpdatedAt),
	}
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(note *domain.Note) *model.Note {
	if note == nil {
		return nil
	}
	return &model.Note{
		ID:         note.ID,
		OwnerUID:   note.OwnerUID,
		Title:      note.Title,
		Content:    note.Content,
		IsArchived: note.IsArchived,
		CreatedAt:  timex.Time(note.CreatedAt),
		UpdatedAt:  timex.Time(note.UpdatedAt),
	}
}

// collaboratorsByNoteIDs 批量加载协作者，按加入顺序排列
func (r *noteRepository) collaboratorsByNoteIDs(ctx context.Context, noteIDs []int64) (map[int64][]*model.NoteCollaborator, error) {
	if len(noteIDs) == 0 {
		return map[int64][]*model.NoteCollaborator{}, nil
	}
	var rows []*model.NoteCollaborator
	err := r.dao.db.WithContext(ctx).
		Where("note_id IN ?", noteIDs).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	grouped := make(map[int64][]*model.NoteCollaborator, len(noteIDs))
	for _, row := range rows {
		grouped[row.NoteID] = append(grouped[row.NoteID], row)
	}
	return grouped, nil
}

// GetByID 根据ID获取笔记（含协作者）
func (r *noteRepository) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	var m model.Note
	if err := r.dao.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	collaborators, err := r.collaboratorsByNoteIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m, collaborators[id]), nil
}

// Create 创建笔记
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m, nil), nil
}

// Update 更新笔记内容字段
func (r *noteRepository) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	m.UpdatedAt = timex.Now()
	err := r.dao.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", m.ID).
		Select("title", "content", "updated_at").
		Updates(m).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, m.ID)
}

// UpdateArchived 更新笔记归档状态
func (r *noteRepository) UpdateArchived(ctx context.Context, id int64, archived bool) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_archived": archived,
			"updated_at":  timex.Now(),
		}).Error
}

// Delete 删除笔记及其协作者记录
func (r *noteRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", id).Delete(&model.NoteCollaborator{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Note{}).Error
	})
}

// memberScope 过滤用户可见的笔记：自己拥有的或参与协作的，按归档状态筛选
func (r *noteRepository) memberScope(uid int64, archived bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"(owner_uid = ? OR id IN (?)) AND is_archived = ?",
			uid,
			r.dao.db.Model(&model.NoteCollaborator{}).Select("note_id").Where("uid = ?", uid),
			archived,
		)
	}
}

// ListByMember 分页获取用户可见的笔记列表，按更新时间倒序
func (r *noteRepository) ListByMember(ctx context.Context, uid int64, archived bool, page, pageSize int) ([]*domain.Note, error) {
	var rows []*model.Note
	err := r.dao.db.WithContext(ctx).
		Scopes(r.memberScope(uid, archived)).
		Order("updated_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	noteIDs := make([]int64, 0, len(rows))
	for _, m := range rows {
		noteIDs = append(noteIDs, m.ID)
	}
	collaborators, err := r.collaboratorsByNoteIDs(ctx, noteIDs)
	if err != nil {
		return nil, err
	}

	notes := make([]*domain.Note, 0, len(rows))
	for _, m := range rows {
		notes = append(notes, r.toDomain(m, collaborators[m.ID]))
	}
	return notes, nil
}

// CountByMember 获取用户可见的笔记数量
func (r *noteRepository) CountByMember(ctx context.Context, uid int64, archived bool) (int64, error) {
	var count int64
	err := r.dao.db.WithContext(ctx).
		Model(&model.Note{}).
		Scopes(r.memberScope(uid, archived)).
		Count(&count).Error
	return count, err
}

// HasAnyByMember 判断用户是否存在任何可见笔记
// 只取一条主键，比 COUNT 轻量，供列表查询在空结果时短路
func (r *noteRepository) HasAnyByMember(ctx context.Context, uid int64, archived bool) (bool, error) {
	var id int64
	err := r.dao.db.WithContext(ctx).
		Model(&model.Note{}).
		Scopes(r.memberScope(uid, archived)).
		Select("id").
		Limit(1).
		Scan(&id).Error
	if err != nil {
		return false, err
	}
	return id != 0, nil
}

// UpsertCollaborator 添加或更新协作者权限
// (note_id, uid) 冲突时仅覆盖 permission，保留首次加入的顺序
func (r *noteRepository) UpsertCollaborator(ctx context.Context, noteID int64, c domain.Collaborator) error {
	row := &model.NoteCollaborator{
		NoteID:     noteID,
		UID:        c.UID,
		Permission: string(c.Permission),
		CreatedAt:  timex.Now(),
	}
	return r.dao.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "note_id"}, {Name: "uid"}},
			DoUpdates: clause.Assignments(map[string]any{"permission": row.Permission}),
		}).
		Create(row).Error
}

// PruneOrphanCollaborators 清理指向已删除用户的协作者记录
func (r *noteRepository) PruneOrphanCollaborators(ctx context.Context) (int64, error) {
	res := r.dao.db.WithContext(ctx).
		Where("uid NOT IN (?)",
			r.dao.db.Model(&model.User{}).Select("uid").Where("is_deleted = ?", false),
		).
		Delete(&model.NoteCollaborator{})
	return res.RowsAffected, res.Error
}
