// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notehive/collab-note-service/global"
	"github.com/notehive/collab-note-service/internal/domain"
	"github.com/notehive/collab-note-service/internal/dto"
	"github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/code"
	"github.com/notehive/collab-note-service/pkg/logger"
	"github.com/notehive/collab-note-service/pkg/timex"
	"github.com/notehive/collab-note-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NoteService 定义笔记业务服务接口
type NoteService interface {
	// List 分页获取用户可见的笔记列表
	List(ctx context.Context, uid int64, params *dto.NoteListRequest) ([]*dto.NoteListItemDTO, *app.Pagination, error)

	// Get 获取单条笔记
	Get(ctx context.Context, uid int64, noteID int64) (*dto.NoteDTO, error)

	// Create 创建笔记，当前用户成为所有者
	Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error)

	// Update 部分更新笔记，需要写权限
	Update(ctx context.Context, uid int64, noteID int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error)

	// Delete 删除笔记，仅所有者可操作
	Delete(ctx context.Context, uid int64, noteID int64) error

	// Share 分享笔记给其他用户，仅所有者可操作
	// 对同一目标用户幂等，重复分享仅更新权限
	Share(ctx context.Context, uid int64, noteID int64, params *dto.NoteShareRequest) (*dto.NoteDTO, error)

	// SetArchived 修改归档状态，仅所有者可操作
	SetArchived(ctx context.Context, uid int64, noteID int64, archived bool) (*dto.NoteDTO, error)

	// CanAccess 判断用户是否可读取笔记，用于 WebSocket 订阅校验
	CanAccess(ctx context.Context, uid int64, noteID int64) bool
}

// noteService 实现 NoteService 接口
type noteService struct {
	noteRepo domain.NoteRepository
	userRepo domain.UserRepository
	notifier Notifier
	writes   *writequeue.Manager
	config   *ServiceConfig
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo domain.NoteRepository, userRepo domain.UserRepository, notifier Notifier, writes *writequeue.Manager, config *ServiceConfig) NoteService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	return &noteService{
		noteRepo: noteRepo,
		userRepo: userRepo,
		notifier: notifier,
		writes:   writes,
		config:   config,
	}
}

// permissionInfo 构造请求用户视角的权限信息
// 调用方都已通过读权限检查，无记录时兜底为只读
func (s *noteService) permissionInfo(note *domain.Note, uid int64) dto.PermissionInfoDTO {
	p, ok := note.PermissionFor(uid)
	if !ok {
		p = domain.PermissionRead
	}
	return dto.PermissionInfoDTO{
		IsOwnedByCurrentUser: note.IsOwner(uid),
		UserPermission:       string(p),
	}
}

// domainToDTO 将领域模型转换为 DTO
// 协作者列表只对所有者展开，其他用户仅能看到自己的权限状态
func (s *noteService) domainToDTO(ctx context.Context, note *domain.Note, uid int64) *dto.NoteDTO {
	if note == nil {
		return nil
	}
	d := &dto.NoteDTO{
		ID:             note.ID,
		Title:          note.Title,
		Content:        note.Content,
		IsArchived:     note.IsArchived,
		PermissionInfo: s.permissionInfo(note, uid),
		CreatedAt:      timex.Time(note.CreatedAt),
		UpdatedAt:      timex.Time(note.UpdatedAt),
	}
	if note.IsOwner(uid) {
		d.Collaborators = s.collaboratorDTOs(ctx, note)
	}
	return d
}

// collaboratorDTOs 展开协作者并补充用户资料
func (s *noteService) collaboratorDTOs(ctx context.Context, note *domain.Note) []dto.CollaboratorDTO {
	items := note.Collaborators.All()
	if len(items) == 0 {
		return nil
	}

	uids := make([]int64, 0, len(items))
	for _, c := range items {
		uids = append(uids, c.UID)
	}
	users, err := s.userRepo.GetByUIDs(ctx, uids)
	if err != nil {
		global.Logger.Warn("load collaborator profiles failed",
			zap.Int64(logger.FieldNoteID, note.ID),
			zap.Error(err),
		)
	}
	profiles := make(map[int64]*domain.User, len(users))
	for _, u := range users {
		profiles[u.UID] = u
	}

	out := make([]dto.CollaboratorDTO, 0, len(items))
	for _, c := range items {
		d := dto.CollaboratorDTO{
			UID:        c.UID,
			Permission: string(c.Permission),
			SharedAt:   timex.Time(c.SharedAt),
		}
		if u, ok := profiles[c.UID]; ok {
			d.Nickname = u.Nickname
			d.Email = u.Email
		}
		out = append(out, d)
	}
	return out
}

func (s *noteService) domainToListItemDTO(note *domain.Note, uid int64) *dto.NoteListItemDTO {
	return &dto.NoteListItemDTO{
		ID:             note.ID,
		Title:          note.Title,
		IsArchived:     note.IsArchived,
		PermissionInfo: s.permissionInfo(note, uid),
		CreatedAt:      timex.Time(note.CreatedAt),
		UpdatedAt:      timex.Time(note.UpdatedAt),
	}
}

// mustGetNote 获取笔记并校验读权限
// 笔记不存在返回 ErrorNoteNotFound，存在但无权限返回 ErrorNoteForbidden
func (s *noteService) mustGetNote(ctx context.Context, uid int64, noteID int64) (*domain.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorNoteGetFail.WithDetails(err.Error())
	}
	if !note.CanRead(uid) {
		return nil, code.ErrorNoteForbidden
	}
	return note, nil
}

// List 分页获取用户可见的笔记列表
func (s *noteService) List(ctx context.Context, uid int64, params *dto.NoteListRequest) ([]*dto.NoteListItemDTO, *app.Pagination, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = s.config.Note.DefaultPageSize
	}
	if pageSize > s.config.Note.MaxPageSize {
		pageSize = s.config.Note.MaxPageSize
	}

	// 首页先做存在性检查，没有任何可见笔记时跳过 count 和查询
	if page == 1 {
		exists, err := s.noteRepo.HasAnyByMember(ctx, uid, params.ShowArchived)
		if err != nil {
			return nil, nil, code.ErrorNoteListFail.WithDetails(err.Error())
		}
		if !exists {
			pagination := app.NewPagination(page, pageSize, 0)
			return []*dto.NoteListItemDTO{}, &pagination, nil
		}
	}

	total, err := s.noteRepo.CountByMember(ctx, uid, params.ShowArchived)
	if err != nil {
		return nil, nil, code.ErrorNoteListFail.WithDetails(err.Error())
	}

	pagination := app.NewPagination(page, pageSize, total)
	if total == 0 {
		return []*dto.NoteListItemDTO{}, &pagination, nil
	}

	notes, err := s.noteRepo.ListByMember(ctx, uid, params.ShowArchived, page, pageSize)
	if err != nil {
		return nil, nil, code.ErrorNoteListFail.WithDetails(err.Error())
	}

	items := make([]*dto.NoteListItemDTO, 0, len(notes))
	for _, note := range notes {
		items = append(items, s.domainToListItemDTO(note, uid))
	}
	return items, &pagination, nil
}

// Get 获取单条笔记
func (s *noteService) Get(ctx context.Context, uid int64, noteID int64) (*dto.NoteDTO, error) {
	note, err := s.mustGetNote(ctx, uid, noteID)
	if err != nil {
		return nil, err
	}
	return s.domainToDTO(ctx, note, uid), nil
}

// Create 创建笔记
func (s *noteService) Create(ctx context.Context, uid int64, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, code.ErrorNoteTitleRequired
	}

	note, err := s.noteRepo.Create(ctx, &domain.Note{
		OwnerUID: uid,
		Title:    title,
		Content:  params.Content,
	})
	if err != nil {
		return nil, code.ErrorNoteCreateFail.WithDetails(err.Error())
	}

	global.Logger.Info("note created",
		zap.Int64(logger.FieldUID, uid),
		zap.Int64(logger.FieldNoteID, note.ID),
	)
	return s.domainToDTO(ctx, note, uid), nil
}

// Update 部分更新笔记
// 仅覆盖请求中出现的字段，标题不允许被清空
func (s *noteService) Update(ctx context.Context, uid int64, noteID int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	note, err := s.mustGetNote(ctx, uid, noteID)
	if err != nil {
		return nil, err
	}
	if !note.CanWrite(uid) {
		return nil, code.ErrorNoteForbidden
	}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return nil, code.ErrorNoteTitleRequired
		}
		note.Title = title
	}
	if params.Content != nil {
		note.Content = *params.Content
	}

	updated, err := s.noteRepo.Update(ctx, note)
	if err != nil {
		return nil, code.ErrorNoteUpdateFail.WithDetails(err.Error())
	}

	s.notifier.NotifyNoteChanged(noteID, fmt.Sprintf("%s updated note %q", s.actorName(ctx, uid), updated.Title), uid)
	return s.domainToDTO(ctx, updated, uid), nil
}

// actorName 获取操作者昵称用于通知文案，查询失败时退化为空串
func (s *noteService) actorName(ctx context.Context, uid int64) string {
	actor, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		global.Logger.Warn("load actor profile failed",
			zap.Int64(logger.FieldUID, uid),
			zap.Error(err),
		)
		return "Someone"
	}
	return actor.Nickname
}

// Delete 删除笔记，仅所有者可操作
func (s *noteService) Delete(ctx context.Context, uid int64, noteID int64) error {
	note, err := s.mustGetNote(ctx, uid, noteID)
	if err != nil {
		return err
	}
	// 协作者即使有写权限也不能删除
	if !note.IsOwner(uid) {
		return code.ErrorNoteForbidden
	}

	if err := s.noteRepo.Delete(ctx, noteID); err != nil {
		return code.ErrorNoteDeleteFail.WithDetails(err.Error())
	}

	// 删除不发通知
	global.Logger.Info("note deleted",
		zap.Int64(logger.FieldUID, uid),
		zap.Int64(logger.FieldNoteID, noteID),
	)
	return nil
}

// Share 分享笔记给其他用户
// 通过按笔记串行的写队列执行，并发分享同一笔记时不会相互覆盖
func (s *noteService) Share(ctx context.Context, uid int64, noteID int64, params *dto.NoteShareRequest) (*dto.NoteDTO, error) {
	permission := domain.Permission(params.Permission)
	if !permission.IsValid() {
		return nil, code.ErrorNotePermissionInvalid
	}

	note, err := s.mustGetNote(ctx, uid, noteID)
	if err != nil {
		return nil, err
	}
	if !note.IsOwner(uid) {
		return nil, code.ErrorNoteForbidden
	}

	target, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorShareTargetNotFound
		}
		return nil, code.ErrorNoteShareFail.WithDetails(err.Error())
	}
	// 所有者本身不是协作者
	if target.UID == note.OwnerUID {
		return nil, code.ErrorInvalidParams.WithDetails("cannot share a note with its owner")
	}

	err = s.writes.Execute(ctx, noteID, func() error {
		return s.noteRepo.UpsertCollaborator(ctx, noteID, domain.Collaborator{
			UID:        target.UID,
			Permission: permission,
		})
	})
	if err != nil {
		if errors.Is(err, writequeue.ErrQueueFull) {
			return nil, code.ErrorTooManyRequests
		}
		return nil, code.ErrorNoteShareFail.WithDetails(err.Error())
	}

	global.Logger.Info("note shared",
		zap.Int64(logger.FieldUID, uid),
		zap.Int64(logger.FieldNoteID, noteID),
		zap.Int64("targetUid", target.UID),
		zap.String(logger.FieldPermission, string(permission)),
	)
	// 只通知被分享者，其他协作者不感知
	s.notifier.NotifyUser(target.UID, noteID,
		fmt.Sprintf("%s shared note %q with you (%s)", s.actorName(ctx, uid), note.Title, permission))

	updated, err := s.mustGetNote(ctx, uid, noteID)
	if err != nil {
		return nil, err
	}
	return s.domainToDTO(ctx, updated, uid), nil
}

// SetArchived 修改归档状态，仅所有者可操作
func (s *noteService) SetArchived(ctx context.Context, uid int64, noteID int64, archived bool) (*dto.NoteDTO, error) {
	note, err := s.mustGetNote(ctx, uid, noteID)
	if err != nil {
		return nil, err
	}
	if !note.IsOwner(uid) {
		return nil, code.ErrorNoteForbidden
	}

	if note.IsArchived != archived {
		if err := s.noteRepo.UpdateArchived(ctx, noteID, archived); err != nil {
			return nil, code.ErrorNoteArchiveFail.WithDetails(err.Error())
		}
		note.IsArchived = archived
		s.notifier.NotifyNoteChanged(noteID, fmt.Sprintf("Note %q archive state changed", note.Title), uid)
	}
	return s.domainToDTO(ctx, note, uid), nil
}

// CanAccess 判断用户是否可读取笔记
func (s *noteService) CanAccess(ctx context.Context, uid int64, noteID int64) bool {
	_, err := s.mustGetNote(ctx, uid, noteID)
	return err == nil
}
