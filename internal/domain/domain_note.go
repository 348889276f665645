// Package domain 定义领域模型和接口
package domain

import "time"

// Permission 协作者权限级别
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// IsValid 判断权限值是否合法
func (p Permission) IsValid() bool {
	return p == PermissionRead || p == PermissionWrite
}

// CanWrite 判断权限是否允许修改
func (p Permission) CanWrite() bool {
	return p == PermissionWrite
}

// Collaborator 笔记协作者
type Collaborator struct {
	UID        int64
	Permission Permission
	SharedAt   time.Time
}

// CollaboratorSet 按加入顺序保存的协作者集合
// 同一用户重复分享时原位更新权限，保持首次加入的顺序
type CollaboratorSet struct {
	items []Collaborator
	index map[int64]int
}

func NewCollaboratorSet(items ...Collaborator) *CollaboratorSet {
	s := &CollaboratorSet{index: make(map[int64]int, len(items))}
	for _, c := range items {
		s.Upsert(c)
	}
	return s
}

// Upsert 添加或更新协作者，返回是否为新增
func (s *CollaboratorSet) Upsert(c Collaborator) bool {
	if i, ok := s.index[c.UID]; ok {
		s.items[i].Permission = c.Permission
		return false
	}
	s.index[c.UID] = len(s.items)
	s.items = append(s.items, c)
	return true
}

// Get 获取指定用户的协作者记录
func (s *CollaboratorSet) Get(uid int64) (Collaborator, bool) {
	if i, ok := s.index[uid]; ok {
		return s.items[i], true
	}
	return Collaborator{}, false
}

func (s *CollaboratorSet) Len() int {
	return len(s.items)
}

// All 按加入顺序返回全部协作者
func (s *CollaboratorSet) All() []Collaborator {
	out := make([]Collaborator, len(s.items))
	copy(out, s.items)
	return out
}

// Note 笔记领域模型
type Note struct {
	ID            int64
	OwnerUID      int64
	Title         string
	Content       string
	IsArchived    bool
	Collaborators *CollaboratorSet
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOwner 判断用户是否为笔记所有者
func (n *Note) IsOwner(uid int64) bool {
	return n.OwnerUID == uid
}

// PermissionFor 返回用户对笔记的权限
// 所有者始终拥有写权限，非协作者无任何权限
func (n *Note) PermissionFor(uid int64) (Permission, bool) {
	if n.IsOwner(uid) {
		return PermissionWrite, true
	}
	if n.Collaborators == nil {
		return "", false
	}
	c, ok := n.Collaborators.Get(uid)
	if !ok {
		return "", false
	}
	return c.Permission, true
}

// CanRead 判断用户是否可读取笔记
func (n *Note) CanRead(uid int64) bool {
	_, ok := n.PermissionFor(uid)
	return ok
}

// CanWrite 判断用户是否可修改笔记
func (n *Note) CanWrite(uid int64) bool {
	p, ok := n.PermissionFor(uid)
	return ok && p.CanWrite()
}
