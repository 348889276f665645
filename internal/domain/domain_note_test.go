package domain

import (
	"testing"
	"time"
)

func TestCollaboratorSetUpsert(t *testing.T) {
	s := NewCollaboratorSet()

	if !s.Upsert(Collaborator{UID: 1, Permission: PermissionRead}) {
		t.Error("first upsert should report new")
	}
	if !s.Upsert(Collaborator{UID: 2, Permission: PermissionWrite}) {
		t.Error("first upsert should report new")
	}

	// 重复添加只更新权限，不改变顺序
	if s.Upsert(Collaborator{UID: 1, Permission: PermissionWrite}) {
		t.Error("repeated upsert should not report new")
	}

	if s.Len() != 2 {
		t.Fatalf("expected 2 collaborators, got %d", s.Len())
	}

	all := s.All()
	if all[0].UID != 1 || all[1].UID != 2 {
		t.Errorf("insertion order not preserved: %+v", all)
	}
	if all[0].Permission != PermissionWrite {
		t.Errorf("permission not updated in place: %v", all[0].Permission)
	}

	got, ok := s.Get(1)
	if !ok || got.Permission != PermissionWrite {
		t.Errorf("Get(1) = %+v, %v", got, ok)
	}
	if _, ok := s.Get(99); ok {
		t.Error("Get on missing uid should report false")
	}
}

func TestCollaboratorSetAllReturnsCopy(t *testing.T) {
	s := NewCollaboratorSet(Collaborator{UID: 1, Permission: PermissionRead})

	all := s.All()
	all[0].Permission = PermissionWrite

	got, _ := s.Get(1)
	if got.Permission != PermissionRead {
		t.Error("mutating the All() result should not affect the set")
	}
}

func TestNotePermissions(t *testing.T) {
	note := &Note{
		ID:       1,
		OwnerUID: 10,
		Collaborators: NewCollaboratorSet(
			Collaborator{UID: 20, Permission: PermissionWrite, SharedAt: time.Now()},
			Collaborator{UID: 30, Permission: PermissionRead, SharedAt: time.Now()},
		),
	}

	tests := []struct {
		name      string
		uid       int64
		canRead   bool
		canWrite  bool
		permitted Permission
	}{
		{name: "owner", uid: 10, canRead: true, canWrite: true, permitted: PermissionWrite},
		{name: "write collaborator", uid: 20, canRead: true, canWrite: true, permitted: PermissionWrite},
		{name: "read collaborator", uid: 30, canRead: true, canWrite: false, permitted: PermissionRead},
		{name: "outsider", uid: 40, canRead: false, canWrite: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := note.CanRead(tt.uid); got != tt.canRead {
				t.Errorf("CanRead = %v, want %v", got, tt.canRead)
			}
			if got := note.CanWrite(tt.uid); got != tt.canWrite {
				t.Errorf("CanWrite = %v, want %v", got, tt.canWrite)
			}
			p, ok := note.PermissionFor(tt.uid)
			if ok != tt.canRead {
				t.Errorf("PermissionFor ok = %v, want %v", ok, tt.canRead)
			}
			if ok && p != tt.permitted {
				t.Errorf("PermissionFor = %v, want %v", p, tt.permitted)
			}
		})
	}
}

func TestNoteNilCollaborators(t *testing.T) {
	note := &Note{ID: 1, OwnerUID: 10}

	if !note.CanWrite(10) {
		t.Error("owner should always have write permission")
	}
	if note.CanRead(20) {
		t.Error("no collaborators means no access for others")
	}
}

func TestPermissionValidation(t *testing.T) {
	if !PermissionRead.IsValid() || !PermissionWrite.IsValid() {
		t.Error("read and write should be valid permissions")
	}
	if Permission("admin").IsValid() {
		t.Error("unknown permission should be invalid")
	}
	if Permission("").IsValid() {
		t.Error("empty permission should be invalid")
	}
	if PermissionRead.CanWrite() {
		t.Error("read permission should not allow writes")
	}
}
