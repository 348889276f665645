package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/notehive/collab-note-service/internal/domain"
	"github.com/notehive/collab-note-service/internal/dto"
	"github.com/notehive/collab-note-service/pkg/app"
	"github.com/notehive/collab-note-service/pkg/code"
	"github.com/notehive/collab-note-service/pkg/util"

	"gorm.io/gorm"
)

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.UID = int64(len(m.users) + 1000)
	m.users[user.UID] = user
	return user, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, password string, uid int64) error {
	if u, ok := m.users[uid]; ok {
		u.Password = password
	}
	return nil
}

type fakeTokenManager struct{}

func (f *fakeTokenManager) Generate(uid int64, nickname, ip string) (string, error) {
	return fmt.Sprintf("token-%d", uid), nil
}

func (f *fakeTokenManager) Parse(token string) (*app.UserEntity, error) { return nil, nil }
func (f *fakeTokenManager) Validate(token string) error                 { return nil }
func (f *fakeTokenManager) GetSecretKey() string                        { return "test" }

func newTestUserService(userRepo *mockUserRepo, config *ServiceConfig) UserService {
	return NewUserService(userRepo, &fakeTokenManager{}, config)
}

func hashedUser(uid int64, email, nickname, password string) *domain.User {
	hash, _ := util.GeneratePasswordHash(password)
	return &domain.User{UID: uid, Email: email, Nickname: nickname, Password: hash}
}

func TestUserRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("register new user", func(t *testing.T) {
		repo := newMockUserRepo()
		svc := newTestUserService(repo, nil)

		got, err := svc.Register(ctx, &dto.UserCreateRequest{
			Email:    "new@example.com",
			Nickname: "newbie",
			Password: "secret123",
		})
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if got.UID == 0 {
			t.Error("registered user should have a UID")
		}
		if got.Token != "" {
			t.Error("registration response should not carry a token")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newMockUserRepo(hashedUser(1, "taken@example.com", "first", "secret123"))
		svc := newTestUserService(repo, nil)

		_, err := svc.Register(ctx, &dto.UserCreateRequest{
			Email:    "taken@example.com",
			Nickname: "second",
			Password: "secret123",
		})
		assertCode(t, err, code.ErrorUserEmailExists)
	})

	t.Run("registration disabled", func(t *testing.T) {
		repo := newMockUserRepo()
		cfg := DefaultServiceConfig()
		cfg.User.RegisterIsEnable = false
		svc := newTestUserService(repo, cfg)

		_, err := svc.Register(ctx, &dto.UserCreateRequest{
			Email:    "any@example.com",
			Nickname: "any",
			Password: "secret123",
		})
		assertCode(t, err, code.ErrorUserRegisterDisabled)
	})
}

func TestUserLogin(t *testing.T) {
	ctx := context.Background()
	repo := newMockUserRepo(hashedUser(7, "user@example.com", "user", "secret123"))
	svc := newTestUserService(repo, nil)

	t.Run("success returns token", func(t *testing.T) {
		got, err := svc.Login(ctx, &dto.UserLoginRequest{Email: "user@example.com", Password: "secret123"}, "127.0.0.1")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if got.Token != "token-7" {
			t.Errorf("unexpected token: %q", got.Token)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &dto.UserLoginRequest{Email: "user@example.com", Password: "wrong"}, "127.0.0.1")
		assertCode(t, err, code.ErrorUserPasswordWrong)
	})

	// 不区分用户不存在和密码错误
	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &dto.UserLoginRequest{Email: "nobody@example.com", Password: "secret123"}, "127.0.0.1")
		assertCode(t, err, code.ErrorUserPasswordWrong)
	})
}

func TestUserChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := newMockUserRepo(hashedUser(7, "user@example.com", "user", "secret123"))
		svc := newTestUserService(repo, nil)

		err := svc.ChangePassword(ctx, 7, &dto.UserChangePasswordRequest{OldPassword: "secret123", Password: "newsecret"})
		if err != nil {
			t.Fatalf("ChangePassword failed: %v", err)
		}
		if !util.CheckPasswordHash(repo.users[7].Password, "newsecret") {
			t.Error("password not updated")
		}
	})

	t.Run("wrong old password", func(t *testing.T) {
		repo := newMockUserRepo(hashedUser(7, "user@example.com", "user", "secret123"))
		svc := newTestUserService(repo, nil)

		err := svc.ChangePassword(ctx, 7, &dto.UserChangePasswordRequest{OldPassword: "bad", Password: "newsecret"})
		assertCode(t, err, code.ErrorUserPasswordWrong)
	})
}

func TestUserExists(t *testing.T) {
	ctx := context.Background()
	repo := newMockUserRepo(hashedUser(7, "user@example.com", "user", "secret123"))
	svc := newTestUserService(repo, nil)

	if err := svc.Exists(ctx, 7); err != nil {
		t.Errorf("existing user reported missing: %v", err)
	}
	assertCode(t, svc.Exists(ctx, 8), code.ErrorUserNotFound)
}
