package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrstephan404-hue/my-ecommerce-store/internal/auth"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/config"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/datamodels/user"
	"github.com/mrstephan404-hue/my-ecommerce-store/internal/errs"
)

// UserService 注册 / 登录 / 鉴权
type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

// NewUserService 创建用户服务
func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

// Register 注册新用户并签发令牌，邮箱重复返回 ErrEmailTaken
func (s *UserService) Register(ctx context.Context, name, email, password, phone string) (*user.User, string, error) {
	if strings.TrimSpace(name) == "" {
		return nil, "", errs.Invalidf("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", errs.Invalidf("email %q is not a valid address", email)
	}
	if password == "" {
		return nil, "", errs.Invalidf("password is required")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, "", errs.ErrEmailTaken
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, "", err
	}

	// bcrypt 自带逐条随机盐
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u := &user.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     user.RoleCustomer,
		Phone:    phone,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(s.jwt, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login 校验密码并签发令牌。
// 用户不存在与密码错误返回同一个错误，避免枚举注册邮箱。
func (s *UserService) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, "", errs.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, "", errs.ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// GetByID 查询用户（/api/auth/me）
func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}
