package service

import (
	"errors"
	"fmt"
	"strings"

	"ramen-log/internal/model"
	"ramen-log/internal/repository"
	"ramen-log/pkg/jwt"
	"ramen-log/pkg/logger"
	"ramen-log/pkg/password"

	"go.uber.org/zap"
)

type UserService struct {
	repo       *repository.UserRepository
	jwtService *jwt.JWTService
}

func NewUserService(repo *repository.UserRepository, jwtService *jwt.JWTService) *UserService {
	return &UserService{repo: repo, jwtService: jwtService}
}

type registerInput struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email,max=128"`
	Password string `validate:"required,min=6,max=72"`
}

// Register 注册并签发 token
func (s *UserService) Register(username, email, plainPassword string) (*model.User, string, error) {
	in := registerInput{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: plainPassword,
	}
	if err := validateStruct(in); err != nil {
		return nil, "", err
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, "", conflict("username or email already registered")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	logger.Info("用户注册", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

// Login 登录，identifier 可以是用户名或邮箱
func (s *UserService) Login(identifier, plainPassword string) (*model.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || plainPassword == "" {
		return nil, "", invalid("identifier and password are required")
	}
	u, err := s.repo.GetByUsernameOrEmail(identifier)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", newError(ErrUnauthorized, "invalid credentials")
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if !password.Verify(plainPassword, u.PasswordHash) {
		return nil, "", newError(ErrUnauthorized, "invalid credentials")
	}
	token, err := s.jwtService.GenerateToken(u.ID, u.Username)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// FindByID 按ID查询用户
func (s *UserService) FindByID(id uint) (*model.User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, notFound("user %d not found", id)
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return u, nil
}

// RefreshToken 为已登录用户签发新令牌，用户已不存在时视为未认证
func (s *UserService) RefreshToken(userID uint) (*model.User, string, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", newError(ErrUnauthorized, "user no longer exists")
		}
		return nil, "", fmt.Errorf("find user %d: %w", userID, err)
	}
	token, err := s.jwtService.GenerateToken(u.ID, u.Username)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
