package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"PalMessenger/internal/db"
	"PalMessenger/internal/models"
	"PalMessenger/internal/repository"
	"PalMessenger/internal/utils"
)

const tokenTTL = 24 * time.Hour

type UserService interface {
	Register(ctx context.Context, login, password, phone string) (*models.User, error)
	Login(ctx context.Context, login, password string) (string, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	UpdateStatus(ctx context.Context, login string, status *string) error
}

type userService struct {
	users     repository.UserRepository
	txManager db.TxManager
	jwtSecret string
}

func NewUserService(users repository.UserRepository, txManager db.TxManager, jwtSecret string) UserService {
	return &userService{
		users:     users,
		txManager: txManager,
		jwtSecret: jwtSecret,
	}
}

// Register creates the user and its empty contact and block lists in
// one transaction.
func (us *userService) Register(ctx context.Context, login, password, phone string) (*models.User, error) {
	if login == "" || password == "" {
		return nil, models.ErrValidation
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = us.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		exists, err := us.users.Exists(ctx, login)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrLoginTaken
		}

		user, err = us.users.Create(ctx, login, hash, phone)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Printf("User registered: %s", login)
	return user, nil
}

func (us *userService) Login(ctx context.Context, login, password string) (string, error) {
	user, err := us.users.GetByLogin(ctx, login)
	if err != nil {
		return "", err
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		log.Printf("Failed login attempt for %s", login)
		return "", models.ErrUserNotFound
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"login": user.Login,
		"exp":   time.Now().Add(tokenTTL).Unix(),
	})

	signed, err := token.SignedString([]byte(us.jwtSecret))
	if err != nil {
		return "", errors.New("failed to sign token")
	}
	return signed, nil
}

func (us *userService) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return us.users.GetByLogin(ctx, login)
}

func (us *userService) UpdateStatus(ctx context.Context, login string, status *string) error {
	return us.users.UpdateStatus(ctx, login, status)
}
