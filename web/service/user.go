package service

import (
	"strings"

	"webforge/database"
	"webforge/database/model"
	"webforge/logger"
	"webforge/util/crypto"

	"gorm.io/gorm"
)

// UserService manages panel accounts.
type UserService struct{}

// Register creates a new account. Username and email must be unique.
func (s *UserService) Register(username, email, password, displayName string) (*model.User, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" {
		return nil, errOf(KindInvalidInput, "username can not be empty")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, errOf(KindInvalidInput, "email is not valid: %s", email)
	}
	if len(password) < 6 {
		return nil, errOf(KindInvalidInput, "password must be at least 6 characters")
	}

	db := database.GetDB()

	var count int64
	if err := db.Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errOf(KindConflict, "username or email already taken")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:    username,
		Email:       email,
		Password:    hash,
		DisplayName: displayName,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CheckUser verifies credentials, returning nil when they do not match.
func (s *UserService) CheckUser(username, password string) *model.User {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(&model.User{}).
		Where("username = ?", strings.TrimSpace(strings.ToLower(username))).
		First(user).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil
	}

	if !crypto.CheckPassword(user.Password, password) {
		return nil
	}
	return user
}

// GetUser fetches an account by id.
func (s *UserService) GetUser(id int) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.First(user, id).Error
	if database.IsNotFound(err) {
		return nil, errOf(KindNotFound, "user %d not found", id)
	} else if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAvatar records the stored avatar file name on the account.
func (s *UserService) UpdateAvatar(id int, fileName string) error {
	db := database.GetDB()
	return db.Model(&model.User{}).
		Where("id = ?", id).
		Update("avatar", fileName).
		Error
}
