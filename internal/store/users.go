package store

import (
	"gorm.io/gorm"

	"github.com/kd5jp/ChurchBell/internal/auth"
	"github.com/kd5jp/ChurchBell/internal/models"
)

// UserStore owns the users table. Mutating methods take the acting (already
// authenticated) user so the role rules are enforced where the write happens,
// not in transport middleware.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) List() ([]models.Users, error) {
	var users []models.Users
	err := s.db.Order("id ASC").Find(&users).Error
	return users, err
}

func (s *UserStore) Get(id uint) (*models.Users, error) {
	var user models.Users
	if err := s.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetByUsername(username string) (*models.Users, error) {
	var user models.Users
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create adds an account. Only an admin may mint another admin. The stored
// permission set is normalized against the capability vocabulary; an admin's
// explicit set is cleared because it is implied.
func (s *UserStore) Create(actor *models.Users, username, password, role string, perms []string) (*models.Users, error) {
	if username == "" || password == "" {
		return nil, &ValidationError{Field: "username/password", Reason: "both are required"}
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, &ValidationError{Field: "role", Reason: "must be admin or user"}
	}
	if role == models.RoleAdmin && !actor.IsAdmin() {
		return nil, auth.ErrAdminOnlyCreate
	}

	if _, err := s.GetByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.Users{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Permissions:  auth.NormalizePermissions(perms),
	}
	if role == models.RoleAdmin {
		user.Permissions = ""
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes an account. Nobody deletes themselves; only an admin may
// delete an admin.
func (s *UserStore) Delete(actor *models.Users, id uint) error {
	if actor.ID == id {
		return auth.ErrSelfDelete
	}
	target, err := s.Get(id)
	if err != nil {
		return err
	}
	if target.IsAdmin() && !actor.IsAdmin() {
		return auth.ErrAdminOnlyDelete
	}
	return s.db.Unscoped().Delete(&models.Users{}, id).Error
}

// SetRole changes a role. Only admins change roles, and never their own.
// Promotion to admin clears the explicit permission set.
func (s *UserStore) SetRole(actor *models.Users, id uint, role string) error {
	if role != models.RoleAdmin && role != models.RoleUser {
		return &ValidationError{Field: "role", Reason: "must be admin or user"}
	}
	if !actor.IsAdmin() {
		return auth.ErrAdminOnlyRole
	}
	if actor.ID == id {
		return auth.ErrSelfRoleChange
	}
	target, err := s.Get(id)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"role": role}
	if role == models.RoleAdmin {
		updates["permissions"] = ""
	}
	return s.db.Model(target).Updates(updates).Error
}

// SetPermissions replaces a user's capability set. Meaningless for admins, so
// it is rejected for them rather than silently ignored.
func (s *UserStore) SetPermissions(actor *models.Users, id uint, perms []string) error {
	if !actor.IsAdmin() && !auth.HasPermission(actor, auth.CapUsers) {
		return auth.ErrUnauthorized
	}
	target, err := s.Get(id)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return &ValidationError{Field: "permissions", Reason: "admins implicitly hold all capabilities"}
	}
	return s.db.Model(target).Update("permissions", auth.NormalizePermissions(perms)).Error
}

// ChangePassword verifies the current credential before storing a new hash.
func (s *UserStore) ChangePassword(id uint, current, next string) error {
	if next == "" {
		return &ValidationError{Field: "new_password", Reason: "must not be empty"}
	}
	user, err := s.Get(id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return auth.ErrUnauthorized
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("password_hash", hash).Error
}
