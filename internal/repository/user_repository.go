package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/movieexplorer/movie-explorer-api/internal/model"
	"github.com/movieexplorer/movie-explorer-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,mobile_number,password_hash,role,jti,device_token,notifications_enabled,created_at,updated_at"

// Create inserts a user with a fresh rotation identifier and returns
// its ID. The caller is expected to have validated the fields; this
// layer only normalizes the email and enforces uniqueness.
func (r *UserRepo) Create(ctx context.Context, name, email, mobile, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	jti, err := utils.NewJTI()
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, mobile_number, password_hash, role, jti) VALUES (?,?,?,?,?,?)",
		name, email, mobile, hash, role, jti)
	if err != nil {
		// MySQL 1062 = duplicate key; the message names the violated index.
		if msg := strings.ToLower(err.Error()); strings.Contains(msg, "1062") {
			if strings.Contains(msg, "mobile") {
				return 0, ErrMobileExists
			}
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.MobileNumber, &u.PasswordHash, &u.Role,
		&u.JTI, &u.DeviceToken, &u.NotificationsEnabled, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdateDeviceToken overwrites the push registration token. Concurrent
// writers simply race and the last one wins; the value is idempotent.
func (r *UserRepo) UpdateDeviceToken(ctx context.Context, id uint64, token string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET device_token=? WHERE id=?", token, id)
	return err
}

// ToggleNotifications flips the opt-in flag and returns the new value.
func (r *UserRepo) ToggleNotifications(ctx context.Context, id uint64) (bool, error) {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET notifications_enabled = NOT notifications_enabled WHERE id=?", id); err != nil {
		return false, err
	}
	var enabled bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT notifications_enabled FROM users WHERE id=? LIMIT 1", id).Scan(&enabled)
	if err == sql.ErrNoRows {
		return false, ErrUserNotFound
	}
	return enabled, err
}

// RotateJTI stores a new rotation identifier, invalidating every
// access token issued under the previous one.
func (r *UserRepo) RotateJTI(ctx context.Context, id uint64) (string, error) {
	jti, err := utils.NewJTI()
	if err != nil {
		return "", err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE users SET jti=? WHERE id=?", jti, id); err != nil {
		return "", err
	}
	return jti, nil
}

// ListNotifiable returns the device tokens of users who opted into
// push notifications and have a registered device.
func (r *UserRepo) ListNotifiable(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT device_token FROM users WHERE notifications_enabled = TRUE AND device_token IS NOT NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
