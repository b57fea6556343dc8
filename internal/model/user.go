package model

import "time"

// Role values stored in users.role. Roles are fixed at registration;
// there is no promotion path.
const (
	RoleRegular    = "regular"
	RoleSupervisor = "supervisor"
)

// User represents a row in the `users` table. The jti column holds the
// current token rotation identifier: every access token issued for the
// user embeds it, and rotating it invalidates all outstanding tokens
// at once (e.g. on password change).
//
// Fields:
//  ID                   – primary key identifier.
//  Name                 – display name.
//  Email                – unique email address.
//  MobileNumber         – unique mobile number.
//  PasswordHash         – bcrypt hashed password.
//  Role                 – "regular" or "supervisor".
//  JTI                  – current token rotation identifier.
//  DeviceToken          – push registration token (null until the device registers).
//  NotificationsEnabled – opt-in flag for push notifications.
type User struct {
	ID                   uint64
	Name                 string
	Email                string
	MobileNumber         string
	PasswordHash         string
	Role                 string
	JTI                  string
	DeviceToken          *string
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
