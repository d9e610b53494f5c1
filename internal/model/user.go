package model

import "time"

// Role values stored in users.role. Authorization middleware compares the
// JWT role claim against these.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleClient = "client"
)

// User represents a row in the `users` table. The password hash stays on
// the struct because the repository layer is the only reader; handlers
// define separate response types and never embed a User directly.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique, lower-cased email address.
//  PasswordHash  – bcrypt hashed password.
//  FirstName     – given name.
//  LastName      – family name.
//  Phone         – optional phone number.
//  Role          – one of admin, staff, client.
//  IsActive      – whether the account may log in.
//  EmailVerified – whether the signup email was confirmed.
//  LastLoginAt   – most recent successful login (nullable).
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	Phone         string
	Role          string
	IsActive      bool
	EmailVerified bool
	LastLoginAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidRole reports whether r is one of the known role names.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleStaff || r == RoleClient
}
