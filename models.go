package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID                 uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID             string     `bun:"user_id,notnull,unique" json:"user_id,omitempty"`
	Role               Role       `bun:"user_role,notnull" json:"role,omitempty"`
	FirstName          string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName           string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Username           string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email              string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash       string     `bun:"password_hash" json:"-"`
	ProfileImageURL    string     `bun:"profile_image_url" json:"profile_image_url,omitempty"`
	Authorities        []string   `bun:"authorities" json:"authorities,omitempty"`
	IsActive           bool       `bun:"is_active" json:"is_active"`
	IsNotLocked        bool       `bun:"is_not_locked" json:"is_not_locked"`
	JoinedAt           *time.Time `bun:"joined_at,nullzero" json:"joined_at,omitempty"`
	LastLoginAt        *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	LastLoginDisplayAt *time.Time `bun:"last_login_display_at,nullzero" json:"last_login_display_at,omitempty"`
	CreatedAt          *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt          *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt          *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureDefaults fills in identifier, role, and authority defaults on a new
// record. The authorities snapshot always follows the role. The generated
// user_id is a candidate; callers that need certainty check uniqueness
// against the store before insert.
func (u *User) EnsureDefaults() {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	if u.UserID == "" {
		u.UserID = GenerateUserID()
	}

	if u.Role == "" {
		u.Role = RoleUser
	}

	if len(u.Authorities) == 0 {
		u.Authorities = u.Role.Authorities()
	}
}

// AssignRole sets the role and refreshes the authorities snapshot to the
// role's configured set.
func (u *User) AssignRole(role Role) {
	u.Role = role
	u.Authorities = role.Authorities()
}

// Identity adapts the record to the Identity interface consumed by the
// token service.
func (u *User) Identity() Identity {
	return userIdentity{user: u}
}

type userIdentity struct {
	user *User
}

func (i userIdentity) ID() string {
	return i.user.UserID
}

func (i userIdentity) Username() string {
	return i.user.Username
}

func (i userIdentity) Email() string {
	return i.user.Email
}

func (i userIdentity) Role() string {
	return string(i.user.Role)
}

var _ Identity = userIdentity{}
