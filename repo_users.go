package users

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the full persistence surface for user records. It embeds the
// generic repository and adds the lookups the portal needs. The narrow
// UserStore interface consumed by the authentication core is a subset.
type Users interface {
	repository.Repository[*User]

	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUserID(ctx context.Context, userID string) (*User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	Save(ctx context.Context, record *User) (*User, error)
	SaveTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)

	ListUsers(ctx context.Context) ([]*User, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

type usersRepo struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users     = (*usersRepo)(nil)
	_ UserStore = (*usersRepo)(nil)
)

// NewUsersRepository will create a new Users repository
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &usersRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *usersRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	return a.findByColumn(ctx, "username", username)
}

func (a *usersRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return a.findByColumn(ctx, "email", email)
}

func (a *usersRepo) FindByUserID(ctx context.Context, userID string) (*User, error) {
	return a.findByColumn(ctx, "user_id", userID)
}

func (a *usersRepo) findByColumn(ctx context.Context, column, value string) (*User, error) {
	if value == "" {
		return nil, ErrUserNotFound
	}

	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return record, nil
}

func (a *usersRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return a.existsByColumn(ctx, "username", username)
}

func (a *usersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return a.existsByColumn(ctx, "email", email)
}

func (a *usersRepo) existsByColumn(ctx context.Context, column, value string) (bool, error) {
	if value == "" {
		return false, nil
	}

	return a.db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias."+column+" = ?", value).
		Exists(ctx)
}

// Save upserts the record: updates when a row with the same primary key
// already exists, creates it otherwise. New records get their defaults
// filled in before the insert.
func (a *usersRepo) Save(ctx context.Context, record *User) (*User, error) {
	return a.SaveTx(ctx, a.db, record)
}

func (a *usersRepo) SaveTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	record.EnsureDefaults()

	if record.ID != uuid.Nil {
		_, err := a.Repository.GetByIdentifierTx(ctx, tx, record.ID.String())
		if err == nil {
			return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
		}
		if !repository.IsRecordNotFound(err) {
			return nil, err
		}
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *usersRepo) ListUsers(ctx context.Context) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Order("usr.username ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *usersRepo) DeleteByUserID(ctx context.Context, userID string) error {
	record, err := a.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}

	_, err = a.db.NewDelete().
		Model(record).
		WherePK().
		Exec(ctx)
	return err
}
