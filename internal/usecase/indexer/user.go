package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/domain"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
)

// UserUpdater keeps the user index in step with account events.
type UserUpdater struct {
	users UserReader
	index UserWriter
}

// NewUserUpdater creates a user index updater.
func NewUserUpdater(users UserReader, index UserWriter) *UserUpdater {
	return &UserUpdater{users: users, index: index}
}

// OnUserSaved replaces the row of the account.
func (u *UserUpdater) OnUserSaved(ctx context.Context, id int64) (Outcome, error) {
	if ok, err := u.ready(ctx); !ok || err != nil {
		return SkippedNoTable, err
	}
	usr, err := u.users.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return SkippedMissingEntity, nil
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if err := u.index.UpsertUser(ctx, UserRow(usr.ID, usr.Name, usr.RealName)); err != nil {
		return "", fmt.Errorf("upsert user: %w", err)
	}
	return Applied, nil
}

// OnUserDeleted removes the row of the account.
func (u *UserUpdater) OnUserDeleted(ctx context.Context, id int64) (Outcome, error) {
	if ok, err := u.ready(ctx); !ok || err != nil {
		return SkippedNoTable, err
	}
	if _, err := u.index.DeleteUser(ctx, id); err != nil {
		return "", fmt.Errorf("delete user: %w", err)
	}
	return Applied, nil
}

func (u *UserUpdater) ready(ctx context.Context) (bool, error) {
	ok, err := u.index.TableExists(ctx, domidx.UserTable)
	if err != nil {
		return false, fmt.Errorf("check user index: %w", err)
	}
	return ok, nil
}

// UserRow builds the normalized user index row.
func UserRow(id int64, name, realName string) domidx.UserRow {
	return domidx.UserRow{
		UserID:   id,
		Name:     domain.LowerKey(name),
		RealName: domain.LowerKey(realName),
	}
}
