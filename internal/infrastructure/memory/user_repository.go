package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

type UserRepository struct {
	run func(func(st *state) error) error
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.run(func(st *state) error {
		email := strings.ToLower(user.Email)
		if _, taken := st.emails[email]; taken {
			return apperror.ErrEmailTaken
		}
		st.users[user.ID] = *user
		st.emails[email] = user.ID
		return nil
	})
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.run(func(st *state) error {
		stored, ok := st.users[id]
		if !ok {
			return apperror.ErrUserNotFound
		}
		user = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.run(func(st *state) error {
		id, ok := st.emails[strings.ToLower(strings.TrimSpace(email))]
		if !ok {
			return apperror.ErrUserNotFound
		}
		user = st.users[id]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
