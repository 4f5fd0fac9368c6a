/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	hummer "github.com/tomoncle/hummer-gql"
	"github.com/tomoncle/hummer-gql/auth"
	"github.com/tomoncle/hummer-gql/database"
	"github.com/tomoncle/hummer-gql/types"
	"github.com/tomoncle/hummer-gql/utils"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

var logger = utils.NewLogger("user")

// Service implements user management on top of the generic entity service.
type Service struct {
	users hummer.Service[User]
	posts hummer.Service[Post]
	cost  int
}

func NewService(db *bun.DB) *Service {
	return &Service{
		users: hummer.NewServiceWithDB[User](db),
		posts: hummer.NewServiceWithDB[Post](db),
		cost:  bcrypt.DefaultCost,
	}
}

func (s *Service) GetMany(ctx context.Context, q *types.RepoQuery, selection string) (*types.GetData[User], error) {
	return s.users.GetMany(ctx, q, selection)
}

func (s *Service) GetOne(ctx context.Context, q *types.OneRepoQuery, selection string) (*User, error) {
	return s.users.GetOne(ctx, q, selection)
}

func (s *Service) Create(ctx context.Context, in *CreateUserInput) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	u := &User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Name:      in.Name,
		Role:      in.Role,
		Password:  hash,
		Settings:  in.Settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, s.conflict(err, u.Email)
	}
	logger.WithFields(logrus.Fields{"id": u.ID, "role": u.Role}).Info("user created")
	return u, nil
}

// Update writes the set fields of in and returns the number of affected rows.
func (s *Service) Update(ctx context.Context, id string, in *UpdateUserInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	u := &User{ID: id, UpdatedAt: time.Now()}
	props := []string{"updatedAt"}
	if in.Email != nil {
		u.Email = *in.Email
		props = append(props, "email")
	}
	if in.Name != nil {
		u.Name = *in.Name
		props = append(props, "name")
	}
	if in.Role != nil {
		u.Role = *in.Role
		props = append(props, "role")
	}
	if in.Settings != nil {
		u.Settings = in.Settings
		props = append(props, "settings")
	}
	var hash string
	if in.Password != nil {
		h, err := s.hash(*in.Password)
		if err != nil {
			return 0, err
		}
		hash = h
	}

	var affected int64
	err := s.users.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		if len(props) > 1 || hash == "" {
			n, err := s.users.UpdateWithTx(ctx, tx, u, props...)
			if err != nil {
				return s.conflict(err, u.Email)
			}
			affected = n
		}
		if hash == "" {
			return nil
		}
		// password is hidden from clients, so it has no property name
		n, err := setPassword(ctx, tx, id, hash)
		if err != nil {
			return err
		}
		if len(props) == 1 {
			affected = n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func setPassword(ctx context.Context, tx bun.IDB, id string, hash string) (int64, error) {
	res, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("password = ?", hash).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("update password: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes the user and their posts in one transaction.
func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	var affected int64
	err := s.users.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*Post)(nil)).Where("author_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete posts of %s: %w", id, err)
		}
		n, err := s.users.DeleteWithTx(ctx, tx, id)
		affected = n
		return err
	})
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		logger.WithField("id", id).Info("user deleted")
	}
	return affected, nil
}

// Me loads the authenticated user. selection is the raw query text of the
// resolving field.
func (s *Service) Me(ctx context.Context, principal *auth.Principal, selection string) (*User, error) {
	return s.GetOne(ctx, &types.OneRepoQuery{Where: map[string]any{"id": principal.Subject}}, selection)
}

// Authenticate checks the password of the user with the given email.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetOne(ctx, &types.OneRepoQuery{Where: map[string]any{"email": email}}, "")
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, auth.ErrUnauthorized
	}
	return u, nil
}

// SeedAdmin creates the admin account, or resets its name, role and password
// when the email is already registered.
func (s *Service) SeedAdmin(ctx context.Context, email, name, password string) error {
	in := &CreateUserInput{Email: email, Name: name, Password: password, Role: auth.RoleAdmin}
	if err := in.Validate(); err != nil {
		return err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return err
	}
	now := time.Now()
	admin := &User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		Name:      in.Name,
		Role:      auth.RoleAdmin,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.SaveOrUpdate(ctx, []string{"name", "role", "updatedAt"}, []string{"email"}, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := s.users.Repository().NewUpdate().
		Model((*User)(nil)).
		Set("password = ?", hash).
		Where("email = ?", in.Email).
		Exec(ctx); err != nil {
		return fmt.Errorf("seed admin password: %w", err)
	}
	logger.WithField("email", in.Email).Info("admin account ready")
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) conflict(err error, email string) error {
	if database.IsDuplicateKey(err) {
		return types.NewBadRequest("email", fmt.Sprintf("Email %s is already registered", email))
	}
	return err
}
