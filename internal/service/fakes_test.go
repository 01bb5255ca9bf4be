package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/recipe-api/internal/apperror"
	"github.com/sakif/recipe-api/internal/auth"
	"github.com/sakif/recipe-api/internal/model"
	"github.com/sakif/recipe-api/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory repository.UserRepository with a unique
// email index, like the real table.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	for _, u := range f.users {
		if u.ID != user.ID && u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func newTestUserService(t *testing.T) (*UserService, *fakeUserRepo) {
	t.Helper()
	tokens, err := auth.NewTokenService("service-test-secret-1234", time.Hour)
	require.NoError(t, err)
	repo := newFakeUserRepo()
	return NewUserService(repo, tokens, auth.NewPasswordServiceWithCost(bcrypt.MinCost), testLogger()), repo
}

// fakeTagRepo is an in-memory repository.TagRepository.
type fakeTagRepo struct {
	tags     map[string]*model.Tag
	assigned map[string]bool
	seq      int
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: make(map[string]*model.Tag), assigned: make(map[string]bool)}
}

func (f *fakeTagRepo) Create(_ context.Context, tag *model.Tag) error {
	f.seq++
	tag.ID = fmt.Sprintf("tag-%d", f.seq)
	stored := *tag
	f.tags[tag.ID] = &stored
	return nil
}

func (f *fakeTagRepo) GetByID(_ context.Context, ownerID, id string) (*model.Tag, error) {
	t, ok := f.tags[id]
	if !ok || t.UserID != ownerID {
		return nil, apperror.NotFound("tag", id)
	}
	out := *t
	return &out, nil
}

func (f *fakeTagRepo) List(_ context.Context, ownerID string, opts repository.AttrListOptions) ([]model.Tag, error) {
	var out []model.Tag
	for _, t := range f.tags {
		if t.UserID != ownerID || (opts.AssignedOnly && !f.assigned[t.ID]) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (f *fakeTagRepo) Update(_ context.Context, tag *model.Tag) error {
	stored := *tag
	f.tags[tag.ID] = &stored
	return nil
}

func (f *fakeTagRepo) Delete(_ context.Context, ownerID, id string) error {
	t, ok := f.tags[id]
	if !ok || t.UserID != ownerID {
		return apperror.NotFound("tag", id)
	}
	delete(f.tags, id)
	return nil
}

// fakeRecipeRepo is an in-memory repository.RecipeRepository. It does not
// resolve link names.
type fakeRecipeRepo struct {
	recipes     map[string]*model.Recipe
	seq         int
	setImageErr error
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: make(map[string]*model.Recipe)}
}

func (f *fakeRecipeRepo) Create(_ context.Context, recipe *model.Recipe) error {
	f.seq++
	recipe.ID = fmt.Sprintf("recipe-%d", f.seq)
	stored := *recipe
	f.recipes[recipe.ID] = &stored
	return nil
}

func (f *fakeRecipeRepo) GetByID(_ context.Context, ownerID, id string) (*model.Recipe, error) {
	r, ok := f.recipes[id]
	if !ok || r.UserID != ownerID {
		return nil, apperror.NotFound("recipe", id)
	}
	out := *r
	return &out, nil
}

func (f *fakeRecipeRepo) List(_ context.Context, ownerID string, _ repository.RecipeListOptions) ([]model.Recipe, error) {
	var out []model.Recipe
	for _, r := range f.recipes {
		if r.UserID == ownerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRecipeRepo) Update(_ context.Context, recipe *model.Recipe) error {
	stored := *recipe
	f.recipes[recipe.ID] = &stored
	return nil
}

func (f *fakeRecipeRepo) SetImage(_ context.Context, ownerID, id, image string) error {
	if f.setImageErr != nil {
		return f.setImageErr
	}
	r, ok := f.recipes[id]
	if !ok || r.UserID != ownerID {
		return apperror.NotFound("recipe", id)
	}
	r.Image = image
	return nil
}

func (f *fakeRecipeRepo) Delete(_ context.Context, ownerID, id string) error {
	r, ok := f.recipes[id]
	if !ok || r.UserID != ownerID {
		return apperror.NotFound("recipe", id)
	}
	delete(f.recipes, id)
	return nil
}

// fakeDisk is an in-memory storage.Disk.
type fakeDisk struct {
	files   map[string][]byte
	deleted []string
	putErr  error
}

func newFakeDisk() *fakeDisk {
	return &fakeDisk{files: make(map[string][]byte)}
}

func (d *fakeDisk) Put(_ context.Context, path string, r io.Reader) error {
	if d.putErr != nil {
		return d.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	d.files[path] = buf.Bytes()
	return nil
}

func (d *fakeDisk) Delete(_ context.Context, path string) error {
	if _, ok := d.files[path]; !ok {
		return errors.New("no such file")
	}
	delete(d.files, path)
	d.deleted = append(d.deleted, path)
	return nil
}

func (d *fakeDisk) URL(path string) string {
	return "https://cdn.example.com/" + strings.TrimLeft(path, "/")
}
