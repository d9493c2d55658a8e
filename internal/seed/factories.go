// Package seed creates demo data for development databases and tests.
package seed

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"newsletter/internal/models"
	"newsletter/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them through the repositories,
// so counters, hooks and notification fan-out behave as they do in the API.
type Factory struct {
	faker    *gofakeit.Faker
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	engage   repository.EngagementRepository
	subs     repository.SubscriptionRepository

	hashOnce sync.Once
	hash     string
	hashErr  error
	seq      int
}

// NewFactory binds a Factory to db. A zero seed uses the current time.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		faker:    gofakeit.New(seed),
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		engage:   repository.NewEngagementRepository(db),
		subs:     repository.NewSubscriptionRepository(db),
	}
}

func (f *Factory) passwordHash() (string, error) {
	f.hashOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		f.hash, f.hashErr = string(b), err
	})
	return f.hash, f.hashErr
}

// CreateUser persists a user with fake names. The first two regular users
// still become President and Vice President through the model hook.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	f.seq++
	first, last := f.faker.FirstName(), f.faker.LastName()
	username := fmt.Sprintf("%s.%s%d", strings.ToLower(first), strings.ToLower(last), f.seq)
	user := &models.User{
		Username:   username,
		Email:      username + "@example.com",
		Password:   hash,
		FirstName:  first,
		LastName:   last,
		Department: f.Department(),
		Role:       f.Role(),
		Image:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post by author. The repository fans notifications out
// to the department's subscribers in the same transaction.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, []models.Notification, error) {
	post := &models.Post{
		AuthorID:   author.ID,
		Author:     *author,
		Title:      strings.TrimSuffix(f.faker.Sentence(6), "."),
		Content:    f.faker.Paragraph(2, 4, 12, "\n\n"),
		Department: f.Department(),
	}
	if f.faker.Number(0, 2) == 0 {
		post.Image = fmt.Sprintf("https://picsum.photos/seed/%s/800/450", f.faker.UUID())
	}
	for _, override := range overrides {
		override(post)
	}

	notes, err := f.posts.Create(ctx, post)
	if err != nil {
		return nil, nil, err
	}
	return post, notes, nil
}

// CreateComment persists a comment by author on post.
func (f *Factory) CreateComment(ctx context.Context, author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Content:  f.faker.Sentence(f.faker.Number(4, 16)),
	}
	if err := f.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Like makes user like post. It is a no-op when the like already exists.
func (f *Factory) Like(ctx context.Context, user *models.User, post *models.Post) (bool, error) {
	liked, err := f.engage.ToggleLike(ctx, user.ID, post.ID)
	if err != nil || liked {
		return liked, err
	}
	// The toggle removed an existing like; put it back.
	return f.engage.ToggleLike(ctx, user.ID, post.ID)
}

// Save makes user save post. It is a no-op when the save already exists.
func (f *Factory) Save(ctx context.Context, user *models.User, post *models.Post) (bool, error) {
	saved, err := f.engage.ToggleSave(ctx, user.ID, post.ID)
	if err != nil || saved {
		return saved, err
	}
	return f.engage.ToggleSave(ctx, user.ID, post.ID)
}

// Follow subscribes user to dept unless already subscribed.
func (f *Factory) Follow(ctx context.Context, user *models.User, dept models.Department) error {
	following, err := f.subs.Toggle(ctx, user.ID, dept)
	if err != nil || following {
		return err
	}
	_, err = f.subs.Toggle(ctx, user.ID, dept)
	return err
}

// Department picks a random department.
func (f *Factory) Department() models.Department {
	all := models.AllDepartments()
	return all[f.faker.Number(0, len(all)-1)]
}

// Role picks a random role below Vice President.
func (f *Factory) Role() models.Role {
	roles := []models.Role{models.RoleManager, models.RoleAssistant, models.RoleMember, models.RoleMember}
	return roles[f.faker.Number(0, len(roles)-1)]
}

// Intn returns a number in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}
