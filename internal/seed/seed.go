// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// SkipBcrypt stores a plaintext password to speed up large dev seeds.
	SkipBcrypt bool
}

// Seeder builds domain entities and persists them to the database.
type Seeder struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		opts: opts,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Deletion order respects foreign keys.
func (s *Seeder) ClearAll() error {
	for _, model := range []any{
		&models.Notification{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Post{},
		&models.User{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", model, err)
		}
	}
	return nil
}

// Run populates the database with a connected social mesh: users, a follow
// graph, posts with a realistic age spread, and likes and comments with the
// notifications those interactions produce.
func (s *Seeder) Run() error {
	log.Printf("Seeding %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.createUsers(s.opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	if err := s.createFollowMesh(users); err != nil {
		return fmt.Errorf("failed to create follow graph: %w", err)
	}

	posts, err := s.createPosts(users, s.opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := s.createInteractions(users, posts); err != nil {
		return fmt.Errorf("failed to create interactions: %w", err)
	}

	log.Println("seeding complete")
	return nil
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (s *Seeder) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	if s.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Seeder) createUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createFollowMesh gives every user a handful of random followees.
func (s *Seeder) createFollowMesh(users []*models.User) error {
	for _, follower := range users {
		n := s.rand.Intn(len(users)/2 + 1)
		for _, idx := range s.rand.Perm(len(users))[:n] {
			followee := users[idx]
			if followee.ID == follower.ID {
				continue
			}
			err := s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&models.Follow{
					FollowerID: follower.ID,
					FolloweeID: followee.ID,
				}).Error; err != nil {
					return err
				}
				return tx.Create(&models.Notification{
					FromUserID: follower.ID,
					ToUserID:   followee.ID,
					Type:       models.NotificationTypeFollow,
				}).Error
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// CreatePost constructs and persists a sample post for the given user with a
// realistic created_at spread over the last 90 days.
func (s *Seeder) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Text:   gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID: user.ID,
	}
	if s.rand.Intn(3) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	daysBack := s.rand.Intn(90)
	hoursBack := s.rand.Intn(24)
	minsBack := s.rand.Intn(60)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour -
			time.Duration(hoursBack)*time.Hour -
			time.Duration(minsBack)*time.Minute)

	for _, override := range overrides {
		override(post)
	}

	if err := s.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Seeder) createPosts(users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		user := users[s.rand.Intn(len(users))]
		post, err := s.CreatePost(user)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// createInteractions sprinkles likes and comments over the posts, pairing
// each with the notification the live code paths would create.
func (s *Seeder) createInteractions(users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		nLikes := s.rand.Intn(len(users)/3 + 1)
		for _, idx := range s.rand.Perm(len(users))[:nLikes] {
			liker := users[idx]
			err := s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&models.Like{
					UserID: liker.ID,
					PostID: post.ID,
				}).Error; err != nil {
					return err
				}
				return tx.Create(&models.Notification{
					FromUserID: liker.ID,
					ToUserID:   post.UserID,
					Type:       models.NotificationTypeLike,
				}).Error
			})
			if err != nil {
				return err
			}
		}

		nComments := s.rand.Intn(4)
		for i := 0; i < nComments; i++ {
			commenter := users[s.rand.Intn(len(users))]
			err := s.db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&models.Notification{
					FromUserID: commenter.ID,
					ToUserID:   post.UserID,
					Type:       models.NotificationTypeComment,
				}).Error; err != nil {
					return err
				}
				return tx.Create(&models.Comment{
					UserID: commenter.ID,
					PostID: post.ID,
					Text:   gofakeit.Sentence(8),
				}).Error
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
