package seed

import (
	"fmt"
	"log"
	"strings"

	"wayfarer/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var postCategories = []string{
	"hiking", "itineraries", "gear", "photography", "food",
	"transport", "accommodation", "wildlife", "history", "general",
}

var postTopics = []string{
	"Crossing the Fagaras ridge in three days",
	"Best season for the Transfagarasan",
	"Turda salt mine with kids, worth it?",
	"Danube Delta on a budget",
	"Brown bears near Brasov, how careful should I be?",
	"Painted monasteries loop from Suceava",
	"Via ferrata routes in the Apuseni",
	"Where to eat in Sighisoara old town",
	"Night train from Bucharest, experiences?",
	"Wild camping rules in the Carpathians",
}

// Seed populates the database with development data.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding database with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway")
		}
	}

	if err := Directory(db); err != nil {
		return fmt.Errorf("failed to seed directory fixtures: %w", err)
	}
	log.Println("directory fixtures seeded")

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created", len(users))

	posts, err := createPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	replies, err := createReplies(db, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create replies: %w", err)
	}
	log.Printf("%d replies created", len(replies))

	if err := createReviews(db, users); err != nil {
		return fmt.Errorf("failed to create reviews: %w", err)
	}
	log.Println("reviews created")

	log.Println("Seeding complete")
	return nil
}

func createUsers(db *gorm.DB, count int) ([]*models.User, error) {
	// One shared hash keeps seeding fast; every seeded account logs in
	// with the same development password.
	hash, err := bcrypt.GenerateFromPassword([]byte("WayfarerDev!2024"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    fmt.Sprintf("seed%d.%s", i, gofakeit.Email()),
			Password: string(hash),
			Role:     models.RoleUser,
			Bio:      gofakeit.Sentence(12),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]
		title := postTopics[gofakeit.Number(0, len(postTopics)-1)]
		post := &models.Post{
			Title:    title,
			Slug:     fmt.Sprintf("%s-%d", slugify(title), i),
			Category: postCategories[gofakeit.Number(0, len(postCategories)-1)],
			Content:  gofakeit.Paragraph(2, 4, 14, "\n\n"),
			UserID:   author.ID,
			Status:   models.PostStatusActive,
		}
		if err := db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func createReplies(db *gorm.DB, users []*models.User, posts []*models.Post) ([]*models.Reply, error) {
	if len(users) == 0 || len(posts) == 0 {
		return nil, nil
	}

	var replies []*models.Reply
	for _, post := range posts {
		created := 0
		for i := 0; i < gofakeit.Number(0, 5); i++ {
			author := users[gofakeit.Number(0, len(users)-1)]
			reply := &models.Reply{
				PostID:  post.ID,
				UserID:  author.ID,
				Content: gofakeit.Sentence(gofakeit.Number(8, 25)),
			}
			// Some replies nest under an earlier one on the same post.
			if len(replies) > 0 && gofakeit.Bool() {
				parent := replies[gofakeit.Number(0, len(replies)-1)]
				if parent.PostID == post.ID && parent.Depth < models.MaxReplyDepth {
					reply.ParentReplyID = &parent.ID
					reply.Depth = parent.Depth + 1
				}
			}
			if err := db.Create(reply).Error; err != nil {
				return nil, err
			}
			replies = append(replies, reply)
			created++
		}
		if created > 0 {
			if err := db.Model(post).Update("replies_count", gorm.Expr("replies_count + ?", created)).Error; err != nil {
				return nil, err
			}
		}
	}
	return replies, nil
}

func createReviews(db *gorm.DB, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}

	var objectives []models.Objective
	if err := db.Find(&objectives).Error; err != nil {
		return err
	}
	var guides []models.Guide
	if err := db.Find(&guides).Error; err != nil {
		return err
	}

	for _, obj := range objectives {
		for i := 0; i < gofakeit.Number(1, 3); i++ {
			review := &models.Review{
				SubjectType: models.ReviewSubjectObjective,
				SubjectID:   obj.ID,
				UserID:      users[gofakeit.Number(0, len(users)-1)].ID,
				Rating:      gofakeit.Number(3, 5),
				Title:       gofakeit.Sentence(5),
				Comment:     gofakeit.Paragraph(1, 3, 12, " "),
				Approved:    gofakeit.Number(0, 9) > 1,
			}
			if err := db.Create(review).Error; err != nil {
				return err
			}
		}
	}

	for _, guide := range guides {
		review := &models.Review{
			SubjectType: models.ReviewSubjectGuide,
			SubjectID:   guide.ID,
			UserID:      users[gofakeit.Number(0, len(users)-1)].ID,
			Rating:      gofakeit.Number(4, 5),
			Title:       gofakeit.Sentence(5),
			Comment:     gofakeit.Paragraph(1, 2, 12, " "),
			Approved:    true,
		}
		if err := db.Create(review).Error; err != nil {
			return err
		}
	}

	return nil
}

func clearData(db *gorm.DB) error {
	// Children before parents so FK constraints hold.
	tables := []any{
		&models.ReplyVote{},
		&models.Reply{},
		&models.Report{},
		&models.Review{},
		&models.ContestVote{},
		&models.ContestSubmission{},
		&models.Post{},
		&models.UserBan{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func slugify(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
