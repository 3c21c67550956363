package main

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/model"
	"yatube/internal/repository"
)

const demoPassword = "password123"

var demoGroups = []model.Group{
	{Title: "Cats", Slug: "cats", Description: "Posts about cats."},
	{Title: "Travel", Slug: "travel", Description: "Trip reports and route notes."},
	{Title: "Cooking", Slug: "cooking", Description: "Recipes that actually worked."},
}

var demoUsers = []string{"leo", "nora"}

var demoPosts = []struct {
	author string
	group  string
	text   string
}{
	{author: "leo", group: "cats", text: "My cat learned to open the fridge. Send help."},
	{author: "leo", group: "travel", text: "Took the night train to the coast, worth every minute."},
	{author: "leo", group: "", text: "Note to self: write more."},
	{author: "nora", group: "cooking", text: "Third attempt at sourdough. This one rose!"},
	{author: "nora", group: "cats", text: "Adopted a second cat. The first one is unimpressed."},
	{author: "nora", group: "", text: "Hello, blog."},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Group{}, &model.Post{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	groupRepo := repository.NewGroupRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	groups, err := seedGroups(ctx, groupRepo)
	if err != nil {
		log.Fatalf("Failed to seed groups: %v", err)
	}

	users, err := seedUsers(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	created, err := seedPosts(ctx, postRepo, users, groups)
	if err != nil {
		log.Fatalf("Failed to seed posts: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Groups: %d", len(groups))
	log.Printf("  - Users: %d (password %q)", len(users), demoPassword)
	log.Printf("  - New posts created: %d", created)
}

// seedGroups creates the demo groups, reusing any that already exist.
func seedGroups(ctx context.Context, repo repository.GroupRepository) (map[string]*model.Group, error) {
	out := make(map[string]*model.Group, len(demoGroups))
	for i := range demoGroups {
		group := demoGroups[i]
		existing, err := repo.FindBySlug(ctx, group.Slug)
		if err == nil {
			out[group.Slug] = existing
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("error checking group %s: %w", group.Slug, err)
		}
		if err := repo.Create(ctx, &group); err != nil {
			return nil, fmt.Errorf("error creating group %s: %w", group.Slug, err)
		}
		log.Printf("Created group %q", group.Slug)
		out[group.Slug] = &group
	}
	return out, nil
}

// seedUsers creates the demo users with a shared known password.
func seedUsers(ctx context.Context, repo repository.UserRepository) (map[string]*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	out := make(map[string]*model.User, len(demoUsers))
	for _, username := range demoUsers {
		existing, err := repo.FindByUsername(ctx, username)
		if err == nil {
			out[username] = existing
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("error checking user %s: %w", username, err)
		}
		user := &model.User{Username: username, PasswordHash: string(hash)}
		if err := repo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("error creating user %s: %w", username, err)
		}
		log.Printf("Created user %q", username)
		out[username] = user
	}
	return out, nil
}

// seedPosts creates the demo posts. Posts are only added when their
// author has none yet, so re-running the seed does not duplicate them.
func seedPosts(ctx context.Context, repo repository.PostRepository, users map[string]*model.User, groups map[string]*model.Group) (int, error) {
	skip := make(map[string]bool, len(users))
	for username, user := range users {
		count, err := repo.CountByAuthor(ctx, user.ID)
		if err != nil {
			return 0, fmt.Errorf("error counting posts for %s: %w", username, err)
		}
		skip[username] = count > 0
	}

	created := 0
	for _, item := range demoPosts {
		author, ok := users[item.author]
		if !ok || skip[item.author] {
			continue
		}

		post := &model.Post{Text: item.text, AuthorID: author.ID}
		if group, ok := groups[item.group]; ok {
			post.GroupID = &group.ID
		}
		if err := repo.Create(ctx, post); err != nil {
			return created, fmt.Errorf("error creating post for %s: %w", item.author, err)
		}
		created++
	}
	return created, nil
}
