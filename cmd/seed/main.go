package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"socialnet/backend/internal/config"
	"socialnet/backend/internal/database"
	"socialnet/backend/internal/intimate"
	"socialnet/backend/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
)

const defaultPassword = "password123"

func main() {
	users := flag.Int("users", 20, "number of users to create")
	posts := flag.Int("posts", 3, "posts per user")
	flag.Parse()

	// Seed gofakeit for random data generation.
	gofakeit.Seed(time.Now().UnixNano())

	config.LoadConfig()
	database.Connect(config.AppConfig.DatabaseURL)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// --- USERS ---
	created := make([]models.User, 0, *users)
	for i := 0; i < *users; i++ {
		u := models.User{
			Email:        gofakeit.Email(),
			AccountName:  accountName(),
			FirstName:    gofakeit.FirstName(),
			LastName:     gofakeit.LastName(),
			Job:          truncate(gofakeit.JobTitle(), 30),
			ImageKey:     models.DefaultImageKey,
			PasswordHash: string(hash),
			IsActive:     true,
			IsStaff:      i == 0,
			DateJoined:   gofakeit.DateRange(time.Now().AddDate(-2, 0, 0), time.Now()),
		}
		if err := database.DB.Create(&u).Error; err != nil {
			log.Printf("skip user %s: %v", u.AccountName, err)
			continue
		}
		created = append(created, u)
	}
	if len(created) < 2 {
		log.Fatalf("need at least two users, created %d", len(created))
	}
	log.Printf("Created %d users (password %q, %s is staff)", len(created), defaultPassword, created[0].AccountName)

	// --- FOLLOWS AND POSTS ---
	for _, u := range created {
		for _, other := range pick(created, u.ID, 5) {
			database.DB.Create(&models.Follow{FollowerID: u.ID, FolloweeID: other.ID})
		}
		for j := 0; j < *posts; j++ {
			post := models.Post{AuthorID: u.ID, Content: gofakeit.Sentence(12)}
			if err := database.DB.Create(&post).Error; err != nil {
				log.Printf("create post: %v", err)
			}
		}
	}

	// --- ARTICLES AND SEEKS ---
	for j := 0; j < 3; j++ {
		database.DB.Create(&models.Article{
			AuthorID: created[0].ID,
			Title:    gofakeit.Sentence(4),
			Body:     gofakeit.Paragraph(3, 4, 12, "\n\n"),
		})
	}
	for _, u := range created[:len(created)/2] {
		seek := models.Seek{AuthorID: u.ID, Content: gofakeit.Question()}
		if err := database.DB.Create(&seek).Error; err != nil {
			continue
		}
		for _, other := range pick(created, u.ID, 2) {
			database.DB.Create(&models.Advice{SeekID: seek.ID, AuthorID: other.ID, Content: gofakeit.Sentence(10)})
		}
	}

	// --- INTIMATE REQUESTS ---
	manager := intimate.NewManager(intimate.NewRepository(database.DB))
	var sent, approved, rejected int
	for _, u := range created {
		for _, other := range pick(created, u.ID, 2) {
			err := manager.SendRequest(ctx, u.ID, other.ID)
			if errors.Is(err, intimate.ErrAlreadyRequested) {
				continue
			}
			if err != nil {
				log.Printf("request %d->%d: %v", u.ID, other.ID, err)
				continue
			}
			sent++

			switch gofakeit.Number(0, 2) {
			case 0:
				if err := manager.Approve(ctx, u.ID, other.ID); err == nil {
					approved++
				}
			case 1:
				if err := manager.Reject(ctx, u.ID, other.ID); err == nil {
					rejected++
				}
			}
		}
	}
	log.Printf("Sent %d intimate requests (%d approved, %d rejected)", sent, approved, rejected)
}

// accountName returns a unique-enough account name of at most 30 characters.
func accountName() string {
	name := strings.ToLower(gofakeit.Username()) + gofakeit.DigitN(4)
	return truncate(name, 30)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// pick returns up to n users other than self, chosen at random.
func pick(users []models.User, self uint, n int) []models.User {
	out := make([]models.User, 0, n)
	idx := indexes(len(users))
	gofakeit.ShuffleInts(idx)
	for _, i := range idx {
		if len(out) == n {
			break
		}
		if users[i].ID != self {
			out = append(out, users[i])
		}
	}
	return out
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
