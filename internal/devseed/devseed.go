// Package devseed populates an empty development database with demo content
// so the app has something to show on first run.
package devseed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/stolasapp/quill/internal/sec"
	"github.com/stolasapp/quill/internal/storage"
	"github.com/stolasapp/quill/internal/storage/db"
)

// Demo author credentials, for logging into a dev instance.
const (
	DemoEmail    = "demo@quill.local"
	DemoPassword = "password"
)

// Content generation constants.
const (
	postCount         = 8
	minParagraphs     = 2
	maxExtraPara      = 4 // 2-5 paragraphs total
	minSentences      = 3
	maxExtraSent      = 5 // 3-7 sentences total
	minWords          = 8
	maxExtraWords     = 12   // 8-20 words total
	draftProbability  = 0.25 // roughly a quarter of the posts stay drafts
	postSpacing       = 26 * time.Hour
	demoAuthorDisplay = "Demo Author"
)

// Seed creates a demo author and a handful of fake posts when the database has
// no users yet. Databases with any existing user are left untouched.
func Seed(ctx context.Context, logger *slog.Logger, store storage.Store, seed uint64) error {
	users, err := store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing users: %w", err)
	}
	if users > 0 {
		return nil
	}

	digest, err := sec.HashPassword(DemoPassword)
	if err != nil {
		return err
	}
	author, err := store.CreateUser(ctx, db.User{
		Email:        DemoEmail,
		Name:         demoAuthorDisplay,
		PasswordHash: digest,
	})
	if err != nil {
		return fmt.Errorf("failed to create demo author: %w", err)
	}

	faker := gofakeit.New(seed)
	start := time.Now().UTC().Add(-postCount * postSpacing)
	for i := range postCount {
		_, err := store.CreatePost(ctx, db.Post{
			Title:     generateTitle(faker),
			Content:   generateBody(faker),
			Published: faker.Float64() >= draftProbability,
			AuthorID:  author.ID,
			CreatedAt: start.Add(time.Duration(i) * postSpacing),
		})
		if err != nil {
			return fmt.Errorf("failed to create demo post: %w", err)
		}
	}

	logger.InfoContext(ctx, "seeded demo content",
		slog.String("email", DemoEmail),
		slog.Int("posts", postCount),
	)
	return nil
}

func generateTitle(faker *gofakeit.Faker) string {
	return fmt.Sprintf("The %s %s", faker.Adjective(), faker.Noun())
}

// generateBody produces a few Markdown paragraphs, occasionally with emphasis
// so the content pipeline has something to render.
func generateBody(faker *gofakeit.Faker) string {
	numParagraphs := minParagraphs + faker.IntN(maxExtraPara)
	paragraphs := make([]string, numParagraphs)
	for i := range numParagraphs {
		paragraphs[i] = generateParagraph(faker)
	}
	return strings.Join(paragraphs, "\n\n")
}

func generateParagraph(faker *gofakeit.Faker) string {
	numSentences := minSentences + faker.IntN(maxExtraSent)
	sentences := make([]string, numSentences)
	for i := range numSentences {
		sentence := faker.Sentence(minWords + faker.IntN(maxExtraWords))
		if faker.Float64() < 0.1 {
			sentence = "**" + strings.TrimSuffix(sentence, ".") + ".**"
		}
		sentences[i] = sentence
	}
	return strings.Join(sentences, " ")
}
