package sqlite3_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harupress/harupress/assets"
	"github.com/harupress/harupress/auth"
	"github.com/harupress/harupress/contents"
	"github.com/harupress/harupress/db/sqlite3"
	"github.com/harupress/harupress/discuss"
	"github.com/harupress/harupress/guestbook"
	"github.com/harupress/harupress/reactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	// a named in-memory database with a shared cache, so every pool
	// connection sees the same data
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := sqlite3.NewDB(ctx, dsn)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite3.MigrateUp(ctx, db))

	return db
}

func insertPost(t *testing.T, repo *sqlite3.PostRepository, post *contents.Post) *contents.Post {
	t.Helper()

	timeNow := time.Now().UTC().Truncate(time.Second)

	if post.ID == "" {
		post.ID = uuid.NewString()
	}

	if post.Title == "" {
		post.Title = "title"
	}

	if post.Slug == "" {
		post.Slug = post.ID
	}

	if post.CreatedAt.IsZero() {
		post.CreatedAt = timeNow
	}

	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = timeNow
	}

	require.NoError(t, repo.Insert(context.Background(), post))

	return post
}

func TestPostRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("round trip with tags", func(t *testing.T) {
		t.Parallel()

		repo := sqlite3.NewPostRepository(newTestDB(t))

		post := insertPost(t, repo, &contents.Post{
			Title:     "Hello",
			Slug:      "hello",
			Body:      "body",
			Tags:      []string{"go", "web"},
			Published: true,
		})

		found, err := repo.Find(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello", found.Title)
		assert.Equal(t, []string{"go", "web"}, found.Tags)

		bySlug, err := repo.FindBySlug(ctx, "hello")
		require.NoError(t, err)
		assert.Equal(t, post.ID, bySlug.ID)
	})

	t.Run("update replaces tags", func(t *testing.T) {
		t.Parallel()

		repo := sqlite3.NewPostRepository(newTestDB(t))

		post := insertPost(t, repo, &contents.Post{Tags: []string{"old"}})

		post.Tags = []string{"fresh", "new"}
		require.NoError(t, repo.Update(ctx, post))

		found, err := repo.Find(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"fresh", "new"}, found.Tags)
	})

	t.Run("soft-deleted posts disappear from lookups", func(t *testing.T) {
		t.Parallel()

		repo := sqlite3.NewPostRepository(newTestDB(t))

		post := insertPost(t, repo, &contents.Post{Slug: "gone"})

		require.NoError(t, repo.SoftDelete(ctx, post.ID, time.Now()))

		_, err := repo.Find(ctx, post.ID)

		notFoundErr := &contents.PostNotFoundError{}
		require.ErrorAs(t, err, &notFoundErr)

		_, err = repo.FindBySlug(ctx, "gone")

		bySlugNotFoundErr := &contents.PostBySlugNotFoundError{}
		require.ErrorAs(t, err, &bySlugNotFoundErr)

		err = repo.SoftDelete(ctx, post.ID, time.Now())
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("list filters", func(t *testing.T) {
		t.Parallel()

		db := newTestDB(t)
		repo := sqlite3.NewPostRepository(db)

		published := insertPost(t, repo, &contents.Post{Published: true, Tags: []string{"go"}})
		insertPost(t, repo, &contents.Post{Published: false})

		list, err := repo.List(ctx, &contents.ListPostsParams{PublishedOnly: true})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, published.ID, list[0].ID)

		list, err = repo.List(ctx, &contents.ListPostsParams{})
		require.NoError(t, err)
		assert.Len(t, list, 2)

		list, err = repo.List(ctx, &contents.ListPostsParams{Tag: "go"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, published.ID, list[0].ID)

		list, err = repo.List(ctx, &contents.ListPostsParams{Tag: "missing"})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("tag counts cover published posts only", func(t *testing.T) {
		t.Parallel()

		repo := sqlite3.NewPostRepository(newTestDB(t))

		insertPost(t, repo, &contents.Post{Published: true, Tags: []string{"go", "web"}})
		insertPost(t, repo, &contents.Post{Published: true, Tags: []string{"go"}})
		insertPost(t, repo, &contents.Post{Published: false, Tags: []string{"draft-only"}})

		counts, err := repo.ListTags(ctx)
		require.NoError(t, err)

		require.Len(t, counts, 2)
		assert.Equal(t, &contents.TagCount{Tag: "go", Count: 2}, counts[0])
		assert.Equal(t, &contents.TagCount{Tag: "web", Count: 1}, counts[1])
	})
}

func TestCategoryRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	db := newTestDB(t)
	repo := sqlite3.NewCategoryRepository(db)

	category := &contents.Category{
		ID:        uuid.NewString(),
		Name:      "Notes",
		Slug:      "notes",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Insert(ctx, category))

	found, err := repo.FindBySlug(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, category.ID, found.ID)

	t.Run("deleting a category detaches its posts", func(t *testing.T) {
		postRepo := sqlite3.NewPostRepository(db)

		post := insertPost(t, postRepo, &contents.Post{CategoryID: &category.ID})

		require.NoError(t, repo.Delete(ctx, category.ID))

		found, err := postRepo.Find(ctx, post.ID)
		require.NoError(t, err)
		assert.Nil(t, found.CategoryID)
	})
}

func guestAuthorship(name string) discuss.Authorship {
	hash := "$2a$04$notacheckablehashbutok"

	return discuss.Authorship{
		AuthorType:        discuss.AuthorTypeGuest,
		GuestName:         &name,
		GuestPasswordHash: &hash,
	}
}

func insertComment(t *testing.T, repo *sqlite3.CommentRepository, comment *discuss.Comment) *discuss.Comment {
	t.Helper()

	timeNow := time.Now().UTC().Truncate(time.Second)

	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	if comment.AuthorType == "" {
		comment.Authorship = guestAuthorship("guest")
	}

	if comment.Status == "" {
		comment.Status = discuss.StatusActive
	}

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = timeNow
	}

	if comment.UpdatedAt.IsZero() {
		comment.UpdatedAt = timeNow
	}

	require.NoError(t, repo.Insert(context.Background(), comment))

	return comment
}

func TestCommentRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	db := newTestDB(t)
	postRepo := sqlite3.NewPostRepository(db)
	repo := sqlite3.NewCommentRepository(db)

	post := insertPost(t, postRepo, &contents.Post{Published: true})

	createdAt := time.Now().UTC().Truncate(time.Second)

	first := insertComment(t, repo, &discuss.Comment{PostID: post.ID, Body: "first", CreatedAt: createdAt})
	second := insertComment(t, repo, &discuss.Comment{PostID: post.ID, Body: "second", CreatedAt: createdAt})
	third := insertComment(t, repo, &discuss.Comment{PostID: post.ID, Body: "third", CreatedAt: createdAt})

	t.Run("list keeps insertion order on equal timestamps", func(t *testing.T) {
		list, err := repo.ListActiveByPost(ctx, post.ID)
		require.NoError(t, err)

		require.Len(t, list, 3)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
		assert.Equal(t, third.ID, list[2].ID)
	})

	t.Run("authorship columns survive the round trip", func(t *testing.T) {
		found, err := repo.Find(ctx, first.ID)
		require.NoError(t, err)

		assert.Equal(t, discuss.AuthorTypeGuest, found.AuthorType)
		require.NotNil(t, found.GuestName)
		assert.Equal(t, "guest", *found.GuestName)
		require.NotNil(t, found.GuestPasswordHash)
		assert.Nil(t, found.OAuthAccountID)
	})

	t.Run("soft delete hides and is not repeatable", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, third.ID, time.Now()))

		count, err := repo.CountActiveByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		list, err := repo.ListActiveByPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		err = repo.SoftDelete(ctx, third.ID, time.Now())

		notFoundErr := &discuss.CommentNotFoundError{}
		require.ErrorAs(t, err, &notFoundErr)
	})
}

func TestGuestbookEntryRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	repo := sqlite3.NewGuestbookEntryRepository(newTestDB(t))

	createdAt := time.Now().UTC().Truncate(time.Second)

	ids := make([]string, 0, 5)

	for i := range 5 {
		entry := &guestbook.Entry{
			ID:         uuid.NewString(),
			Authorship: guestAuthorship("guest"),
			Body:       fmt.Sprintf("entry %d", i),
			Status:     discuss.StatusActive,
			CreatedAt:  createdAt,
			UpdatedAt:  createdAt,
		}

		require.NoError(t, repo.Insert(ctx, entry))

		ids = append(ids, entry.ID)
	}

	count, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	page, err := repo.ListActivePage(ctx, 2, 2)
	require.NoError(t, err)

	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)

	require.NoError(t, repo.SoftDelete(ctx, ids[0], time.Now()))

	count, err = repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestUserReactionRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	repo := sqlite3.NewUserReactionRepository(newTestDB(t))

	createdAt := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Upsert(ctx, &reactions.UserReaction{
		TargetType: reactions.TargetTypePost,
		TargetID:   "post-1",
		UserID:     "user-1",
		Emoji:      "👍",
		CreatedAt:  createdAt,
	}))

	require.NoError(t, repo.Upsert(ctx, &reactions.UserReaction{
		TargetType: reactions.TargetTypePost,
		TargetID:   "post-1",
		UserID:     "user-2",
		Emoji:      "👍",
		CreatedAt:  createdAt,
	}))

	t.Run("upsert replaces the emoji in place", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, &reactions.UserReaction{
			TargetType: reactions.TargetTypePost,
			TargetID:   "post-1",
			UserID:     "user-1",
			Emoji:      "❤️",
			CreatedAt:  createdAt,
		}))

		reaction, err := repo.FindByUserTarget(ctx, reactions.TargetTypePost, "post-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, "❤️", reaction.Emoji)

		counts, err := repo.CountByTarget(ctx, reactions.TargetTypePost, "post-1")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"❤️": 1, "👍": 1}, counts)
	})

	t.Run("delete removes a single vote", func(t *testing.T) {
		require.NoError(t, repo.DeleteByUserTarget(ctx, reactions.TargetTypePost, "post-1", "user-2"))

		_, err := repo.FindByUserTarget(ctx, reactions.TargetTypePost, "post-1", "user-2")

		notFoundErr := &reactions.UserReactionNotFoundError{}
		require.ErrorAs(t, err, &notFoundErr)
	})
}

func TestStatsRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	db := newTestDB(t)
	postRepo := sqlite3.NewPostRepository(db)
	repo := sqlite3.NewStatsRepository(db)

	post := insertPost(t, postRepo, &contents.Post{Published: true})

	t.Run("unknown post reads as zero", func(t *testing.T) {
		res, err := repo.PostStats(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, res.ViewCount)
	})

	t.Run("increments accumulate", func(t *testing.T) {
		require.NoError(t, repo.IncrementPostView(ctx, post.ID, time.Now()))
		require.NoError(t, repo.IncrementPostView(ctx, post.ID, time.Now()))

		res, err := repo.PostStats(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.ViewCount)

		summary, err := repo.SummaryCounts(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, summary.TotalPostViews)
		assert.EqualValues(t, 1, summary.PublishedPosts)
	})
}

func TestAccountRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	repo := sqlite3.NewAccountRepository(newTestDB(t))

	account := &auth.Account{
		ID:             uuid.NewString(),
		Provider:       auth.ProviderGitHub,
		ProviderUserID: "12345",
		Name:           "Haru",
		Email:          "haru@example.com",
		RegisteredAt:   time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Insert(ctx, account))

	found, err := repo.FindByProvider(ctx, auth.ProviderGitHub, "12345")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)

	_, err = repo.FindByProvider(ctx, auth.ProviderGoogle, "12345")

	notFoundErr := &auth.AccountNotFoundError{}
	require.ErrorAs(t, err, &notFoundErr)

	account.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, account))

	found, err = repo.Find(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)

	err = repo.Update(ctx, &auth.Account{ID: "missing"})
	require.ErrorAs(t, err, &notFoundErr)
}

func TestAdminRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	repo := sqlite3.NewAdminRepository(newTestDB(t))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	admin := &auth.Admin{
		ID:           uuid.NewString(),
		Username:     "haru",
		PasswordHash: "hash",
		RegisteredAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Insert(ctx, admin))

	found, err := repo.FindByUsername(ctx, "haru")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = repo.FindByUsername(ctx, "nobody")

	notFoundErr := &auth.AdminByUsernameNotFoundError{}
	require.ErrorAs(t, err, &notFoundErr)
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	repo := sqlite3.NewSessionRepository(newTestDB(t))

	session := &auth.Session{
		ID:        uuid.NewString(),
		Kind:      auth.SessionKindUser,
		SubjectID: "account-1",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		ExpiresAt: time.Now().UTC().Truncate(time.Second).Add(time.Hour),
	}

	require.NoError(t, repo.Insert(ctx, session))

	found, err := repo.Find(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.SessionKindUser, found.Kind)
	assert.Equal(t, "account-1", found.SubjectID)

	require.NoError(t, repo.Delete(ctx, session.ID))

	_, err = repo.Find(ctx, session.ID)

	notFoundErr := &auth.SessionNotFoundError{}
	require.ErrorAs(t, err, &notFoundErr)
}

func TestAssetRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	repo := sqlite3.NewAssetRepository(newTestDB(t))

	asset := assets.Asset{
		ID:          uuid.NewString(),
		FileName:    "photo.jpg",
		Key:         "2026/08/abc.jpg",
		ContentType: "image/jpeg",
		Size:        1024,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Insert(ctx, asset))

	found, err := repo.Find(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026/08/abc.jpg", found.Key)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, asset.ID))

	notFoundErr := &assets.AssetNotFoundError{}

	_, err = repo.Find(ctx, asset.ID)
	require.ErrorAs(t, err, &notFoundErr)

	err = repo.Delete(ctx, asset.ID)
	require.ErrorAs(t, err, &notFoundErr)
}

func TestTransactor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	db := newTestDB(t)
	tx := sqlite3.NewTransactor(db)
	repo := sqlite3.NewCategoryRepository(db)

	t.Run("rolls back on error", func(t *testing.T) {
		errBoom := errors.New("boom")

		err := tx.InTransaction(ctx, func(ctx context.Context) error {
			insertErr := repo.Insert(ctx, &contents.Category{
				ID:        "rolled-back",
				Name:      "Rolled back",
				Slug:      "rolled-back",
				CreatedAt: time.Now(),
			})
			require.NoError(t, insertErr)

			return errBoom
		})
		require.ErrorIs(t, err, errBoom)

		_, err = repo.Find(ctx, "rolled-back")

		notFoundErr := &contents.CategoryNotFoundError{}
		require.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("commits on success and joins nested calls", func(t *testing.T) {
		err := tx.InTransaction(ctx, func(ctx context.Context) error {
			return tx.InTransaction(ctx, func(ctx context.Context) error {
				return repo.Insert(ctx, &contents.Category{
					ID:        "committed",
					Name:      "Committed",
					Slug:      "committed",
					CreatedAt: time.Now(),
				})
			})
		})
		require.NoError(t, err)

		found, err := repo.Find(ctx, "committed")
		require.NoError(t, err)
		assert.Equal(t, "Committed", found.Name)
	})
}
