package reactions_test

import (
	"context"
	"testing"
	"time"

	"github.com/harupress/harupress/reactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reactionKey struct {
	targetType reactions.TargetType
	targetID   string
	userID     string
}

type fakeUserReactionRepo struct {
	reactions map[reactionKey]*reactions.UserReaction
}

func newFakeUserReactionRepo() *fakeUserReactionRepo {
	return &fakeUserReactionRepo{reactions: make(map[reactionKey]*reactions.UserReaction)}
}

func (repo *fakeUserReactionRepo) FindByUserTarget(
	_ context.Context,
	targetType reactions.TargetType,
	targetID string,
	userID string,
) (*reactions.UserReaction, error) {
	reaction, ok := repo.reactions[reactionKey{targetType, targetID, userID}]
	if !ok {
		return nil, &reactions.UserReactionNotFoundError{
			TargetType: targetType,
			TargetID:   targetID,
			UserID:     userID,
		}
	}

	clone := *reaction

	return &clone, nil
}

func (repo *fakeUserReactionRepo) Upsert(_ context.Context, reaction *reactions.UserReaction) error {
	clone := *reaction
	repo.reactions[reactionKey{reaction.TargetType, reaction.TargetID, reaction.UserID}] = &clone

	return nil
}

func (repo *fakeUserReactionRepo) DeleteByUserTarget(
	_ context.Context,
	targetType reactions.TargetType,
	targetID string,
	userID string,
) error {
	delete(repo.reactions, reactionKey{targetType, targetID, userID})

	return nil
}

func (repo *fakeUserReactionRepo) CountByTarget(
	_ context.Context,
	targetType reactions.TargetType,
	targetID string,
) (map[string]int, error) {
	counts := make(map[string]int)

	for key, reaction := range repo.reactions {
		if key.targetType == targetType && key.targetID == targetID {
			counts[reaction.Emoji]++
		}
	}

	return counts, nil
}

func optionFor(t *testing.T, res *reactions.TargetReactions, emoji string) reactions.ReactionOption {
	t.Helper()

	for _, option := range res.Options {
		if option.Emoji == emoji {
			return option
		}
	}

	t.Fatalf("no option for emoji %q", emoji)

	return reactions.ReactionOption{}
}

func TestToggleReaction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set, replace, then unset", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserReactionRepo()
		svc := reactions.NewService(repo)

		require.NoError(t, svc.ToggleReaction(ctx, reactions.TargetTypePost, "post-1", "user-1", "👍"))

		res, err := svc.GetTargetReactions(ctx, reactions.TargetTypePost, "post-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, 1, optionFor(t, res, "👍").Count)
		assert.True(t, optionFor(t, res, "👍").Selected)

		// a different emoji replaces the previous one
		require.NoError(t, svc.ToggleReaction(ctx, reactions.TargetTypePost, "post-1", "user-1", "❤️"))

		res, err = svc.GetTargetReactions(ctx, reactions.TargetTypePost, "post-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, 0, optionFor(t, res, "👍").Count)
		assert.Equal(t, 1, optionFor(t, res, "❤️").Count)

		// the same emoji again removes it
		require.NoError(t, svc.ToggleReaction(ctx, reactions.TargetTypePost, "post-1", "user-1", "❤️"))

		res, err = svc.GetTargetReactions(ctx, reactions.TargetTypePost, "post-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, 0, optionFor(t, res, "❤️").Count)
		assert.False(t, optionFor(t, res, "❤️").Selected)
	})

	t.Run("emoji outside the allowed set is rejected", func(t *testing.T) {
		t.Parallel()

		svc := reactions.NewService(newFakeUserReactionRepo())

		err := svc.ToggleReaction(ctx, reactions.TargetTypePost, "post-1", "user-1", "🤖")

		invalidEmojiErr := &reactions.InvalidEmojiError{}
		require.ErrorAs(t, err, &invalidEmojiErr)
	})

	t.Run("unknown target type is rejected", func(t *testing.T) {
		t.Parallel()

		svc := reactions.NewService(newFakeUserReactionRepo())

		err := svc.ToggleReaction(ctx, reactions.TargetType("page"), "x", "user-1", "👍")

		invalidTargetTypeErr := &reactions.InvalidTargetTypeError{}
		require.ErrorAs(t, err, &invalidTargetTypeErr)
	})
}

func TestGetTargetReactions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("anonymous viewers see counts but nothing selected", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserReactionRepo()
		svc := reactions.NewService(repo)

		require.NoError(t, svc.ToggleReaction(ctx, reactions.TargetTypeComment, "comment-1", "user-1", "🎉"))

		res, err := svc.GetTargetReactions(ctx, reactions.TargetTypeComment, "comment-1", "")
		require.NoError(t, err)

		option := optionFor(t, res, "🎉")
		assert.Equal(t, 1, option.Count)
		assert.False(t, option.Selected)
		assert.True(t, option.Available)
	})

	t.Run("retired emojis with votes stay visible but unavailable", func(t *testing.T) {
		t.Parallel()

		repo := newFakeUserReactionRepo()
		svc := reactions.NewService(repo)

		// a vote written before the emoji left the allowed set
		require.NoError(t, repo.Upsert(ctx, &reactions.UserReaction{
			TargetType: reactions.TargetTypePost,
			TargetID:   "post-1",
			UserID:     "user-1",
			Emoji:      "🔥",
			CreatedAt:  time.Now(),
		}))

		res, err := svc.GetTargetReactions(ctx, reactions.TargetTypePost, "post-1", "user-1")
		require.NoError(t, err)

		option := optionFor(t, res, "🔥")
		assert.Equal(t, 1, option.Count)
		assert.True(t, option.Selected)
		assert.False(t, option.Available)

		allowed, err := svc.AllowedEmojis(reactions.TargetTypePost)
		require.NoError(t, err)
		assert.Len(t, res.Options, len(allowed)+1)
	})
}
