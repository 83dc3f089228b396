package reactions

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"
)

var allowedEmojis = []string{"👍", "❤️", "😂", "🎉"}

type Service struct {
	userReactionRepo UserReactionRepository
}

func NewService(userReactionRepo UserReactionRepository) *Service {
	return &Service{userReactionRepo: userReactionRepo}
}

type ReactionOption struct {
	Emoji     string `json:"emoji"`
	Count     int    `json:"count"`
	Selected  bool   `json:"selected"`
	Available bool   `json:"available"`
}

type TargetReactions struct {
	TargetType TargetType       `json:"targetType"`
	TargetID   string           `json:"targetId"`
	Options    []ReactionOption `json:"options"`
}

func (svc *Service) AllowedEmojis(targetType TargetType) ([]string, error) {
	if !targetType.IsValid() {
		return nil, &InvalidTargetTypeError{TargetType: targetType}
	}

	return slices.Clone(allowedEmojis), nil
}

// ToggleReaction sets the user's reaction on a target, replacing any
// previous emoji. Toggling the already-selected emoji removes it.
func (svc *Service) ToggleReaction(
	ctx context.Context,
	targetType TargetType,
	targetID string,
	userID string,
	emoji string,
) error {
	allowed, err := svc.AllowedEmojis(targetType)
	if err != nil {
		return fmt.Errorf("failed to get allowed emojis: %w", err)
	}

	if !slices.Contains(allowed, emoji) {
		return &InvalidEmojiError{
			TargetType: targetType,
			TargetID:   targetID,
			Emoji:      emoji,
			Allowed:    allowed,
		}
	}

	existingReaction, err := svc.userReactionRepo.FindByUserTarget(ctx, targetType, targetID, userID)
	if err != nil {
		var notFoundErr *UserReactionNotFoundError
		if !errors.As(err, &notFoundErr) {
			return fmt.Errorf("failed to get existing reaction: %w", err)
		}
	}

	if existingReaction != nil && existingReaction.Emoji == emoji {
		err = svc.userReactionRepo.DeleteByUserTarget(ctx, targetType, targetID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove reaction: %w", err)
		}

		return nil
	}

	userReaction := &UserReaction{
		TargetType: targetType,
		TargetID:   targetID,
		UserID:     userID,
		Emoji:      emoji,
		CreatedAt:  time.Now(),
	}

	err = svc.userReactionRepo.Upsert(ctx, userReaction)
	if err != nil {
		return fmt.Errorf("failed to set reaction: %w", err)
	}

	return nil
}

// GetTargetReactions returns every emoji option for a target. Emojis that
// were allowed once but no longer are still show up while they hold votes,
// marked unavailable.
func (svc *Service) GetTargetReactions(
	ctx context.Context,
	targetType TargetType,
	targetID string,
	currentUserID string,
) (*TargetReactions, error) {
	allowed, err := svc.AllowedEmojis(targetType)
	if err != nil {
		return nil, fmt.Errorf("failed to get allowed emojis: %w", err)
	}

	counts, err := svc.userReactionRepo.CountByTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get counts by target: %w", err)
	}

	selectedEmoji := ""

	if currentUserID != "" {
		userReaction, err := svc.userReactionRepo.FindByUserTarget(ctx, targetType, targetID, currentUserID)
		if err != nil {
			var notFoundErr *UserReactionNotFoundError
			if !errors.As(err, &notFoundErr) {
				return nil, fmt.Errorf("failed to get user reaction: %w", err)
			}
		}

		if userReaction != nil {
			selectedEmoji = userReaction.Emoji
		}
	}

	options := make([]ReactionOption, 0, len(allowed))
	allowedSet := make(map[string]struct{}, len(allowed))

	for _, emoji := range allowed {
		allowedSet[emoji] = struct{}{}

		options = append(options, ReactionOption{
			Emoji:     emoji,
			Count:     counts[emoji],
			Selected:  emoji == selectedEmoji,
			Available: true,
		})
	}

	extraEmojis := make([]string, 0)

	for emoji, count := range counts {
		if count <= 0 {
			continue
		}

		if _, ok := allowedSet[emoji]; ok {
			continue
		}

		extraEmojis = append(extraEmojis, emoji)
	}

	slices.Sort(extraEmojis)

	for _, emoji := range extraEmojis {
		options = append(options, ReactionOption{
			Emoji:     emoji,
			Count:     counts[emoji],
			Selected:  emoji == selectedEmoji,
			Available: false,
		})
	}

	return &TargetReactions{
		TargetType: targetType,
		TargetID:   targetID,
		Options:    options,
	}, nil
}
