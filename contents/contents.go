package contents

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	postRepo     PostRepository
	categoryRepo CategoryRepository
}

func NewService(postRepo PostRepository, categoryRepo CategoryRepository) *Service {
	return &Service{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Slugify derives a url slug from a title: lowercase, non-alphanumerics
// collapsed into single hyphens.
func Slugify(title string) string {
	var b strings.Builder

	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)

			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')

				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

type CreatePostRequest struct {
	Title      string
	Slug       string
	Body       string
	CategoryID *string
	Tags       []string
	Published  bool
}

func (svc *Service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if req.Title == "" {
		return nil, &InvalidPostError{Reason: "title is required"}
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Title)
	}

	if !slugPattern.MatchString(slug) {
		return nil, &InvalidSlugError{Slug: slug}
	}

	err := svc.ensureSlugFree(ctx, slug, "")
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		_, err := svc.categoryRepo.Find(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to find category: %w", err)
		}
	}

	timeNow := time.Now()

	post := &Post{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Slug:       slug,
		Body:       req.Body,
		CategoryID: req.CategoryID,
		Tags:       normalizeTags(req.Tags),
		Published:  req.Published,
		CreatedAt:  timeNow,
		UpdatedAt:  timeNow,
	}

	err = svc.postRepo.Insert(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	return post, nil
}

type UpdatePostRequest struct {
	Title         *string
	Slug          *string
	Body          *string
	CategoryID    *string
	ClearCategory bool
	Tags          []string
	Published     *bool
}

func (svc *Service) UpdatePost(ctx context.Context, postID string, req UpdatePostRequest) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, &InvalidPostError{Reason: "title must not be empty"}
		}

		post.Title = *req.Title
	}

	if req.Slug != nil {
		if !slugPattern.MatchString(*req.Slug) {
			return nil, &InvalidSlugError{Slug: *req.Slug}
		}

		err := svc.ensureSlugFree(ctx, *req.Slug, post.ID)
		if err != nil {
			return nil, err
		}

		post.Slug = *req.Slug
	}

	if req.Body != nil {
		post.Body = *req.Body
	}

	switch {
	case req.ClearCategory:
		post.CategoryID = nil
	case req.CategoryID != nil:
		_, err := svc.categoryRepo.Find(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to find category: %w", err)
		}

		post.CategoryID = req.CategoryID
	}

	if req.Tags != nil {
		post.Tags = normalizeTags(req.Tags)
	}

	if req.Published != nil {
		post.Published = *req.Published
	}

	post.UpdatedAt = time.Now()

	err = svc.postRepo.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

func (svc *Service) ensureSlugFree(ctx context.Context, slug, selfID string) error {
	existing, err := svc.postRepo.FindBySlug(ctx, slug)
	if err != nil {
		var notFoundErr *PostBySlugNotFoundError
		if errors.As(err, &notFoundErr) {
			return nil
		}

		return fmt.Errorf("failed to check slug: %w", err)
	}

	if existing.ID == selfID {
		return nil
	}

	return &PostSlugExistsError{Slug: slug}
}

// GetPost returns the post; unpublished posts are visible to admins only.
func (svc *Service) GetPost(ctx context.Context, postID string, includeUnpublished bool) (*Post, error) {
	post, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.Published && !includeUnpublished {
		return nil, &PostNotFoundError{ID: postID}
	}

	return post, nil
}

func (svc *Service) GetPostBySlug(ctx context.Context, slug string, includeUnpublished bool) (*Post, error) {
	post, err := svc.postRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !post.Published && !includeUnpublished {
		return nil, &PostBySlugNotFoundError{Slug: slug}
	}

	return post, nil
}

func (svc *Service) ListPosts(ctx context.Context, params *ListPostsParams) ([]*Post, error) {
	posts, err := svc.postRepo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (svc *Service) DeletePost(ctx context.Context, postID string) error {
	_, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		return err
	}

	err = svc.postRepo.SoftDelete(ctx, postID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to soft-delete post: %w", err)
	}

	return nil
}

// PostExists reports whether a post exists and is not soft-deleted. This is
// the lookup the discussion service validates against.
func (svc *Service) PostExists(ctx context.Context, postID string) (bool, error) {
	_, err := svc.postRepo.Find(ctx, postID)
	if err != nil {
		var notFoundErr *PostNotFoundError
		if errors.As(err, &notFoundErr) {
			return false, nil
		}

		return false, fmt.Errorf("failed to find post: %w", err)
	}

	return true, nil
}

type CreateCategoryRequest struct {
	Name        string
	Slug        string
	Description string
}

func (svc *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if req.Name == "" {
		return nil, &InvalidPostError{Reason: "category name is required"}
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Name)
	}

	if !slugPattern.MatchString(slug) {
		return nil, &InvalidSlugError{Slug: slug}
	}

	_, err := svc.categoryRepo.FindBySlug(ctx, slug)
	if err == nil {
		return nil, &CategorySlugExistsError{Slug: slug}
	}

	var notFoundErr *CategoryBySlugNotFoundError
	if !errors.As(err, &notFoundErr) {
		return nil, fmt.Errorf("failed to check category slug: %w", err)
	}

	category := &Category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}

	err = svc.categoryRepo.Insert(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	return category, nil
}

type UpdateCategoryRequest struct {
	Name        *string
	Description *string
}

func (svc *Service) UpdateCategory(ctx context.Context, categoryID string, req UpdateCategoryRequest) (*Category, error) {
	category, err := svc.categoryRepo.Find(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, &InvalidPostError{Reason: "category name must not be empty"}
		}

		category.Name = *req.Name
	}

	if req.Description != nil {
		category.Description = *req.Description
	}

	err = svc.categoryRepo.Update(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

func (svc *Service) DeleteCategory(ctx context.Context, categoryID string) error {
	_, err := svc.categoryRepo.Find(ctx, categoryID)
	if err != nil {
		return err
	}

	err = svc.categoryRepo.Delete(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

func (svc *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	categories, err := svc.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

func (svc *Service) ListTags(ctx context.Context) ([]*TagCount, error) {
	tags, err := svc.postRepo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	return tags, nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))

	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}

		if _, ok := seen[tag]; ok {
			continue
		}

		seen[tag] = struct{}{}

		normalized = append(normalized, tag)
	}

	return normalized
}
