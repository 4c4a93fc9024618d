package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vwmedia/siteutil/internal/models"
	"github.com/vwmedia/siteutil/pkg/logger"
)

var (
	// ErrPostNotFound indicates the requested post does not exist.
	ErrPostNotFound = errors.New("post service: post not found")
	// ErrPostSlugTaken indicates another post already uses the slug.
	ErrPostSlugTaken = errors.New("post service: slug already in use")
	// ErrPostInvalid wraps input that cannot form a post.
	ErrPostInvalid = errors.New("post service: invalid post")
)

// SitemapBuilder regenerates the sitemap after content changes.
type SitemapBuilder interface {
	Build(ctx context.Context) (int, error)
}

// PostInput captures the fields accepted when creating or replacing a post.
type PostInput struct {
	Title  string `json:"title" validate:"required,max=255"`
	Slug   string `json:"slug" validate:"omitempty,slug,max=191"`
	Type   string `json:"type" validate:"omitempty,oneof=post page"`
	Status string `json:"status" validate:"omitempty,oneof=draft publish"`
}

// PostService manages site content and keeps the sitemap current.
type PostService struct {
	db      *gorm.DB
	sitemap SitemapBuilder
	now     func() time.Time
	log     *zap.Logger
}

// PostServiceOption customises PostService behaviour.
type PostServiceOption func(*PostService)

// WithSitemapBuilder rebuilds the sitemap after every successful change.
func WithSitemapBuilder(builder SitemapBuilder) PostServiceOption {
	return func(svc *PostService) {
		svc.sitemap = builder
	}
}

// WithClock overrides the modification timestamp source.
func WithClock(now func() time.Time) PostServiceOption {
	return func(svc *PostService) {
		if now != nil {
			svc.now = now
		}
	}
}

// NewPostService constructs a post service once a database handle is supplied.
func NewPostService(db *gorm.DB, opts ...PostServiceOption) (*PostService, error) {
	if db == nil {
		return nil, errors.New("post service: db is required")
	}
	svc := &PostService{
		db:  db,
		now: time.Now,
		log: logger.WithModule("posts"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// List returns posts, most recently modified first. An empty status matches all.
func (s *PostService) List(ctx context.Context, status string) ([]models.Post, error) {
	q := s.db.WithContext(ensureContext(ctx)).Model(&models.Post{})
	if status = strings.TrimSpace(status); status != "" {
		q = q.Where("status = ?", status)
	}

	var posts []models.Post
	if err := q.Order("modified_at DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("post service: list: %w", err)
	}
	return posts, nil
}

// Get returns a single post by ID.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ensureContext(ctx)).Take(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("post service: get: %w", err)
	}
	return &post, nil
}

// Create stores a new post.
func (s *PostService) Create(ctx context.Context, input PostInput) (*models.Post, error) {
	ctx = ensureContext(ctx)

	post := models.Post{}
	if err := applyPostInput(&post, input); err != nil {
		return nil, err
	}
	post.ModifiedAt = s.now().UTC()

	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrPostSlugTaken
		}
		return nil, fmt.Errorf("post service: create: %w", err)
	}

	s.changed(ctx, post)
	return &post, nil
}

// Update replaces the mutable fields of an existing post.
func (s *PostService) Update(ctx context.Context, id string, input PostInput) (*models.Post, error) {
	ctx = ensureContext(ctx)

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPostInput(post, input); err != nil {
		return nil, err
	}
	post.ModifiedAt = s.now().UTC()

	if err := s.db.WithContext(ctx).Save(post).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrPostSlugTaken
		}
		return nil, fmt.Errorf("post service: update: %w", err)
	}

	s.changed(ctx, *post)
	return post, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("post service: delete: %w", err)
	}

	s.changed(ctx, *post)
	return nil
}

func (s *PostService) changed(ctx context.Context, post models.Post) {
	s.log.Debug("post saved", zap.String("id", post.ID), zap.String("status", post.Status))
	if s.sitemap == nil {
		return
	}
	if _, err := s.sitemap.Build(ctx); err != nil {
		s.log.Warn("sitemap rebuild after post change failed", zap.String("post_id", post.ID), zap.Error(err))
	}
}

func applyPostInput(post *models.Post, input PostInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrPostInvalid)
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = slugify(title)
	}
	if slug == "" {
		return fmt.Errorf("%w: slug is required", ErrPostInvalid)
	}

	postType := strings.TrimSpace(input.Type)
	if postType == "" {
		postType = models.PostTypePost
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.PostStatusDraft
	}

	post.Title = title
	post.Slug = slug
	post.Type = postType
	post.Status = status
	return nil
}
