package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vadim/meta-bridge/internal/domain/publication/dao"
	"github.com/vadim/meta-bridge/internal/domain/publication/entity"
)

// Uploader stores media binaries and returns a publicly reachable URL
type Uploader interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
}

// Service handles business logic for stored posts
type Service struct {
	posts    dao.PostRepository
	media    dao.MediaRepository
	outcomes dao.OutcomeRepository
	uploader Uploader
	logger   *slog.Logger
}

// New creates a new publication service
func New(posts dao.PostRepository, media dao.MediaRepository, outcomes dao.OutcomeRepository, uploader Uploader, logger *slog.Logger) *Service {
	return &Service{
		posts:    posts,
		media:    media,
		outcomes: outcomes,
		uploader: uploader,
		logger:   logger,
	}
}

// CreateInput represents input for creating a post record
type CreateInput struct {
	UserID              string
	Text                string
	CommentLink         string
	LinkURL             string
	BusinessManagerID   string
	BusinessManagerName string
	ScheduledAt         *time.Time
}

// CreatePost creates a new post record awaiting media and dispatch
func (s *Service) CreatePost(ctx context.Context, in CreateInput) (*entity.Post, error) {
	now := time.Now()

	status := entity.PostStatusPending
	if in.ScheduledAt != nil {
		status = entity.PostStatusScheduled
	}

	post := &entity.Post{
		ID:                  uuid.New().String(),
		UserID:              in.UserID,
		Text:                in.Text,
		CommentLink:         in.CommentLink,
		LinkURL:             in.LinkURL,
		BusinessManagerID:   in.BusinessManagerID,
		BusinessManagerName: in.BusinessManagerName,
		Status:              status,
		ScheduledAt:         in.ScheduledAt,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// FileInput is one media file handed over for upload
type FileInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// AttachMedia uploads the given files one at a time and records each item
// on the post. Files are processed strictly sequentially: one upload must
// finish, successfully or not, before the next begins. A failed file is
// recorded with its error and the remaining files are still attempted.
func (s *Service) AttachMedia(ctx context.Context, postID string, files []FileInput) ([]entity.MediaItem, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, entity.ErrPostNotFound
	}

	items := make([]entity.MediaItem, 0, len(files))
	for i, f := range files {
		item := entity.MediaItem{
			ID:          uuid.New().String(),
			ContentType: f.ContentType,
			IsVideo:     strings.HasPrefix(f.ContentType, "video/"),
			Position:    i,
			Status:      entity.MediaStatusPending,
			CreatedAt:   time.Now(),
		}

		key := fmt.Sprintf("posts/%s/%s_%s", postID, item.ID, f.Filename)
		url, uploadErr := s.uploader.Upload(ctx, key, f.ContentType, f.Body)
		if uploadErr != nil {
			item.Status = entity.MediaStatusFailed
			item.ErrorMessage = uploadErr.Error()
			s.logger.Error("media upload failed",
				"post_id", postID,
				"filename", f.Filename,
				"position", i,
				"error", uploadErr,
			)
		} else {
			item.Status = entity.MediaStatusUploaded
			item.URL = url
		}

		if err := s.media.Create(ctx, postID, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// MediaRefInput is one already-uploaded media file to record on a post
type MediaRefInput struct {
	URL         string
	ContentType string
	IsVideo     bool
}

// AttachExisting records media that was uploaded earlier, during composition,
// without re-uploading the binaries
func (s *Service) AttachExisting(ctx context.Context, postID string, refs []MediaRefInput) ([]entity.MediaItem, error) {
	items := make([]entity.MediaItem, 0, len(refs))
	for i, ref := range refs {
		item := entity.MediaItem{
			ID:          uuid.New().String(),
			URL:         ref.URL,
			ContentType: ref.ContentType,
			IsVideo:     ref.IsVideo,
			Position:    i,
			Status:      entity.MediaStatusUploaded,
			CreatedAt:   time.Now(),
		}
		if err := s.media.Create(ctx, postID, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// UploadedMedia returns the post's successfully uploaded media, in order
func (s *Service) UploadedMedia(ctx context.Context, postID string) ([]entity.MediaItem, error) {
	all, err := s.media.GetByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	var items []entity.MediaItem
	for _, item := range all {
		if item.Status == entity.MediaStatusUploaded {
			items = append(items, item)
		}
	}
	return items, nil
}

// GetPost retrieves a post with its media and, when dispatched, its result
func (s *Service) GetPost(ctx context.Context, id string) (*entity.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, entity.ErrPostNotFound
	}

	media, err := s.media.GetByPostID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Media = media

	result, err := s.outcomes.GetByPostID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Result = result

	return post, nil
}

// ListInput represents input for listing posts
type ListInput struct {
	UserID string
	Status *entity.PostStatus
	Limit  int
	Offset int
}

// ListOutput represents the result of listing posts
type ListOutput struct {
	Posts []entity.Post
	Total int64
}

// ListPosts retrieves a page of the user's post history, newest first
func (s *Service) ListPosts(ctx context.Context, in ListInput) (*ListOutput, error) {
	filter := dao.PostFilter{
		UserID: in.UserID,
		Status: in.Status,
	}

	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	posts, err := s.posts.List(ctx, filter, dao.ListOptions{
		Limit:  limit,
		Offset: in.Offset,
		SortBy: "created_at",
		Desc:   true,
	})
	if err != nil {
		return nil, err
	}

	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListOutput{Posts: posts, Total: total}, nil
}

// DeletePost removes a stored post that has not been pushed to the platforms
func (s *Service) DeletePost(ctx context.Context, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		return entity.ErrPostNotFound
	}
	if !post.IsDeletable() {
		return entity.ErrPostNotDeletable
	}

	if err := s.media.DeleteByPostID(ctx, id); err != nil {
		return err
	}

	return s.posts.Delete(ctx, id)
}

// SavePlan stores the planned targets of a scheduled post as pending
// outcomes, so the dispatch run knows where the post is going
func (s *Service) SavePlan(ctx context.Context, postID string, main *entity.TargetRef, additional []entity.TargetRef) error {
	plan := &entity.PublicationResult{}
	if main != nil {
		plan.SetMain(entity.TargetOutcome{Target: *main, Status: entity.OutcomePending})
	}
	for _, ref := range additional {
		plan.AddAdditional(entity.TargetOutcome{Target: ref, Status: entity.OutcomePending})
	}

	return s.outcomes.SaveResult(ctx, postID, plan)
}

// RecordResult persists the per-target outcomes of a dispatched submission
// and moves the post to the status the result implies. Any earlier plan is
// replaced.
func (s *Service) RecordResult(ctx context.Context, postID string, result *entity.PublicationResult) error {
	if err := s.outcomes.DeleteByPostID(ctx, postID); err != nil {
		return err
	}
	if err := s.outcomes.SaveResult(ctx, postID, result); err != nil {
		return err
	}

	status := result.DeriveStatus()
	var publishedAt *time.Time
	if status == entity.PostStatusPublished || status == entity.PostStatusPartial {
		now := time.Now()
		publishedAt = &now
	}

	return s.posts.UpdateStatus(ctx, postID, status, publishedAt)
}

// MarkFailed moves a post to the failed status without a per-target result,
// used when the submission could not be dispatched at all
func (s *Service) MarkFailed(ctx context.Context, postID string) error {
	return s.posts.UpdateStatus(ctx, postID, entity.PostStatusFailed, nil)
}

// GetScheduledForPublishing retrieves scheduled posts due at the given time
func (s *Service) GetScheduledForPublishing(ctx context.Context, now time.Time) ([]entity.Post, error) {
	return s.posts.GetScheduledForPublishing(ctx, now)
}
