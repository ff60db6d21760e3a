package policy

import (
	"context"
	"log/slog"
	"time"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
	"github.com/vadim/meta-bridge/internal/domain/publication/entity"
	"github.com/vadim/meta-bridge/internal/domain/publication/service"
)

// MediaRef is one media file attached to an outgoing publication
type MediaRef struct {
	URL     string
	IsVideo bool
}

// PublishRequest describes one per-target publish call
type PublishRequest struct {
	Kind        catalog.TargetKind
	TargetID    string
	AccessToken string
	Message     string
	Media       []MediaRef
	LinkURL     string
	CommentLink string
}

// PublishResponse is the platform's answer to one publish call
type PublishResponse struct {
	PostID    string
	CommentID string
}

// TargetPublisher defines the interface for pushing content to one target.
// This interface is defined here (consumer) not in the upstream package
// (provider).
type TargetPublisher interface {
	PublishTarget(ctx context.Context, in PublishRequest) (*PublishResponse, error)
}

// TokenProvider defines the interface for getting the user's access token
type TokenProvider interface {
	GetAccessToken(ctx context.Context, userID string) (string, error)
}

// TargetResolver defines the interface for re-resolving a stored target
// against the user's current catalog, fresh access token included
type TargetResolver interface {
	ResolveTarget(ctx context.Context, userID string, key catalog.TargetKey) (catalog.PlatformTarget, error)
}

// Policy orchestrates publication use-cases
type Policy struct {
	svc       *service.Service
	publisher TargetPublisher
	tokens    TokenProvider
	resolver  TargetResolver
	logger    *slog.Logger
}

// New creates a new publication policy
func New(svc *service.Service, publisher TargetPublisher, tokens TokenProvider, resolver TargetResolver, logger *slog.Logger) *Policy {
	return &Policy{
		svc:       svc,
		publisher: publisher,
		tokens:    tokens,
		resolver:  resolver,
		logger:    logger,
	}
}

// SubmitInput represents one submission: the authored content plus the
// selected targets, the first of which is the main target
type SubmitInput struct {
	UserID              string
	Text                string
	CommentLink         string
	LinkURL             string
	BusinessManagerID   string
	BusinessManagerName string
	ScheduledAt         *time.Time
	Targets             []catalog.PlatformTarget
	Media               []service.MediaRefInput
}

// SubmitOutput represents the stored post and, for immediate submissions,
// its per-target result
type SubmitOutput struct {
	Post   *entity.Post
	Result *entity.PublicationResult
}

// Submit stores the submission and, unless it is scheduled for later,
// dispatches it to every selected target right away. Targets are published
// one after another; a failed target is recorded in the result and the
// remaining targets are still attempted.
func (p *Policy) Submit(ctx context.Context, in SubmitInput) (*SubmitOutput, error) {
	if len(in.Targets) == 0 {
		return nil, entity.ErrNoTargets
	}
	if in.Text == "" && len(in.Media) == 0 && in.LinkURL == "" {
		return nil, entity.ErrNoContent
	}

	post, err := p.svc.CreatePost(ctx, service.CreateInput{
		UserID:              in.UserID,
		Text:                in.Text,
		CommentLink:         in.CommentLink,
		LinkURL:             in.LinkURL,
		BusinessManagerID:   in.BusinessManagerID,
		BusinessManagerName: in.BusinessManagerName,
		ScheduledAt:         in.ScheduledAt,
	})
	if err != nil {
		return nil, err
	}

	media, err := p.svc.AttachExisting(ctx, post.ID, in.Media)
	if err != nil {
		return nil, err
	}
	post.Media = media

	if in.ScheduledAt != nil {
		main := targetRef(in.Targets[0])
		additional := make([]entity.TargetRef, 0, len(in.Targets)-1)
		for _, t := range in.Targets[1:] {
			additional = append(additional, targetRef(t))
		}
		if err := p.svc.SavePlan(ctx, post.ID, &main, additional); err != nil {
			return nil, err
		}
		return &SubmitOutput{Post: post}, nil
	}

	result, err := p.dispatch(ctx, in.UserID, post, in.Targets)
	if err != nil {
		return nil, err
	}
	post.Status = result.DeriveStatus()
	post.Result = result

	return &SubmitOutput{Post: post, Result: result}, nil
}

// dispatch publishes the post to each target in order and records the
// per-target outcomes. A partial failure is a valid result, not an error;
// dispatch itself fails only when the outcome cannot be persisted.
func (p *Policy) dispatch(ctx context.Context, userID string, post *entity.Post, targets []catalog.PlatformTarget) (*entity.PublicationResult, error) {
	userToken, err := p.tokens.GetAccessToken(ctx, userID)
	if err != nil {
		p.logger.Error("failed to load user token", "user_id", userID, "error", err)
		if markErr := p.svc.MarkFailed(ctx, post.ID); markErr != nil {
			return nil, markErr
		}
		return nil, entity.ErrGraphUnauthorized
	}

	media := make([]MediaRef, 0, len(post.Media))
	for _, item := range post.Media {
		if item.Status == entity.MediaStatusUploaded {
			media = append(media, MediaRef{URL: item.URL, IsVideo: item.IsVideo})
		}
	}

	result := &entity.PublicationResult{}
	for i, target := range targets {
		outcome := p.publishOne(ctx, target, userToken, post, media)
		if i == 0 {
			result.SetMain(outcome)
		} else {
			result.AddAdditional(outcome)
		}
	}

	if err := p.svc.RecordResult(ctx, post.ID, result); err != nil {
		return nil, err
	}

	return result, nil
}

func (p *Policy) publishOne(ctx context.Context, target catalog.PlatformTarget, userToken string, post *entity.Post, media []MediaRef) entity.TargetOutcome {
	token := target.AccessToken
	if token == "" {
		token = userToken
	}

	req := PublishRequest{
		Kind:        target.Kind,
		TargetID:    target.ID,
		AccessToken: token,
		Message:     post.Text,
		Media:       media,
	}
	// Link attachment and the first comment are Facebook concepts; Instagram
	// gets neither
	if target.IsFacebook() {
		req.LinkURL = post.LinkURL
		req.CommentLink = post.CommentLink
	}

	resp, err := p.publisher.PublishTarget(ctx, req)
	if err != nil {
		p.logger.Error("publish to target failed",
			"post_id", post.ID,
			"target_id", target.ID,
			"target_kind", target.Kind,
			"error", err,
		)
		return entity.TargetOutcome{
			Target:       targetRef(target),
			Status:       entity.OutcomeFailure,
			ErrorMessage: err.Error(),
		}
	}

	return entity.TargetOutcome{
		Target:    targetRef(target),
		Status:    entity.OutcomeSuccess,
		PostID:    resp.PostID,
		CommentID: resp.CommentID,
	}
}

// ProcessScheduledPublications dispatches every scheduled post that is due.
// Stored targets are re-resolved against the user's current catalog so the
// publish calls run with fresh credentials; a target that has disappeared
// since scheduling becomes a failed outcome.
func (p *Policy) ProcessScheduledPublications(ctx context.Context) error {
	due, err := p.svc.GetScheduledForPublishing(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, post := range due {
		if err := p.dispatchScheduled(ctx, post); err != nil {
			p.logger.Error("scheduled dispatch failed", "post_id", post.ID, "error", err)
		}
	}

	return nil
}

func (p *Policy) dispatchScheduled(ctx context.Context, post entity.Post) error {
	full, err := p.svc.GetPost(ctx, post.ID)
	if err != nil {
		return err
	}
	if full.Result == nil || full.Result.MainTarget == nil {
		return entity.ErrNoTargets
	}

	planned := full.Result.AllOutcomes()

	userToken, err := p.tokens.GetAccessToken(ctx, post.UserID)
	if err != nil {
		return p.svc.MarkFailed(ctx, post.ID)
	}

	media := make([]MediaRef, 0, len(full.Media))
	for _, item := range full.Media {
		if item.Status == entity.MediaStatusUploaded {
			media = append(media, MediaRef{URL: item.URL, IsVideo: item.IsVideo})
		}
	}

	result := &entity.PublicationResult{}
	for i, plan := range planned {
		target, resolveErr := p.resolver.ResolveTarget(ctx, post.UserID, catalog.TargetKey{
			ID:     plan.Target.ID,
			Origin: plan.Target.Origin,
		})

		var outcome entity.TargetOutcome
		if resolveErr != nil {
			outcome = entity.TargetOutcome{
				Target:       plan.Target,
				Status:       entity.OutcomeFailure,
				ErrorMessage: resolveErr.Error(),
			}
		} else {
			outcome = p.publishOne(ctx, target, userToken, full, media)
		}

		if i == 0 {
			result.SetMain(outcome)
		} else {
			result.AddAdditional(outcome)
		}
	}

	return p.svc.RecordResult(ctx, post.ID, result)
}

// GetPost retrieves one stored post with its media and result
func (p *Policy) GetPost(ctx context.Context, id string) (*entity.Post, error) {
	return p.svc.GetPost(ctx, id)
}

// ListPosts retrieves a page of the user's post history
func (p *Policy) ListPosts(ctx context.Context, in service.ListInput) (*service.ListOutput, error) {
	return p.svc.ListPosts(ctx, in)
}

// DeletePost removes a stored post that was never pushed to the platforms
func (p *Policy) DeletePost(ctx context.Context, id string) error {
	return p.svc.DeletePost(ctx, id)
}

func targetRef(t catalog.PlatformTarget) entity.TargetRef {
	return entity.TargetRef{
		ID:          t.ID,
		DisplayName: t.DisplayName,
		Kind:        t.Kind,
		Origin:      t.Origin,
	}
}
