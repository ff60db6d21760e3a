package graph

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrContainerNotReady is returned when an Instagram container never reaches
// the FINISHED state within the allotted polling attempts
var ErrContainerNotReady = errors.New("media container is not ready for publishing")

const (
	containerPollInterval = 3 * time.Second
	containerPollAttempts = 20
)

// MediaRef is one media file attached to an outgoing post
type MediaRef struct {
	URL     string
	IsVideo bool
}

// TargetInput describes one publishing destination for the publisher
type TargetInput struct {
	Kind        string // page, group, instagram
	TargetID    string
	AccessToken string
}

// PublishTargetInput represents input for publishing to a single target
type PublishTargetInput struct {
	Target      TargetInput
	Message     string
	Media       []MediaRef
	LinkURL     string // attached as a link preview on Facebook kinds
	CommentLink string // posted as a first comment on Facebook kinds
	ScheduledAt *time.Time
}

// PublishTargetOutput represents the result of publishing to one target
type PublishTargetOutput struct {
	PostID    string
	CommentID string
}

// Publisher handles the per-target publishing workflow against the Graph API
type Publisher struct {
	client *Client
}

// NewPublisher creates a new Graph publisher
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// PublishTarget publishes content to one target, choosing the Graph workflow
// appropriate for its kind
func (p *Publisher) PublishTarget(ctx context.Context, in PublishTargetInput) (*PublishTargetOutput, error) {
	switch in.Target.Kind {
	case "page":
		return p.publishToPage(ctx, in)
	case "group":
		return p.publishToGroup(ctx, in)
	case "instagram":
		return p.publishToInstagram(ctx, in)
	default:
		return nil, fmt.Errorf("unsupported target kind %q", in.Target.Kind)
	}
}

// publishToPage publishes to a Facebook page: a photo or video post when
// media is present, a feed post otherwise. The comment link is posted as a
// first comment so the post body stays clean.
func (p *Publisher) publishToPage(ctx context.Context, in PublishTargetInput) (*PublishTargetOutput, error) {
	var out *PublishOutput
	var err error

	switch {
	case len(in.Media) > 0 && in.Media[0].IsVideo:
		out, err = p.client.PublishPageVideo(ctx, PublishPageVideoInput{
			PageID:      in.Target.TargetID,
			AccessToken: in.Target.AccessToken,
			VideoURL:    in.Media[0].URL,
			Description: in.Message,
		})
	case len(in.Media) > 0:
		out, err = p.client.PublishPagePhoto(ctx, PublishPagePhotoInput{
			PageID:      in.Target.TargetID,
			AccessToken: in.Target.AccessToken,
			ImageURL:    in.Media[0].URL,
			Caption:     in.Message,
			Published:   true,
			ScheduledAt: in.ScheduledAt,
		})
	default:
		out, err = p.client.PublishPageFeed(ctx, PublishPageFeedInput{
			PageID:      in.Target.TargetID,
			AccessToken: in.Target.AccessToken,
			Message:     in.Message,
			Link:        in.LinkURL,
			ScheduledAt: in.ScheduledAt,
		})
	}
	if err != nil {
		return nil, err
	}

	postID := out.PostID
	if postID == "" {
		postID = out.ID
	}

	result := &PublishTargetOutput{PostID: postID}

	// A scheduled post cannot be commented on until it goes live
	if in.CommentLink != "" && in.ScheduledAt == nil {
		comment, err := p.client.CreateComment(ctx, CreateCommentInput{
			PostID:      postID,
			AccessToken: in.Target.AccessToken,
			Message:     in.CommentLink,
		})
		if err == nil {
			result.CommentID = comment.ID
		}
		// A failed comment does not fail the publication
	}

	return result, nil
}

// publishToGroup publishes a feed post to a Facebook group
func (p *Publisher) publishToGroup(ctx context.Context, in PublishTargetInput) (*PublishTargetOutput, error) {
	link := in.LinkURL
	if link == "" && len(in.Media) > 0 {
		// Groups have no photo-by-URL endpoint; attach the media as a link
		link = in.Media[0].URL
	}

	out, err := p.client.PublishGroupFeed(ctx, PublishGroupFeedInput{
		GroupID:     in.Target.TargetID,
		AccessToken: in.Target.AccessToken,
		Message:     in.Message,
		Link:        link,
	})
	if err != nil {
		return nil, err
	}

	result := &PublishTargetOutput{PostID: out.ID}

	if in.CommentLink != "" {
		comment, err := p.client.CreateComment(ctx, CreateCommentInput{
			PostID:      out.ID,
			AccessToken: in.Target.AccessToken,
			Message:     in.CommentLink,
		})
		if err == nil {
			result.CommentID = comment.ID
		}
	}

	return result, nil
}

// publishToInstagram runs the container -> wait -> publish workflow
func (p *Publisher) publishToInstagram(ctx context.Context, in PublishTargetInput) (*PublishTargetOutput, error) {
	if len(in.Media) == 0 {
		return nil, errors.New("instagram requires at least one media item")
	}

	media := in.Media[0]
	containerIn := CreateMediaContainerInput{
		IGUserID:    in.Target.TargetID,
		AccessToken: in.Target.AccessToken,
		Caption:     in.Message,
	}
	if media.IsVideo {
		containerIn.VideoURL = media.URL
	} else {
		containerIn.ImageURL = media.URL
	}

	container, err := p.client.CreateMediaContainer(ctx, containerIn)
	if err != nil {
		return nil, fmt.Errorf("creating media container: %w", err)
	}

	if err := p.waitForContainer(ctx, container.ID, in.Target.AccessToken); err != nil {
		return nil, fmt.Errorf("waiting for container: %w", err)
	}

	published, err := p.client.PublishMedia(ctx, in.Target.TargetID, container.ID, in.Target.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("publishing media: %w", err)
	}

	return &PublishTargetOutput{PostID: published.ID}, nil
}

// waitForContainer polls the container status until it is ready to publish
func (p *Publisher) waitForContainer(ctx context.Context, containerID, accessToken string) error {
	for attempt := 0; attempt < containerPollAttempts; attempt++ {
		status, err := p.client.GetContainerStatus(ctx, containerID, accessToken)
		if err != nil {
			return err
		}

		switch status.Status {
		case ContainerStatusFinished:
			return nil
		case ContainerStatusError, ContainerStatusExpired:
			if status.ErrorMessage != "" {
				return fmt.Errorf("container failed: %s", status.ErrorMessage)
			}
			return fmt.Errorf("container entered state %s", status.Status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(containerPollInterval):
		}
	}

	return ErrContainerNotReady
}
