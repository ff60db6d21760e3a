package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
	"github.com/vadim/meta-bridge/internal/domain/composer/entity"
	links "github.com/vadim/meta-bridge/internal/domain/links/entity"
)

// LinkDetector resolves link previews for a text. Defined here (consumer),
// implemented by the links service.
type LinkDetector interface {
	DetectLinks(ctx context.Context, text string, dismissed map[string]bool) []links.LinkPreview
}

// TargetSource resolves catalog targets and smart-mode suggestions.
// Implemented by the catalog service.
type TargetSource interface {
	ResolveTarget(ctx context.Context, userID string, key catalog.TargetKey) (catalog.PlatformTarget, error)
	RelatedPlatforms(ctx context.Context, userID, pageID string) ([]catalog.Suggestion, error)
}

// draftState wraps a draft with its concurrency machinery: a per-draft lock,
// the debounce timer and the detection generation counter
type draftState struct {
	mu    sync.Mutex
	draft *entity.Draft

	timer *time.Timer
	// generation supersedes older in-flight detections: only the result of
	// the latest debounce cycle ever surfaces
	generation uint64
}

// Service manages in-memory draft sessions
type Service struct {
	detector LinkDetector
	targets  TargetSource
	debounce time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	drafts map[string]*draftState
}

// New creates a new composer service
func New(detector LinkDetector, targets TargetSource, debounce time.Duration, logger *slog.Logger) *Service {
	return &Service{
		detector: detector,
		targets:  targets,
		debounce: debounce,
		logger:   logger,
		drafts:   make(map[string]*draftState),
	}
}

// CreateDraft opens a new composition session for a user
func (s *Service) CreateDraft(userID string) *entity.Draft {
	d := entity.NewDraft(uuid.New().String(), userID, time.Now())

	s.mu.Lock()
	s.drafts[d.ID] = &draftState{draft: d}
	s.mu.Unlock()

	return snapshot(d)
}

// GetDraft returns a copy of the draft
func (s *Service) GetDraft(id string) (*entity.Draft, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return snapshot(st.draft), nil
}

// DeleteDraft discards a composition session and cancels any pending
// detection
func (s *Service) DeleteDraft(id string) error {
	s.mu.Lock()
	st, ok := s.drafts[id]
	if ok {
		delete(s.drafts, id)
	}
	s.mu.Unlock()

	if !ok {
		return entity.ErrDraftNotFound
	}

	st.mu.Lock()
	if st.timer != nil {
		st.timer.Stop()
	}
	st.generation++
	st.mu.Unlock()
	return nil
}

// SetText replaces the draft text and schedules link detection after the
// debounce quiet period. A newer call cancels the pending timer, so only one
// detection batch fires per burst of changes, and only the latest text's
// results ever surface.
func (s *Service) SetText(id, text string) (*entity.Draft, error) {
	if utf8.RuneCountInString(text) > entity.MaxTextLength {
		return nil, entity.ErrTextTooLong
	}

	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.draft.Text = text
	st.draft.UpdatedAt = time.Now()

	if st.timer != nil {
		st.timer.Stop()
	}
	st.generation++
	gen := st.generation

	if strings.TrimSpace(text) == "" {
		st.draft.DetectedLinks = nil
		return snapshot(st.draft), nil
	}

	dismissed := make(map[string]bool, len(st.draft.DismissedURLs))
	for u := range st.draft.DismissedURLs {
		dismissed[u] = true
	}

	st.timer = time.AfterFunc(s.debounce, func() {
		s.runDetection(st, gen, text, dismissed)
	})

	return snapshot(st.draft), nil
}

// runDetection resolves previews for the text and applies them only if no
// newer text change superseded this cycle. The dismissed set is re-checked
// under the lock at apply time: a URL dismissed while the detection was in
// flight must not resurface.
func (s *Service) runDetection(st *draftState, gen uint64, text string, dismissed map[string]bool) {
	previews := s.detector.DetectLinks(context.Background(), text, dismissed)

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.generation != gen {
		// Superseded: a newer cycle owns the draft now
		s.logger.Debug("link detection superseded", "draft_id", st.draft.ID)
		return
	}

	kept := previews[:0]
	for _, pv := range previews {
		if !st.draft.DismissedURLs[pv.URL] {
			kept = append(kept, pv)
		}
	}
	st.draft.DetectedLinks = kept
}

// AddMediaInput describes one media attachment
type AddMediaInput struct {
	Filename    string
	URL         string
	ContentType string
	Size        int64
}

// AddMedia attaches an uploaded media file to the draft
func (s *Service) AddMedia(id string, in AddMediaInput) (*entity.Draft, error) {
	isVideo := strings.HasPrefix(in.ContentType, "video/")
	if !isVideo && !strings.HasPrefix(in.ContentType, "image/") {
		return nil, entity.ErrInvalidMediaType
	}
	if in.Size > entity.MaxMediaFileSize {
		return nil, entity.ErrMediaTooLarge
	}

	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.draft.MediaFiles) >= entity.MaxMediaFiles {
		return nil, entity.ErrTooManyMediaFiles
	}

	st.draft.MediaFiles = append(st.draft.MediaFiles, entity.MediaFile{
		ID:          uuid.New().String(),
		Filename:    in.Filename,
		URL:         in.URL,
		ContentType: in.ContentType,
		Size:        in.Size,
		IsVideo:     isVideo,
		UploadedAt:  time.Now(),
	})
	st.draft.UpdatedAt = time.Now()

	return snapshot(st.draft), nil
}

// RemoveMedia detaches a media file from the draft
func (s *Service) RemoveMedia(id, mediaID string) (*entity.Draft, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	kept := st.draft.MediaFiles[:0]
	for _, m := range st.draft.MediaFiles {
		if m.ID != mediaID {
			kept = append(kept, m)
		}
	}
	st.draft.MediaFiles = kept
	st.draft.UpdatedAt = time.Now()

	return snapshot(st.draft), nil
}

// SetSchedule sets the scheduled publication time
func (s *Service) SetSchedule(id string, at *time.Time) (*entity.Draft, error) {
	if at != nil && time.Until(*at) < entity.MinScheduleLead {
		return nil, entity.ErrScheduleTooSoon
	}

	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.draft.ScheduledAt = at
	st.draft.UpdatedAt = time.Now()
	return snapshot(st.draft), nil
}

// SetCommentLink sets the link to post as a first comment on Facebook-kind
// targets
func (s *Service) SetCommentLink(id, link string) (*entity.Draft, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.draft.CommentLink = strings.TrimSpace(link)
	st.draft.UpdatedAt = time.Now()
	return snapshot(st.draft), nil
}

// DismissLink removes a detected link for the lifetime of this draft
func (s *Service) DismissLink(id, url string) (*entity.Draft, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.draft.DismissLink(url)
	st.draft.UpdatedAt = time.Now()
	return snapshot(st.draft), nil
}

// SelectPrimary resolves the target in the user's catalog and makes it the
// draft's primary destination
func (s *Service) SelectPrimary(ctx context.Context, id string, key catalog.TargetKey) (*entity.Draft, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	userID := st.draft.UserID
	st.mu.Unlock()

	target, err := s.targets.ResolveTarget(ctx, userID, key)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.draft.Primary = &target
	st.draft.UpdatedAt = time.Now()
	return snapshot(st.draft), nil
}

// ToggleTarget resolves the target and toggles its membership in the
// cross-post set; double-toggle is a net no-op
func (s *Service) ToggleTarget(ctx context.Context, id string, key catalog.TargetKey) (*entity.Draft, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	userID := st.draft.UserID
	st.mu.Unlock()

	target, err := s.targets.ResolveTarget(ctx, userID, key)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if err := st.draft.ToggleTarget(target); err != nil {
		return nil, err
	}
	st.draft.UpdatedAt = time.Now()
	return snapshot(st.draft), nil
}

// EnableSmartMode derives suggested cross-post targets from the primary
// page's relations, pre-selecting suggestions the backend flags as default
func (s *Service) EnableSmartMode(ctx context.Context, id string) (*entity.Draft, []catalog.Suggestion, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, nil, err
	}

	st.mu.Lock()
	if st.draft.Primary == nil || st.draft.Primary.Kind != catalog.TargetKindPage {
		st.mu.Unlock()
		return nil, nil, entity.ErrPrimaryNotPage
	}
	userID := st.draft.UserID
	pageID := st.draft.Primary.ID
	st.mu.Unlock()

	suggestions, err := s.targets.RelatedPlatforms(ctx, userID, pageID)
	if err != nil {
		return nil, nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.draft.SmartMode = true
	st.draft.CrossTargets = nil
	for _, sug := range suggestions {
		if sug.Selected {
			st.draft.CrossTargets = append(st.draft.CrossTargets, sug.Target)
		}
	}
	st.draft.UpdatedAt = time.Now()

	return snapshot(st.draft), suggestions, nil
}

// DisableSmartMode clears every non-primary selection
func (s *Service) DisableSmartMode(id string) (*entity.Draft, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.draft.SmartMode = false
	st.draft.ClearCrossTargets()
	st.draft.UpdatedAt = time.Now()
	return snapshot(st.draft), nil
}

// PruneBusinessTargets drops business-origin selections that do not belong
// to the given manager; personal-origin selections survive. Returns the
// removed targets so callers can surface the invalidation.
func (s *Service) PruneBusinessTargets(id string, mgr *catalog.BusinessManager) ([]catalog.PlatformTarget, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := st.draft.PruneBusinessTargets(mgr)
	if len(removed) > 0 {
		st.draft.UpdatedAt = time.Now()
	}
	return removed, nil
}

// Compatibility re-evaluates every selected target against the draft
func (s *Service) Compatibility(id string) ([]entity.TargetCompatibility, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.draft.Compatibility(), nil
}

// BeginSubmission validates the draft, checks target compatibility and
// transitions the draft to Submitting. With override false, incompatible
// media-requiring targets block the submission. The returned copy is the
// authoritative submission payload; the live draft stays intact so a failed
// submission loses nothing.
func (s *Service) BeginSubmission(id string, override bool) (*entity.Draft, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.draft.Status == entity.DraftStatusSubmitting {
		return nil, entity.ErrSubmissionInFlight
	}

	if err := st.draft.Validate(); err != nil {
		return nil, err
	}

	if !override && len(st.draft.IncompatibleTargets()) > 0 {
		return nil, entity.ErrIncompatibleTargets
	}

	st.draft.Status = entity.DraftStatusSubmitting
	st.draft.UpdatedAt = time.Now()
	return snapshot(st.draft), nil
}

// FinishSubmission completes the submission lifecycle. Success resets the
// draft for a fresh composition; failure returns it to Drafting with every
// field intact for correction and retry.
func (s *Service) FinishSubmission(id string, success bool) (*entity.Draft, error) {
	st, err := s.state(id)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.draft.Status != entity.DraftStatusSubmitting {
		return nil, entity.ErrNotSubmitting
	}

	if success {
		st.draft.Reset(time.Now())
	} else {
		st.draft.Status = entity.DraftStatusDrafting
		st.draft.UpdatedAt = time.Now()
	}
	return snapshot(st.draft), nil
}

func (s *Service) state(id string) (*draftState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.drafts[id]
	if !ok {
		return nil, entity.ErrDraftNotFound
	}
	return st, nil
}

// snapshot copies the draft so callers never share the locked instance
func snapshot(d *entity.Draft) *entity.Draft {
	c := *d
	c.MediaFiles = append([]entity.MediaFile(nil), d.MediaFiles...)
	c.DetectedLinks = append([]links.LinkPreview(nil), d.DetectedLinks...)
	c.CrossTargets = append([]catalog.PlatformTarget(nil), d.CrossTargets...)
	if d.Primary != nil {
		p := *d.Primary
		c.Primary = &p
	}
	dismissed := make(map[string]bool, len(d.DismissedURLs))
	for u := range d.DismissedURLs {
		dismissed[u] = true
	}
	c.DismissedURLs = dismissed
	return &c
}
