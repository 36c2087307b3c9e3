package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RachedNaguez/PcBuilder/internal/build"
	"github.com/RachedNaguez/PcBuilder/internal/config"
	"github.com/RachedNaguez/PcBuilder/internal/gateway"
	"github.com/RachedNaguez/PcBuilder/internal/model"
	"github.com/RachedNaguez/PcBuilder/internal/storage"
	"github.com/RachedNaguez/PcBuilder/pkg/logger"
)

const (
	welcomeText       = "Welcome to PC Builder! Would you like to discuss components or build a PC?"
	buildPromptText   = "What kind of PC would you like to build? (e.g., gaming, work, budget)"
	discussPromptText = "What would you like to know about PC components?"
	apologyText       = "Sorry, there was an error processing your request."
	discussFallback   = "Here's your response"
	buildFallback     = "Here's your PC build!"

	defaultBuildType = "gaming"
)

// buildIntent spots a build request in free text: a request verb together
// with a 3-4 digit currency-like figure.
var buildIntent = regexp.MustCompile(`(?i)(build|create).*?(\$?\d{3,4}|\d{3,4}\s*\$)`)

// SessionService is the single authority over session mode, view,
// transcript and build state. Every mutation happens under its lock and
// is published as a fresh snapshot, so consumers never observe a
// half-applied operation. Gateway round trips run outside the lock; the
// session's loading flag marks the in-flight window.
type SessionService struct {
	storage storage.Storage
	gateway gateway.Client
	cfg     *config.Config
	mu      sync.Mutex
	done    chan struct{}
}

func NewSessionService(cfg *config.Config, gw gateway.Client) *SessionService {
	var store storage.Storage

	if cfg.Storage.Type == "disk" {
		store = storage.NewDiskStorage(cfg.Storage.DataDir, cfg.Storage.CacheSize)
	} else {
		store = storage.NewMemoryStorage()
	}

	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize storage: %v", err)
		store = storage.NewMemoryStorage()
		store.Init()
	}

	s := &SessionService{
		storage: store,
		gateway: gw,
		cfg:     cfg,
		done:    make(chan struct{}),
	}

	go s.cleanupOldSessions()

	return s
}

// Close stops the cleanup loop and releases the storage backend.
func (s *SessionService) Close() error {
	close(s.done)
	return s.storage.Close()
}

// CreateSession starts a fresh session: mode unset, chat view, a single
// welcome message.
func (s *SessionService) CreateSession(buildType string) (*model.SessionState, error) {
	if buildType == "" {
		buildType = defaultBuildType
	}

	now := time.Now()
	session := &model.Session{
		ID:        uuid.New().String(),
		Mode:      model.ModeUnset,
		View:      model.ViewChat,
		BuildType: buildType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	session.AppendMessage(welcomeText, true)

	if err := s.storage.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session.Snapshot(), nil
}

func (s *SessionService) GetSession(sessionID string) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	return session.Snapshot(), nil
}

func (s *SessionService) ListSessions() ([]model.SessionSummary, error) {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	summaries := make([]model.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, session.Summary())
	}
	return summaries, nil
}

func (s *SessionService) DeleteSession(sessionID string) error {
	if err := s.storage.DeleteSession(sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return fmt.Errorf("session not found: %s", sessionID)
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionService) ClearAllSessions() error {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	for _, session := range sessions {
		if err := s.storage.DeleteSession(session.ID); err != nil {
			logger.Errorf("Failed to delete session %s: %v", session.ID, err)
		}
	}
	return nil
}

// Send runs the core async contract: reject bad input, append the user
// message optimistically, dispatch to the gateway, then settle the reply
// into the transcript and build state. The loading flag is set before
// dispatch and cleared on every exit path.
func (s *SessionService) Send(ctx context.Context, sessionID, text string) (*model.SessionState, error) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	session, err := s.loadSession(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if text == "" {
		s.mu.Unlock()
		return session.Snapshot(), ErrEmptyMessage
	}
	if !session.Mode.Valid() {
		s.mu.Unlock()
		return session.Snapshot(), ErrModeNotSet
	}
	if session.Loading {
		s.mu.Unlock()
		return session.Snapshot(), ErrRequestInFlight
	}

	intent := model.ModeDiscuss
	if session.Mode == model.ModeBuild || buildIntent.MatchString(text) {
		intent = model.ModeBuild
	}

	fallback := discussFallback
	if intent == model.ModeBuild {
		fallback = buildFallback
	}

	session.AppendMessage(text, false)
	req := s.dispatch(session, text, intent)
	epoch := session.Epoch
	s.mu.Unlock()

	return s.roundTrip(ctx, session, epoch, req, fallback)
}

// BuildPC is the budget-initiated entry point: it forces build mode and
// the build summary view, then issues a synthesized build request.
func (s *SessionService) BuildPC(ctx context.Context, sessionID string, budget float64, buildType string) (*model.SessionState, error) {
	s.mu.Lock()
	session, err := s.loadSession(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if session.Loading {
		s.mu.Unlock()
		return session.Snapshot(), ErrRequestInFlight
	}

	if buildType == "" {
		buildType = "custom"
	}
	session.BuildType = buildType
	session.Mode = model.ModeBuild
	session.View = model.ViewBuildSummary

	budgetPart := ""
	if budget > 0 {
		budgetPart = fmt.Sprintf(" with a budget of $%.0f", budget)
	}
	session.AppendMessage(fmt.Sprintf("Building your %s PC%s...", buildType, budgetPart), true)

	text := fmt.Sprintf("Build me a %s PC%s", buildType, budgetPart)
	fallback := fmt.Sprintf("Here's your %s PC build%s!", buildType, budgetPart)

	req := s.dispatch(session, text, model.ModeBuild)
	epoch := session.Epoch
	s.mu.Unlock()

	return s.roundTrip(ctx, session, epoch, req, fallback)
}

// dispatch marks the session in flight and builds the gateway request.
// Called with the lock held; the optimistic transcript append must already
// have happened so transcript order reflects causal order.
func (s *SessionService) dispatch(session *model.Session, text string, intent model.Mode) *model.AssistantRequest {
	session.Loading = true
	if err := s.storage.UpdateSession(session); err != nil {
		logger.Errorf("Failed to persist session %s before dispatch: %v", session.ID, err)
	}
	return &model.AssistantRequest{
		Message:   text,
		SessionID: session.CorrelationID,
		Mode:      string(intent),
	}
}

// roundTrip performs the gateway call under the configured timeout and
// settles the outcome. The deferred guard clears the loading flag even if
// settling panics, so no path leaves the session stuck in flight.
func (s *SessionService) roundTrip(ctx context.Context, session *model.Session, epoch int64, req *model.AssistantRequest, fallback string) (*model.SessionState, error) {
	sessionID := session.ID

	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		current, err := s.loadSession(sessionID)
		if err != nil {
			return
		}
		if current.Epoch == epoch && current.Loading {
			current.Loading = false
			if err := s.storage.UpdateSession(current); err != nil {
				logger.Errorf("Failed to persist session %s: %v", sessionID, err)
			}
		}
	}()

	timeout := s.cfg.Assistant.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, callErr := s.gateway.SendMessage(callCtx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The in-flight pointer may be stale; re-read the stored session.
	current, err := s.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	// The session was reset (or re-entered a mode) while the request was
	// in flight; the reply no longer has a transcript to land in.
	if current.Epoch != epoch {
		logger.Warnf("Dropping stale assistant reply for session %s", sessionID)
		return current.Snapshot(), nil
	}

	s.settle(current, resp, callErr, fallback)

	if err := s.storage.UpdateSession(current); err != nil {
		logger.Errorf("Failed to persist session %s: %v", sessionID, err)
	}
	return current.Snapshot(), nil
}

// settle applies one assistant response (or failure) to the session.
// Called with the lock held.
func (s *SessionService) settle(session *model.Session, resp *model.AssistantResponse, callErr error, fallback string) {
	defer func() {
		session.Loading = false
	}()

	if callErr != nil {
		logger.Errorf("Assistant request failed for session %s: %v", session.ID, callErr)
		session.AppendMessage(apologyText, true)
		return
	}

	if resp.SessionID != "" {
		session.CorrelationID = resp.SessionID
	}

	if resp.Type == model.ResponseTypeBuild && resp.Data != nil {
		components := build.Normalize(resp.Data.Components)
		if len(components) > 0 {
			session.Build = build.Result(components, resp.Data.RequestedBudget)
			session.View = model.ViewBuildSummary
		}
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		content = fallback
	}
	session.AppendMessage(content, true)
}

// SwitchMode enters discuss or build mode: chat view, cleared build,
// transcript replaced with the mode's entry prompt.
func (s *SessionService) SwitchMode(sessionID, mode string) (*model.SessionState, error) {
	m := model.Mode(mode)
	if !m.Valid() {
		return nil, ErrInvalidMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Loading {
		return session.Snapshot(), ErrRequestInFlight
	}

	session.Mode = m
	session.View = model.ViewChat
	session.Build = nil
	session.Epoch++
	session.ReplaceTranscript(entryPrompt(m))

	return s.persistSnapshot(session)
}

// ToggleView flips between the chat transcript and the build summary.
func (s *SessionService) ToggleView(sessionID string) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	if session.View == model.ViewChat {
		session.View = model.ViewBuildSummary
	} else {
		session.View = model.ViewChat
	}
	session.UpdatedAt = time.Now()

	return s.persistSnapshot(session)
}

// Back resolves context-sensitive navigation. Exactly one branch fires:
// a chat view with history clears back to the mode's entry prompt, a build
// summary drops to chat, anything else returns to the mode chooser with
// the welcome message restored.
func (s *SessionService) Back(sessionID string) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Mode == model.ModeUnset {
		return session.Snapshot(), nil
	}
	if session.Loading {
		return session.Snapshot(), ErrRequestInFlight
	}

	switch {
	case session.View == model.ViewChat && len(session.Messages) > 1:
		session.ReplaceTranscript(entryPrompt(session.Mode))
	case session.View == model.ViewBuildSummary:
		session.View = model.ViewChat
		session.UpdatedAt = time.Now()
	default:
		session.Mode = model.ModeUnset
		session.View = model.ViewChat
		session.ReplaceTranscript(welcomeText)
	}

	return s.persistSnapshot(session)
}

// Reset restores the session-start state: mode unset, chat view, welcome
// message, no build, no correlation id. Allowed while a request is in
// flight; the stale reply is dropped when it arrives.
func (s *SessionService) Reset(sessionID string) (*model.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.Mode = model.ModeUnset
	session.View = model.ViewChat
	session.CorrelationID = ""
	session.BuildType = defaultBuildType
	session.Build = nil
	session.Loading = false
	session.Epoch++
	session.ReplaceTranscript(welcomeText)

	return s.persistSnapshot(session)
}

// ConfirmBuild accepts the current build: it appends the confirmation
// reply, returns to the chat view and hands back the plain-text summary
// the consumer places on the clipboard.
func (s *SessionService) ConfirmBuild(sessionID string) (*model.SessionState, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.loadSession(sessionID)
	if err != nil {
		return nil, "", err
	}
	if session.Loading {
		return session.Snapshot(), "", ErrRequestInFlight
	}
	if session.Build == nil || len(session.Build.Components) == 0 {
		return session.Snapshot(), "", ErrNoBuild
	}

	total := session.Build.TotalPrice
	session.View = model.ViewChat
	session.AppendMessage(fmt.Sprintf(
		"Okay, proceeding with the %s build totaling $%.2f. Let me know if you need anything else!",
		session.BuildType, total), true)

	state, err := s.persistSnapshot(session)
	if err != nil {
		return nil, "", err
	}
	return state, build.Summary(total), nil
}

func (s *SessionService) loadSession(sessionID string) (*model.Session, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, fmt.Errorf("session not found: %s", sessionID)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (s *SessionService) persistSnapshot(session *model.Session) (*model.SessionState, error) {
	if err := s.storage.UpdateSession(session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return session.Snapshot(), nil
}

func entryPrompt(mode model.Mode) string {
	if mode == model.ModeBuild {
		return buildPromptText
	}
	return discussPromptText
}

func (s *SessionService) cleanupOldSessions() {
	interval := s.cfg.Session.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			sessions, err := s.storage.ListSessions()
			if err != nil {
				logger.Errorf("Failed to list sessions for cleanup: %v", err)
				continue
			}

			cutoff := time.Now().Add(-s.cfg.Session.TTL)
			for _, session := range sessions {
				if session.UpdatedAt.Before(cutoff) {
					if err := s.storage.DeleteSession(session.ID); err != nil {
						logger.Errorf("Failed to delete expired session %s: %v", session.ID, err)
					} else {
						logger.Infof("Cleaned up expired session: %s", session.ID)
					}
				}
			}
		}
	}
}
