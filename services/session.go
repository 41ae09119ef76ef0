package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"studysync-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncGate is what the session service needs from the sync coordinator:
// a blocking initial pull (the readiness gate) on sign-in and a teardown
// on sign-out. Local identities pass through both immediately.
type SyncGate interface {
	BeginSession(identity *models.Identity) error
	EndSession(userID string)
}

// noopSyncGate keeps the service usable when sync is disabled.
type noopSyncGate struct{}

func (noopSyncGate) BeginSession(*models.Identity) error { return nil }
func (noopSyncGate) EndSession(string)                   {}

// SessionService owns identity resolution. Nothing else mutates
// identities; it sequences the session bootstrap: identity → readiness
// gate → streak evaluation → normal traffic.
type SessionService struct {
	DB     *gorm.DB
	Auth   *AuthServiceClient
	Streak *StreakService
	Sync   SyncGate
	Timer  *TimerService
}

func NewSessionService(db *gorm.DB, auth *AuthServiceClient, streak *StreakService, sync SyncGate, timer *TimerService) *SessionService {
	if sync == nil {
		sync = noopSyncGate{}
	}
	return &SessionService{DB: db, Auth: auth, Streak: streak, Sync: sync, Timer: timer}
}

// Bootstrap is the resolved session handed back to the client.
type Bootstrap struct {
	Identity models.Identity `json:"identity"`
	Stats    models.Stats    `json:"stats"`
}

func (s *SessionService) bootstrap(identity *models.Identity) (*Bootstrap, error) {
	// The readiness gate: no debounced save may fire before the initial
	// remote pull settles, and the streak check runs before any other
	// mutation persists.
	if err := s.Sync.BeginSession(identity); err != nil {
		log.Printf("⚠️ Initial sync load failed for %s, keeping local state: %v", identity.ID, err)
	}

	stats, err := s.Streak.EnsureEvaluated(identity.ID)
	if err != nil {
		return nil, fmt.Errorf("streak evaluation: %w", err)
	}
	return &Bootstrap{Identity: *identity, Stats: stats}, nil
}

// LoginLocal mints a device-local identity. Local identities never talk
// to the remote store; readiness is immediate.
func (s *SessionService) LoginLocal(displayName string) (*Bootstrap, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, errors.New("display name is required")
	}

	identity := models.Identity{
		ID:          uuid.NewString(),
		AuthType:    models.AuthTypeLocal,
		DisplayName: displayName,
	}
	if err := s.DB.Create(&identity).Error; err != nil {
		return nil, fmt.Errorf("create local identity: %w", err)
	}
	return s.bootstrap(&identity)
}

// SignUp registers a remote account and resolves it into an identity.
func (s *SessionService) SignUp(email, password, displayName string) (*Bootstrap, string, error) {
	session, err := s.Auth.SignUp(email, password)
	if err != nil {
		return nil, "", err
	}
	boot, err := s.adoptRemote(session.User, displayName)
	return boot, session.AccessToken, err
}

// SignIn opens a session for an existing remote account.
func (s *SessionService) SignIn(email, password string) (*Bootstrap, string, error) {
	session, err := s.Auth.SignIn(email, password)
	if err != nil {
		return nil, "", err
	}
	boot, err := s.adoptRemote(session.User, "")
	return boot, session.AccessToken, err
}

// Resume resolves an existing access token back into a session.
func (s *SessionService) Resume(accessToken string) (*Bootstrap, error) {
	user, err := s.Auth.GetSession(accessToken)
	if err != nil {
		return nil, err
	}
	return s.adoptRemote(*user, "")
}

func (s *SessionService) adoptRemote(user AuthUser, displayName string) (*Bootstrap, error) {
	identity := models.Identity{
		ID:          user.ID,
		AuthType:    models.AuthTypeRemote,
		DisplayName: displayName,
		Email:       user.Email,
	}

	var existing models.Identity
	err := s.DB.Where("id = ?", user.ID).First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		if err := s.DB.Create(&identity).Error; err != nil {
			return nil, fmt.Errorf("create remote identity: %w", err)
		}
	case err != nil:
		return nil, err
	default:
		if displayName == "" {
			identity.DisplayName = existing.DisplayName
		}
		if err := s.DB.Save(&identity).Error; err != nil {
			return nil, err
		}
	}
	return s.bootstrap(&identity)
}

// Logout tears the session down: remote tokens are invalidated
// upstream, the streak gate is cleared, and pending debounce timers are
// cancelled without flushing.
func (s *SessionService) Logout(userID, accessToken string) error {
	if accessToken != "" && s.Auth != nil {
		if err := s.Auth.SignOut(accessToken); err != nil {
			log.Printf("⚠️ Remote sign-out failed for %s: %v", userID, err)
		}
	}
	s.Streak.ForgetSession(userID)
	s.Sync.EndSession(userID)
	if s.Timer != nil {
		s.Timer.Drop(userID)
	}
	return nil
}

// Get returns a stored identity.
func (s *SessionService) Get(userID string) (*models.Identity, error) {
	var identity models.Identity
	if err := s.DB.Where("id = ?", userID).First(&identity).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}
