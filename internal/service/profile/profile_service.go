package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/remote"
	"github.com/Domenick1991/flightdesk/internal/service"
)

// updatedMessage is the acknowledgement the flight API sends for a profile
// write that went through. Anything else counts as a failure.
const updatedMessage = "Profile updated successfully"

var (
	ErrProfileNotFound   = fmt.Errorf("profile: %w", remote.ErrNotFound)
	ErrProfileNotUpdated = errors.New("profile was not updated")
)

type ProfileUseCase interface {
	List(ctx context.Context) ([]domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Update(ctx context.Context, id string, input UpdateProfileInput) (*domain.Profile, error)
	Theme(ctx context.Context, email string) (domain.Theme, error)
	SetTheme(ctx context.Context, email string, theme domain.Theme) error
}

type Remote interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, profile domain.Profile) (remote.WriteResult, error)
}

type Cache interface {
	GetProfiles() ([]domain.Profile, bool)
	SetProfiles(profiles []domain.Profile)
	Invalidate()
}

type Preferences interface {
	Theme(ctx context.Context, email string) (domain.Theme, error)
	SetTheme(ctx context.Context, email string, theme domain.Theme) error
}

type CacheObserver interface {
	CacheHit(cache string)
	CacheMiss(cache string)
}

type ProfileService struct {
	remote   Remote
	cache    Cache
	prefs    Preferences
	observer CacheObserver
}

type Option func(*ProfileService)

func WithCacheObserver(o CacheObserver) Option {
	return func(s *ProfileService) {
		s.observer = o
	}
}

func NewProfileService(api Remote, cache Cache, prefs Preferences, opts ...Option) *ProfileService {
	s := &ProfileService{remote: api, cache: cache, prefs: prefs}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateProfileInput holds the editable fields. Email is not editable.
type UpdateProfileInput struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Image       string `json:"image"`
}

func (in UpdateProfileInput) validate() error {
	p := service.Problems{}
	p.Require("fullName", in.FullName)
	p.Require("phoneNumber", in.PhoneNumber)
	return p.Err()
}

// List returns every registered user, cached in process.
func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	if s.cache != nil {
		if profiles, ok := s.cache.GetProfiles(); ok {
			s.count(true)
			return profiles, nil
		}
		s.count(false)
	}

	profiles, err := s.remote.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if s.cache != nil {
		s.cache.SetProfiles(profiles)
	}
	return profiles, nil
}

func (s *ProfileService) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, service.Problems{"email": "is required"}.Err()
	}
	return s.find(ctx, func(p domain.Profile) bool { return strings.EqualFold(p.Email, email) }, email)
}

// Update replaces the editable fields of profile id. The stored email and
// role are kept.
func (s *ProfileService) Update(ctx context.Context, id string, input UpdateProfileInput) (*domain.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, service.Problems{"id": "is required"}.Err()
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	current, err := s.find(ctx, func(p domain.Profile) bool { return p.ID == id }, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.FullName = strings.TrimSpace(input.FullName)
	updated.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	if input.Image != "" {
		updated.Image = input.Image
	}

	res, err := s.remote.UpdateProfile(ctx, id, updated)
	if err != nil {
		return nil, fmt.Errorf("update profile %s: %w", id, err)
	}
	if s.cache != nil {
		s.cache.Invalidate()
	}
	if res.Message != updatedMessage {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotUpdated, res.Message)
	}

	logging.Info("profile updated", "profile_id", id)
	return &updated, nil
}

func (s *ProfileService) Theme(ctx context.Context, email string) (domain.Theme, error) {
	if strings.TrimSpace(email) == "" {
		return domain.ThemeLight, nil
	}
	theme, err := s.prefs.Theme(ctx, email)
	if err != nil {
		return "", fmt.Errorf("load theme: %w", err)
	}
	return theme, nil
}

func (s *ProfileService) SetTheme(ctx context.Context, email string, theme domain.Theme) error {
	p := service.Problems{}
	p.Require("email", email)
	p.Check(theme.Valid(), "theme", "must be light or dark")
	if err := p.Err(); err != nil {
		return err
	}
	if err := s.prefs.SetTheme(ctx, email, theme); err != nil {
		return fmt.Errorf("store theme: %w", err)
	}
	return nil
}

func (s *ProfileService) find(ctx context.Context, match func(domain.Profile) bool, key string) (*domain.Profile, error) {
	profiles, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		if match(profiles[i]) {
			p := profiles[i]
			p.Role = p.EffectiveRole()
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, key)
}

func (s *ProfileService) count(hit bool) {
	if s.observer == nil {
		return
	}
	if hit {
		s.observer.CacheHit("profiles")
	} else {
		s.observer.CacheMiss("profiles")
	}
}

var _ ProfileUseCase = (*ProfileService)(nil)
