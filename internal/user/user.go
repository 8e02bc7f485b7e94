// Package user holds the session identity: who is signed in and which
// language recipes are generated in.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"chefsnap/internal/logger"
)

// StorageKey is the key under which the signed-in user is persisted.
const StorageKey = "recipeUser"

var validate = validator.New()

// DefaultLanguage is used when a user picks an unsupported language.
const DefaultLanguage = "en"

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"uz": "Uzbek",
	"ru": "Russian",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ja": "Japanese",
	"zh": "Simplified Chinese",
	"ko": "Korean",
	"hi": "Hindi",
	"ar": "Arabic",
	"tr": "Turkish",
	"nl": "Dutch",
}

// LanguageName returns the English name of a language code for use in
// prompts, falling back to English.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(strings.TrimSpace(code))]; ok {
		return name
	}
	return languageNames[DefaultLanguage]
}

// SupportedLanguage reports whether code is a known language code.
func SupportedLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// Sign-up validation errors.
var (
	ErrMissingName  = errors.New("name is required")
	ErrMissingEmail = errors.New("email is required")
	ErrInvalidEmail = errors.New("email is invalid")
)

// User is the signed-in person.
type User struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Language string `json:"language"`
}

// KeyValue is the durable storage the session is kept in.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session tracks the signed-in user and mirrors it to storage.
type Session struct {
	mu   sync.RWMutex
	user *User
	kv   KeyValue
	log  *logger.Logger
}

// NewSession creates a signed-out session. Call Load to restore.
func NewSession(kv KeyValue, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{kv: kv, log: log}
}

// Load restores the persisted user. A corrupt or incomplete value is
// removed and the session stays signed out.
func (s *Session) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if !ok {
		return nil
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Name == "" || u.Email == "" {
		s.log.Warn("discarding corrupt stored session")
		return s.kv.Delete(ctx, StorageKey)
	}
	if !SupportedLanguage(u.Language) {
		u.Language = DefaultLanguage
	}
	s.user = &u
	return nil
}

// SignUp validates and persists a new session identity.
func (s *Session) SignUp(ctx context.Context, name, email, language string) (User, error) {
	u := User{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Language: strings.ToLower(strings.TrimSpace(language)),
	}
	if u.Name == "" {
		return User{}, ErrMissingName
	}
	if u.Email == "" {
		return User{}, ErrMissingEmail
	}
	if err := validate.Var(u.Email, "email"); err != nil {
		return User{}, ErrInvalidEmail
	}
	if !SupportedLanguage(u.Language) {
		u.Language = DefaultLanguage
	}

	data, err := json.Marshal(u)
	if err != nil {
		return User{}, fmt.Errorf("failed to marshal user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		return User{}, fmt.Errorf("failed to save session: %w", err)
	}
	s.user = &u
	s.log.Info("signed in %s (%s)", u.Name, u.Language)
	return u, nil
}

// Logout forgets the signed-in user.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.user = nil
	return nil
}

// Current returns the signed-in user, if any.
func (s *Session) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}
