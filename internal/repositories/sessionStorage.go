package repositories

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionStorage keeps values inside the browser's session cookie.
type SessionStorage struct {
	store sessions.Store
	name  string
	w     http.ResponseWriter
	r     *http.Request
}

func NewSessionStorage(store sessions.Store, name string, w http.ResponseWriter, r *http.Request) *SessionStorage {
	return &SessionStorage{store: store, name: name, w: w, r: r}
}

func (s *SessionStorage) Get(ctx context.Context, key string) (string, error) {
	sess, err := s.store.Get(s.r, s.name)
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}
	v, ok := sess.Values[key].(string)
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (s *SessionStorage) Set(ctx context.Context, key, value string) error {
	// A cookie that no longer decodes still yields a fresh session to write into.
	sess, err := s.store.Get(s.r, s.name)
	if sess == nil {
		return fmt.Errorf("loading session: %w", err)
	}
	sess.Values[key] = value
	if err := sess.Save(s.r, s.w); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
