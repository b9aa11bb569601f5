package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"

	"pokedoro/internal/utils"
)

const (
	SessionName = "pokedoro"

	sessionKeyID = "sid"
	flashSuccess = "success"
	flashError   = "error"
)

// Toast is a one-shot notification rendered at the top of a page.
type Toast struct {
	Kind    string
	Message string
}

// webSession wraps the browser's cookie session for one request. It is the
// notifier (flash messages) and navigator (redirect target) of a login.
type webSession struct {
	sess   *sessions.Session
	id     string
	w      http.ResponseWriter
	r      *http.Request
	target string
}

// LoadSession returns the request's session, creating a session id on first use.
func LoadSession(store sessions.Store, r *http.Request) (*sessions.Session, string) {
	sess, err := store.Get(r, SessionName)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding undecodable session cookie")
	}
	id, ok := sess.Values[sessionKeyID].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		sess.Values[sessionKeyID] = id
	}
	return sess, id
}

func newWebSession(store sessions.Store, w http.ResponseWriter, r *http.Request) (*webSession, string) {
	sess, id := LoadSession(store, r)
	return &webSession{sess: sess, id: id, w: w, r: r}, id
}

// submissionKey identifies the submitter for the in-flight guard. A request
// without a valid session cookie gets a fresh id every time, so it is keyed on
// the client address and the email instead.
func (s *webSession) submissionKey(email string) string {
	if !s.sess.IsNew {
		return s.id
	}
	return "anon:" + utils.ClientIP(s.r) + ":" + strings.ToLower(email)
}

func (s *webSession) Success(msg string) { s.sess.AddFlash(msg, flashSuccess) }

func (s *webSession) Error(msg string) { s.sess.AddFlash(msg, flashError) }

func (s *webSession) Navigate(route string) { s.target = route }

// takeToasts drains pending flash messages.
func (s *webSession) takeToasts() []Toast {
	var toasts []Toast
	for _, kind := range []string{flashSuccess, flashError} {
		for _, f := range s.sess.Flashes(kind) {
			if msg, ok := f.(string); ok {
				toasts = append(toasts, Toast{Kind: kind, Message: msg})
			}
		}
	}
	return toasts
}

func (s *webSession) save() {
	if err := s.sess.Save(s.r, s.w); err != nil {
		log.Error().Err(err).Msg("Failed to save session")
	}
}
