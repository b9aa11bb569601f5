// Package authstub is a stand-in for the remote authentication endpoint. It
// answers the same way the real one does: 404 for an unknown user, 401 for a
// wrong password and 200 with a signed token otherwise.
package authstub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"pokedoro/internal/models"
	"pokedoro/internal/utils"
)

const tokenTTL = 24 * time.Hour

type Stub struct {
	secret []byte

	mu    sync.RWMutex
	users map[string][]byte // email -> bcrypt hash
	hits  int
}

func New(secret []byte) *Stub {
	return &Stub{secret: secret, users: map[string][]byte{}}
}

func (s *Stub) AddUser(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 8)
	if err != nil {
		return fmt.Errorf("hashing password for %s: %w", email, err)
	}

	s.mu.Lock()
	s.users[strings.ToLower(email)] = hash
	s.mu.Unlock()
	return nil
}

// AddUsers parses a comma-separated list of email:password pairs.
func (s *Stub) AddUsers(spec string) error {
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		email, password, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("invalid user entry %q, want email:password", pair)
		}
		if err := s.AddUser(email, password); err != nil {
			return err
		}
	}
	return nil
}

// Hits returns how many login requests the stub has served.
func (s *Stub) Hits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits
}

func (s *Stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	s.hits++
	hash, ok := s.users[strings.ToLower(creds.Email)]
	s.mu.Unlock()

	if !ok {
		log.Info().Str("email", creds.Email).Msg("Stub login for unknown user")
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)); err != nil {
		log.Info().Str("email", creds.Email).Msg("Stub login with wrong password")
		utils.RespondWithError(w, http.StatusUnauthorized, "Password does not match")
		return
	}

	token, err := utils.GenerateJWT(creds.Email, s.secret, tokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("Stub could not sign token")
		utils.RespondWithError(w, http.StatusInternalServerError, "could not generate token")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.LoginResponse{Token: token})
}
