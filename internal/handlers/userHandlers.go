package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"pokedoro/internal/middlewares"
	"pokedoro/internal/utils"
)

type userView struct {
	Subject   string
	ExpiresAt time.Time
	Toasts    []Toast
}

type UserHandler struct {
	store sessions.Store
}

func NewUserHandler(store sessions.Store) *UserHandler {
	return &UserHandler{store: store}
}

// Home is the post-login route. It must sit behind middlewares.RequireToken.
func (u *UserHandler) Home(w http.ResponseWriter, r *http.Request) {
	token, ok := middlewares.TokenFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ws, _ := newWebSession(u.store, w, r)
	view := userView{Toasts: ws.takeToasts()}
	if info, ok := utils.InspectToken(token); ok {
		view.Subject = info.Subject
		view.ExpiresAt = info.ExpiresAt
	}
	ws.save()

	render(w, http.StatusOK, "user.html", view)
}
