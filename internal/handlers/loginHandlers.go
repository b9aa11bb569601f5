package handlers

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"

	"pokedoro/internal/forms"
	"pokedoro/internal/models"
	"pokedoro/internal/repositories"
	"pokedoro/internal/services"
	"pokedoro/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type loginView struct {
	Email   string
	Errors  map[string]string
	Toasts  []Toast
	Pending bool
}

type LoginHandler struct {
	loginService services.LoginService
	store        sessions.Store
	storageFor   repositories.StorageFactory
}

func NewLoginHandler(loginService services.LoginService, store sessions.Store, storageFor repositories.StorageFactory) *LoginHandler {
	return &LoginHandler{loginService: loginService, store: store, storageFor: storageFor}
}

func (h *LoginHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	ws, id := newWebSession(h.store, w, r)
	view := loginView{Toasts: ws.takeToasts(), Pending: h.loginService.InFlight(id)}
	ws.save()
	render(w, http.StatusOK, "login.html", view)
}

// SubmitLogin handles the HTML form post. Success redirects to the post-login
// route; every failure re-renders the form.
func (h *LoginHandler) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Error().Err(err).Msg("Invalid form body for Login")
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	creds := models.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue(forms.FieldEmail)),
		Password: r.PostFormValue(forms.FieldPassword),
	}

	ws, _ := newWebSession(h.store, w, r)
	storage, err := h.storageFor(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open session storage")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	form, err := h.loginService.Login(r.Context(), ws.submissionKey(creds.Email), creds, services.Effects{Storage: storage, Notifier: ws, Navigator: ws})
	if err == nil && ws.target != "" {
		ws.save()
		http.Redirect(w, r, ws.target, http.StatusSeeOther)
		return
	}

	view := loginView{
		Email:   form.Values().Email,
		Errors:  form.Errors(),
		Toasts:  ws.takeToasts(),
		Pending: errors.Is(err, forms.ErrSubmissionInFlight),
	}
	ws.save()
	render(w, statusFor(err), "login.html", view)
}

// APILogin is the JSON variant of SubmitLogin for script clients.
func (h *LoginHandler) APILogin(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Error().Err(err).Msg("Invalid request body for Login")
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	creds.Email = strings.TrimSpace(creds.Email)

	ws, _ := newWebSession(h.store, w, r)
	storage, err := h.storageFor(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open session storage")
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	form, err := h.loginService.Login(r.Context(), ws.submissionKey(creds.Email), creds, services.Effects{Storage: storage, Notifier: ws, Navigator: ws})
	toasts := ws.takeToasts()
	ws.save()

	if err != nil {
		message := err.Error()
		if len(toasts) > 0 {
			message = toasts[len(toasts)-1].Message
		}
		utils.SendJSONError(w, message, form.Errors(), statusFor(err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, form.Response())
}

// ValidateFields re-validates the fields present in the JSON body and returns
// their errors. It backs live validation while the user types.
func (h *LoginHandler) ValidateFields(w http.ResponseWriter, r *http.Request) {
	var edits map[string]string
	if err := json.NewDecoder(r.Body).Decode(&edits); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	form := forms.NewLoginForm(nil, nil)
	var all map[string]string
	for name, value := range edits {
		if name == forms.FieldEmail {
			value = strings.TrimSpace(value)
		}
		errs, err := form.SetField(name, value)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		all = errs
	}

	touched := make(map[string]string)
	for name := range edits {
		if msg, ok := all[name]; ok {
			touched[name] = msg
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  len(touched) == 0,
		"errors": touched,
	})
}

func statusFor(err error) int {
	var verr *forms.ValidationError
	var aerr *services.AuthError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, forms.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.As(err, &aerr):
		if aerr.Kind != services.AuthUnclassified {
			return aerr.Code
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func render(w http.ResponseWriter, code int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render template")
	}
}
