package handlers

import (
	"net/http"

	"pokedoro/internal/database"
	"pokedoro/internal/utils"
)

type CommonHandler struct {
	db database.Service
}

// NewCommonHandler takes the database used for health checks; db may be nil
// when tokens are kept in the session cookie.
func NewCommonHandler(db database.Service) *CommonHandler {
	return &CommonHandler{db: db}
}

func (h *CommonHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *CommonHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "It's healthy"})
		return
	}

	health := h.db.Health()
	code := http.StatusOK
	if _, failed := health["error"]; failed {
		code = http.StatusServiceUnavailable
	}
	utils.RespondWithJSON(w, code, health)
}
