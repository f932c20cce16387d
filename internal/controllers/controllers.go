package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nyumbani/rental-service/internal/utils"
)

// pathID parses the {id} path variable. On failure it writes the 400
// itself and reports ok=false.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid id", nil, err)
		return uuid.Nil, false
	}
	return id, true
}
