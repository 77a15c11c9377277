package handlers

import "net/http"

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.UserService.GetByID(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
