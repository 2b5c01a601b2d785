package profile

import (
	"PumpStation/internal/auth"
	"PumpStation/internal/calc/pumpstation"
	"PumpStation/internal/repo"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type ProfileHandler struct {
	Repo repo.Repository
	Log  logrus.FieldLogger
}

// UpdatePreferencesRequest selects the units reports are rendered in.
type UpdatePreferencesRequest struct {
	FlowUnit   string `json:"flow_unit"`
	HeightUnit string `json:"height_unit"`
}

func (req UpdatePreferencesRequest) validate() error {
	if !pumpstation.ValidUnit(pumpstation.Flow, req.FlowUnit) {
		return errors.New("unsupported flow_unit")
	}
	if !pumpstation.ValidUnit(pumpstation.Height, req.HeightUnit) {
		return errors.New("unsupported height_unit")
	}
	return nil
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if idStr, ok := mux.Vars(r)["id"]; ok && idStr != "" {
		targetID, err := strconv.Atoi(idStr)
		if err != nil {
			http.Error(w, "Invalid id", http.StatusBadRequest)
			return
		}
		userID = targetID
	}
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	prof, err := h.Repo.GetProfileByID(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) && h.Log != nil {
			h.Log.WithError(err).WithField("user_id", userID).Error("loading profile")
		}
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	if userID != auth.UserID(r.Context()) {
		prof.Email = ""
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prof)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Repo.UpdatePreferences(r.Context(), userID, req.FlowUnit, req.HeightUnit); err != nil {
		if h.Log != nil {
			h.Log.WithError(err).WithField("user_id", userID).Error("updating preferences")
		}
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
