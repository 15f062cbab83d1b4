package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/litforge/progression-api/internal/entities/sheet"
	"github.com/litforge/progression-api/internal/errors"
	"github.com/litforge/progression-api/internal/pkg/numfmt"
	charservice "github.com/litforge/progression-api/internal/services/character"
)

type handler struct {
	svc charservice.Service
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := errors.GetCode(err).HTTPStatus()
	requestErrors.WithLabelValues(strconv.Itoa(status)).Inc()
	writeJSON(w, status, map[string]string{
		"code":  string(errors.GetCode(err)),
		"error": errors.GetMessage(err),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, errors.InvalidArgumentf("invalid request body: %v", err))
		return false
	}
	return true
}

type createCharacterRequest struct {
	Name        string        `json:"name"`
	InitialStat sheet.Primary `json:"initial_stat"`
}

func (h *handler) createCharacter(w http.ResponseWriter, r *http.Request) {
	var req createCharacterRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := h.svc.CreateCharacter(r.Context(), &charservice.CreateCharacterInput{
		Name:        req.Name,
		InitialStat: req.InitialStat,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	charactersCreated.Inc()
	writeJSON(w, http.StatusCreated, out.Snapshot)
}

func (h *handler) listCharacters(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListCharacters(r.Context(), &charservice.ListCharactersInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"characters": out.Names})
}

func (h *handler) getCharacter(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetCharacter(r.Context(), &charservice.GetCharacterInput{
		Name: chi.URLParam(r, "name"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Snapshot)
}

func (h *handler) deleteCharacter(w http.ResponseWriter, r *http.Request) {
	_, err := h.svc.DeleteCharacter(r.Context(), &charservice.DeleteCharacterInput{
		Name: chi.URLParam(r, "name"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateStatRequest struct {
	Category sheet.PointCategory `json:"category"`
	Delta    int                 `json:"delta"`
}

func (h *handler) updateStat(w http.ResponseWriter, r *http.Request) {
	var req updateStatRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := h.svc.UpdateStat(r.Context(), &charservice.UpdateStatInput{
		Character: chi.URLParam(r, "name"),
		Stat:      chi.URLParam(r, "stat"),
		Category:  req.Category,
		Delta:     req.Delta,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// A rejected spend is a well-formed answer, not an error.
	writeJSON(w, http.StatusOK, map[string]any{
		"rejected":     out.Rejected,
		"stat":         out.Stat,
		"free_points":  out.FreePoints,
		"train_points": out.TrainPoints,
	})
}

type setInitialStatRequest struct {
	Primary sheet.Primary `json:"primary"`
}

func (h *handler) setInitialStat(w http.ResponseWriter, r *http.Request) {
	var req setInitialStatRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := h.svc.SetInitialStat(r.Context(), &charservice.SetInitialStatInput{
		Character: chi.URLParam(r, "name"),
		Primary:   req.Primary,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"next_target": out.NextTarget})
}

func (h *handler) getEnergy(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetEnergy(r.Context(), &charservice.GetEnergyInput{
		Character: chi.URLParam(r, "name"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	display := make(map[sheet.EnergyKind]string, len(out.Pools))
	for kind, pool := range out.Pools {
		display[kind] = numfmt.Format(pool.Final, true)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pools":   out.Pools,
		"display": display,
	})
}

type addExperienceRequest struct {
	Kind       sheet.ExperienceKind `json:"kind"`
	Identifier string               `json:"identifier"`
	Amount     int64                `json:"amount"`
}

func (h *handler) addExperience(w http.ResponseWriter, r *http.Request) {
	var req addExperienceRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := h.svc.AddExperience(r.Context(), &charservice.AddExperienceInput{
		Character:  chi.URLParam(r, "name"),
		Kind:       req.Kind,
		Identifier: req.Identifier,
		Amount:     req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	experienceCredited.WithLabelValues(string(req.Kind)).Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"record":            out.Record,
		"exp_display":       numfmt.Format(out.Record.Exp, false),
		"max_level_reached": out.MaxLevelReached,
	})
}

func (h *handler) addArt(w http.ResponseWriter, r *http.Request) {
	var art sheet.Art
	if !decode(w, r, &art) {
		return
	}

	out, err := h.svc.AddArt(r.Context(), &charservice.AddArtInput{
		Character: chi.URLParam(r, "name"),
		Art:       art,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out.Art)
}

func (h *handler) listArts(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListArts(r.Context(), &charservice.ListArtsInput{
		Character: chi.URLParam(r, "name"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"arts": out.Arts})
}

func (h *handler) updateArt(w http.ResponseWriter, r *http.Request) {
	var art sheet.Art
	if !decode(w, r, &art) {
		return
	}

	out, err := h.svc.UpdateArt(r.Context(), &charservice.UpdateArtInput{
		Character: chi.URLParam(r, "name"),
		Name:      chi.URLParam(r, "art"),
		Art:       art,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Art)
}

func (h *handler) removeArt(w http.ResponseWriter, r *http.Request) {
	_, err := h.svc.RemoveArt(r.Context(), &charservice.RemoveArtInput{
		Character: chi.URLParam(r, "name"),
		Name:      chi.URLParam(r, "art"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) calculateArt(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.CalculateArt(r.Context(), &charservice.CalculateArtInput{
		Character: chi.URLParam(r, "name"),
		Name:      chi.URLParam(r, "art"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Result)
}

func (h *handler) addTrait(w http.ResponseWriter, r *http.Request) {
	var trait sheet.Trait
	if !decode(w, r, &trait) {
		return
	}

	out, err := h.svc.AddTrait(r.Context(), &charservice.AddTraitInput{
		Character: chi.URLParam(r, "name"),
		Trait:     trait,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out.Trait)
}

func (h *handler) listTraits(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListTraits(r.Context(), &charservice.ListTraitsInput{
		Character: chi.URLParam(r, "name"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"traits": out.Traits})
}

func (h *handler) removeTrait(w http.ResponseWriter, r *http.Request) {
	_, err := h.svc.RemoveTrait(r.Context(), &charservice.RemoveTraitInput{
		Character: chi.URLParam(r, "name"),
		Name:      chi.URLParam(r, "trait"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type traitExperienceRequest struct {
	Amount  int64   `json:"amount"`
	Percent float64 `json:"percent"`
}

func (h *handler) addTraitExperience(w http.ResponseWriter, r *http.Request) {
	var req traitExperienceRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := h.svc.AddTraitExperience(r.Context(), &charservice.AddTraitExperienceInput{
		Character: chi.URLParam(r, "name"),
		Name:      chi.URLParam(r, "trait"),
		Amount:    req.Amount,
		Percent:   req.Percent,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	experienceCredited.WithLabelValues(string(sheet.KindTrait)).Inc()
	writeJSON(w, http.StatusOK, out.Tier)
}

type chapterRequest struct {
	Name string `json:"name"`
}

func (h *handler) addChapter(w http.ResponseWriter, r *http.Request) {
	var req chapterRequest
	if !decode(w, r, &req) {
		return
	}

	_, err := h.svc.AddChapter(r.Context(), &charservice.AddChapterInput{
		Character: chi.URLParam(r, "name"),
		Chapter:   req.Name,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *handler) removeChapter(w http.ResponseWriter, r *http.Request) {
	_, err := h.svc.RemoveChapter(r.Context(), &charservice.RemoveChapterInput{
		Character: chi.URLParam(r, "name"),
		Chapter:   chi.URLParam(r, "chapter"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkpointRequest struct {
	Name string `json:"name"`
}

func (h *handler) saveCheckpoint(w http.ResponseWriter, r *http.Request) {
	var req checkpointRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := h.svc.SaveCheckpoint(r.Context(), &charservice.SaveCheckpointInput{
		Character: chi.URLParam(r, "name"),
		Chapter:   chi.URLParam(r, "chapter"),
		Name:      req.Name,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	checkpointsSaved.Inc()
	writeJSON(w, http.StatusCreated, map[string]string{"checkpoint_id": out.CheckpointID})
}

type updateCheckpointRequest struct {
	Name            string `json:"name"`
	RefreshSnapshot bool   `json:"refresh_snapshot"`
}

func (h *handler) updateCheckpoint(w http.ResponseWriter, r *http.Request) {
	var req updateCheckpointRequest
	if !decode(w, r, &req) {
		return
	}

	_, err := h.svc.UpdateCheckpoint(r.Context(), &charservice.UpdateCheckpointInput{
		Character:       chi.URLParam(r, "name"),
		Chapter:         chi.URLParam(r, "chapter"),
		CheckpointID:    chi.URLParam(r, "checkpoint"),
		Name:            req.Name,
		RefreshSnapshot: req.RefreshSnapshot,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) removeCheckpoint(w http.ResponseWriter, r *http.Request) {
	_, err := h.svc.RemoveCheckpoint(r.Context(), &charservice.RemoveCheckpointInput{
		Character:    chi.URLParam(r, "name"),
		Chapter:      chi.URLParam(r, "chapter"),
		CheckpointID: chi.URLParam(r, "checkpoint"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) restoreCheckpoint(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.RestoreCheckpoint(r.Context(), &charservice.RestoreCheckpointInput{
		Character:    chi.URLParam(r, "name"),
		Chapter:      chi.URLParam(r, "chapter"),
		CheckpointID: chi.URLParam(r, "checkpoint"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	checkpointsRestored.Inc()
	writeJSON(w, http.StatusOK, out.Snapshot)
}
