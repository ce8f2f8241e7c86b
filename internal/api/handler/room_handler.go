package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"codearena/internal/api/middleware"
	"codearena/internal/app/service"
	"codearena/internal/common"
	"codearena/internal/domain/model"
	"codearena/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

func (h *RoomHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator) // All room routes require auth
	r.Get("/", h.listRooms)
	r.Post("/", h.createRoom)
	r.Get("/{roomID}", h.getRoom)
	r.Post("/{roomID}/join", h.joinRoom)
	r.Post("/{roomID}/pass-host", h.passHost)
	r.Post("/{roomID}/start", h.startMatch)
	r.Get("/{roomID}/match", h.getMatch)
	r.Post("/{roomID}/submit", h.submitSolution)
	r.Post("/{roomID}/finish", h.finishMatch)
	r.Post("/{roomID}/timeout", h.timeoutRoom)
	r.Post("/{roomID}/leave", h.leaveRoom)
}

func (h *RoomHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.RoomListFilter{
		Search:        q.Get("search"),
		SortBy:        q.Get("sort_by"),
		SortDirection: q.Get("sort_direction"),
	}
	if v, err := strconv.Atoi(q.Get("min_rating")); err == nil {
		filter.MinRating = &v
	}
	if v, err := strconv.Atoi(q.Get("max_rating")); err == nil {
		filter.MaxRating = &v
	}
	for _, raw := range q["is_public[]"] {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.IsPublic = append(filter.IsPublic, v)
		}
	}

	page := 1
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	rows := 10
	if v, err := strconv.Atoi(q.Get("rows")); err == nil && v > 0 {
		rows = v
	}
	filter.Limit = rows
	filter.Offset = (page - 1) * rows

	rooms, total, err := h.roomService.ListRooms(r.Context(), filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.NewListResponse(rooms, page, rows, total))
}

func (h *RoomHandler) createRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	room, err := h.roomService.CreateRoom(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, map[string]*model.Room{"room": room})
}

func (h *RoomHandler) getRoom(w http.ResponseWriter, r *http.Request) {
	details, err := h.roomService.GetRoom(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, details)
}

func (h *RoomHandler) joinRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.JoinRoomRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
	}

	if err := h.roomService.JoinRoom(r.Context(), userID, chi.URLParam(r, "roomID"), req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Joined room successfully")
}

func (h *RoomHandler) passHost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.PassHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.roomService.PassHost(r.Context(), userID, chi.URLParam(r, "roomID"), req); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Host passed successfully")
}

func (h *RoomHandler) startMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.roomService.StartMatch(r.Context(), userID, chi.URLParam(r, "roomID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Match started")
}

func (h *RoomHandler) getMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	details, err := h.roomService.GetMatch(r.Context(), userID, chi.URLParam(r, "roomID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, details)
}

func (h *RoomHandler) submitSolution(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.SubmitSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	submission, err := h.roomService.SubmitSolution(r.Context(), userID, chi.URLParam(r, "roomID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, submission)
}

func (h *RoomHandler) finishMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	result, err := h.roomService.FinishMatch(r.Context(), userID, chi.URLParam(r, "roomID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

// timeoutRoom is the internal/scheduled force-completion entry point; the
// sweeper covers rooms nobody calls this for.
func (h *RoomHandler) timeoutRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.roomService.TimeoutRoom(r.Context(), chi.URLParam(r, "roomID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Match timed out")
}

func (h *RoomHandler) leaveRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.roomService.LeaveRoom(r.Context(), userID, chi.URLParam(r, "roomID")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Left room successfully")
}
