package handler

import (
	"net/http"

	"codearena/internal/api/middleware"
	"codearena/internal/app/service"
	"codearena/internal/common"
)

type RankHandler struct {
	rankService *service.RankService
	roomService *service.RoomService
}

func NewRankHandler(rankService *service.RankService, roomService *service.RoomService) *RankHandler {
	return &RankHandler{rankService: rankService, roomService: roomService}
}

func (h *RankHandler) GetRank(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	rank, err := h.rankService.GetUserRank(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rank)
}

// GetPendingRoom reports the unfinished room the caller is currently in, so
// a reconnecting client can rejoin it.
func (h *RankHandler) GetPendingRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	roomID, err := h.roomService.PendingRoomID(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if roomID == "" {
		common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"room_id": nil})
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"room_id": roomID})
}
