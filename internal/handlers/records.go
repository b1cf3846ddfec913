package handlers

import (
	"log/slog"
	"net/http"

	"github.com/vancomm/sweeper/internal/records"
)

type RecordsHandler struct {
	logger *slog.Logger
	store  records.Store
}

func NewRecordsHandler(logger *slog.Logger, store records.Store) *RecordsHandler {
	return &RecordsHandler{logger: logger, store: store}
}

func (h RecordsHandler) Highscores(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseRecordsFilter(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}

	highscores, err := h.store.Highscores(r.Context(), filter)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.ErrorContext(r.Context(), "unable to fetch highscores", slog.Any("error", err))
		return
	}
	if highscores == nil {
		highscores = []records.Highscore{}
	}

	sendJSONOrLog(w, h.logger, http.StatusOK, highscores)
}
