package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/middleware"
	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/session"
)

var ErrForbidden = errors.New("no token for this game session")

type GameHandler struct {
	logger   *slog.Logger
	sessions *session.Service
	cookies  *config.Cookies
	ws       *config.WebSocket
	basePath string
}

func NewGameHandler(
	logger *slog.Logger,
	sessions *session.Service,
	cookies *config.Cookies,
	ws *config.WebSocket,
	basePath string,
) *GameHandler {
	return &GameHandler{
		logger:   logger,
		sessions: sessions,
		cookies:  cookies,
		ws:       ws,
		basePath: basePath,
	}
}

func (g GameHandler) cookiePath(id string) string {
	return g.basePath + "/game/" + id
}

func (g GameHandler) authorized(r *http.Request, id string) bool {
	claims, ok := middleware.SessionClaims(r.Context())
	return ok && claims.SessionID == id
}

// sendSessionError maps service errors onto status codes. Cookies of a
// session that no longer exists are dropped.
func (g GameHandler) sendSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		if id := r.PathValue("id"); id != "" {
			g.cookies.Clear(w, g.cookiePath(id))
		}
		sendErrorOrLog(w, g.logger, http.StatusNotFound, err)
	case errors.Is(err, session.ErrInvalidPosition),
		errors.Is(err, session.ErrUnknownCommand),
		errors.Is(err, session.ErrInvalidArgs),
		errors.Is(err, session.ErrTooLarge),
		errors.Is(err, mines.ErrInvalidParams):
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
	default:
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.ErrorContext(r.Context(), "game session failure", slog.Any("error", err))
	}
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	params, err := ParseGameParams(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	view, err := g.sessions.Create(r.Context(), params)
	if err != nil {
		g.sendSessionError(w, r, err)
		return
	}

	jwt := g.cookies.JWT()
	token, err := jwt.Sign(jwt.NewSessionClaims(view.ID))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to create a jwt token", slog.Any("error", err))
		return
	}
	if err := g.cookies.Refresh(w, g.cookiePath(view.ID), token); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to set session cookies", slog.Any("error", err))
		return
	}

	dto := NewGameSessionDTO(view)
	dto.Token = token
	sendJSONOrLog(w, g.logger, http.StatusCreated, dto)
}

type LimitsDTO struct {
	MaxWidth  int   `json:"max_width"`
	MaxHeight int   `json:"max_height"`
	TTLMs     int64 `json:"session_ttl_ms"`
}

// Limits reports the largest grid a new game may ask for.
func (g GameHandler) Limits(w http.ResponseWriter, r *http.Request) {
	limits := g.sessions.Limits()
	sendJSONOrLog(w, g.logger, http.StatusOK, LimitsDTO{
		MaxWidth:  limits.MaxWidth,
		MaxHeight: limits.MaxHeight,
		TTLMs:     limits.SessionTTL.Milliseconds(),
	})
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	view, err := g.sessions.Get(r.PathValue("id"))
	if err != nil {
		g.sendSessionError(w, r, err)
		return
	}
	sendJSONOrLog(w, g.logger, http.StatusOK, NewGameSessionDTO(view))
}

func (g GameHandler) exec(w http.ResponseWriter, r *http.Request, cmd session.Command) {
	id := r.PathValue("id")
	if !g.authorized(r, id) {
		sendErrorOrLog(w, g.logger, http.StatusForbidden, ErrForbidden)
		return
	}

	view, err := g.sessions.Exec(r.Context(), id, cmd)
	if err != nil {
		g.sendSessionError(w, r, err)
		return
	}
	sendJSONOrLog(w, g.logger, http.StatusOK, NewGameSessionDTO(view))
}

func (g GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	cmd, err := ParseMove(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}
	g.exec(w, r, cmd)
}

func (g GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	g.exec(w, r, session.Command{Op: session.OpForfeit})
}

func (g GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	g.exec(w, r, session.Command{Op: session.OpRestart})
}
