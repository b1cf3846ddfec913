package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vancomm/sweeper/internal/session"
)

// ConnectWS upgrades to a websocket that takes text frames of newline
// separated commands and answers each frame with the session state.
func (g GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !g.authorized(r, id) {
		sendErrorOrLog(w, g.logger, http.StatusForbidden, ErrForbidden)
		return
	}
	if _, err := g.sessions.Get(id); err != nil {
		g.sendSessionError(w, r, err)
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("unable to upgrade connection", slog.Any("error", err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(g.ws.ReadLimit)

	logger := g.logger.With(slog.String("session_id", id))
	logger.Debug("websocket connected")

	if err := g.runGameLoop(r, conn, id); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			logger.Debug("websocket closed")
			return
		}
		logger.Warn("websocket game loop stopped", slog.Any("error", err))
	}
}

func (g GameHandler) runGameLoop(r *http.Request, conn *websocket.Conn, id string) error {
	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return nil
		}

		cmds, err := session.ParseCommands(string(buf))
		if err != nil {
			if err := conn.WriteJSON(wrapError(err)); err != nil {
				return err
			}
			continue
		}

		view, err := g.sessions.Exec(r.Context(), id, cmds...)
		if errors.Is(err, session.ErrNotFound) {
			_ = conn.WriteJSON(wrapError(err))
			return err
		}
		if err != nil {
			if err := conn.WriteJSON(wrapError(err)); err != nil {
				return err
			}
			continue
		}

		if err := conn.WriteJSON(NewGameSessionDTO(view)); err != nil {
			return err
		}
	}
}
