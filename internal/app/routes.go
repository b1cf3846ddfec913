package app

import (
	"github.com/vancomm/sweeper/internal/handlers"
)

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(
		a.logger, a.sessions, a.cookies, a.ws, a.basePath,
	)

	a.router.HandleFunc("GET /limits", game.Limits)
	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("POST /game/{id}/move", game.MakeAMove)
	a.router.HandleFunc("POST /game/{id}/forfeit", game.Forfeit)
	a.router.HandleFunc("POST /game/{id}/restart", game.Restart)
	a.router.HandleFunc("GET /game/{id}/connect", game.ConnectWS)

	if a.records != nil {
		recs := handlers.NewRecordsHandler(a.logger, a.records)
		a.router.HandleFunc("GET /records", recs.Highscores)
	}
}
