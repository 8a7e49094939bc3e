// controllers/srv.go
package controllers

import (
	"schoolgear/app"
	"schoolgear/auth"
	"schoolgear/db"
	"schoolgear/session"

	"github.com/rs/zerolog"
)

// Srv bundles the dependencies shared by all controllers.
type Srv struct {
	Repo   *db.Repo
	Tokens *session.TokenStore
	Issuer *auth.TokenIssuer
	Log    zerolog.Logger
	Cfg    app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:   db.NewRepo(a.DB),
		Tokens: a.Tokens,
		Issuer: a.Issuer,
		Log:    a.Log,
		Cfg:    a.Config,
	}
}
