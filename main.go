package main

import (
	"os"

	"schoolgear/app"
	"schoolgear/routes"
)

func main() {
	app.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router
	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	application.Log.Info().Str("port", port).Msg("listening")
	_ = r.Run(":" + port)
}
