package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seabattlehq/seabattle-backend/api"
	"github.com/seabattlehq/seabattle-backend/db"
	mm "github.com/seabattlehq/seabattle-backend/models/matchmaking"
)

func main() {
	if os.Getenv("STAGE") != api.StageProd {
		_ = godotenv.Load(".env")
	}
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	stage := getEnv("STAGE", api.StageDev)
	port := getEnv("PORT", "3000")

	opts := []api.Option{api.WithPort(port), api.WithStage(stage)}

	var users db.UserStore
	if psqlUrl := os.Getenv("DATABASE_URL"); psqlUrl != "" {
		database := db.MustConnectToDb(psqlUrl)
		users = db.NewPostgresUserStore(database)
		opts = append(opts, api.WithDb(database))
	} else {
		log.Info().Msg("DATABASE_URL not set; using in-memory user store")
		users = db.NewMemoryUserStore()
	}

	server := api.NewServer(mm.NewMatchRegistry(), users, opts...)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /battleship", server.HandleWs)

	log.Info().Str("port", server.Port()).Msg("listening")
	log.Fatal().Err(http.ListenAndServe("0.0.0.0:"+server.Port(), mux)).Msg("server exited")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
