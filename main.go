package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/spellcircle/assets"
	"github.com/robalobadob/spellcircle/internal/catalog"
	"github.com/robalobadob/spellcircle/internal/game"
	"github.com/robalobadob/spellcircle/internal/httpserver"
	"github.com/robalobadob/spellcircle/internal/store"
	"github.com/robalobadob/spellcircle/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	cat, err := catalog.Load(getEnv("CATALOG_FILE", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load level catalog")
	}

	db, err := store.Open(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open db")
	}
	defer db.Close()
	if err := store.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	cfg := game.DefaultConfig
	cfg.HitRadius = getFloat("HIT_RADIUS", cfg.HitRadius)
	cfg.Geometry.BaseRadius = getFloat("RING_BASE_RADIUS", cfg.Geometry.BaseRadius)
	cfg.Geometry.Spacing = getFloat("RING_SPACING", cfg.Geometry.Spacing)

	srv := httpserver.New(store.NewMemoryStore(), db, httpserver.Options{
		Catalog: cat,
		Words:   words.Default(),
		Game:    cfg,
	})
	port := getEnv("PORT", "5175")
	log.Info().
		Str("port", port).
		Int("levels", cat.Len()).
		Int("words", words.Default().Len()).
		Msg("starting spellcircle server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring invalid number")
		return def
	}
	return f
}
