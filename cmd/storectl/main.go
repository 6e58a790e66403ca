package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/jozzzzep/shrink/internal/config"
	"github.com/jozzzzep/shrink/internal/observability"
	"github.com/jozzzzep/shrink/internal/server"
	"github.com/jozzzzep/shrink/internal/store"
	"github.com/jozzzzep/shrink/transport"
)

func main() {
	configPath := flag.String("config", "", "service config path (built-in defaults when empty)")
	flag.Parse()

	observability.InitLogger("storectl")

	cfg := config.DefaultServiceConfig()
	if *configPath != "" {
		loaded, err := loadServiceConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load store config")
		}
		cfg = loaded
		log.Info().Str("path", *configPath).Msg("loaded store config")
	}

	adapter, err := transport.ByName(cfg.Adapter)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid transport adapter")
	}
	st, err := store.OpenStore(cfg.Store.Backend, store.Options{
		Root: cfg.Store.Root,
		Path: cfg.Store.Path,
	}, adapter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store backend")
	}

	svc := server.New(cfg, st)
	log.Info().
		Str("name", svc.Name).
		Str("addr", svc.Addr).
		Str("backend", st.BackendName()).
		Str("adapter", adapter.Name()).
		Msg("store service started")

	err = svc.Serve()
	st.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("store service stopped")
	}
}
