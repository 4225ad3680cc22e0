package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"literature-lite/internal/auth"
	"literature-lite/internal/config"
	"literature-lite/internal/gateway"
	"literature-lite/internal/httpapi"
	"literature-lite/internal/lobby"
	"literature-lite/internal/log"
	"literature-lite/internal/notify"
	"literature-lite/internal/store"
)

func main() {
	configFile := flag.String("config", "", "path to a config file (yaml, toml or json)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("[Server] Failed to load config: %v", err)
	}
	log.Init("literature", cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal("[Server] Failed to open store: %v", err)
	}
	defer st.Close()

	issuer, err := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TTL)
	if err != nil {
		log.Fatal("[Server] Failed to init auth: %v", err)
	}

	gw := gateway.New(issuer)
	out := notify.Multi{gw}
	if cfg.Nats.URL != "" {
		nc, err := notify.NewNATS(cfg.Nats.URL, cfg.Nats.SubjectPrefix)
		if err != nil {
			log.Fatal("[Server] Failed to connect to NATS: %v", err)
		}
		defer nc.Close()
		out = append(out, nc)
	}

	lby := lobby.New(st, cfg.Game, out)
	defer lby.Close()
	gw.SetGames(lby)
	go lby.Run(ctx)

	router := httpapi.NewRouter(lby, issuer, func(r *gin.Engine) {
		r.GET("/ws", gin.WrapF(gw.HandleWebSocket))
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("[Server] Listening on %s (variant=%s players=%d store=%s)",
			cfg.Server.Addr, cfg.Game.Variant, cfg.Game.Players, cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("[Server] Failed to serve: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("[Server] Shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("[Server] Shutdown: %v", err)
	}
}
