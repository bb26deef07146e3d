// Command roomserver wires configuration, the simulation engine, input
// validation, the room dispatcher and the HTTP/WebSocket surface into
// one running process. Grounded on the teacher's cmd/server/main.go:
// load .env, load centralized config, construct the engine, start the
// debug server, then start the HTTP server and block on an OS signal.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fightclub/arenacore/input"
	"github.com/fightclub/arenacore/internal/apiserver"
	"github.com/fightclub/arenacore/internal/config"
	"github.com/fightclub/arenacore/internal/metrics"
	"github.com/fightclub/arenacore/room"
	"github.com/fightclub/arenacore/sim"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables only")
	}

	log.Println("arenacore roomserver starting")

	appCfg := config.Load()

	simCfg := sim.Config{
		TickRateHz:      appCfg.Sim.TickRateHz,
		MapRadius:       float32(appCfg.Sim.MapRadius),
		MaxSpeedBase:    float32(appCfg.Sim.MaxSpeedBase),
		SpeedTolerance:  float32(appCfg.Sim.SpeedTolerance),
		FrictionPerSec:  float32(appCfg.Sim.FrictionPerSec),
		CellSize:        float32(appCfg.Sim.CellSize),
		MaxFood:         appCfg.Sim.MaxFood,
		FoodBurstSize:   appCfg.Sim.FoodBurstSize,
		RingThresholds:  []float32{0.25, 0.5, 0.75},
		FoodSpawnPeriod: float32(appCfg.Sim.FoodSpawnPeriod),
	}

	engine := sim.NewEngine(simCfg, appCfg.Limits.MaxEntities)
	engine.SetHooks(sim.Hooks{
		OnDeath: func(idx int) { log.Printf("[sim] entity %d died", idx) },
	})
	engine.Start()
	defer engine.Stop()

	validator := input.NewValidator(input.Config{
		MaxMsgBytes:     appCfg.Input.MaxMsgBytes,
		RateLimitPerSec: appCfg.Input.RateLimitPerSec,
		RateLimitBurst:  int(appCfg.Input.RateLimitPerSec),
		MaxSequenceJump: uint32(appCfg.Input.MaxSequenceJump),
		MapRadius:       float32(appCfg.Sim.MapRadius),
	})
	defer validator.Stop()

	dispatcher := room.New(engine, validator, appCfg.Limits.MaxEntitiesPerClient)
	dispatcher.StartBroadcastLoop(time.Second / time.Duration(appCfg.Server.BroadcastHz))
	defer dispatcher.Stop()

	registry := apiserver.NewRegistry()
	registry.Add("default", dispatcher)

	metrics.StartDebugServer(metrics.ServerConfig{
		Enabled:    appCfg.Observability.Enabled,
		ListenAddr: appCfg.Observability.ListenAddr,
	})

	go reportEntityCount(engine)

	server := apiserver.NewServer(apiserver.RouterConfig{
		Rooms:             registry,
		TrustProxyHeaders: appCfg.Server.TrustProxyHeaders,
	})

	addr := ":" + strconv.Itoa(appCfg.Server.Port)
	go func() {
		if err := server.Start(addr); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func reportEntityCount(engine *sim.Engine) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		metrics.SetEntityCount(engine.EntityCount())
	}
}
