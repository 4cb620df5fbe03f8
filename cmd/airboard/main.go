package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/ayusman/airboard/internal/app"
	"github.com/ayusman/airboard/internal/capture"
	"github.com/ayusman/airboard/internal/config"
	"github.com/ayusman/airboard/internal/detector"
	"github.com/ayusman/airboard/internal/server"
	"github.com/ayusman/airboard/internal/store"
	"github.com/ayusman/airboard/internal/tray"
	"github.com/ayusman/airboard/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default ~/.airboard/config.toml)")
	flag.Parse()

	fmt.Println("Airboard - Hand Tracking Whiteboard")

	dataDir, err := config.DataDir()
	if err != nil {
		log.Fatalf("Failed to locate data directory: %v", err)
	}
	if *configPath == "" {
		*configPath = filepath.Join(dataDir, config.FileName)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "airboard.db")
	}
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	board := app.New(app.Config{
		Store: st,
		Camera: capture.Config{
			Device: cfg.Camera.Device,
			Width:  cfg.Camera.Width,
			Height: cfg.Camera.Height,
		},
		Detector: detector.Config{
			MaxHands:        cfg.Detector.MaxHands,
			MinConfidence:   cfg.Detector.MinConfidence,
			MinTrackingConf: cfg.Detector.MinTrackingConf,
			Script:          cfg.Detector.Script,
			Python:          cfg.Detector.Python,
		},
		FrameInterval: time.Duration(cfg.Camera.FrameIntervalMs) * time.Millisecond,
		StopTimeout:   time.Duration(cfg.Camera.StopTimeoutMs) * time.Millisecond,
	})

	a := fyneapp.NewWithID("io.github.ayusman.airboard")
	window := ui.NewCameraWindow(a, board)

	t := tray.New()
	t.OnToggle(board.SetEnabled)
	t.OnClear(board.Clear)
	t.OnQuit(a.Quit)
	if !t.Install(a) {
		log.Println("System tray not available")
	}

	var hub *server.StatusHub
	var srv *server.Server
	if cfg.Server.Enabled {
		hub = server.NewStatusHub()
		srv = server.New(server.Config{
			Controller: board,
			Frames:     board,
			Status:     hub,
			Store:      st,
		})
		go func() {
			fmt.Printf("Preview server on http://%s\n", cfg.Server.Addr)
			if err := srv.ListenAndServe(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Preview server failed: %v", err)
			}
		}()
	}

	board.OnFrame(window.ShowFrame)
	board.OnStatus(func(s app.Status) {
		window.ShowStatus(s)
		fyne.Do(func() { t.SetEnabled(s.Enabled) })
		if hub != nil {
			hub.Publish(s)
		}
	})

	if err := board.Start(); err != nil {
		log.Fatalf("Failed to start camera: %v", err)
	}

	window.Window.SetMaster()
	window.Window.SetOnClosed(func() {
		board.Stop()
	})
	a.Lifecycle().SetOnStopped(func() {
		board.Stop()
		if srv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("Preview server shutdown: %v", err)
			}
		}
	})

	window.Window.ShowAndRun()
}
