package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strconv"

	fyneapp "fyne.io/fyne/v2/app"

	"github.com/ayusman/airboard/internal/config"
	"github.com/ayusman/airboard/internal/pointer"
	"github.com/ayusman/airboard/internal/store"
	"github.com/ayusman/airboard/internal/ui"
)

func main() {
	dbFlag := flag.String("db", "", "path to the settings database (default ~/.airboard/airboard.db)")
	flag.Parse()

	fmt.Println("Airboard - Mouse Whiteboard")

	dbPath := *dbFlag
	if dbPath == "" {
		dataDir, err := config.DataDir()
		if err != nil {
			log.Fatalf("Failed to locate data directory: %v", err)
		}
		dbPath = filepath.Join(dataDir, "airboard.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	b := pointer.New()
	restoreBrush(st.Settings(), b)

	a := fyneapp.NewWithID("io.github.ayusman.airboard.pointer")
	widget := ui.NewPointerBoard(b)
	widget.OnBrushChange = func(name string, width float32) {
		saveBrush(st.Settings(), name, width)
	}

	ui.NewPointerWindow(a, widget).ShowAndRun()
}

// restoreBrush applies the colour and width saved by a previous run.
func restoreBrush(settings *store.SettingsRepository, b *pointer.Board) {
	if name, err := settings.Get(store.KeyPointerColor); err == nil {
		known := name == ui.EraserName
		if known {
			b.UseEraser()
		}
		for _, s := range pointer.Palette {
			if s.Name == name {
				b.SelectColor(s.Color)
				known = true
			}
		}
		if !known {
			log.Printf("Ignoring stored brush color %q", name)
			forget(settings, store.KeyPointerColor)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to load brush color: %v", err)
	}

	if v, err := settings.Get(store.KeyPointerWidth); err == nil {
		w, err := strconv.ParseFloat(v, 32)
		if err != nil {
			log.Printf("Ignoring stored brush width %q", v)
			forget(settings, store.KeyPointerWidth)
			return
		}
		b.SetWidth(float32(w))
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to load brush width: %v", err)
	}
}

func forget(settings *store.SettingsRepository, key string) {
	if err := settings.Delete(key); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("Failed to delete setting %s: %v", key, err)
	}
}

func saveBrush(settings *store.SettingsRepository, name string, width float32) {
	if err := settings.Set(store.KeyPointerColor, name); err != nil {
		log.Printf("Failed to save brush color: %v", err)
	}
	if err := settings.Set(store.KeyPointerWidth, strconv.FormatFloat(float64(width), 'f', -1, 32)); err != nil {
		log.Printf("Failed to save brush width: %v", err)
	}
}
