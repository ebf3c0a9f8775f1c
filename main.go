package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/tilephysics/levels"
	"github.com/milk9111/tilephysics/logger"
	"github.com/milk9111/tilephysics/prefabs"
)

func main() {
	levelName := flag.String("level", "intro", "level name in levels/ (basename, .json optional)")
	watch := flag.Bool("watch", false, "reload the level when files under levels/ or prefabs/ change")
	noDebug := flag.Bool("nodebug", false, "start with the collision overlay hidden")
	savePath := flag.String("save", "save.yaml", "file written by F5 and read by F9")
	flag.Parse()

	logger.Init()
	log := logger.For("main")

	cfg, err := prefabs.LoadPhysicsConfig()
	if err != nil {
		log.WithError(err).Fatal("main: physics config")
	}

	var watcher *levels.Watcher
	if *watch {
		watcher, err = levels.NewWatcher(existingDirs(levels.Dir, prefabs.Dir)...)
		if err != nil {
			log.WithError(err).Warn("main: file watching disabled")
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("tilephysics")

	game := NewGame(*levelName, cfg, watcher, *savePath)
	game.overlay.Enabled = !*noDebug

	if err := ebiten.RunGame(game); err != nil {
		log.WithError(err).Fatal("main: game exited")
	}
}

func existingDirs(dirs ...string) []string {
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			out = append(out, dir)
		}
	}
	return out
}
