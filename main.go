package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/folio/internal/cellsize"
	"github.com/llehouerou/folio/internal/colormode"
	"github.com/llehouerou/folio/internal/config"
	"github.com/llehouerou/folio/internal/errmsg"
	"github.com/llehouerou/folio/internal/logging"
	"github.com/llehouerou/folio/internal/theme"
	"github.com/llehouerou/folio/internal/ui/imageview"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	logCfg := cfg.GetLogConfig()
	logFile, err := logging.Open(logCfg.File, logging.ParseLevel(logCfg.Level))
	if err != nil {
		fmt.Fprintln(os.Stderr, errmsg.FormatWith(errmsg.OpLogOpen, logCfg.File, err))
	} else {
		defer logFile.Close()
	}

	profile, ok := colormode.ParseProfile(cfg.ColorMode)
	if !ok {
		profile = colormode.Detect()
	}
	theme.Configure(profile)

	images := cfg.GetImagesConfig()
	dir := images.Dir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return errors.New(errmsg.Format(errmsg.OpInitialize, err))
		}
	}

	store, closeStore, err := openStore(dir, images)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpInitialize, dir, err))
	}
	defer closeStore()

	hrefs, err := store.List()
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpImageLoad, dir, err))
	}

	cell := cellsize.Resolve(images.CellWidth, images.CellHeight)
	logging.Logger().Info("starting viewer",
		"dir", store.Root(),
		"images", len(hrefs),
		"color_mode", profile,
		"cell", fmt.Sprintf("%dx%d", cell.Width, cell.Height))

	view := imageview.New(store, imageview.Options{
		MinSize: images.MinSize,
		MinRows: images.MinRows,
		MaxRows: images.MaxRows,
		Tiled:   images.TiledEnabled(),
		Cell:    cell,
		Profile: profile,
	})
	view.Add("", hrefs...)

	p := tea.NewProgram(view, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
