package main

import (
	"fmt"
	"os"

	"github.com/llehouerou/folio/internal/config"
	"github.com/llehouerou/folio/internal/errmsg"
	"github.com/llehouerou/folio/internal/imagestore"
	"github.com/llehouerou/folio/internal/logging"
)

// openStore sets up the image store for dir. The disk cache and size index
// are optional; failing to open them only loses their speedup.
func openStore(dir string, cfg config.ImagesConfig) (*imagestore.Store, func(), error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%s is not a directory", dir)
	}

	log := logging.Logger()
	closeFn := func() {}
	var opts []imagestore.Option

	cache, err := imagestore.NewCache(cfg.CacheDir)
	if err != nil {
		log.Warn(errmsg.Format(errmsg.OpCacheOpen, err))
	} else {
		opts = append(opts, imagestore.WithCache(cache))
	}

	if cfg.SizeIndexEnabled() {
		ix, err := imagestore.OpenSizeIndex("")
		if err != nil {
			log.Warn(errmsg.Format(errmsg.OpIndexOpen, err))
		} else {
			opts = append(opts, imagestore.WithSizeIndex(ix))
			closeFn = func() { ix.Close() }
		}
	}

	return imagestore.New(dir, opts...), closeFn, nil
}
