// Command mosaic catalogs thumbnails into a SQLite palette and assembles
// photo mosaics from it.
//
//	mosaic catalog -db palette.sqlite -dir thumbs/
//	mosaic nearest -db palette.sqlite '#aabbcc'
//	mosaic tile -db palette.sqlite -in target.png -out mosaic.png [-tile 30]
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/viant/sqlite-mosaic/engine"
	"github.com/viant/sqlite-mosaic/mosaic"
	"github.com/viant/sqlite-mosaic/nearest"
	"github.com/viant/sqlite-mosaic/rgb"
)

const usage = "usage: mosaic catalog|nearest|tile [flags]"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "mosaic:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "catalog":
		return runCatalog(ctx, args[1:], stdout)
	case "nearest":
		return runNearest(ctx, args[1:], stdout)
	case "tile":
		return runTile(ctx, args[1:], stdout)
	default:
		return fmt.Errorf("unknown command %q; %s", args[0], usage)
	}
}

// options are the flags shared by every subcommand. Flags that are set on
// the command line override values from -config.
type options struct {
	fs         *flag.FlagSet
	configPath string
	database   string
	palette    string
	index      string
	search     string
	workers    int
	jsonLog    bool
	verbose    bool
}

func newOptions(name string) *options {
	o := &options{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	o.fs.StringVar(&o.configPath, "config", "", "YAML configuration file")
	o.fs.StringVar(&o.database, "db", "", "SQLite database holding the palette")
	o.fs.StringVar(&o.palette, "palette", "", "palette table name")
	o.fs.StringVar(&o.index, "index", "", "index kind: auto, kd or brute")
	o.fs.StringVar(&o.search, "search", "", "kd search mode: recursive or stack")
	o.fs.IntVar(&o.workers, "workers", 0, "parallel workers")
	o.fs.BoolVar(&o.jsonLog, "json", false, "log as JSON")
	o.fs.BoolVar(&o.verbose, "v", false, "debug logging")
	return o
}

func (o *options) config() (*mosaic.Config, error) {
	cfg := mosaic.DefaultConfig()
	if o.configPath != "" {
		loaded, err := mosaic.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	o.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.Database = o.database
		case "palette":
			cfg.Palette = o.palette
		case "index":
			cfg.Index = o.index
		case "search":
			cfg.Search = o.search
		case "workers":
			cfg.Workers = o.workers
		}
	})
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	if o.jsonLog {
		cfg.Logger = mosaic.NewJSONLogger(level)
	} else {
		cfg.Logger = mosaic.NewTextLogger(level)
	}
	cfg = cfg.OrDefault()
	if cfg.Database == "" {
		return nil, errors.New("a database is required (-db or config database)")
	}
	if _, err := cfg.IndexOptions(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDB(cfg *mosaic.Config) (*sql.DB, error) {
	nearest.RegisterFunctions()
	if err := engine.RegisterColorFunctions(); err != nil {
		return nil, err
	}
	return engine.Open(cfg.Database)
}

func runCatalog(ctx context.Context, args []string, stdout io.Writer) error {
	o := newOptions("catalog")
	dir := o.fs.String("dir", "", "thumbnail directory")
	if err := o.fs.Parse(args); err != nil {
		return err
	}
	cfg, err := o.config()
	if err != nil {
		return err
	}
	if *dir != "" {
		cfg.ThumbDir = *dir
	}
	if cfg.ThumbDir == "" {
		return errors.New("catalog: a thumbnail directory is required (-dir or config thumbDir)")
	}

	scanID := uuid.NewString()
	cfg.Logger = cfg.Logger.WithScan(scanID)
	palette, err := mosaic.Catalog(ctx, cfg.ThumbDir, cfg)
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	store, err := rgb.NewSQLiteStoreTable(db, cfg.Palette)
	if err != nil {
		return err
	}
	if err := nearest.InstallTriggers(db, cfg.Palette); err != nil {
		return err
	}
	stored, err := store.AddScan(ctx, scanID, mosaic.Entries(palette))
	if err != nil {
		return err
	}
	cfg.Logger.InfoContext(ctx, "palette stored", "table", cfg.Palette, "stored", stored, "colors", len(palette))
	fmt.Fprintf(stdout, "stored %d of %d colours in %s (scan %s)\n", stored, len(palette), cfg.Palette, scanID)
	return nil
}

func runNearest(ctx context.Context, args []string, stdout io.Writer) error {
	o := newOptions("nearest")
	if err := o.fs.Parse(args); err != nil {
		return err
	}
	if o.fs.NArg() == 0 {
		return errors.New("nearest: expected one or more colours (#rrggbb or r,g,b)")
	}
	cfg, err := o.config()
	if err != nil {
		return err
	}
	opts, err := cfg.IndexOptions()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, arg := range o.fs.Args() {
		q, err := rgb.ParseColor(arg)
		if err != nil {
			return err
		}
		m, err := nearest.Query(ctx, db, cfg.Palette, q, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\t%d\n", m.Query, m.Color, m.Label, m.Dist2)
	}
	return nil
}

func runTile(ctx context.Context, args []string, stdout io.Writer) error {
	o := newOptions("tile")
	in := o.fs.String("in", "", "target image")
	out := o.fs.String("out", "mosaic.png", "output PNG")
	tileSize := o.fs.Int("tile", 0, "tile size in pixels")
	if err := o.fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("tile: -in is required")
	}
	cfg, err := o.config()
	if err != nil {
		return err
	}
	if *tileSize > 0 {
		cfg.TileSize = *tileSize
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	store, err := rgb.NewSQLiteStoreTable(db, cfg.Palette)
	if err != nil {
		return err
	}
	palette, err := store.Palette(ctx)
	if err != nil {
		return err
	}
	tiler, err := mosaic.NewTilerFromPalette(palette, cfg)
	if err != nil {
		return err
	}

	target, err := decodeImage(*in)
	if err != nil {
		return err
	}
	img, err := tiler.Tile(ctx, target)
	if err != nil {
		return err
	}
	size, err := writePNG(*out, img)
	if err != nil {
		return err
	}
	b := img.Bounds()
	cfg.Logger.InfoContext(ctx, "mosaic written", "path", *out, "size", humanize.Bytes(size))
	fmt.Fprintf(stdout, "wrote %s (%dx%d, %s)\n", *out, b.Dx(), b.Dy(), humanize.Bytes(size))
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func writePNG(path string, img image.Image) (uint64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}
