// Command constellate is the CLI front end for the fingerprinting
// pipeline: enroll audio files (singly or by directory), recognize a
// clip or the microphone, and inspect the catalog.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/resonantlabs/constellate/config"
	"github.com/resonantlabs/constellate/internal/audio"
	"github.com/resonantlabs/constellate/internal/catalog"
	"github.com/resonantlabs/constellate/internal/match"
	"github.com/resonantlabs/constellate/utils/logger"
)

func main() {
	addFile := flag.String("add", "", "Path to an audio file to enroll")
	addDir := flag.String("add-dir", "", "Path to a directory of audio files to enroll")
	name := flag.String("name", "", "Song name (used with -add; defaults to the file's base name)")
	artist := flag.String("artist", "", "Song artist (used with -add)")
	recognizeFile := flag.String("recognize", "", "Path to an audio clip to recognize")
	microphoneCmd := flag.Bool("microphone", false, "Recognize continuously from the microphone until a match or timeout")
	listCmd := flag.Bool("list", false, "List all songs in the catalog")
	removeName := flag.String("remove", "", "Name of the song to remove (use with -artist)")
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error(fmt.Errorf("load configuration: %w", err))
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	store, err := catalog.NewStore(cfg.Database)
	if err != nil {
		logger.Error(fmt.Errorf("build catalog store: %w", err))
		os.Exit(1)
	}
	dsp := catalog.DSPParams{
		SampleRate: cfg.DSP.SampleRate,
		NFFT:       cfg.DSP.NFFT,
		Overlap:    cfg.DSP.Overlap,
		FracCut:    cfg.DSP.FracCut,
		PNN:        cfg.DSP.PNN,
		FanValue:   cfg.DSP.FanValue,
	}
	cat := catalog.New(store, dsp)

	switch {
	case *removeName != "":
		runRemove(cat, *removeName, *artist)
	case *listCmd:
		runList(cat)
	case *microphoneCmd:
		runMicrophone(cat, dsp)
	case *recognizeFile != "":
		runRecognize(cat, dsp, *recognizeFile)
	case *addDir != "":
		runAddDir(cat, *addDir)
	case *addFile != "":
		runAdd(cat, *addFile, *name, *artist)
	default:
		logger.Error(fmt.Errorf("nothing to do: pass one of -add, -add-dir, -recognize, -microphone, -list, -remove"))
		flag.Usage()
		os.Exit(1)
	}
}

func runAdd(cat *catalog.Catalog, path, name, artist string) {
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	clip, err := audio.DecodeFile(path)
	if err != nil {
		logger.Error(fmt.Errorf("decode %s: %w", path, err))
		os.Exit(1)
	}

	songID, err := cat.Add(clip.PCM, clip.SampleRate, name, artist)
	if err != nil {
		if err == catalog.ErrDuplicateSong {
			logger.Info(fmt.Sprintf("%q by %q already enrolled", name, artist))
			return
		}
		logger.Error(fmt.Errorf("enroll %s: %w", path, err))
		os.Exit(1)
	}

	if err := cat.Save(); err != nil {
		logger.Error(fmt.Errorf("persist catalog: %w", err))
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("enrolled %q by %q as song %d", name, artist, songID))
}

func runAddDir(cat *catalog.Catalog, dir string) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".wav", ".mp3", ".flac":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		logger.Error(fmt.Errorf("walk %s: %w", dir, err))
		os.Exit(1)
	}

	bar := progressbar.Default(int64(len(files)), "enrolling")
	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		clip, err := audio.DecodeFile(path)
		if err != nil {
			logger.Warn(fmt.Sprintf("skip %s: %v", path, err))
			bar.Add(1)
			continue
		}
		if _, err := cat.Add(clip.PCM, clip.SampleRate, name, ""); err != nil && err != catalog.ErrDuplicateSong {
			logger.Warn(fmt.Sprintf("skip %s: %v", path, err))
		}
		bar.Add(1)
	}

	if err := cat.Save(); err != nil {
		logger.Error(fmt.Errorf("persist catalog: %w", err))
		os.Exit(1)
	}
}

func runRecognize(cat *catalog.Catalog, dsp catalog.DSPParams, path string) {
	clip, err := audio.DecodeFile(path)
	if err != nil {
		logger.Error(fmt.Errorf("decode %s: %w", path, err))
		os.Exit(1)
	}

	result, err := match.Against(cat, clip.PCM, clip.SampleRate, dsp)
	if err != nil {
		if err == match.ErrNoMatch || err == match.ErrEmptyCatalog {
			logger.Info("no match found")
			return
		}
		logger.Error(fmt.Errorf("recognize %s: %w", path, err))
		os.Exit(1)
	}

	fmt.Printf("%s by %s (score %d, offset %d)\n", result.Name, result.Artist, result.Score, result.Offset)
}

func runMicrophone(cat *catalog.Catalog, dsp catalog.DSPParams) {
	const windowSeconds = 5.0
	const timeout = 30 * time.Second

	found := make(chan *match.Result, 1)
	var mu sync.Mutex

	rec, err := audio.NewRecorder(dsp.SampleRate, windowSeconds, func(segment []float64) {
		// One match at a time: the catalog's lazy load is a write. A
		// segment that arrives while a match is running is dropped.
		if !mu.TryLock() {
			return
		}
		defer mu.Unlock()
		result, err := match.Against(cat, segment, dsp.SampleRate, dsp)
		if err != nil {
			return
		}
		select {
		case found <- result:
		default:
		}
	})
	if err != nil {
		logger.Error(fmt.Errorf("start microphone: %w", err))
		os.Exit(1)
	}
	defer rec.Close()

	if err := rec.Start(); err != nil {
		logger.Error(fmt.Errorf("start recording: %w", err))
		os.Exit(1)
	}
	logger.Info("listening...")

	select {
	case result := <-found:
		rec.Stop()
		fmt.Printf("%s by %s (score %d, offset %d)\n", result.Name, result.Artist, result.Score, result.Offset)
	case <-time.After(timeout):
		rec.Stop()
		logger.Info("no match found within timeout")
	}
}

func runList(cat *catalog.Catalog) {
	records, err := cat.List()
	if err != nil {
		logger.Error(fmt.Errorf("list catalog: %w", err))
		os.Exit(1)
	}
	if len(records) == 0 {
		logger.Info("no songs in catalog")
		return
	}
	for _, r := range records {
		fmt.Printf("%s by %s\n", r.Name, r.Artist)
	}
}

func runRemove(cat *catalog.Catalog, name, artist string) {
	if err := cat.Remove(name, artist); err != nil {
		if err == catalog.ErrSongNotFound {
			logger.Info(fmt.Sprintf("%q by %q not found", name, artist))
			return
		}
		logger.Error(fmt.Errorf("remove: %w", err))
		os.Exit(1)
	}
	if err := cat.Save(); err != nil {
		logger.Error(fmt.Errorf("persist catalog: %w", err))
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("removed %q by %q", name, artist))
}
