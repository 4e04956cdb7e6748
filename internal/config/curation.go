package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// CurationConfig holds the editorial knobs of the magazine
type CurationConfig struct {
	// Quick-submit theme shortcuts shown next to the search form
	PresetThemes []string `toml:"preset_themes"`

	// Number of songs requested per issue and how many of them are Korean
	SongCount   int `toml:"song_count"`
	KoreanCount int `toml:"korean_count"`

	// Situation the songs are picked for, embedded in the prompt
	Occasion string `toml:"occasion"`

	// Copy for the editorial sidebar and note
	EditorialIntro string `toml:"editorial_intro"`
	EditorialQuote string `toml:"editorial_quote"`
	HeroImageURL   string `toml:"hero_image_url"`
}

// DefaultCurationConfig returns hard-coded safe defaults
func DefaultCurationConfig() *CurationConfig {
	return &CurationConfig{
		PresetThemes:   []string{"City Pop", "Midnight", "Jazz", "Rainy", "K-Indie"},
		SongCount:      7,
		KoreanCount:    5,
		Occasion:       "출퇴근 시간(지하철, 버스 등)",
		EditorialIntro: "오늘 당신의 출근길을 위해, 우리는 7개의 트랙을 골랐습니다. 도시의 소음을 지우고 오직 비트와 선율에 집중해 보세요.",
		EditorialQuote: "음악은 우리가 어디로 가고 있는지보다, 우리가 누구인지를 더 잘 설명해 줍니다.",
		HeroImageURL:   "https://loremflickr.com/1600/600/urban,lifestyle,minimal?random=99",
	}
}

// InternationalCount is the number of non-Korean songs per issue
func (c *CurationConfig) InternationalCount() int {
	return c.SongCount - c.KoreanCount
}

var (
	curationCfg     *CurationConfig
	curationCfgOnce sync.Once
	curationCfgMu   sync.RWMutex
)

// GetCurationConfig returns the current curation config. Unless
// LoadCurationConfig ran first, it is discovered from the well-known
// locations on first use, falling back to defaults.
func GetCurationConfig() *CurationConfig {
	curationCfgOnce.Do(func() {
		cfg := loadCurationConfig("")
		curationCfgMu.Lock()
		curationCfg = cfg
		curationCfgMu.Unlock()
	})
	curationCfgMu.RLock()
	cfg := curationCfg
	curationCfgMu.RUnlock()
	return cfg
}

// LoadCurationConfig reads the curation config from path, or from the first
// well-known location when path is empty, and makes it current. Defaults fill
// whatever the file leaves unset or cannot provide.
func LoadCurationConfig(path string) *CurationConfig {
	cfg := loadCurationConfig(path)
	setCurationConfig(cfg)
	return cfg
}

func loadCurationConfig(path string) *CurationConfig {
	cfg := DefaultCurationConfig()
	if path != "" {
		fileCfg, err := loadCurationConfigFromPath(path)
		if err != nil {
			slog.Warn("curation config: failed to load, using defaults", "path", path, "error", err)
		} else if fileCfg == nil {
			slog.Warn("curation config: file not found, using defaults", "path", path)
		}
		mergeCurationConfig(cfg, fileCfg)
		return cfg
	}

	for _, p := range candidateCurationConfigPaths() {
		if fileCfg, err := loadCurationConfigFromPath(p); err == nil && fileCfg != nil {
			mergeCurationConfig(cfg, fileCfg)
			break
		}
	}
	return cfg
}

func loadCurationConfigFromPath(path string) (*CurationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var cfg CurationConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeCurationConfig overlays the set values of override onto base.
// A ratio that does not fit the song count is ignored as a whole.
func mergeCurationConfig(base, override *CurationConfig) {
	if override == nil || base == nil {
		return
	}
	if len(override.PresetThemes) > 0 {
		base.PresetThemes = append([]string(nil), override.PresetThemes...)
	}
	songCount, koreanCount := base.SongCount, base.KoreanCount
	if override.SongCount > 0 {
		songCount = override.SongCount
	}
	if override.KoreanCount > 0 {
		koreanCount = override.KoreanCount
	}
	if koreanCount <= songCount {
		base.SongCount, base.KoreanCount = songCount, koreanCount
	}
	if override.Occasion != "" {
		base.Occasion = override.Occasion
	}
	if override.EditorialIntro != "" {
		base.EditorialIntro = override.EditorialIntro
	}
	if override.EditorialQuote != "" {
		base.EditorialQuote = override.EditorialQuote
	}
	if override.HeroImageURL != "" {
		base.HeroImageURL = override.HeroImageURL
	}
}

// candidateCurationConfigPaths returns common locations to auto-discover curation config
func candidateCurationConfigPaths() []string {
	paths := []string{
		"curation.toml",
		filepath.Join("config", "curation.toml"),
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "commuterhythm", "curation.toml"))
	}

	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "commuterhythm", "curation.toml"))
	}

	return paths
}

// StartCurationConfigWatcher polls the curation config file at path, or the
// first well-known location when path is empty, and reloads it on change.
// If no file exists, the watcher is a no-op.
func StartCurationConfigWatcher(ctx context.Context, path string, interval time.Duration) {
	paths := []string{path}
	if path == "" {
		paths = candidateCurationConfigPaths()
	}

	var watchPath string
	var lastModTime time.Time
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			watchPath = p
			lastModTime = fi.ModTime()
			break
		}
	}
	if watchPath == "" {
		slog.Info("curation config watcher: no config file found; using defaults")
		return
	}

	slog.Info("curation config watcher: watching file", "path", watchPath)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("curation config watcher: stopped")
				return
			case <-ticker.C:
				fi, err := os.Stat(watchPath)
				if err != nil || fi.IsDir() {
					continue
				}
				if fi.ModTime().After(lastModTime) {
					fileCfg, err := loadCurationConfigFromPath(watchPath)
					if err != nil || fileCfg == nil {
						slog.Warn("curation config: reload failed", "path", watchPath, "error", err)
						continue
					}
					newCfg := DefaultCurationConfig()
					mergeCurationConfig(newCfg, fileCfg)
					setCurationConfig(newCfg)
					lastModTime = fi.ModTime()
					slog.Info("curation config reloaded", "path", watchPath, "mtime", lastModTime)
				}
			}
		}
	}()
}

func setCurationConfig(cfg *CurationConfig) {
	// Make sure the lazy loader cannot overwrite an explicit value later
	curationCfgOnce.Do(func() {})
	curationCfgMu.Lock()
	curationCfg = cfg
	curationCfgMu.Unlock()
}
