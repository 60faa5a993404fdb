package config

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
)

var (
	mediaOnce   sync.Once
	mediaConfig *MediaConfig
)

// MediaConfig locates the media root that page images and covers are written
// under. Presentation code reads the same tree by relative path.
type MediaConfig struct {
	Root       string
	ImagesDir  string
	CoversDir  string
	ScratchDir string
}

func GetMediaConfig() *MediaConfig {
	mediaOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		configDir := filepath.Dir(filename)

		rootDir := filepath.Dir(configDir)
		envPath := filepath.Join(rootDir, ".env")

		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: .env file not found at %s, falling back to environment variables", envPath)
		}

		root := os.Getenv("MEDIA_ROOT")
		if root == "" {
			root = filepath.Join(rootDir, "media")
		}
		scratch := os.Getenv("SCRATCH_DIR")
		if scratch == "" {
			scratch = os.TempDir()
		}

		mediaConfig = &MediaConfig{
			Root:       root,
			ImagesDir:  "book_images",
			CoversDir:  "covers",
			ScratchDir: scratch,
		}
	})
	return mediaConfig
}
