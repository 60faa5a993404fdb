package config

import (
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	pipelineOnce   sync.Once
	pipelineConfig *PipelineConfig
)

// PipelineConfig holds the tunables of the PDF analysis pipeline. Defaults
// reproduce the catalog's historical behavior; a pipeline.yaml next to the
// binary can override them.
type PipelineConfig struct {
	PageZoom       float64  `yaml:"pageZoom"`
	CoverZoom      float64  `yaml:"coverZoom"`
	MaxKeywords    int      `yaml:"maxKeywords"`
	EnableOCR      bool     `yaml:"enableOCR"`
	OCRLanguages   []string `yaml:"ocrLanguages"`
	ExtraStopwords []string `yaml:"extraStopwords"`
}

func defaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		PageZoom:     2.0,
		CoverZoom:    1.5,
		MaxKeywords:  10,
		EnableOCR:    false,
		OCRLanguages: []string{"eng", "ind"},
	}
}

func GetPipelineConfig() *PipelineConfig {
	pipelineOnce.Do(func() {
		pipelineConfig = defaultPipelineConfig()

		_, filename, _, _ := runtime.Caller(0)
		configDir := filepath.Dir(filename)
		rootDir := filepath.Dir(configDir)

		yamlPath := os.Getenv("PIPELINE_CONFIG")
		if yamlPath == "" {
			yamlPath = filepath.Join(rootDir, "pipeline.yaml")
		}

		data, err := os.ReadFile(yamlPath)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Printf("Warning: can't read pipeline config at %s: %v", yamlPath, err)
			}
			return
		}

		if err := yaml.Unmarshal(data, pipelineConfig); err != nil {
			log.Printf("Warning: invalid pipeline config at %s, using defaults: %v", yamlPath, err)
			pipelineConfig = defaultPipelineConfig()
		}
	})
	return pipelineConfig
}
