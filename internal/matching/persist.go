package matching

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Save writes the fitted pipeline to path so later processes can score
// without refitting. The artifact round-trips exactly: a loaded pipeline
// reproduces the scores of the saved one.
func (p *Pipeline) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating model file %q: %w", path, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(p); err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}

	return file.Sync()
}

// LoadPipeline reads a pipeline artifact written by Save.
func LoadPipeline(path string) (*Pipeline, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model file %q: %w", path, err)
	}
	defer file.Close()

	var pipeline Pipeline
	if err := gob.NewDecoder(file).Decode(&pipeline); err != nil {
		return nil, fmt.Errorf("decoding model file %q: %w", path, err)
	}

	if pipeline.Vectorizer == nil || pipeline.Classifier == nil {
		return nil, fmt.Errorf("model file %q is incomplete", path)
	}

	return &pipeline, nil
}
