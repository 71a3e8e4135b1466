package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML content set of the form
//
//	word_cards:
//	  1:
//	    - "cat, dog, ..."
//	themes:
//	  - name: Animals
//	    words: [elephant, giraffe]
func LoadFile(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Dataset, error) {
	var dataset Dataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return Dataset{}, fmt.Errorf("failed to parse content: %w", err)
	}
	if len(dataset.WordCards) == 0 && len(dataset.Themes) == 0 {
		return Dataset{}, ErrNoContent
	}
	return dataset, nil
}
