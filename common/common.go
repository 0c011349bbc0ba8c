package common

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// marshal data structure to JSON
func ToJSON(x interface{}) []byte {
	bytes, err := json.MarshalIndent(x, "", "\t")
	if err != nil {
		log.Fatalf("[common] error marshaling %T to JSON: %v", x, err)
	}
	return bytes
}

// decode file into data structure; YAML for .yaml/.yml, JSON otherwise
func ReadFile(path string, x interface{}) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, x)
	default:
		err = json.Unmarshal(bytes, x)
	}
	if err != nil {
		return fmt.Errorf("decoding %s into %T: %w", path, x, err)
	}
	return nil
}

// read file, unmarshal into data structure (fatal on error)
func FromFile(path string, x interface{}) {
	if err := ReadFile(path, x); err != nil {
		log.Fatalf("[common] %v", err)
	}
}

// marshal data structure to JSON, write to file
func ToFile(path string, x interface{}) {
	bytes := ToJSON(x)

	// write byte array to file
	if err := os.WriteFile(path, bytes, 0644); err != nil {
		log.Fatalf("[common] error writing struct %T to file: %v", x, err)
	}
}

// get min/max of []float64 slice
func GetMinMax(x []float64) (float64, float64) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, a := range x {
		if a > max {
			max = a
		}
		if a < min {
			min = a
		}
	}
	return min, max
}

// create CSV writer; caller closes the file after flushing
func CreateCSVWriter(path string) (*csv.Writer, *os.File, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating CSV writer: %w", err)
	}

	return csv.NewWriter(file), file, nil
}
