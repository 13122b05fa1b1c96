package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/athapong/ldbc-dense/pkg/graph"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// DictionaryFile is the name of the sparse to dense dictionary of a run
const DictionaryFile = "dic.json"

// JSONDictionaryStore implements graph.DictionaryStore using a JSON file
type JSONDictionaryStore struct {
	filePath string
}

// NewJSONDictionaryStore creates a new JSON dictionary store
func NewJSONDictionaryStore(filePath string) *JSONDictionaryStore {
	return &JSONDictionaryStore{
		filePath: filePath,
	}
}

// Path returns the file the store reads and writes
func (s *JSONDictionaryStore) Path() string {
	return s.filePath
}

// StoreDictionary writes the dictionary as one JSON object
func (s *JSONDictionaryStore) StoreDictionary(ctx context.Context, dict map[string]graph.DenseID) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	data, err := json.Marshal(dict)
	if err != nil {
		return errors.Wrap(err, "encode dictionary")
	}

	return errors.Wrapf(os.WriteFile(s.filePath, data, 0644), "write %s", s.filePath)
}

// LoadDictionary reads a dictionary written by StoreDictionary
func (s *JSONDictionaryStore) LoadDictionary(ctx context.Context) (map[string]graph.DenseID, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.filePath)
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.Errorf("%s is not valid JSON", s.filePath)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.Errorf("%s does not hold a JSON object", s.filePath)
	}

	dict := make(map[string]graph.DenseID)
	var decodeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			decodeErr = errors.Errorf("%s: value of %q is not a number", s.filePath, key.String())
			return false
		}
		dict[key.String()] = graph.DenseID(value.Uint())
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return dict, nil
}

// ReserveDictionary seeds registry with the dense ids of a stored dictionary
// so hash mode never hands them out again.
func ReserveDictionary(ctx context.Context, store graph.DictionaryStore, registry *graph.Registry) (int, error) {
	dict, err := store.LoadDictionary(ctx)
	if err != nil {
		return 0, err
	}
	ids := make([]graph.DenseID, 0, len(dict))
	for _, id := range dict {
		ids = append(ids, id)
	}
	registry.Reserve(ids...)
	return len(ids), nil
}
