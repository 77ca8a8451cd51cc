package audio

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type presetMetaJSON struct {
	Name string `json:"name"`
}
type presetMetaListJSON struct {
	Items []presetMetaJSON `json:"items"`
}
type presetMeta struct {
	name string
}
type presetManager struct {
	dir  string
	list []*presetMeta
}

func newPresetManager(dir string) *presetManager {
	return &presetManager{
		dir: dir,
	}
}

func (pm *presetManager) getList() ([]*presetMeta, error) {
	if pm.list == nil {
		if err := pm.loadList(); err != nil {
			return nil, err
		}
	}
	return pm.list, nil
}

// load returns the raw params JSON of one preset.
func (pm *presetManager) load(name string) (json.RawMessage, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, errors.New("invalid preset name")
	}
	bytes, err := os.ReadFile(filepath.Join(pm.dir, name+".json"))
	if err != nil {
		return nil, err
	}
	if !json.Valid(bytes) {
		return nil, errors.New("broken preset file")
	}
	return json.RawMessage(bytes), nil
}

func (pm *presetManager) loadList() error {
	bytes, err := os.ReadFile(filepath.Join(pm.dir, "_list.json"))
	if err != nil {
		return err
	}
	var metaListJSON presetMetaListJSON
	if err := json.Unmarshal(bytes, &metaListJSON); err != nil {
		return err
	}
	pm.list = make([]*presetMeta, len(metaListJSON.Items))
	for i, item := range metaListJSON.Items {
		pm.list[i] = &presetMeta{name: item.Name}
	}
	return nil
}
