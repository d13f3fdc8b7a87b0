// Package model provides persistent bot state: role presets and server locks
package model

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultPresetColor is assigned to roles of saved presets
const DefaultPresetColor = "#FFFFFF"

// ErrPresetNotFound is returned when preset with given name does not exist
var ErrPresetNotFound = errors.New("preset not found")

var presetJSON = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

var (
	lowerCaser = cases.Lower(language.Und)
	upperCaser = cases.Upper(language.Und)
)

// PresetRole describes a single role of preset
type PresetRole struct {
	Name        string `json:"name"`
	Permissions int64  `json:"permissions"`
	Color       string `json:"color"`
}

// ColorValue returns role color as 24-bit RGB value, empty color is white
func (role *PresetRole) ColorValue() (int, error) {
	s := strings.TrimSpace(role.Color)
	if s == "" {
		s = DefaultPresetColor
	}

	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", role.Color, err)
	}

	r, g, b := c.RGB255()

	return int(r)<<16 | int(g)<<8 | int(b), nil
}

// Presets maps normalized preset name to its roles, highest first
type Presets map[string][]PresetRole

// Names returns sorted preset names
func (presets Presets) Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// PresetName normalizes preset name for storage and lookup
func PresetName(name string) string {
	return lowerCaser.String(strings.TrimSpace(name))
}

// DisplayName renders preset name for replies
func DisplayName(name string) string {
	return upperCaser.String(name)
}

// ParseRoleNames splits comma or newline separated list, dropping empty entries
func ParseRoleNames(raw string) []string {
	var names []string

	for _, line := range strings.Split(strings.ReplaceAll(raw, ",", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}

	return names
}

// PresetStore keeps presets in a flat JSON file
type PresetStore struct {
	Path string
	Log  logrus.FieldLogger
	m    sync.Mutex
}

// NewPresetStore provides store backed by file at path
func NewPresetStore(path string, log logrus.FieldLogger) *PresetStore {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &PresetStore{
		Path: path,
		Log:  log,
	}
}

// Load reads all presets, missing, empty or malformed file yields no presets
func (store *PresetStore) Load() (Presets, error) {
	store.m.Lock()
	defer store.m.Unlock()

	return store.load()
}

func (store *PresetStore) load() (Presets, error) {
	presets := make(Presets)

	bs, err := os.ReadFile(store.Path)

	switch {
	case os.IsNotExist(err):
		return presets, nil
	case err != nil:
		return nil, err
	case len(strings.TrimSpace(string(bs))) == 0:
		return presets, nil
	}

	var raw Presets

	err = presetJSON.Unmarshal(bs, &raw)
	if err != nil {
		store.Log.WithError(err).WithField("path", store.Path).Warn("Ignoring malformed presets file")

		return presets, nil
	}

	for name, roles := range raw {
		presets[PresetName(name)] = roles
	}

	return presets, nil
}

// Save overwrites presets file
func (store *PresetStore) Save(presets Presets) error {
	store.m.Lock()
	defer store.m.Unlock()

	return store.save(presets)
}

func (store *PresetStore) save(presets Presets) error {
	if presets == nil {
		presets = make(Presets)
	}

	bs, err := presetJSON.MarshalIndent(presets, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(store.Path, append(bs, '\n'), 0o644)
}

// Get returns roles of named preset
func (store *PresetStore) Get(name string) ([]PresetRole, error) {
	presets, err := store.Load()
	if err != nil {
		return nil, err
	}

	roles, ok := presets[PresetName(name)]
	if !ok || len(roles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, DisplayName(PresetName(name)))
	}

	return roles, nil
}

// Put stores roles under preset name replacing existing preset
func (store *PresetStore) Put(name string, roles []PresetRole) error {
	store.m.Lock()
	defer store.m.Unlock()

	presets, err := store.load()
	if err != nil {
		return err
	}

	presets[PresetName(name)] = roles

	return store.save(presets)
}
