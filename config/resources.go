package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/turncore/logger"
)

// ActiveResources lists the campaign and add-on modules loaded on top of
// the base module.
type ActiveResources struct {
	Campaign string   `yaml:"campaign,omitempty"`
	Mods     []string `yaml:"mods,omitempty"`
}

// ReadActiveResources reads the resource list at path. A missing or
// malformed file yields an empty list.
func ReadActiveResources(path string) ActiveResources {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Log.WithField("path", path).Info("Active resources file not found")
		return ActiveResources{}
	}
	var ar ActiveResources
	if err := yaml.Unmarshal(data, &ar); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"path":  path,
			"error": err,
		}).Warn("Error reading active resources file")
		return ActiveResources{}
	}
	return ar
}

// Write stores the list at path.
func (ar ActiveResources) Write(path string) error {
	data, err := yaml.Marshal(ar)
	if err != nil {
		return fmt.Errorf("encoding active resources: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("writing active resources: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing active resources: %w", err)
	}
	return nil
}

// Directories returns the module directories to load in order: base, then
// the campaign, then each mod.
func (ar ActiveResources) Directories(base string) []string {
	dirs := []string{base}
	if ar.Campaign != "" {
		dirs = append(dirs, ar.Campaign)
	}
	return append(dirs, ar.Mods...)
}
