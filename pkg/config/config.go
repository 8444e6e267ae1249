// Package config provides configuration loading and management for the
// fsinfo tool. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Topology parameters for the demo pipeline
	Topology struct {
		// SmoothingIterations is the number of nearest-neighbor smoothing
		// iterations applied to per-vertex data
		SmoothingIterations int `yaml:"smoothingIterations"`

		// AdjacencyViaMatrix selects the dense-matrix adjacency path.
		// The matrix is faster on modest meshes but costs O(n^2) memory;
		// disable it for very large surfaces to use the edge-set path.
		AdjacencyViaMatrix bool `yaml:"adjacencyViaMatrix"`

		// NeighborhoodHops is the k used for k-hop neighborhood expansion
		NeighborhoodHops int `yaml:"neighborhoodHops"`
	} `yaml:"topology"`

	// Output parameters
	Output struct {
		// MeshFormat is the export format used when converting surfaces
		// (one of "obj", "ply", "off")
		MeshFormat string `yaml:"meshFormat"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default topology parameters
	cfg.Topology.SmoothingIterations = 2
	cfg.Topology.AdjacencyViaMatrix = true
	cfg.Topology.NeighborhoodHops = 1

	// Set default output parameters
	cfg.Output.MeshFormat = "ply"
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
