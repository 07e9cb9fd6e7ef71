package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ChecksumManifest is the integrity sidecar written by `config lock`.
// The config file hash is pinned so an edited config is refused until the
// operator re-locks it.
type ChecksumManifest struct {
	Version     int    `yaml:"version"`
	GeneratedAt string `yaml:"generated_at"`
	Hash        string `yaml:"hash"`
}

const manifestVersion = 1

// sidecarPath returns the .checksums path for a config file.
func sidecarPath(configPath string) string {
	return configPath + ".checksums"
}

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// Lock writes the integrity sidecar for configPath, authorizing its
// current content.
func Lock(configPath string) error {
	hash, err := ComputeBlake3Hash(configPath)
	if err != nil {
		return fmt.Errorf("failed to hash config: %w", err)
	}

	manifest := ChecksumManifest{
		Version:     manifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Hash:        hash,
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal checksums: %w", err)
	}

	// Restrictive permissions: the sidecar is the integrity anchor.
	if err := os.WriteFile(sidecarPath(configPath), data, 0600); err != nil {
		return fmt.Errorf("failed to write checksums: %w", err)
	}

	return nil
}

// VerifyIfLocked checks configPath against its sidecar. A missing sidecar
// is not an error (integrity checking is opt-in); a mismatching one is.
func VerifyIfLocked(configPath string) error {
	data, err := os.ReadFile(sidecarPath(configPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read checksums: %w", err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse checksums: %w", err)
	}

	if manifest.Version != manifestVersion {
		return fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}

	actual, err := ComputeBlake3Hash(configPath)
	if err != nil {
		return fmt.Errorf("failed to compute hash: %w", err)
	}

	if actual != manifest.Hash {
		return fmt.Errorf("config hash mismatch: expected %s, got %s\n"+
			"This indicates tampering or unauthorized modification.\n"+
			"If you edited the config intentionally, run: chatwire config lock", manifest.Hash, actual)
	}

	return nil
}
