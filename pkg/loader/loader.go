package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/braunma/netans-reconciler/internal/constants"
	"github.com/braunma/netans-reconciler/pkg/inventory"
	"github.com/braunma/netans-reconciler/pkg/models"
	"github.com/braunma/netans-reconciler/pkg/utils"
)

// DataLoader reads switch inventory files and host framework descriptors
type DataLoader struct {
	basePath string
	logger   *utils.Logger
}

// NewDataLoader creates a new data loader. Relative paths are resolved against basePath.
func NewDataLoader(basePath string, logger *utils.Logger) *DataLoader {
	return &DataLoader{
		basePath: basePath,
		logger:   logger,
	}
}

// LoadInventory parses every file and builds one inventory snapshot.
// A file that cannot be parsed is logged and contributes no hosts.
func (dl *DataLoader) LoadInventory(paths ...string) *inventory.Inventory {
	var entries []inventory.Entry

	for _, path := range paths {
		fileEntries, err := dl.ParseInventoryFile(path)
		if err != nil {
			dl.logger.Error("Failed to load inventory", err)
			continue
		}
		dl.logger.Debug("Loaded %d hosts from %s", len(fileEntries), path)
		entries = append(entries, fileEntries...)
	}

	inv := inventory.New(entries, dl.logger)
	if inv.Len() == 0 {
		dl.logger.Warning("Inventory is empty, no switches will be managed")
	} else {
		dl.logger.Info("Ansible host list: %s", strings.Join(inv.Hosts(), ", "))
	}
	return inv
}

// ParseInventoryFile reads the [ansible:<host>] sections of one ini file
func (dl *DataLoader) ParseInventoryFile(path string) ([]inventory.Entry, error) {
	path = dl.resolve(path)

	// only whole lines are comments; values such as passwords may contain # or ;
	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowShadows:        true,
		IgnoreInlineComment: true,
	}, path)
	if err != nil {
		return nil, &inventory.ParseError{Source: path, Err: err}
	}

	var entries []inventory.Entry
	for _, section := range cfg.Sections() {
		host, ok := strings.CutPrefix(section.Name(), constants.InventorySectionPrefix)
		if !ok || host == "" {
			continue
		}

		entry := inventory.NewEntry(host)
		entry.Attributes = make(map[string]string)

		for _, key := range section.Keys() {
			value := firstValue(key)

			switch key.Name() {
			case constants.KeyManageVLANs:
				b, err := parseBool(value)
				if err != nil {
					return nil, &inventory.ParseError{
						Source: path,
						Err:    fmt.Errorf("section %s: %w", section.Name(), err),
					}
				}
				entry.ManageVLANs = b
			case constants.KeyMAC:
				entry.MAC = value
			default:
				entry.Attributes[key.Name()] = value
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// FindConfigFiles recursively finds inventory files in a directory
func (dl *DataLoader) FindConfigFiles(dir string) ([]string, error) {
	dir = dl.resolve(dir)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dl.logger.Warning("Folder %s not found, skipping", dir)
		return nil, nil
	}

	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && utils.Contains(constants.ConfigFileExtensions, filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find config files in %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

// LoadNetwork loads a network descriptor from a YAML file
func (dl *DataLoader) LoadNetwork(path string) (*models.Network, error) {
	var network models.Network
	if err := dl.loadFile(path, &network); err != nil {
		return nil, err
	}
	if network.ID == "" {
		return nil, fmt.Errorf("network in %s has no id", path)
	}
	return &network, nil
}

// LoadPort loads a port descriptor from a YAML file
func (dl *DataLoader) LoadPort(path string) (*models.Port, error) {
	var port models.Port
	if err := dl.loadFile(path, &port); err != nil {
		return nil, err
	}
	if port.ID == "" {
		return nil, fmt.Errorf("port in %s has no id", path)
	}
	return &port, nil
}

// loadFile loads a single YAML document into target
func (dl *DataLoader) loadFile(path string, target interface{}) error {
	content, err := os.ReadFile(dl.resolve(path))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, target); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

func (dl *DataLoader) resolve(path string) string {
	if dl.basePath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dl.basePath, path)
}

// firstValue returns the first value of a key that may be repeated
func firstValue(key *ini.Key) string {
	values := key.ValueWithShadows()
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q for %s", value, constants.KeyManageVLANs)
}
