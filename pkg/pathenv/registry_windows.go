//go:build windows

package pathenv

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const userEnvironmentKey = `Environment`

// RegistryStore reads and writes HKCU\Environment.
type RegistryStore struct{}

func NewRegistryStore() *RegistryStore { return &RegistryStore{} }

func (RegistryStore) Get(name string) (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, userEnvironmentKey, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open HKCU\\%s: %w", userEnvironmentKey, err)
	}
	defer k.Close()

	v, _, err := k.GetStringValue(name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read HKCU\\%s\\%s: %w", userEnvironmentKey, name, err)
	}
	return v, nil
}

// Set keeps the existing value type, so REG_EXPAND_SZ entries like %USERPROFILE% keep expanding.
func (RegistryStore) Set(name, value string) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, userEnvironmentKey, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open HKCU\\%s: %w", userEnvironmentKey, err)
	}
	defer k.Close()

	_, valType, err := k.GetStringValue(name)
	if err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("read HKCU\\%s\\%s: %w", userEnvironmentKey, name, err)
	}
	if valType == registry.EXPAND_SZ {
		err = k.SetExpandStringValue(name, value)
	} else {
		err = k.SetStringValue(name, value)
	}
	if err != nil {
		return fmt.Errorf("write HKCU\\%s\\%s: %w", userEnvironmentKey, name, err)
	}
	return nil
}
