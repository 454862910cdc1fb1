//go:build windows

package pathenv

// UserStore returns the user-scoped store for this platform. envFile is unused on Windows.
func UserStore(envFile string) Store {
	return NewRegistryStore()
}
