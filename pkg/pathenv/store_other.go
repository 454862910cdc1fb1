//go:build !windows

package pathenv

// UserStore returns the user-scoped store for this platform.
func UserStore(envFile string) Store {
	return NewEnvFileStore(envFile)
}
