package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Validate returns configuration problems found in cfg.
// It does not mutate cfg.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{fmt.Errorf("config is nil")}
	}

	var errs []error

	install := strings.TrimSpace(cfg.InstallDir)
	data := strings.TrimSpace(cfg.DataDir)
	if install == "" {
		errs = append(errs, fmt.Errorf("install_dir must not be empty"))
	}
	if data == "" {
		errs = append(errs, fmt.Errorf("data_dir must not be empty"))
	}
	if install != "" && data != "" {
		if within(install, data) || within(data, install) {
			errs = append(errs, fmt.Errorf("install_dir and data_dir must be distinct, non-nested directories"))
		}
	}
	if install != "" && isRoot(install) {
		errs = append(errs, fmt.Errorf("install_dir must not be a filesystem root"))
	}

	if len(cfg.Shutdown.ProcessNames) == 0 {
		errs = append(errs, fmt.Errorf("shutdown.process_names must contain at least one name"))
	}
	errs = append(errs, validateNonEmptyStringList("shutdown.process_names", cfg.Shutdown.ProcessNames)...)
	if cfg.Shutdown.StopTimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("shutdown.stop_timeout_ms must be >= 0"))
	}
	if cfg.Shutdown.GracePeriodMS < 0 {
		errs = append(errs, fmt.Errorf("shutdown.grace_period_ms must be >= 0"))
	}

	if strings.TrimSpace(cfg.Environment.PathVar) == "" {
		errs = append(errs, fmt.Errorf("environment.path_var must not be empty"))
	}
	if cfg.Data.PromptTimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("data.prompt_timeout_ms must be >= 0"))
	}
	if cfg.Logging.MaxSizeMB < 0 {
		errs = append(errs, fmt.Errorf("logging.max_size_mb must be >= 0"))
	}

	return errs
}

func validateNonEmptyStringList(path string, values []string) []error {
	var errs []error
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("%s[%d] must not be empty", path, i))
		}
	}
	return errs
}

// within reports whether child equals parent or lives below it.
func within(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func isRoot(p string) bool {
	clean := filepath.Clean(p)
	return filepath.Dir(clean) == clean
}
