// SPDX-License-Identifier: ice License 1.0

package config

import (
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

//nolint:gochecknoinits // Configs are loaded once, for the whole runtime.
func init() {
	mustReadFirstConfigFile()
	dotEnvPath := `.env`
	for i := 0; i < 5; i++ {
		if err := godotenv.Load(dotEnvPath); err == nil {
			break
		}
		dotEnvPath = filepath.Join(`..`, dotEnvPath)
	}
}

// MustLoadFromKey unmarshalls the subtree under key of the application.yaml
// discovered at startup into cfg, panicking on any mismatch.
func MustLoadFromKey(key string, cfg any) {
	if err := viper.UnmarshalKey(key, cfg); err != nil {
		log.Panic(errors.Wrapf(err, "failed to load config by key %q", key))
	}
}

func mustReadFirstConfigFile() {
	for _, file := range configFileCandidates() {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err == nil {
			return
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Panic(errors.Wrapf(err, "failed to read config file %q", file))
		}
	}

	log.Panic(errors.New("could not find any application.yaml files"))
}

// configFileCandidates looks for application.yaml next to the working directory
// (test data first), the binary, and the repository root, in that order.
func configFileCandidates() []string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Join(wd, ".testdata"), wd)
	}
	if bin, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(bin))
	}
	if _, callerFile, _, ok := runtime.Caller(0); ok {
		root := filepath.Dir(filepath.Dir(callerFile))
		dirs = append(dirs, root, filepath.Dir(root))
	}
	candidates := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		candidates = append(candidates, filepath.Join(dir, "application.yaml"))
	}

	return candidates
}
