package util

import (
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// UseTransaction returns whether a scan wraps the whole walk in one transaction.
// It can be disabled with --no-transaction for finer-grained durability.
func UseTransaction() bool {
	return !viper.GetBool("no-transaction")
}

// ExpandPath resolves a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return expanded, nil
}
