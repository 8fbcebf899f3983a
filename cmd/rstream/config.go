package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/franz/rstream/internal/store"
	"github.com/franz/rstream/internal/util"
)

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (RSTREAM_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val == 0 {
		return defaultValue
	}
	return val
}

// GetConfigBool retrieves a bool config value
func GetConfigBool(key string) bool {
	return viper.GetBool(key)
}

// GetConfigStringSlice retrieves a string slice config value
func GetConfigStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

// GetConfigPath retrieves a path config value with ~ expanded
func GetConfigPath(key string, defaultValue string) (string, error) {
	return util.ExpandPath(GetConfigString(key, defaultValue))
}

// bindFlags binds a command's local flags to viper so that config file and
// environment values fill whatever was not given on the command line.
func bindFlags(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

// applyLogging sets the log level from --log-level, --verbose and --quiet
func applyLogging(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, args); err != nil {
		return err
	}

	if err := util.SetLogLevelFromString(GetConfigString("log-level", "info")); err != nil {
		return err
	}
	if GetConfigBool("verbose") {
		util.SetVerbose(true)
	}
	if GetConfigBool("quiet") {
		util.SetQuiet(true)
	}
	if GetConfigBool("no-color") {
		util.SetColors(false)
	}
	return nil
}

// openStore opens the configured database, tracing SQL at debug level
func openStore() (*store.Store, error) {
	dbPath, err := GetConfigPath("db", "rstream.db")
	if err != nil {
		return nil, err
	}

	util.DebugLog("Opening database: %s", dbPath)
	st, err := store.OpenWithOptions(dbPath, &store.OpenOptions{TraceSQL: util.IsDebug()})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}
