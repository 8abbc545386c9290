package cli

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/tingshu-cli/tingshu/internal/llm"
)

// initConfig loads the optional ~/.tingshu.yaml config file and TINGSHU_*
// environment variables. Flags still win over both.
func initConfig() {
	viper.SetConfigName(".tingshu")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("TINGSHU")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debugw("Loaded config file", "path", viper.ConfigFileUsed())
	}
}

// resolveAPIKey picks an API key: flag value, then config
// (api_keys.<provider>), then the provider's conventional env var.
func resolveAPIKey(provider llm.Provider, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if key := viper.GetString("api_keys." + string(provider)); key != "" {
		return key
	}
	return os.Getenv(provider.EnvVar())
}

// configString returns a config default for a flag left at its zero value.
func configString(flagValue, configKey string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString(configKey)
}
