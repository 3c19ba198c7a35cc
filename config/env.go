// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR} and ${VAR:default} references in a raw
// config file, before it is unmarshaled.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:([^}]*))?\}`)

// SubstituteEnvVars replaces every ${VAR} or ${VAR:default} reference in
// raw with the named environment variable's value, falling back to the
// literal default text (or an empty string) when it is unset.
func SubstituteEnvVars(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, def := groups[1], groups[3]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return def
	})
}

// SubstituteEnvVarsInConfig round-trips cfg through YAML so the same
// ${VAR} substitution rule that applies to a freshly-read config file
// also applies to values set programmatically before the final load,
// such as a CLI flag overriding a single nested field.
func SubstituteEnvVarsInConfig(cfg *Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	substituted := SubstituteEnvVars(string(raw))
	*cfg = Config{}
	return yaml.Unmarshal([]byte(substituted), cfg)
}

const environmentVarName = "SDTP_ENV"

// GetEnvironment reports the deployment environment name, preferring
// SDTP_ENV and falling back to the generic ENVIRONMENT, then
// "development".
func GetEnvironment() string {
	if env := os.Getenv(environmentVarName); env != "" {
		return env
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}

// IsProduction reports whether GetEnvironment names a production-like
// environment.
func IsProduction() bool {
	env := strings.ToLower(GetEnvironment())
	return env == "production" || env == "prod"
}

// IsDevelopment reports whether GetEnvironment names a development
// environment.
func IsDevelopment() bool {
	env := strings.ToLower(GetEnvironment())
	return env == "development" || env == "dev"
}
