// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// updateLogSettingsInTOML rewrites the four log-related keys in content in
// place, uncommenting them if necessary, without disturbing anything else
// in the file (its comments, ordering, or later sections). A key absent
// from content entirely is inserted just before the first top-level
// section header, or appended at the end if there is none.
func updateLogSettingsInTOML(content, logLevel, logPath string, logMaxSize, logMaxBackups int) string {
	content = setTOMLKey(content, "logPath", fmt.Sprintf("%q", logPath))
	content = setTOMLKey(content, "logMaxSize", strconv.Itoa(logMaxSize))
	content = setTOMLKey(content, "logMaxBackups", strconv.Itoa(logMaxBackups))
	content = setTOMLKey(content, "logLevel", fmt.Sprintf("%q", logLevel))
	return content
}

var sectionHeaderRE = regexp.MustCompile(`(?m)^\[`)

func setTOMLKey(content, key, value string) string {
	line := key + " = " + value
	re := regexp.MustCompile(`(?m)^[ \t]*#?[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*=.*$`)
	if re.MatchString(content) {
		return re.ReplaceAllString(content, line)
	}

	loc := sectionHeaderRE.FindStringIndex(content)
	if loc == nil {
		return strings.TrimRight(content, "\n") + "\n" + line + "\n"
	}
	return content[:loc[0]] + line + "\n" + content[loc[0]:]
}

// SaveLogSettings rewrites the config file at c's path with updated log
// settings, preserving every other line verbatim.
func (c *Config) SaveLogSettings(logLevel, logPath string, logMaxSize, logMaxBackups int) error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", c.path, err)
	}
	updated := updateLogSettingsInTOML(string(raw), logLevel, logPath, logMaxSize, logMaxBackups)
	if err := os.WriteFile(c.path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("config: writing %s: %w", c.path, err)
	}
	c.LogLevel, c.LogPath, c.LogMaxSize, c.LogMaxBackups = logLevel, logPath, logMaxSize, logMaxBackups
	return nil
}
