// Copyright (c) Qualcomm Technologies, Inc. and/or its subsidiaries.
// SPDX-License-Identifier: BSD-3-Clause-Clear

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := LoadConfig()
	assert.NotNil(t, err, "missing config must error")

	cfg := &Config{
		ActiveContext: "lab",
		Contexts: map[string]Context{
			"lab":  {URL: "https://lab.example.com", Token: "secret", CSRFToken: "csrf"},
			"prod": {URL: "https://prod.example.com", Token: "other"},
		},
	}
	require.Nil(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.Nil(t, err)
	assert.Equal(t, "lab", loaded.ActiveContext)
	assert.Equal(t, cfg.Contexts, loaded.Contexts)
}

func TestGetContext(t *testing.T) {
	cfg := &Config{
		ActiveContext: "lab",
		Contexts: map[string]Context{
			"lab":    {URL: "https://lab.example.com", Token: "secret"},
			"broken": {Token: "no-url"},
		},
	}

	ctx, err := cfg.GetContext("")
	require.Nil(t, err)
	assert.Equal(t, "https://lab.example.com", ctx.URL)

	ctx, err = cfg.GetContext("lab")
	require.Nil(t, err)
	assert.Equal(t, "secret", ctx.Token)

	_, err = cfg.GetContext("nope")
	assert.ErrorContains(t, err, "not found")

	_, err = cfg.GetContext("broken")
	assert.ErrorContains(t, err, "no URL")

	empty := &Config{}
	_, err = empty.GetContext("")
	assert.ErrorContains(t, err, "no default context")
}

func TestConfigFilePermissions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Nil(t, SaveConfig(&Config{
		Contexts: map[string]Context{"x": {URL: "https://x", Token: "t"}},
	}))

	// Tokens live in this file; it must not be world-readable
	info, err := os.Stat(filepath.Join(home, ".config", "fwmon.yaml"))
	require.Nil(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
