package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckChrome_Configured(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho Chromium 120\n"), 0755))

	found, path := CheckChrome(bin)
	assert.True(t, found)
	assert.Equal(t, bin, path)
}

func TestValidateSystemRequirements_Configured(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho Chromium 120\n"), 0755))

	var out bytes.Buffer
	path, err := ValidateSystemRequirements(&out, bin)
	require.NoError(t, err)
	assert.Equal(t, bin, path)
	assert.Contains(t, out.String(), "Chrome/Chromium found at: "+bin)
}

func TestChromeInstallationInstructions(t *testing.T) {
	var out bytes.Buffer
	ChromeInstallationInstructions(&out, "plan9")
	assert.Contains(t, out.String(), "Please install Chrome or Chromium for your OS.")
	assert.Contains(t, out.String(), "CHROME_PATH")
}
