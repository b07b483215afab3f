package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutputDirReady(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, outputDirReady(dir)())

	require.Error(t, outputDirReady(filepath.Join(dir, "missing"))())

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	require.Error(t, outputDirReady(file)())
}
