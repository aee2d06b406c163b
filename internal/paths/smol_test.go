package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDataDir_AppendsSmol(t *testing.T) {
	dir := t.TempDir()
	require.Equal(t, filepath.Join(dir, ".smol"), ResolveDataDir(dir))
}

func TestResolveDataDir_AlreadySmol(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".smol")
	require.Equal(t, dir, ResolveDataDir(dir))
}

func TestResolveDataDir_DirectDataDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "market.db"), nil, 0o600))
	require.Equal(t, dir, ResolveDataDir(dir))
}

func TestResolveDataDir_FollowsRedirect(t *testing.T) {
	root := t.TempDir()
	smolDir := filepath.Join(root, ".smol")
	require.NoError(t, os.MkdirAll(smolDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(smolDir, "redirect"), []byte("../shared/.smol\n"), 0o600))

	require.Equal(t, filepath.Join(root, "shared", ".smol"), ResolveDataDir(root))
}

func TestResolveDataDir_EmptyRedirectIgnored(t *testing.T) {
	root := t.TempDir()
	smolDir := filepath.Join(root, ".smol")
	require.NoError(t, os.MkdirAll(smolDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(smolDir, "redirect"), []byte("  \n"), 0o600))

	require.Equal(t, smolDir, ResolveDataDir(root))
}

func TestDataDirFiles(t *testing.T) {
	require.Equal(t, "/x/.smol/market.db", DBPath("/x/.smol"))
	require.Equal(t, "/x/.smol/debug.log", LogPath("/x/.smol"))
	require.Equal(t, "/x/.smol/config.yaml", ConfigPath("/x/.smol"))
}
