package filelist_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mailguard/pkg/domainsource"
	"mailguard/pkg/domainsource/filelist"

	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestSource_Fetch(t *testing.T) {
	path := writeList(t, "domains.txt", "# local\nmailinator.com\n")
	set, err := filelist.New(path, domainsource.FormatText).Fetch(context.Background())
	require.NoError(t, err)
	require.True(t, set.Contains("mailinator.com"))
}

func TestSource_Missing(t *testing.T) {
	_, err := filelist.New(filepath.Join(t.TempDir(), "nope.txt"), "").Fetch(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSource_Empty(t *testing.T) {
	path := writeList(t, "domains.json", "[]")
	_, err := filelist.New(path, domainsource.FormatAuto).Fetch(context.Background())
	require.ErrorIs(t, err, domainsource.ErrEmptyList)
}

func TestSource_Cancelled(t *testing.T) {
	path := writeList(t, "domains.txt", "a.com\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := filelist.New(path, "").Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
