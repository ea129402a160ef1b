package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	licensekit "github.com/licensekit/licensekit-go"
	"github.com/licensekit/licensekit-go/keys"
	"github.com/licensekit/licensekit-go/storage"
)

var (
	_ licensekit.Storage = (*storage.Memory)(nil)
	_ licensekit.Storage = (*storage.File)(nil)
)

func TestMemory(t *testing.T) {
	var m storage.Memory
	assert.False(t, m.Exists())
	_, ok := m.Load()
	assert.False(t, ok)

	data := []byte("LCSF")
	require.True(t, m.Save(data))
	data[0] = 'X'

	got, ok := m.Load()
	require.True(t, ok)
	assert.Equal(t, []byte("LCSF"), got)

	got[1] = 'X'
	again, _ := m.Load()
	assert.Equal(t, []byte("LCSF"), again)

	assert.True(t, m.Delete())
	assert.False(t, m.Exists())

	seeded := storage.NewMemory([]byte("abc"))
	assert.True(t, seeded.Exists())
	assert.False(t, storage.NewMemory(nil).Exists())
}

func TestFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := storage.NewFile(fs, "/var/lib/app/license.lic")

	assert.False(t, f.Exists())
	_, ok := f.Load()
	assert.False(t, ok)
	assert.True(t, f.Delete(), "deleting a missing file succeeds")

	require.True(t, f.Save([]byte("first")))
	require.True(t, f.Save([]byte("second")))
	assert.True(t, f.Exists())

	got, ok := f.Load()
	require.True(t, ok)
	assert.Equal(t, "second", string(got))

	info, err := fs.Stat("/var/lib/app/license.lic")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tmpExists, err := afero.Exists(fs, "/var/lib/app/license.lic.tmp")
	require.NoError(t, err)
	assert.False(t, tmpExists)

	assert.True(t, f.Delete())
	assert.False(t, f.Exists())
}

func TestFile_ReadOnlyFs(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/etc/app/license.lic", []byte("stored"), 0o600))

	logger, hook := logtest.NewNullLogger()
	f := storage.NewFile(afero.NewReadOnlyFs(base), "/etc/app/license.lic", storage.WithLogger(logger))

	got, ok := f.Load()
	require.True(t, ok)
	assert.Equal(t, "stored", string(got))

	assert.False(t, f.Save([]byte("new")))
	assert.False(t, f.Delete())
	assert.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, "/etc/app/license.lic", hook.LastEntry().Data["path"])
}

func TestDir(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)

	d, err := storage.DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".licensekit"), d.Path())

	empty, err := storage.NewDir("")
	require.NoError(t, err)
	assert.Equal(t, d.Path(), empty.Path())

	custom, err := storage.NewDir("/opt/licenses/")
	require.NoError(t, err)
	assert.Equal(t, "/opt/licenses", custom.Path())
	assert.Equal(t, "/opt/licenses/com.example.app.lic", custom.LicensePath("com.example.app"))
	assert.Equal(t, "/opt/licenses/license.lic", custom.LicensePath(".."))
	assert.False(t, strings.Contains(strings.TrimPrefix(custom.LicensePath("../../etc/passwd"), "/opt/licenses/"), "/"))

	fs := afero.NewMemMapFs()
	require.NoError(t, custom.Create(fs))
	ok, err := afero.DirExists(fs, "/opt/licenses")
	require.NoError(t, err)
	assert.True(t, ok)

	f := custom.File(fs, "com.example.app")
	require.True(t, f.Save([]byte("x")))
	assert.Equal(t, "/opt/licenses/com.example.app.lic", f.Path())
}

func TestFile_WithStore(t *testing.T) {
	pair, err := keys.DefaultGenerator().KeyPair(keys.KindEd25519, keys.Params{})
	require.NoError(t, err)
	defer pair.Dispose()

	iss, err := licensekit.NewIssuer(pair.Private)
	require.NoError(t, err)
	lic, err := iss.IssueLicense(licensekit.Claims{
		AppID:     "com.example.app",
		Type:      licensekit.TypePro,
		ExpiresAt: time.Now().AddDate(1, 0, 0),
	})
	require.NoError(t, err)

	v, err := licensekit.NewValidator(pair.Public)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	d, err := storage.NewDir("/srv/licensekit")
	require.NoError(t, err)
	store := licensekit.NewStore(d.File(fs, lic.AppID()), v)

	require.NoError(t, store.Save(lic))
	raw, err := afero.ReadFile(fs, "/srv/licensekit/com.example.app.lic")
	require.NoError(t, err)
	assert.Equal(t, "LCSF", string(raw[:4]))

	st := store.Load()
	require.Equal(t, licensekit.StateActive, st.State, "err: %v", st.Err)
	assert.Equal(t, lic.ID(), st.License.ID())
}
