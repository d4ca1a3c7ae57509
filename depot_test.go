package depot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	store, err := New(Config{RootDir: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		store, err := New(Config{RootDir: root})
		require.NoError(t, err)
		require.NotNil(t, store)
		require.Equal(t, root, store.Root())
		require.Equal(t, "static", store.staticPrefix)
	})

	t.Run("creates missing root", func(t *testing.T) {
		t.Parallel()
		root := filepath.Join(t.TempDir(), "nested", "storage")
		_, err := New(Config{RootDir: root})
		require.NoError(t, err)
		require.DirExists(t, root)
	})

	t.Run("missing root dir", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{})
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, store)
	})

	t.Run("prefix and base url normalized", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{
			RootDir:       t.TempDir(),
			StaticPrefix:  "/files/",
			PublicBaseURL: "https://cdn.example.com/",
		})
		require.NoError(t, err)
		require.Equal(t, "files", store.staticPrefix)
		require.Equal(t, "https://cdn.example.com", store.publicBaseURL)
	})
}

func TestStorage_Save(t *testing.T) {
	t.Parallel()

	t.Run("flat save", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		f, err := store.Save(t.Context(), "c1", "report.pdf", strings.NewReader("hello"))
		require.NoError(t, err)

		require.Equal(t, "report.pdf", f.OriginalName)
		require.Equal(t, int64(5), f.SizeBytes)
		require.Equal(t, "application/pdf", f.MIMEType)
		require.Equal(t, f.StoredName, f.RelativePath)
		require.Equal(t, "/static/c1/"+f.StoredName, f.DownloadURL)
		require.Equal(t, f.DownloadURL, f.PublicURL)
		require.False(t, f.UploadedAt.IsZero())

		require.FileExists(t, filepath.Join(store.Root(), "c1", f.StoredName))
	})

	t.Run("save with owner", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		f, err := store.Save(t.Context(), "c1", "report.pdf", strings.NewReader("hello"), WithOwner("u42"))
		require.NoError(t, err)

		require.Equal(t, "u42/"+f.StoredName, f.RelativePath)
		require.Equal(t, "/static/c1/u42/"+f.StoredName, f.DownloadURL)
		require.FileExists(t, filepath.Join(store.Root(), "c1", "u42", f.StoredName))
	})

	t.Run("public base url", func(t *testing.T) {
		t.Parallel()
		store, err := New(Config{
			RootDir:       t.TempDir(),
			PublicBaseURL: "https://cdn.example.com",
		})
		require.NoError(t, err)

		f, err := store.Save(t.Context(), "c1", "a.txt", strings.NewReader("x"))
		require.NoError(t, err)
		require.Equal(t, "/static/c1/"+f.StoredName, f.DownloadURL)
		require.Equal(t, "https://cdn.example.com"+f.DownloadURL, f.PublicURL)
	})

	t.Run("same name twice gets distinct stored names", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		a, err := store.Save(t.Context(), "c1", "dup.txt", strings.NewReader("one"))
		require.NoError(t, err)
		b, err := store.Save(t.Context(), "c1", "dup.txt", strings.NewReader("two"))
		require.NoError(t, err)

		require.NotEqual(t, a.StoredName, b.StoredName)
	})

	t.Run("browser path in filename", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		f, err := store.Save(t.Context(), "c1", `C:\fakepath\photo.jpg`, strings.NewReader("x"))
		require.NoError(t, err)
		require.Equal(t, "photo.jpg", f.OriginalName)
	})

	t.Run("invalid client identity", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		_, err := store.Save(t.Context(), "../evil", "a.txt", strings.NewReader("x"))
		require.ErrorIs(t, err, ErrInvalidPath)
	})

	t.Run("invalid owner", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		_, err := store.Save(t.Context(), "c1", "a.txt", strings.NewReader("x"), WithOwner(".."))
		require.ErrorIs(t, err, ErrInvalidPath)
	})

	t.Run("rejected upload leaves nothing behind", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		_, err := store.Save(t.Context(), "c1", "big.bin", strings.NewReader("0123456789"),
			WithValidation(MaxSize(4)))

		var verr *FileValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, ErrCodeFileTooLarge, verr.Code)

		entries, readErr := os.ReadDir(filepath.Join(store.Root(), "c1"))
		require.NoError(t, readErr)
		require.Empty(t, entries)
	})

	t.Run("declared content type feeds validation", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		_, err := store.Save(t.Context(), "c1", "payload.bin", strings.NewReader("x"),
			WithContentType("video/mp4"),
			WithValidation(ImagesOnly()))

		var verr *FileValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, ErrCodeInvalidMIME, verr.Code)
	})
}

func TestStorage_List(t *testing.T) {
	t.Parallel()

	t.Run("missing namespace is empty not an error", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		files, err := store.List(t.Context(), "nobody")
		require.NoError(t, err)
		require.Empty(t, files)
	})

	t.Run("flat and owned files", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		flat, err := store.Save(t.Context(), "c1", "flat.txt", strings.NewReader("flat"))
		require.NoError(t, err)
		owned, err := store.Save(t.Context(), "c1", "owned.txt", strings.NewReader("owned!"), WithOwner("u42"))
		require.NoError(t, err)

		files, err := store.List(t.Context(), "c1")
		require.NoError(t, err)
		require.Len(t, files, 2)

		byStored := make(map[string]File, len(files))
		for _, f := range files {
			byStored[f.StoredName] = f
		}

		gotFlat := byStored[flat.StoredName]
		require.Equal(t, *flat, gotFlat)

		gotOwned := byStored[owned.StoredName]
		require.Equal(t, *owned, gotOwned)
		require.Equal(t, "u42/"+owned.StoredName, gotOwned.RelativePath)
	})

	t.Run("round trip preserves original name", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		_, err := store.Save(t.Context(), "c1", "my_annual_report.pdf", strings.NewReader("pdf"))
		require.NoError(t, err)

		files, err := store.List(t.Context(), "c1")
		require.NoError(t, err)
		require.Len(t, files, 1)
		require.Equal(t, "my_annual_report.pdf", files[0].OriginalName)
		require.Equal(t, "my_annual_report.pdf", OriginalName(files[0].StoredName))
	})

	t.Run("hidden and partial files skipped", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		_, err := store.Save(t.Context(), "c1", "real.txt", strings.NewReader("x"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "c1", ".depot-12345"), []byte("partial"), 0o644))

		files, err := store.List(t.Context(), "c1")
		require.NoError(t, err)
		require.Len(t, files, 1)
	})

	t.Run("invalid client identity", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		_, err := store.List(t.Context(), "a/b")
		require.ErrorIs(t, err, ErrInvalidPath)
	})
}

func TestStorage_Path(t *testing.T) {
	t.Parallel()

	t.Run("resolves flat save", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		f, err := store.Save(t.Context(), "c1", "a.txt", strings.NewReader("x"))
		require.NoError(t, err)

		got, err := store.Path(t.Context(), "c1", f.StoredName)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(store.Root(), "c1", f.StoredName), got)
	})

	t.Run("resolves owned save by bare name", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		f, err := store.Save(t.Context(), "c1", "a.txt", strings.NewReader("x"), WithOwner("u42"))
		require.NoError(t, err)

		got, err := store.Path(t.Context(), "c1", f.StoredName)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(store.Root(), "c1", "u42", f.StoredName), got)

		got, err = store.Path(t.Context(), "c1", "u42/"+f.StoredName)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(store.Root(), "c1", "u42", f.StoredName), got)
	})

	t.Run("missing reference", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		_, err := store.Path(t.Context(), "c1", "ghost.txt")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_Info(t *testing.T) {
	t.Parallel()

	t.Run("size matches bytes written", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		f, err := store.Save(t.Context(), "c1", "a.txt", strings.NewReader("12345678"))
		require.NoError(t, err)

		info, err := store.Info(t.Context(), "c1", f.StoredName)
		require.NoError(t, err)
		require.Equal(t, int64(8), info.SizeBytes)
		require.Equal(t, *f, *info)
	})

	t.Run("bare lookup reports owner path", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		f, err := store.Save(t.Context(), "c1", "a.txt", strings.NewReader("x"), WithOwner("u42"))
		require.NoError(t, err)

		info, err := store.Info(t.Context(), "c1", f.StoredName)
		require.NoError(t, err)
		require.Equal(t, "u42/"+f.StoredName, info.RelativePath)
		require.Equal(t, f.DownloadURL, info.DownloadURL)
	})

	t.Run("missing reference", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		_, err := store.Info(t.Context(), "c1", "ghost.txt")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_Delete(t *testing.T) {
	t.Parallel()

	t.Run("delete then resolve is not found", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		f, err := store.Save(t.Context(), "c1", "a.txt", strings.NewReader("x"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(t.Context(), "c1", f.StoredName))

		_, err = store.Path(t.Context(), "c1", f.StoredName)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete owned file by bare name", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		f, err := store.Save(t.Context(), "c1", "a.txt", strings.NewReader("x"), WithOwner("u42"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(t.Context(), "c1", f.StoredName))
		require.NoFileExists(t, filepath.Join(store.Root(), "c1", "u42", f.StoredName))
	})

	t.Run("missing reference", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		err := store.Delete(t.Context(), "c1", "ghost.txt")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_Stats(t *testing.T) {
	t.Parallel()

	t.Run("empty namespace", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		stats, err := store.Stats(t.Context(), "nobody")
		require.NoError(t, err)
		require.Zero(t, stats.TotalFiles)
		require.Zero(t, stats.TotalSize)
		require.Empty(t, stats.FileTypes)
		require.Empty(t, stats.SizeBreakdown)
	})

	t.Run("aggregates across owners", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		_, err := store.Save(t.Context(), "c1", "report.pdf", strings.NewReader("12345"))
		require.NoError(t, err)
		_, err = store.Save(t.Context(), "c1", "photo.jpg", strings.NewReader("123"), WithOwner("u42"))
		require.NoError(t, err)

		stats, err := store.Stats(t.Context(), "c1")
		require.NoError(t, err)

		require.Equal(t, 2, stats.TotalFiles)
		require.Equal(t, int64(8), stats.TotalSize)
		require.Equal(t, 1, stats.FileTypes[CategoryPDF].Count)
		require.Equal(t, 1, stats.FileTypes[CategoryImage].Count)
		require.Equal(t, 2, stats.SizeBreakdown[BucketTiny])
	})
}

func TestStorage_Healthcheck(t *testing.T) {
	t.Parallel()

	t.Run("healthy root", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		require.NoError(t, store.Healthcheck()(t.Context()))
	})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()
		root := filepath.Join(t.TempDir(), "gone")
		store, err := New(Config{RootDir: root})
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(root))

		err = store.Healthcheck()(t.Context())
		require.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("leaves no probe files behind", func(t *testing.T) {
		t.Parallel()
		store := newTestStorage(t)

		require.NoError(t, store.Healthcheck()(t.Context()))

		entries, err := os.ReadDir(store.Root())
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}
