package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/swmm-toolbox/internal/formatter"
	"github.com/swmm-toolbox/internal/mock"
	"github.com/swmm-toolbox/internal/repository"
	"github.com/swmm-toolbox/internal/testutil"
	"github.com/swmm-toolbox/pkg/compression"
	"github.com/swmm-toolbox/pkg/config"
	apperrors "github.com/swmm-toolbox/pkg/errors"
	"github.com/swmm-toolbox/pkg/model"
	"github.com/swmm-toolbox/pkg/utils"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithWorkDir(t.TempDir())}, opts...)
	return New(config.Default(), utils.NewDefaultLogger(utils.LevelError, &bytes.Buffer{}), opts...)
}

func setupRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "runs.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repos := repository.NewRepositories(db)
	require.NoError(t, repos.Migrate(context.Background()))
	t.Cleanup(func() { repos.Close() })
	return repos
}

func TestService_New(t *testing.T) {
	svc := New(nil, nil)
	require.NotNil(t, svc)
	assert.Equal(t, "csv_nos", svc.Config().Output.TableFormat)
	assert.NoError(t, svc.HealthCheck(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestService_Open(t *testing.T) {
	ctx := context.Background()
	frutal := testutil.Frutal()

	t.Run("plain file", func(t *testing.T) {
		svc := newTestService(t)
		in, err := svc.Open(ctx, frutal.WriteTemp(t))
		require.NoError(t, err)
		defer in.Close()
		assert.Equal(t, 36, in.Periods())
		assert.Empty(t, in.scratch)
	})

	for _, ct := range []compression.Type{compression.TypeGzip, compression.TypeZstd} {
		t.Run("compressed "+ct.String(), func(t *testing.T) {
			svc := newTestService(t)
			data, err := compression.Compress(frutal.Bytes(), ct, compression.LevelDefault)
			require.NoError(t, err)
			path := filepath.Join(t.TempDir(), "frutal.out"+ct.Extension())
			require.NoError(t, os.WriteFile(path, data, 0644))

			in, err := svc.Open(ctx, path)
			require.NoError(t, err)
			scratch := in.scratch
			assert.DirExists(t, scratch)
			assert.Equal(t, []string{"222", "C2", "P1"}, in.Names(2))

			require.NoError(t, in.Close())
			assert.NoDirExists(t, scratch)
		})
	}

	t.Run("storage location", func(t *testing.T) {
		st := &mock.MockStorage{}
		st.ExpectFetch("runs/frutal.out", frutal.Bytes())

		svc := newTestService(t, WithStorage(st))
		in, err := svc.Open(ctx, "storage://runs/frutal.out")
		require.NoError(t, err)
		defer in.Close()
		assert.Equal(t, int32(51015), in.Version())
		st.AssertExpectations(t)
	})

	t.Run("storage fetch failure", func(t *testing.T) {
		st := &mock.MockStorage{}
		st.ExpectFetchError("runs/gone.out", apperrors.New(apperrors.CodeStorageError, "object not found"))

		work := t.TempDir()
		svc := newTestService(t, WithStorage(st), WithWorkDir(work))
		_, err := svc.Open(ctx, "storage://runs/gone.out")
		assert.True(t, apperrors.IsStorageError(err))

		left, err := os.ReadDir(work)
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("missing file", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.Open(ctx, filepath.Join(t.TempDir(), "missing.out"))
		assert.True(t, apperrors.IsIOError(err))
	})

	t.Run("corrupt compressed file", func(t *testing.T) {
		data, err := compression.Compress(frutal.Bytes(), compression.TypeGzip, compression.LevelDefault)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "cut.out.gz")
		require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0644))

		work := t.TempDir()
		svc := newTestService(t, WithWorkDir(work))
		_, err = svc.Open(ctx, path)
		assert.True(t, apperrors.IsIOError(err))

		left, err := os.ReadDir(work)
		require.NoError(t, err)
		assert.Empty(t, left)
	})

	t.Run("structural failure cleans scratch", func(t *testing.T) {
		bad := testutil.Frutal()
		bad.TrailingMagic = 1
		data, err := compression.Compress(bad.Bytes(), compression.TypeGzip, compression.LevelDefault)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "bad.out.gz")
		require.NoError(t, os.WriteFile(path, data, 0644))

		work := t.TempDir()
		svc := newTestService(t, WithWorkDir(work))
		_, err = svc.Open(ctx, path)
		assert.True(t, apperrors.IsStructuralError(err))

		left, err := os.ReadDir(work)
		require.NoError(t, err)
		assert.Empty(t, left)
	})
}

func TestService_Listings(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	path := testutil.Frutal().WriteTemp(t)

	t.Run("catalog", func(t *testing.T) {
		all, err := svc.Catalog(ctx, path, "")
		require.NoError(t, err)
		assert.Len(t, all.Rows, 79)
		assert.Equal(t, formatter.CatalogHeader, all.Header)

		links, err := svc.Catalog(ctx, path, "link")
		require.NoError(t, err)
		assert.Len(t, links.Rows, 18)
		assert.Equal(t, []string{"link", "222", "Flow_rate"}, links.Rows[0])

		_, err = svc.Catalog(ctx, path, "pipe")
		assert.True(t, apperrors.IsLookupError(err))
	})

	t.Run("listvariables", func(t *testing.T) {
		vars, err := svc.ListVariables(ctx, path)
		require.NoError(t, err)
		assert.Len(t, vars.Rows, 37)
	})

	t.Run("listdetail", func(t *testing.T) {
		links, err := svc.ListDetail(ctx, path, "link")
		require.NoError(t, err)
		assert.Len(t, links.Rows, 3)

		one, err := svc.ListDetail(ctx, path, "node", "J3")
		require.NoError(t, err)
		require.Len(t, one.Rows, 1)
		assert.Equal(t, "J3", one.Rows[0][0])

		_, err = svc.ListDetail(ctx, path, "system")
		assert.True(t, apperrors.IsLookupError(err))
	})
}

func TestService_Extract(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	path := testutil.Frutal().WriteTemp(t)

	f, err := svc.Extract(ctx, path, "link,222,Flow_rate", "node,222,0")
	require.NoError(t, err)
	assert.Equal(t, 36, f.Len())
	assert.Equal(t, []string{"link_222_Flow_rate", "node_222_Depth_above_invert"}, f.ColumnNames())

	col, ok := f.Column("link_222_Flow_rate")
	require.True(t, ok)
	assert.Equal(t, testutil.ResultValue(2, 0, 0, 0), col.Values[0])

	tbl := svc.FrameTable(f)
	assert.Equal(t, []string{"2023-01-01 00:05:00", "2000", "1100"}, tbl.Rows[0])

	_, err = svc.Extract(ctx, path, "link,nope,Flow_rate")
	assert.True(t, apperrors.IsLookupError(err))

	t.Run("concurrent columns", func(t *testing.T) {
		cfg := config.Default()
		cfg.Extract.Workers = 3
		conc := New(cfg, nil, WithWorkDir(t.TempDir()))

		got, err := conc.Extract(ctx, path, "link,222,Flow_rate", "node,222,0")
		require.NoError(t, err)
		assert.Equal(t, f.Index, got.Index)
		assert.Equal(t, f.Columns, got.Columns)
	})
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	svc := newTestService(t, WithRepositories(repos))
	path := testutil.Frutal().WriteTemp(t)

	res, err := svc.Export(ctx, path, "link,222,Flow_rate", "system,,Rainfall")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, res.Run.Status)
	assert.Len(t, res.Run.RunID, 36)
	assert.Equal(t, "CMS", res.Run.FlowUnits)

	stored, err := repos.Run.GetRun(ctx, res.Run.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, stored.Status)
	assert.NotNil(t, stored.EndTime)

	cols, err := repos.Series.ListColumns(ctx, res.Run.RunID)
	require.NoError(t, err)
	assert.Equal(t, []string{"link_222_Flow_rate", "system__Rainfall"}, cols)

	points, err := repos.Series.GetPoints(ctx, res.Run.RunID, "link_222_Flow_rate")
	require.NoError(t, err)
	assert.Len(t, points, 36)
	assert.Equal(t, float64(testutil.ResultValue(2, 0, 0, 35)), points[35].Value)

	t.Run("failed extraction marks the run", func(t *testing.T) {
		_, err := svc.Export(ctx, path, "link,ghost,Flow_rate")
		require.Error(t, err)

		runs, err := repos.Run.ListRuns(ctx, 1)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, model.RunStatusFailed, runs[0].Status)
		assert.Contains(t, runs[0].StatusInfo, "ghost")
	})
}

func TestService_ExportSaveFailure(t *testing.T) {
	ctx := context.Background()
	runs := &mock.MockRunRepository{}
	series := &mock.MockSeriesRepository{}
	runs.ExpectCreateRun(nil)
	series.ExpectSavePoints(apperrors.New(apperrors.CodeDatabaseError, "disk full"))
	runs.ExpectUpdateRunStatus(model.RunStatusFailed, nil)

	repos := &repository.Repositories{Run: runs, Series: series}
	svc := newTestService(t, WithRepositories(repos))

	_, err := svc.Export(ctx, testutil.Frutal().WriteTemp(t), "link,222,Flow_rate")
	assert.True(t, apperrors.IsDatabaseError(err))
	runs.AssertExpectations(t)
	series.AssertExpectations(t)
}

func TestService_Emit(t *testing.T) {
	ctx := context.Background()
	tbl := &formatter.Table{
		Header: []string{"TYPE", "NAME", "VARIABLE"},
		Rows:   [][]string{{"link", "222", "Flow_rate"}},
	}
	want := "TYPE,NAME,VARIABLE\nlink,222,Flow_rate\n"

	t.Run("writer", func(t *testing.T) {
		svc := newTestService(t)
		var buf bytes.Buffer
		require.NoError(t, svc.Emit(ctx, &buf, tbl, svc.DefaultOutputOptions()))
		assert.Equal(t, want, buf.String())
	})

	t.Run("compressed file", func(t *testing.T) {
		svc := newTestService(t)
		path := filepath.Join(t.TempDir(), "catalog.csv.zst")
		opts := OutputOptions{Path: path, Compress: compression.TypeZstd}
		require.NoError(t, svc.Emit(ctx, nil, tbl, opts))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, compression.TypeZstd, compression.DetectType(data))
		r, err := compression.NewReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer r.Close()
		plain, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, want, string(plain))
	})

	t.Run("upload", func(t *testing.T) {
		st := &mock.MockStorage{}
		st.ExpectUpload("exports/catalog.csv", nil)
		st.ExpectURL("exports/catalog.csv", "mem://exports/catalog.csv")

		svc := newTestService(t, WithStorage(st))
		var buf bytes.Buffer
		opts := OutputOptions{Options: formatter.Options{Format: "csv"}, UploadKey: "exports/catalog.csv"}
		require.NoError(t, svc.Emit(ctx, &buf, tbl, opts))
		assert.True(t, strings.HasPrefix(buf.String(), "TYPE, NAME, VARIABLE"))
		assert.Equal(t, buf.Bytes(), st.Uploaded("exports/catalog.csv"))
		st.AssertExpectations(t)
	})

	t.Run("float format", func(t *testing.T) {
		cfg := config.Default()
		cfg.Output.FloatFormat = "%.1f"
		svc := New(cfg, nil)
		assert.Equal(t, "2000.0", svc.FloatFormatter()(2000))
	})
}
