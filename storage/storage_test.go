package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serene-minds/dashboard/core/session"
	"github.com/serene-minds/dashboard/core/user"
	"github.com/serene-minds/dashboard/storage"
	"github.com/serene-minds/dashboard/tests"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		store   string
		wantErr bool
	}{
		{name: "default", store: ""},
		{name: "memory", store: storage.Memory},
		{name: "file", store: storage.File},
		{name: "sql", store: storage.SQL},
		{name: "unknown", store: "etcd", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := testutil.NewConfig(t)
			conf.Session.Store = tt.store
			conf.Session.Dir = filepath.Join(t.TempDir(), "sessions")
			conf.Database.Engine = "sqlite"
			conf.Database.Path = filepath.Join(t.TempDir(), "serene.db")
			ctx := context.Background()

			store, closeStore, err := storage.Open(ctx, conf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, closeStore()) })

			rec := session.Record{User: testutil.NewUser(t, "Imani", user.RoleAdmin), Token: "tok"}
			require.NoError(t, store.Save(ctx, "sid", rec))
			got, err := store.Load(ctx, "sid")
			require.NoError(t, err)
			assert.Equal(t, rec, got)
		})
	}
}
