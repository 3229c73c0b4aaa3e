package record

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "samples.db")

	r, err := Open(ctx, path, 0)
	require.NoError(t, err)

	at := time.Unix(1700000000, 42)
	r.Record(Entry{Frame: 1, Raw: 0.5, Level: 0.75, At: at})
	r.Record(Entry{Frame: 9, Raw: 1, Level: -0.1, At: at})
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	// reopen: entries survive
	r, err = Open(ctx, path, 0)
	require.NoError(t, err)
	defer r.Close()

	entries, err := r.Entries(ctx)
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Frame: 1, Raw: 0.5, Level: 0.75, At: at},
		{Frame: 9, Raw: 1, Level: -0.1, At: at},
	}, entries)
	require.Zero(t, r.Dropped())
}

func TestRecorder_noPath(t *testing.T) {
	_, err := Open(context.Background(), "", 0)
	require.Error(t, err)
}
