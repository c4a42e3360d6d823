package settings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"pm-dashboard/internal/models"
	"pm-dashboard/internal/testutil"
)

type recorder struct {
	mu    sync.Mutex
	saves []Prefs
}

func (r *recorder) save(ctx context.Context, userID, tableID string, p Prefs) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, p)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *recorder) last() Prefs {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves[len(r.saves)-1]
}

func sorting(s string) Prefs {
	return Prefs{Sorting: datatypes.JSON(s)}
}

func TestDebouncerCoalescesRapidUpdates(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(50*time.Millisecond, rec.save, testutil.Logger())

	for _, s := range []string{`[{"id":"a"}]`, `[{"id":"b"}]`, `[{"id":"c"}]`} {
		d.Update("u1", "projects", sorting(s))
		time.Sleep(10 * time.Millisecond)
	}
	assert.Zero(t, rec.count())

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.JSONEq(t, `[{"id":"c"}]`, string(rec.last().Sorting))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(20*time.Millisecond, rec.save, testutil.Logger())

	d.Update("u1", "projects", sorting(`[]`))
	d.Update("u1", "services", sorting(`[]`))
	d.Update("u2", "projects", sorting(`[]`))

	require.Eventually(t, func() bool { return rec.count() == 3 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerFlush(t *testing.T) {
	rec := &recorder{}
	d := NewDebouncer(time.Hour, rec.save, testutil.Logger())

	d.Update("u1", "projects", sorting(`[1]`))
	d.Update("u1", "projects", sorting(`[2]`))
	assert.Equal(t, 1, d.Pending())

	d.Flush()
	assert.Equal(t, 1, rec.count())
	assert.Zero(t, d.Pending())

	d.Update("u1", "projects", sorting(`[3]`))
	assert.Equal(t, 2, rec.count())
}

func TestStoreUpsert(t *testing.T) {
	db := testutil.NewDB(t)
	store := NewStore(db)
	ctx := context.Background()

	row, err := store.Get(ctx, "u1", "projects")
	require.NoError(t, err)
	assert.Nil(t, row)

	require.NoError(t, store.Upsert(ctx, "u1", "projects", Prefs{ColumnOrder: datatypes.JSON(`["title","status"]`)}))
	require.NoError(t, store.Upsert(ctx, "u1", "projects", Prefs{ColumnOrder: datatypes.JSON(`["status","title"]`)}))
	require.NoError(t, store.Upsert(ctx, "u1", "services", Prefs{}))

	row, err = store.Get(ctx, "u1", "projects")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.JSONEq(t, `["status","title"]`, string(row.ColumnOrder))

	var n int64
	require.NoError(t, db.Model(&models.UserTableSettings{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}
