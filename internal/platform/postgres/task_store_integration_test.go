//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/store"
	"github.com/umtracker/umtracker-api/internal/testdb"
)

func seedAuthor(t *testing.T, db *sql.DB) string {
	t.Helper()
	testdb.SeedSubject(t, db, 1, "Математика")
	testdb.SeedSubject(t, db, 2, "Матанализ")
	testdb.SeedCurator(t, db, domain.Curator{
		Email: "head@example.com", Name: "Head", SubjectID: 1, RoleID: 9, Confirmed: true,
	})
	return "head@example.com"
}

// allocate takes the next id and inserts the task inside one transaction,
// holding the locks for hold before committing.
func allocate(ctx context.Context, db *sql.DB, tasks *PostgresTaskStore, lockKey int64, author string, hold time.Duration) (string, error) {
	var id string
	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := tasks.WithTx(tx)
		var err error
		id, err = txTasks.NextTaskID(ctx, lockKey, "mat")
		if err != nil {
			return err
		}
		time.Sleep(hold)
		return txTasks.Create(ctx, &domain.Task{
			ID:             id,
			Deadline:       time.Now().Add(24 * time.Hour),
			Name:           "Weekly",
			Description:    "d",
			ReportTemplate: "r",
			AuthorEmail:    author,
		})
	})
	return id, err
}

func TestTaskStore_NextTaskID_Sequential(t *testing.T) {
	db := testdb.Open(t)
	author := seedAuthor(t, db)
	tasks := NewPostgresTaskStore(db, quietLogger())
	ctx := context.Background()

	first, err := allocate(ctx, db, tasks, 1, author, 0)
	require.NoError(t, err)
	second, err := allocate(ctx, db, tasks, 1, author, 0)
	require.NoError(t, err)

	assert.Equal(t, "mat-1", first)
	assert.Equal(t, "mat-2", second)
}

func TestTaskStore_NextTaskID_SkipsMalformedIDs(t *testing.T) {
	db := testdb.Open(t)
	author := seedAuthor(t, db)
	_, err := db.Exec(`
		INSERT INTO tasks (id, deadline, name, description, report_template, author_email)
		VALUES ('mat-x', NOW(), 'n', 'd', 'r', $1), ('mat-7', NOW(), 'n', 'd', 'r', $1)`, author)
	require.NoError(t, err)

	id, err := allocate(context.Background(), db, NewPostgresTaskStore(db, quietLogger()), 1, author, 0)

	require.NoError(t, err)
	assert.Equal(t, "mat-8", id)
}

func TestTaskStore_NextTaskID_ConcurrentCreatorsGetDistinctIDs(t *testing.T) {
	db := testdb.Open(t)
	author := seedAuthor(t, db)
	tasks := NewPostgresTaskStore(db, quietLogger())
	ctx := context.Background()

	const creators = 8
	ids := make([]string, creators)
	errs := make([]error, creators)
	var wg sync.WaitGroup
	for i := range creators {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Alternate subjects that share a prefix so both lock levels are exercised.
			lockKey := int64(1 + i%2)
			ids[i], errs[i] = allocate(ctx, db, tasks, lockKey, author, 20*time.Millisecond)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "creator %d", i)
	}
	sort.Slice(ids, func(a, b int) bool {
		_, x, _ := domain.ParseTaskID(ids[a])
		_, y, _ := domain.ParseTaskID(ids[b])
		return x < y
	})
	want := make([]string, creators)
	for i := range want {
		want[i] = domain.FormatTaskID("mat", i+1)
	}
	assert.Equal(t, want, ids)
}
