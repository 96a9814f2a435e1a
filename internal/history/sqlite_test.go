package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthcare-diagnosis-server/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "diagnoses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord() *domain.DiagnosisRecord {
	return &domain.DiagnosisRecord{
		ID:               uuid.NewString(),
		ClientID:         "client-1",
		InitialSymptom:   "fever",
		MatchedSymptoms:  []string{"fever", "headache", "cough"},
		DaysExperiencing: 3,
		Primary:          "Flu",
		Secondary:        "",
		Confidence:       domain.ConfidenceHigh,
		Severity:         domain.SeverityMild,
		CreatedAt:        time.Now().UTC().Truncate(time.Second),
	}
}

func TestRecordAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord()
	require.NoError(t, store.Record(ctx, rec))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.ClientID, got.ClientID)
	assert.Equal(t, rec.InitialSymptom, got.InitialSymptom)
	assert.Equal(t, rec.MatchedSymptoms, got.MatchedSymptoms)
	assert.Equal(t, rec.DaysExperiencing, got.DaysExperiencing)
	assert.Equal(t, rec.Primary, got.Primary)
	assert.Equal(t, rec.Confidence, got.Confidence)
	assert.Equal(t, rec.Severity, got.Severity)
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecordRejectsInvalid(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord()
	rec.ID = ""
	assert.Error(t, store.Record(context.Background(), rec))
}

func TestRecordRejectsDuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord()
	require.NoError(t, store.Record(ctx, rec))
	assert.Error(t, store.Record(ctx, rec))
}

func TestListOrdersNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := testRecord()
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, store.Record(ctx, older))

	newer := testRecord()
	newer.Primary = "Migraine"
	require.NoError(t, store.Record(ctx, newer))

	records, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Migraine", records[0].Primary)
	assert.Equal(t, "Flu", records[1].Primary)
}

func TestListPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := testRecord()
		rec.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Record(ctx, rec))
	}

	page, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := store.List(ctx, 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}

func TestCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, store.Record(ctx, testRecord()))
	require.NoError(t, store.Record(ctx, testRecord()))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestEmptyMatchedSymptomsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord()
	rec.MatchedSymptoms = nil
	require.NoError(t, store.Record(ctx, rec))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.MatchedSymptoms)
}

func TestRecordInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO diagnoses").WillReturnError(assert.AnError)

	store := NewStoreWithDB(db)
	err = store.Record(context.Background(), testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnError(assert.AnError)

	store := NewStoreWithDB(db)
	_, err = store.Count(context.Background())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
