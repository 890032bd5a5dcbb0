package refdata

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Aidin1998/sanctions_matcher/internal/compliance/screening"
	"github.com/Aidin1998/sanctions_matcher/internal/database"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleCSV = `ent_num,sdn_name,sdn_type,program,country
36,"AEROCARIBBEAN AIRLINES",-0-,CUBA,Cuba
173,"ANGLO-CARIBBEAN CO., LTD.",-0-,CUBA,-0-
306,"BANCO NACIONAL DE CUBA",-0-,CUBA,Cuba
2674,"HUSSEIN, Saddam",individual,IRAQ2,Iraq
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewSQLiteDB("", false)
	require.NoError(t, err)
	store := NewStore(db, zap.NewNop())
	require.NoError(t, store.AutoMigrate())
	return store
}

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, screening.ReferenceRecord{
		EntNum:      173,
		SDNName:     "ANGLO-CARIBBEAN CO., LTD.",
		CleanedName: "ANGLO CARIBBEAN CO LTD",
	}, records[1])
	assert.Equal(t, "individual", records[3].SDNType)
	assert.Equal(t, "HUSSEIN SADDAM", records[3].CleanedName)
}

func TestReadCSV_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"missing column": "ent_num,sdn_name,country\n1,A,B\n",
		"bad ent_num":    "ent_num,sdn_name,sdn_type,country\nx,A,-0-,B\n",
		"empty name":     "ent_num,sdn_name,sdn_type,country\n1,-0-,-0-,B\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestStore_UpsertAndFetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, records))

	all, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, int64(36), all[0].EntNum)
	assert.Equal(t, "BANCO NACIONAL DE CUBA", all[2].CleanedName)

	cuba, err := store.FetchByCountry(ctx, "cUbA")
	require.NoError(t, err)
	require.Len(t, cuba, 2)
	assert.Equal(t, int64(306), cuba[1].EntNum)

	partial, err := store.FetchByCountry(ctx, "ra")
	require.NoError(t, err)
	require.Len(t, partial, 1)
	assert.Equal(t, "Iraq", partial[0].Country)

	none, err := store.FetchByCountry(ctx, "Narnia")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_UpsertReplacesAndRecomputesCleanedName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []screening.ReferenceRecord{{EntNum: 1, SDNName: "Old Name", CleanedName: "STALE"}}))
	require.NoError(t, store.Upsert(ctx, []screening.ReferenceRecord{{EntNum: 1, SDNName: "al-Rashid Trading", Country: "Iraq"}}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := store.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AL RASHID TRADING", all[0].CleanedName)
	assert.Equal(t, "Iraq", all[0].Country)

	assert.NoError(t, store.Upsert(ctx, nil))
}

func TestMemorySource(t *testing.T) {
	src := NewMemorySource([]screening.ReferenceRecord{
		{EntNum: 1, SDNName: "Jon Smyth", Country: "United Kingdom"},
		{EntNum: 2, SDNName: "Ivan Petrov", Country: "Russia"},
	})
	ctx := context.Background()

	all, err := src.FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "JON SMYTH", all[0].CleanedName)

	uk, err := src.FetchByCountry(ctx, "kingdom")
	require.NoError(t, err)
	require.Len(t, uk, 1)
	assert.Equal(t, int64(1), uk[0].EntNum)
}

type countingSource struct {
	screening.ReferenceSource
	calls int
}

func (c *countingSource) FetchAll(ctx context.Context) ([]screening.ReferenceRecord, error) {
	c.calls++
	return c.ReferenceSource.FetchAll(ctx)
}

func TestCachedSource_FallsThroughWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	backing := &countingSource{ReferenceSource: NewMemorySource([]screening.ReferenceRecord{{EntNum: 9, SDNName: "Banco Nacional de Cuba", Country: "Cuba"}})}
	cached := NewCachedSource(backing, client, time.Minute, zap.NewNop())

	for i := 0; i < 2; i++ {
		records, err := cached.FetchAll(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "BANCO NACIONAL DE CUBA", records[0].CleanedName)
	}
	assert.Equal(t, 2, backing.calls)

	byCountry, err := cached.FetchByCountry(context.Background(), "cuba")
	require.NoError(t, err)
	assert.Len(t, byCountry, 1)

	assert.Error(t, cached.Invalidate(context.Background()))
}
