package seqsvc

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/ident"
)

// counterContract runs the ident.Counter behaviour every backend must honour.
func counterContract(t *testing.T, counter ident.Counter) {
	ctx := context.Background()
	year := 2000 + time.Now().Nanosecond()%1000 // isolate runs sharing a server

	cur, err := counter.Current(ctx, ident.KindEmployee, year)
	require.NoError(t, err)
	assert.EqualValues(t, 0, cur)

	for want := int64(1); want <= 3; want++ {
		got, err := counter.Next(ctx, ident.KindEmployee, year)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	require.NoError(t, counter.Seed(ctx, ident.KindEmployee, year, 10))
	require.NoError(t, counter.Seed(ctx, ident.KindEmployee, year, 5)) // never lowers
	cur, err = counter.Current(ctx, ident.KindEmployee, year)
	require.NoError(t, err)
	assert.EqualValues(t, 10, cur)

	// kinds and years are independent
	got, err := counter.Next(ctx, ident.KindAdmission, year)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got)
	got, err = counter.Next(ctx, ident.KindEmployee, year+1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got)

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[int64]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := counter.Next(ctx, ident.KindAdmission, year)
			assert.NoError(t, err)
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestRedisCounter(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client, err := OpenRedis(context.Background(), core.RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	counterContract(t, NewRedisCounter(client, "test-"+uuid.NewString()))
}

func TestMongoCounter(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := OpenMongo(ctx, core.MongoConfig{URI: uri})
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()

	db := client.Database(fmt.Sprintf("shule_test_%d", time.Now().UnixNano()))
	defer func() { _ = db.Drop(ctx) }()
	counterContract(t, NewMongoCounter(db))
}
