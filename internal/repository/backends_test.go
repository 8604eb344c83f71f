package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seating-chart/internal/model"
)

// These run against real servers and are skipped unless configured, e.g.
//
//	SEATING_TEST_MYSQL_DSN='root:pw@tcp(127.0.0.1:3306)/seating_test?parseTime=true'
//	SEATING_TEST_REDIS_ADDR=localhost:6379

func TestMySQLStoreContract(t *testing.T) {
	dsn := os.Getenv("SEATING_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("SEATING_TEST_MYSQL_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	s := NewMySQLStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema is not idempotent: %v", err)
	}
	for _, k := range []string{"a", "b", "missing", "other"} {
		_ = s.Delete(ctx, k)
	}
	checkBlobStore(t, s)

	// the layout repo round-trips through the blob table
	repo := NewLayoutRepo(s)
	snap := model.LayoutSnapshot{
		Area:  "Pool Deck",
		Role:  model.RoleWorking,
		Seats: []model.SeatRecord{{SeatID: "P1", Position: model.Vec2{X: 50, Y: 100}, State: model.SeatAvailable, Capacity: 2, AreaName: "Pool Deck"}},
	}
	if err := repo.Save(ctx, snap); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = repo.Delete(context.Background(), snap.Area, snap.Role) })
	got, err := repo.Load(ctx, snap.Area, snap.Role)
	if err != nil || len(got.Seats) != len(snap.Seats) {
		t.Fatalf("load: %+v %v", got, err)
	}
}

func TestRedisStoreContract(t *testing.T) {
	addr := os.Getenv("SEATING_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SEATING_TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping: %v", err)
	}

	s := NewRedisStore(rdb, fmt.Sprintf("seating-test-%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		keys, _ := rdb.Keys(context.Background(), s.Prefix+":*").Result()
		if len(keys) > 0 {
			_ = rdb.Del(context.Background(), keys...).Err()
		}
	})
	checkBlobStore(t, s)
}
