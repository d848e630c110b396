package health

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestDBChecker(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	checker := NewDBChecker(db)
	if res := checker.Check(context.Background()); !res.Healthy || res.Name != "db" {
		t.Fatalf("expected healthy db, got %+v", res)
	}

	sqlDB, _ := db.DB()
	_ = sqlDB.Close()
	if res := checker.Check(context.Background()); res.Healthy || res.Error == "" {
		t.Fatalf("expected closed db to be unhealthy, got %+v", res)
	}
	if NewDBChecker(nil) != nil {
		t.Fatal("expected nil checker for nil db")
	}
}

func TestRedisChecker(t *testing.T) {
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	checker := NewRedisChecker(client)
	if res := checker.Check(context.Background()); !res.Healthy {
		t.Fatalf("expected healthy redis, got %+v", res)
	}
	m.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if res := checker.Check(ctx); res.Healthy {
		t.Fatal("expected stopped redis to be unhealthy")
	}
}

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("storage", pingFunc(func(context.Context) error { return nil }))
	if res := ok.Check(context.Background()); !res.Healthy || res.Name != "storage" {
		t.Fatalf("unexpected result %+v", res)
	}
	bad := NewPingChecker("storage", pingFunc(func(context.Context) error { return errors.New("bucket missing") }))
	if res := bad.Check(context.Background()); res.Healthy || res.Error != "bucket missing" {
		t.Fatalf("unexpected result %+v", res)
	}
	if NewPingChecker("storage", nil) != nil {
		t.Fatal("expected nil checker for nil pinger")
	}
}
