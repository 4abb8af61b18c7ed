package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/giftshop-console/internal/model"
	"github.com/d60-Lab/giftshop-console/internal/repository"
	"github.com/d60-Lab/giftshop-console/internal/service"
	"github.com/d60-Lab/giftshop-console/internal/session"
	"github.com/d60-Lab/giftshop-console/internal/status"
)

// 对比订单列表查询：直连仓储 vs 带 Redis 代数缓存的服务层
func main() {
	ctx := context.Background()

	db := must(gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{}))
	mustDo(db.AutoMigrate(&model.Order{}, &model.OrderItem{}))

	const orderCount = 20000
	seedOrders(db, orderCount)
	fmt.Printf("Seeded %d orders\n", orderCount)

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}
	client.FlushAll(ctx)

	repo := repository.NewGormOrderRepository(db)
	cached := service.NewOrderService(repo, session.StaticRoleProvider(false), client, 10*time.Minute)
	uncached := service.NewOrderService(repo, session.StaticRoleProvider(false), nil, 0)

	queries := makeQueries(5000)

	direct := run(queries, func(q repository.OrderQuery) error {
		_, err := uncached.List(ctx, q)
		return err
	})
	withCache := run(queries, func(q repository.OrderQuery) error {
		_, err := cached.List(ctx, q)
		return err
	})

	fmt.Println("\nOrder list latency (5k requests, 20k orders, sqlite + Redis)")
	fmt.Printf("%-14s avg=%v p95=%v p99=%v\n", "Direct", avg(direct), pct(direct, 0.95), pct(direct, 0.99))
	fmt.Printf("%-14s avg=%v p95=%v p99=%v\n", "Redis cache", avg(withCache), pct(withCache, 0.95), pct(withCache, 0.99))
}

func seedOrders(db *gorm.DB, n int) {
	statuses := status.All()
	cities := []string{"Lahore", "Karachi", "Islamabad", "Multan", "Faisalabad"}
	base := time.Now()
	orders := make([]model.Order, 0, 1000)
	for i := 0; i < n; i++ {
		bill := float64(500 + rand.Intn(4500))
		orders = append(orders, model.Order{
			CustomerID:    int64(1 + i%4000),
			CustomerName:  fmt.Sprintf("customer_%d", i%4000),
			CustomerPhone: fmt.Sprintf("03%08d", i%4000),
			CustomerCity:  cities[i%len(cities)],
			Status:        statuses[rand.Intn(len(statuses))].String(),
			IsCOD:         i%3 != 0,
			Bill:          bill,
			CODFee:        50,
			DeliveryFee:   200,
			TotalBill:     bill + 250,
			CreatedAt:     base.Add(-time.Duration(i) * time.Minute),
		})
		if len(orders) == 1000 {
			mustDo(db.CreateInBatches(&orders, 1000).Error)
			orders = orders[:0]
		}
	}
	if len(orders) > 0 {
		mustDo(db.CreateInBatches(&orders, 1000).Error)
	}
}

func makeQueries(n int) []repository.OrderQuery {
	statuses := status.All()
	out := make([]repository.OrderQuery, n)
	for i := range out {
		q := repository.OrderQuery{Page: 1 + rand.Intn(20), Limit: 20}
		switch rand.Intn(3) {
		case 0:
			q.Status = statuses[rand.Intn(len(statuses))]
		case 1:
			q.CustomerName = fmt.Sprintf("customer_%d", rand.Intn(4000))
		}
		out[i] = q
	}
	return out
}

func run(queries []repository.OrderQuery, call func(repository.OrderQuery) error) []time.Duration {
	out := make([]time.Duration, 0, len(queries))
	for _, q := range queries {
		start := time.Now()
		if err := call(q); err != nil {
			panic(err)
		}
		out = append(out, time.Since(start))
	}
	return out
}

func avg(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return sum / time.Duration(len(ds))
}

func pct(ds []time.Duration, p float64) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), ds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
