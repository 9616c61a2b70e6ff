package counter

import (
	"context"
	"strconv"

	"github.com/payflowhq/payflow/internal/pkg/cache"
)

const paymentCountersKey = "payments:counters"

// Counter field names.
const (
	FieldInitiated = "initiated"
	FieldSucceeded = "succeeded"
	FieldFailed    = "failed"
)

// AddInitiated increments the initiated-payments counter in Redis.
func AddInitiated() error {
	return add(FieldInitiated)
}

// AddSucceeded increments the succeeded-payments counter in Redis.
func AddSucceeded() error {
	return add(FieldSucceeded)
}

// AddFailed increments the failed-payments counter in Redis.
func AddFailed() error {
	return add(FieldFailed)
}

func add(field string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, paymentCountersKey, field, 1).Err()
}

// Snapshot returns the current counter values. Missing fields read as zero.
func Snapshot() (map[string]int64, error) {
	ctx := context.Background()
	data, err := cache.GetClient().HGetAll(ctx, paymentCountersKey).Result()
	if err != nil {
		return nil, err
	}

	out := map[string]int64{
		FieldInitiated: 0,
		FieldSucceeded: 0,
		FieldFailed:    0,
	}
	for field, val := range data {
		n, perr := strconv.ParseInt(val, 10, 64)
		if perr != nil {
			continue
		}
		out[field] = n
	}
	return out, nil
}
