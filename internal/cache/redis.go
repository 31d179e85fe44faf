package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	issuancePrefix = "issuance:"
	riskMapPrefix  = "riskmap:"

	issuanceTTL = 2 * time.Minute
	riskMapTTL  = 5 * time.Minute
)

// Open connects to redis using a URL (redis://host:port/db). Callers treat a
// nil client as "cache disabled".
func Open(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// ReserveIssuance takes a short-lived reservation on a certificate idempotency
// key so concurrent replicas do not race the ledger write. Returns false when
// another holder already owns the reservation.
func ReserveIssuance(ctx context.Context, rdb *redis.Client, subjectHash string) (bool, error) {
	if rdb == nil {
		return true, nil
	}
	return rdb.SetNX(ctx, issuancePrefix+subjectHash, "RESERVED", issuanceTTL).Result()
}

// ReleaseIssuance drops the reservation once the ledger write settled.
func ReleaseIssuance(ctx context.Context, rdb *redis.Client, subjectHash string) {
	if rdb == nil {
		return
	}
	_ = rdb.Del(ctx, issuancePrefix+subjectHash).Err()
}

// RiskMap returns the cached risk-map payload for a district, if present.
func RiskMap(ctx context.Context, rdb *redis.Client, district string) ([]byte, bool) {
	if rdb == nil {
		return nil, false
	}
	data, err := rdb.Get(ctx, riskMapPrefix+district).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			return nil, false
		}
		return nil, false
	}
	return data, true
}

// SetRiskMap caches the risk-map payload for a district.
func SetRiskMap(ctx context.Context, rdb *redis.Client, district string, payload []byte) error {
	if rdb == nil {
		return nil
	}
	return rdb.Set(ctx, riskMapPrefix+district, payload, riskMapTTL).Err()
}
