package agg

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
)

// currentCacheVersion defines the version of the cached NormalizeResult layout.
const currentCacheVersion = 1

// cacheTTL bounds how long a cached activity map is trusted.
const cacheTTL = 7 * 24 * time.Hour

// CachedNormalize reads entries from source and normalizes them, consulting the
// activity cache first. Cache failures fall back to direct computation.
func CachedNormalize(ctx context.Context, source contract.EntrySource, loc *time.Location, mgr contract.CacheManager) (schema.NormalizeResult, error) {
	if loc == nil {
		return schema.NormalizeResult{}, ErrNilLocation
	}

	var activity contract.CacheStore
	if mgr != nil {
		activity = mgr.GetActivityStore()
	}
	if activity == nil {
		return normalizeFromSource(ctx, source, loc)
	}

	key, err := generateCacheKey(ctx, source, loc)
	if err != nil {
		// Without a fingerprint there is no safe key
		return normalizeFromSource(ctx, source, loc)
	}

	if result, ok := checkCacheHit(activity, key); ok {
		return result, nil
	}
	return computeAndStore(ctx, source, loc, activity, key)
}

// normalizeFromSource fetches every entry and normalizes it.
func normalizeFromSource(ctx context.Context, source contract.EntrySource, loc *time.Location) (schema.NormalizeResult, error) {
	entries, err := source.Entries(ctx)
	if err != nil {
		return schema.NormalizeResult{}, fmt.Errorf("failed to read entries from %s: %w", source.Describe(), err)
	}
	return Normalize(entries, loc)
}

// checkCacheHit attempts to retrieve and validate a cached result.
func checkCacheHit(activity contract.CacheStore, key string) (schema.NormalizeResult, bool) {
	data, version, ts, err := activity.Get(key)
	if err != nil {
		return schema.NormalizeResult{}, false
	}

	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return schema.NormalizeResult{}, false
	}

	var result schema.NormalizeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return schema.NormalizeResult{}, false
	}
	if result.Activity == nil {
		result.Activity = make(schema.ActivityMap)
	}
	return result, true
}

// computeAndStore computes the result and stores it in cache.
func computeAndStore(ctx context.Context, source contract.EntrySource, loc *time.Location, activity contract.CacheStore, key string) (schema.NormalizeResult, error) {
	result, err := normalizeFromSource(ctx, source, loc)
	if err != nil {
		return result, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := activity.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to store activity cache", err)
		}
	}
	return result, nil
}

// generateCacheKey hashes the source identity, its content fingerprint and the timezone.
// The timezone is part of the key because it changes which date an entry lands on.
func generateCacheKey(ctx context.Context, source contract.EntrySource, loc *time.Location) (string, error) {
	fingerprint, err := source.Fingerprint(ctx)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s:%s:%s", source.Describe(), fingerprint, zoneIdentity(loc))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), nil
}

// zoneIdentity names a location by its name plus its winter and summer
// abbreviation and offset. The name alone is not enough since every
// time.Local reports "Local" whatever zone it resolved to.
func zoneIdentity(loc *time.Location) string {
	year := time.Now().Year()
	winter, winterOffset := time.Date(year, time.January, 1, 12, 0, 0, 0, loc).Zone()
	summer, summerOffset := time.Date(year, time.July, 1, 12, 0, 0, 0, loc).Zone()
	return fmt.Sprintf("%s|%s%+d|%s%+d", loc.String(), winter, winterOffset, summer, summerOffset)
}
