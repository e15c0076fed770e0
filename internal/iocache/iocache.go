// Package iocache persists normalized activity and computed snapshots.
package iocache

import (
	"sync"

	"github.com/huangsam/streakline/internal/contract"
)

// CacheStoreManager hands out the activity cache and the snapshot history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	activity     contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager wraps already opened stores. Either may be nil.
func NewCacheStoreManager(activity contract.CacheStore, history contract.HistoryStore) *CacheStoreManager {
	mgr := &CacheStoreManager{}
	mgr.set(activity, history)
	return mgr
}

func (mgr *CacheStoreManager) set(activity contract.CacheStore, history contract.HistoryStore) {
	mgr.Lock()
	defer mgr.Unlock()
	mgr.activity = activity
	mgr.history = history
}

// GetActivityStore returns the activity CacheStore.
func (mgr *CacheStoreManager) GetActivityStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.activity
}

// GetHistoryStore returns the snapshot HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
