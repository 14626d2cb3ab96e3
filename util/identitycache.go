package util

import (
	"container/list"
	"sync"
	"time"
)

// Identity is the resolved owner of a session token.
type Identity struct {
	UserID      string
	DisplayName string
	Role        string
	ExpiresAt   time.Time
}

// LRU cache for session token -> Identity, consulted by the session gate
// before hitting the store.
type identityEntry struct {
	token    string
	identity Identity
}

type identityLRU struct {
	mu       sync.Mutex
	ll       *list.List
	cache    map[string]*list.Element
	capacity int
}

var identityCache *identityLRU

// InitIdentityCache initializes the LRU cache with given capacity.
// If capacity <= 0, a default of 1000 is used.
func InitIdentityCache(capacity int) {
	if capacity <= 0 {
		capacity = 1000
	}
	identityCache = &identityLRU{
		ll:       list.New(),
		cache:    make(map[string]*list.Element),
		capacity: capacity,
	}
}

// IdentityCacheGet returns the cached identity for a token. Entries whose
// session has expired are evicted on read and reported as absent.
func IdentityCacheGet(token string) (Identity, bool) {
	if identityCache == nil {
		return Identity{}, false
	}
	identityCache.mu.Lock()
	defer identityCache.mu.Unlock()
	ele, ok := identityCache.cache[token]
	if !ok {
		return Identity{}, false
	}
	entry, ok := ele.Value.(identityEntry)
	if !ok {
		return Identity{}, false
	}
	if time.Now().After(entry.identity.ExpiresAt) {
		identityCache.ll.Remove(ele)
		delete(identityCache.cache, token)
		return Identity{}, false
	}
	identityCache.ll.MoveToFront(ele)
	return entry.identity, true
}

// IdentityCacheSet stores the identity for a session token.
func IdentityCacheSet(token string, identity Identity) {
	if identityCache == nil {
		return
	}
	identityCache.mu.Lock()
	defer identityCache.mu.Unlock()
	if ele, ok := identityCache.cache[token]; ok {
		identityCache.ll.MoveToFront(ele)
		ele.Value = identityEntry{token: token, identity: identity}
		return
	}
	ele := identityCache.ll.PushFront(identityEntry{token: token, identity: identity})
	identityCache.cache[token] = ele
	if identityCache.ll.Len() > identityCache.capacity {
		// evict least recently used
		tail := identityCache.ll.Back()
		if tail != nil {
			if entry, ok := tail.Value.(identityEntry); ok {
				delete(identityCache.cache, entry.token)
			}
			identityCache.ll.Remove(tail)
		}
	}
}

// IdentityCacheDelete removes a token from the cache, typically on logout.
func IdentityCacheDelete(token string) {
	if identityCache == nil {
		return
	}
	identityCache.mu.Lock()
	defer identityCache.mu.Unlock()
	if ele, ok := identityCache.cache[token]; ok {
		identityCache.ll.Remove(ele)
		delete(identityCache.cache, token)
	}
}
