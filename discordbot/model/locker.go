package model

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	redis "github.com/go-redis/redis/v7"
)

// ErrCloneInProgress is returned when lock on a server is already held
var ErrCloneInProgress = errors.New("another clone into this server is in progress")

// Locker serializes operations on a guild
type Locker interface {
	Lock(guildID, scope string, ttl time.Duration) (release func(), err error)
}

func lockKey(guildID, scope string) string {
	return fmt.Sprintf("%s.%s.lock", guildID, scope)
}

// MemoryLocker holds locks inside the process
type MemoryLocker struct {
	m    sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewMemoryLocker provides in-process locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Lock acquires lock, expired locks are taken over
func (locker *MemoryLocker) Lock(guildID, scope string, ttl time.Duration) (func(), error) {
	key := lockKey(guildID, scope)

	locker.m.Lock()
	defer locker.m.Unlock()

	now := locker.now()

	if deadline, ok := locker.held[key]; ok && now.Before(deadline) {
		return nil, ErrCloneInProgress
	}

	deadline := now.Add(ttl)
	locker.held[key] = deadline

	return func() {
		locker.m.Lock()
		defer locker.m.Unlock()

		if locker.held[key] == deadline {
			delete(locker.held, key)
		}
	}, nil
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker holds locks in redis, shared between bot processes
type RedisLocker struct {
	Client *redis.Client
}

// Lock acquires lock with SETNX, lock expires after ttl if never released
func (locker *RedisLocker) Lock(guildID, scope string, ttl time.Duration) (func(), error) {
	key := lockKey(guildID, scope)

	token, err := lockToken()
	if err != nil {
		return nil, err
	}

	ok, err := locker.Client.SetNX(key, token, ttl).Result()
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrCloneInProgress
	}

	return func() {
		_ = releaseScript.Run(locker.Client, []string{key}, token).Err()
	}, nil
}

func lockToken() (string, error) {
	bs := make([]byte, 16)

	_, err := rand.Read(bs)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(bs), nil
}
