package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CurrentIdentityKey returns the key holding the identity bound to a login session.
func (r *CacheKeyStruct) CurrentIdentityKey(scope string) string {
	return fmt.Sprintf("session:%s:identity", scope)
}

// AttemptsKey returns the key of the list of all submitted attempts, one JSON entry each.
func (r *CacheKeyStruct) AttemptsKey() string {
	return "exam_attempts"
}

var CacheKey = NewCacheKeyStruct()
