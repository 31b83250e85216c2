package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// FacultyKey returns the cache key for a single faculty record
func (r *CacheKeyStruct) FacultyKey(facultyID int) string {
	return fmt.Sprintf("faculty:%d", facultyID)
}

// GroupKey returns the cache key for a single group record
func (r *CacheKeyStruct) GroupKey(groupID int) string {
	return fmt.Sprintf("group:%d", groupID)
}

var CacheKey = NewCacheKeyStruct()
