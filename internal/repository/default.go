package repository

import (
	"sync"
	"time"

	"gorm.io/gorm"
)

// 进程级默认存储，由 cmd/server 在启动时通过 SetDefault 选定实现

var (
	defaultMu       sync.RWMutex
	defaultContacts ContactStore
	defaultUsers    UserStore
)

// SetDefault 使用 PostgreSQL 存储；db 为 nil 时退回内存实现
func SetDefault(db *gorm.DB, queryTimeout time.Duration) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if db == nil {
		defaultContacts = NewMemoryContactStore()
		defaultUsers = NewMemoryUserStore()
		return
	}
	defaultContacts = NewGormContactStore(db, queryTimeout)
	defaultUsers = NewGormUserStore(db)
}

// Contacts 返回默认联系人存储，未初始化时惰性创建内存实现
func Contacts() ContactStore {
	defaultMu.RLock()
	s := defaultContacts
	defaultMu.RUnlock()
	if s != nil {
		return s
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultContacts == nil {
		defaultContacts = NewMemoryContactStore()
	}
	return defaultContacts
}

// Users 返回默认账号存储
func Users() UserStore {
	defaultMu.RLock()
	s := defaultUsers
	defaultMu.RUnlock()
	if s != nil {
		return s
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultUsers == nil {
		defaultUsers = NewMemoryUserStore()
	}
	return defaultUsers
}
