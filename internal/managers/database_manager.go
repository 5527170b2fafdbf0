// Package managers wires the application to its external collaborators:
// the relational store, the token signer and the mail transport.
package managers

import (
	log "github.com/sirupsen/logrus"

	"blogserver/internal/interfaces"
)

// DatabaseMgr defines the interface for database management.
// It provides access to the connection pool the handlers run their queries on.
type DatabaseMgr interface {
	GetPool() interfaces.PgxPoolIface
}

// DatabaseManager is responsible for managing the database connection pool.
type DatabaseManager struct {
	Pool interfaces.PgxPoolIface
}

// GetPool returns the database connection pool managed by the DatabaseManager.
func (dbMgr *DatabaseManager) GetPool() interfaces.PgxPoolIface {
	return dbMgr.Pool
}

// NewDatabaseManager creates a new DatabaseManager with the provided connection pool.
func NewDatabaseManager(pool interfaces.PgxPoolIface) DatabaseMgr {
	log.Info("Initializing database manager")
	return &DatabaseManager{Pool: pool}
}
