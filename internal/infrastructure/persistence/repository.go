package persistence

import (
	"errors"
	"fmt"

	"github.com/transitpay/settlement/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds SELECT ... FOR UPDATE. SQLite ignores the clause, so tests
// on the in-memory driver still run.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// notFound converts gorm.ErrRecordNotFound into a not-found DomainError.
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return err
}

// saveVersioned writes columns to the row identified by id only while its
// version still equals expected, bumping the version in the same statement.
func saveVersioned(db *gorm.DB, model any, id any, expected int, columns map[string]any, resource string) error {
	columns["version"] = expected + 1
	result := db.Model(model).
		Where("id = ? AND version = ?", id, expected).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConcurrencyError(fmt.Sprintf("%s was modified by another process", resource))
	}
	return nil
}
