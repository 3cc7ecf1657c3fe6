package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yla-umzug/quotes-service/internal/model"
)

// nextSequenceValue increments the named counter and returns the new value.
// It must run inside a transaction; the UPDATE holds the row lock until commit.
func nextSequenceValue(tx *gorm.DB, name string) (int64, error) {
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.SequenceCounter{Name: name}).Error
	if err != nil {
		return 0, err
	}

	if err := tx.Exec(`
		UPDATE sequence_counters
		SET last_value = last_value + 1, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, name).Error; err != nil {
		return 0, err
	}

	var counter model.SequenceCounter
	if err := tx.Where("name = ?", name).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.LastValue, nil
}
