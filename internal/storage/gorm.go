package storage

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// DocumentRow is one persisted entity document, keyed by collection and the
// entity's own id.
type DocumentRow struct {
	ID         uint   `gorm:"primaryKey"`
	Collection string `gorm:"type:text;not null;index:idx_documents_collection"`
	DocID      string `gorm:"type:text;not null"`
	Body       string `gorm:"type:jsonb;not null"`
}

func (DocumentRow) TableName() string {
	return "documents"
}

// GormStore backs the persistence port with a Postgres table instead of
// flat files. WriteAll replaces the collection's rows in one transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ReadAll(collection Collection) ([]json.RawMessage, error) {
	var rows []DocumentRow
	err := s.db.
		Where("collection = ?", string(collection)).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read %s documents: %w", collection, err)
	}

	docs := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, json.RawMessage(row.Body))
	}
	return docs, nil
}

func (s *GormStore) WriteAll(collection Collection, docs []json.RawMessage) error {
	rows := make([]DocumentRow, 0, len(docs))
	for _, doc := range docs {
		var idHolder struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(doc, &idHolder); err != nil {
			return fmt.Errorf("failed to extract document id: %w", err)
		}
		rows = append(rows, DocumentRow{
			Collection: string(collection),
			DocID:      idHolder.ID,
			Body:       string(doc),
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", string(collection)).Delete(&DocumentRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to write %s documents: %w", collection, err)
	}

	return nil
}
