package document_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/CheeseBr3ad/AI-SERVICE-OFFICIAL/features/document"
)

func TestPostgresRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		doc := &document.Document{
			MeetingID:    "m1",
			FileName:     "notes.docx",
			ChunksStored: 4,
		}

		createdAt := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO documents (meeting_id, file_name, chunks_stored) VALUES ($1, $2, $3) RETURNING id, created_at")).
			WithArgs(doc.MeetingID, doc.FileName, doc.ChunksStored).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("1", createdAt))

		err := repo.Save(context.Background(), doc)
		assert.NoError(t, err)
		assert.Equal(t, "1", doc.ID)
		assert.Equal(t, createdAt, doc.CreatedAt)
	})
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "meeting_id", "file_name", "chunks_stored", "created_at"}).
			AddRow("2", "m1", "b.txt", 1, time.Now()).
			AddRow("1", "m1", "a.txt", 3, time.Now())

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, meeting_id, file_name, chunks_stored, created_at FROM documents ORDER BY created_at DESC")).
			WillReturnRows(rows)

		docs, err := repo.List(context.Background())
		assert.NoError(t, err)
		assert.Len(t, docs, 2)
		assert.Equal(t, "2", docs[0].ID)
		assert.Equal(t, "b.txt", docs[0].FileName)
	})
}

func TestPostgresRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := document.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM documents")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.Count(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 7, count)
	})
}
