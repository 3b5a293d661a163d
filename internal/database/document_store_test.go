package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resumesync/internal/resume"
)

func newTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Shared-cache sqlite locks whole tables; one connection queues concurrent writers.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return NewDocumentStore(db)
}

func createDocument(t *testing.T, store *DocumentStore) resume.Document {
	t.Helper()
	doc, err := store.CreateDocument(context.Background(), resume.CreateDocumentRequest{
		Name:     " Backend CV ",
		JobTitle: "Engineer",
	})
	require.NoError(t, err)
	return doc
}

func TestCreateAndGetDocument(t *testing.T) {
	store := newTestStore(t)
	created := createDocument(t, store)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "Backend CV", created.Name)

	got, err := store.GetDocument(context.Background(), uint(created.ID))
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Nil(t, got.Contact)
	assert.Nil(t, got.Languages)
}

func TestGetMissingDocument(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetDocument(context.Background(), 404)

	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestUpdateHeaderAppliesPatch(t *testing.T) {
	store := newTestStore(t)
	doc := createDocument(t, store)
	ctx := context.Background()

	header, err := store.UpdateHeader(ctx, uint(doc.ID), resume.HeaderPatch{
		MetaTitle: resume.String("Jane Doe | Engineer"),
		JobTitle:  resume.String(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Backend CV", header.Name)
	assert.Equal(t, "", header.JobTitle)
	assert.Equal(t, "Jane Doe | Engineer", header.MetaTitle)

	got, err := store.GetDocument(ctx, uint(doc.ID))
	require.NoError(t, err)
	assert.Equal(t, header, got.Header)

	_, err = store.UpdateHeader(ctx, 999, resume.HeaderPatch{})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestSaveSectionUpserts(t *testing.T) {
	store := newTestStore(t)
	doc := createDocument(t, store)
	ctx := context.Background()

	var ids []uint
	save := func(content string) {
		err := store.SaveSection(ctx, uint(doc.ID), resume.SectionProfile, func(sectionID uint) ([]byte, error) {
			ids = append(ids, sectionID)
			section := resume.ProfileSection{Content: content}.Canonical(int(sectionID), doc.ID)
			return json.Marshal(section)
		})
		require.NoError(t, err)
	}
	save("<p>first</p>")
	save("<p>second</p>")

	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])

	got, err := store.GetDocument(ctx, uint(doc.ID))
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "<p>second</p>", got.Profile.Content)
	assert.Equal(t, int(ids[0]), got.Profile.ID)
	assert.Equal(t, resume.DefaultProfileTitle, got.Profile.Title)
}

func TestSaveSectionErrors(t *testing.T) {
	store := newTestStore(t)
	doc := createDocument(t, store)
	ctx := context.Background()

	err := store.SaveSection(ctx, 999, resume.SectionSkills, func(uint) ([]byte, error) { return []byte("{}"), nil })
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	boom := errors.New("boom")
	err = store.SaveSection(ctx, uint(doc.ID), resume.SectionSkills, func(uint) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	got, err := store.GetDocument(ctx, uint(doc.ID))
	require.NoError(t, err)
	assert.Nil(t, got.Skills)
}

func TestDeleteDocument(t *testing.T) {
	store := newTestStore(t)
	doc := createDocument(t, store)
	ctx := context.Background()
	require.NoError(t, store.SaveSection(ctx, uint(doc.ID), resume.SectionLanguages, func(id uint) ([]byte, error) {
		return json.Marshal(resume.EmptyLanguages(doc.ID).Canonical(int(id), doc.ID))
	}))

	require.NoError(t, store.DeleteDocument(ctx, uint(doc.ID)))

	_, err := store.GetDocument(ctx, uint(doc.ID))
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, store.DeleteDocument(ctx, uint(doc.ID)), ErrDocumentNotFound)
}
