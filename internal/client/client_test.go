package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resumesync/internal/api"
	"resumesync/internal/database"
	"resumesync/internal/editor"
	"resumesync/internal/events"
	"resumesync/internal/resume"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, events.Event) error { return nil }

type nopScheduler struct{}

func (nopScheduler) ScheduleArchive(context.Context, uint, string) error { return nil }
func (nopScheduler) SchedulePurge(context.Context, uint, string) error   { return nil }

func newAPIServer(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Shared-cache sqlite locks whole tables; one connection queues concurrent writers.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	router := api.NewRouter(slog.Default())
	api.RegisterRoutes(router, api.NewDocumentHandler(database.NewDocumentStore(db), nopPublisher{}, nopScheduler{}), nil)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		_ = sqlDB.Close()
	})
	return New(srv.URL+"/", 0, nil)
}

func TestDocumentLifecycle(t *testing.T) {
	c := newAPIServer(t)
	ctx := context.Background()

	doc, err := c.CreateDocument(ctx, resume.CreateDocumentRequest{Name: "CV", JobTitle: "Engineer"})
	require.NoError(t, err)

	header := doc.Header
	header.MetaTitle = "Jane"
	gotHeader, err := c.UpdateHeader(ctx, doc.ID, header)
	require.NoError(t, err)
	assert.Equal(t, header, gotHeader)

	skills, err := c.SaveSkills(ctx, doc.ID, resume.SkillsSection{Groups: []resume.SkillGroup{
		{Position: resume.Position{ID: 1}, Title: "Languages", Skills: []resume.Skill{{Position: resume.Position{ID: 1}, Name: "Go"}}},
	}})
	require.NoError(t, err)
	assert.NotZero(t, skills.ID)
	assert.Equal(t, 1, skills.Groups[0].Skills[0].GroupID)

	loaded, err := c.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", loaded.MetaTitle)
	require.NotNil(t, loaded.Skills)
	assert.Equal(t, skills, *loaded.Skills)

	require.NoError(t, c.DeleteDocument(ctx, doc.ID))
	_, err = c.GetDocument(ctx, doc.ID)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "document not found", httpErr.Message)
}

func TestSaveErrorNamesSection(t *testing.T) {
	c := newAPIServer(t)

	_, err := c.SaveProfile(context.Background(), 404, resume.ProfileSection{Content: "<p>x</p>"})

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.ErrorContains(t, err, "save profile")
}

func TestRequestsCarryCorrelationID(t *testing.T) {
	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("X-Correlation-ID")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second, nil).DeleteDocument(context.Background(), 1)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "boom", httpErr.Message)
	_, parseErr := uuid.Parse(<-seen)
	assert.NoError(t, parseErr)
}

func TestPushDocument(t *testing.T) {
	c := newAPIServer(t)
	ctx := context.Background()
	doc, err := c.CreateDocument(ctx, resume.CreateDocumentRequest{Name: "CV", JobTitle: "Engineer"})
	require.NoError(t, err)

	local := resume.Document{
		ID:      doc.ID,
		Header:  resume.Header{Name: "Restored", JobTitle: "Lead"},
		Profile: &resume.ProfileSection{Content: "<p>offline</p>"},
		Languages: &resume.LanguagesSection{Items: []resume.LanguageItem{
			{Position: resume.Position{ID: 1}, Language: "German", Level: resume.LevelIntermediate},
		}},
	}
	pushed, err := c.PushDocument(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, "Restored", pushed.Name)
	assert.Nil(t, pushed.Contact)

	loaded, err := c.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, pushed, loaded)

	_, err = c.PushDocument(ctx, resume.Document{})
	assert.Error(t, err)
}

func TestPushDocumentWithEverySection(t *testing.T) {
	c := newAPIServer(t)
	ctx := context.Background()
	doc, err := c.CreateDocument(ctx, resume.CreateDocumentRequest{Name: "CV", JobTitle: "Engineer"})
	require.NoError(t, err)

	// Seven section saves run in parallel against the same document row.
	for i := 0; i < 5; i++ {
		pushed, err := c.PushDocument(ctx, resume.Document{
			ID:         doc.ID,
			Header:     doc.Header,
			Contact:    &resume.ContactSection{Items: []resume.ContactItem{{Title: "Mail", Text: "jane@example.com"}}},
			Profile:    &resume.ProfileSection{Content: "<p>Hi</p>"},
			Skills:     &resume.SkillsSection{Groups: []resume.SkillGroup{{Title: "Backend"}}},
			Experience: &resume.ExperienceSection{Jobs: []resume.Job{{Company: "Acme"}}},
			Projects:   &resume.ProjectsSection{Projects: []resume.Project{{Name: "resumesync"}}},
			Education:  &resume.EducationSection{Items: []resume.EducationItem{{Institution: "TU"}}},
			Languages:  &resume.LanguagesSection{Items: []resume.LanguageItem{{Language: "Go", Level: resume.LevelAdvanced}}},
		})
		require.NoError(t, err)
		require.NotNil(t, pushed.Languages)
		assert.NotZero(t, pushed.Languages.ID)
	}
}

func TestSessionSavesOverHTTP(t *testing.T) {
	c := newAPIServer(t)
	ctx := context.Background()
	doc, err := c.CreateDocument(ctx, resume.CreateDocumentRequest{Name: "CV", JobTitle: "Engineer"})
	require.NoError(t, err)

	s := editor.Open(ctx, c, doc.ID)
	defer func() { _ = s.Close(ctx) }()
	require.NoError(t, s.Load(ctx))

	_, done := s.Experience().Add(resume.Job{Company: "Acme", Bullets: []resume.Bullet{{Text: "shipped"}}})
	select {
	case res := <-done:
		require.NoError(t, res.Err)
		require.True(t, res.Applied)
		assert.NotZero(t, res.Value.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("save did not complete")
	}

	loaded, err := c.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Experience)
	assert.Equal(t, s.Document().Experience, loaded.Experience)
}
