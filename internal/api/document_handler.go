package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resumesync/internal/api/middleware"
	"resumesync/internal/database"
	"resumesync/internal/errcode"
	"resumesync/internal/events"
	"resumesync/internal/metrics"
	"resumesync/internal/resume"
)

// Publisher sends document events to subscribed editors.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Scheduler queues background work for a document.
type Scheduler interface {
	ScheduleArchive(ctx context.Context, documentID uint, correlationID string) error
	SchedulePurge(ctx context.Context, documentID uint, correlationID string) error
}

// DocumentHandler 负责处理文档及其分区的 API 请求。
type DocumentHandler struct {
	store     *database.DocumentStore
	publisher Publisher
	scheduler Scheduler
}

// NewDocumentHandler 构造 DocumentHandler。
func NewDocumentHandler(store *database.DocumentStore, publisher Publisher, scheduler Scheduler) *DocumentHandler {
	return &DocumentHandler{store: store, publisher: publisher, scheduler: scheduler}
}

var errInvalidDocumentID = errors.New("invalid document id")

// CreateDocument 创建一份新的空文档。
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req resume.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	doc, err := h.store.CreateDocument(c.Request.Context(), req)
	if err != nil {
		middleware.Logger(c).Error("create document failed", slog.Any("error", err))
		Internal(c, "failed to create document")
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// GetDocument 返回文档及其全部已保存分区。
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, err := parseDocumentID(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, "failed to query document", err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// UpdateHeader 更新文档头部字段，未提供的字段保持不变。
func (h *DocumentHandler) UpdateHeader(c *gin.Context) {
	id, err := parseDocumentID(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	var patch resume.HeaderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		metrics.SectionWrite(string(resume.SectionHeader), "invalid")
		BadRequest(c, err.Error())
		return
	}

	header, err := h.store.UpdateHeader(c.Request.Context(), id, patch)
	metrics.SectionWrite(string(resume.SectionHeader), writeResult(err))
	if err != nil {
		h.storeError(c, "failed to update document", err)
		return
	}

	h.afterSave(c, id, events.TypeHeaderUpdated, resume.SectionHeader)
	c.JSON(http.StatusOK, header)
}

// DeleteDocument 删除文档，并异步清理其归档对象。
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	id, err := parseDocumentID(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if err := h.store.DeleteDocument(ctx, id); err != nil {
		h.storeError(c, "failed to delete document", err)
		return
	}

	log := middleware.Logger(c)
	correlationID := middleware.CorrelationID(c)
	if err := h.scheduler.SchedulePurge(ctx, id, correlationID); err != nil {
		log.Warn("schedule archive purge failed", slog.Any("error", err))
	}
	h.publish(c, events.Event{Type: events.TypeDocumentDeleted, DocumentID: id, CorrelationID: correlationID})

	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) SaveContact(c *gin.Context) {
	saveSection(h, c, resume.SectionContact, resume.ContactSection.Validate)
}

func (h *DocumentHandler) SaveProfile(c *gin.Context) {
	saveSection[resume.ProfileSection](h, c, resume.SectionProfile, nil)
}

func (h *DocumentHandler) SaveSkills(c *gin.Context) {
	saveSection[resume.SkillsSection](h, c, resume.SectionSkills, nil)
}

func (h *DocumentHandler) SaveExperience(c *gin.Context) {
	saveSection[resume.ExperienceSection](h, c, resume.SectionExperience, nil)
}

func (h *DocumentHandler) SaveProjects(c *gin.Context) {
	saveSection[resume.ProjectsSection](h, c, resume.SectionProjects, nil)
}

func (h *DocumentHandler) SaveEducation(c *gin.Context) {
	saveSection[resume.EducationSection](h, c, resume.SectionEducation, nil)
}

func (h *DocumentHandler) SaveLanguages(c *gin.Context) {
	saveSection[resume.LanguagesSection](h, c, resume.SectionLanguages, nil)
}

// canonicalSection is a section the server can stamp and normalize.
type canonicalSection[S any] interface {
	Canonical(sectionID, documentID int) S
}

// saveSection replaces one section with the request body and answers with
// the canonical form that was stored.
func saveSection[S canonicalSection[S]](h *DocumentHandler, c *gin.Context, kind resume.SectionKey, validate func(S) error) {
	id, err := parseDocumentID(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	var section S
	if err := c.ShouldBindJSON(&section); err != nil {
		metrics.SectionWrite(string(kind), "invalid")
		BadRequest(c, err.Error())
		return
	}
	if validate != nil {
		if err := validate(section); err != nil {
			metrics.SectionWrite(string(kind), "invalid")
			Invalid(c, err.Error())
			return
		}
	}

	var saved S
	err = h.store.SaveSection(c.Request.Context(), id, kind, func(sectionID uint) ([]byte, error) {
		saved = section.Canonical(int(sectionID), int(id))
		return json.Marshal(saved)
	})
	metrics.SectionWrite(string(kind), writeResult(err))
	if err != nil {
		h.storeError(c, "failed to save section", err)
		return
	}

	h.afterSave(c, id, events.TypeSectionSaved, kind)
	c.JSON(http.StatusOK, saved)
}

// afterSave announces the change and queues an archive. Failures are logged
// only; the save itself has succeeded.
func (h *DocumentHandler) afterSave(c *gin.Context, id uint, eventType string, kind resume.SectionKey) {
	correlationID := middleware.CorrelationID(c)
	if err := h.scheduler.ScheduleArchive(c.Request.Context(), id, correlationID); err != nil {
		middleware.Logger(c).Warn("schedule archive failed", slog.Any("error", err))
	}
	h.publish(c, events.Event{
		Type:          eventType,
		DocumentID:    id,
		Section:       kind,
		CorrelationID: correlationID,
		ErrorCode:     errcode.OK,
	})
}

func (h *DocumentHandler) publish(c *gin.Context, e events.Event) {
	if err := h.publisher.Publish(c.Request.Context(), e); err != nil {
		middleware.Logger(c).Warn("publish document event failed",
			slog.String("type", e.Type),
			slog.Any("error", err),
		)
	}
}

func writeResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, database.ErrDocumentNotFound):
		return "missing"
	default:
		return "error"
	}
}

func (h *DocumentHandler) storeError(c *gin.Context, msg string, err error) {
	if errors.Is(err, database.ErrDocumentNotFound) {
		NotFound(c, "document not found")
		return
	}
	middleware.Logger(c).Error(msg, slog.Any("error", err))
	Internal(c, msg)
}

func parseDocumentID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidDocumentID
	}
	return uint(id), nil
}
