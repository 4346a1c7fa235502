package search

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docsearch-backend/internal/documents"
	"docsearch-backend/internal/shared/auth"
	"docsearch-backend/internal/shared/server/middleware"
	"docsearch-backend/internal/shared/server/respond"
)

// Handler exposes the engine over HTTP.
type Handler struct {
	Engine *Engine
	Gate   *auth.Gate
}

// NewHandler constructs a Handler.
func NewHandler(engine *Engine, gate *auth.Gate) *Handler {
	return &Handler{Engine: engine, Gate: gate}
}

// RegisterRoutes attaches search routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	read := middleware.Require(h.Gate, auth.CapRead)
	rg.GET("/documents/search", read, h.search)
	rg.GET("/documents/:id/search", read, h.searchLines)
}

func (h *Handler) search(c *gin.Context) {
	docs, err := h.Engine.Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		documents.WriteError(c, err, "search failed")
		return
	}
	respond.OK(c, documents.ToResponses(docs))
}

func (h *Handler) searchLines(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.DocumentIDKey, id)

	lines, err := h.Engine.SearchLines(c.Request.Context(), id, c.Query("keyword"))
	if err != nil {
		documents.WriteError(c, err, "search failed")
		return
	}
	respond.JSON(c, http.StatusOK, lines)
}
