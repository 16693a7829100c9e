package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/lessons-api/internal/models"
)

// SearchLessons matches ?keyword= against the lesson search fields. An
// empty keyword returns the whole collection.
func (h *Handler) SearchLessons(c *gin.Context) {
	keyword := c.Query("keyword")

	coll, err := h.Store.Collection(h.opts.Lessons)
	if err != nil {
		_ = c.Error(err)
		return
	}

	docs, err := coll.Search(c.Request.Context(), keyword, models.LessonSearchFields...)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, docs)
}
