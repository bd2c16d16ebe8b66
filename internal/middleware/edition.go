package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/youth-camp-api/internal/models"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
	"github.com/noah-isme/youth-camp-api/pkg/response"
)

const (
	editionContextKey = "edition_selection"
	// EditionHeader echoes the edition a response was scoped to.
	EditionHeader = "X-Camp-Edition"
)

// DefaultEditionResolver picks the selection used when a request names none.
type DefaultEditionResolver interface {
	DefaultSelection(ctx context.Context) (models.EditionSelection, error)
}

// EditionScope resolves the ?edition= query parameter ("all" or an id) into a
// selection stored on the context. Without the parameter the resolver decides.
func EditionScope(resolver DefaultEditionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			sel models.EditionSelection
			err error
		)
		if raw, present := c.GetQuery("edition"); present {
			sel, err = models.ParseEditionSelection(raw)
			if err != nil {
				response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
				c.Abort()
				return
			}
		} else if resolver != nil {
			sel, err = resolver.DefaultSelection(c.Request.Context())
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
		} else {
			sel = models.AllEditions
		}

		c.Set(editionContextKey, sel)
		c.Header(EditionHeader, sel.String())
		SetMeta(c, "edition", sel.String())
		c.Next()
	}
}

// EditionSelection returns the selection set by EditionScope, defaulting to all editions.
func EditionSelection(c *gin.Context) models.EditionSelection {
	if value, exists := c.Get(editionContextKey); exists {
		if sel, ok := value.(models.EditionSelection); ok {
			return sel
		}
	}
	return models.AllEditions
}
