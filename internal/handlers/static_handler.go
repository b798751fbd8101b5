package handlers

import (
	"crypto/md5"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	apierrors "budgetbook/internal/errors"

	"github.com/labstack/echo/v4"
)

// StaticHandler serves the frontend entry page. The rest of the static
// directory is mounted under /static by the router.
type StaticHandler struct {
	indexHTML []byte
	indexETag string
}

// NewStaticHandler reads index.html once. A missing page is logged here and
// answered with 404.
func NewStaticHandler(staticDir string, logger *slog.Logger) *StaticHandler {
	indexPath := filepath.Join(staticDir, "index.html")
	indexHTML, err := os.ReadFile(indexPath)
	if err != nil {
		logger.Warn("dashboard index unavailable", "path", indexPath, "error", err)
	}
	return &StaticHandler{
		indexHTML: indexHTML,
		indexETag: generateETag(indexHTML),
	}
}

// ServeIndex serves index.html with ETag revalidation
func (h *StaticHandler) ServeIndex(c echo.Context) error {
	if len(h.indexHTML) == 0 {
		return SendError(c, apierrors.SystemRouteNotFound)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("ETag", h.indexETag)
	if match := c.Request().Header.Get("If-None-Match"); match != "" && match == h.indexETag {
		return c.NoContent(http.StatusNotModified)
	}

	return c.HTMLBlob(http.StatusOK, h.indexHTML)
}

// generateETag creates an ETag hash for cache control
func generateETag(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	hash := md5.Sum(data)
	return fmt.Sprintf("\"%x\"", hash)
}
