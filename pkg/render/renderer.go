package render

import (
	"context"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Renderer converts a field schema plus the current FormState view into a byte
// representation (HTML, terminal transcript, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, schema model.Schema, options RenderOptions) ([]byte, error)
}
