package export

import (
	"context"
	"strings"
	"time"

	"draftboard/pkg/cache"
	"draftboard/pkg/diagram"
	"draftboard/pkg/errors"
	"draftboard/pkg/observability"
)

// Format is an export output format.
type Format string

// Supported export formats.
const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// Formats lists all supported export formats.
func Formats() []Format {
	return []Format{FormatSVG, FormatPNG, FormatDOT, FormatJSON}
}

// ParseFormat resolves a format name, case-insensitively and with or without
// a leading dot, so file extensions can be passed straight through.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	switch f {
	case FormatSVG, FormatPNG, FormatDOT, FormatJSON:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown export format: %s", s)
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/json"
	}
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithCache sets the cache backing the renderer (default NullCache).
func WithCache(c cache.Cache) RendererOption {
	return func(r *Renderer) { r.cache = c }
}

// WithTTL sets how long cached renders live (default 24h; 0 means forever).
func WithTTL(ttl time.Duration) RendererOption {
	return func(r *Renderer) { r.ttl = ttl }
}

// Renderer dispatches exports by format and memoizes results in a cache.
// Rendering is deterministic, so the key is a content hash of the diagram
// plus the format: an unchanged diagram never renders twice.
type Renderer struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRenderer creates a renderer. Without options it renders uncached.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{cache: cache.NewNullCache(), ttl: 24 * time.Hour}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render exports the diagram in the given format, consulting the cache first.
// Cache failures degrade to a plain render rather than failing the export.
func (r *Renderer) Render(ctx context.Context, d *diagram.Diagram, format Format) ([]byte, error) {
	content, err := diagram.Marshal(d)
	if err != nil {
		return nil, err
	}
	if format == FormatJSON {
		return content, nil
	}

	key := cache.RenderKey(string(format), content)
	if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	observability.Render().OnRenderStart(ctx, string(format))
	start := time.Now()
	data, err := render(ctx, d, format)
	observability.Render().OnRenderComplete(ctx, string(format), len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if r.cache.Set(ctx, key, data, r.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, "render", len(data))
	}
	return data, nil
}

func render(ctx context.Context, d *diagram.Diagram, format Format) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(d), nil
	case FormatPNG:
		return RenderPNG(d)
	case FormatDOT:
		return []byte(ToDOT(d)), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown export format: %s", format)
}
