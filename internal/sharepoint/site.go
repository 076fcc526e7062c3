package sharepoint

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// defaultSiteFields maps Site core attributes to payload paths.
var defaultSiteFields = FieldMap{
	"ID":          "Id",
	"Title":       "Title",
	"URL":         "Url",
	"Created":     "Created",
	"WebTemplate": "WebTemplate",
}

// Site is the root entity: the web the client is bound to. It owns the
// request issuer that all child entities borrow, and the hydration
// strictness they inherit.
type Site struct {
	issuer RequestIssuer
	strict bool

	ID          uuid.UUID
	Title       string
	URL         string
	Created     time.Time
	WebTemplate string
	Extra       map[string]any
}

// NewSite binds a site to an issuer. strict controls whether hydration
// treats absent declared paths as errors, for this site and every entity
// it produces.
func NewSite(issuer RequestIssuer, strict bool) *Site {
	return &Site{issuer: issuer, strict: strict}
}

// Load fetches the web's metadata and hydrates the site's attributes.
// extra maps additional payload paths onto attributes; entries overriding
// a core attribute name win over the defaults.
func (s *Site) Load(ctx context.Context, extra FieldMap) error {
	payload, err := s.issuer.Request(ctx, http.MethodGet, "/web", nil)
	if err != nil {
		return err
	}

	return hydrate(s, payload, MergeFieldMaps(defaultSiteFields, extra), s.strict)
}

// Lists fetches all lists of the site.
func (s *Site) Lists(ctx context.Context, opt *QueryOptions) ([]*List, error) {
	payload, err := s.issuer.Request(ctx, http.MethodGet, "/web/lists", &RequestOptions{Query: opt.values()})
	if err != nil {
		return nil, err
	}

	entries, err := collectionValue(payload)
	if err != nil {
		return nil, err
	}

	lists := make([]*List, 0, len(entries))

	for _, entry := range entries {
		list, err := NewList(s.issuer, entry, nil, s.strict)
		if err != nil {
			return nil, err
		}

		lists = append(lists, list)
	}

	return lists, nil
}

// ListByTitle fetches a single list by its display title.
func (s *Site) ListByTitle(ctx context.Context, title string) (*List, error) {
	path := fmt.Sprintf("/web/lists/getbytitle('%s')", escapeODataString(title))

	payload, err := s.issuer.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	return NewList(s.issuer, payload, nil, s.strict)
}

// CreateList creates a new list and returns it hydrated from the creation
// response.
func (s *Site) CreateList(ctx context.Context, title, description string, template int) (*List, error) {
	body := map[string]any{
		"Title":        title,
		"Description":  description,
		"BaseTemplate": template,
	}

	opt, err := mutationOptions(ctx, s.issuer, "", body)
	if err != nil {
		return nil, err
	}

	payload, err := s.issuer.Request(ctx, http.MethodPost, "/web/lists", opt)
	if err != nil {
		return nil, err
	}

	return NewList(s.issuer, payload, nil, s.strict)
}

// FolderByPath fetches a folder by its server-relative URL.
func (s *Site) FolderByPath(ctx context.Context, serverRelativeURL string) (*Folder, error) {
	path := fmt.Sprintf("/web/getfolderbyserverrelativeurl('%s')", escapeODataString(serverRelativeURL))

	payload, err := s.issuer.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	return NewFolder(s.issuer, payload, nil, s.strict)
}

// FileByPath fetches a file by its server-relative URL.
func (s *Site) FileByPath(ctx context.Context, serverRelativeURL string) (*File, error) {
	path := fmt.Sprintf("/web/getfilebyserverrelativeurl('%s')", escapeODataString(serverRelativeURL))

	payload, err := s.issuer.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	return NewFile(s.issuer, payload, nil, s.strict)
}

// Issuer exposes the underlying request capability for callers that need
// raw access (e.g. endpoints not modeled by entities).
func (s *Site) Issuer() RequestIssuer {
	return s.issuer
}

// ToMap returns a flat snapshot of core and extra attributes.
func (s *Site) ToMap() map[string]any {
	out := map[string]any{
		"ID":          s.ID,
		"Title":       s.Title,
		"URL":         s.URL,
		"Created":     s.Created,
		"WebTemplate": s.WebTemplate,
	}
	maps.Copy(out, s.Extra)

	return out
}

func (s *Site) applyCore(name string, value any) (bool, error) {
	var err error

	switch name {
	case "ID":
		s.ID, err = coerceGUID(value)
	case "Title":
		s.Title, err = coerceString(value)
	case "URL":
		s.URL, err = coerceString(value)
	case "Created":
		s.Created, err = coerceTime(value)
	case "WebTemplate":
		s.WebTemplate, err = coerceString(value)
	default:
		return false, nil
	}

	return true, err
}

func (s *Site) setExtra(name string, value any) {
	if s.Extra == nil {
		s.Extra = make(map[string]any)
	}

	s.Extra[name] = value
}
