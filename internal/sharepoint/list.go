package sharepoint

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// defaultListFields maps List core attributes to payload paths. The
// RootFolderURL entry uses the '/' separator form and requires the caller
// to expand RootFolder; it is absent from plain fetches, which is why list
// hydration tolerates it in non-strict mode.
var defaultListFields = FieldMap{
	"ID":            "Id",
	"Title":         "Title",
	"Description":   "Description",
	"ItemCount":     "ItemCount",
	"BaseTemplate":  "BaseTemplate",
	"Hidden":        "Hidden",
	"Created":       "Created",
	"Modified":      "LastItemModifiedDate",
	"RootFolderURL": "RootFolder/ServerRelativeUrl",
}

// List is a SharePoint list or document library.
type List struct {
	issuer RequestIssuer
	strict bool

	ID            uuid.UUID
	Title         string
	Description   string
	ItemCount     int
	BaseTemplate  int
	Hidden        bool
	Created       time.Time
	Modified      time.Time
	RootFolderURL string
	Extra         map[string]any
}

// NewList hydrates a list from a payload. extra extends or overrides the
// default field mapping; unknown local names land in Extra.
func NewList(issuer RequestIssuer, payload map[string]any, extra FieldMap, strict bool) (*List, error) {
	l := &List{issuer: issuer, strict: strict}
	if err := hydrate(l, payload, MergeFieldMaps(defaultListFields, extra), strict); err != nil {
		return nil, err
	}

	return l, nil
}

// path returns the list's REST path prefix.
func (l *List) path() string {
	return fmt.Sprintf("/web/lists(guid'%s')", l.ID)
}

// Items fetches the list's items.
func (l *List) Items(ctx context.Context, opt *QueryOptions) ([]*Item, error) {
	payload, err := l.issuer.Request(ctx, http.MethodGet, l.path()+"/items", &RequestOptions{Query: opt.values()})
	if err != nil {
		return nil, err
	}

	entries, err := collectionValue(payload)
	if err != nil {
		return nil, err
	}

	items := make([]*Item, 0, len(entries))

	for _, entry := range entries {
		item, err := NewItem(l, entry, nil, l.strict)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// ItemByID fetches a single item by its integer id.
func (l *List) ItemByID(ctx context.Context, id int) (*Item, error) {
	payload, err := l.issuer.Request(ctx, http.MethodGet, fmt.Sprintf("%s/items(%d)", l.path(), id), nil)
	if err != nil {
		return nil, err
	}

	return NewItem(l, payload, nil, l.strict)
}

// AddItem creates a new item with the given field values and returns it
// hydrated from the creation response.
func (l *List) AddItem(ctx context.Context, fields map[string]any) (*Item, error) {
	opt, err := mutationOptions(ctx, l.issuer, "", fields)
	if err != nil {
		return nil, err
	}

	payload, err := l.issuer.Request(ctx, http.MethodPost, l.path()+"/items", opt)
	if err != nil {
		return nil, err
	}

	return NewItem(l, payload, nil, l.strict)
}

// Update applies the given property changes to the list. The remote
// returns no body on success; changed core attributes are synthesized
// locally from the request.
func (l *List) Update(ctx context.Context, changes map[string]any) error {
	opt, err := mutationOptions(ctx, l.issuer, "MERGE", changes)
	if err != nil {
		return err
	}

	if _, err := l.issuer.Request(ctx, http.MethodPost, l.path(), opt); err != nil {
		return err
	}

	// MERGE returns 204; fold the accepted changes into local state.
	return hydrate(l, changes, identityFields(changes), false)
}

// Delete removes the list.
func (l *List) Delete(ctx context.Context) error {
	opt, err := mutationOptions(ctx, l.issuer, "DELETE", nil)
	if err != nil {
		return err
	}

	_, err = l.issuer.Request(ctx, http.MethodPost, l.path(), opt)

	return err
}

// ToMap returns a flat snapshot of core and extra attributes.
func (l *List) ToMap() map[string]any {
	out := map[string]any{
		"ID":            l.ID,
		"Title":         l.Title,
		"Description":   l.Description,
		"ItemCount":     l.ItemCount,
		"BaseTemplate":  l.BaseTemplate,
		"Hidden":        l.Hidden,
		"Created":       l.Created,
		"Modified":      l.Modified,
		"RootFolderURL": l.RootFolderURL,
	}
	maps.Copy(out, l.Extra)

	return out
}

func (l *List) applyCore(name string, value any) (bool, error) {
	var err error

	switch name {
	case "ID":
		l.ID, err = coerceGUID(value)
	case "Title":
		l.Title, err = coerceString(value)
	case "Description":
		l.Description, err = coerceString(value)
	case "ItemCount":
		l.ItemCount, err = coerceInt(value)
	case "BaseTemplate":
		l.BaseTemplate, err = coerceInt(value)
	case "Hidden":
		l.Hidden, err = coerceBool(value)
	case "Created":
		l.Created, err = coerceTime(value)
	case "Modified":
		l.Modified, err = coerceTime(value)
	case "RootFolderURL":
		l.RootFolderURL, err = coerceString(value)
	default:
		return false, nil
	}

	return true, err
}

func (l *List) setExtra(name string, value any) {
	if l.Extra == nil {
		l.Extra = make(map[string]any)
	}

	l.Extra[name] = value
}

// identityFields builds a mapping whose local names and paths are the
// payload's own top-level keys, used to re-hydrate an entity from a
// request body the remote accepted without returning state.
func identityFields(payload map[string]any) FieldMap {
	fields := make(FieldMap, len(payload))
	for key := range payload {
		fields[key] = key
	}

	return fields
}
