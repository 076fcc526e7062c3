package sharepoint

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// defaultItemFields maps Item core attributes to payload paths.
var defaultItemFields = FieldMap{
	"ID":       "Id",
	"GUID":     "GUID",
	"Title":    "Title",
	"Created":  "Created",
	"Modified": "Modified",
}

// Item is a single list item. It holds a non-owning reference to its
// parent list for issuing further requests.
type Item struct {
	list   *List
	strict bool

	ID       int
	GUID     uuid.UUID
	Title    string
	Created  time.Time
	Modified time.Time
	Extra    map[string]any
}

// NewItem hydrates an item from a payload.
func NewItem(list *List, payload map[string]any, extra FieldMap, strict bool) (*Item, error) {
	it := &Item{list: list, strict: strict}
	if err := hydrate(it, payload, MergeFieldMaps(defaultItemFields, extra), strict); err != nil {
		return nil, err
	}

	return it, nil
}

// List returns the parent list.
func (it *Item) List() *List {
	return it.list
}

func (it *Item) path() string {
	return fmt.Sprintf("%s/items(%d)", it.list.path(), it.ID)
}

// Update applies the given field changes to the item. The remote returns
// no body on success; accepted changes are folded into local state.
func (it *Item) Update(ctx context.Context, changes map[string]any) error {
	opt, err := mutationOptions(ctx, it.list.issuer, "MERGE", changes)
	if err != nil {
		return err
	}

	if _, err := it.list.issuer.Request(ctx, http.MethodPost, it.path(), opt); err != nil {
		return err
	}

	return hydrate(it, changes, identityFields(changes), false)
}

// Delete removes the item.
func (it *Item) Delete(ctx context.Context) error {
	opt, err := mutationOptions(ctx, it.list.issuer, "DELETE", nil)
	if err != nil {
		return err
	}

	_, err = it.list.issuer.Request(ctx, http.MethodPost, it.path(), opt)

	return err
}

// ToMap returns a flat snapshot of core and extra attributes.
func (it *Item) ToMap() map[string]any {
	out := map[string]any{
		"ID":       it.ID,
		"GUID":     it.GUID,
		"Title":    it.Title,
		"Created":  it.Created,
		"Modified": it.Modified,
	}
	maps.Copy(out, it.Extra)

	return out
}

func (it *Item) applyCore(name string, value any) (bool, error) {
	var err error

	switch name {
	case "ID":
		it.ID, err = coerceInt(value)
	case "GUID":
		it.GUID, err = coerceGUID(value)
	case "Title":
		it.Title, err = coerceString(value)
	case "Created":
		it.Created, err = coerceTime(value)
	case "Modified":
		it.Modified, err = coerceTime(value)
	default:
		return false, nil
	}

	return true, err
}

func (it *Item) setExtra(name string, value any) {
	if it.Extra == nil {
		it.Extra = make(map[string]any)
	}

	it.Extra[name] = value
}
