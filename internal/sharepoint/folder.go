package sharepoint

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// defaultFolderFields maps Folder core attributes to payload paths.
var defaultFolderFields = FieldMap{
	"UniqueID":          "UniqueId",
	"Name":              "Name",
	"ServerRelativeURL": "ServerRelativeUrl",
	"ItemCount":         "ItemCount",
	"TimeCreated":       "TimeCreated",
	"TimeLastModified":  "TimeLastModified",
}

// Folder is a folder within a document library.
type Folder struct {
	issuer RequestIssuer
	strict bool

	UniqueID          uuid.UUID
	Name              string
	ServerRelativeURL string
	ItemCount         int
	TimeCreated       time.Time
	TimeLastModified  time.Time
	Extra             map[string]any
}

// NewFolder hydrates a folder from a payload.
func NewFolder(issuer RequestIssuer, payload map[string]any, extra FieldMap, strict bool) (*Folder, error) {
	f := &Folder{issuer: issuer, strict: strict}
	if err := hydrate(f, payload, MergeFieldMaps(defaultFolderFields, extra), strict); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *Folder) path() string {
	return fmt.Sprintf("/web/getfolderbyserverrelativeurl('%s')", escapeODataString(f.ServerRelativeURL))
}

// Files fetches the files directly inside the folder.
func (f *Folder) Files(ctx context.Context, opt *QueryOptions) ([]*File, error) {
	payload, err := f.issuer.Request(ctx, http.MethodGet, f.path()+"/files", &RequestOptions{Query: opt.values()})
	if err != nil {
		return nil, err
	}

	entries, err := collectionValue(payload)
	if err != nil {
		return nil, err
	}

	files := make([]*File, 0, len(entries))

	for _, entry := range entries {
		file, err := NewFile(f.issuer, entry, nil, f.strict)
		if err != nil {
			return nil, err
		}

		files = append(files, file)
	}

	return files, nil
}

// Folders fetches the subfolders directly inside the folder.
func (f *Folder) Folders(ctx context.Context, opt *QueryOptions) ([]*Folder, error) {
	payload, err := f.issuer.Request(ctx, http.MethodGet, f.path()+"/folders", &RequestOptions{Query: opt.values()})
	if err != nil {
		return nil, err
	}

	entries, err := collectionValue(payload)
	if err != nil {
		return nil, err
	}

	folders := make([]*Folder, 0, len(entries))

	for _, entry := range entries {
		sub, err := NewFolder(f.issuer, entry, nil, f.strict)
		if err != nil {
			return nil, err
		}

		folders = append(folders, sub)
	}

	return folders, nil
}

// AddFile uploads content as a new file in the folder, overwriting any
// existing file of the same name. The name is NFC-normalized so locally
// composed names (e.g. from macOS filesystems) match the remote form.
func (f *Folder) AddFile(ctx context.Context, name string, content []byte) (*File, error) {
	name = norm.NFC.String(name)

	opt, err := mutationOptions(ctx, f.issuer, "", nil)
	if err != nil {
		return nil, err
	}

	opt.Raw = content

	path := fmt.Sprintf("%s/files/add(url='%s',overwrite=true)", f.path(), escapeODataString(name))

	// The add endpoint echoes the created file's metadata.
	payload, err := f.issuer.Request(ctx, http.MethodPost, path, opt)
	if err != nil {
		return nil, err
	}

	return NewFile(f.issuer, payload, nil, f.strict)
}

// AddFolder creates a subfolder and returns it hydrated from the creation
// response.
func (f *Folder) AddFolder(ctx context.Context, name string) (*Folder, error) {
	name = norm.NFC.String(name)

	body := map[string]any{
		"ServerRelativeUrl": f.ServerRelativeURL + "/" + name,
	}

	opt, err := mutationOptions(ctx, f.issuer, "", body)
	if err != nil {
		return nil, err
	}

	payload, err := f.issuer.Request(ctx, http.MethodPost, "/web/folders", opt)
	if err != nil {
		return nil, err
	}

	return NewFolder(f.issuer, payload, nil, f.strict)
}

// Delete removes the folder and its contents.
func (f *Folder) Delete(ctx context.Context) error {
	opt, err := mutationOptions(ctx, f.issuer, "DELETE", nil)
	if err != nil {
		return err
	}

	_, err = f.issuer.Request(ctx, http.MethodPost, f.path(), opt)

	return err
}

// ToMap returns a flat snapshot of core and extra attributes.
func (f *Folder) ToMap() map[string]any {
	out := map[string]any{
		"UniqueID":          f.UniqueID,
		"Name":              f.Name,
		"ServerRelativeURL": f.ServerRelativeURL,
		"ItemCount":         f.ItemCount,
		"TimeCreated":       f.TimeCreated,
		"TimeLastModified":  f.TimeLastModified,
	}
	maps.Copy(out, f.Extra)

	return out
}

func (f *Folder) applyCore(name string, value any) (bool, error) {
	var err error

	switch name {
	case "UniqueID":
		f.UniqueID, err = coerceGUID(value)
	case "Name":
		f.Name, err = coerceString(value)
	case "ServerRelativeURL":
		f.ServerRelativeURL, err = coerceString(value)
	case "ItemCount":
		f.ItemCount, err = coerceInt(value)
	case "TimeCreated":
		f.TimeCreated, err = coerceTime(value)
	case "TimeLastModified":
		f.TimeLastModified, err = coerceTime(value)
	default:
		return false, nil
	}

	return true, err
}

func (f *Folder) setExtra(name string, value any) {
	if f.Extra == nil {
		f.Extra = make(map[string]any)
	}

	f.Extra[name] = value
}
