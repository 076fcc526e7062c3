package sharepoint

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// defaultFileFields maps File core attributes to payload paths. Length is
// a decimal string on the wire; coercion handles that.
var defaultFileFields = FieldMap{
	"UniqueID":          "UniqueId",
	"Name":              "Name",
	"ServerRelativeURL": "ServerRelativeUrl",
	"Length":            "Length",
	"ETag":              "ETag",
	"TimeCreated":       "TimeCreated",
	"TimeLastModified":  "TimeLastModified",
}

// Move flags accepted by the moveto endpoint.
const (
	moveFlagOverwrite = 1
)

// File is a file within a document library.
type File struct {
	issuer RequestIssuer
	strict bool

	UniqueID          uuid.UUID
	Name              string
	ServerRelativeURL string
	Length            int64
	ETag              string
	TimeCreated       time.Time
	TimeLastModified  time.Time
	Extra             map[string]any
}

// NewFile hydrates a file from a payload.
func NewFile(issuer RequestIssuer, payload map[string]any, extra FieldMap, strict bool) (*File, error) {
	f := &File{issuer: issuer, strict: strict}
	if err := hydrate(f, payload, MergeFieldMaps(defaultFileFields, extra), strict); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *File) path() string {
	return fmt.Sprintf("/web/getfilebyserverrelativeurl('%s')", escapeODataString(f.ServerRelativeURL))
}

// Download retrieves the file's content.
func (f *File) Download(ctx context.Context) ([]byte, error) {
	return f.issuer.RequestBytes(ctx, http.MethodGet, f.path()+"/$value", nil)
}

// Upload replaces the file's content.
func (f *File) Upload(ctx context.Context, content []byte) error {
	opt, err := mutationOptions(ctx, f.issuer, "PUT", nil)
	if err != nil {
		return err
	}

	opt.Raw = content

	if _, err := f.issuer.Request(ctx, http.MethodPost, f.path()+"/$value", opt); err != nil {
		return err
	}

	f.Length = int64(len(content))

	return nil
}

// MoveTo moves (or renames) the file to a new server-relative URL. The
// remote returns no body on success, so the new location is synthesized
// locally rather than re-fetched.
func (f *File) MoveTo(ctx context.Context, newURL string, overwrite bool) error {
	newURL = norm.NFC.String(newURL)

	flags := 0
	if overwrite {
		flags = moveFlagOverwrite
	}

	opt, err := mutationOptions(ctx, f.issuer, "", nil)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/moveto(newurl='%s',flags=%d)", f.path(), escapeODataString(newURL), flags)

	if _, err := f.issuer.Request(ctx, http.MethodPost, endpoint, opt); err != nil {
		return err
	}

	f.ServerRelativeURL = newURL
	f.Name = path.Base(newURL)

	return nil
}

// CopyTo copies the file to a new server-relative URL and returns the
// copy. As with MoveTo, the remote returns no body; the copy's state is
// synthesized from the source.
func (f *File) CopyTo(ctx context.Context, destURL string, overwrite bool) (*File, error) {
	destURL = norm.NFC.String(destURL)

	opt, err := mutationOptions(ctx, f.issuer, "", nil)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/copyto(strnewurl='%s',boverwrite=%t)", f.path(), escapeODataString(destURL), overwrite)

	if _, err := f.issuer.Request(ctx, http.MethodPost, endpoint, opt); err != nil {
		return nil, err
	}

	copied := *f
	copied.UniqueID = uuid.Nil // the copy gets its own id server-side
	copied.ServerRelativeURL = destURL
	copied.Name = path.Base(destURL)
	copied.Extra = maps.Clone(f.Extra)

	return &copied, nil
}

// Delete removes the file.
func (f *File) Delete(ctx context.Context) error {
	opt, err := mutationOptions(ctx, f.issuer, "DELETE", nil)
	if err != nil {
		return err
	}

	_, err = f.issuer.Request(ctx, http.MethodPost, f.path(), opt)

	return err
}

// ToMap returns a flat snapshot of core and extra attributes.
func (f *File) ToMap() map[string]any {
	out := map[string]any{
		"UniqueID":          f.UniqueID,
		"Name":              f.Name,
		"ServerRelativeURL": f.ServerRelativeURL,
		"Length":            f.Length,
		"ETag":              f.ETag,
		"TimeCreated":       f.TimeCreated,
		"TimeLastModified":  f.TimeLastModified,
	}
	maps.Copy(out, f.Extra)

	return out
}

func (f *File) applyCore(name string, value any) (bool, error) {
	var err error

	switch name {
	case "UniqueID":
		f.UniqueID, err = coerceGUID(value)
	case "Name":
		f.Name, err = coerceString(value)
	case "ServerRelativeURL":
		f.ServerRelativeURL, err = coerceString(value)
	case "Length":
		f.Length, err = coerceInt64(value)
	case "ETag":
		f.ETag, err = coerceString(value)
	case "TimeCreated":
		f.TimeCreated, err = coerceTime(value)
	case "TimeLastModified":
		f.TimeLastModified, err = coerceTime(value)
	default:
		return false, nil
	}

	return true, err
}

func (f *File) setExtra(name string, value any) {
	if f.Extra == nil {
		f.Extra = make(map[string]any)
	}

	f.Extra[name] = value
}
