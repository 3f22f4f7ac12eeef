package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID  = "build_id"
	KeyDocument = "document"
	KeyPath     = "path"
	KeyField    = "field"
	KeyReason   = "reason"
	KeyCount    = "count"
	KeyPort     = "port"
	KeyError    = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr  { return slog.String(KeyBuildID, id) }
func Document(id string) slog.Attr { return slog.String(KeyDocument, id) }
func Path(p string) slog.Attr      { return slog.String(KeyPath, p) }
func Field(name string) slog.Attr  { return slog.String(KeyField, name) }
func Reason(r string) slog.Attr    { return slog.String(KeyReason, r) }
func Count(n int) slog.Attr        { return slog.Int(KeyCount, n) }
func Port(p int) slog.Attr         { return slog.Int(KeyPort, p) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
