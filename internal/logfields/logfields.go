package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyRequestID  = "request_id"
	KeyLocale     = "locale"
	KeyDocPath    = "doc_path"
	KeyCandidate  = "candidate"
	KeyRewrite    = "rewrite_to"
	KeyDurationMS = "duration_ms"
	KeyURLCount   = "urls"
	KeyFile       = "file"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Method(m string) slog.Attr         { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr         { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr     { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr  { return slog.String(KeyRemoteAddr, addr) }
func RequestID(id string) slog.Attr     { return slog.String(KeyRequestID, id) }
func Locale(code string) slog.Attr      { return slog.String(KeyLocale, code) }
func DocPath(p string) slog.Attr        { return slog.String(KeyDocPath, p) }
func Candidate(p string) slog.Attr      { return slog.String(KeyCandidate, p) }
func Rewrite(target string) slog.Attr   { return slog.String(KeyRewrite, target) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func URLCount(n int) slog.Attr          { return slog.Int(KeyURLCount, n) }
func File(p string) slog.Attr           { return slog.String(KeyFile, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
