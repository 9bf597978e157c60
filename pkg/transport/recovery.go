package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/edgelab/llmgate/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to a 500 response with the fixed internal error detail.
// The server continues to accept new requests after a panic is recovered.
//
// http.ErrAbortHandler is re-raised so net/http can drop the connection
// quietly, as it intends.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := recorderFor(w)
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}

				slog.Error("panic recovered",
					"request_id", RequestIDFromContext(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", p,
					"stack", string(debug.Stack()),
				)

				if rec.wroteHeader {
					// Too late for an error body; the partial response stands.
					return
				}
				WriteAPIError(rec, api.NewServerError(fmt.Sprint(p)))
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
