package client

import (
	"net/http"
	"net/textproto"
	"strings"
)

// hopByHopHeaders apply to a single connection and are never forwarded.
var hopByHopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// forwardHeaders copies h without Host and hop-by-hop headers, including any
// header named in Connection. Every other header is kept with all its values.
func forwardHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out == nil {
		out = make(http.Header)
	}
	for _, f := range out.Values("Connection") {
		for _, k := range strings.Split(f, ",") {
			if k = textproto.TrimString(k); k != "" {
				out.Del(k)
			}
		}
	}
	for _, k := range hopByHopHeaders {
		out.Del(k)
	}
	out.Del("Host")
	return out
}
