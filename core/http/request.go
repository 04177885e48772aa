package http

import "sync"

// Request is a decoded HTTP request head. Header names are stored
// ASCII-lowercased; on duplicate names the later value wins.
type Request struct {
	Method  string
	Path    string
	Version string

	Headers map[string]string

	// Body stays empty: request bodies are not consumed, the server frames
	// on the head terminator only.
	Body []byte

	// KeepAlive is derived at parse time from the Connection header and
	// the HTTP version.
	KeepAlive bool
}

var requestPool = sync.Pool{
	New: func() any {
		return &Request{
			Headers: make(map[string]string, 8),
		}
	},
}

func AcquireRequest() *Request {
	return requestPool.Get().(*Request)
}

// Reset resets the request for reuse (memory not freed, just reset)
func (r *Request) Reset() {
	r.Method = ""
	r.Path = ""
	r.Version = ""
	r.KeepAlive = false
	r.Body = r.Body[:0]

	for k := range r.Headers {
		delete(r.Headers, k)
	}
}

func ReleaseRequest(req *Request) {
	req.Reset()
	requestPool.Put(req)
}

// Header returns a header value. Names are stored lowercased, so callers
// pass lowercase names; a missing header reads as "".
func (r *Request) Header(name string) string {
	return r.Headers[name]
}
