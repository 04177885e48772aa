package http

import (
	"bytes"
	"errors"
)

var (
	ErrInvalidRequest = errors.New("invalid HTTP request")
)

// ParseRequest decodes a request head terminated by CRLF CRLF. The caller
// guarantees the data holds one complete head; on failure the returned
// request is nil and nothing is retained.
func ParseRequest(data []byte) (*Request, error) {
	req := AcquireRequest()

	// Request line
	lineEnd := bytes.IndexByte(data, '\n')
	if lineEnd == -1 {
		ReleaseRequest(req)
		return nil, ErrInvalidRequest
	}

	line := data[:lineEnd]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	fields := bytes.Fields(line)
	if len(fields) < 3 {
		ReleaseRequest(req)
		return nil, ErrInvalidRequest
	}

	req.Method = string(fields[0])
	req.Path = string(fields[1])
	req.Version = string(fields[2])

	// Header lines up to the blank separator
	data = data[lineEnd+1:]
	for len(data) > 0 {
		lineEnd = bytes.IndexByte(data, '\n')
		if lineEnd == -1 {
			lineEnd = len(data)
		}

		line = data[:lineEnd]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}

		if len(line) == 0 {
			break
		}

		colon := bytes.IndexByte(line, ':')
		if colon != -1 {
			key := trimSpaceTab(line[:colon])
			value := trimSpaceTab(line[colon+1:])
			// Later duplicates win
			req.Headers[lowerASCII(key)] = string(value)
		}

		if lineEnd == len(data) {
			break
		}
		data = data[lineEnd+1:]
	}

	// Keep-alive: explicit Connection header wins, otherwise HTTP/1.1
	// persists unless told to close.
	connection := lowerASCII([]byte(req.Headers["connection"]))
	req.KeepAlive = connection == "keep-alive" ||
		(req.Version == "HTTP/1.1" && connection != "close")

	return req, nil
}

// trimSpaceTab trims leading and trailing space-or-tab bytes
func trimSpaceTab(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

// lowerASCII lowercases A-Z only; header names are ASCII per HTTP
func lowerASCII(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
