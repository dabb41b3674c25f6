package gateway

import (
	"bufio"
	"bytes"
	"io"

	"github.com/tidwall/gjson"
)

const maxLineSize = 1 << 20

// lineStream reads newline-delimited JSON fragments. SSE "data:" prefixes
// are stripped and a "[DONE]" sentinel ends the stream.
type lineStream struct {
	body     io.ReadCloser
	scanner  *bufio.Scanner
	provider string
}

func newLineStream(body io.ReadCloser, provider string) *lineStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineStream{body: body, scanner: scanner, provider: provider}
}

func (s *lineStream) Recv() (Fragment, error) {
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		line = bytes.TrimPrefix(line, []byte("data:"))
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == ':' {
			continue
		}
		if bytes.Equal(line, []byte("[DONE]")) {
			return nil, io.EOF
		}

		if gjson.GetBytes(line, "error").Exists() {
			if perr := parseErrorBody(s.provider, 0, line); perr != nil {
				return nil, perr
			}
		}

		out := make(Fragment, len(line))
		copy(out, line)
		return out, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (s *lineStream) Close() error {
	return s.body.Close()
}

// singleStream yields one fragment, used for non-streamed answers
type singleStream struct {
	frag Fragment
	done bool
}

func (s *singleStream) Recv() (Fragment, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.frag, nil
}

func (s *singleStream) Close() error { return nil }
