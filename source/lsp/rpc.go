package lsp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// readMessage reads one message in the base protocol's framing: headers, a blank line, and then
// as many bytes of content as the Content-Length header says.
func readMessage(r *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" && length == -1 {
				return nil, io.EOF
			}
			return nil, errors.Wrap(err, "reading message header")
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.Errorf("malformed header %q", line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			length, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, errors.Wrapf(err, "bad content length %q", value)
			}
		}
	}
	if length < 0 {
		return nil, errors.New("message has no content length")
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrap(err, "reading message content")
	}
	return data, nil
}

func writeMessage(w io.Writer, data []byte) error {
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return errors.Wrap(err, "writing message header")
	}
	_, err := w.Write(data)
	return errors.Wrap(err, "writing message content")
}
