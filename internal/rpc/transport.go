package rpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Serve reads newline-delimited requests from r and writes one response
// line to w for each, flushing before the next request is read. Every line
// gets a response, so a blank line is answered with a parse error. It
// returns nil when r is exhausted and an error only if the streams
// themselves fail.
func (d *Dispatcher) Serve(r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)
	enc := json.NewEncoder(writer)
	enc.SetEscapeHTML(false)

	for {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read request: %w", readErr)
		}

		// A stream ending in a newline leaves an empty final read.
		if len(line) > 0 || readErr == nil {
			line = bytes.TrimRight(line, "\r\n")
			d.logger.Debug("request received", "bytes", len(line))
			resp := d.HandleLine(line)
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
			if err := writer.Flush(); err != nil {
				return fmt.Errorf("flush response: %w", err)
			}
			d.logger.Debug("response sent", "id", string(resp.ID), "error", resp.Error != nil)
		}

		if readErr != nil {
			return nil
		}
	}
}
