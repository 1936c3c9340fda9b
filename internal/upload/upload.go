// Package upload posts finished diagnostic reports to a configured
// HTTP endpoint. A failed upload is reported back to the caller as an
// error but is never fatal to the scan that produced the report.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"codeberg.org/mutker/diagctl/internal/errors"
	"codeberg.org/mutker/diagctl/internal/report"
)

// Values recorded on the report under the upload_status key.
const (
	StatusSuccess  = "success"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

const defaultTimeout = 10 * time.Second

type Uploader struct {
	client *http.Client
}

func New(timeout time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Uploader{
		client: &http.Client{Timeout: timeout},
	}
}

// Send serializes the report and POSTs it to endpoint. Any transport
// failure or non-2xx response is an error.
func (u *Uploader) Send(ctx context.Context, endpoint string, r report.Report) error {
	errFactory := errors.New()

	body, err := json.Marshal(r)
	if err != nil {
		return errFactory.Wrap(errors.ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errFactory.Wrap(errors.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return errFactory.Wrap(errors.ErrUploadFailed, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errFactory.WithData(errors.ErrUploadFailed, fmt.Sprintf("endpoint returned %s", resp.Status))
	}

	return nil
}
