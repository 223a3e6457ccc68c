package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"labmate-cli/internal/model"
)

// MaxImportSize mirrors the service's upload cap; oversized files are
// rejected before any bytes go out.
const MaxImportSize = 5 << 20

func importContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return ""
	}
}

// ImportFile streams a researcher spreadsheet to the admin bulk import.
// The part carries the real content type; the service rejects
// application/octet-stream, which is what CreateFormFile would send.
func (c *Client) ImportFile(ctx context.Context, name string, r io.Reader) (*model.ImportResult, error) {
	ctype := importContentType(name)
	if ctype == "" {
		return nil, &Error{Kind: KindAPI, Message: "only .csv and .xlsx files can be imported"}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(name)))
	hdr.Set("Content-Type", ctype)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	n, err := io.Copy(part, io.LimitReader(r, MaxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if n > MaxImportSize {
		return nil, &Error{Kind: KindAPI, Message: "file is larger than the 5 MB import limit"}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/v1/admin/import", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.prepare(ctx, req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logf("api: POST /api/v1/admin/import transport error after %s: %v",
			time.Since(start).Round(time.Millisecond), err)
		return nil, netError(err)
	}
	defer resp.Body.Close()
	c.logf("api: POST /api/v1/admin/import -> %d in %s (%d bytes)",
		resp.StatusCode, time.Since(start).Round(time.Millisecond), n)
	if err := c.classify(resp); err != nil {
		return nil, err
	}
	var res model.ImportResult
	if err := decodeBody(resp, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
