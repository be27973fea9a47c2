package scorer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"time"

	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/logger"
)

const (
	// DefaultConnectTimeout bound dialing the webhook host
	DefaultConnectTimeout = 30 * time.Second
	// DefaultReadTimeout bound waiting for the webhook answer
	DefaultReadTimeout = 60 * time.Second

	maxResponseBytes = 1 << 20
	maxLogLength     = 200
)

// WebhookScorer post the resume and job text as multipart form to a workflow webhook
type WebhookScorer struct {
	URL    string
	Client *http.Client
	log    *zap.Logger
}

// NewWebhookScorer creates a new instance of WebhookScorer. Zero timeouts use the defaults.
func NewWebhookScorer(url string, connectTimeout, readTimeout time.Duration, log *zap.Logger) *WebhookScorer {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout}).DialContext
	transport.ResponseHeaderTimeout = readTimeout

	return &WebhookScorer{
		URL: url,
		Client: &http.Client{
			Transport: transport,
			Timeout:   connectTimeout + readTimeout,
		},
		log: logger.OrNop(log),
	}
}

// Score implements Scorer
func (w *WebhookScorer) Score(ctx context.Context, req Request) (*Result, error) {
	if w.URL == "" {
		return nil, scorerError("scorer url is not configured", nil)
	}
	if len(req.Resume) == 0 {
		return nil, scorerError("resume is empty", nil)
	}

	body, contentType, err := buildMultipart(req)
	if err != nil {
		return nil, scorerError("failed to build scorer request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, body)
	if err != nil {
		return nil, scorerError("failed to create scorer request", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	w.log.Debug("scorer request",
		zap.String("file_name", req.FileName),
		zap.Int("resume_size", len(req.Resume)),
		zap.Int("job_text_length", len(req.JobText)),
	)

	resp, err := w.Client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, scorerError("scorer did not answer in time", err)
		}
		return nil, scorerError("failed to reach scorer", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, scorerError("failed to read scorer response", err)
	}

	w.log.Debug("scorer response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("response_preview", logger.TruncateForLog(string(raw), maxLogLength)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, scorerError(fmt.Sprintf("scorer responded with status %d", resp.StatusCode), nil)
	}

	return parsePayload(raw)
}

func buildMultipart(req Request) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fileName := req.FileName
	if fileName == "" {
		fileName = "resume"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename=%q`, fileName))
	h.Set("Content-Type", contentTypeOrDefault(req.ContentType))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Resume); err != nil {
		return nil, "", err
	}

	if err := writer.WriteField("jobdescription", req.JobText); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}
