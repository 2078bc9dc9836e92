package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrUpstream is returned when the classifier cannot be reached or answers with an error.
var ErrUpstream = errors.New("prediction service failed")

// Result is the classifier's verdict for one image.
type Result struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
	Status     string  `json:"status"`
}

// Predictor classifies plant leaf images.
type Predictor interface {
	Predict(ctx context.Context, filename string, image []byte) (*Result, error)
}

// Client forwards images to an external classification service over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	log        logrus.FieldLogger
}

func NewClient(url string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Predict posts the image as multipart field "image" and decodes the JSON verdict.
func (c *Client) Predict(ctx context.Context, filename string, image []byte) (*Result, error) {
	if filename == "" {
		filename = "plant.jpg"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Error("Prediction service unreachable")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(snippet),
		}).Error("Prediction service returned an error")
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}

	c.log.WithFields(logrus.Fields{
		"disease":    result.Disease,
		"confidence": result.Confidence,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("Prediction received")
	return &result, nil
}
