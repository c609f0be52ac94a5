// Package biometric wraps the external face-recognition HTTP service.
package biometric

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/guardpoint/workforce/internal/attendance/ports"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("biometric client requires a base url")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 75 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: cfg.BaseURL, httpClient: httpClient}, nil
}

type verifyRequestBody struct {
	GuardID          string `json:"guard_id"`
	CheckImageBase64 string `json:"check_image_base64"`
	TemplateURL      string `json:"template_url"`
	EventType        string `json:"event_type"`
}

type verifyResponseBody struct {
	IsMatch      bool    `json:"is_match"`
	Confidence   float64 `json:"confidence"`
	FaceDetected bool    `json:"face_detected"`
	FaceQuality  float64 `json:"face_quality"`
	Message      string  `json:"message"`
}

func (c *Client) Verify(ctx context.Context, req ports.VerifyFaceRequest) (ports.VerifyFaceResult, error) {
	body := verifyRequestBody{
		GuardID:          req.GuardID.String(),
		CheckImageBase64: req.ImageBase64,
		TemplateURL:      req.TemplateURL,
		EventType:        req.EventType,
	}
	var resp verifyResponseBody
	if err := c.post(ctx, "/api/v1/faces/verify", body, &resp); err != nil {
		return ports.VerifyFaceResult{}, err
	}
	return ports.VerifyFaceResult{
		IsMatch:      resp.IsMatch,
		Confidence:   resp.Confidence,
		FaceDetected: resp.FaceDetected,
		FaceQuality:  resp.FaceQuality,
		Message:      resp.Message,
	}, nil
}

type registerImageBody struct {
	ImageBase64 string  `json:"image_base64"`
	PoseType    string  `json:"pose_type"`
	Angle       float64 `json:"angle"`
}

type registerRequestBody struct {
	GuardID string              `json:"guard_id"`
	Images  []registerImageBody `json:"images"`
}

type registerResponseBody struct {
	Success        bool      `json:"success"`
	TemplateURL    string    `json:"template_url"`
	QualityScores  []float64 `json:"quality_scores"`
	AverageQuality float64   `json:"average_quality"`
	Message        string    `json:"message"`
}

func (c *Client) Register(ctx context.Context, guardID uuid.UUID, images []ports.EnrollImage) (ports.EnrollResult, error) {
	body := registerRequestBody{GuardID: guardID.String()}
	for _, img := range images {
		body.Images = append(body.Images, registerImageBody{
			ImageBase64: img.ImageBase64,
			PoseType:    img.PoseType,
			Angle:       img.Angle,
		})
	}
	var resp registerResponseBody
	if err := c.post(ctx, "/api/v1/faces/register", body, &resp); err != nil {
		return ports.EnrollResult{}, err
	}
	return ports.EnrollResult{
		Success:        resp.Success,
		TemplateURL:    resp.TemplateURL,
		QualityScores:  resp.QualityScores,
		AverageQuality: resp.AverageQuality,
		Message:        resp.Message,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little of the body for the log line, never for the caller.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("call %s: status %d: %s", path, resp.StatusCode, string(snippet))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

var _ ports.BiometricGateway = (*Client)(nil)
