package hunyuan

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/infra"
)

// DefaultEndpoint is the hosted inference endpoint for the Hunyuan3D-2 model.
const DefaultEndpoint = "https://api-inference.huggingface.co/models/Tencent/Hunyuan3D-2"

// Options controls how the Hunyuan3D client is configured.
type Options struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Params carries the generation parameters forwarded to the backend. The
// client passes them through unmodified; range checks happen at the router
// boundary.
type Params struct {
	Caption          string
	Seed             *int64
	OctreeResolution int
	InferenceSteps   int
	GuidanceScale    float64
	MCAlgo           string
	Texture          bool
	OutputType       string
}

// Client wraps the single call to the external Hunyuan3D generation backend,
// turning input bytes plus parameters into a model artifact or a failure.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	logger     *infra.Logger
}

// NewClient constructs a Hunyuan3D client with sane defaults. Callers may
// provide a nil HTTP client; a reusable one with a generous timeout will be
// created since model inference routinely takes minutes.
func NewClient(opts Options) *Client {
	endpoint := strings.TrimRight(opts.Endpoint, "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.Nop()
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		httpClient: client,
		endpoint:   endpoint,
		apiKey:     strings.TrimSpace(opts.APIKey),
		logger:     logger,
	}
}

// APIKeyConfigured reports whether a backend credential is present. The
// health probe exposes this without performing any generation work.
func (c *Client) APIKeyConfigured() bool {
	return c != nil && c.apiKey != ""
}

type generateRequest struct {
	Data    []any          `json:"data"`
	Options requestOptions `json:"options"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Generate submits the image and parameters to the backend and returns the
// raw model artifact bytes. Network, auth, quota, and backend errors all come
// back as plain errors; the caller treats them uniformly as job failures.
func (c *Client) Generate(ctx context.Context, image []byte, params Params) ([]byte, error) {
	if c == nil {
		return nil, errors.New("hunyuan: client not configured")
	}
	if c.apiKey == "" {
		return nil, errors.New("hunyuan: api key is missing")
	}
	if len(image) == 0 {
		return nil, errors.New("hunyuan: image bytes required")
	}

	parameters := map[string]any{
		"caption":           params.Caption,
		"steps":             params.InferenceSteps,
		"guidance_scale":    params.GuidanceScale,
		"octree_resolution": params.OctreeResolution,
		"mc_algo":           params.MCAlgo,
		"texture":           params.Texture,
		"check_box_rembg":   true,
		"num_chunks":        4000,
		"randomize_seed":    params.Seed == nil,
	}
	if params.Seed != nil {
		parameters["seed"] = *params.Seed
	}

	payload := generateRequest{
		Data: []any{
			base64.StdEncoding.EncodeToString(image),
			parameters,
			params.OutputType,
		},
		Options: requestOptions{WaitForModel: true},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("hunyuan: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hunyuan: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug().
		Str("endpoint", c.endpoint).
		Int("steps", params.InferenceSteps).
		Str("output_type", params.OutputType).
		Msg("hunyuan: calling generation backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hunyuan: invoke backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr errorResponse
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("hunyuan: status %d: %s", resp.StatusCode, apiErr.Error)
		}
		if len(data) > 0 {
			return nil, fmt.Errorf("hunyuan: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return nil, fmt.Errorf("hunyuan: status %d", resp.StatusCode)
	}

	artifact, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hunyuan: read response: %w", err)
	}
	if len(artifact) == 0 {
		return nil, errors.New("hunyuan: empty response")
	}
	return artifact, nil
}
