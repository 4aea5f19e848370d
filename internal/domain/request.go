package domain

import "fmt"

// Defaults applied to optional generation parameters, matching the backend's
// documented behavior.
const (
	DefaultOctreeResolution = 128
	DefaultInferenceSteps   = 20
	DefaultGuidanceScale    = 5.0
	DefaultMCAlgo           = "mc"
	DefaultOutputType       = "glb"
)

// GenerateRequest mirrors the wire body shared by /generate and /send. Image
// carries the source picture as base64; decoding is deferred to the executor
// so malformed payloads surface as job failures on the asynchronous path.
type GenerateRequest struct {
	Image             string   `json:"image"`
	Caption           string   `json:"caption,omitempty"`
	Seed              *int64   `json:"seed,omitempty"`
	OctreeResolution  int      `json:"octree_resolution,omitempty"`
	NumInferenceSteps int      `json:"num_inference_steps,omitempty"`
	GuidanceScale     *float64 `json:"guidance_scale,omitempty"`
	MCAlgo            string   `json:"mc_algo,omitempty"`
	Texture           bool     `json:"texture,omitempty"`
	Type              string   `json:"type,omitempty"`
}

// Normalize fills unset optional parameters with their defaults.
func (r *GenerateRequest) Normalize() {
	if r.OctreeResolution == 0 {
		r.OctreeResolution = DefaultOctreeResolution
	}
	if r.NumInferenceSteps == 0 {
		r.NumInferenceSteps = DefaultInferenceSteps
	}
	if r.GuidanceScale == nil {
		v := DefaultGuidanceScale
		r.GuidanceScale = &v
	}
	if r.MCAlgo == "" {
		r.MCAlgo = DefaultMCAlgo
	}
	if r.Type == "" {
		r.Type = DefaultOutputType
	}
}

// Validate range-checks the generation parameters. It runs at the router
// boundary so the executor only ever fails on undecodable images or backend
// errors. Call Normalize first.
func (r *GenerateRequest) Validate() error {
	if r.Image == "" {
		return fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	switch r.Type {
	case "glb", "obj", "ply":
	default:
		return fmt.Errorf("%w: unsupported output type %q", ErrInvalidInput, r.Type)
	}
	if r.OctreeResolution < 16 || r.OctreeResolution > 1024 {
		return fmt.Errorf("%w: octree_resolution %d out of range [16,1024]", ErrInvalidInput, r.OctreeResolution)
	}
	if r.NumInferenceSteps < 1 || r.NumInferenceSteps > 100 {
		return fmt.Errorf("%w: num_inference_steps %d out of range [1,100]", ErrInvalidInput, r.NumInferenceSteps)
	}
	if r.GuidanceScale != nil && *r.GuidanceScale <= 0 {
		return fmt.Errorf("%w: guidance_scale must be positive", ErrInvalidInput)
	}
	return nil
}
