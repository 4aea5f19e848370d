package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// genclient submits an image to a running generation server and saves the
// resulting model. It drives the same endpoints the HTTP tests do, against a
// live deployment.

type generatePayload struct {
	Image   string `json:"image"`
	Caption string `json:"caption,omitempty"`
	Type    string `json:"type"`
}

type sendResponse struct {
	UID    string `json:"uid"`
	Status string `json:"status"`
}

type statusResponse struct {
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	Message     string `json:"message"`
	ModelBase64 string `json:"model_base64"`
	Error       string `json:"error"`
}

const pollInterval = 5 * time.Second

func main() {
	var (
		urlFlag     string
		imageFlag   string
		captionFlag string
		modeFlag    string
		outFlag     string
		typeFlag    string
		waitFlag    time.Duration
	)
	flag.StringVar(&urlFlag, "url", "http://localhost:8000", "Server base URL")
	flag.StringVar(&imageFlag, "image", "", "Path to the input image")
	flag.StringVar(&captionFlag, "caption", "", "Optional caption for the image")
	flag.StringVar(&modeFlag, "mode", "async", "Mode: sync, async, or health")
	flag.StringVar(&outFlag, "out", "model.glb", "Output path for the generated model")
	flag.StringVar(&typeFlag, "type", "glb", "Output format: glb, obj, or ply")
	flag.DurationVar(&waitFlag, "wait", 10*time.Minute, "How long to wait for an async job")
	flag.Parse()

	baseURL := strings.TrimRight(urlFlag, "/")
	client := &http.Client{Timeout: 15 * time.Minute}

	var err error
	switch strings.ToLower(modeFlag) {
	case "health":
		err = runHealth(client, baseURL)
	case "sync":
		err = runSync(client, baseURL, imageFlag, captionFlag, typeFlag, outFlag)
	case "async":
		err = runAsync(client, baseURL, imageFlag, captionFlag, typeFlag, outFlag, waitFlag)
	default:
		err = fmt.Errorf("unsupported mode %q", modeFlag)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "genclient: %v\n", err)
		os.Exit(1)
	}
}

func runHealth(client *http.Client, baseURL string) error {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d %s", resp.StatusCode, body)
	}
	fmt.Printf("%s\n", body)
	return nil
}

func runSync(client *http.Client, baseURL, imagePath, caption, outputType, outPath string) error {
	payload, err := buildPayload(imagePath, caption, outputType)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := client.Post(baseURL+"/generate", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("generation failed: %d %s", resp.StatusCode, body)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	fmt.Printf("model saved to %s (%.2f KB) in %s\n", outPath, float64(written)/1024, time.Since(start).Round(time.Second))
	return nil
}

func runAsync(client *http.Client, baseURL, imagePath, caption, outputType, outPath string, wait time.Duration) error {
	payload, err := buildPayload(imagePath, caption, outputType)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := client.Post(baseURL+"/send", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	var submitted sendResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&submitted)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("submission failed: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("decode submission response: %w", decodeErr)
	}
	fmt.Printf("job submitted: %s\n", submitted.UID)

	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		status, err := fetchStatus(client, baseURL, submitted.UID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "genclient: status check failed: %v\n", err)
			time.Sleep(pollInterval)
			continue
		}
		fmt.Printf("status: %s - %d%% - %s\n", status.Status, status.Progress, status.Message)

		switch status.Status {
		case "completed":
			model, err := base64.StdEncoding.DecodeString(status.ModelBase64)
			if err != nil {
				return fmt.Errorf("decode model data: %w", err)
			}
			if err := os.WriteFile(outPath, model, 0o644); err != nil {
				return err
			}
			fmt.Printf("model saved to %s (%.2f KB) in %s\n", outPath, float64(len(model))/1024, time.Since(start).Round(time.Second))
			return nil
		case "failed":
			return fmt.Errorf("job failed: %s", status.Error)
		}
		time.Sleep(pollInterval)
	}
	return fmt.Errorf("job %s did not finish within %s", submitted.UID, wait)
}

func fetchStatus(client *http.Client, baseURL, uid string) (statusResponse, error) {
	resp, err := client.Get(baseURL + "/status/" + uid)
	if err != nil {
		return statusResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return statusResponse{}, fmt.Errorf("%d %s", resp.StatusCode, body)
	}
	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return statusResponse{}, err
	}
	return status, nil
}

func buildPayload(imagePath, caption, outputType string) ([]byte, error) {
	if strings.TrimSpace(imagePath) == "" {
		return nil, fmt.Errorf("an input image is required via -image")
	}
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return json.Marshal(generatePayload{
		Image:   base64.StdEncoding.EncodeToString(raw),
		Caption: caption,
		Type:    outputType,
	})
}
