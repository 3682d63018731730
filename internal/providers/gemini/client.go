// Package gemini implements the generation backend over the Generative
// Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lembremed/lembremed/internal/config"
	"github.com/lembremed/lembremed/internal/core"
)

type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewClient(cfg *config.GeminiConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

// Generate issues one generateContent call with a plain-text prompt and
// returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []part{{Text: prompt}})
}

// Transcribe sends a plain-text instruction plus an inline binary audio part.
func (c *Client) Transcribe(ctx context.Context, instruction string, audio core.AudioBlob) (string, error) {
	return c.generate(ctx, []part{
		{Text: instruction},
		{InlineData: &inlineData{
			MIMEType: audio.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(audio.Data),
		}},
	})
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: parts}},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	return parseGenerateResponse(resp)
}

func parseGenerateResponse(resp *http.Response) (string, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidates: %s", string(data))
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
