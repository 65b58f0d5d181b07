package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	detectPrompt = "Identify the physical objects visible in this video frame. " +
		"Respond with JSON: {\"objects\": [{\"label\": \"<short lowercase noun>\", \"confidence\": <0.0-1.0>}]}. " +
		"List each distinct object type once. Respond with {\"objects\": []} if nothing is identifiable."

	ocrPrompt = "Read all text visible in this video frame (captions, overlays, signs, product labels). " +
		"Respond with JSON: {\"texts\": [{\"text\": \"<exact text>\", \"confidence\": <0.0-1.0>}]}. " +
		"Respond with {\"texts\": []} if no text is visible."
)

// VisionClient implements ObjectDetector and TextRecognizer with a
// multimodal chat model. Both calls send the frame as a base64 data URL and
// ask for a strict JSON body.
type VisionClient struct {
	client *openai.Client
	model  string
}

func NewVisionClient(apiKey, baseURL, model string) *VisionClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &VisionClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *VisionClient) DetectObjects(ctx context.Context, frame []byte) ([]Detection, error) {
	var parsed struct {
		Objects []Detection `json:"objects"`
	}
	if err := c.analyzeJSON(ctx, frame, detectPrompt, &parsed); err != nil {
		return nil, fmt.Errorf("object detection failed: %w", err)
	}
	return parsed.Objects, nil
}

func (c *VisionClient) RecognizeText(ctx context.Context, frame []byte) ([]TextDetection, error) {
	var parsed struct {
		Texts []TextDetection `json:"texts"`
	}
	if err := c.analyzeJSON(ctx, frame, ocrPrompt, &parsed); err != nil {
		return nil, fmt.Errorf("text recognition failed: %w", err)
	}
	return parsed.Texts, nil
}

func (c *VisionClient) analyzeJSON(ctx context.Context, frame []byte, prompt string, out interface{}) error {
	imageURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(frame))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return err
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("empty completion response")
	}

	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("failed to parse vision response: %w", err)
	}

	return nil
}
