package aiproc

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// VisionFaceCount asks the vision model for an integer count of visible
// faces in a single JPEG frame (spec §4.F step 2). Unlike Vision, the
// response is parsed as a bare integer rather than a [0,1] score — a face
// count like "3" would otherwise be clamped into "1.0" by the score
// parser and silently corrupted.
func (p *Processor) VisionFaceCount(ctx context.Context, imageData []byte) (int, error) {
	instruction := "Count the number of distinct human faces visible in this frame. Respond with only the integer count, nothing else."

	var raw string
	var err error
	if isGeminiModel(p.cfg.VisionModel) {
		raw, err = p.rawVisionGenai(ctx, imageData, instruction)
	} else {
		raw, err = p.rawVisionOpenAI(ctx, imageData, instruction)
	}
	if err != nil {
		return 0, err
	}

	count, err := parseFaceCount(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse face count: %w", err)
	}
	return count, nil
}

// Vision scores a single JPEG frame (imageData) against instruction,
// returning a value in [0,1]. The model used is cfg.VisionModel (cfg.Model,
// then cfg.BackupModel, when VisionModel is unset); if it
// names a Gemini model the call goes through google.golang.org/genai
// instead of go-openai's vision content parts — mirroring the teacher's
// "provider selected by which config key names it" pattern (ElevenLabs
// vs Cartesia in main.go).
func (p *Processor) Vision(ctx context.Context, imageData []byte, instruction string) (float64, error) {
	scoreInstruction := instruction + " Respond with only a single number from 0.0 to 1.0."

	var raw string
	var err error
	if isGeminiModel(p.cfg.VisionModel) {
		raw, err = p.rawVisionGenai(ctx, imageData, scoreInstruction)
	} else {
		raw, err = p.rawVisionOpenAI(ctx, imageData, scoreInstruction)
	}
	if err != nil {
		return 0, err
	}

	scores, err := parseScoreList(raw, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to parse vision score: %w", err)
	}
	return scores[0], nil
}

func (p *Processor) rawVisionOpenAI(ctx context.Context, imageData []byte, instruction string) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData)

	var raw string
	err := p.withRetry(ctx, func(model string) error {
		if p.cfg.VisionModel != "" {
			model = p.cfg.VisionModel
		}
		resp, err := p.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{Type: openai.ChatMessagePartTypeText, Text: instruction},
						{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
					},
				},
			},
			Temperature: 0.1,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty vision response")
		}
		raw = resp.Choices[0].Message.Content
		return nil
	})
	return raw, err
}

func (p *Processor) rawVisionGenai(ctx context.Context, imageData []byte, instruction string) (string, error) {
	var raw string

	parts := []*genai.Part{
		genai.NewPartFromBytes(imageData, "image/jpeg"),
		genai.NewPartFromText(instruction),
	}
	content := genai.NewContentFromParts(parts, genai.RoleUser)

	err := p.withRetry(ctx, func(model string) error {
		// The genai client is constructed once and pinned to cfg.VisionModel;
		// the primary/backup fallback in withRetry applies to the text path
		// only, since there is no separate backup vision model in config.
		_ = model
		resp, err := p.genai.Models.GenerateContent(ctx, p.cfg.VisionModel, []*genai.Content{content}, nil)
		if err != nil {
			return err
		}
		raw = resp.Text()
		return nil
	})
	return raw, err
}

var faceCountRe = regexp.MustCompile(`-?\d+`)

// parseFaceCount extracts the first integer token from raw, tolerating
// surrounding prose the way parseScoreList tolerates it for floats.
func parseFaceCount(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	match := faceCountRe.FindString(trimmed)
	if match == "" {
		return 0, fmt.Errorf("no integer found in vision response %q", raw)
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}
