package llm

import (
	"context"
	"fmt"
	"strings"
)

const imageAnalysisPrompt = `Please provide a detailed analysis of this image, including:
1. All visible section headings
2. Key rules and mechanics mentioned
3. Any specific numerical values or modifiers
4. Tables or structured data
5. Important terms and definitions
Please be as specific as possible in extracting and organizing this information.`

// AnalyzeImage runs the detailed extraction prompt over one image.
func AnalyzeImage(ctx context.Context, v VisionClient, img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", fmt.Errorf("empty image")
	}
	out, err := v.ChatImage(ctx, imageAnalysisPrompt, img)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", malformed("vision", fmt.Errorf("empty analysis"))
	}
	return out, nil
}
