package photolab

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"google.golang.org/genai"
	"k8s.io/klog/v2"
)

// TitleThumb is the preview size sent for title suggestions.
var TitleThumb = ThumbOpts{Y: 350, Quality: 80}

var titlePrompt = "Suggest a short title of at most six words for this photo, " +
	"the way a professional photographer would caption it in an album. " +
	"Reply with the title only, without quotes or punctuation at the end."

// Generator generates content. *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// SuggestTitle asks model for a title for the edited image of r.
// The caller decides whether to write it with SetTitle.
func SuggestTitle(ctx context.Context, g Generator, model string, r *Record) (string, error) {
	src := r.ImageSource()
	if src == nil || src.Image == nil {
		return "", fmt.Errorf("%s has no image source", r.Name())
	}

	img, err := Preview(Render(src.Image, r.Edits()), TitleThumb)
	if err != nil {
		return "", fmt.Errorf("preview: %w", err)
	}

	var buf bytes.Buffer
	if err := imgio.JPEGEncoder(TitleThumb.Quality)(&buf, img); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(buf.Bytes(), "image/jpeg"),
			genai.NewPartFromText(titlePrompt),
		}, genai.RoleUser),
	}

	resp, err := g.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	title := strings.Trim(strings.TrimSpace(resp.Text()), `"'.`)
	if title == "" {
		return "", fmt.Errorf("empty suggestion for %s", r.Name())
	}
	klog.V(1).Infof("suggested title for %s: %q", r.Name(), title)
	return title, nil
}
