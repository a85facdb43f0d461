package validation

import (
	"net/url"
	"strings"

	"newsVoice/api/dto"
	"newsVoice/api/models"
)

const maxRawTextBytes = 1 << 20

// ParseSource turns a create request into the tagged task source.
// Exactly one submission mode must be present: a crawlable URL or a
// non-empty raw text body.
func ParseSource(req *dto.CreateTaskRequest) (models.TaskSource, error) {
	hasURL := strings.TrimSpace(req.URL) != ""
	hasText := strings.TrimSpace(req.Content) != ""

	switch {
	case hasURL && hasText:
		return models.TaskSource{}, ErrAmbiguousSource
	case hasURL:
		raw := strings.TrimSpace(req.URL)
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return models.TaskSource{}, ErrInvalidURL
		}
		return models.TaskSource{Kind: models.SourceURL, URL: raw}, nil
	case hasText:
		if len(req.Content) > maxRawTextBytes {
			return models.TaskSource{}, ErrTextTooLarge
		}
		title := strings.TrimSpace(req.Title)
		if title == "" {
			title = "Untitled"
		}
		return models.TaskSource{Kind: models.SourceRawText, Title: title, Body: req.Content}, nil
	default:
		return models.TaskSource{}, ErrEmptySubmission
	}
}

// ParseVariant validates the requested audio variant.
func ParseVariant(raw string) (models.AudioVariant, error) {
	switch models.AudioVariant(strings.ToLower(strings.TrimSpace(raw))) {
	case models.VariantOriginal:
		return models.VariantOriginal, nil
	case models.VariantTranslated, "":
		// The original client omits the field and expects translated audio.
		return models.VariantTranslated, nil
	default:
		return "", ErrUnknownVariant
	}
}
