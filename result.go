package imagegen

// SafetyCategory represents a content safety category.
type SafetyCategory string

const (
	SafetyCategoryHarassment       SafetyCategory = "HARM_CATEGORY_HARASSMENT"
	SafetyCategoryHateSpeech       SafetyCategory = "HARM_CATEGORY_HATE_SPEECH"
	SafetyCategorySexuallyExplicit SafetyCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	SafetyCategoryDangerousContent SafetyCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// SafetyThreshold represents the blocking threshold for safety filters.
type SafetyThreshold string

const (
	SafetyThresholdBlockNone      SafetyThreshold = "BLOCK_NONE"
	SafetyThresholdBlockLowAndUp  SafetyThreshold = "BLOCK_LOW_AND_ABOVE"
	SafetyThresholdBlockMedAndUp  SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	SafetyThresholdBlockHighAndUp SafetyThreshold = "BLOCK_ONLY_HIGH"
)

// SafetySetting configures content filtering for a specific category.
type SafetySetting struct {
	Category  SafetyCategory
	Threshold SafetyThreshold
}

// Part is one content part of a model response. It is either a TextPart or
// an ImagePart.
type Part interface {
	isPart()
}

// TextPart is a plain text response part.
type TextPart struct {
	Text string
}

// ImagePart is inline binary image data tagged with its media type.
type ImagePart struct {
	MIMEType string
	Data     []byte
}

func (TextPart) isPart()  {}
func (ImagePart) isPart() {}

// DataURL encodes the image as a displayable data URL.
func (p ImagePart) DataURL() string {
	return EncodeDataURL(p.MIMEType, p.Data)
}

// GenerateResult holds the complete result of an image generation request.
type GenerateResult struct {
	// Parts in the order the model produced them
	Parts []Part

	// FinishReason reported by the model, if any
	FinishReason string

	// UsageMetadata contains token/billing information
	UsageMetadata *UsageMetadata
}

// FirstImage returns the first ImagePart in response order. Later image parts
// are ignored.
func (r *GenerateResult) FirstImage() (ImagePart, bool) {
	if r == nil {
		return ImagePart{}, false
	}
	for _, p := range r.Parts {
		if img, ok := p.(ImagePart); ok {
			return img, true
		}
	}
	return ImagePart{}, false
}

// Text concatenates all text parts.
func (r *GenerateResult) Text() string {
	if r == nil {
		return ""
	}
	var text string
	for _, p := range r.Parts {
		if t, ok := p.(TextPart); ok {
			text += t.Text
		}
	}
	return text
}

// ImageCount returns the number of image parts.
func (r *GenerateResult) ImageCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, p := range r.Parts {
		if _, ok := p.(ImagePart); ok {
			n++
		}
	}
	return n
}

// UsageMetadata contains usage information for billing and monitoring.
type UsageMetadata struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
	ImageCount       int
}
