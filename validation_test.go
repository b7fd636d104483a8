package imagegen

import (
	"errors"
	"testing"
)

func TestValidatePrompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		wantErr error
	}{
		{
			name:    "valid prompt",
			prompt:  "A sunset over mountains",
			wantErr: nil,
		},
		{
			name:    "empty prompt",
			prompt:  "",
			wantErr: ErrEmptyPrompt,
		},
		{
			name:    "whitespace only",
			prompt:  " \n\t ",
			wantErr: ErrEmptyPrompt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrompt(tt.prompt)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePrompt() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAspectRatio(t *testing.T) {
	for _, r := range SupportedAspectRatios {
		if err := ValidateAspectRatio(r); err != nil {
			t.Errorf("ValidateAspectRatio(%q) = %v", r, err)
		}
	}

	for _, r := range []AspectRatio{"", "21:9", "1:2", "square"} {
		if err := ValidateAspectRatio(r); !errors.Is(err, ErrInvalidAspectRatio) {
			t.Errorf("ValidateAspectRatio(%q) = %v, want ErrInvalidAspectRatio", r, err)
		}
	}
}

func TestValidateImagePart(t *testing.T) {
	tests := []struct {
		name    string
		img     ImagePart
		wantErr error
	}{
		{
			name: "valid image",
			img: ImagePart{
				Data:     []byte("fake image data"),
				MIMEType: "image/png",
			},
			wantErr: nil,
		},
		{
			name:    "empty image",
			img:     ImagePart{MIMEType: "image/png"},
			wantErr: ErrEmptyImageData,
		},
		{
			name: "missing MIME type",
			img: ImagePart{
				Data: []byte("fake image data"),
			},
			wantErr: ErrInvalidMIMEType,
		},
		{
			name: "invalid MIME type",
			img: ImagePart{
				Data:     []byte("fake image data"),
				MIMEType: "text/plain",
			},
			wantErr: ErrInvalidMIMEType,
		},
		{
			name: "image too large",
			img: ImagePart{
				Data:     make([]byte, MaxImageSize+1),
				MIMEType: "image/png",
			},
			wantErr: ErrImageTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImagePart(tt.img)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateImagePart() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
