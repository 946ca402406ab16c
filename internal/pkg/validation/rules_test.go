package validation

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func header(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: size}
}

func TestValidateImageFile(t *testing.T) {
	testCases := []struct {
		name    string
		header  *multipart.FileHeader
		wantErr bool
	}{
		{"jpg accepted", header("photo.jpg", 1024), false},
		{"jpeg accepted", header("photo.jpeg", 1024), false},
		{"png accepted", header("photo.png", 1024), false},
		{"uppercase extension accepted", header("PHOTO.JPG", 1024), false},
		{"pdf rejected", header("notes.pdf", 1024), true},
		{"no extension rejected", header("photo", 1024), true},
		{"oversized rejected", header("photo.jpg", MaxImageSize+1), true},
		{"at the limit accepted", header("photo.jpg", MaxImageSize), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateImageFile(tc.header)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateImageFiles(t *testing.T) {
	assert.Error(t, ValidateImageFiles(nil))
	assert.Error(t, ValidateImageFiles([]*multipart.FileHeader{}))

	assert.NoError(t, ValidateImageFiles([]*multipart.FileHeader{
		header("a.jpg", 10),
		header("b.png", 10),
	}))

	assert.Error(t, ValidateImageFiles([]*multipart.FileHeader{
		header("a.jpg", 10),
		header("b.gif", 10),
	}))
}

func TestStringValidation(t *testing.T) {
	assert.True(t, NewStringValidation("hello").WithMinLength(2).WithMaxLength(10).Validate())
	assert.False(t, NewStringValidation("").Validate())
	assert.True(t, NewStringValidation("").WithRequired(false).Validate())
	assert.False(t, NewStringValidation("a").WithMinLength(2).Validate())
	assert.False(t, NewStringValidation("toolongvalue").WithMaxLength(5).Validate())
	assert.True(t, NewStringValidation("user@example.com").WithPattern(CompiledPatterns.Email).Validate())
	assert.False(t, NewStringValidation("not-an-email").WithPattern(CompiledPatterns.Email).Validate())
}
