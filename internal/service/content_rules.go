package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/Ghazanfar1991/syncrio/internal/models"
)

type contentRule struct {
	maxChars     int
	maxMedia     int
	requireMedia bool
	requireVideo bool
}

var contentRules = map[string]contentRule{
	models.PlatformTwitter:   {maxChars: 280, maxMedia: 4},
	models.PlatformLinkedIn:  {maxChars: 3000, maxMedia: 9},
	models.PlatformInstagram: {maxChars: 2200, maxMedia: 10, requireMedia: true},
	models.PlatformYouTube:   {maxChars: 5000, maxMedia: 1, requireVideo: true},
	models.PlatformFacebook:  {maxChars: 63206, maxMedia: 10},
}

// ValidateContent checks a post against the limits of the target platform.
func ValidateContent(platform, content string, mediaURLs []string) error {
	rule, ok := contentRules[platform]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}

	if n := utf8.RuneCountInString(content); n > rule.maxChars {
		return fmt.Errorf("%w: %s allows %d characters, got %d", ErrInvalidInput, platform, rule.maxChars, n)
	}
	if content == "" && len(mediaURLs) == 0 {
		return fmt.Errorf("%w: post has neither text nor media", ErrInvalidInput)
	}
	if len(mediaURLs) > rule.maxMedia {
		return fmt.Errorf("%w: %s allows %d media items, got %d", ErrInvalidInput, platform, rule.maxMedia, len(mediaURLs))
	}
	if rule.requireMedia && len(mediaURLs) == 0 {
		return fmt.Errorf("%w: %s needs an image or video", ErrInvalidInput, platform)
	}
	if rule.requireVideo {
		hasVideo := false
		for _, u := range mediaURLs {
			if models.IsVideoURL(u) {
				hasVideo = true
			}
		}
		if !hasVideo {
			return fmt.Errorf("%w: %s needs a video", ErrInvalidInput, platform)
		}
	}
	return nil
}
