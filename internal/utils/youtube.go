package utils

import "regexp"

var (
	embedPattern    = regexp.MustCompile(`embed/([^?]+)`)
	youTubePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`),
		regexp.MustCompile(`youtube\.com/embed/([^&\n?#]+)`),
		regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
	}
)

// YouTubeID extracts the video id from a watch, short, embed or /v/ URL.
func YouTubeID(url string) string {
	for _, p := range youTubePatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return ""
}

// VideoID picks the id for a video post. An embed URL in videoURL wins,
// then any YouTube URL in link, then videoURL in any other form.
func VideoID(videoURL, link string) string {
	if m := embedPattern.FindStringSubmatch(videoURL); m != nil {
		return m[1]
	}
	if id := YouTubeID(link); id != "" {
		return id
	}
	return YouTubeID(videoURL)
}

// EmbedURL is the player URL for id.
func EmbedURL(id string) string {
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id
}
